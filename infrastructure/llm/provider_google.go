package llm

import (
	"context"
	"errors"
	"fmt"
	"math"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GoogleDefaultModel is the default model for the Google provider.
const GoogleDefaultModel = "gemini-2.0-flash"

func init() {
	RegisterProviderFactory("google", newGoogleProvider)
}

// googleProvider implements CoreLLM for Google's Gemini API.
type googleProvider struct {
	client *genai.Client
	model  string
}

func newGoogleProvider(config ClientConfig) (CoreLLM, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = GoogleDefaultModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Google client: %w", err)
	}

	return &googleProvider{client: client, model: model}, nil
}

// Model returns the configured model identifier.
func (p *googleProvider) Model() string { return p.model }

// Complete sends one request to the Gemini API. Gemini has no separate
// system role, so the system prompt is prepended to the user content.
func (p *googleProvider) Complete(ctx context.Context, req Request) (Response, error) {
	prompt := req.User
	if req.System != "" {
		prompt = fmt.Sprintf("System: %s\n\nUser: %s", req.System, req.User)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 && req.MaxTokens <= math.MaxInt32 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, config)
	if err != nil {
		return Response{}, p.wrapError(err)
	}

	text := resp.Text()
	if text == "" {
		return Response{}, ErrEmptyResponse
	}

	out := Response{Text: text}
	if resp.UsageMetadata != nil {
		out.TokensIn = int(resp.UsageMetadata.PromptTokenCount)
		out.TokensOut = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

func (p *googleProvider) wrapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return classifyHTTPError("google", apiErr.Code, err)
	}
	return classifyContextError("google", err)
}
