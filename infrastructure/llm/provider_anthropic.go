package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic provider constants.
const (
	// AnthropicDefaultModel is the default Anthropic model.
	AnthropicDefaultModel = "claude-3-5-sonnet-20241022"

	// anthropicDefaultMaxTokens applies when the request leaves MaxTokens
	// unset; the Anthropic API requires an explicit cap.
	anthropicDefaultMaxTokens = 1024
)

func init() {
	RegisterProviderFactory("anthropic", newAnthropicProvider)
}

// anthropicProvider implements CoreLLM for Anthropic's Messages API.
type anthropicProvider struct {
	client anthropic.Client
	model  string
}

func newAnthropicProvider(config ClientConfig) (CoreLLM, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = AnthropicDefaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &anthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

// Model returns the configured model identifier.
func (p *anthropicProvider) Model() string { return p.model }

// Complete sends one request to the Anthropic Messages API.
func (p *anthropicProvider) Complete(ctx context.Context, req Request) (Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, p.wrapError(err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		switch content := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(content.Text)
		}
	}
	if text.Len() == 0 {
		return Response{}, ErrEmptyResponse
	}

	return Response{
		Text:      text.String(),
		TokensIn:  int(message.Usage.InputTokens),
		TokensOut: int(message.Usage.OutputTokens),
	}, nil
}

func (p *anthropicProvider) wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyHTTPError("anthropic", apiErr.StatusCode, err)
	}
	return classifyContextError("anthropic", err)
}
