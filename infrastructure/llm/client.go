// Package llm provides a batched, order-preserving LLM request runner over
// multiple providers (OpenAI, Anthropic, Google) with middleware for rate
// limiting, retry, and metrics.
//
// Providers implement the minimal CoreLLM interface; cross-cutting concerns
// compose around it as middleware. The Runner fans a request batch out with
// bounded concurrency and joins results back in input order, which is the
// contract the judge plugins depend on.
package llm

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Request is a single chat completion request.
type Request struct {
	// System is the system prompt; empty means none.
	System string

	// User is the user message content.
	User string

	// Temperature controls sampling randomness.
	Temperature float64

	// MaxTokens caps the response length; 0 uses the provider default.
	MaxTokens int
}

// Response is the provider's answer to one Request.
type Response struct {
	// Text is the generated content.
	Text string

	// TokensIn and TokensOut report actual or estimated token usage.
	TokensIn  int
	TokensOut int
}

// CoreLLM is the minimal interface a provider must implement. Middleware
// wraps any conforming implementation.
type CoreLLM interface {
	// Complete sends one chat completion request and returns the response.
	Complete(ctx context.Context, req Request) (Response, error)

	// Model returns the configured model identifier.
	Model() string
}

// Middleware wraps a CoreLLM to add cross-cutting behavior such as rate
// limiting, retries, or metrics collection.
type Middleware func(CoreLLM) CoreLLM

// ClientConfig holds provider construction settings.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model selects the model; empty uses the provider default.
	Model string

	// BaseURL overrides the provider's default endpoint when non-empty.
	BaseURL string

	// Timeout bounds individual requests; zero means no timeout.
	Timeout time.Duration
}

// ProviderFactory constructs a provider from its configuration.
type ProviderFactory func(config ClientConfig) (CoreLLM, error)

var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a provider under a name. Called from
// provider init functions.
func RegisterProviderFactory(name string, factory ProviderFactory) {
	providerFactories[name] = factory
}

// NewCoreLLM creates a provider by name and applies middleware in order,
// first middleware outermost.
func NewCoreLLM(provider string, config ClientConfig, middleware ...Middleware) (CoreLLM, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	factory, ok := providerFactories[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", provider, err)
	}

	for i := len(middleware) - 1; i >= 0; i-- {
		core = middleware[i](core)
	}
	return core, nil
}

// apiKeyFromEnv resolves an API key from the named environment variable,
// falling back to the provider's conventional variable.
func apiKeyFromEnv(env, fallback string) string {
	if env != "" {
		return os.Getenv(env)
	}
	return os.Getenv(fallback)
}
