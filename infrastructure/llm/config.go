package llm

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// Conventional API key environment variables per provider.
var defaultKeyEnvs = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"google":    "GOOGLE_API_KEY",
}

// RunnerConfig describes a complete batched runner: provider, model, and
// the middleware stack settings.
type RunnerConfig struct {
	// Provider selects the backing LLM provider.
	Provider string `yaml:"provider" validate:"required,oneof=openai anthropic google"`

	// Model overrides the provider default model when non-empty.
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	// Empty uses the provider's conventional variable.
	APIKeyEnv string `yaml:"api_key_env"`

	// BaseURL overrides the provider endpoint, mainly for testing.
	BaseURL string `yaml:"base_url"`

	// TimeoutSeconds bounds individual requests; 0 disables the timeout.
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"min=0,max=3600"`

	// MaxConcurrency limits in-flight requests during batch fan-out.
	MaxConcurrency int `yaml:"max_concurrency" validate:"min=0,max=64"`

	// RequestsPerSecond sets the sustained request rate; 0 disables
	// rate limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`

	// Burst allows temporary spikes above the sustained rate.
	Burst int `yaml:"burst" validate:"min=0"`

	// MaxRetries is the number of additional attempts for retryable
	// failures.
	MaxRetries int `yaml:"max_retries" validate:"min=0,max=10"`
}

var validateConfig = validator.New()

// NewRunnerFromConfig builds a Runner with the configured provider wrapped
// in rate-limit, retry, and (when a registerer is given) metrics
// middleware, outermost first.
func NewRunnerFromConfig(config RunnerConfig, reg prometheus.Registerer) (*Runner, error) {
	if err := validateConfig.Struct(config); err != nil {
		return nil, fmt.Errorf("runner configuration: %w", err)
	}

	apiKey := apiKeyFromEnv(config.APIKeyEnv, defaultKeyEnvs[config.Provider])
	if apiKey == "" {
		return nil, fmt.Errorf("no API key found for provider %s: %w", config.Provider, ErrEmptyAPIKey)
	}

	var middleware []Middleware
	if reg != nil {
		middleware = append(middleware, MetricsMiddleware(NewMetrics(reg)))
	}
	if config.MaxRetries > 0 {
		middleware = append(middleware, RetryMiddleware(config.MaxRetries, 500*time.Millisecond, 30*time.Second))
	}
	if config.RequestsPerSecond > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		middleware = append(middleware, RateLimitMiddleware(rate.Limit(config.RequestsPerSecond), burst))
	}

	core, err := NewCoreLLM(config.Provider, ClientConfig{
		APIKey:  apiKey,
		Model:   config.Model,
		BaseURL: config.BaseURL,
		Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
	}, middleware...)
	if err != nil {
		return nil, err
	}

	return NewRunner(core, config.MaxConcurrency)
}
