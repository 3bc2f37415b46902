package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/minnaeval/ragjudge/internal/ports"
)

// Construction and response errors shared across providers.
var (
	// ErrEmptyAPIKey indicates a missing provider API key.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")

	// ErrEmptyResponse indicates the provider returned no content.
	ErrEmptyResponse = errors.New("empty response from provider")

	// ErrNoResponseChoice indicates the provider returned no choices.
	ErrNoResponseChoice = errors.New("no response choices returned")
)

// classifyHTTPError maps a provider HTTP status onto the shared port
// sentinels so retry middleware can distinguish transient failures.
func classifyHTTPError(provider string, status int, err error) error {
	switch {
	case status == 401 || status == 403:
		return fmt.Errorf("%s: %v: %w", provider, err, ports.ErrAuthenticationFailed)
	case status == 429:
		return fmt.Errorf("%s: %v: %w", provider, err, ports.ErrRateLimited)
	case status == 408 || status == 504:
		return fmt.Errorf("%s: %v: %w", provider, err, ports.ErrTimeout)
	case status >= 500:
		return fmt.Errorf("%s: %v: %w", provider, err, ports.ErrServiceUnavailable)
	default:
		return fmt.Errorf("%s: status %d: %w", provider, status, err)
	}
}

// classifyContextError maps context cancellation onto the timeout sentinel
// where appropriate.
func classifyContextError(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", provider, ports.ErrTimeout)
	}
	return fmt.Errorf("%s: %w", provider, err)
}
