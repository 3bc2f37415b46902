package ports

import (
	"errors"
	"fmt"
	"time"
)

// Common infrastructure errors surfaced by runner and scorer
// implementations.
var (
	// ErrRateLimited indicates that the provider rate limited the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates that the external service is down.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidResponse indicates a malformed provider response.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrAuthenticationFailed indicates rejected credentials.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// LLMError wraps a provider failure with model and operation context plus
// optional retry guidance.
type LLMError struct {
	// Model is the identifier of the model that produced the error.
	Model string

	// Operation names the failed operation, e.g. "complete".
	Operation string

	// Err is the underlying error.
	Err error

	// RetryAfter indicates how long to wait before retrying, if the
	// provider supplied one.
	RetryAfter *time.Duration
}

// Error implements the error interface.
func (e *LLMError) Error() string {
	return fmt.Sprintf("llm %s: %s: %v", e.Model, e.Operation, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *LLMError) Unwrap() error { return e.Err }

// IsRetryable reports whether an error represents a transient condition
// worth retrying: rate limits, unavailability, and timeouts.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
