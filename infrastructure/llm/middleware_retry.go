package llm

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/minnaeval/ragjudge/internal/ports"
)

// retryLLM retries transient failures with exponential backoff. Errors the
// classifier marks non-retryable propagate immediately.
type retryLLM struct {
	next       CoreLLM
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// RetryMiddleware creates middleware that retries requests failing with
// retryable errors (rate limits, unavailability, timeouts) up to maxRetries
// additional attempts with exponential backoff and jitter.
func RetryMiddleware(maxRetries int, baseDelay, maxDelay time.Duration) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &retryLLM{
			next:       next,
			maxRetries: maxRetries,
			baseDelay:  baseDelay,
			maxDelay:   maxDelay,
		}
	}
}

// Complete executes the request with retry on transient failures.
func (r *retryLLM) Complete(ctx context.Context, req Request) (Response, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		resp, err := r.next.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !ports.IsRetryable(err) || ctx.Err() != nil || attempt == r.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case <-time.After(r.delay(attempt)):
		}
	}

	return Response{}, fmt.Errorf("request failed after %d attempts: %w", r.maxRetries+1, lastErr)
}

func (r *retryLLM) delay(attempt int) time.Duration {
	if attempt > 30 {
		attempt = 30
	}
	// #nosec G115 - attempt is bounded between 0 and 30
	delay := time.Duration(float64(r.baseDelay) * float64(int64(1)<<uint(attempt)))

	// Jitter of +/-25% to avoid thundering herds across the batch.
	// #nosec G404 - weak RNG is fine for jitter
	jitter := time.Duration(rand.Float64() * float64(delay) * 0.5)
	delay = delay + jitter - delay/4

	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	return delay
}

// Model returns the model name from the wrapped implementation.
func (r *retryLLM) Model() string { return r.next.Model() }
