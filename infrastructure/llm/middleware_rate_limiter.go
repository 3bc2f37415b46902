package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// rateLimitedLLM paces requests through a token bucket so batched fan-out
// stays within provider rate limits.
type rateLimitedLLM struct {
	next    CoreLLM
	limiter *rate.Limiter
}

// RateLimitMiddleware creates middleware enforcing a sustained request rate
// with burst capacity. All requests through the wrapped client share one
// limiter.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)
	return func(next CoreLLM) CoreLLM {
		return &rateLimitedLLM{next: next, limiter: limiter}
	}
}

// Complete waits for rate limit permission before forwarding the request.
func (r *rateLimitedLLM) Complete(ctx context.Context, req Request) (Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("rate limit: %w", err)
	}
	return r.next.Complete(ctx, req)
}

// Model returns the model name from the wrapped implementation.
func (r *rateLimitedLLM) Model() string { return r.next.Model() }
