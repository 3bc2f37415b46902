// Package ports defines the interfaces between the judge plugins and the
// infrastructure layer: the batched LLM runner, the entailment scorer, and
// the judge plugin protocols themselves.
package ports

import "context"

// BatchRequest is one independent LLM prompt within a batch.
type BatchRequest struct {
	// ID is the caller's correlation identifier. The runner echoes it back
	// on the matching result so callers join results to their originating
	// (run, topic, response) tuples by ID rather than by position alone.
	ID string

	// System is the system prompt; empty means none.
	System string

	// User is the user message content.
	User string

	// Temperature controls sampling randomness; 0 for deterministic grading.
	Temperature float64

	// MaxTokens caps the response length; 0 uses the provider default.
	MaxTokens int
}

// BatchResult is the runner's answer to one BatchRequest.
type BatchResult struct {
	// ID echoes the request's correlation identifier.
	ID string

	// Text is the raw model output.
	Text string

	// TokensIn and TokensOut report token usage for budget accounting.
	TokensIn  int
	TokensOut int
}

// BatchRunner executes a list of independent prompts concurrently and
// returns a parallel result list: order-preserving and length-preserving,
// with results[i] answering requests[i].
//
// The runner owns its internal concurrency control (rate limiting, retry,
// max outstanding requests). Judges do not retry; any error returned here
// is fatal for the whole invocation.
type BatchRunner interface {
	RunBatched(ctx context.Context, requests []BatchRequest) ([]BatchResult, error)
}
