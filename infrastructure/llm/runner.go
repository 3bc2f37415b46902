package llm

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/minnaeval/ragjudge/internal/ports"
)

// DefaultMaxConcurrency bounds in-flight requests when no limit is
// configured.
const DefaultMaxConcurrency = 8

var _ ports.BatchRunner = (*Runner)(nil)

// Runner executes request batches against a CoreLLM with bounded
// concurrency. Results come back order- and length-preserving: result i
// answers request i and echoes its correlation ID. Any request failure
// aborts the whole batch; judges treat runner errors as fatal.
type Runner struct {
	core           CoreLLM
	maxConcurrency int
}

// NewRunner creates a Runner over the given core client.
func NewRunner(core CoreLLM, maxConcurrency int) (*Runner, error) {
	if core == nil {
		return nil, fmt.Errorf("core LLM cannot be nil")
	}
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &Runner{core: core, maxConcurrency: maxConcurrency}, nil
}

// RunBatched fans the requests out and joins results back in input order.
func (r *Runner) RunBatched(ctx context.Context, requests []ports.BatchRequest) ([]ports.BatchResult, error) {
	results := make([]ports.BatchResult, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrency)

	for i, req := range requests {
		g.Go(func() error {
			resp, err := r.core.Complete(gctx, Request{
				System:      req.System,
				User:        req.User,
				Temperature: req.Temperature,
				MaxTokens:   req.MaxTokens,
			})
			if err != nil {
				return fmt.Errorf("request %s: %w", req.ID, err)
			}
			results[i] = ports.BatchResult{
				ID:        req.ID,
				Text:      resp.Text,
				TokensIn:  resp.TokensIn,
				TokensOut: resp.TokensOut,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
