package testutils

import (
	"context"
	"sync"

	"github.com/minnaeval/ragjudge/internal/ports"
)

// MockEntailmentScorer implements ports.EntailmentScorer with scripted
// entailment probabilities keyed by (premise, hypothesis). Unscripted
// pairs score 0, i.e. not entailed.
type MockEntailmentScorer struct {
	mu     sync.Mutex
	scores map[[2]string]float64

	// Err, when set, fails every prediction.
	Err error

	// Calls counts Predict invocations for asserting short-circuiting.
	Calls int
}

// NewMockEntailmentScorer creates an empty scripted scorer.
func NewMockEntailmentScorer() *MockEntailmentScorer {
	return &MockEntailmentScorer{scores: make(map[[2]string]float64)}
}

// Entail scripts the entailment probability for a (premise, hypothesis)
// pair.
func (m *MockEntailmentScorer) Entail(premise, hypothesis string, probability float64) *MockEntailmentScorer {
	m.scores[[2]string{premise, hypothesis}] = probability
	return m
}

// Predict returns one prediction per pair in input order.
func (m *MockEntailmentScorer) Predict(_ context.Context, pairs []ports.EntailmentPair) ([]ports.EntailmentPrediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	m.Calls++

	predictions := make([]ports.EntailmentPrediction, len(pairs))
	for i, p := range pairs {
		entail := m.scores[[2]string{p.Premise, p.Hypothesis}]
		predictions[i] = ports.EntailmentPrediction{
			Contradiction: 1 - entail,
			Entailment:    entail,
		}
	}
	return predictions, nil
}
