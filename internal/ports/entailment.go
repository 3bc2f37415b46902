package ports

import "context"

// EntailmentPair is a (premise, hypothesis) pair for textual entailment.
type EntailmentPair struct {
	// Premise is the text assumed true, here a full source document.
	Premise string

	// Hypothesis is the statement tested against the premise, here an
	// extracted factual claim.
	Hypothesis string
}

// EntailmentPrediction holds the class probabilities for one pair.
// Scoring consults only Entailment; the other classes are carried for
// observability.
type EntailmentPrediction struct {
	Contradiction float64
	Entailment    float64
	Neutral       float64
}

// EntailmentScorer predicts entailment probabilities for pairs, returning
// one prediction per input pair in input order.
type EntailmentScorer interface {
	Predict(ctx context.Context, pairs []EntailmentPair) ([]EntailmentPrediction, error)
}
