package domain

// RunTopicKey identifies one response's position in the evaluation: the
// RAG run that produced it and the topic it answered. It is the join key
// for every per-response aggregate in the pipeline.
type RunTopicKey struct {
	RunID   string
	TopicID string
}

// ScoreAccumulator collects per-nugget binary scores keyed by (run, topic).
// It replaces ad-hoc map-of-slice bookkeeping with documented key semantics:
// one key per response, one appended score per graded nugget question.
// The accumulator is not safe for concurrent use; scores are appended
// single-threaded after the batched LLM phase completes.
type ScoreAccumulator struct {
	scores map[RunTopicKey][]int
	order  []RunTopicKey
}

// NewScoreAccumulator returns an empty accumulator.
func NewScoreAccumulator() *ScoreAccumulator {
	return &ScoreAccumulator{scores: make(map[RunTopicKey][]int)}
}

// Add appends one binary score for the given key.
func (a *ScoreAccumulator) Add(key RunTopicKey, score int) {
	if _, ok := a.scores[key]; !ok {
		a.order = append(a.order, key)
	}
	a.scores[key] = append(a.scores[key], score)
}

// Tallies returns the scores recorded for a key and whether the key was
// ever seen. Keys never added (e.g. a topic with zero nuggets) report
// false so callers can skip emitting records for them.
func (a *ScoreAccumulator) Tallies(key RunTopicKey) ([]int, bool) {
	s, ok := a.scores[key]
	return s, ok
}

// Mean returns the arithmetic mean of a key's scores, or 0 with ok=false
// when the key has no recorded scores.
func (a *ScoreAccumulator) Mean(key RunTopicKey) (float64, bool) {
	s, ok := a.scores[key]
	if !ok || len(s) == 0 {
		return 0, false
	}
	sum := 0
	for _, v := range s {
		sum += v
	}
	return float64(sum) / float64(len(s)), true
}

// Keys returns all keys in first-seen order.
func (a *ScoreAccumulator) Keys() []RunTopicKey {
	keys := make([]RunTopicKey, len(a.order))
	copy(keys, a.order)
	return keys
}

// Len returns the number of distinct keys.
func (a *ScoreAccumulator) Len() int { return len(a.scores) }
