package domain

import (
	"fmt"
	"sort"
)

// MeasureSpec declares a single named measure a leaderboard may carry.
type MeasureSpec struct {
	// Name is the measure identifier, e.g. "FINAL_SCORE".
	Name string `json:"name"`
}

// LeaderboardSpec fixes the set of measures every entry must provide.
type LeaderboardSpec struct {
	Measures []MeasureSpec `json:"measures"`
}

// Has reports whether the spec declares the named measure.
func (s LeaderboardSpec) Has(name string) bool {
	for _, m := range s.Measures {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Entry is one leaderboard row: the measure values computed for a single
// (run, topic) pair.
type Entry struct {
	RunID   string             `json:"run_id"`
	TopicID string             `json:"topic_id"`
	Values  map[string]float64 `json:"values"`

	// Fabricated marks entries synthesized by the fix_aggregate policy
	// for (run, topic) pairs that had no judged response.
	Fabricated bool `json:"fabricated,omitempty"`
}

// Leaderboard is the final per-(run, topic) table of measure values.
type Leaderboard struct {
	Spec    LeaderboardSpec `json:"spec"`
	Entries []Entry         `json:"entries"`
}

// OnMissing selects the policy applied when expected (run, topic) pairs
// are absent from the built leaderboard.
type OnMissing string

const (
	// FixAggregate fabricates zero-valued entries for missing pairs.
	FixAggregate OnMissing = "fix_aggregate"

	// DropMissing silently omits missing pairs from the result.
	DropMissing OnMissing = "drop"

	// FailOnMissing returns an error naming the missing pairs.
	FailOnMissing OnMissing = "fail"
)

// LeaderboardBuilder accumulates entries and validates coverage against
// the expected topic set at build time. Add calls are sequential; the
// builder carries no concurrent-write contract.
type LeaderboardBuilder struct {
	spec    LeaderboardSpec
	entries []Entry
	seen    map[RunTopicKey]bool
	runs    map[string]bool
}

// NewLeaderboardBuilder creates a builder for the given spec.
func NewLeaderboardBuilder(spec LeaderboardSpec) *LeaderboardBuilder {
	return &LeaderboardBuilder{
		spec: spec,
		seen: make(map[RunTopicKey]bool),
		runs: make(map[string]bool),
	}
}

// Add records the measure values for one (run, topic) pair. Values must
// cover exactly the spec's measures; a duplicate key is an error since
// one response per (run, topic) pair is assumed upstream.
func (b *LeaderboardBuilder) Add(runID, topicID string, values map[string]float64) error {
	key := RunTopicKey{RunID: runID, TopicID: topicID}
	if b.seen[key] {
		return fmt.Errorf("duplicate leaderboard entry for run %q topic %q", runID, topicID)
	}

	if len(values) != len(b.spec.Measures) {
		return fmt.Errorf("entry for run %q topic %q has %d values, spec requires %d",
			runID, topicID, len(values), len(b.spec.Measures))
	}
	for _, m := range b.spec.Measures {
		if _, ok := values[m.Name]; !ok {
			return fmt.Errorf("entry for run %q topic %q missing measure %q", runID, topicID, m.Name)
		}
	}

	copied := make(map[string]float64, len(values))
	for k, v := range values {
		copied[k] = v
	}

	b.seen[key] = true
	b.runs[runID] = true
	b.entries = append(b.entries, Entry{RunID: runID, TopicID: topicID, Values: copied})
	return nil
}

// Build validates entry coverage against the expected topic IDs and
// applies the onMissing policy to absent (run, topic) pairs. Every run
// that contributed at least one entry is expected to cover every topic.
func (b *LeaderboardBuilder) Build(expectedTopicIDs []string, onMissing OnMissing) (Leaderboard, error) {
	missing := b.missingKeys(expectedTopicIDs)

	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)

	switch onMissing {
	case FixAggregate:
		for _, key := range missing {
			values := make(map[string]float64, len(b.spec.Measures))
			for _, m := range b.spec.Measures {
				values[m.Name] = 0.0
			}
			entries = append(entries, Entry{
				RunID:      key.RunID,
				TopicID:    key.TopicID,
				Values:     values,
				Fabricated: true,
			})
		}
	case DropMissing:
		// Keep only what was added.
	case FailOnMissing:
		if len(missing) > 0 {
			return Leaderboard{}, fmt.Errorf("leaderboard missing %d expected (run, topic) pairs, first: run %q topic %q",
				len(missing), missing[0].RunID, missing[0].TopicID)
		}
	default:
		return Leaderboard{}, fmt.Errorf("unknown on_missing policy %q", onMissing)
	}

	return Leaderboard{Spec: b.spec, Entries: entries}, nil
}

// missingKeys returns expected (run, topic) pairs without entries, in
// deterministic run-then-topic order.
func (b *LeaderboardBuilder) missingKeys(expectedTopicIDs []string) []RunTopicKey {
	runIDs := make([]string, 0, len(b.runs))
	for r := range b.runs {
		runIDs = append(runIDs, r)
	}
	sort.Strings(runIDs)

	var missing []RunTopicKey
	for _, runID := range runIDs {
		for _, topicID := range expectedTopicIDs {
			key := RunTopicKey{RunID: runID, TopicID: topicID}
			if !b.seen[key] {
				missing = append(missing, key)
			}
		}
	}
	return missing
}

// CoverageReport summarizes how a leaderboard lines up with the expected
// topic set: which expected pairs are absent and which entries reference
// unexpected topics.
type CoverageReport struct {
	Missing    []RunTopicKey
	Unexpected []RunTopicKey
	Fabricated int
}

// Complete reports whether coverage is exact: no missing pairs, no
// unexpected topics, nothing fabricated.
func (r CoverageReport) Complete() bool {
	return len(r.Missing) == 0 && len(r.Unexpected) == 0 && r.Fabricated == 0
}

// VerifyCoverage checks a built leaderboard against the expected topic
// list. Verification never mutates the leaderboard; it only reports.
func VerifyCoverage(lb Leaderboard, expectedTopicIDs []string) CoverageReport {
	expected := make(map[string]bool, len(expectedTopicIDs))
	for _, id := range expectedTopicIDs {
		expected[id] = true
	}

	var report CoverageReport
	seen := make(map[RunTopicKey]bool, len(lb.Entries))
	runs := make(map[string]bool)
	for _, e := range lb.Entries {
		key := RunTopicKey{RunID: e.RunID, TopicID: e.TopicID}
		seen[key] = true
		runs[e.RunID] = true
		if e.Fabricated {
			report.Fabricated++
		}
		if !expected[e.TopicID] {
			report.Unexpected = append(report.Unexpected, key)
		}
	}

	runIDs := make([]string, 0, len(runs))
	for r := range runs {
		runIDs = append(runIDs, r)
	}
	sort.Strings(runIDs)
	for _, runID := range runIDs {
		for _, topicID := range expectedTopicIDs {
			key := RunTopicKey{RunID: runID, TopicID: topicID}
			if !seen[key] {
				report.Missing = append(report.Missing, key)
			}
		}
	}
	return report
}
