package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSpec = LeaderboardSpec{Measures: []MeasureSpec{
	{Name: "COMPLETENESS_SCORE"},
	{Name: "ATTRIBUTION_SCORE"},
}}

func testValues(completeness, attribution float64) map[string]float64 {
	return map[string]float64{
		"COMPLETENESS_SCORE": completeness,
		"ATTRIBUTION_SCORE":  attribution,
	}
}

func TestLeaderboardSpecHas(t *testing.T) {
	assert.True(t, testSpec.Has("COMPLETENESS_SCORE"))
	assert.False(t, testSpec.Has("FINAL_SCORE"))
}

func TestLeaderboardBuilderAdd(t *testing.T) {
	t.Run("rejects duplicate keys", func(t *testing.T) {
		b := NewLeaderboardBuilder(testSpec)
		require.NoError(t, b.Add("run1", "t1", testValues(1, 1)))
		err := b.Add("run1", "t1", testValues(0, 0))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("rejects missing measures", func(t *testing.T) {
		b := NewLeaderboardBuilder(testSpec)
		err := b.Add("run1", "t1", map[string]float64{"COMPLETENESS_SCORE": 1})
		require.Error(t, err)
	})

	t.Run("rejects extra measures", func(t *testing.T) {
		b := NewLeaderboardBuilder(testSpec)
		values := testValues(1, 1)
		values["EXTRA"] = 0.5
		err := b.Add("run1", "t1", values)
		require.Error(t, err)
	})

	t.Run("copies values defensively", func(t *testing.T) {
		b := NewLeaderboardBuilder(testSpec)
		values := testValues(0.5, 0.5)
		require.NoError(t, b.Add("run1", "t1", values))
		values["COMPLETENESS_SCORE"] = 0.0

		lb, err := b.Build([]string{"t1"}, FailOnMissing)
		require.NoError(t, err)
		assert.Equal(t, 0.5, lb.Entries[0].Values["COMPLETENESS_SCORE"])
	})
}

func TestLeaderboardBuilderBuild(t *testing.T) {
	topics := []string{"t1", "t2"}

	t.Run("fix_aggregate fabricates zero entries", func(t *testing.T) {
		b := NewLeaderboardBuilder(testSpec)
		require.NoError(t, b.Add("run1", "t1", testValues(1, 1)))

		lb, err := b.Build(topics, FixAggregate)
		require.NoError(t, err)
		require.Len(t, lb.Entries, 2)

		fabricated := lb.Entries[1]
		assert.Equal(t, "run1", fabricated.RunID)
		assert.Equal(t, "t2", fabricated.TopicID)
		assert.True(t, fabricated.Fabricated)
		assert.Equal(t, 0.0, fabricated.Values["COMPLETENESS_SCORE"])
		assert.Equal(t, 0.0, fabricated.Values["ATTRIBUTION_SCORE"])
	})

	t.Run("fix_aggregate covers every contributing run", func(t *testing.T) {
		b := NewLeaderboardBuilder(testSpec)
		require.NoError(t, b.Add("run2", "t1", testValues(1, 1)))
		require.NoError(t, b.Add("run1", "t2", testValues(1, 1)))

		lb, err := b.Build(topics, FixAggregate)
		require.NoError(t, err)
		require.Len(t, lb.Entries, 4)

		// Fabricated entries come run-sorted then in expected topic order.
		assert.Equal(t, RunTopicKey{RunID: "run1", TopicID: "t1"},
			RunTopicKey{RunID: lb.Entries[2].RunID, TopicID: lb.Entries[2].TopicID})
		assert.Equal(t, RunTopicKey{RunID: "run2", TopicID: "t2"},
			RunTopicKey{RunID: lb.Entries[3].RunID, TopicID: lb.Entries[3].TopicID})
	})

	t.Run("drop keeps only added entries", func(t *testing.T) {
		b := NewLeaderboardBuilder(testSpec)
		require.NoError(t, b.Add("run1", "t1", testValues(1, 1)))

		lb, err := b.Build(topics, DropMissing)
		require.NoError(t, err)
		assert.Len(t, lb.Entries, 1)
	})

	t.Run("fail errors on missing pairs", func(t *testing.T) {
		b := NewLeaderboardBuilder(testSpec)
		require.NoError(t, b.Add("run1", "t1", testValues(1, 1)))

		_, err := b.Build(topics, FailOnMissing)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "t2")
	})

	t.Run("fail passes on full coverage", func(t *testing.T) {
		b := NewLeaderboardBuilder(testSpec)
		require.NoError(t, b.Add("run1", "t1", testValues(1, 1)))
		require.NoError(t, b.Add("run1", "t2", testValues(0, 0)))

		lb, err := b.Build(topics, FailOnMissing)
		require.NoError(t, err)
		assert.Len(t, lb.Entries, 2)
	})

	t.Run("unknown policy errors", func(t *testing.T) {
		b := NewLeaderboardBuilder(testSpec)
		_, err := b.Build(topics, OnMissing("bogus"))
		require.Error(t, err)
	})

	t.Run("no entries no fabrication", func(t *testing.T) {
		b := NewLeaderboardBuilder(testSpec)
		lb, err := b.Build(topics, FixAggregate)
		require.NoError(t, err)
		assert.Empty(t, lb.Entries)
	})
}

func TestVerifyCoverage(t *testing.T) {
	topics := []string{"t1", "t2"}

	t.Run("complete coverage", func(t *testing.T) {
		lb := Leaderboard{Spec: testSpec, Entries: []Entry{
			{RunID: "run1", TopicID: "t1", Values: testValues(1, 1)},
			{RunID: "run1", TopicID: "t2", Values: testValues(0, 0)},
		}}
		report := VerifyCoverage(lb, topics)
		assert.True(t, report.Complete())
	})

	t.Run("reports missing pairs", func(t *testing.T) {
		lb := Leaderboard{Spec: testSpec, Entries: []Entry{
			{RunID: "run1", TopicID: "t1", Values: testValues(1, 1)},
		}}
		report := VerifyCoverage(lb, topics)
		assert.False(t, report.Complete())
		assert.Equal(t, []RunTopicKey{{RunID: "run1", TopicID: "t2"}}, report.Missing)
	})

	t.Run("reports unexpected topics and fabricated entries", func(t *testing.T) {
		lb := Leaderboard{Spec: testSpec, Entries: []Entry{
			{RunID: "run1", TopicID: "t1", Values: testValues(1, 1)},
			{RunID: "run1", TopicID: "t2", Values: testValues(0, 0), Fabricated: true},
			{RunID: "run1", TopicID: "t9", Values: testValues(0, 0)},
		}}
		report := VerifyCoverage(lb, topics)
		assert.False(t, report.Complete())
		assert.Equal(t, 1, report.Fabricated)
		assert.Equal(t, []RunTopicKey{{RunID: "run1", TopicID: "t9"}}, report.Unexpected)
		assert.Empty(t, report.Missing)
	})
}
