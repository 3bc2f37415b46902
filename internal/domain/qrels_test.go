package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocID(t *testing.T) {
	t.Run("deterministic for identical text", func(t *testing.T) {
		assert.Equal(t, DocID("the answer"), DocID("the answer"))
	})

	t.Run("differs for different text", func(t *testing.T) {
		assert.NotEqual(t, DocID("the answer"), DocID("the answer "))
	})

	t.Run("hex encoded md5 length", func(t *testing.T) {
		assert.Len(t, DocID(""), 32)
	})
}

func TestBuildQrels(t *testing.T) {
	t.Run("hashes text into doc IDs", func(t *testing.T) {
		q, err := BuildQrels([]GradeRecord{
			{TopicID: "t1", Text: "response a", Grade: 2},
		})
		require.NoError(t, err)
		require.Equal(t, 1, q.Len())
		assert.Equal(t, DocID("response a"), q.Rows[0].DocID)
		assert.Equal(t, "t1", q.Rows[0].TopicID)
		assert.Equal(t, 2, q.Rows[0].Grade)
	})

	t.Run("duplicate keys keep maximum grade", func(t *testing.T) {
		q, err := BuildQrels([]GradeRecord{
			{TopicID: "t1", Text: "same text", Grade: 1},
			{TopicID: "t1", Text: "same text", Grade: 3},
			{TopicID: "t1", Text: "same text", Grade: 2},
		})
		require.NoError(t, err)
		require.Equal(t, 1, q.Len())
		assert.Equal(t, 3, q.Rows[0].Grade)
	})

	t.Run("same text under different topics stays separate", func(t *testing.T) {
		q, err := BuildQrels([]GradeRecord{
			{TopicID: "t1", Text: "same text", Grade: 1},
			{TopicID: "t2", Text: "same text", Grade: 3},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, q.Len())
	})

	t.Run("rejects out of range grades", func(t *testing.T) {
		_, err := BuildQrels([]GradeRecord{{TopicID: "t1", Text: "x", Grade: 4}})
		require.Error(t, err)

		_, err = BuildQrels([]GradeRecord{{TopicID: "t1", Text: "x", Grade: -1}})
		require.Error(t, err)
	})

	t.Run("preserves first seen order", func(t *testing.T) {
		q, err := BuildQrels([]GradeRecord{
			{TopicID: "t2", Text: "b", Grade: 0},
			{TopicID: "t1", Text: "a", Grade: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, "t2", q.Rows[0].TopicID)
		assert.Equal(t, "t1", q.Rows[1].TopicID)
	})
}

func TestNewQrels(t *testing.T) {
	t.Run("rebuilds lookup index from serialized rows", func(t *testing.T) {
		q := NewQrels([]QrelsRow{
			{TopicID: "t1", DocID: "d1", Grade: 2},
			{TopicID: "t1", DocID: "d2", Grade: 0},
		})
		grade, ok := q.Lookup("t1", "d1")
		require.True(t, ok)
		assert.Equal(t, 2, grade)
	})

	t.Run("applies keep max deduplication", func(t *testing.T) {
		q := NewQrels([]QrelsRow{
			{TopicID: "t1", DocID: "d1", Grade: 3},
			{TopicID: "t1", DocID: "d1", Grade: 1},
		})
		require.Equal(t, 1, q.Len())
		grade, ok := q.Lookup("t1", "d1")
		require.True(t, ok)
		assert.Equal(t, 3, grade)
	})

	t.Run("handles nil rows", func(t *testing.T) {
		q := NewQrels(nil)
		assert.Equal(t, 0, q.Len())
		_, ok := q.Lookup("t1", "d1")
		assert.False(t, ok)
	})
}

func TestQrelsLookup(t *testing.T) {
	q, err := BuildQrels([]GradeRecord{{TopicID: "t1", Text: "graded", Grade: 2}})
	require.NoError(t, err)

	t.Run("missing row reports false", func(t *testing.T) {
		grade, ok := q.Lookup("t1", DocID("never graded"))
		assert.False(t, ok)
		assert.Equal(t, 0, grade)
	})

	t.Run("wrong topic misses", func(t *testing.T) {
		_, ok := q.Lookup("t2", DocID("graded"))
		assert.False(t, ok)
	})
}
