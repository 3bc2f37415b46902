package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreAccumulator(t *testing.T) {
	key := RunTopicKey{RunID: "run1", TopicID: "t1"}

	t.Run("mean of binary scores", func(t *testing.T) {
		acc := NewScoreAccumulator()
		acc.Add(key, 1)
		acc.Add(key, 0)
		acc.Add(key, 1)

		mean, ok := acc.Mean(key)
		require.True(t, ok)
		assert.InDelta(t, 2.0/3.0, mean, 1e-9)
	})

	t.Run("never seen key reports false", func(t *testing.T) {
		acc := NewScoreAccumulator()
		_, ok := acc.Mean(key)
		assert.False(t, ok)

		_, ok = acc.Tallies(key)
		assert.False(t, ok)
	})

	t.Run("tallies preserve append order", func(t *testing.T) {
		acc := NewScoreAccumulator()
		acc.Add(key, 0)
		acc.Add(key, 1)

		scores, ok := acc.Tallies(key)
		require.True(t, ok)
		assert.Equal(t, []int{0, 1}, scores)
	})

	t.Run("keys in first seen order", func(t *testing.T) {
		acc := NewScoreAccumulator()
		k1 := RunTopicKey{RunID: "run2", TopicID: "t1"}
		k2 := RunTopicKey{RunID: "run1", TopicID: "t2"}
		acc.Add(k1, 1)
		acc.Add(k2, 0)
		acc.Add(k1, 1)

		assert.Equal(t, []RunTopicKey{k1, k2}, acc.Keys())
		assert.Equal(t, 2, acc.Len())
	})

	t.Run("keys are independent", func(t *testing.T) {
		acc := NewScoreAccumulator()
		other := RunTopicKey{RunID: "run1", TopicID: "t2"}
		acc.Add(key, 1)
		acc.Add(other, 0)

		mean, ok := acc.Mean(key)
		require.True(t, ok)
		assert.Equal(t, 1.0, mean)

		mean, ok = acc.Mean(other)
		require.True(t, ok)
		assert.Equal(t, 0.0, mean)
	})
}
