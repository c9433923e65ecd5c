package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUCT(t *testing.T) {
	t.Run("panics with zero parent visits", func(t *testing.T) {
		require.Panics(t, func() {
			newUCT(DefaultCSquared, 0)
		}, "Should panic when N is 0")
	})
}

func TestUCTEvaluate(t *testing.T) {
	t.Run("computing UCT value", func(t *testing.T) {
		policy := newUCT(2.0, 100)
		got := policy.evaluate(5.0, 10)

		expected := 5.0/10 + math.Sqrt(2.0*math.Log(100)/10.0)
		require.InDelta(t, expected, got, 0.0001,
			"Should compute q/n + sqrt(c^2*ln(N)/n)")
	})

	t.Run("unvisited child is finite and preferred", func(t *testing.T) {
		policy := newUCT(2.0, 100)
		unvisited := policy.evaluate(0, 0)

		require.False(t, math.IsInf(unvisited, 0))
		require.Greater(t, unvisited, policy.evaluate(10, 10))
	})

	t.Run("single parent visit has no exploration term", func(t *testing.T) {
		policy := newUCT(2.0, 1)
		require.Equal(t, 0.0, policy.evaluate(0, 0))
	})

	t.Run("exploration term decreases with child visits", func(t *testing.T) {
		policy := newUCT(2.0, 100)

		score1 := policy.evaluate(5.0, 10)
		score2 := policy.evaluate(5.0, 20)

		require.Greater(t, score1, score2,
			"More child visits should decrease exploration term")
	})

	t.Run("exploitation term increases with rewards", func(t *testing.T) {
		policy := newUCT(2.0, 100)

		score1 := policy.evaluate(-3.0, 10)
		score2 := policy.evaluate(4.0, 10)

		require.Greater(t, score2, score1,
			"More rewards should increase exploitation term")
	})
}
