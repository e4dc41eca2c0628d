package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestNew_RejectsEmptyActionSet(t *testing.T) {
	require.Panics(t, func() { New(0) })
	require.Panics(t, func() { New(-1) })
}

func TestGetStrategy_InitiallyUniform(t *testing.T) {
	p := New(4)
	for _, prob := range p.GetStrategy() {
		assert.Equal(t, 0.25, prob)
	}
}

func TestRegretMatching_ProportionalToPositiveRegret(t *testing.T) {
	p := New(3)
	p.AddRegret(1.0, []float64{3, 0, 1})
	p.NextStrategy(1.0, 1.0, 1.0)

	strategy := p.GetStrategy()
	assert.InDelta(t, 0.75, strategy[0], 1e-12)
	assert.InDelta(t, 0.0, strategy[1], 1e-12)
	assert.InDelta(t, 0.25, strategy[2], 1e-12)
}

func TestRegretMatching_NegativeRegretClampedToZero(t *testing.T) {
	p := New(3)
	p.AddRegret(1.0, []float64{2, -5, 2})
	p.NextStrategy(1.0, 1.0, 1.0)

	strategy := p.GetStrategy()
	assert.InDelta(t, 0.5, strategy[0], 1e-12)
	assert.Equal(t, 0.0, strategy[1])
	assert.InDelta(t, 0.5, strategy[2], 1e-12)
}

func TestRegretMatching_UniformFallbackWhenAllNonpositive(t *testing.T) {
	p := New(3)
	p.AddRegret(1.0, []float64{-1, -2, 0})
	p.NextStrategy(1.0, 1.0, 1.0)

	expected := []float64{1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0}
	assert.Equal(t, expected, p.GetStrategy())
}

func TestGetStrategy_IsAlwaysADistribution(t *testing.T) {
	p := New(5)
	regrets := [][]float64{
		{1, -1, 0.5, 2, -3},
		{-10, 4, 0, 0.1, 7},
		{3, 3, 3, 3, 3},
		{-1, -1, -1, -1, -1},
	}

	for _, r := range regrets {
		p.AddRegret(0.7, r)
		p.NextStrategy(1.0, 1.0, 1.0)

		strategy := p.GetStrategy()
		require.Len(t, strategy, 5)
		assert.InDelta(t, 1.0, floats.Sum(strategy), 1e-9)
		for _, prob := range strategy {
			assert.GreaterOrEqual(t, prob, 0.0)
		}
	}
}

func TestGetAverageStrategy_UniformWhenNeverVisited(t *testing.T) {
	p := New(2)
	assert.Equal(t, []float64{0.5, 0.5}, p.GetAverageStrategy())
}

func TestGetAverageStrategy_WeightedByReach(t *testing.T) {
	p := New(2)

	// First iteration: uniform strategy, reach weight 1.
	p.AddRegret(1.0, []float64{1, 0})
	p.AddStrategyWeight(1.0)
	p.NextStrategy(1.0, 1.0, 1.0)

	// Second iteration: strategy is now (1, 0), reach weight 1.
	p.AddStrategyWeight(1.0)
	p.NextStrategy(1.0, 1.0, 1.0)

	avg := p.GetAverageStrategy()
	assert.InDelta(t, 0.75, avg[0], 1e-12)
	assert.InDelta(t, 0.25, avg[1], 1e-12)
	assert.InDelta(t, 1.0, floats.Sum(avg), 1e-9)
}

// Resuming accumulation must be indistinguishable from a continuous
// run: all updates are additive.
func TestAccumulation_CheckpointAndResumeIsIdentical(t *testing.T) {
	type step struct {
		regrets []float64
		weight  float64
	}
	steps := []step{
		{[]float64{1, -0.5, 0.25}, 1.0},
		{[]float64{-2, 1, 0}, 0.5},
		{[]float64{0.1, 0.2, -0.3}, 0.75},
		{[]float64{4, -4, 2}, 0.25},
	}

	apply := func(p *Policy, steps []step) {
		for _, s := range steps {
			p.AddRegret(0.9, s.regrets)
			p.AddStrategyWeight(s.weight)
			p.NextStrategy(1.0, 1.0, 1.0)
		}
	}

	continuous := New(3)
	apply(continuous, steps)

	resumed := New(3)
	apply(resumed, steps[:2])
	apply(resumed, steps[2:])

	assert.Equal(t, continuous.RegretSum(), resumed.RegretSum())
	assert.Equal(t, continuous.StrategySum(), resumed.StrategySum())
	assert.Equal(t, continuous.GetAverageStrategy(), resumed.GetAverageStrategy())
}

func TestNextStrategy_CFRPlusDiscardsNegativeRegret(t *testing.T) {
	p := New(2)
	p.AddRegret(1.0, []float64{-2, 1})
	p.NextStrategy(1.0, 0.0, 1.0)

	assert.Equal(t, []float64{0, 1}, p.RegretSum())
}

func TestResetStrategySum(t *testing.T) {
	p := New(2)
	p.AddStrategyWeight(1.0)
	p.NextStrategy(1.0, 1.0, 1.0)
	require.Greater(t, floats.Sum(p.StrategySum()), 0.0)

	p.ResetStrategySum()
	assert.Equal(t, []float64{0, 0}, p.StrategySum())
	assert.Equal(t, []float64{0.5, 0.5}, p.GetAverageStrategy())
}
