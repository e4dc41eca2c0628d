// Package policy implements the tabular regret table at the heart of
// regret matching: cumulative regret and cumulative strategy weight for
// a single information set with a fixed action set.
package policy

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Policy accumulates regrets and strategy weights for one information
// set and produces the current strategy by regret matching.
type Policy struct {
	currentStrategy       []float64
	currentStrategyWeight float64

	regretSum   []float64
	strategySum []float64
}

// New returns a Policy for an information set with nActions legal
// actions. The action set is fixed for the life of the table.
// An empty action set is a game-rule bug and panics.
func New(nActions int) *Policy {
	if nActions <= 0 {
		panic(errors.Errorf("policy: information set must have at least one action, got %d", nActions))
	}

	return &Policy{
		currentStrategy:       uniformDist(nActions),
		currentStrategyWeight: 0.0,
		regretSum:             make([]float64, nActions),
		strategySum:           make([]float64, nActions),
	}
}

// GetStrategy returns the current regret-matched strategy.
// The returned slice is owned by the Policy and must not be modified.
func (p *Policy) GetStrategy() []float64 {
	return p.currentStrategy
}

// AddRegret accumulates the given instantaneous regrets, weighted by
// the counterfactual reach probability of the information set.
func (p *Policy) AddRegret(counterfactualWeight float64, instantaneousRegrets []float64) {
	floats.AddScaled(p.regretSum, counterfactualWeight, instantaneousRegrets)
}

// AddStrategyWeight accumulates the acting player's reach probability.
// The weighted current strategy is folded into the strategy sum on the
// next call to NextStrategy.
func (p *Policy) AddStrategyWeight(w float64) {
	p.currentStrategyWeight += w
}

// NextStrategy ends the current iteration for this information set:
// the accumulated strategy weight is applied to the strategy sum, the
// configured discounts are applied, and the current strategy is
// recomputed from the accumulated regrets.
func (p *Policy) NextStrategy(discountPositiveRegret, discountNegativeRegret, discountStrategySum float64) {
	if discountStrategySum != 1.0 {
		floats.Scale(discountStrategySum, p.strategySum)
	}

	floats.AddScaled(p.strategySum, p.currentStrategyWeight, p.currentStrategy)

	if discountPositiveRegret != 1.0 {
		for i, x := range p.regretSum {
			if x > 0 {
				p.regretSum[i] *= discountPositiveRegret
			}
		}
	}

	if discountNegativeRegret != 1.0 {
		for i, x := range p.regretSum {
			if x < 0 {
				p.regretSum[i] *= discountNegativeRegret
			}
		}
	}

	p.regretMatching()
	p.currentStrategyWeight = 0.0
}

// GetAverageStrategy returns the normalized cumulative strategy.
// For a table that has never been visited it is the uniform
// distribution.
func (p *Policy) GetAverageStrategy() []float64 {
	total := floats.Sum(p.strategySum)
	if total <= 0 {
		return uniformDist(len(p.strategySum))
	}

	avgStrat := make([]float64, len(p.strategySum))
	floats.ScaleTo(avgStrat, 1.0/total, p.strategySum)
	return avgStrat
}

// ResetStrategySum discards the accumulated average-strategy weights.
// Used to drop pre-convergence exploration partway through a run.
func (p *Policy) ResetStrategySum() {
	for i := range p.strategySum {
		p.strategySum[i] = 0.0
	}
}

// RegretSum returns the cumulative regret per action.
// The returned slice is owned by the Policy and must not be modified.
func (p *Policy) RegretSum() []float64 {
	return p.regretSum
}

// StrategySum returns the cumulative strategy weight per action.
// The returned slice is owned by the Policy and must not be modified.
func (p *Policy) StrategySum() []float64 {
	return p.strategySum
}

func (p *Policy) NumActions() int {
	return len(p.regretSum)
}

// regretMatching sets each action's probability proportional to its
// positive cumulative regret, falling back to uniform when no action
// has positive regret.
func (p *Policy) regretMatching() {
	copy(p.currentStrategy, p.regretSum)
	makePositive(p.currentStrategy)
	total := floats.Sum(p.currentStrategy)
	if total > 0 {
		floats.Scale(1.0/total, p.currentStrategy)
	} else {
		for i := range p.currentStrategy {
			p.currentStrategy[i] = 1.0 / float64(len(p.currentStrategy))
		}
	}
}

func uniformDist(n int) []float64 {
	result := make([]float64, n)
	floats.AddConst(1.0/float64(n), result)
	return result
}

func makePositive(v []float64) {
	for i := range v {
		if v[i] < 0 {
			v[i] = 0.0
		}
	}
}
