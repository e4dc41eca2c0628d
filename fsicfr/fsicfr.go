// Package fsicfr implements the two-pass (forward/backward) execution
// strategy for CFR over games whose information sets form a fixed DAG,
// such as Liar Die. A forward sweep accumulates reach probabilities
// under the current strategy snapshot; a backward sweep then computes
// node utilities leaf-to-root and applies exactly the same regret and
// average-strategy updates as the single-pass recursive engine. The two
// forms are one algorithm with different schedules: both funnel through
// the shared regret table, so their update rules cannot diverge.
package fsicfr

import (
	"gonum.org/v1/gonum/floats"

	"github.com/EastChord/Counterfactual-Regret-Minimization/internal/policy"
)

// Node is one information set in the DAG. Reach probabilities are
// accumulated across the forward sweep and consumed (then zeroed) by
// the backward sweep within a single iteration.
type Node struct {
	pol *policy.Policy

	// PlayerReach is the summed probability that the acting player's
	// own choices lead to this node; OpponentReach is the opposing
	// player's counterfactual contribution.
	PlayerReach   float64
	OpponentReach float64

	// Util is this node's expected utility for its acting player,
	// filled in by the backward sweep.
	Util float64
}

// NewNode creates a node with the given fixed action set size.
func NewNode(nActions int) *Node {
	return &Node{pol: policy.New(nActions)}
}

func (n *Node) NumActions() int {
	return n.pol.NumActions()
}

// ForwardStrategy returns the current regret-matched strategy and
// accumulates the node's player reach toward the average strategy.
// Call exactly once per node per forward sweep: nodes with a single
// action have no regret to match but must still accumulate their
// strategy weight.
func (n *Node) ForwardStrategy() []float64 {
	n.pol.AddStrategyWeight(n.PlayerReach)
	return n.pol.GetStrategy()
}

// BackwardUpdate consumes the per-action utilities computed from the
// node's successors: it sets Util to the expected utility under the
// current strategy, accumulates the opponent-reach-weighted regrets,
// and resets the reach probabilities for the next iteration.
// actionUtils is modified in place.
func (n *Node) BackwardUpdate(actionUtils []float64) {
	strategy := n.pol.GetStrategy()
	n.Util = floats.Dot(strategy, actionUtils)

	if n.pol.NumActions() > 1 {
		floats.AddConst(-n.Util, actionUtils)
		n.pol.AddRegret(n.OpponentReach, actionUtils)
	}

	n.PlayerReach = 0.0
	n.OpponentReach = 0.0
}

// NextStrategy ends the iteration for this node: the accumulated
// strategy weight is folded into the strategy sum and the current
// strategy is recomputed from the regrets.
func (n *Node) NextStrategy(discountPositiveRegret, discountNegativeRegret, discountStrategySum float64) {
	n.pol.NextStrategy(discountPositiveRegret, discountNegativeRegret, discountStrategySum)
}

// AverageStrategy returns the node's time-averaged strategy.
func (n *Node) AverageStrategy() []float64 {
	return n.pol.GetAverageStrategy()
}

// ResetStrategySum discards accumulated average-strategy weights,
// typically to drop pre-convergence exploration partway through a run.
func (n *Node) ResetStrategySum() {
	n.pol.ResetStrategySum()
}
