// Package cfr computes approximate Nash equilibrium strategies for
// two-player zero-sum imperfect-information games by Counterfactual
// Regret Minimization.
//
// Game rules are supplied by implementing GameTreeNode; the traversal
// engines (VanillaCFR, ChanceSamplingCFR) accumulate regret and average
// strategy statistics in a StrategyProfile, whose time-averaged strategy
// converges to equilibrium.
package cfr

import "math/rand"

// NodeType is the type of node in an extensive-form game tree.
type NodeType int

const (
	ChanceNodeType NodeType = iota
	TerminalNodeType
	PlayerNodeType
)

// Player 0 is the fixed reference player: traversal engines report
// expected values from player 0's point of view.
const (
	Player0 = 0
	Player1 = 1
)

// GameTreeNode is a node in an extensive-form game tree.
// It is the only interface game rule implementations must satisfy.
type GameTreeNode interface {
	// Type returns the kind of this node.
	Type() NodeType

	// NumChildren returns the number of direct children of this node.
	// For a player node this is the number of legal actions.
	NumChildren() int
	// GetChild returns the node reached by the ith action (or the ith
	// chance outcome).
	GetChild(i int) GameTreeNode
	// GetChildProbability returns the fixed probability of the ith
	// chance outcome. May only be called on chance nodes.
	GetChildProbability(i int) float64
	// SampleChild draws one child according to the chance outcome
	// distribution, using the provided source of randomness.
	// May only be called on chance nodes.
	SampleChild(rng *rand.Rand) (GameTreeNode, float64)

	// Player returns the acting player at this node.
	// May only be called on player nodes.
	Player() int
	// InfoSet returns the key identifying this node's information set
	// from the given player's point of view. Two nodes with equal keys
	// are strategically indistinguishable to that player and share one
	// regret table.
	InfoSet(player int) string
	// Utility returns the terminal payoff for the given player.
	// May only be called on terminal nodes.
	Utility(player int) float64

	// Close releases any resources allocated while expanding this
	// node's children. Implementations may rebuild children on demand
	// after Close.
	Close()
}

// StrategyProfile accumulates regret and average-strategy statistics for
// every information set visited during traversal. The sequential and
// simultaneous variants are backed by the same per-infoset regret
// tables; StrategyProfile is the keyed form used by tree traversal.
type StrategyProfile interface {
	// GetPolicy returns the current (regret-matched) strategy for the
	// node's information set, creating the underlying table on first
	// visit. The returned slice must not be modified.
	GetPolicy(node GameTreeNode) []float64
	// AddRegret accumulates instantaneous regrets, weighted by the
	// counterfactual reach probability of the node.
	AddRegret(node GameTreeNode, counterfactualWeight float64, instantaneousRegrets []float64)
	// AddStrategyWeight accumulates the acting player's reach
	// probability toward the infoset's average strategy.
	AddStrategyWeight(node GameTreeNode, w float64)
	// GetAverageStrategy returns the normalized cumulative strategy for
	// the node's information set. This is the quantity that converges
	// to equilibrium.
	GetAverageStrategy(node GameTreeNode) []float64
	// Update applies the pending strategy-weight and regret-matching
	// updates for all infosets touched since the last call.
	// Traversal engines call it once at the end of each iteration.
	Update()
	// Iter returns the current iteration number (starting at 1).
	Iter() int
}
