package cfr

import (
	"gonum.org/v1/gonum/floats"
)

// VanillaCFR performs full-width CFR iterations: every chance outcome
// and every action is traversed each iteration, so runs are fully
// deterministic and need no source of randomness.
type VanillaCFR struct {
	strategyProfile StrategyProfile
	slicePool       *floatSlicePool
}

// NewVanilla creates a VanillaCFR that accumulates into the given
// strategy profile.
func NewVanilla(strategyProfile StrategyProfile) *VanillaCFR {
	return &VanillaCFR{
		strategyProfile: strategyProfile,
		slicePool:       &floatSlicePool{},
	}
}

// Run performs one CFR iteration over the game tree rooted at node and
// returns its expected value for player 0 under the current strategy
// profile.
func (c *VanillaCFR) Run(node GameTreeNode) float64 {
	ev := c.runHelper(node, Player0, 1.0, 1.0, 1.0)
	c.strategyProfile.Update()
	return ev
}

// runHelper returns the value of the subtree at node from lastPlayer's
// point of view.
func (c *VanillaCFR) runHelper(node GameTreeNode, lastPlayer int, reachP0, reachP1, reachChance float64) float64 {
	var ev float64
	switch node.Type() {
	case TerminalNodeType:
		ev = node.Utility(lastPlayer)
	case ChanceNodeType:
		ev = c.handleChanceNode(node, lastPlayer, reachP0, reachP1, reachChance)
	default:
		sgn := getSign(lastPlayer, node.Player())
		ev = sgn * c.handlePlayerNode(node, reachP0, reachP1, reachChance)
	}

	node.Close()
	return ev
}

// handleChanceNode integrates over all chance outcomes exactly, rather
// than sampling.
func (c *VanillaCFR) handleChanceNode(node GameTreeNode, lastPlayer int, reachP0, reachP1, reachChance float64) float64 {
	var expectedValue float64
	for i := 0; i < node.NumChildren(); i++ {
		child := node.GetChild(i)
		p := node.GetChildProbability(i)
		expectedValue += p * c.runHelper(child, lastPlayer, reachP0, reachP1, p*reachChance)
	}

	return expectedValue
}

// handlePlayerNode returns the node's value from the acting player's
// point of view and accumulates regrets and strategy weight for the
// acting player's information set.
func (c *VanillaCFR) handlePlayerNode(node GameTreeNode, reachP0, reachP1, reachChance float64) float64 {
	player := node.Player()
	nChildren := node.NumChildren()
	strategy := c.strategyProfile.GetPolicy(node)

	if nChildren == 1 {
		// No real choice: regret is trivially zero, but the strategy
		// weight still accumulates so the average stays consistent.
		c.strategyProfile.AddStrategyWeight(node, reachProb(player, reachP0, reachP1, reachChance))
		return c.runHelper(node.GetChild(0), player, reachP0, reachP1, reachChance)
	}

	actionUtils := c.slicePool.alloc(nChildren)
	defer c.slicePool.free(actionUtils)
	for i := 0; i < nChildren; i++ {
		child := node.GetChild(i)
		p := strategy[i]
		if player == Player0 {
			actionUtils[i] = c.runHelper(child, player, p*reachP0, reachP1, reachChance)
		} else {
			actionUtils[i] = c.runHelper(child, player, reachP0, p*reachP1, reachChance)
		}
	}

	nodeUtil := floats.Dot(strategy, actionUtils)

	// Transform action utilities into instantaneous regrets by
	// subtracting out the expected utility over all actions.
	floats.AddConst(-nodeUtil, actionUtils)
	c.strategyProfile.AddRegret(node, counterFactualProb(player, reachP0, reachP1, reachChance), actionUtils)
	c.strategyProfile.AddStrategyWeight(node, reachProb(player, reachP0, reachP1, reachChance))
	return nodeUtil
}

// getSign flips the utility when crossing to the opposing player's
// point of view (zero-sum convention).
func getSign(lastPlayer, player int) float64 {
	if player != lastPlayer {
		return -1.0
	}

	return 1.0
}

// reachProb is the probability of reaching this node under the current
// strategy profile, as seen by the acting player.
func reachProb(player int, reachP0, reachP1, reachChance float64) float64 {
	if player == Player0 {
		return reachP0 * reachChance
	}
	return reachP1 * reachChance
}

// counterFactualProb is the probability of reaching this node assuming
// the acting player tried to reach it.
func counterFactualProb(player int, reachP0, reachP1, reachChance float64) float64 {
	if player == Player0 {
		return reachP1 * reachChance
	}
	return reachP0 * reachChance
}
