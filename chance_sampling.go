package cfr

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// ChanceSamplingCFR performs CFR iterations in which each chance node
// samples a single outcome rather than enumerating all of them.
// Runs are reproducible given the seed of the provided RNG.
type ChanceSamplingCFR struct {
	strategyProfile StrategyProfile
	slicePool       *floatSlicePool
	rng             *rand.Rand
}

// NewChanceSampling creates a ChanceSamplingCFR that accumulates into
// the given strategy profile. The RNG drives chance outcome selection
// and must not be nil.
func NewChanceSampling(strategyProfile StrategyProfile, rng *rand.Rand) *ChanceSamplingCFR {
	return &ChanceSamplingCFR{
		strategyProfile: strategyProfile,
		slicePool:       &floatSlicePool{},
		rng:             rng,
	}
}

// Run performs one chance-sampled CFR iteration over the game tree
// rooted at node and returns the sampled value for player 0.
func (c *ChanceSamplingCFR) Run(node GameTreeNode) float64 {
	ev := c.runHelper(node, Player0, 1.0, 1.0)
	c.strategyProfile.Update()
	return ev
}

func (c *ChanceSamplingCFR) runHelper(node GameTreeNode, lastPlayer int, reachP0, reachP1 float64) float64 {
	var ev float64
	switch node.Type() {
	case TerminalNodeType:
		ev = node.Utility(lastPlayer)
	case ChanceNodeType:
		// Chance sampling probabilities cancel out in the calculation
		// of counterfactual value.
		child, _ := node.SampleChild(c.rng)
		ev = c.runHelper(child, lastPlayer, reachP0, reachP1)
	default:
		sgn := getSign(lastPlayer, node.Player())
		ev = sgn * c.handlePlayerNode(node, reachP0, reachP1)
	}

	node.Close()
	return ev
}

func (c *ChanceSamplingCFR) handlePlayerNode(node GameTreeNode, reachP0, reachP1 float64) float64 {
	player := node.Player()
	nChildren := node.NumChildren()
	strategy := c.strategyProfile.GetPolicy(node)

	if nChildren == 1 {
		c.strategyProfile.AddStrategyWeight(node, reachProb(player, reachP0, reachP1, 1.0))
		return c.runHelper(node.GetChild(0), player, reachP0, reachP1)
	}

	actionUtils := c.slicePool.alloc(nChildren)
	defer c.slicePool.free(actionUtils)
	for i := 0; i < nChildren; i++ {
		child := node.GetChild(i)
		p := strategy[i]
		if player == Player0 {
			actionUtils[i] = c.runHelper(child, player, p*reachP0, reachP1)
		} else {
			actionUtils[i] = c.runHelper(child, player, reachP0, p*reachP1)
		}
	}

	nodeUtil := floats.Dot(strategy, actionUtils)
	floats.AddConst(-nodeUtil, actionUtils)
	c.strategyProfile.AddRegret(node, counterFactualProb(player, reachP0, reachP1, 1.0), actionUtils)
	c.strategyProfile.AddStrategyWeight(node, reachProb(player, reachP0, reachP1, 1.0))
	return nodeUtil
}
