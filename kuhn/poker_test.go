package kuhn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfr "github.com/EastChord/Counterfactual-Regret-Minimization"
	"github.com/EastChord/Counterfactual-Regret-Minimization/tree"
)

func TestPoker_TreeShape(t *testing.T) {
	// 1 chance root, 6 deals, 9 betting nodes per deal.
	assert.Equal(t, 55, tree.CountNodes(NewGame()))
	assert.Equal(t, 30, tree.CountTerminalNodes(NewGame()))
	// 3 cards x 4 decision histories ("", "c", "b", "cb").
	assert.Equal(t, 12, tree.CountInfoSets(NewGame()))
}

func TestPoker_TerminalNodesAreChildless(t *testing.T) {
	// Walking past a terminal would otherwise extend the history forever.
	tree.Visit(NewGame(), func(node cfr.GameTreeNode) {
		if node.Type() == cfr.TerminalNodeType {
			assert.Equal(t, 0, node.NumChildren())
		}
	})

	// Spot-check the shallowest showdown directly.
	root := NewGame()
	deal := root.GetChild(0)
	cc := deal.GetChild(0).GetChild(0)
	require.Equal(t, cfr.TerminalNodeType, cc.Type())
	assert.Equal(t, 0, cc.NumChildren())
}

func TestPoker_InfoSetHidesOpponentCard(t *testing.T) {
	tree.VisitInfoSets(NewGame(), func(player int, infoSet string) {
		require.GreaterOrEqual(t, len(infoSet), 2)
		assert.Contains(t, []byte{'J', 'Q', 'K'}, infoSet[0])
		assert.Equal(t, byte('-'), infoSet[1])
	})
}

func TestPoker_TerminalUtilitiesAreZeroSum(t *testing.T) {
	tree.Visit(NewGame(), func(node cfr.GameTreeNode) {
		if node.Type() != cfr.TerminalNodeType {
			return
		}
		u0 := node.Utility(cfr.Player0)
		u1 := node.Utility(cfr.Player1)
		assert.Equal(t, u0, -u1)
	})
}

func TestVanillaCFR_ConvergesToEquilibriumValue(t *testing.T) {
	policies := cfr.NewPolicyTable(cfr.DiscountParams{})
	engine := cfr.NewVanilla(policies)
	root := NewGame()

	const iterations = 10000
	var total float64
	for i := 0; i < iterations; i++ {
		total += engine.Run(root)
	}

	assert.InDelta(t, -1.0/18.0, total/iterations, 0.02)
}

func TestVanillaCFR_StrategyIsSensible(t *testing.T) {
	policies := cfr.NewPolicyTable(cfr.DiscountParams{})
	engine := cfr.NewVanilla(policies)
	root := NewGame()
	for i := 0; i < 10000; i++ {
		engine.Run(root)
	}

	avg := func(key string) []float64 {
		s := policies.AverageStrategyByKey(key)
		require.NotNil(t, s, "missing infoset %s", key)
		return s
	}
	const bet = 1 // action order is check, bet

	// A king facing a bet always calls; a jack almost never does.
	assert.Greater(t, avg("K-b")[bet], 0.95)
	assert.Less(t, avg("J-b")[bet], 0.05)
	assert.Greater(t, avg("K-cb")[bet], 0.95)
	assert.Less(t, avg("J-cb")[bet], 0.05)

	// Betting frequency is monotone in hand strength.
	for _, history := range []string{"", "c"} {
		j := avg("J-" + history)[bet]
		k := avg("K-" + history)[bet]
		assert.GreaterOrEqual(t, k, j, "history %q", history)
	}

	// A queen facing the opening bet calls about 1/3 of the time.
	assert.InDelta(t, 1.0/3.0, avg("Q-b")[bet], 0.05)
}

func TestVanillaCFR_Deterministic(t *testing.T) {
	run := func() map[string][]float64 {
		policies := cfr.NewPolicyTable(cfr.DiscountParams{})
		engine := cfr.NewVanilla(policies)
		root := NewGame()
		for i := 0; i < 500; i++ {
			engine.Run(root)
		}

		result := make(map[string][]float64)
		policies.VisitSorted(func(key string, avg []float64) {
			result[key] = avg
		})
		return result
	}

	assert.Equal(t, run(), run())
}

func TestChanceSamplingCFR_Converges(t *testing.T) {
	policies := cfr.NewPolicyTable(cfr.DiscountParams{})
	engine := cfr.NewChanceSampling(policies, rand.New(rand.NewSource(1)))
	root := NewGame()
	for i := 0; i < 100000; i++ {
		engine.Run(root)
	}

	avg := policies.AverageStrategyByKey("K-b")
	require.NotNil(t, avg)
	assert.Greater(t, avg[1], 0.9)
}

func TestChanceSamplingCFR_SameSeedSameResult(t *testing.T) {
	run := func(seed int64) []float64 {
		policies := cfr.NewPolicyTable(cfr.DiscountParams{})
		engine := cfr.NewChanceSampling(policies, rand.New(rand.NewSource(seed)))
		root := NewGame()
		for i := 0; i < 2000; i++ {
			engine.Run(root)
		}
		return policies.AverageStrategyByKey("Q-b")
	}

	assert.Equal(t, run(3), run(3))
}

func TestCFRPlus_Converges(t *testing.T) {
	policies := cfr.NewPolicyTable(cfr.DiscountParams{
		UseRegretMatchingPlus: true,
		LinearWeighting:       true,
	})
	engine := cfr.NewVanilla(policies)
	root := NewGame()

	const iterations = 10000
	var total float64
	for i := 0; i < iterations; i++ {
		total += engine.Run(root)
	}

	assert.InDelta(t, -1.0/18.0, total/iterations, 0.02)
}
