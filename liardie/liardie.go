// Package liardie trains approximate equilibrium strategies for Liar
// Die, a one-die bluffing game: each player in turn rolls a die in
// secret and claims a strength, which must exceed the previous claim;
// the opponent either doubts (ending the game) or accepts, rolls, and
// claims higher. A doubt wins if the doubted claim exceeded the actual
// roll.
//
// Because every information set is identified by at most two claim
// levels and a roll, the game is a fixed DAG and is trained with the
// two-pass forward/backward engine in package fsicfr.
package liardie

import (
	"fmt"
	"math/rand"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	cfr "github.com/EastChord/Counterfactual-Regret-Minimization"
	"github.com/EastChord/Counterfactual-Regret-Minimization/fsicfr"
)

// Response actions. Claim actions are indexed by claimed value minus
// the previous claim minus one.
const (
	Doubt = iota
	Accept
)

// maxSides bounds the DAG size; the node grids grow quadratically.
const maxSides = 20

// Config describes a training run.
type Config struct {
	// Sides is the number of faces on the die.
	Sides int
	// Seed drives the per-iteration fixed die rolls.
	Seed int64
	// Discounts configures regret/strategy-sum discounting; the zero
	// value is plain CFR.
	Discounts cfr.DiscountParams
	// KeepFullAverage disables the halfway strategy-sum reset that
	// drops pre-convergence exploration from the reported average.
	KeepFullAverage bool
}

// Trainer owns the information-set node grids for one training run.
type Trainer struct {
	cfg Config
	rng *rand.Rand

	// responseNodes[myClaim][oppClaim] is the responder's decision
	// after having claimed myClaim and heard the higher claim oppClaim.
	// Doubting the maximum claim is forced, so those sets have a single
	// action.
	responseNodes [][]*fsicfr.Node
	// claimNodes[oppClaim][roll] is the claimant's decision after
	// accepting claim oppClaim and rolling roll; the legal claims are
	// oppClaim+1..Sides.
	claimNodes [][]*fsicfr.Node

	rolls []int
	iter  int
}

// New allocates the full information-set grid for the given
// configuration.
func New(cfg Config) (*Trainer, error) {
	if cfg.Sides < 2 {
		return nil, errors.Errorf("liardie: need at least 2 die sides, got %d", cfg.Sides)
	}
	if cfg.Sides > maxSides {
		return nil, errors.Errorf("liardie: at most %d die sides supported, got %d", maxSides, cfg.Sides)
	}

	t := &Trainer{
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(cfg.Seed)),
		responseNodes: make([][]*fsicfr.Node, cfg.Sides),
		claimNodes:    make([][]*fsicfr.Node, cfg.Sides),
		rolls:         make([]int, cfg.Sides),
	}

	for myClaim := 0; myClaim < cfg.Sides; myClaim++ {
		t.responseNodes[myClaim] = make([]*fsicfr.Node, cfg.Sides+1)
		for oppClaim := myClaim + 1; oppClaim <= cfg.Sides; oppClaim++ {
			nActions := 2
			if oppClaim == cfg.Sides {
				nActions = 1 // The maximum claim can only be doubted.
			}
			t.responseNodes[myClaim][oppClaim] = fsicfr.NewNode(nActions)
		}
	}

	for oppClaim := 0; oppClaim < cfg.Sides; oppClaim++ {
		t.claimNodes[oppClaim] = make([]*fsicfr.Node, cfg.Sides+1)
		for roll := 1; roll <= cfg.Sides; roll++ {
			t.claimNodes[oppClaim][roll] = fsicfr.NewNode(cfg.Sides - oppClaim)
		}
	}

	return t, nil
}

// Sides returns the number of die faces.
func (t *Trainer) Sides() int {
	return t.cfg.Sides
}

// Train runs the given number of forward/backward iterations.
func (t *Trainer) Train(iterations int) error {
	if iterations <= 0 {
		return errors.Errorf("liardie: iterations must be positive, got %d", iterations)
	}

	logEvery := iterations / 10
	for i := 0; i < iterations; i++ {
		t.sampleRolls()
		t.forward()
		t.backward()
		t.nextStrategies()

		if !t.cfg.KeepFullAverage && i == iterations/2 {
			t.resetStrategySums()
		}
		if logEvery > 0 && (i+1)%logEvery == 0 {
			glog.V(1).Infof("liardie: iteration %d/%d", i+1, iterations)
		}
	}

	return nil
}

// sampleRolls fixes this iteration's die roll for every claim level:
// rolls[c] is the roll made after claim c is accepted (rolls[0] is the
// opening roll). Fixing rolls up front is what lets one sweep stand in
// for the whole chance integration over many iterations.
func (t *Trainer) sampleRolls() {
	for i := range t.rolls {
		t.rolls[i] = t.rng.Intn(t.cfg.Sides) + 1
	}

	initial := t.claimNodes[0][t.rolls[0]]
	initial.PlayerReach = 1.0
	initial.OpponentReach = 1.0
}

// forward sweeps the DAG root-to-leaf, snapshotting strategies and
// accumulating reach probabilities.
func (t *Trainer) forward() {
	for oppClaim := 0; oppClaim <= t.cfg.Sides; oppClaim++ {
		t.forwardResponses(oppClaim)
		t.forwardClaims(oppClaim)
	}
}

func (t *Trainer) forwardResponses(oppClaim int) {
	if oppClaim == 0 {
		return
	}

	for myClaim := 0; myClaim < oppClaim; myClaim++ {
		node := t.responseNodes[myClaim][oppClaim]
		strategy := node.ForwardStrategy()
		if oppClaim >= t.cfg.Sides {
			continue // Doubt is forced; no continuation.
		}

		// Accepting leads to the responder's own claim node: the same
		// player keeps acting, so reach roles do not swap.
		next := t.claimNodes[oppClaim][t.rolls[oppClaim]]
		next.PlayerReach += strategy[Accept] * node.PlayerReach
		next.OpponentReach += node.OpponentReach
	}
}

func (t *Trainer) forwardClaims(oppClaim int) {
	if oppClaim >= t.cfg.Sides {
		return
	}

	node := t.claimNodes[oppClaim][t.rolls[oppClaim]]
	strategy := node.ForwardStrategy()
	for myClaim := oppClaim + 1; myClaim <= t.cfg.Sides; myClaim++ {
		claimProb := strategy[myClaim-oppClaim-1]
		if claimProb <= 0 {
			continue
		}

		// A claim hands the turn to the opponent, so reach roles swap.
		next := t.responseNodes[oppClaim][myClaim]
		next.PlayerReach += node.OpponentReach
		next.OpponentReach += claimProb * node.PlayerReach
	}
}

// backward sweeps leaf-to-root, computing node utilities and
// accumulating regret with the reaches cached by the forward sweep.
func (t *Trainer) backward() {
	for oppClaim := t.cfg.Sides; oppClaim >= 0; oppClaim-- {
		t.backwardClaims(oppClaim)
		t.backwardResponses(oppClaim)
	}
}

func (t *Trainer) backwardClaims(oppClaim int) {
	if oppClaim >= t.cfg.Sides {
		return
	}

	node := t.claimNodes[oppClaim][t.rolls[oppClaim]]
	utils := make([]float64, node.NumActions())
	for myClaim := oppClaim + 1; myClaim <= t.cfg.Sides; myClaim++ {
		// The opponent acts next, so their utility is negated.
		utils[myClaim-oppClaim-1] = -t.responseNodes[oppClaim][myClaim].Util
	}

	node.BackwardUpdate(utils)
}

func (t *Trainer) backwardResponses(oppClaim int) {
	if oppClaim == 0 {
		return
	}

	for myClaim := 0; myClaim < oppClaim; myClaim++ {
		node := t.responseNodes[myClaim][oppClaim]
		utils := make([]float64, node.NumActions())

		// The doubted claim was made after rolling rolls[myClaim]; the
		// doubt wins if the claim overstated that roll.
		if oppClaim > t.rolls[myClaim] {
			utils[Doubt] = 1.0
		} else {
			utils[Doubt] = -1.0
		}

		if oppClaim < t.cfg.Sides {
			// Accepting continues with the same player claiming, so no
			// sign flip.
			utils[Accept] = t.claimNodes[oppClaim][t.rolls[oppClaim]].Util
		}

		node.BackwardUpdate(utils)
	}
}

func (t *Trainer) nextStrategies() {
	t.iter++
	discountPos, discountNeg, discountSum := t.cfg.Discounts.GetDiscountFactors(t.iter)
	t.visitNodes(func(n *fsicfr.Node) {
		n.NextStrategy(discountPos, discountNeg, discountSum)
	})
}

func (t *Trainer) resetStrategySums() {
	t.visitNodes(func(n *fsicfr.Node) { n.ResetStrategySum() })
}

func (t *Trainer) visitNodes(f func(n *fsicfr.Node)) {
	for _, row := range t.responseNodes {
		for _, n := range row {
			if n != nil {
				f(n)
			}
		}
	}
	for _, row := range t.claimNodes {
		for _, n := range row {
			if n != nil {
				f(n)
			}
		}
	}
}

// InitialClaimStrategy returns the average strategy for the opening
// claim after rolling roll: one probability per claim 1..Sides.
func (t *Trainer) InitialClaimStrategy(roll int) []float64 {
	return t.ClaimStrategy(0, roll)
}

// ClaimStrategy returns the average strategy for the claim decision
// after accepting oppClaim and rolling roll: one probability per claim
// oppClaim+1..Sides.
func (t *Trainer) ClaimStrategy(oppClaim, roll int) []float64 {
	if oppClaim < 0 || oppClaim >= t.cfg.Sides || roll < 1 || roll > t.cfg.Sides {
		panic(errors.Errorf("liardie: no claim node for oppClaim=%d roll=%d", oppClaim, roll))
	}
	return t.claimNodes[oppClaim][roll].AverageStrategy()
}

// ResponseStrategy returns the average strategy for the doubt/accept
// decision after claiming myClaim and hearing oppClaim.
func (t *Trainer) ResponseStrategy(myClaim, oppClaim int) []float64 {
	if myClaim < 0 || myClaim >= t.cfg.Sides || oppClaim <= myClaim || oppClaim > t.cfg.Sides {
		panic(errors.Errorf("liardie: no response node for myClaim=%d oppClaim=%d", myClaim, oppClaim))
	}
	return t.responseNodes[myClaim][oppClaim].AverageStrategy()
}

// VisitSorted walks every information set in a fixed order with its
// average strategy, for flat export. Claim keys are
// "claim:<oppClaim>|<roll>", response keys "response:<myClaim>|<oppClaim>".
func (t *Trainer) VisitSorted(visit func(key string, averageStrategy []float64)) {
	for oppClaim := 0; oppClaim < t.cfg.Sides; oppClaim++ {
		for roll := 1; roll <= t.cfg.Sides; roll++ {
			key := fmt.Sprintf("claim:%d|%d", oppClaim, roll)
			visit(key, t.claimNodes[oppClaim][roll].AverageStrategy())
		}
	}
	for myClaim := 0; myClaim < t.cfg.Sides; myClaim++ {
		for oppClaim := myClaim + 1; oppClaim <= t.cfg.Sides; oppClaim++ {
			key := fmt.Sprintf("response:%d|%d", myClaim, oppClaim)
			visit(key, t.responseNodes[myClaim][oppClaim].AverageStrategy())
		}
	}
}
