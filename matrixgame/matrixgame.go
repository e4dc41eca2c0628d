// Package matrixgame learns approximate Nash equilibrium strategies
// for two-player zero-sum matrix games by regret matching.
//
// A matrix game is the degenerate case of CFR: both moves are
// simultaneous, so there is exactly one information set per player and
// no reach-probability weighting.
package matrixgame

import (
	"math/rand"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/EastChord/Counterfactual-Regret-Minimization/internal/policy"
)

// Trainer runs regret-matching iterations for a two-player zero-sum
// matrix game. payoffs[i][j] is the row player's utility when the row
// player plays i and the column player plays j; the column player
// receives the negation.
type Trainer struct {
	payoffs [][]float64
	row     *policy.Policy
	col     *policy.Policy

	// rng is nil for the exact (expected-utility) update form, which is
	// fully deterministic.
	rng *rand.Rand

	totalUtil [2]float64
	iters     int

	rowUtils []float64
	colUtils []float64
}

// New creates a Trainer that evaluates each action against the
// opponent's full mixed strategy every iteration. Runs are
// deterministic: no sampling is involved.
func New(payoffs [][]float64) (*Trainer, error) {
	return newTrainer(payoffs, nil)
}

// NewSampled creates a Trainer that samples one action per player per
// iteration from the current strategies, as in classic regret-matching
// self-play. The seed makes runs reproducible.
func NewSampled(payoffs [][]float64, seed int64) (*Trainer, error) {
	return newTrainer(payoffs, rand.New(rand.NewSource(seed)))
}

func newTrainer(payoffs [][]float64, rng *rand.Rand) (*Trainer, error) {
	if len(payoffs) == 0 || len(payoffs[0]) == 0 {
		return nil, errors.New("matrixgame: payoff matrix must be non-empty")
	}

	nCols := len(payoffs[0])
	for i, row := range payoffs {
		if len(row) != nCols {
			return nil, errors.Errorf("matrixgame: payoff matrix is ragged: row %d has %d columns, want %d",
				i, len(row), nCols)
		}
	}

	return &Trainer{
		payoffs:  payoffs,
		row:      policy.New(len(payoffs)),
		col:      policy.New(nCols),
		rng:      rng,
		rowUtils: make([]float64, len(payoffs)),
		colUtils: make([]float64, nCols),
	}, nil
}

// Train runs the given number of regret-matching iterations.
func (t *Trainer) Train(iterations int) error {
	if iterations <= 0 {
		return errors.Errorf("matrixgame: iterations must be positive, got %d", iterations)
	}

	logEvery := iterations / 10
	for i := 1; i <= iterations; i++ {
		if t.rng == nil {
			t.runExact()
		} else {
			t.runSampled()
		}

		if logEvery > 0 && i%logEvery == 0 {
			glog.V(1).Infof("after %d iterations, row player average strategy: %v",
				i, t.AverageStrategy(0))
		}
	}

	return nil
}

// runExact evaluates every action against the opponent's full mixed
// strategy, so regret updates carry no sampling noise.
func (t *Trainer) runExact() {
	rowStrategy := t.row.GetStrategy()
	colStrategy := t.col.GetStrategy()

	for i := range t.rowUtils {
		t.rowUtils[i] = floats.Dot(t.payoffs[i], colStrategy)
	}
	rowValue := floats.Dot(rowStrategy, t.rowUtils)

	for j := range t.colUtils {
		t.colUtils[j] = 0
		for i, p := range rowStrategy {
			t.colUtils[j] -= p * t.payoffs[i][j]
		}
	}
	colValue := floats.Dot(colStrategy, t.colUtils)

	floats.AddConst(-rowValue, t.rowUtils)
	floats.AddConst(-colValue, t.colUtils)

	t.accumulate(t.rowUtils, t.colUtils, rowValue, colValue)
}

// runSampled plays one sampled joint action and computes regret against
// the opponent's realized choice.
func (t *Trainer) runSampled() {
	rowStrategy := t.row.GetStrategy()
	colStrategy := t.col.GetStrategy()
	rowAction := sampleOne(t.rng, rowStrategy)
	colAction := sampleOne(t.rng, colStrategy)

	for i := range t.rowUtils {
		t.rowUtils[i] = t.payoffs[i][colAction]
	}
	rowValue := t.rowUtils[rowAction]
	floats.AddConst(-rowValue, t.rowUtils)

	for j := range t.colUtils {
		t.colUtils[j] = -t.payoffs[rowAction][j]
	}
	colValue := t.colUtils[colAction]
	floats.AddConst(-colValue, t.colUtils)

	t.accumulate(t.rowUtils, t.colUtils, rowValue, colValue)
}

func (t *Trainer) accumulate(rowRegrets, colRegrets []float64, rowValue, colValue float64) {
	// No reach weighting in a one-shot game: both weights are 1.
	t.row.AddRegret(1.0, rowRegrets)
	t.row.AddStrategyWeight(1.0)
	t.col.AddRegret(1.0, colRegrets)
	t.col.AddStrategyWeight(1.0)

	t.row.NextStrategy(1.0, 1.0, 1.0)
	t.col.NextStrategy(1.0, 1.0, 1.0)

	t.totalUtil[0] += rowValue
	t.totalUtil[1] += colValue
	t.iters++
}

// AverageStrategy returns the given player's time-averaged strategy,
// the quantity that converges to equilibrium.
func (t *Trainer) AverageStrategy(player int) []float64 {
	if player == 0 {
		return t.row.GetAverageStrategy()
	}
	return t.col.GetAverageStrategy()
}

// AverageUtility returns the given player's average per-iteration
// utility over the whole run.
func (t *Trainer) AverageUtility(player int) float64 {
	if t.iters == 0 {
		return 0
	}
	return t.totalUtil[player] / float64(t.iters)
}

// Iterations returns the number of completed training iterations.
func (t *Trainer) Iterations() int {
	return t.iters
}

const eps = 1e-9

func sampleOne(rng *rand.Rand, probDist []float64) int {
	x := rng.Float64()
	var cumProb float64
	for i, p := range probDist {
		cumProb += p
		if cumProb > x {
			return i
		}
	}

	if cumProb < 1.0-eps { // Leave room for floating point error.
		panic("matrixgame: probability distribution does not sum to 1")
	}

	return len(probDist) - 1
}
