package cfr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscountParams_ZeroValueIsPlainCFR(t *testing.T) {
	pos, neg, sum := DiscountParams{}.GetDiscountFactors(7)
	assert.Equal(t, 1.0, pos)
	assert.Equal(t, 1.0, neg)
	assert.Equal(t, 1.0, sum)
}

func TestDiscountParams_CFRPlus(t *testing.T) {
	params := DiscountParams{UseRegretMatchingPlus: true}
	pos, neg, sum := params.GetDiscountFactors(3)
	assert.Equal(t, 1.0, pos)
	assert.Equal(t, 0.0, neg)
	assert.Equal(t, 1.0, sum)
}

func TestDiscountParams_LinearWeighting(t *testing.T) {
	params := DiscountParams{LinearWeighting: true}
	_, _, sum := params.GetDiscountFactors(4)
	assert.Equal(t, 0.8, sum)
}

func TestDiscountParams_DCFR(t *testing.T) {
	params := DiscountParams{
		DiscountAlpha: 1.5,
		DiscountBeta:  0.5,
		DiscountGamma: 2.0,
	}

	pos, neg, sum := params.GetDiscountFactors(4)

	x := math.Pow(4, 1.5)
	assert.InDelta(t, x/(x+1), pos, 1e-12)
	assert.InDelta(t, 2.0/3.0, neg, 1e-12)
	assert.InDelta(t, 0.64, sum, 1e-12)
}
