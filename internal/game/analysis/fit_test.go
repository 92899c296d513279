package analysis_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/montecarlo/internal/game/analysis"
	"github.com/cory-johannsen/montecarlo/internal/game/dice"
)

func d6() []int { return []int{1, 2, 3, 4, 5, 6} }

func TestGoodnessOfFit_FairDie(t *testing.T) {
	g := seededGame(t, d6(), 1, 42)
	require.NoError(t, g.Play(6000))
	a, err := analysis.New[int](g)
	require.NoError(t, err)

	fit, err := a.GoodnessOfFit(g.Dice()[0], 1)
	require.NoError(t, err)
	assert.Equal(t, 5, fit.DegreesOfFreedom)
	assert.Equal(t, 6000, fit.Observations)
	assert.Greater(t, fit.PValue, 0.001)
	assert.LessOrEqual(t, fit.PValue, 1.0)
}

func TestGoodnessOfFit_LoadedDieRejected(t *testing.T) {
	g := seededGame(t, d6(), 1, 42)
	require.NoError(t, g.Dice()[0].SetWeight(6, 5))
	require.NoError(t, g.Play(6000))
	a, err := analysis.New[int](g)
	require.NoError(t, err)

	fair := dice.MustNew(d6())
	fit, err := a.GoodnessOfFit(fair, 1)
	require.NoError(t, err)
	assert.Less(t, fit.PValue, 1e-6)

	// Against its own weights the loaded die fits.
	fit, err = a.GoodnessOfFit(g.Dice()[0], 1)
	require.NoError(t, err)
	assert.Greater(t, fit.PValue, 0.001)
}

func TestGoodnessOfFit_ObservedZeroWeightFace(t *testing.T) {
	g := seededGame(t, d6(), 1, 7)
	require.NoError(t, g.Play(600))
	a, err := analysis.New[int](g)
	require.NoError(t, err)

	never := dice.MustNew(d6())
	require.NoError(t, never.SetWeight(1, 0))
	fit, err := a.GoodnessOfFit(never, 1)
	require.NoError(t, err)
	assert.True(t, math.IsInf(fit.Statistic, 1))
	assert.Equal(t, 0.0, fit.PValue)
}

func TestGoodnessOfFit_SingleFaceDie(t *testing.T) {
	g := seededGame(t, []int{4}, 1, 1)
	require.NoError(t, g.Play(10))
	a, err := analysis.New[int](g)
	require.NoError(t, err)

	fit, err := a.GoodnessOfFit(g.Dice()[0], 1)
	require.NoError(t, err)
	assert.Equal(t, 0, fit.DegreesOfFreedom)
	assert.Equal(t, 1.0, fit.PValue)
}

func TestGoodnessOfFit_Errors(t *testing.T) {
	g := seededGame(t, d6(), 2, 1)
	a, err := analysis.New[int](g)
	require.NoError(t, err)

	_, err = a.GoodnessOfFit(nil, 1)
	assert.ErrorIs(t, err, analysis.ErrInvalidArgument)

	require.NoError(t, g.Play(5))
	for _, pos := range []int{0, 3, -1} {
		_, err = a.GoodnessOfFit(g.Dice()[0], pos)
		assert.ErrorIs(t, err, analysis.ErrInvalidArgument, "position %d", pos)
	}

	allZero := dice.MustNew(d6())
	for _, f := range d6() {
		require.NoError(t, allZero.SetWeight(f, 0))
	}
	_, err = a.GoodnessOfFit(allZero, 1)
	assert.ErrorIs(t, err, dice.ErrInvalidWeight)
}
