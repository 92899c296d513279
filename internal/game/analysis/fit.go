package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
)

// Fit is the result of a chi-square goodness-of-fit test.
type Fit struct {
	Statistic        float64
	DegreesOfFreedom int
	PValue           float64
	Observations     int
}

// GoodnessOfFit tests whether the faces recorded for the die at 1-based
// position match d's current weights. Zero-weight faces are left out of the
// expected distribution; if one was nonetheless observed, or a face d does
// not have, the statistic is +Inf and the p-value 0.
//
// Precondition: d must be non-nil; position must name a column of the play.
// Postcondition: Returns ErrInvalidArgument for a bad position,
// ErrInvalidWeight if d's weights are all zero, or ErrNoPlayRecorded.
func (a *Analyzer[F]) GoodnessOfFit(d *dice.Die[F], position int) (Fit, error) {
	if d == nil {
		return Fit{}, fmt.Errorf("%w: die must not be nil", ErrInvalidArgument)
	}
	w, err := a.table()
	if err != nil {
		return Fit{}, err
	}
	col, ok := w.Column(position)
	if !ok {
		return Fit{}, fmt.Errorf("%w: no die at position %d", ErrInvalidArgument, position)
	}
	probs, err := d.Probabilities()
	if err != nil {
		return Fit{}, err
	}

	observed := make(map[F]int, len(probs))
	for _, f := range col {
		observed[f]++
	}

	n := float64(len(col))
	fit := Fit{Observations: len(col)}
	fit.DegreesOfFreedom = positive(probs) - 1
	for f := range observed {
		if probs[f] == 0 {
			fit.Statistic = math.Inf(1)
			return fit, nil
		}
	}

	for f, p := range probs {
		if p == 0 {
			continue
		}
		e := n * p
		diff := float64(observed[f]) - e
		fit.Statistic += diff * diff / e
	}

	if fit.DegreesOfFreedom < 1 {
		fit.PValue = 1
		return fit, nil
	}
	fit.PValue = distuv.ChiSquared{K: float64(fit.DegreesOfFreedom)}.Survival(fit.Statistic)
	return fit, nil
}

func positive[F dice.Face](probs map[F]float64) int {
	n := 0
	for _, p := range probs {
		if p > 0 {
			n++
		}
	}
	return n
}
