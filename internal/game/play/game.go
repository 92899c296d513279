// Package play runs batches of dice rolls and records the most recent batch
// as a roll by die table.
package play

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
)

// ErrInvalidArgument is dice.ErrInvalidArgument, re-exported so callers of
// this package can match it without importing dice.
var ErrInvalidArgument = dice.ErrInvalidArgument

// ErrInvalidOption is returned for a shape other than ShapeWide or ShapeNarrow.
var ErrInvalidOption = errors.New("invalid option")

// ErrNoPlayRecorded is returned when a table is requested before any Play.
var ErrNoPlayRecorded = errors.New("no play recorded")

// Recorder exposes the most recent play. Analyzers accept any Recorder.
type Recorder[F dice.Face] interface {
	LastPlay(shape Shape) (Table[F], error)
}

// Game rolls an ordered list of dice together. Dice may be shared between
// games and may carry different face sets; keeping them compatible is the
// caller's responsibility.
//
// A Game is not safe for concurrent use.
type Game[F dice.Face] struct {
	rollers []*dice.Roller[F]
	logger  *zap.Logger
	last    *Wide[F]
}

// NewGame creates a Game over dice, in position order.
//
// Precondition: dice must be non-empty with no nil entries; logger must be non-nil.
// Postcondition: Returns a Game with no recorded play, or ErrInvalidArgument.
func NewGame[F dice.Face](ds []*dice.Die[F], logger *zap.Logger) (*Game[F], error) {
	if len(ds) == 0 {
		return nil, fmt.Errorf("%w: a game needs at least one die", ErrInvalidArgument)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger must not be nil", ErrInvalidArgument)
	}
	rollers := make([]*dice.Roller[F], len(ds))
	for i, d := range ds {
		if d == nil {
			return nil, fmt.Errorf("%w: die at position %d is nil", ErrInvalidArgument, i+1)
		}
		rollers[i] = dice.NewLoggedRoller(d, logger)
	}
	return &Game[F]{rollers: rollers, logger: logger}, nil
}

// Dice returns the game's dice in position order.
func (g *Game[F]) Dice() []*dice.Die[F] {
	out := make([]*dice.Die[F], len(g.rollers))
	for i, r := range g.rollers {
		out[i] = r.Die()
	}
	return out
}

// Play rolls every die n times and records the result, replacing any
// previous play. Each die produces its whole batch in one call, in position
// order, so outcomes on one roll are independent across dice.
//
// Precondition: n >= 1.
// Postcondition: LastPlay returns an n by len(Dice()) table; on error the
// previous play is kept.
func (g *Game[F]) Play(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: roll count must be >= 1, got %d", ErrInvalidArgument, n)
	}
	start := time.Now()

	columns := make([][]F, len(g.rollers))
	for j, r := range g.rollers {
		faces, err := r.Roll(n)
		if err != nil {
			return fmt.Errorf("rolling die %d: %w", j+1, err)
		}
		columns[j] = faces
	}

	w := &Wide[F]{
		Rolls: make([]int, n),
		Dice:  make([]int, len(g.rollers)),
		Cells: make([][]F, n),
	}
	for j := range w.Dice {
		w.Dice[j] = j + 1
	}
	for i := range w.Cells {
		w.Rolls[i] = i + 1
		row := make([]F, len(columns))
		for j, col := range columns {
			row[j] = col[i]
		}
		w.Cells[i] = row
	}
	g.last = w

	g.logger.Debug("play recorded",
		zap.Int("rolls", n),
		zap.Int("dice", len(g.rollers)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// LastPlay returns a copy of the most recent play in the requested shape.
//
// Postcondition: Returns ErrInvalidArgument on a nil Game, ErrInvalidOption
// for an unknown shape and ErrNoPlayRecorded before the first successful Play.
func (g *Game[F]) LastPlay(shape Shape) (Table[F], error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil game", ErrInvalidArgument)
	}
	switch shape {
	case ShapeWide:
		w, err := g.LastPlayWide()
		if err != nil {
			return nil, err
		}
		return w, nil
	case ShapeNarrow:
		n, err := g.LastPlayNarrow()
		if err != nil {
			return nil, err
		}
		return n, nil
	}
	return nil, fmt.Errorf("%w: shape %q (want %q or %q)", ErrInvalidOption, shape, ShapeWide, ShapeNarrow)
}

// LastPlayWide returns a copy of the most recent play in wide shape.
func (g *Game[F]) LastPlayWide() (Wide[F], error) {
	if g == nil {
		return Wide[F]{}, fmt.Errorf("%w: nil game", ErrInvalidArgument)
	}
	if g.last == nil {
		return Wide[F]{}, ErrNoPlayRecorded
	}
	return g.last.Wide(), nil
}

// LastPlayNarrow returns a copy of the most recent play in narrow shape.
func (g *Game[F]) LastPlayNarrow() (Narrow[F], error) {
	if g == nil {
		return Narrow[F]{}, fmt.Errorf("%w: nil game", ErrInvalidArgument)
	}
	if g.last == nil {
		return Narrow[F]{}, ErrNoPlayRecorded
	}
	return g.last.Narrow(), nil
}
