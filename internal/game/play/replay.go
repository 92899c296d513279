package play

import (
	"fmt"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
)

// Replay is a Recorder over a fixed, previously recorded play, such as one
// loaded from storage.
type Replay[F dice.Face] struct {
	table Wide[F]
}

// NewReplay captures a copy of t.
//
// Precondition: t must be non-nil.
// Postcondition: Returns ErrInvalidArgument unless t holds exactly one
// outcome for every roll and die position.
func NewReplay[F dice.Face](t Table[F]) (*Replay[F], error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil table", ErrInvalidArgument)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("replaying play: %w", err)
	}
	return &Replay[F]{table: t.Wide()}, nil
}

// LastPlay returns a copy of the captured play in the requested shape.
//
// Postcondition: Returns ErrInvalidArgument on a nil Replay and
// ErrInvalidOption for an unknown shape.
func (r *Replay[F]) LastPlay(shape Shape) (Table[F], error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil replay", ErrInvalidArgument)
	}
	switch shape {
	case ShapeWide:
		return r.table.Wide(), nil
	case ShapeNarrow:
		return r.table.Narrow(), nil
	}
	return nil, fmt.Errorf("%w: shape %q (want %q or %q)", ErrInvalidOption, shape, ShapeWide, ShapeNarrow)
}
