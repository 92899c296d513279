// Package storage defines persistence of recorded plays. Backends live in
// the postgres and sqlite subpackages.
package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/game/play"
)

// ErrPlayNotFound is returned when a play lookup yields no results.
var ErrPlayNotFound = errors.New("play not found")

// ErrInvalidRecord is returned when a record cannot be saved.
var ErrInvalidRecord = errors.New("invalid play record")

// Row is one outcome of a stored play. Faces are kept as text so one schema
// serves numeric and textual dice.
type Row struct {
	Roll int
	Die  int
	Face string
}

// Record is a saved play in narrow shape.
type Record struct {
	ID        uuid.UUID
	DiceSet   string
	Kind      dice.Kind
	Seed      uint64
	Rolls     int
	Dice      int
	Rows      []Row
	CreatedAt time.Time
}

// PlayStore persists plays.
type PlayStore interface {
	// Save stores rec and returns its ID, assigning a new one when rec.ID is nil.
	Save(ctx context.Context, rec Record) (uuid.UUID, error)
	// Load returns the play stored under id, or ErrPlayNotFound.
	Load(ctx context.Context, id uuid.UUID) (Record, error)
	// Delete removes the play stored under id, or returns ErrPlayNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
}

// NewRecord converts a narrow table into a Record.
//
// Postcondition: Rows follow the table's key order; Rolls and Dice are the
// distinct roll and die counts.
func NewRecord[F dice.Face](diceSet string, kind dice.Kind, seed uint64, n play.Narrow[F]) Record {
	rec := Record{
		DiceSet: diceSet,
		Kind:    kind,
		Seed:    seed,
		Rows:    make([]Row, len(n.Rows)),
	}
	rolls := make(map[int]struct{})
	dies := make(map[int]struct{})
	for i, r := range n.Rows {
		rec.Rows[i] = Row{Roll: r.Roll, Die: r.Die, Face: FormatFace(r.Face)}
		rolls[r.Roll] = struct{}{}
		dies[r.Die] = struct{}{}
	}
	rec.Rolls = len(rolls)
	rec.Dice = len(dies)
	return rec
}

// Prepare validates rec and fills in its ID and CreatedAt when unset.
//
// Postcondition: Returns ErrInvalidRecord for a record without rows or kind.
func Prepare(rec Record) (Record, error) {
	if len(rec.Rows) == 0 {
		return rec, fmt.Errorf("%w: no rows", ErrInvalidRecord)
	}
	switch rec.Kind {
	case dice.KindNumeric, dice.KindText:
	default:
		return rec, fmt.Errorf("%w: unknown face kind %q", ErrInvalidRecord, rec.Kind)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return rec, nil
}

// FormatFace renders a face as stored text. Floats use the shortest exact
// representation.
func FormatFace[F dice.Face](f F) string {
	switch v := any(f).(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	}
	return fmt.Sprint(f)
}

// NumericTable rebuilds the numeric narrow table of a stored play.
//
// Postcondition: Returns ErrInvalidRecord for a textual record, an
// unparsable face, or rows that do not fill the Rolls by Dice grid.
func (r Record) NumericTable() (play.Narrow[float64], error) {
	if r.Kind != dice.KindNumeric {
		return play.Narrow[float64]{}, fmt.Errorf("%w: play %s holds %s faces", ErrInvalidRecord, r.ID, r.Kind)
	}
	if err := r.checkGrid(); err != nil {
		return play.Narrow[float64]{}, err
	}
	out := play.Narrow[float64]{Rows: make([]play.NarrowRow[float64], len(r.Rows))}
	for i, row := range r.Rows {
		f, err := strconv.ParseFloat(row.Face, 64)
		if err != nil {
			return play.Narrow[float64]{}, fmt.Errorf("%w: roll %d die %d: %v", ErrInvalidRecord, row.Roll, row.Die, err)
		}
		out.Rows[i] = play.NarrowRow[float64]{Key: play.Key{Roll: row.Roll, Die: row.Die}, Face: f}
	}
	sortRows(out.Rows)
	return out, nil
}

// TextTable rebuilds the textual narrow table of a stored play.
//
// Postcondition: Returns ErrInvalidRecord for a numeric record or rows that
// do not fill the Rolls by Dice grid.
func (r Record) TextTable() (play.Narrow[string], error) {
	if r.Kind != dice.KindText {
		return play.Narrow[string]{}, fmt.Errorf("%w: play %s holds %s faces", ErrInvalidRecord, r.ID, r.Kind)
	}
	if err := r.checkGrid(); err != nil {
		return play.Narrow[string]{}, err
	}
	out := play.Narrow[string]{Rows: make([]play.NarrowRow[string], len(r.Rows))}
	for i, row := range r.Rows {
		out.Rows[i] = play.NarrowRow[string]{Key: play.Key{Roll: row.Roll, Die: row.Die}, Face: row.Face}
	}
	sortRows(out.Rows)
	return out, nil
}

// checkGrid verifies that Rows hold exactly one outcome for every roll
// 1..Rolls and die 1..Dice.
func (r Record) checkGrid() error {
	if r.Rolls < 1 || r.Dice < 1 {
		return fmt.Errorf("%w: play %s is %d rolls by %d dice", ErrInvalidRecord, r.ID, r.Rolls, r.Dice)
	}
	if len(r.Rows) != r.Rolls*r.Dice {
		return fmt.Errorf("%w: play %s has %d outcomes for %d rolls of %d dice", ErrInvalidRecord, r.ID, len(r.Rows), r.Rolls, r.Dice)
	}
	seen := make(map[play.Key]struct{}, len(r.Rows))
	for _, row := range r.Rows {
		k := play.Key{Roll: row.Roll, Die: row.Die}
		if k.Roll < 1 || k.Roll > r.Rolls || k.Die < 1 || k.Die > r.Dice {
			return fmt.Errorf("%w: play %s outcome (%d, %d) is outside the grid", ErrInvalidRecord, r.ID, k.Roll, k.Die)
		}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: play %s repeats outcome (%d, %d)", ErrInvalidRecord, r.ID, k.Roll, k.Die)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func sortRows[F dice.Face](rows []play.NarrowRow[F]) {
	slices.SortFunc(rows, func(a, b play.NarrowRow[F]) int {
		switch {
		case a.Key.Less(b.Key):
			return -1
		case b.Key.Less(a.Key):
			return 1
		}
		return 0
	})
}
