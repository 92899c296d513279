package play

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
)

// Shape selects how a recorded play is presented.
type Shape string

const (
	// ShapeWide keys rows by roll number with one column per die position.
	ShapeWide Shape = "wide"
	// ShapeNarrow keys each outcome by its (roll, die) pair.
	ShapeNarrow Shape = "narrow"
)

// ParseShape converts a case-insensitive shape name into a Shape.
//
// Postcondition: Returns ShapeWide, ShapeNarrow, or ErrInvalidOption.
func ParseShape(s string) (Shape, error) {
	switch Shape(strings.ToLower(strings.TrimSpace(s))) {
	case ShapeWide:
		return ShapeWide, nil
	case ShapeNarrow:
		return ShapeNarrow, nil
	}
	return "", fmt.Errorf("%w: shape %q (want %q or %q)", ErrInvalidOption, s, ShapeWide, ShapeNarrow)
}

// Table is one recorded play in either presentation. Both presentations
// convert losslessly into each other.
type Table[F dice.Face] interface {
	Shape() Shape
	// Wide returns an independent wide copy of the table.
	Wide() Wide[F]
	// Narrow returns an independent narrow copy of the table.
	Narrow() Narrow[F]
	// Validate reports whether the table holds exactly one outcome for every
	// roll 1..R and die position 1..D.
	Validate() error
}

// Key identifies one outcome: the 1-based roll number and the 1-based
// position of the die in its game.
type Key struct {
	Roll int
	Die  int
}

// Less orders keys by roll, then die.
func (k Key) Less(o Key) bool {
	if k.Roll != o.Roll {
		return k.Roll < o.Roll
	}
	return k.Die < o.Die
}

// Wide is the roll-major presentation of a play.
//
// Invariant: len(Cells) == len(Rolls); every row has len(Dice) cells;
// Cells[i][j] is the face die Dice[j] showed on roll Rolls[i].
type Wide[F dice.Face] struct {
	Rolls []int
	Dice  []int
	Cells [][]F
}

// NarrowRow is a single outcome of a narrow table.
type NarrowRow[F dice.Face] struct {
	Key
	Face F
}

// Narrow is the indexed presentation of a play.
//
// Invariant: Rows are sorted by Key and keys are unique.
type Narrow[F dice.Face] struct {
	Rows []NarrowRow[F]
}

// Shape returns ShapeWide.
func (w Wide[F]) Shape() Shape { return ShapeWide }

// NumRolls returns the number of rows.
func (w Wide[F]) NumRolls() int { return len(w.Rolls) }

// NumDice returns the number of columns.
func (w Wide[F]) NumDice() int { return len(w.Dice) }

// Row returns a copy of the faces shown on row i (0-based) in die order.
func (w Wide[F]) Row(i int) []F {
	return append([]F(nil), w.Cells[i]...)
}

// Column returns a copy of the faces shown by the die at 1-based position
// die, in roll order.
//
// Postcondition: Returns false if no column has that position.
func (w Wide[F]) Column(die int) ([]F, bool) {
	j := sort.SearchInts(w.Dice, die)
	if j >= len(w.Dice) || w.Dice[j] != die {
		return nil, false
	}
	col := make([]F, len(w.Cells))
	for i, row := range w.Cells {
		col[i] = row[j]
	}
	return col, true
}

// Wide returns a deep copy.
func (w Wide[F]) Wide() Wide[F] {
	out := Wide[F]{
		Rolls: append([]int(nil), w.Rolls...),
		Dice:  append([]int(nil), w.Dice...),
		Cells: make([][]F, len(w.Cells)),
	}
	for i, row := range w.Cells {
		out.Cells[i] = append([]F(nil), row...)
	}
	return out
}

// Narrow flattens the table row-major into (roll, die) keyed outcomes.
//
// Postcondition: len(result.Rows) == NumRolls()*NumDice().
func (w Wide[F]) Narrow() Narrow[F] {
	rows := make([]NarrowRow[F], 0, len(w.Rolls)*len(w.Dice))
	for i, roll := range w.Rolls {
		for j, die := range w.Dice {
			rows = append(rows, NarrowRow[F]{Key: Key{Roll: roll, Die: die}, Face: w.Cells[i][j]})
		}
	}
	return Narrow[F]{Rows: rows}
}

// Shape returns ShapeNarrow.
func (n Narrow[F]) Shape() Shape { return ShapeNarrow }

// Len returns the number of outcomes.
func (n Narrow[F]) Len() int { return len(n.Rows) }

// Lookup returns the face recorded under k.
func (n Narrow[F]) Lookup(k Key) (F, bool) {
	i := sort.Search(len(n.Rows), func(i int) bool { return !n.Rows[i].Key.Less(k) })
	if i < len(n.Rows) && n.Rows[i].Key == k {
		return n.Rows[i].Face, true
	}
	var zero F
	return zero, false
}

// Narrow returns a copy.
func (n Narrow[F]) Narrow() Narrow[F] {
	return Narrow[F]{Rows: append([]NarrowRow[F](nil), n.Rows...)}
}

// Wide reshapes the outcomes into a roll by die grid. Roll and die keys
// become the sorted distinct values present. The conversion is lossless only
// for a table that passes Validate; a key missing from a sparse table leaves
// the zero face in its cell.
func (n Narrow[F]) Wide() Wide[F] {
	rollSet := make(map[int]struct{})
	dieSet := make(map[int]struct{})
	for _, r := range n.Rows {
		rollSet[r.Roll] = struct{}{}
		dieSet[r.Die] = struct{}{}
	}
	w := Wide[F]{Rolls: sortedKeys(rollSet), Dice: sortedKeys(dieSet)}

	rollIdx := indexOf(w.Rolls)
	dieIdx := indexOf(w.Dice)
	w.Cells = make([][]F, len(w.Rolls))
	for i := range w.Cells {
		w.Cells[i] = make([]F, len(w.Dice))
	}
	for _, r := range n.Rows {
		w.Cells[rollIdx[r.Roll]][dieIdx[r.Die]] = r.Face
	}
	return w
}

// Validate checks that the rows are ordered and unique, with rolls 1..R and
// dies 1..D all present.
//
// Postcondition: Returns nil or an error wrapping ErrInvalidArgument.
func (n Narrow[F]) Validate() error {
	if len(n.Rows) == 0 {
		return fmt.Errorf("%w: table has no outcomes", ErrInvalidArgument)
	}
	var rolls, dies int
	for i, r := range n.Rows {
		if r.Roll < 1 || r.Die < 1 {
			return fmt.Errorf("%w: outcome key (%d, %d) is not 1-based", ErrInvalidArgument, r.Roll, r.Die)
		}
		if i > 0 && !n.Rows[i-1].Key.Less(r.Key) {
			return fmt.Errorf("%w: outcome key (%d, %d) is out of order or repeated", ErrInvalidArgument, r.Roll, r.Die)
		}
		rolls = max(rolls, r.Roll)
		dies = max(dies, r.Die)
	}
	// Unique keys inside [1, rolls] x [1, dies] cover the grid only if they fill it.
	if len(n.Rows) != rolls*dies {
		return fmt.Errorf("%w: %d outcomes for %d rolls of %d dice", ErrInvalidArgument, len(n.Rows), rolls, dies)
	}
	return nil
}

// Validate checks that Rolls is 1..R, Dice is 1..D with D >= 1, and Cells is
// an R by D grid.
//
// Postcondition: Returns nil or an error wrapping ErrInvalidArgument.
func (w Wide[F]) Validate() error {
	if len(w.Rolls) == 0 || len(w.Dice) == 0 {
		return fmt.Errorf("%w: table is %d rolls by %d dice", ErrInvalidArgument, len(w.Rolls), len(w.Dice))
	}
	for i, roll := range w.Rolls {
		if roll != i+1 {
			return fmt.Errorf("%w: roll %d at row %d", ErrInvalidArgument, roll, i+1)
		}
	}
	for j, die := range w.Dice {
		if die != j+1 {
			return fmt.Errorf("%w: die %d at column %d", ErrInvalidArgument, die, j+1)
		}
	}
	if len(w.Cells) != len(w.Rolls) {
		return fmt.Errorf("%w: %d rows of cells for %d rolls", ErrInvalidArgument, len(w.Cells), len(w.Rolls))
	}
	for i, row := range w.Cells {
		if len(row) != len(w.Dice) {
			return fmt.Errorf("%w: roll %d has %d cells for %d dice", ErrInvalidArgument, i+1, len(row), len(w.Dice))
		}
	}
	return nil
}

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func indexOf(keys []int) map[int]int {
	idx := make(map[int]int, len(keys))
	for i, k := range keys {
		idx[k] = i
	}
	return idx
}
