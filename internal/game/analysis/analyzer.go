// Package analysis computes descriptive statistics over the most recent play
// of a game: jackpots, per-roll face counts, combination and permutation
// tallies, summary statistics and goodness of fit.
//
// An Analyzer holds no results. Every method reads the recorder's current
// play, so analyses always reflect the latest Play.
package analysis

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/game/play"
)

// ErrInvalidArgument is dice.ErrInvalidArgument, re-exported for callers of
// this package.
var ErrInvalidArgument = dice.ErrInvalidArgument

// Analyzer derives statistics from a Recorder's most recent play.
type Analyzer[F dice.Face] struct {
	src play.Recorder[F]
}

// New creates an Analyzer over src.
//
// Precondition: src must be non-nil.
// Postcondition: Returns an Analyzer or ErrInvalidArgument.
func New[F dice.Face](src play.Recorder[F]) (*Analyzer[F], error) {
	if src == nil {
		return nil, fmt.Errorf("%w: analyzer needs a recorder", ErrInvalidArgument)
	}
	return &Analyzer[F]{src: src}, nil
}

// table fetches the current play in wide shape.
func (a *Analyzer[F]) table() (play.Wide[F], error) {
	t, err := a.src.LastPlay(play.ShapeWide)
	if err != nil {
		return play.Wide[F]{}, err
	}
	return t.Wide(), nil
}

// Jackpot counts the rolls on which every die showed the same face.
//
// Postcondition: 0 <= result <= number of rolls; returns ErrNoPlayRecorded
// before the first play.
func (a *Analyzer[F]) Jackpot() (int, error) {
	w, err := a.table()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, row := range w.Cells {
		if allEqual(row) {
			n++
		}
	}
	return n, nil
}

func allEqual[F dice.Face](row []F) bool {
	if len(row) == 0 {
		return false
	}
	for _, f := range row[1:] {
		if f != row[0] {
			return false
		}
	}
	return true
}

// FaceFrequency is a dense roll by face count table.
//
// Invariant: Faces is the sorted union of every face in the play;
// Counts[i][k] is how many dice showed Faces[k] on roll Rolls[i]; each row
// sums to the number of dice.
type FaceFrequency[F dice.Face] struct {
	Rolls  []int
	Faces  []F
	Counts [][]int
}

// Count returns the count for face on the 0-based row i, 0 if the face never
// appeared in the play.
func (ff FaceFrequency[F]) Count(i int, face F) int {
	k, ok := slices.BinarySearch(ff.Faces, face)
	if !ok {
		return 0
	}
	return ff.Counts[i][k]
}

// FaceCounts counts, for every roll, how many dice showed each face seen
// anywhere in the play. Faces absent from a roll count 0.
//
// Postcondition: Returns ErrNoPlayRecorded before the first play.
func (a *Analyzer[F]) FaceCounts() (FaceFrequency[F], error) {
	w, err := a.table()
	if err != nil {
		return FaceFrequency[F]{}, err
	}
	u := newUniverse(w)
	ff := FaceFrequency[F]{
		Rolls:  append([]int(nil), w.Rolls...),
		Faces:  u.faces,
		Counts: make([][]int, len(w.Cells)),
	}
	for i, row := range w.Cells {
		counts := make([]int, len(u.faces))
		for _, f := range row {
			counts[u.index[f]]++
		}
		ff.Counts[i] = counts
	}
	return ff, nil
}

// RowPredicate reports whether a roll matches. faces are in die order.
type RowPredicate[F dice.Face] func(roll int, faces []F) (bool, error)

// CountWhere counts the rolls for which pred returns true.
//
// Postcondition: Returns the first predicate error unchanged.
func (a *Analyzer[F]) CountWhere(pred RowPredicate[F]) (int, error) {
	if pred == nil {
		return 0, fmt.Errorf("%w: predicate must not be nil", ErrInvalidArgument)
	}
	w, err := a.table()
	if err != nil {
		return 0, err
	}
	n := 0
	for i, row := range w.Cells {
		ok, err := pred(w.Rolls[i], row)
		if err != nil {
			return 0, fmt.Errorf("roll %d: %w", w.Rolls[i], err)
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// universe is the sorted set of faces observed in a play with their indexes.
type universe[F dice.Face] struct {
	faces []F
	index map[F]int
}

func newUniverse[F dice.Face](w play.Wide[F]) universe[F] {
	index := make(map[F]int)
	for _, row := range w.Cells {
		for _, f := range row {
			index[f] = 0
		}
	}
	faces := make([]F, 0, len(index))
	for f := range index {
		faces = append(faces, f)
	}
	slices.Sort(faces)
	for i, f := range faces {
		index[f] = i
	}
	return universe[F]{faces: faces, index: index}
}
