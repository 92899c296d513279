package analysis

import (
	"encoding/binary"
	"slices"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/game/play"
)

// TallyEntry is one distinct outcome tuple and the number of rolls producing it.
type TallyEntry[F dice.Face] struct {
	Faces []F
	Count int
}

// Tally counts distinct outcome tuples.
//
// Invariant: Entries are ordered by descending Count, then by Faces
// lexicographically; every tuple appears once.
type Tally[F dice.Face] struct {
	Entries []TallyEntry[F]
	keys    map[string]int
	u       universe[F]
}

// Get returns the count for the exact tuple faces, 0 if it never occurred.
// For a combination tally faces must be sorted ascending.
func (t Tally[F]) Get(faces []F) int {
	key, ok := t.u.key(faces)
	if !ok {
		return 0
	}
	if i, ok := t.keys[key]; ok {
		return t.Entries[i].Count
	}
	return 0
}

// Len returns the number of distinct tuples.
func (t Tally[F]) Len() int { return len(t.Entries) }

// Total returns the sum of all counts, which equals the number of rolls.
func (t Tally[F]) Total() int {
	n := 0
	for _, e := range t.Entries {
		n += e.Count
	}
	return n
}

// ComboCount counts order-independent outcomes: each roll's faces are sorted
// before counting, so permutations of one multiset share an entry.
//
// Postcondition: Total() equals the number of rolls; returns
// ErrNoPlayRecorded before the first play.
func (a *Analyzer[F]) ComboCount() (Tally[F], error) {
	w, err := a.table()
	if err != nil {
		return Tally[F]{}, err
	}
	return tally(w, true), nil
}

// PermCount counts order-dependent outcomes: each roll's faces are counted in
// die order, so permutations are distinct entries.
//
// Postcondition: Total() equals the number of rolls; returns
// ErrNoPlayRecorded before the first play.
func (a *Analyzer[F]) PermCount() (Tally[F], error) {
	w, err := a.table()
	if err != nil {
		return Tally[F]{}, err
	}
	return tally(w, false), nil
}

func tally[F dice.Face](w play.Wide[F], sorted bool) Tally[F] {
	t := Tally[F]{keys: make(map[string]int), u: newUniverse(w)}
	for _, row := range w.Cells {
		faces := append([]F(nil), row...)
		if sorted {
			slices.Sort(faces)
		}
		key, _ := t.u.key(faces)
		if i, ok := t.keys[key]; ok {
			t.Entries[i].Count++
			continue
		}
		t.keys[key] = len(t.Entries)
		t.Entries = append(t.Entries, TallyEntry[F]{Faces: faces, Count: 1})
	}

	slices.SortFunc(t.Entries, func(a, b TallyEntry[F]) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return slices.Compare(a.Faces, b.Faces)
	})
	for i, e := range t.Entries {
		key, _ := t.u.key(e.Faces)
		t.keys[key] = i
	}
	return t
}

// key encodes a tuple as the varint sequence of its faces' universe indexes.
// Returns false if a face is outside the universe.
func (u universe[F]) key(faces []F) (string, bool) {
	buf := make([]byte, 0, len(faces)*2)
	for _, f := range faces {
		i, ok := u.index[f]
		if !ok {
			return "", false
		}
		buf = binary.AppendUvarint(buf, uint64(i))
	}
	return string(buf), true
}
