package play_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/montecarlo/internal/game/play"
)

func TestParseShape(t *testing.T) {
	for in, want := range map[string]play.Shape{
		"wide":     play.ShapeWide,
		"WIDE":     play.ShapeWide,
		" Narrow ": play.ShapeNarrow,
	} {
		got, err := play.ParseShape(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got)
	}
	_, err := play.ParseShape("diagonal")
	assert.ErrorIs(t, err, play.ErrInvalidOption)
}

func TestNarrow_WideSparse(t *testing.T) {
	n := play.Narrow[int]{Rows: []play.NarrowRow[int]{
		{Key: play.Key{Roll: 1, Die: 1}, Face: 4},
		{Key: play.Key{Roll: 2, Die: 2}, Face: 6},
	}}
	w := n.Wide()
	assert.Equal(t, []int{1, 2}, w.Rolls)
	assert.Equal(t, []int{1, 2}, w.Dice)
	assert.Equal(t, [][]int{{4, 0}, {0, 6}}, w.Cells)
}

func TestNarrow_Validate(t *testing.T) {
	full := play.Wide[string]{
		Rolls: []int{1, 2},
		Dice:  []int{1, 2},
		Cells: [][]string{{"a", "a"}, {"b", "c"}},
	}.Narrow()
	require.NoError(t, full.Validate())

	row := func(roll, die int, face string) play.NarrowRow[string] {
		return play.NarrowRow[string]{Key: play.Key{Roll: roll, Die: die}, Face: face}
	}
	cases := map[string][]play.NarrowRow[string]{
		"empty":        nil,
		"missing cell": {row(1, 1, "a"), row(1, 2, "a"), row(2, 1, "b")},
		"repeated key": {row(1, 1, "a"), row(1, 1, "a"), row(1, 2, "b"), row(1, 2, "b")},
		"unsorted":     {row(1, 2, "a"), row(1, 1, "b")},
		"zero roll":    {row(0, 1, "a"), row(1, 1, "b")},
		"gap in rolls": {row(1, 1, "a"), row(3, 1, "b"), row(4, 1, "c")},
	}
	for name, rows := range cases {
		t.Run(name, func(t *testing.T) {
			err := play.Narrow[string]{Rows: rows}.Validate()
			assert.ErrorIs(t, err, play.ErrInvalidArgument)
		})
	}
}

func TestWide_Validate(t *testing.T) {
	ok := play.Wide[int]{Rolls: []int{1, 2}, Dice: []int{1}, Cells: [][]int{{3}, {4}}}
	require.NoError(t, ok.Validate())

	cases := map[string]play.Wide[int]{
		"no dice":     {Rolls: []int{1}, Dice: nil, Cells: [][]int{{}}},
		"no rolls":    {},
		"ragged row":  {Rolls: []int{1, 2}, Dice: []int{1, 2}, Cells: [][]int{{1, 2}, {3}}},
		"missing row": {Rolls: []int{1, 2}, Dice: []int{1}, Cells: [][]int{{1}}},
		"roll offset": {Rolls: []int{2, 3}, Dice: []int{1}, Cells: [][]int{{1}, {2}}},
		"die skipped": {Rolls: []int{1}, Dice: []int{1, 3}, Cells: [][]int{{1, 2}}},
	}
	for name, w := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, w.Validate(), play.ErrInvalidArgument)
		})
	}
}

func TestNarrow_Lookup_Missing(t *testing.T) {
	n := play.Narrow[string]{Rows: []play.NarrowRow[string]{
		{Key: play.Key{Roll: 1, Die: 1}, Face: "a"},
	}}
	_, ok := n.Lookup(play.Key{Roll: 1, Die: 2})
	assert.False(t, ok)
	face, ok := n.Lookup(play.Key{Roll: 1, Die: 1})
	assert.True(t, ok)
	assert.Equal(t, "a", face)
}

func TestWide_Column_Missing(t *testing.T) {
	w := play.Wide[string]{Rolls: []int{1}, Dice: []int{1, 2}, Cells: [][]string{{"a", "b"}}}
	col, ok := w.Column(2)
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, col)
	_, ok = w.Column(3)
	assert.False(t, ok)
}

func TestKey_Less(t *testing.T) {
	assert.True(t, play.Key{Roll: 1, Die: 9}.Less(play.Key{Roll: 2, Die: 1}))
	assert.True(t, play.Key{Roll: 2, Die: 1}.Less(play.Key{Roll: 2, Die: 2}))
	assert.False(t, play.Key{Roll: 2, Die: 2}.Less(play.Key{Roll: 2, Die: 2}))
}
