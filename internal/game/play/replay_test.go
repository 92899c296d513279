package play_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/montecarlo/internal/game/play"
)

func TestReplay_ServesCapturedPlay(t *testing.T) {
	w := play.Wide[string]{
		Rolls: []int{1, 2},
		Dice:  []int{1, 2},
		Cells: [][]string{{"a", "b"}, {"c", "c"}},
	}
	r, err := play.NewReplay[string](w.Narrow())
	require.NoError(t, err)

	got, err := r.LastPlay(play.ShapeWide)
	require.NoError(t, err)
	assert.Equal(t, w, got.Wide())

	got, err = r.LastPlay(play.ShapeNarrow)
	require.NoError(t, err)
	assert.Equal(t, w.Narrow(), got)

	// Mutating the source does not reach the replay.
	w.Cells[0][0] = "z"
	got, err = r.LastPlay(play.ShapeWide)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Wide().Cells[0][0])

	_, err = r.LastPlay("diagonal")
	assert.ErrorIs(t, err, play.ErrInvalidOption)
}

func TestNewReplay_RejectsIncompletePlay(t *testing.T) {
	// Roll 2 lost its second die.
	n := play.Narrow[string]{Rows: []play.NarrowRow[string]{
		{Key: play.Key{Roll: 1, Die: 1}, Face: "a"},
		{Key: play.Key{Roll: 1, Die: 2}, Face: "a"},
		{Key: play.Key{Roll: 2, Die: 1}, Face: "b"},
	}}
	_, err := play.NewReplay[string](n)
	assert.ErrorIs(t, err, play.ErrInvalidArgument)

	_, err = play.NewReplay[string](play.Wide[string]{})
	assert.ErrorIs(t, err, play.ErrInvalidArgument)

	_, err = play.NewReplay[string](nil)
	assert.ErrorIs(t, err, play.ErrInvalidArgument)
}

func TestLastPlay_NilRecorders(t *testing.T) {
	var g *play.Game[int]
	_, err := g.LastPlay(play.ShapeWide)
	assert.ErrorIs(t, err, play.ErrInvalidArgument)
	_, err = g.LastPlayWide()
	assert.ErrorIs(t, err, play.ErrInvalidArgument)
	_, err = g.LastPlayNarrow()
	assert.ErrorIs(t, err, play.ErrInvalidArgument)

	var r *play.Replay[int]
	_, err = r.LastPlay(play.ShapeNarrow)
	assert.ErrorIs(t, err, play.ErrInvalidArgument)
}
