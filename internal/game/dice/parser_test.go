package dice_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
)

func TestParse_Valid(t *testing.T) {
	cases := []struct {
		in    string
		count int
		sides int
	}{
		{"d6", 1, 6},
		{"3d6", 3, 6},
		{"D20", 1, 20},
		{" 2d2 ", 2, 2},
		{"1d1", 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			e, err := dice.Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.count, e.Count)
			assert.Equal(t, tc.sides, e.Sides)
			assert.Equal(t, tc.in, e.Raw)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "6", "0d6", "-1d6", "d0", "dx", "xd6", "2d6+1"} {
		_, err := dice.Parse(in)
		assert.ErrorIs(t, err, dice.ErrInvalidArgument, "input %q", in)
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nope") })
}

func TestExpression_Faces(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3, 4}, dice.MustParse("d4").Faces())
}

func TestProperty_ParseFacesLength(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		sides := rapid.IntRange(1, 100).Draw(rt, "sides")

		expr, err := dice.Parse(strconv.Itoa(count) + "d" + strconv.Itoa(sides))
		require.NoError(rt, err)
		assert.Equal(rt, count, expr.Count)
		faces := expr.Faces()
		assert.Len(rt, faces, sides)
		assert.Equal(rt, float64(sides), faces[len(faces)-1])
	})
}
