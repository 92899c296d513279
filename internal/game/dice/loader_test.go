package dice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
)

const coinSetYAML = `
set:
  name: unfair-coins
  dice:
    - name: coin
      faces: [H, T]
      weights:
        H: 3
      count: 2
    - name: fair-coin
      faces: [H, T]
`

const numericSetYAML = `
set:
  name: d6-pair
  dice:
    - name: loaded
      faces: 2d6
      weights:
        "6": 5
`

func TestLoadSetFromBytes_Text(t *testing.T) {
	set, err := dice.LoadSetFromBytes([]byte(coinSetYAML))
	require.NoError(t, err)

	assert.Equal(t, "unfair-coins", set.Name)
	assert.Equal(t, dice.KindText, set.Kind)
	assert.Equal(t, 3, set.Size())

	ds, err := set.BuildText(dice.SeededSources(1))
	require.NoError(t, err)
	require.Len(t, ds, 3)
	assert.Same(t, ds[0], ds[1], "count copies share one die")
	assert.NotSame(t, ds[1], ds[2])

	w, err := ds[0].Weight("H")
	require.NoError(t, err)
	assert.Equal(t, 3.0, w)
	w, err = ds[2].Weight("H")
	require.NoError(t, err)
	assert.Equal(t, 1.0, w)
}

func TestLoadSetFromBytes_NumericShorthand(t *testing.T) {
	set, err := dice.LoadSetFromBytes([]byte(numericSetYAML))
	require.NoError(t, err)

	assert.Equal(t, dice.KindNumeric, set.Kind)
	assert.Equal(t, 2, set.Size(), "count comes from the NdS expression")

	ds, err := set.BuildNumeric(nil)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, ds[0].Faces())
	w, err := ds[0].Weight(6)
	require.NoError(t, err)
	assert.Equal(t, 5.0, w)

	_, err = set.BuildText(nil)
	assert.ErrorIs(t, err, dice.ErrInvalidArgument)
}

func TestLoadSetFromBytes_NumericList(t *testing.T) {
	set, err := dice.LoadSetFromBytes([]byte(`
set:
  name: odd
  dice:
    - name: halves
      faces: [0.5, 1, 1.5]
      weights:
        "1.0": 2
`))
	require.NoError(t, err)
	ds, err := set.BuildNumeric(dice.CryptoSources())
	require.NoError(t, err)
	w, err := ds[0].Weight(1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, w)
}

func TestLoadSetFromBytes_Errors(t *testing.T) {
	cases := map[string]string{
		"mixed faces": `
set:
  name: bad
  dice:
    - faces: [1, a]
`,
		"mixed kinds across dice": `
set:
  name: bad
  dice:
    - faces: [a, b]
    - faces: d6
`,
		"unknown weighted face": `
set:
  name: bad
  dice:
    - faces: [a, b]
      weights: {c: 2}
`,
		"negative weight": `
set:
  name: bad
  dice:
    - faces: [a, b]
      weights: {a: -1}
`,
		"missing name": `
set:
  dice:
    - faces: [a, b]
`,
		"no dice": `
set:
  name: empty
`,
		"bad shorthand": `
set:
  name: bad
  dice:
    - faces: six
`,
		"boolean face": `
set:
  name: bad
  dice:
    - faces: [true, false]
`,
		"malformed yaml": `set: [`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := dice.LoadSetFromBytes([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadSetFromBytes_DuplicateFacesFailAtBuild(t *testing.T) {
	set, err := dice.LoadSetFromBytes([]byte(`
set:
  name: dup
  dice:
    - faces: [a, a]
`))
	require.NoError(t, err)
	_, err = set.BuildText(nil)
	assert.ErrorIs(t, err, dice.ErrDuplicateFace)
}

func TestLoadSetsFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coins.yaml"), []byte(coinSetYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "d6.yml"), []byte(numericSetYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	sets, err := dice.LoadSetsFromDir(dir)
	require.NoError(t, err)
	assert.Len(t, sets, 2)
	assert.Contains(t, sets, "unfair-coins")
	assert.Contains(t, sets, "d6-pair")
}

func TestLoadSetsFromDir_Empty(t *testing.T) {
	_, err := dice.LoadSetsFromDir(t.TempDir())
	assert.Error(t, err)
}

func TestLoadSetFromFile_Missing(t *testing.T) {
	_, err := dice.LoadSetFromFile("/nonexistent/dice.yaml")
	assert.Error(t, err)
}

func TestLoadSetsFromDir_BundledContent(t *testing.T) {
	sets, err := dice.LoadSetsFromDir("../../../content/dice")
	require.NoError(t, err)
	for _, name := range []string{"d6x3", "loaded-d6", "coins", "letters"} {
		require.Contains(t, sets, name)
		assert.NoError(t, sets[name].Validate(), "set %s", name)
	}
	assert.Equal(t, dice.KindNumeric, sets["d6x3"].Kind)
	assert.Equal(t, 3, sets["d6x3"].Size())
	assert.Equal(t, dice.KindText, sets["coins"].Kind)
}
