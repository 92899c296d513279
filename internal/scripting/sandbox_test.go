package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/montecarlo/internal/scripting"
)

func TestSandbox_Globals(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	defer L.Close()

	cases := []struct {
		global  string
		present bool
	}{
		{"os", false},
		{"io", false},
		{"debug", false},
		{"package", false},
		{"dofile", false},
		{"loadfile", false},
		{"load", false},
		{"collectgarbage", false},
		{"require", false},
		{"print", false},
		{"math", true},
		{"string", true},
		{"table", true},
		{"pairs", true},
		{"tostring", true},
	}
	for _, tc := range cases {
		t.Run(tc.global, func(t *testing.T) {
			got := L.GetGlobal(tc.global)
			if tc.present {
				assert.NotEqual(t, lua.LNil, got)
			} else {
				assert.Equal(t, lua.LNil, got)
			}
		})
	}
}

func TestSandbox_PredicateStyleChunkRuns(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	defer L.Close()
	require.NoError(t, L.DoString(`
		local faces = {3, 1, 2}
		table.sort(faces)
		assert(table.concat(faces, ",") == "1,2,3")
		assert(math.max(faces[1], faces[3]) == 3)
		assert(string.format("%d-%s", 6, "H") == "6-H")
	`))
}

func TestSandbox_SpinningChunkIsStopped(t *testing.T) {
	L := scripting.NewSandboxedState(25)
	defer L.Close()
	assert.Error(t, L.DoString(`local n = 0 while true do n = n + 1 end`))
}

func TestResetBudget_RestoresExhaustedState(t *testing.T) {
	L := scripting.NewSandboxedState(20)
	defer L.Close()
	require.Error(t, L.DoString(`while true do end`))

	cancel := scripting.ResetBudget(L, 1000)
	defer cancel()
	assert.NoError(t, L.DoString(`local total = 0 for i = 1, 10 do total = total + i end`))
}

func TestResetBudget_ZeroUsesDefault(t *testing.T) {
	L := scripting.NewSandboxedState(5)
	defer L.Close()

	cancel := scripting.ResetBudget(L, 0)
	defer cancel()
	// Far more than 5 opcodes, far fewer than the default.
	assert.NoError(t, L.DoString(`local total = 0 for i = 1, 500 do total = total + i end`))
}

func TestProperty_AnyBudgetStopsALoop(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, 200).Draw(t, "limit")
		L := scripting.NewSandboxedState(limit)
		defer L.Close()
		if err := L.DoString(`while true do end`); err == nil {
			t.Fatalf("limit %d: loop was not stopped", limit)
		}
	})
}
