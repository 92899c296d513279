// Package scripting provides a sandboxed GopherLua execution environment for
// user-supplied roll predicates. It has no dependency on game domain
// packages; faces arrive as plain Go values.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget of one predicate call when no
// limit is configured.
const DefaultInstructionLimit = 100_000

// predicateLibs are the only standard libraries a predicate can reach.
var predicateLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// strippedGlobals are base-library functions that reach the filesystem, load
// arbitrary chunks or touch the collector. Predicates log through engine.log.
var strippedGlobals = []string{"dofile", "loadfile", "load", "collectgarbage", "require", "print"}

// budget is a context that cancels itself once Done has been polled a fixed
// number of times. The GopherLua VM polls Done once per opcode when a context
// is set, so the count is an exact opcode limit.
type budget struct {
	context.Context
	left   atomic.Int64
	cancel context.CancelFunc
}

func (b *budget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

func newBudget(opcodes int) *budget {
	ctx, cancel := context.WithCancel(context.Background())
	b := &budget{Context: ctx, cancel: cancel}
	b.left.Store(int64(opcodes))
	return b
}

// NewSandboxedState returns a Lua state limited to predicateLibs, with
// strippedGlobals removed and a budget of instLimit opcodes.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller owns the state and must Close it.
func NewSandboxedState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range predicateLibs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range strippedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	// The budget cancels itself when spent.
	_ = ResetBudget(L, instLimit)
	return L
}

// ResetBudget replaces whatever remains of L's opcode budget with a fresh
// budget of instLimit opcodes.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The returned cancel releases the budget's context.
func ResetBudget(L *lua.LState, instLimit int) context.CancelFunc {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	b := newBudget(instLimit)
	L.SetContext(b)
	return b.cancel
}
