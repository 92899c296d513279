package analysis

import (
	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/scripting"
)

// ScriptPredicate adapts a Lua predicate for CountWhere.
//
// Precondition: p must be non-nil.
func ScriptPredicate[F dice.Face](p *scripting.Predicate) RowPredicate[F] {
	return func(roll int, faces []F) (bool, error) {
		in := make([]any, len(faces))
		for i, f := range faces {
			in[i] = f
		}
		return p.Match(roll, in)
	}
}
