package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// matchFunc is the global every predicate script must define:
//
//	function match(faces, roll) ... end
//
// faces is a 1-indexed table in die order; roll is the 1-based roll number.
const matchFunc = "match"

// ErrNoMatchFunction is returned when a script does not define match.
var ErrNoMatchFunction = errors.New("scripting: script does not define function match")

// Predicate is a compiled Lua roll predicate.
//
// Predicate is safe for concurrent Match calls; calls are serialized because
// an LState is single-threaded.
type Predicate struct {
	mu     sync.Mutex
	name   string
	L      *lua.LState
	fn     *lua.LFunction
	limit  int
	logger *zap.Logger
}

// NewPredicate compiles source in a fresh sandbox and resolves its match
// function. instLimit bounds loading and each Match call separately.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a ready Predicate, or an error for invalid Lua or
// ErrNoMatchFunction.
func NewPredicate(name, source string, instLimit int, logger *zap.Logger) (*Predicate, error) {
	if logger == nil {
		panic("scripting: NewPredicate requires a non-nil logger")
	}
	L := NewSandboxedState(instLimit)
	p := &Predicate{name: name, L: L, limit: instLimit, logger: logger}
	p.RegisterModules(L)

	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: loading predicate %q: %w", name, err)
	}
	fn, ok := L.GetGlobal(matchFunc).(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("%w: %q", ErrNoMatchFunction, name)
	}
	p.fn = fn
	return p, nil
}

// LoadPredicateFile compiles the Lua file at path. The predicate is named after
// the file without its extension.
//
// Precondition: path must be a readable Lua file.
func LoadPredicateFile(path string, instLimit int, logger *zap.Logger) (*Predicate, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading predicate %q: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewPredicate(name, string(src), instLimit, logger)
}

// LoadPredicateDir compiles every *.lua file in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns predicates keyed by name, or the first error after
// closing everything loaded so far.
func LoadPredicateDir(dir string, instLimit int, logger *zap.Logger) (map[string]*Predicate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading predicate dir %q: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	out := make(map[string]*Predicate, len(luaFiles))
	for _, path := range luaFiles {
		p, err := LoadPredicateFile(path, instLimit, logger)
		if err != nil {
			for _, loaded := range out {
				loaded.Close()
			}
			return nil, err
		}
		out[p.Name()] = p
	}
	return out, nil
}

// Name returns the predicate's name.
func (p *Predicate) Name() string {
	return p.name
}

// Match calls match(faces, roll) with a fresh instruction budget and reports
// Lua truthiness of its first result. Runtime errors, including an exhausted
// budget, are logged at warn level and returned.
//
// Postcondition: Returns (false, err) on any Lua failure.
func (p *Predicate) Match(roll int, faces []any) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cancel := ResetBudget(p.L, p.limit)
	defer cancel()

	tbl := p.L.CreateTable(len(faces), 0)
	for i, f := range faces {
		tbl.RawSetInt(i+1, ToLValue(f))
	}

	if err := p.L.CallByParam(lua.P{
		Fn:      p.fn,
		NRet:    1,
		Protect: true,
	}, tbl, lua.LNumber(roll)); err != nil {
		p.logger.Warn("scripting: Lua runtime error",
			zap.String("predicate", p.name),
			zap.Int("roll", roll),
			zap.Error(err),
		)
		return false, fmt.Errorf("scripting: predicate %q: %w", p.name, err)
	}

	ret := p.L.Get(-1)
	p.L.Pop(1)
	return lua.LVAsBool(ret), nil
}

// Close releases the predicate's VM.
func (p *Predicate) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.L.Close()
}

// ToLValue converts a face to its Lua value: numbers become LNumber, strings
// LString, anything else its fmt text.
func ToLValue(v any) lua.LValue {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Invalid:
		return lua.LNil
	}
	return lua.LString(fmt.Sprint(v))
}
