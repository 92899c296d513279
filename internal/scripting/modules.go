package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua tables into L:
//
//	engine.log.debug/info/warn/error(msg)  write to the predicate's logger
//	engine.faces.count(faces, value)       occurrences of value in faces
//	engine.faces.distinct(faces)           number of distinct values in faces
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (p *Predicate) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetGlobal("engine", engine)

	logTbl := L.NewTable()
	for name, level := range map[string]func(string, ...zap.Field){
		"debug": p.logger.Debug,
		"info":  p.logger.Info,
		"warn":  p.logger.Warn,
		"error": p.logger.Error,
	} {
		write := level
		L.SetField(logTbl, name, L.NewFunction(func(L *lua.LState) int {
			write(L.CheckString(1), zap.String("predicate", p.name))
			return 0
		}))
	}
	L.SetField(engine, "log", logTbl)

	facesTbl := L.NewTable()
	L.SetField(facesTbl, "count", L.NewFunction(luaCount))
	L.SetField(facesTbl, "distinct", L.NewFunction(luaDistinct))
	L.SetField(engine, "faces", facesTbl)
}

func luaCount(L *lua.LState) int {
	tbl := L.CheckTable(1)
	want := L.CheckAny(2)
	n := 0
	tbl.ForEach(func(_, v lua.LValue) {
		if L.Equal(v, want) {
			n++
		}
	})
	L.Push(lua.LNumber(n))
	return 1
}

func luaDistinct(L *lua.LState) int {
	tbl := L.CheckTable(1)
	seen := make(map[lua.LValue]struct{})
	tbl.ForEach(func(_, v lua.LValue) {
		seen[v] = struct{}{}
	})
	L.Push(lua.LNumber(len(seen)))
	return 1
}
