package scripting

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all engine.* Lua tables into L:
//   - engine.log.debug/info/warn/error(msg) write to the Manager's logger
//   - engine.state.count(state, name) counts predicates called name in a
//     rendered state
//   - engine.state.holds(state, pred) reports whether the rendered predicate
//     pred appears in a rendered state
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.newLogModule(L))
	L.SetField(engine, "state", newStateModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) newLogModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, fn := range levels {
		fn := fn
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			fn("lua: " + L.CheckString(1))
			return 0
		}))
	}
	return mod
}

func newStateModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "count", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(countPredicates(L.CheckString(1), L.CheckString(2))))
		return 1
	}))
	L.SetField(mod, "holds", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(holdsPredicate(L.CheckString(1), L.CheckString(2))))
		return 1
	}))
	return mod
}

// splitState splits a rendered state "At(A) Link(A, B)" into its predicates.
func splitState(state string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range state {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ' ':
			if depth == 0 {
				if i > start {
					out = append(out, state[start:i])
				}
				start = i + 1
			}
		}
	}
	if start < len(state) {
		out = append(out, state[start:])
	}
	return out
}

func countPredicates(state, name string) int {
	n := 0
	for _, p := range splitState(state) {
		if strings.HasPrefix(p, name+"(") {
			n++
		}
	}
	return n
}

func holdsPredicate(state, pred string) bool {
	for _, p := range splitState(state) {
		if p == pred {
			return true
		}
	}
	return false
}
