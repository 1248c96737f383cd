package planner

import (
	"fmt"
	"math"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// ScriptPrefix selects a Lua heuristic: "lua:<function>".
const ScriptPrefix = "lua:"

// ScriptCaller is the interface required to evaluate Lua heuristics.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the namespace's VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(namespace, hook string, args ...lua.LValue) (lua.LValue, error)
}

// ScriptHeuristic returns a Heuristic backed by the Lua function hook in
// namespace. The function is called as hook(unmet, cost, state) where unmet is
// LiteralCount, cost is the path cost and state is State.String().
//
// Postcondition: errors, non-numbers, NaN and negative results score 0.
func ScriptHeuristic(caller ScriptCaller, namespace, hook string) Heuristic {
	return func(w *World, s *State) float64 {
		val, err := caller.CallHook(namespace, hook,
			lua.LNumber(LiteralCount(w, s)),
			lua.LNumber(s.Cost()),
			lua.LString(s.String()),
		)
		if err != nil {
			return 0
		}
		n, ok := val.(lua.LNumber)
		if !ok {
			return 0
		}
		f := float64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return 0
		}
		return f
	}
}

// ResolveHeuristic resolves a built-in name, an alias, or a "lua:<function>"
// selector.
//
// Precondition: caller may be nil when no script heuristics are configured.
// Postcondition: returns ErrUnknownHeuristic (wrapped) for unresolvable names.
func ResolveHeuristic(name string, caller ScriptCaller, namespace string) (Heuristic, error) {
	hook, ok := strings.CutPrefix(name, ScriptPrefix)
	if !ok {
		return HeuristicByName(name)
	}
	if hook == "" {
		return nil, fmt.Errorf("%w: %q names no function", ErrUnknownHeuristic, name)
	}
	if caller == nil {
		return nil, fmt.Errorf("%w: %q requires script heuristics to be loaded", ErrUnknownHeuristic, name)
	}
	return ScriptHeuristic(caller, namespace, hook), nil
}
