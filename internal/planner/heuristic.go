package planner

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownHeuristic is returned when a heuristic name cannot be resolved.
var ErrUnknownHeuristic = errors.New("planner: unknown heuristic")

// Heuristic estimates the remaining cost from s to w's goal.
//
// Postcondition: the result is finite and >= 0.
type Heuristic func(w *World, s *State) float64

// Registered heuristic names.
const (
	HeuristicZero            = "zero"
	HeuristicLiteralCount    = "literal_count"
	HeuristicRelaxedLayers   = "relaxed_layers"
	HeuristicRelaxedLayerSum = "relaxed_layer_sum"
)

var heuristics = map[string]Heuristic{
	HeuristicZero:            Zero,
	HeuristicLiteralCount:    LiteralCount,
	HeuristicRelaxedLayers:   RelaxedLayers,
	HeuristicRelaxedLayerSum: RelaxedLayerSum,
}

// aliases accepts the short names used by earlier command lines.
var aliases = map[string]string{
	"h0":    HeuristicZero,
	"hlits": HeuristicLiteralCount,
	"hmax":  HeuristicRelaxedLayers,
	"hsum":  HeuristicRelaxedLayerSum,
}

// HeuristicByName returns the built-in heuristic registered under name or
// one of its aliases.
func HeuristicByName(name string) (Heuristic, error) {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	h, ok := heuristics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHeuristic, name)
	}
	return h, nil
}

// HeuristicNames returns the canonical built-in names, sorted.
func HeuristicNames() []string {
	names := make([]string, 0, len(heuristics))
	for n := range heuristics {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Zero always returns 0, reducing weighted A* to uniform-cost search.
func Zero(*World, *State) float64 { return 0 }

// LiteralCount returns the number of goal predicates s does not hold.
func LiteralCount(w *World, s *State) float64 {
	unmet := 0
	for _, g := range w.Goal.preds {
		if !s.Holds(g) {
			unmet++
		}
	}
	return float64(unmet)
}

// RelaxedLayers returns the number of delete-relaxed layers needed before the
// goal is covered, or the layer count at which the relaxed closure stops
// growing.
func RelaxedLayers(w *World, s *State) float64 {
	layers, _ := relax(w, s)
	return float64(layers)
}

// RelaxedLayerSum runs the same closure as RelaxedLayers and returns the sum
// of the discovery layers of every predicate the closure added.
func RelaxedLayerSum(w *World, s *State) float64 {
	_, sum := relax(w, s)
	return float64(sum)
}

// relax computes the delete-relaxed forward closure of s. Layer t (from 1)
// holds the predicates first produced in iteration t.
//
// The loop ends when the goal is covered or an iteration adds nothing.
func relax(w *World, s *State) (layers, sum int) {
	cur := newState(s.preds, s.cost, nil)
	for !cur.Satisfies(w.Goal) {
		var fresh []Predicate
		for _, call := range w.Ground(cur) {
			// A relaxed successor is cur plus the call's adds, so only adds
			// can be new.
			_, add := w.byName[call.Name].Effects(call)
			for _, p := range add {
				if !cur.Holds(p) && !matchesAny(p, fresh) {
					fresh = append(fresh, p)
				}
			}
		}
		if len(fresh) == 0 {
			break
		}
		layers++
		sum += layers * len(fresh)

		next := make([]Predicate, 0, len(cur.preds)+len(fresh))
		next = append(next, cur.preds...)
		next = append(next, fresh...)
		cur = newState(next, cur.cost, nil)
	}
	return layers, sum
}

// GoalReachable reports whether w's goal is covered by the forward closure of
// w.Initial under actions stripped of their delete lists and negative
// preconditions. The closure only grows, so false means no plan exists.
func GoalReachable(w *World) bool {
	positive := make([]*Action, len(w.Actions))
	for i, a := range w.Actions {
		positive[i] = &Action{Name: a.Name, Params: a.Params, Pre: a.Pre, Add: a.Add}
	}
	cur := newState(w.Initial.preds, 0, nil)
	for !cur.Satisfies(w.Goal) {
		var fresh []Predicate
		for _, a := range positive {
			for _, call := range a.Applicable(w.Constants, cur) {
				_, add := a.Effects(call)
				for _, p := range add {
					if !cur.Holds(p) && !matchesAny(p, fresh) {
						fresh = append(fresh, p)
					}
				}
			}
		}
		if len(fresh) == 0 {
			return false
		}
		next := make([]Predicate, 0, len(cur.preds)+len(fresh))
		next = append(next, cur.preds...)
		next = append(next, fresh...)
		cur = newState(next, 0, nil)
	}
	return true
}
