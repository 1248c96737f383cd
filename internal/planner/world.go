package planner

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/checkers/internal/planner/syntax"
)

// ErrActionNotFound is returned by World.ActionByName for an unknown schema.
var ErrActionNotFound = errors.New("planner: action not found")

// World is the immutable planning domain: schemas, constants, and the
// initial and goal states.
type World struct {
	Predicates []Predicate
	Constants  []Term
	Actions    []*Action
	Initial    *State
	Goal       *State

	byName map[string]*Action
}

// NewWorld assembles a World from already-built parts.
//
// Precondition: action names are unique.
// Postcondition: returns an error if two actions share a name.
func NewWorld(preds []Predicate, constants []Term, actions []*Action, initial, goal []Predicate) (*World, error) {
	w := &World{
		Predicates: preds,
		Constants:  constants,
		Actions:    actions,
		Initial:    NewState(initial, 0),
		Goal:       NewState(goal, GoalCost),
		byName:     make(map[string]*Action, len(actions)),
	}
	for _, a := range actions {
		if _, dup := w.byName[a.Name]; dup {
			return nil, fmt.Errorf("planner: duplicate action %q", a.Name)
		}
		w.byName[a.Name] = a
	}
	return w, nil
}

// Build converts a parsed token tree into a World.
//
// Precondition: tree must come from syntax.Parse.
func Build(tree *syntax.Tree) (*World, error) {
	if tree == nil {
		return nil, errors.New("planner.Build: tree must not be nil")
	}
	constants := make([]Term, len(tree.Constants))
	for i, c := range tree.Constants {
		constants[i] = Constant(c)
	}
	actions := make([]*Action, len(tree.Actions))
	for i, blk := range tree.Actions {
		params := make([]Term, len(blk.Params))
		for j, p := range blk.Params {
			params[j] = Variable(p)
		}
		actions[i] = &Action{
			Name:   blk.Name,
			Params: params,
			Pre:    buildPredicates(blk.Pre),
			PreNeg: buildPredicates(blk.PreNeg),
			Del:    buildPredicates(blk.Del),
			Add:    buildPredicates(blk.Add),
		}
	}
	return NewWorld(
		buildPredicates(tree.Predicates),
		constants,
		actions,
		buildPredicates(tree.Initial),
		buildPredicates(tree.Goal),
	)
}

// Load parses domain text and builds its World.
func Load(text string) (*World, error) {
	tree, err := syntax.Parse(text)
	if err != nil {
		return nil, err
	}
	return Build(tree)
}

func buildPredicates(toks []syntax.Predicate) []Predicate {
	out := make([]Predicate, len(toks))
	for i, tok := range toks {
		terms := make([]Term, len(tok.Terms))
		for j, t := range tok.Terms {
			if t.Constant {
				terms[j] = Constant(t.Name)
			} else {
				terms[j] = Variable(t.Name)
			}
		}
		out[i] = Predicate{Name: tok.Name, Terms: terms}
	}
	return out
}

// ActionByName returns the schema called name.
//
// Postcondition: returns ErrActionNotFound (wrapped) when no schema matches.
func (w *World) ActionByName(name string) (*Action, error) {
	if a, ok := w.byName[name]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrActionNotFound, name)
}

// Ground returns every call, over all schemas, that validates against s, in
// schema order and then grounding order. Each returned call is tagged with
// s's StateID.
func (w *World) Ground(s *State) []ActionCall {
	var valid []ActionCall
	for _, a := range w.Actions {
		for _, c := range a.Applicable(w.Constants, s) {
			c.Source = s.id
			valid = append(valid, c)
		}
	}
	return valid
}

// Successors applies every valid call of s and returns the resulting states
// in generation order.
func (w *World) Successors(s *State) []*State {
	calls := w.Ground(s)
	out := make([]*State, len(calls))
	for i, c := range calls {
		out[i] = w.byName[c.Name].Apply(s, c, false)
	}
	return out
}
