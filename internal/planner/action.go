package planner

import (
	"strings"
	"sync"
)

// Action is an action schema. It is immutable once built.
//
// Invariant: every Params entry is a variable; Pre, PreNeg, Del and Add are
// expressed in terms of those variables.
type Action struct {
	Name   string
	Params []Term
	Pre    []Predicate
	PreNeg []Predicate
	Del    []Predicate
	Add    []Predicate

	levelsOnce sync.Once
	levels     [][]levelCheck
}

// ActionCall is a grounded Action: the schema name plus one constant per
// schema parameter, positionally.
type ActionCall struct {
	Name string
	Args []Term
	// Source is the StateID of the state the call was generated from, or
	// NoState.
	Source StateID
}

// String renders c as "Name A B".
func (c ActionCall) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	names := make([]string, len(c.Args))
	for i, a := range c.Args {
		names[i] = a.Name
	}
	return c.Name + " " + strings.Join(names, " ")
}

// ArgNames returns the names of the call's constants.
func (c ActionCall) ArgNames() []string {
	names := make([]string, len(c.Args))
	for i, a := range c.Args {
		names[i] = a.Name
	}
	return names
}

// Ground expands a over constants into every ActionCall, with no applicability
// filtering.
//
// Postcondition: len(result) == len(constants)^len(a.Params); calls are in
// lexicographic order with parameter 0 most significant.
func (a *Action) Ground(constants []Term) []ActionCall {
	k, n := len(a.Params), len(constants)
	if k > 0 && n == 0 {
		return nil
	}
	total := 1
	for i := 0; i < k; i++ {
		total *= n
	}
	calls := make([]ActionCall, 0, total)
	idx := make([]int, k)
	for {
		args := make([]Term, k)
		for i, ci := range idx {
			args[i] = constants[ci]
		}
		calls = append(calls, ActionCall{Name: a.Name, Args: args, Source: NoState})

		i := k - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < n {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return calls
		}
	}
}

// Applicable returns the calls of a.Ground(constants) that Validate against
// s, in the same order. Parameters are bound most-significant first and a
// partial binding is abandoned as soon as a fully bound precondition fails,
// so rejected subtrees are never enumerated.
//
// Postcondition: equal to filtering a.Ground(constants) with Validate.
func (a *Action) Applicable(constants []Term, s *State) []ActionCall {
	k := len(a.Params)
	if k > 0 && len(constants) == 0 {
		return nil
	}
	checks := a.checkLevels()
	binding := make(map[string]Term, k)
	args := make([]Term, k)

	holdsAt := func(level int) bool {
		for _, c := range checks[level+1] {
			if s.Holds(c.pred.substitute(binding)) == c.negated {
				return false
			}
		}
		return true
	}
	if !holdsAt(-1) {
		return nil
	}

	var calls []ActionCall
	var walk func(i int)
	walk = func(i int) {
		if i == k {
			out := make([]Term, k)
			copy(out, args)
			calls = append(calls, ActionCall{Name: a.Name, Args: out, Source: NoState})
			return
		}
		for _, c := range constants {
			args[i] = c
			binding[a.Params[i].Name] = c
			if holdsAt(i) {
				walk(i + 1)
			}
		}
		delete(binding, a.Params[i].Name)
	}
	walk(0)
	return calls
}

type levelCheck struct {
	pred    Predicate
	negated bool
}

// checkLevels groups the preconditions by the index of the last parameter
// they mention, shifted by one so that index 0 holds the preconditions that
// mention no parameter.
func (a *Action) checkLevels() [][]levelCheck {
	a.levelsOnce.Do(func() {
		pos := make(map[string]int, len(a.Params))
		for i, p := range a.Params {
			pos[p.Name] = i
		}
		a.levels = make([][]levelCheck, len(a.Params)+1)
		add := func(preds []Predicate, negated bool) {
			for _, p := range preds {
				last := -1
				for _, t := range p.Terms {
					if i, ok := pos[t.Name]; ok && !t.IsConstant() && i > last {
						last = i
					}
				}
				a.levels[last+1] = append(a.levels[last+1], levelCheck{pred: p, negated: negated})
			}
		}
		add(a.Pre, false)
		add(a.PreNeg, true)
	})
	return a.levels
}

// bind maps each parameter name to the call's constant at the same position.
func (a *Action) bind(call ActionCall) map[string]Term {
	binding := make(map[string]Term, len(a.Params))
	for i, p := range a.Params {
		if i < len(call.Args) {
			binding[p.Name] = call.Args[i]
		}
	}
	return binding
}

// Validate reports whether call is applicable in s: every substituted
// precondition is held and no substituted negative precondition is held.
func (a *Action) Validate(call ActionCall, s *State) bool {
	if call.Name != a.Name || len(call.Args) != len(a.Params) {
		return false
	}
	binding := a.bind(call)
	for _, p := range a.Pre {
		if !s.Holds(p.substitute(binding)) {
			return false
		}
	}
	for _, p := range a.PreNeg {
		if s.Holds(p.substitute(binding)) {
			return false
		}
	}
	return true
}

// Effects returns the substituted delete and add lists for call.
func (a *Action) Effects(call ActionCall) (del, add []Predicate) {
	binding := a.bind(call)
	return substituteAll(a.Del, binding), substituteAll(a.Add, binding)
}

// Apply returns the successor of s under call. Unless relaxed, predicates
// matching a substituted delete are removed; substituted adds are always
// added. The successor costs one more than s and links back to call.
//
// Precondition: call passed Validate against s; Apply does not re-check.
func (a *Action) Apply(s *State, call ActionCall, relaxed bool) *State {
	del, add := a.Effects(call)

	preds := make([]Predicate, 0, len(s.preds)+len(add))
	for _, p := range s.preds {
		if !relaxed && matchesAny(p, del) {
			continue
		}
		preds = append(preds, p)
	}

	present := make(map[string]struct{}, len(preds))
	for _, p := range preds {
		present[p.String()] = struct{}{}
	}
	for _, p := range add {
		k := p.String()
		if _, ok := present[k]; ok {
			continue
		}
		present[k] = struct{}{}
		preds = append(preds, p)
	}

	via := call
	return newState(preds, s.cost+1, &via)
}

func matchesAny(p Predicate, list []Predicate) bool {
	for _, q := range list {
		if Matches(p, q) {
			return true
		}
	}
	return false
}
