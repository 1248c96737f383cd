package planner

import (
	"sort"
	"strings"
	"sync"
)

// StateID is a State's position in a History. States that were never
// recorded carry NoState.
type StateID int

// NoState marks an unrecorded State or an untagged ActionCall.
const NoState StateID = -1

// GoalCost is the sentinel cost carried by a World's goal State; only the
// goal's predicates are meaningful.
const GoalCost = -1

// State is an immutable set of predicates plus the path cost that reached it
// and the ActionCall that produced it.
//
// Invariant: preds contains no two predicates with the same rendering.
type State struct {
	preds []Predicate
	cost  int
	via   *ActionCall
	id    StateID

	once   sync.Once
	byName map[string][]Predicate
	key    string
	ground bool
}

// NewState returns an unrecorded State with no back-link. Exact duplicates in
// preds are dropped.
func NewState(preds []Predicate, cost int) *State {
	return newState(dedup(preds), cost, nil)
}

func newState(preds []Predicate, cost int, via *ActionCall) *State {
	return &State{preds: preds, cost: cost, via: via, id: NoState}
}

func dedup(preds []Predicate) []Predicate {
	seen := make(map[string]struct{}, len(preds))
	out := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		k := p.String()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Predicates returns a copy of the state's predicates.
func (s *State) Predicates() []Predicate {
	out := make([]Predicate, len(s.preds))
	copy(out, s.preds)
	return out
}

// Len returns the number of predicates in s.
func (s *State) Len() int { return len(s.preds) }

// Cost returns the accumulated path cost.
func (s *State) Cost() int { return s.cost }

// ID returns the state's History position, or NoState.
func (s *State) ID() StateID { return s.id }

// Via returns the ActionCall that produced s; ok is false for a root state.
func (s *State) Via() (call ActionCall, ok bool) {
	if s.via == nil {
		return ActionCall{}, false
	}
	return *s.via, true
}

func (s *State) prepare() {
	s.once.Do(func() {
		s.byName = make(map[string][]Predicate)
		keys := make([]string, len(s.preds))
		s.ground = true
		for i, p := range s.preds {
			s.byName[p.Name] = append(s.byName[p.Name], p)
			keys[i] = p.String()
			if !p.Ground() {
				s.ground = false
			}
		}
		sort.Strings(keys)
		s.key = strings.Join(keys, " ")
	})
}

// Holds reports whether some predicate of s Matches p.
func (s *State) Holds(p Predicate) bool {
	s.prepare()
	for _, q := range s.byName[p.Name] {
		if Matches(q, p) {
			return true
		}
	}
	return false
}

// Satisfies reports whether s holds every predicate of goal.
func (s *State) Satisfies(goal *State) bool {
	for _, g := range goal.preds {
		if !s.Holds(g) {
			return false
		}
	}
	return true
}

// String renders the predicates of s, sorted and space separated.
func (s *State) String() string {
	s.prepare()
	return s.key
}

// Equal reports set equality of a and b under Matches: every predicate of
// each side is held by the other. Cost and back-links are ignored.
func Equal(a, b *State) bool {
	a.prepare()
	b.prepare()
	if a.ground && b.ground {
		return a.key == b.key
	}
	return a.Satisfies(b) && b.Satisfies(a)
}

// History is an append-only arena of the states recorded during one search.
// Back-links are StateIDs into the arena.
type History struct {
	states []*State
}

// Record stores s in the arena and returns the recorded copy, tagged with its
// StateID.
func (h *History) Record(s *State) *State {
	rec := &State{preds: s.preds, cost: s.cost, via: s.via, id: StateID(len(h.states))}
	h.states = append(h.states, rec)
	return rec
}

// adopt records a state the caller exclusively owns without copying it.
func (h *History) adopt(s *State) *State {
	s.id = StateID(len(h.states))
	h.states = append(h.states, s)
	return s
}

// State returns the recorded state for id, or nil when id is out of range.
func (h *History) State(id StateID) *State {
	if id < 0 || int(id) >= len(h.states) {
		return nil
	}
	return h.states[id]
}

// Len returns the number of recorded states.
func (h *History) Len() int { return len(h.states) }

// PlanTo follows back-links from s to its root and returns the ActionCalls in
// execution order.
func (h *History) PlanTo(s *State) Plan {
	var plan Plan
	for cur := s; cur != nil && cur.via != nil; cur = h.State(cur.via.Source) {
		plan = append(plan, *cur.via)
	}
	for i, j := 0, len(plan)-1; i < j; i, j = i+1, j-1 {
		plan[i], plan[j] = plan[j], plan[i]
	}
	return plan
}

// closedSet deduplicates expanded states. Fully ground states are indexed by
// their rendering; states holding variables fall back to pairwise Equal.
type closedSet struct {
	ground map[string]*State
	loose  []*State
}

func newClosedSet() *closedSet {
	return &closedSet{ground: make(map[string]*State)}
}

func (c *closedSet) Add(s *State) {
	s.prepare()
	if s.ground {
		c.ground[s.key] = s
		return
	}
	c.loose = append(c.loose, s)
}

func (c *closedSet) Contains(s *State) bool {
	s.prepare()
	if s.ground {
		if _, ok := c.ground[s.key]; ok {
			return true
		}
	} else {
		for _, g := range c.ground {
			if Equal(s, g) {
				return true
			}
		}
	}
	for _, l := range c.loose {
		if Equal(s, l) {
			return true
		}
	}
	return false
}

// Len returns the number of closed states.
func (c *closedSet) Len() int { return len(c.ground) + len(c.loose) }
