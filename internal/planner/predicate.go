// Package planner implements a STRIPS planner: the domain model built from
// parsed domain text, action grounding and validation, state transitions,
// heuristic evaluators, and a weighted A* search driver.
//
// The package knows nothing about the game it plans for; callers describe a
// problem entirely in domain text (see internal/planner/syntax).
package planner

import "strings"

// TermKind distinguishes concrete objects from schema placeholders.
type TermKind uint8

const (
	// ConstantTerm denotes a concrete object.
	ConstantTerm TermKind = iota
	// VariableTerm is a schema placeholder, bound only during grounding.
	VariableTerm
)

// Term is a predicate argument.
type Term struct {
	Name string
	Kind TermKind
}

// Constant returns a constant Term.
func Constant(name string) Term { return Term{Name: name, Kind: ConstantTerm} }

// Variable returns a variable Term.
func Variable(name string) Term { return Term{Name: name, Kind: VariableTerm} }

// IsConstant reports whether t denotes a concrete object.
func (t Term) IsConstant() bool { return t.Kind == ConstantTerm }

func (t Term) String() string { return t.Name }

// Predicate is a name applied to an ordered list of terms.
//
// Predicates are compared with Matches, never with ==.
type Predicate struct {
	Name  string
	Terms []Term
}

// NewPredicate returns a Predicate over terms.
func NewPredicate(name string, terms ...Term) Predicate {
	return Predicate{Name: name, Terms: terms}
}

// Ground reports whether every term of p is a constant.
func (p Predicate) Ground() bool {
	for _, t := range p.Terms {
		if !t.IsConstant() {
			return false
		}
	}
	return true
}

// String renders p as "Name(a, b)".
func (p Predicate) String() string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteByte('(')
	for i, t := range p.Terms {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.Name)
	}
	b.WriteByte(')')
	return b.String()
}

// Matches is the predicate comparison used for state membership and for
// precondition matching.
//
// Two predicates match iff their names are equal, their term counts are
// equal, and every position where BOTH terms are constants holds the same
// constant. A position where either side is a variable is a wildcard and never
// causes a mismatch. The relation is symmetric but not transitive, so it must
// not be used as a general-purpose equality (e.g. as a map key).
func Matches(a, b Predicate) bool {
	if a.Name != b.Name || len(a.Terms) != len(b.Terms) {
		return false
	}
	for i, t := range a.Terms {
		u := b.Terms[i]
		if t.IsConstant() && u.IsConstant() && t.Name != u.Name {
			return false
		}
	}
	return true
}

// substitute returns a copy of p with every variable bound in binding replaced
// by its constant. Constants and unbound variables are kept as written.
func (p Predicate) substitute(binding map[string]Term) Predicate {
	terms := make([]Term, len(p.Terms))
	for i, t := range p.Terms {
		if v, ok := binding[t.Name]; ok && !t.IsConstant() {
			terms[i] = v
			continue
		}
		terms[i] = t
	}
	return Predicate{Name: p.Name, Terms: terms}
}

func substituteAll(preds []Predicate, binding map[string]Term) []Predicate {
	out := make([]Predicate, len(preds))
	for i, p := range preds {
		out[i] = p.substitute(binding)
	}
	return out
}
