// Package syntax turns planning domain text into a directive-classified token
// tree. It performs no semantic interpretation; internal/planner builds the
// domain model from the Tree.
//
// Domain text is line oriented:
//
//	# comment
//	predicates: At(x) Link(x, y)
//	constants: A B
//	Move x y
//	pre: At(x) Link(x, y)
//	preneg: At(y)
//	del: At(x)
//	add: At(y)
//	initial: At(A) Link(A, B)
//	goal: At(B)
package syntax

import (
	"fmt"
	"strings"
)

// Kind classifies a line of domain text.
type Kind int

const (
	// KindBlank is an empty line outside an action block.
	KindBlank Kind = iota
	// KindComment is a line starting with '#'.
	KindComment
	// KindPredicates declares predicate signatures.
	KindPredicates
	// KindConstants lists the domain's objects.
	KindConstants
	// KindAction is an action header: a name followed by its parameters.
	KindAction
	// KindPre lists an action's preconditions.
	KindPre
	// KindPreNeg lists predicates that must not hold.
	KindPreNeg
	// KindDel lists an action's deletes.
	KindDel
	// KindAdd lists an action's adds.
	KindAdd
	// KindInitial lists the initial state.
	KindInitial
	// KindGoal lists the goal predicates.
	KindGoal
	// KindUnknown is a line that matches no directive.
	KindUnknown
)

var kindNames = map[Kind]string{
	KindBlank:      "blank",
	KindComment:    "comment",
	KindPredicates: "predicates",
	KindConstants:  "constants",
	KindAction:     "action",
	KindPre:        "pre",
	KindPreNeg:     "preneg",
	KindDel:        "del",
	KindAdd:        "add",
	KindInitial:    "initial",
	KindGoal:       "goal",
	KindUnknown:    "unknown",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Term is one argument of a predicate token.
type Term struct {
	Name string
	// Constant is true when Name starts with an uppercase letter.
	Constant bool
}

// Predicate is a predicate token: a name and its argument terms.
type Predicate struct {
	Name  string
	Terms []Term
	Line  int
}

// String renders the predicate in domain text form, e.g. "At(x, B)".
func (p Predicate) String() string {
	names := make([]string, len(p.Terms))
	for i, t := range p.Terms {
		names[i] = t.Name
	}
	return p.Name + "(" + strings.Join(names, ", ") + ")"
}

// ActionBlock is the token form of a five-line action schema.
type ActionBlock struct {
	Name   string
	Params []string
	Pre    []Predicate
	PreNeg []Predicate
	Del    []Predicate
	Add    []Predicate
	// Line is the line number of the header line.
	Line int
}

// Comment is a preserved comment line.
type Comment struct {
	Text string
	Line int
}

// Tree is the token tree produced by Parse.
type Tree struct {
	Comments   []Comment
	Predicates []Predicate
	Constants  []string
	Actions    []ActionBlock
	Initial    []Predicate
	Goal       []Predicate
}
