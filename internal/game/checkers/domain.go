package checkers

import (
	"fmt"
	"strings"
)

// Schema names emitted by DomainGenerator.
const (
	SchemaStep     = "Step"
	SchemaKingStep = "KingStep"
	SchemaJump     = "Jump"
	SchemaKingJump = "KingJump"
)

// The opponent never moves inside a plan: a plan is a sequence of the mover's
// own moves, and only its first step is played.
const schemas = `predicates: Mine(s) Theirs(s) Empty(s) King(s) Forward(s, t) Adjacent(s, t) Leap(s, o, t) Around(s, o, t)
Step s t
pre: Mine(s) Empty(t) Forward(s, t)
preneg: King(s)
del: Mine(s) Empty(t)
add: Mine(t) Empty(s)
KingStep s t
pre: Mine(s) King(s) Empty(t) Adjacent(s, t)
preneg:
del: Mine(s) King(s) Empty(t)
add: Mine(t) King(t) Empty(s)
Jump s o t
pre: Mine(s) Theirs(o) Empty(t) Leap(s, o, t)
preneg: King(s)
del: Mine(s) Theirs(o) King(o) Empty(t)
add: Mine(t) Empty(s) Empty(o)
KingJump s o t
pre: Mine(s) King(s) Theirs(o) Empty(t) Around(s, o, t)
preneg:
del: Mine(s) King(s) Theirs(o) King(o) Empty(t)
add: Mine(t) King(t) Empty(s) Empty(o)
`

// DomainGenerator describes a board position as planning domain text from
// the point of view of the side to move.
type DomainGenerator struct {
	namer *Namer
}

// NewDomainGenerator returns a generator minting names with namer.
//
// Precondition: namer must not be nil.
func NewDomainGenerator(namer *Namer) *DomainGenerator {
	if namer == nil {
		panic("checkers.NewDomainGenerator: namer must not be nil")
	}
	return &DomainGenerator{namer: namer}
}

// EmptyGoal is the goal predicate "sq is empty".
func (g *DomainGenerator) EmptyGoal(sq Square) string {
	return "Empty(" + g.namer.Name(sq) + ")"
}

// OccupyGoal is the goal predicate "the mover has a piece on sq".
func (g *DomainGenerator) OccupyGoal(sq Square) string {
	return "Mine(" + g.namer.Name(sq) + ")"
}

// Domain returns the domain text for b with side to move and the given goal
// predicates, which must be renderings such as EmptyGoal returns.
func (g *DomainGenerator) Domain(b *Board, side Color, goal ...string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s to move on a %dx%d board\n", side.Name(), b.Size, b.Size)
	sb.WriteString(schemas)

	squares := b.Squares()
	sb.WriteString("constants:")
	for _, sq := range squares {
		sb.WriteString(" " + g.namer.Name(sq))
	}
	sb.WriteByte('\n')

	var facts []string
	for _, sq := range squares {
		name := g.namer.Name(sq)
		p, ok := b.At(sq)
		switch {
		case !ok:
			facts = append(facts, "Empty("+name+")")
		case p.Color == side:
			facts = append(facts, "Mine("+name+")")
		default:
			facts = append(facts, "Theirs("+name+")")
		}
		if ok && p.King {
			facts = append(facts, "King("+name+")")
		}
	}
	facts = append(facts, g.geometry(b, side)...)

	sb.WriteString("initial: " + strings.Join(facts, " ") + "\n")
	sb.WriteString("goal:")
	for _, p := range goal {
		sb.WriteString(" " + p)
	}
	sb.WriteByte('\n')
	return sb.String()
}

// geometry emits the static adjacency facts: Forward and Leap for the side's
// forward diagonals, Adjacent and Around for all four.
func (g *DomainGenerator) geometry(b *Board, side Color) []string {
	var facts []string
	for _, from := range b.Squares() {
		s := g.namer.Name(from)
		for _, dy := range []int{side.forward(), -side.forward()} {
			for _, dx := range []int{-1, 1} {
				mid := Square{X: from.X + dx, Y: from.Y + dy}
				if !b.InBounds(mid) {
					continue
				}
				m := g.namer.Name(mid)
				forward := dy == side.forward()
				if forward {
					facts = append(facts, fmt.Sprintf("Forward(%s, %s)", s, m))
				}
				facts = append(facts, fmt.Sprintf("Adjacent(%s, %s)", s, m))

				far := Square{X: from.X + 2*dx, Y: from.Y + 2*dy}
				if !b.InBounds(far) {
					continue
				}
				t := g.namer.Name(far)
				if forward {
					facts = append(facts, fmt.Sprintf("Leap(%s, %s, %s)", s, m, t))
				}
				facts = append(facts, fmt.Sprintf("Around(%s, %s, %s)", s, m, t))
			}
		}
	}
	return facts
}
