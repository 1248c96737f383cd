package checkers

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/checkers/internal/planner"
)

// ErrUntranslatable is returned when a plan step does not describe a move.
var ErrUntranslatable = errors.New("checkers: plan step does not map to a move")

// Translator maps ActionCalls produced from DomainGenerator text back to
// board moves.
type Translator struct {
	namer *Namer
}

// NewTranslator returns a Translator resolving constants with namer, which
// must be the Namer that generated the domain.
//
// Precondition: namer must not be nil.
func NewTranslator(namer *Namer) *Translator {
	if namer == nil {
		panic("checkers.NewTranslator: namer must not be nil")
	}
	return &Translator{namer: namer}
}

// Move converts call, planned for side, into a Move.
func (t *Translator) Move(side Color, call planner.ActionCall) (Move, error) {
	var want int
	switch call.Name {
	case SchemaStep, SchemaKingStep:
		want = 2
	case SchemaJump, SchemaKingJump:
		want = 3
	default:
		return Move{}, fmt.Errorf("%w: unknown schema %q", ErrUntranslatable, call.Name)
	}
	if len(call.Args) != want {
		return Move{}, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrUntranslatable, call.Name, want, len(call.Args))
	}
	from, ok := t.namer.Square(call.Args[0].Name)
	if !ok {
		return Move{}, fmt.Errorf("%w: unknown square %q", ErrUntranslatable, call.Args[0].Name)
	}
	to, ok := t.namer.Square(call.Args[want-1].Name)
	if !ok {
		return Move{}, fmt.Errorf("%w: unknown square %q", ErrUntranslatable, call.Args[want-1].Name)
	}
	dir, ok := directionFor(side, from, to)
	if !ok {
		return Move{}, fmt.Errorf("%w: %s to %s is not a move", ErrUntranslatable, from, to)
	}
	if dir.Capture() != (want == 3) {
		return Move{}, fmt.Errorf("%w: %s does not match %s", ErrUntranslatable, dir, call.Name)
	}
	return Move{From: from, Dir: dir}, nil
}
