package checkers

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/checkers/internal/planner"
)

// ErrNoLegalMoves is returned by Player.Choose when the side cannot move.
var ErrNoLegalMoves = errors.New("checkers: no legal moves")

// Goal kinds tried by Player.Choose, in order.
const (
	GoalCapture  = "capture"
	GoalKingRow  = "king_row"
	GoalFallback = "fallback"
)

// SearchEvent describes one planning run made while choosing a move.
type SearchEvent struct {
	Kind   string
	Goal   string
	Domain string
	Result *planner.Result
}

// Decision is the move a Player chose and how it was found.
type Decision struct {
	Move Move
	// Kind is GoalCapture, GoalKingRow or GoalFallback.
	Kind string
	// Goal is the goal predicate of the winning plan; empty for a fallback.
	Goal string
	Plan planner.Plan
	// Searches counts the planning runs made.
	Searches int
	// Skipped counts goals dropped without a search because no sequence of
	// the mover's moves can reach them.
	Skipped int
}

// Player chooses moves for one side by planning toward capture goals, then
// toward the far row, and otherwise plays the first legal move.
type Player struct {
	Color Color
	// Options configures every search; Options.Logger defaults to the
	// Player's logger.
	Options planner.Options
	// Timeout bounds each search; 0 means no bound beyond the caller's ctx.
	Timeout time.Duration
	// OnSearch, when set, is called after every planning run.
	OnSearch func(SearchEvent)

	namer      *Namer
	generator  *DomainGenerator
	translator *Translator
	logger     *zap.Logger
}

// NewPlayer creates a Player for color.
//
// Precondition: logger must be non-nil.
// Postcondition: the Player owns a fresh Namer.
func NewPlayer(color Color, opts planner.Options, logger *zap.Logger) *Player {
	if logger == nil {
		panic("checkers.NewPlayer: logger must not be nil")
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	namer := NewNamer()
	return &Player{
		Color:      color,
		Options:    opts,
		namer:      namer,
		generator:  NewDomainGenerator(namer),
		translator: NewTranslator(namer),
		logger:     logger,
	}
}

// Choose picks a move on b.
//
// Postcondition: the returned Move is legal on b, or err is non-nil.
func (p *Player) Choose(ctx context.Context, b *Board) (Decision, error) {
	moves := b.LegalMoves(p.Color)
	if len(moves) == 0 {
		return Decision{}, ErrNoLegalMoves
	}

	dec := Decision{}
	for _, stage := range []struct {
		kind  string
		goals []string
	}{
		{GoalCapture, p.captureGoals(b)},
		{GoalKingRow, p.kingRowGoals(b)},
	} {
		best, err := p.plan(ctx, b, stage.kind, stage.goals, &dec)
		if err != nil {
			return Decision{}, err
		}
		if best != nil {
			best.Searches, best.Skipped = dec.Searches, dec.Skipped
			p.logger.Debug("move planned",
				zap.String("color", p.Color.Name()),
				zap.String("kind", best.Kind),
				zap.String("goal", best.Goal),
				zap.Stringer("move", best.Move),
				zap.Int("plan_length", len(best.Plan)),
			)
			return *best, nil
		}
	}

	dec.Move = moves[0]
	dec.Kind = GoalFallback
	p.logger.Debug("no plan found, playing first legal move",
		zap.String("color", p.Color.Name()),
		zap.Stringer("move", dec.Move),
		zap.Int("searches", dec.Searches),
		zap.Int("skipped", dec.Skipped),
	)
	return dec, nil
}

// plan searches every reachable goal and returns the cheapest plan whose first
// step is a legal move, or nil. Searches and skips are tallied into tally.
func (p *Player) plan(ctx context.Context, b *Board, kind string, goals []string, tally *Decision) (*Decision, error) {
	var best *Decision
	for _, goal := range goals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := p.generator.Domain(b, p.Color, goal)
		w, err := planner.Load(text)
		if err != nil {
			return nil, err
		}
		if !planner.GoalReachable(w) {
			tally.Skipped++
			p.logger.Debug("goal unreachable, skipping search",
				zap.String("kind", kind),
				zap.String("goal", goal),
			)
			continue
		}

		sctx, cancel := ctx, context.CancelFunc(func() {})
		if p.Timeout > 0 {
			sctx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		res, err := planner.Search(sctx, w, p.Options)
		cancel()
		if err != nil {
			return nil, err
		}
		tally.Searches++
		if p.OnSearch != nil {
			p.OnSearch(SearchEvent{Kind: kind, Goal: goal, Domain: text, Result: res})
		}
		if !res.Found || len(res.Plan) == 0 {
			continue
		}
		if best != nil && len(res.Plan) >= len(best.Plan) {
			continue
		}
		mv, err := p.translator.Move(p.Color, res.Plan[0])
		if err != nil || !b.Legal(mv) {
			p.logger.Warn("discarding plan with unplayable first step",
				zap.String("goal", goal),
				zap.Stringer("step", res.Plan[0]),
				zap.Error(err),
			)
			continue
		}
		best = &Decision{Move: mv, Kind: kind, Goal: goal, Plan: res.Plan}
		if len(res.Plan) == 1 {
			break
		}
	}
	return best, nil
}

// captureGoals asks for each opponent square to be emptied.
func (p *Player) captureGoals(b *Board) []string {
	var goals []string
	for _, sq := range b.Squares() {
		if pc, ok := b.At(sq); ok && pc.Color != p.Color {
			goals = append(goals, p.generator.EmptyGoal(sq))
		}
	}
	return goals
}

// kingRowGoals asks for an own piece on each free far-row square, when the
// side still has uncrowned pieces.
func (p *Player) kingRowGoals(b *Board) []string {
	uncrowned := false
	for _, pc := range b.Pieces {
		if pc.Color == p.Color && !pc.King {
			uncrowned = true
			break
		}
	}
	if !uncrowned {
		return nil
	}
	row := b.Size - 1
	if p.Color == White {
		row = 0
	}
	var goals []string
	for x := 0; x < b.Size; x++ {
		sq := Square{X: x, Y: row}
		if _, taken := b.At(sq); !taken {
			goals = append(goals, p.generator.OccupyGoal(sq))
		}
	}
	return goals
}
