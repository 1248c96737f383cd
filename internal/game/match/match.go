// Package match runs an interactive checkers game between a human reading
// commands from a stream and a planner-driven AI.
package match

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/checkers/internal/game/checkers"
	"github.com/cory-johannsen/checkers/internal/game/command"
)

// Outcome is how a match ended.
type Outcome struct {
	// Over is true when a side won; Winner is then set.
	Over   bool
	Winner checkers.Color
	// Quit is true when the human left or input ended.
	Quit bool
	// Moves counts the moves played by both sides.
	Moves int
}

// Match is one game. Black moves first.
type Match struct {
	board    *checkers.Board
	ai       *checkers.Player
	hinter   *checkers.Player
	registry *command.Registry
	logger   *zap.Logger
	turn     checkers.Color
}

// New creates a Match on board. The human plays the side ai does not;
// hinter, when non-nil, plans for the human on request.
//
// Precondition: board, ai and logger must be non-nil.
func New(board *checkers.Board, ai, hinter *checkers.Player, logger *zap.Logger) *Match {
	if board == nil || ai == nil || logger == nil {
		panic("match.New: board, ai and logger must not be nil")
	}
	return &Match{
		board:    board,
		ai:       ai,
		hinter:   hinter,
		registry: command.DefaultRegistry(),
		logger:   logger,
		turn:     checkers.Black,
	}
}

// Human returns the human's side.
func (m *Match) Human() checkers.Color { return m.ai.Color.Opponent() }

// Run plays until a side wins, the human quits, input ends or ctx is done.
func (m *Match) Run(ctx context.Context, in io.Reader, out io.Writer) (Outcome, error) {
	var res Outcome
	scanner := bufio.NewScanner(in)

	fmt.Fprintf(out, "You play %s. Type help for commands.\n", m.Human().Name())
	if err := m.board.Render(out); err != nil {
		return res, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if winner, over := m.board.Winner(m.turn); over {
			res.Over, res.Winner = true, winner
			fmt.Fprintf(out, "%s wins.\n", winner.Name())
			m.logger.Info("match finished", zap.String("winner", winner.Name()), zap.Int("moves", res.Moves))
			return res, nil
		}

		if m.turn == m.ai.Color {
			if err := m.aiTurn(ctx, out); err != nil {
				return res, err
			}
			res.Moves++
			m.turn = m.turn.Opponent()
			continue
		}

		fmt.Fprint(out, "Move?: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return res, fmt.Errorf("reading input: %w", err)
			}
			fmt.Fprintln(out)
			res.Quit = true
			return res, nil
		}
		moved, quit, err := m.dispatch(ctx, scanner.Text(), out)
		if err != nil {
			return res, err
		}
		if quit {
			res.Quit = true
			return res, nil
		}
		if moved {
			res.Moves++
			m.turn = m.turn.Opponent()
		}
	}
}

func (m *Match) aiTurn(ctx context.Context, out io.Writer) error {
	dec, err := m.ai.Choose(ctx, m.board)
	if err != nil {
		return fmt.Errorf("ai move: %w", err)
	}
	if err := m.board.Move(dec.Move.From, dec.Move.Dir); err != nil {
		return fmt.Errorf("ai played %s: %w", dec.Move, err)
	}
	fmt.Fprintf(out, "%s plays %s (%s)\n", m.ai.Color.Name(), dec.Move, dec.Kind)
	return m.board.Render(out)
}

// dispatch runs one human command line.
func (m *Match) dispatch(ctx context.Context, line string, out io.Writer) (moved, quit bool, err error) {
	parsed := command.Parse(line)
	if parsed.Command == "" {
		return false, false, nil
	}
	cmd, ok := m.registry.Resolve(parsed.Command)
	if !ok {
		fmt.Fprintf(out, "Unknown command %q. Type help for commands.\n", parsed.Command)
		return false, false, nil
	}

	switch cmd.Handler {
	case command.HandlerMove:
		return m.humanMove(parsed.Args, out), false, nil
	case command.HandlerBoard:
		return false, false, m.board.Render(out)
	case command.HandlerHint:
		m.hint(ctx, out)
		return false, false, nil
	case command.HandlerHelp:
		fmt.Fprint(out, m.registry.HelpText())
		return false, false, nil
	case command.HandlerQuit:
		fmt.Fprintln(out, "Goodbye.")
		return false, true, nil
	}
	return false, false, fmt.Errorf("command %q has no handler", cmd.Name)
}

func (m *Match) humanMove(args []string, out io.Writer) bool {
	mv, err := command.ParseMove(args)
	if err != nil {
		fmt.Fprintf(out, "Usage: move <x> <y> <dir>: %v\n", err)
		return false
	}
	if p, ok := m.board.At(mv.From); ok && p.Color != m.Human() {
		fmt.Fprintln(out, "Invalid move: that is not your piece.")
		return false
	}
	if err := m.board.Move(mv.From, mv.Dir); err != nil {
		fmt.Fprintf(out, "Invalid move: %v\n", err)
		return false
	}
	m.logger.Debug("human move", zap.Stringer("move", mv))
	if err := m.board.Render(out); err != nil {
		m.logger.Warn("rendering board", zap.Error(err))
	}
	return true
}

func (m *Match) hint(ctx context.Context, out io.Writer) {
	if m.hinter == nil {
		fmt.Fprintln(out, "Hints are not available.")
		return
	}
	dec, err := m.hinter.Choose(ctx, m.board)
	switch {
	case errors.Is(err, checkers.ErrNoLegalMoves):
		fmt.Fprintln(out, "You have no legal moves.")
	case err != nil:
		fmt.Fprintf(out, "No hint: %v\n", err)
	default:
		fmt.Fprintf(out, "Hint: move %s (%s)\n", dec.Move, dec.Kind)
	}
}
