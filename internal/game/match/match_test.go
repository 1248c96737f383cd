package match_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/checkers/internal/game/checkers"
	"github.com/cory-johannsen/checkers/internal/game/match"
	"github.com/cory-johannsen/checkers/internal/planner"
)

func player(c checkers.Color) *checkers.Player {
	return checkers.NewPlayer(c, planner.Options{
		Heuristic:     planner.LiteralCount,
		Weight:        1,
		MaxExpansions: 2000,
	}, zap.NewNop())
}

func run(t *testing.T, m *match.Match, input string) (match.Outcome, string) {
	t.Helper()
	var out bytes.Buffer
	res, err := m.Run(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)
	return res, out.String()
}

func TestRun_CommandsAndQuit(t *testing.T) {
	m := match.New(checkers.NewBoard(4, 1), player(checkers.White), player(checkers.Black), zap.NewNop())
	assert.Equal(t, checkers.Black, m.Human())

	res, out := run(t, m, "help\n\nfoo\nmove 9 9 fl\nmove 0 3 fl\nmove 1 2\nhint\nb\nquit\n")
	assert.True(t, res.Quit)
	assert.False(t, res.Over)
	assert.Equal(t, 0, res.Moves)

	assert.Contains(t, out, "You play Black.")
	assert.Contains(t, out, "move <x> <y> <dir>")
	assert.Contains(t, out, `Unknown command "foo"`)
	assert.Contains(t, out, "Invalid move: "+checkers.ErrNoPiece.Error())
	assert.Contains(t, out, "that is not your piece")
	assert.Contains(t, out, "Usage: move <x> <y> <dir>")
	assert.Contains(t, out, "Hint: move ")
	assert.Contains(t, out, "Goodbye.")
}

func TestRun_AIAnswersHumanMove(t *testing.T) {
	m := match.New(checkers.NewBoard(4, 1), player(checkers.White), nil, zap.NewNop())
	res, out := run(t, m, "move 0 0 fr\nhint\nq\n")
	assert.True(t, res.Quit)
	assert.Equal(t, 2, res.Moves)
	assert.Contains(t, out, "White plays ")
	assert.Contains(t, out, "Hints are not available.")
}

func TestRun_AIMovesFirstWhenBlack(t *testing.T) {
	m := match.New(checkers.NewBoard(4, 1), player(checkers.Black), nil, zap.NewNop())
	assert.Equal(t, checkers.White, m.Human())
	res, out := run(t, m, "")
	assert.True(t, res.Quit, "end of input quits")
	assert.Equal(t, 1, res.Moves)
	assert.Contains(t, out, "Black plays ")
}

func TestRun_HumanWins(t *testing.T) {
	b := &checkers.Board{Size: 4, Pieces: map[checkers.Square]checkers.Piece{
		{X: 0, Y: 0}: {Color: checkers.Black},
		{X: 1, Y: 1}: {Color: checkers.White},
	}}
	m := match.New(b, player(checkers.White), nil, zap.NewNop())
	res, out := run(t, m, "move 0 0 cfr\n")
	assert.True(t, res.Over)
	assert.Equal(t, checkers.Black, res.Winner)
	assert.Equal(t, 1, res.Moves)
	assert.Contains(t, out, "Black wins.")
}

func TestRun_CancelledContext(t *testing.T) {
	m := match.New(checkers.NewBoard(4, 1), player(checkers.White), nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Run(ctx, strings.NewReader("quit\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { match.New(nil, player(checkers.White), nil, zap.NewNop()) })
}
