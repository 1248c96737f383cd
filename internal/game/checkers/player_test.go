package checkers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/checkers/internal/game/checkers"
	"github.com/cory-johannsen/checkers/internal/planner"
)

func newPlayer(color checkers.Color) *checkers.Player {
	return checkers.NewPlayer(color, planner.Options{
		Heuristic:     planner.LiteralCount,
		Weight:        1,
		MaxExpansions: 5000,
	}, zap.NewNop())
}

func TestPlayer_PrefersCapture(t *testing.T) {
	p := newPlayer(checkers.Black)
	var events []checkers.SearchEvent
	p.OnSearch = func(e checkers.SearchEvent) { events = append(events, e) }

	b := boardWith(4, map[sq]checkers.Piece{{X: 0, Y: 0}: black, {X: 1, Y: 1}: white})
	dec, err := p.Choose(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, checkers.GoalCapture, dec.Kind)
	assert.Equal(t, checkers.Move{From: sq{X: 0, Y: 0}, Dir: checkers.CaptureForwardRight}, dec.Move)
	require.Len(t, dec.Plan, 1)
	assert.Equal(t, 1, dec.Searches)
	require.Len(t, events, 1)
	assert.True(t, events[0].Result.Found)
	assert.Contains(t, events[0].Domain, "goal: Empty(")
}

func TestPlayer_HeadsForTheKingRow(t *testing.T) {
	p := newPlayer(checkers.Black)
	b := boardWith(4, map[sq]checkers.Piece{{X: 0, Y: 1}: black, {X: 3, Y: 3}: white})
	dec, err := p.Choose(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, checkers.GoalKingRow, dec.Kind)
	assert.Equal(t, checkers.Move{From: sq{X: 0, Y: 1}, Dir: checkers.ForwardRight}, dec.Move)
	assert.Len(t, dec.Plan, 2)
	assert.True(t, b.Legal(dec.Move))
}

func TestPlayer_FallsBackToFirstLegalMove(t *testing.T) {
	p := newPlayer(checkers.Black)
	b := boardWith(4, map[sq]checkers.Piece{{X: 0, Y: 0}: blackKing, {X: 3, Y: 3}: white})
	dec, err := p.Choose(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, checkers.GoalFallback, dec.Kind)
	assert.Equal(t, b.LegalMoves(checkers.Black)[0], dec.Move)
	assert.Empty(t, dec.Goal)
}

func TestPlayer_NoLegalMoves(t *testing.T) {
	p := newPlayer(checkers.Black)
	b := boardWith(4, map[sq]checkers.Piece{{X: 1, Y: 3}: black, {X: 0, Y: 0}: white})
	_, err := p.Choose(context.Background(), b)
	assert.True(t, errors.Is(err, checkers.ErrNoLegalMoves))
}

func TestPlayer_CancelledContext(t *testing.T) {
	p := newPlayer(checkers.Black)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Choose(ctx, boardWith(4, map[sq]checkers.Piece{{X: 0, Y: 0}: black, {X: 1, Y: 1}: white}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlayer_ChoicesAreAlwaysLegal(t *testing.T) {
	b := checkers.NewBoard(4, 1)
	players := map[checkers.Color]*checkers.Player{
		checkers.Black: newPlayer(checkers.Black),
		checkers.White: newPlayer(checkers.White),
	}
	side := checkers.Black
	for turn := 0; turn < 20; turn++ {
		if _, over := b.Winner(side); over {
			break
		}
		dec, err := players[side].Choose(context.Background(), b)
		require.NoError(t, err)
		require.NoError(t, b.Move(dec.Move.From, dec.Move.Dir), "turn %d: %s played %s", turn, side.Name(), dec.Move)
		side = side.Opponent()
	}
}

func TestPlayer_OpeningSkipsUnreachableGoals(t *testing.T) {
	b := checkers.NewBoard(4, 1)
	p := newPlayer(checkers.Black)
	var events []checkers.SearchEvent
	p.OnSearch = func(e checkers.SearchEvent) { events = append(events, e) }

	dec, err := p.Choose(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, checkers.GoalFallback, dec.Kind)
	assert.Equal(t, 0, dec.Searches)
	assert.Equal(t, 4, dec.Skipped, "no white piece on the far row can be jumped")
	assert.Empty(t, events)
	require.NoError(t, b.Move(dec.Move.From, dec.Move.Dir))

	reply := newPlayer(checkers.White)
	reply.OnSearch = func(e checkers.SearchEvent) { events = append(events, e) }
	dec, err = reply.Choose(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, b.Legal(dec.Move))
	for _, e := range events {
		assert.False(t, e.Result.Exhausted, "search for %s ran out of budget", e.Goal)
		assert.Less(t, e.Result.Expanded, 500, "search for %s", e.Goal)
	}
}

func TestPlayer_SearchesOnlyReachableCaptures(t *testing.T) {
	p := newPlayer(checkers.Black)
	var events []checkers.SearchEvent
	p.OnSearch = func(e checkers.SearchEvent) { events = append(events, e) }

	// the piece on (2, 0) sits on black's home row and cannot be jumped
	b := boardWith(4, map[sq]checkers.Piece{{X: 0, Y: 0}: black, {X: 2, Y: 0}: white, {X: 1, Y: 1}: white})
	dec, err := p.Choose(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, checkers.GoalCapture, dec.Kind)
	assert.Equal(t, 1, dec.Skipped)
	assert.Equal(t, 1, dec.Searches)
	require.Len(t, events, 1)
	assert.True(t, events[0].Result.Found)
	assert.Equal(t, checkers.Move{From: sq{X: 0, Y: 0}, Dir: checkers.CaptureForwardRight}, dec.Move)
}
