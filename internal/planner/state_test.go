package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/checkers/internal/planner"
)

func at(c string) planner.Predicate { return planner.NewPredicate("At", planner.Constant(c)) }

func TestNewState_DropsExactDuplicates(t *testing.T) {
	s := planner.NewState([]planner.Predicate{at("A"), at("A"), at("B")}, 0)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "At(A) At(B)", s.String())
	assert.Equal(t, planner.NoState, s.ID())
	_, ok := s.Via()
	assert.False(t, ok)
}

func TestState_HoldsTreatsVariablesAsWildcards(t *testing.T) {
	s := planner.NewState([]planner.Predicate{at("A")}, 0)
	assert.True(t, s.Holds(at("A")))
	assert.False(t, s.Holds(at("B")))
	assert.True(t, s.Holds(planner.NewPredicate("At", planner.Variable("x"))))
	assert.False(t, s.Holds(planner.NewPredicate("In", planner.Variable("x"))))
}

func TestState_Satisfies(t *testing.T) {
	s := planner.NewState([]planner.Predicate{at("A"), at("B")}, 3)
	assert.True(t, s.Satisfies(planner.NewState([]planner.Predicate{at("B")}, planner.GoalCost)))
	assert.True(t, s.Satisfies(planner.NewState(nil, planner.GoalCost)))
	assert.False(t, s.Satisfies(planner.NewState([]planner.Predicate{at("C")}, planner.GoalCost)))
}

func TestEqual_IgnoresOrderAndCost(t *testing.T) {
	a := planner.NewState([]planner.Predicate{at("A"), at("B")}, 0)
	b := planner.NewState([]planner.Predicate{at("B"), at("A")}, 7)
	c := planner.NewState([]planner.Predicate{at("A")}, 0)
	assert.True(t, planner.Equal(a, b))
	assert.False(t, planner.Equal(a, c))
	assert.False(t, planner.Equal(c, a))
}

func TestEqual_NonGroundStatesUseMatches(t *testing.T) {
	loose := planner.NewState([]planner.Predicate{planner.NewPredicate("At", planner.Variable("x"))}, 0)
	assert.True(t, planner.Equal(loose, planner.NewState([]planner.Predicate{at("A")}, 0)))
	assert.False(t, planner.Equal(loose, planner.NewState([]planner.Predicate{at("A"), at("B"), planner.NewPredicate("In", planner.Constant("A"))}, 0)))
}

func TestHistory_PlanToFollowsBackLinks(t *testing.T) {
	w, err := planner.Load(chainDomain)
	require.NoError(t, err)

	hist := &planner.History{}
	cur := hist.Record(w.Initial)
	assert.Equal(t, planner.StateID(0), cur.ID())
	var want []string
	for i := 0; i < 3; i++ {
		calls := w.Ground(cur)
		require.Len(t, calls, 1)
		assert.Equal(t, cur.ID(), calls[0].Source)
		act, err := w.ActionByName(calls[0].Name)
		require.NoError(t, err)
		cur = hist.Record(act.Apply(cur, calls[0], false))
		want = append(want, calls[0].String())
	}
	assert.Equal(t, 4, hist.Len())
	assert.True(t, cur.Satisfies(w.Goal))

	plan := hist.PlanTo(cur)
	got := make([]string, len(plan))
	for i, c := range plan {
		got[i] = c.String()
	}
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"Go A B", "Go B C", "Go C D"}, got)
	assert.Empty(t, hist.PlanTo(hist.State(0)))
	assert.Nil(t, hist.State(99))
}
