package planner_test

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/checkers/internal/planner"
)

func mustLoad(t testing.TB, text string) *planner.World {
	t.Helper()
	w, err := planner.Load(text)
	require.NoError(t, err)
	return w
}

func calls(p planner.Plan) []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.String()
	}
	return out
}

func TestSearch_MoveDomain(t *testing.T) {
	for _, name := range planner.HeuristicNames() {
		t.Run(name, func(t *testing.T) {
			h, err := planner.HeuristicByName(name)
			require.NoError(t, err)

			res, err := planner.Search(context.Background(), mustLoad(t, moveDomain), planner.Options{Heuristic: h, Weight: 1})
			require.NoError(t, err)
			require.NoError(t, res.Err())
			assert.Equal(t, []string{"Move A"}, calls(res.Plan))
			assert.Equal(t, 1, res.Cost())
			assert.GreaterOrEqual(t, res.Generated, 1)
			assert.GreaterOrEqual(t, res.Expanded, 1)
			assert.False(t, res.Exhausted)
		})
	}
}

func TestSearch_Chain(t *testing.T) {
	res, err := planner.Search(context.Background(), mustLoad(t, chainDomain), planner.Options{Heuristic: planner.RelaxedLayerSum, Weight: 2})
	require.NoError(t, err)
	require.True(t, res.Found)

	want := []string{"Go A B", "Go B C", "Go C D"}
	if diff := cmp.Diff(want, calls(res.Plan)); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, res.Cost())
	assert.Equal(t, 3, res.Generated)
	assert.Equal(t, 3, res.Expanded)
	assert.Equal(t, "0 Go A B\n1 Go B C\n2 Go C D", res.Plan.String())
}

func TestSearch_GoalAlreadySatisfied(t *testing.T) {
	w := mustLoad(t, `constants: A
initial: At(A)
goal: At(A)
`)
	res, err := planner.Search(context.Background(), w, planner.Options{Weight: 1})
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Empty(t, res.Plan)
	assert.Equal(t, 0, res.Cost())
	assert.Equal(t, 0, res.Generated)
	assert.Equal(t, 0, res.Expanded)
}

func TestSearch_UnreachableGoal(t *testing.T) {
	res, err := planner.Search(context.Background(), mustLoad(t, unreachableDomain), planner.Options{Heuristic: planner.LiteralCount, Weight: 1})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.False(t, res.Exhausted)
	assert.ErrorIs(t, res.Err(), planner.ErrNoPlan)
	assert.Equal(t, -1, res.Cost())
	assert.Equal(t, 4, res.Expanded)
	assert.Empty(t, res.Plan)
}

// shortcutDomain has a one-step route A->D alongside the three-step chain.
const shortcutDomain = `predicates: At(x) Link(x, y)
constants: A B C D
Go x y
pre: At(x) Link(x, y)
preneg:
del: At(x)
add: At(y)
initial: At(A) Link(A, B) Link(B, C) Link(C, D) Link(A, D)
goal: At(D)
`

func TestSearch_UniformCostFindsCheapestPlan(t *testing.T) {
	res, err := planner.Search(context.Background(), mustLoad(t, shortcutDomain), planner.Options{Heuristic: planner.Zero, Weight: 0})
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, []string{"Go A D"}, calls(res.Plan))
}

func TestSearch_MaxExpansions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	res, err := planner.Search(context.Background(), mustLoad(t, chainDomain), planner.Options{
		Weight:        1,
		MaxExpansions: 1,
		Logger:        zap.New(core),
	})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.True(t, res.Exhausted)
	assert.Equal(t, 1, res.Expanded)
	assert.Equal(t, 1, logs.FilterMessage("search budget exhausted").Len())
}

type countingObserver struct{ results []*planner.Result }

func (c *countingObserver) ObserveSearch(res *planner.Result) { c.results = append(c.results, res) }

func TestSearch_ReportsToObserver(t *testing.T) {
	obs := &countingObserver{}
	res, err := planner.Search(context.Background(), mustLoad(t, moveDomain), planner.Options{Weight: 1, Metrics: obs})
	require.NoError(t, err)
	require.Len(t, obs.results, 1)
	assert.Same(t, res, obs.results[0])
}

func TestSearch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := planner.Search(ctx, mustLoad(t, chainDomain), planner.Options{Weight: 1})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.True(t, res.Exhausted)
	assert.Equal(t, 0, res.Expanded)
}

func TestSearch_RejectsBadOptions(t *testing.T) {
	w := mustLoad(t, moveDomain)
	for name, opts := range map[string]planner.Options{
		"negative weight": {Weight: -1},
		"nan weight":      {Weight: math.NaN()},
		"inf weight":      {Weight: math.Inf(1)},
		"negative budget": {Weight: 1, MaxExpansions: -1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := planner.Search(context.Background(), w, opts)
			assert.Error(t, err)
		})
	}
	_, err := planner.Search(context.Background(), nil, planner.Options{})
	assert.Error(t, err)
}

func TestSearch_ScriptHeuristic(t *testing.T) {
	caller := &recordingCaller{ret: lua.LNumber(1)}
	res, err := planner.Search(context.Background(), mustLoad(t, chainDomain), planner.Options{
		Heuristic: planner.ScriptHeuristic(caller, "checkers", "estimate"),
		Weight:    1,
	})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "estimate", caller.hook)
}

func TestProperty_ChainPlansAreOptimalUnderEveryHeuristic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(rt, "rooms")
		name := rapid.SampledFrom(planner.HeuristicNames()).Draw(rt, "heuristic")
		weight := rapid.SampledFrom([]float64{0, 0.5, 1, 3}).Draw(rt, "weight")

		rooms := make([]string, n+1)
		for i := range rooms {
			rooms[i] = string(rune('A' + i))
		}
		text := "constants:"
		for _, r := range rooms {
			text += " " + r
		}
		text += "\nGo x y\npre: At(x) Link(x, y)\npreneg:\ndel: At(x)\nadd: At(y)\ninitial: At(A)"
		for i := 0; i < n; i++ {
			text += " Link(" + rooms[i] + ", " + rooms[i+1] + ")"
		}
		text += "\ngoal: At(" + rooms[n] + ")\n"

		w, err := planner.Load(text)
		if err != nil {
			rt.Fatalf("load: %v", err)
		}
		h, _ := planner.HeuristicByName(name)
		res, err := planner.Search(context.Background(), w, planner.Options{Heuristic: h, Weight: weight})
		if err != nil {
			rt.Fatalf("search: %v", err)
		}
		if !res.Found || res.Cost() != n || len(res.Plan) != n {
			rt.Fatalf("found=%v cost=%d plan=%d, want cost %d", res.Found, res.Cost(), len(res.Plan), n)
		}
	})
}

func TestNewReport(t *testing.T) {
	res, err := planner.Search(context.Background(), mustLoad(t, chainDomain), planner.Options{Heuristic: planner.LiteralCount, Weight: 1})
	require.NoError(t, err)

	rep := planner.NewReport(res, "literal_count", 1)
	assert.True(t, rep.Found)
	assert.Equal(t, 3, rep.Cost)
	want := []planner.Step{
		{Action: "Go", Args: []string{"A", "B"}},
		{Action: "Go", Args: []string{"B", "C"}},
		{Action: "Go", Args: []string{"C", "D"}},
	}
	if diff := cmp.Diff(want, rep.Steps); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}

	out, err := yaml.Marshal(rep)
	require.NoError(t, err)
	assert.Contains(t, string(out), "heuristic: literal_count")
	assert.Contains(t, string(out), "cost: 3")

	missing, err := planner.Search(context.Background(), mustLoad(t, unreachableDomain), planner.Options{Weight: 1})
	require.NoError(t, err)
	empty := planner.NewReport(missing, "zero", 1)
	assert.Equal(t, -1, empty.Cost)
	assert.NotNil(t, empty.Steps)
	assert.Empty(t, empty.Steps)
}

// diamondDomain reaches D through either B or C in two steps.
const diamondDomain = `predicates: At(x) Link(x, y)
constants: A B C D
Go x y
pre: At(x) Link(x, y)
preneg:
del: At(x)
add: At(y)
initial: At(A) Link(A, B) Link(A, C) Link(B, D) Link(C, D)
goal: At(D)
`

func TestSearch_EqualPrioritiesPreferLatestGenerated(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	res, err := planner.Search(context.Background(), mustLoad(t, diamondDomain), planner.Options{
		Heuristic: planner.Zero,
		Weight:    1,
		Logger:    zap.New(core),
	})
	require.NoError(t, err)
	require.True(t, res.Found)

	// C is generated after B, so it is expanded first; B's route to D is
	// generated last and wins the tie at cost 2.
	assert.Equal(t, []string{"Go A B", "Go B D"}, calls(res.Plan))
	assert.Equal(t, 4, res.Generated)
	assert.Equal(t, 3, res.Expanded)

	var costs []int64
	for _, e := range logs.FilterMessage("state expanded").All() {
		costs = append(costs, e.ContextMap()["cost"].(int64))
	}
	assert.Equal(t, []int64{0, 1, 1}, costs)
}

func TestProperty_UniformCostExpandsInCostOrder(t *testing.T) {
	rooms := []string{"A", "B", "C", "D", "E"}
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, len(rooms)).Draw(rt, "rooms")
		weight := rapid.SampledFrom([]float64{0, 1, 4}).Draw(rt, "weight")

		text := "constants:"
		for _, r := range rooms[:n] {
			text += " " + r
		}
		text += "\nGo x y\npre: At(x) Link(x, y)\npreneg:\ndel: At(x)\nadd: At(y)\ninitial: At(A)"
		for _, from := range rooms[:n] {
			for _, to := range rooms[:n] {
				if from != to && rapid.Bool().Draw(rt, "link "+from+to) {
					text += " Link(" + from + ", " + to + ")"
				}
			}
		}
		text += "\ngoal: At(" + rooms[n-1] + ")\n"

		core, logs := observer.New(zapcore.DebugLevel)
		w, err := planner.Load(text)
		if err != nil {
			rt.Fatalf("load: %v", err)
		}
		res, err := planner.Search(context.Background(), w, planner.Options{Heuristic: planner.Zero, Weight: weight, Logger: zap.New(core)})
		if err != nil {
			rt.Fatalf("search: %v", err)
		}

		expanded := logs.FilterMessage("state expanded").All()
		if len(expanded) != res.Expanded {
			rt.Fatalf("%d expansion entries, want %d", len(expanded), res.Expanded)
		}
		last := int64(-1)
		for i, e := range expanded {
			cost := e.ContextMap()["cost"].(int64)
			if cost < last {
				rt.Fatalf("expansion %d has cost %d after cost %d", i, cost, last)
			}
			last = cost
		}
		if res.Found && res.Cost() < int(last) {
			rt.Fatalf("plan cost %d below an expanded cost %d", res.Cost(), last)
		}
	})
}
