package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
)

// ErrNoPlan is returned by Result.Err when the search found no plan.
var ErrNoPlan = errors.New("planner: no plan found")

// Options configures a weighted A* search.
type Options struct {
	// Heuristic estimates remaining cost; nil means Zero.
	Heuristic Heuristic
	// Weight scales the heuristic term of the priority; must be >= 0.
	Weight float64
	// MaxExpansions bounds the number of expanded states; 0 is unbounded.
	MaxExpansions int
	// Logger receives search diagnostics; nil disables logging.
	Logger *zap.Logger
	// Metrics, when set, is told about every finished search.
	Metrics Observer
}

// Observer receives the Result of every finished search.
type Observer interface {
	ObserveSearch(res *Result)
}

// Result is the outcome of a search.
type Result struct {
	// Found is true when Goal satisfies the world's goal.
	Found bool
	Goal  *State
	Plan  Plan
	// Generated counts every successor state produced.
	Generated int
	// Expanded counts the states moved to the closed set.
	Expanded int
	// Exhausted is true when the budget or the context ended the search
	// before the open list emptied.
	Exhausted bool
	Elapsed   time.Duration
}

// Err returns nil for a found plan and ErrNoPlan otherwise.
func (r *Result) Err() error {
	if r.Found {
		return nil
	}
	return ErrNoPlan
}

// Cost returns the cost of the found plan, or -1.
func (r *Result) Cost() int {
	if !r.Found {
		return -1
	}
	return r.Goal.Cost()
}

type openEntry struct {
	state    *State
	priority float64
}

// Search runs weighted A* from w.Initial toward w.Goal.
//
// Each iteration pops the head of the open list and returns it if it satisfies
// the goal. Otherwise every successor not equal to a closed state is inserted
// at the front of the open list, the popped state is closed, and the open list
// is stably re-sorted by cost + weight*heuristic. Among equal priorities the
// most recently generated states therefore come first. Duplicates are only
// pruned against the closed list.
//
// Budget exhaustion and context cancellation end the search as an ordinary
// not-found Result with Exhausted set.
//
// Precondition: w must not be nil; opts.Weight must be finite and >= 0.
func Search(ctx context.Context, w *World, opts Options) (*Result, error) {
	if w == nil {
		return nil, errors.New("planner.Search: world must not be nil")
	}
	if opts.Weight < 0 || math.IsNaN(opts.Weight) || math.IsInf(opts.Weight, 0) {
		return nil, fmt.Errorf("planner.Search: weight must be finite and >= 0, got %v", opts.Weight)
	}
	if opts.MaxExpansions < 0 {
		return nil, fmt.Errorf("planner.Search: max expansions must be >= 0, got %d", opts.MaxExpansions)
	}
	h := opts.Heuristic
	if h == nil {
		h = Zero
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	start := time.Now()
	res := &Result{}
	priority := func(s *State) float64 {
		if opts.Weight == 0 {
			return float64(s.cost)
		}
		return float64(s.cost) + opts.Weight*h(w, s)
	}

	logger.Debug("search started",
		zap.Float64("weight", opts.Weight),
		zap.Int("max_expansions", opts.MaxExpansions),
		zap.Int("actions", len(w.Actions)),
		zap.Int("constants", len(w.Constants)),
	)

	hist := &History{}
	root := hist.Record(w.Initial)
	open := []openEntry{{state: root, priority: priority(root)}}
	closed := newClosedSet()

	for len(open) > 0 {
		if err := ctx.Err(); err != nil {
			res.Exhausted = true
			logger.Info("search cancelled", zap.Error(err), zap.Int("expanded", res.Expanded))
			break
		}

		head := open[0]
		cur := head.state
		open = open[1:]

		if cur.Satisfies(w.Goal) {
			res.Found = true
			res.Goal = cur
			res.Plan = hist.PlanTo(cur)
			break
		}

		if opts.MaxExpansions > 0 && res.Expanded >= opts.MaxExpansions {
			res.Exhausted = true
			logger.Info("search budget exhausted",
				zap.Int("max_expansions", opts.MaxExpansions),
				zap.Int("generated", res.Generated),
			)
			break
		}

		if ce := logger.Check(zap.DebugLevel, "state expanded"); ce != nil {
			ce.Write(
				zap.Int("cost", cur.cost),
				zap.Float64("priority", head.priority),
				zap.Int("open", len(open)),
			)
		}

		var children []*State
		for _, call := range w.Ground(cur) {
			child := w.byName[call.Name].Apply(cur, call, false)
			res.Generated++
			if !closed.Contains(child) {
				children = append(children, hist.adopt(child))
			}
		}

		// Inserting each child at the front in turn leaves them in reverse
		// generation order ahead of the existing entries.
		next := make([]openEntry, 0, len(children)+len(open))
		for i := len(children) - 1; i >= 0; i-- {
			next = append(next, openEntry{state: children[i], priority: priority(children[i])})
		}
		open = append(next, open...)

		closed.Add(cur)
		res.Expanded++

		sort.SliceStable(open, func(i, j int) bool {
			return open[i].priority < open[j].priority
		})
	}

	res.Elapsed = time.Since(start)
	logger.Debug("search finished",
		zap.Bool("found", res.Found),
		zap.Bool("exhausted", res.Exhausted),
		zap.Int("cost", res.Cost()),
		zap.Int("generated", res.Generated),
		zap.Int("expanded", res.Expanded),
		zap.Int("recorded", hist.Len()),
		zap.Duration("elapsed", res.Elapsed),
	)
	if opts.Metrics != nil {
		opts.Metrics.ObserveSearch(res)
	}
	return res, nil
}
