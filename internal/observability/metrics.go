package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cory-johannsen/checkers/internal/planner"
)

// Search outcome label values.
const (
	OutcomeFound     = "found"
	OutcomeExhausted = "exhausted"
	OutcomeNoPlan    = "no_plan"
)

// SearchMetrics records planner searches on a private Prometheus registry.
// It implements planner.Observer.
type SearchMetrics struct {
	registry  *prometheus.Registry
	searches  *prometheus.CounterVec
	generated prometheus.Counter
	expanded  prometheus.Counter
	duration  *prometheus.HistogramVec
	planLen   prometheus.Histogram
}

// NewSearchMetrics builds and registers the search collectors along with the
// Go runtime and process collectors.
//
// Postcondition: Returns a SearchMetrics whose Registry has every collector registered.
func NewSearchMetrics() *SearchMetrics {
	m := &SearchMetrics{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "checkers",
			Subsystem: "planner",
			Name:      "searches_total",
			Help:      "Finished searches by outcome",
		}, []string{"outcome"}),
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "checkers",
			Subsystem: "planner",
			Name:      "nodes_generated_total",
			Help:      "Successor states generated across all searches",
		}),
		expanded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "checkers",
			Subsystem: "planner",
			Name:      "nodes_expanded_total",
			Help:      "States moved to the closed set across all searches",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "checkers",
			Subsystem: "planner",
			Name:      "search_duration_seconds",
			Help:      "Wall time of a search",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}, []string{"outcome"}),
		planLen: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "checkers",
			Subsystem: "planner",
			Name:      "plan_length",
			Help:      "Number of actions in found plans",
			Buckets:   prometheus.LinearBuckets(0, 1, 12),
		}),
	}
	m.registry.MustRegister(
		m.searches, m.generated, m.expanded, m.duration, m.planLen,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Outcome classifies a finished search.
func Outcome(res *planner.Result) string {
	switch {
	case res.Found:
		return OutcomeFound
	case res.Exhausted:
		return OutcomeExhausted
	default:
		return OutcomeNoPlan
	}
}

// ObserveSearch records res.
//
// Precondition: res must be non-nil.
func (m *SearchMetrics) ObserveSearch(res *planner.Result) {
	outcome := Outcome(res)
	m.searches.WithLabelValues(outcome).Inc()
	m.generated.Add(float64(res.Generated))
	m.expanded.Add(float64(res.Expanded))
	m.duration.WithLabelValues(outcome).Observe(res.Elapsed.Seconds())
	if res.Found {
		m.planLen.Observe(float64(len(res.Plan)))
	}
}

// Registry returns the registry holding the search collectors.
func (m *SearchMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *SearchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
