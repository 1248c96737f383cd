package planner

import (
	"fmt"
	"strings"
	"time"
)

// Plan is an ordered list of ActionCalls leading from the initial state to a
// goal state.
type Plan []ActionCall

// String renders one "<step> <call>" line per action, e.g. "0 Move A".
func (p Plan) String() string {
	var b strings.Builder
	for i, c := range p {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d %s", i, c)
	}
	return b.String()
}

// Step is the serializable form of an ActionCall.
type Step struct {
	Action string   `yaml:"action" json:"action"`
	Args   []string `yaml:"args,omitempty" json:"args,omitempty"`
}

// Report is the serializable summary of a search.
type Report struct {
	Found     bool    `yaml:"found" json:"found"`
	Exhausted bool    `yaml:"exhausted,omitempty" json:"exhausted,omitempty"`
	Heuristic string  `yaml:"heuristic,omitempty" json:"heuristic,omitempty"`
	Weight    float64 `yaml:"weight" json:"weight"`
	Cost      int     `yaml:"cost" json:"cost"`
	Generated int     `yaml:"generated" json:"generated"`
	Expanded  int     `yaml:"expanded" json:"expanded"`
	Elapsed   string  `yaml:"elapsed" json:"elapsed"`
	Steps     []Step  `yaml:"steps" json:"steps"`
}

// Steps converts p to its serializable form.
func (p Plan) Steps() []Step {
	steps := make([]Step, len(p))
	for i, c := range p {
		steps[i] = Step{Action: c.Name, Args: c.ArgNames()}
	}
	return steps
}

// NewReport summarises r for output.
//
// Postcondition: Steps is non-nil; Cost is -1 when no plan was found.
func NewReport(r *Result, heuristic string, weight float64) Report {
	return Report{
		Found:     r.Found,
		Exhausted: r.Exhausted,
		Heuristic: heuristic,
		Weight:    weight,
		Cost:      r.Cost(),
		Generated: r.Generated,
		Expanded:  r.Expanded,
		Elapsed:   r.Elapsed.Round(time.Microsecond).String(),
		Steps:     r.Plan.Steps(),
	}
}
