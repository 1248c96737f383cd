package planserver

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/checkers/internal/planner"
)

// Request is the typed form of a Plan request.
type Request struct {
	Domain    string
	Heuristic string
	// Weight is nil when the request leaves it to the server default.
	Weight *float64
	// MaxExpansions is nil when the request leaves it to the server default.
	MaxExpansions *int
}

// Response is the typed form of a Plan response.
type Response struct {
	Found     bool
	Exhausted bool
	Plan      []planner.Step
	Cost      int
	Generated int
	Expanded  int
}

// Struct encodes r as a request message.
func (r Request) Struct() (*structpb.Struct, error) {
	fields := map[string]any{
		"domain":    r.Domain,
		"heuristic": r.Heuristic,
	}
	if r.Weight != nil {
		fields["weight"] = *r.Weight
	}
	if r.MaxExpansions != nil {
		fields["max_expansions"] = *r.MaxExpansions
	}
	return structpb.NewStruct(fields)
}

// ParseRequest decodes a request message.
//
// Postcondition: returns an error naming the first malformed field.
func ParseRequest(s *structpb.Struct) (Request, error) {
	var req Request
	fields := s.GetFields()

	domain, ok := fields["domain"]
	if !ok {
		return Request{}, fmt.Errorf("field domain is required")
	}
	if _, isStr := domain.GetKind().(*structpb.Value_StringValue); !isStr {
		return Request{}, fmt.Errorf("field domain must be a string")
	}
	req.Domain = domain.GetStringValue()

	if v, ok := fields["heuristic"]; ok {
		if _, isStr := v.GetKind().(*structpb.Value_StringValue); !isStr {
			return Request{}, fmt.Errorf("field heuristic must be a string")
		}
		req.Heuristic = v.GetStringValue()
	}

	if v, ok := fields["weight"]; ok {
		w, err := number(v, "weight")
		if err != nil {
			return Request{}, err
		}
		if w < 0 {
			return Request{}, fmt.Errorf("field weight must be >= 0, got %v", w)
		}
		req.Weight = &w
	}

	if v, ok := fields["max_expansions"]; ok {
		n, err := number(v, "max_expansions")
		if err != nil {
			return Request{}, err
		}
		if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
			return Request{}, fmt.Errorf("field max_expansions must be a non-negative integer, got %v", n)
		}
		m := int(n)
		req.MaxExpansions = &m
	}
	return req, nil
}

func number(v *structpb.Value, name string) (float64, error) {
	if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
		return 0, fmt.Errorf("field %s must be a number", name)
	}
	n := v.GetNumberValue()
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("field %s must be finite", name)
	}
	return n, nil
}

// NewResponse summarises a search result.
func NewResponse(res *planner.Result) Response {
	return Response{
		Found:     res.Found,
		Exhausted: res.Exhausted,
		Plan:      res.Plan.Steps(),
		Cost:      res.Cost(),
		Generated: res.Generated,
		Expanded:  res.Expanded,
	}
}

// Struct encodes r as a response message.
func (r Response) Struct() (*structpb.Struct, error) {
	plan := make([]any, len(r.Plan))
	for i, step := range r.Plan {
		args := make([]any, len(step.Args))
		for j, a := range step.Args {
			args[j] = a
		}
		plan[i] = map[string]any{"name": step.Action, "args": args}
	}
	return structpb.NewStruct(map[string]any{
		"found":     r.Found,
		"exhausted": r.Exhausted,
		"plan":      plan,
		"cost":      r.Cost,
		"generated": r.Generated,
		"expanded":  r.Expanded,
	})
}

// ParseResponse decodes a response message.
func ParseResponse(s *structpb.Struct) (Response, error) {
	fields := s.GetFields()
	resp := Response{
		Found:     fields["found"].GetBoolValue(),
		Exhausted: fields["exhausted"].GetBoolValue(),
		Cost:      int(fields["cost"].GetNumberValue()),
		Generated: int(fields["generated"].GetNumberValue()),
		Expanded:  int(fields["expanded"].GetNumberValue()),
	}
	steps := fields["plan"].GetListValue().GetValues()
	resp.Plan = make([]planner.Step, 0, len(steps))
	for i, v := range steps {
		step := v.GetStructValue()
		if step == nil {
			return Response{}, fmt.Errorf("plan step %d is not an object", i)
		}
		name := step.GetFields()["name"].GetStringValue()
		if name == "" {
			return Response{}, fmt.Errorf("plan step %d has no name", i)
		}
		var args []string
		for _, a := range step.GetFields()["args"].GetListValue().GetValues() {
			args = append(args, a.GetStringValue())
		}
		resp.Plan = append(resp.Plan, planner.Step{Action: name, Args: args})
	}
	return resp, nil
}
