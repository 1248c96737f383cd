package planserver

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/checkers/internal/config"
	"github.com/cory-johannsen/checkers/internal/planner"
	"github.com/cory-johannsen/checkers/internal/planner/syntax"
	"github.com/cory-johannsen/checkers/internal/storage/postgres"
)

// ScriptNamespace is the scripting namespace queried by "lua:" heuristics.
const ScriptNamespace = "planner"

// EpisodeRecorder stores finished planning episodes.
type EpisodeRecorder interface {
	Record(ctx context.Context, e postgres.Episode) (postgres.Episode, error)
}

// Service implements PlannerServer.
type Service struct {
	defaults config.PlannerConfig
	logger   *zap.Logger
	scripts  planner.ScriptCaller
	metrics  planner.Observer
	episodes EpisodeRecorder
}

// Option configures a Service.
type Option func(*Service)

// WithScripts enables "lua:" heuristics.
func WithScripts(caller planner.ScriptCaller) Option {
	return func(s *Service) { s.scripts = caller }
}

// WithMetrics reports every search to obs.
func WithMetrics(obs planner.Observer) Option {
	return func(s *Service) { s.metrics = obs }
}

// WithEpisodes records every search to rec.
func WithEpisodes(rec EpisodeRecorder) Option {
	return func(s *Service) { s.episodes = rec }
}

// NewService creates a planning service whose requests fall back to defaults.
//
// Precondition: logger must be non-nil.
func NewService(defaults config.PlannerConfig, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		panic("planserver.NewService: logger must not be nil")
	}
	s := &Service{defaults: defaults, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan parses the request domain, searches it, and returns the plan.
//
// Postcondition: malformed requests, unparsable domains and unknown heuristics
// yield codes.InvalidArgument; a missing plan is a successful response with
// found=false.
func (s *Service) Plan(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := ParseRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	world, err := planner.Load(req.Domain)
	if err != nil {
		var perr *syntax.ParseError
		if errors.As(err, &perr) {
			return nil, status.Errorf(codes.InvalidArgument, "domain line %d: %s", perr.Line, perr.Reason)
		}
		return nil, status.Errorf(codes.InvalidArgument, "domain: %v", err)
	}

	name := req.Heuristic
	if name == "" {
		name = s.defaults.Heuristic
	}
	h, err := planner.ResolveHeuristic(name, s.scripts, ScriptNamespace)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	weight := s.defaults.Weight
	if req.Weight != nil {
		weight = *req.Weight
	}
	maxExp := s.defaults.MaxExpansions
	if req.MaxExpansions != nil {
		maxExp = *req.MaxExpansions
	}

	if s.defaults.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.defaults.Timeout)
		defer cancel()
	}

	res, err := planner.Search(ctx, world, planner.Options{
		Heuristic:     h,
		Weight:        weight,
		MaxExpansions: maxExp,
		Logger:        s.logger,
		Metrics:       s.metrics,
	})
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.logger.Info("plan request served",
		zap.String("heuristic", name),
		zap.Float64("weight", weight),
		zap.Bool("found", res.Found),
		zap.Int("expanded", res.Expanded),
		zap.Duration("elapsed", res.Elapsed),
	)
	s.record(ctx, req.Domain, name, weight, res)

	out, err := NewResponse(res).Struct()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, domain, heuristic string, weight float64, res *planner.Result) {
	if s.episodes == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	ep := postgres.NewEpisode(postgres.SourcePlanServer, domain, heuristic, weight, res)
	if _, err := s.episodes.Record(ctx, ep); err != nil {
		s.logger.Warn("recording episode", zap.Error(err))
	}
}
