// Package main provides the strips planner command:
//
//	strips [-weight W] [-heuristic H] [-format text|yaml|json] [file]
//
// The domain is read from file, or from stdin when no file is given.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/checkers/internal/config"
	"github.com/cory-johannsen/checkers/internal/observability"
	"github.com/cory-johannsen/checkers/internal/planner"
	"github.com/cory-johannsen/checkers/internal/scripting"
	"github.com/cory-johannsen/checkers/internal/storage/postgres"
)

// Exit codes.
const (
	exitFound  = 0
	exitNoPlan = 1
	exitError  = 2
)

const scriptNamespace = "strips"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("strips", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to configuration file; empty uses defaults and CHECKERS_* environment")
	weight := fs.Float64("weight", -1, "heuristic weight; negative uses planner.weight")
	heuristic := fs.String("heuristic", "", "heuristic name, alias, or lua:<function>; empty uses planner.heuristic")
	maxExp := fs.Int("max-expansions", -1, "expansion budget, 0 = unbounded; negative uses planner.max_expansions")
	scriptDir := fs.String("scripts", "", "directory of Lua heuristic scripts; empty uses scripting.heuristic_dir")
	format := fs.String("format", "text", "output format: text, yaml, or json")
	record := fs.Bool("record", false, "log the episode to PostgreSQL (requires database.enabled)")
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(stderr, "strips: at most one domain file may be given")
		return exitError
	}
	if *format != "text" && *format != "yaml" && *format != "json" {
		fmt.Fprintf(stderr, "strips: unknown format %q\n", *format)
		return exitError
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "strips: loading config: %v\n", err)
		return exitError
	}
	logger, err := observability.NewLogger(cfg.Logging, observability.ComponentStrips)
	if err != nil {
		fmt.Fprintf(stderr, "strips: initializing logger: %v\n", err)
		return exitError
	}
	defer func() { _ = logger.Sync() }()

	if *weight >= 0 {
		cfg.Planner.Weight = *weight
	}
	if *heuristic != "" {
		cfg.Planner.Heuristic = *heuristic
	}
	if *maxExp >= 0 {
		cfg.Planner.MaxExpansions = *maxExp
	}
	if *scriptDir != "" {
		cfg.Scripting.HeuristicDir = *scriptDir
	}

	domain, err := readDomain(fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "strips: %v\n", err)
		return exitError
	}

	world, err := planner.Load(domain)
	if err != nil {
		fmt.Fprintf(stderr, "strips: %v\n", err)
		return exitError
	}

	var caller planner.ScriptCaller
	if cfg.Scripting.HeuristicDir != "" {
		mgr := scripting.NewManager(logger)
		defer mgr.Close()
		if err := mgr.LoadShared(cfg.Scripting.HeuristicDir, cfg.Scripting.InstructionLimit); err != nil {
			fmt.Fprintf(stderr, "strips: loading scripts: %v\n", err)
			return exitError
		}
		caller = mgr
	}
	h, err := planner.ResolveHeuristic(cfg.Planner.Heuristic, caller, scriptNamespace)
	if err != nil {
		fmt.Fprintf(stderr, "strips: %v (built-in: %v)\n", err, planner.HeuristicNames())
		return exitError
	}

	ctx := context.Background()
	if cfg.Planner.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Planner.Timeout)
		defer cancel()
	}

	res, err := planner.Search(ctx, world, planner.Options{
		Heuristic:     h,
		Weight:        cfg.Planner.Weight,
		MaxExpansions: cfg.Planner.MaxExpansions,
		Logger:        logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "strips: %v\n", err)
		return exitError
	}

	if *record {
		if err := recordEpisode(cfg, domain, res, logger); err != nil {
			logger.Warn("episode not recorded", zap.Error(err))
		}
	}

	if err := writeResult(stdout, *format, cfg.Planner, res); err != nil {
		fmt.Fprintf(stderr, "strips: writing result: %v\n", err)
		return exitError
	}
	if !res.Found {
		return exitNoPlan
	}
	return exitFound
}

func readDomain(path string, stdin io.Reader) (string, error) {
	if path == "" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading domain: %w", err)
	}
	return string(b), nil
}

func writeResult(w io.Writer, format string, pc config.PlannerConfig, res *planner.Result) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(planner.NewReport(res, pc.Heuristic, pc.Weight)); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(planner.NewReport(res, pc.Heuristic, pc.Weight))
	}

	if !res.Found {
		_, err := fmt.Fprintln(w, "Solution could not be found.")
		return err
	}
	if len(res.Plan) > 0 {
		if _, err := fmt.Fprintln(w, res.Plan.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d nodes generated\n%d nodes expanded\n", res.Generated, res.Expanded)
	return err
}

func recordEpisode(cfg config.Config, domain string, res *planner.Result, logger *zap.Logger) error {
	if !cfg.Database.Enabled {
		return errors.New("database.enabled is false")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pool.Ready(ctx); err != nil {
		return err
	}

	ep, err := pool.Episodes().Record(ctx, postgres.NewEpisode(postgres.SourceCLI, domain, cfg.Planner.Heuristic, cfg.Planner.Weight, res))
	if err != nil {
		return err
	}
	logger.Info("episode recorded", zap.Stringer("id", ep.ID))
	return nil
}
