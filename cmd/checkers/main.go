// Package main provides an interactive checkers game against the planner.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/checkers/internal/config"
	"github.com/cory-johannsen/checkers/internal/game/checkers"
	"github.com/cory-johannsen/checkers/internal/game/match"
	"github.com/cory-johannsen/checkers/internal/observability"
	"github.com/cory-johannsen/checkers/internal/planner"
	"github.com/cory-johannsen/checkers/internal/scripting"
	"github.com/cory-johannsen/checkers/internal/storage/postgres"
)

const scriptNamespace = "checkers"

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty uses defaults and CHECKERS_* environment")
	aiColor := flag.String("ai", "", "side the planner plays, B or W; empty uses game.ai_color")
	size := flag.Int("size", 0, "board size; 0 uses game.board_size")
	rows := flag.Int("rows", 0, "rows of pieces per side; 0 uses game.piece_rows")
	hints := flag.Bool("hints", true, "let the planner suggest moves on request")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *aiColor != "" {
		cfg.Game.AIColor = *aiColor
	}
	if *size > 0 {
		cfg.Game.BoardSize = *size
	}
	if *rows > 0 {
		cfg.Game.PieceRows = *rows
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, observability.ComponentCheckers)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var caller planner.ScriptCaller
	if cfg.Scripting.HeuristicDir != "" {
		mgr := scripting.NewManager(logger)
		defer mgr.Close()
		if err := mgr.LoadShared(cfg.Scripting.HeuristicDir, cfg.Scripting.InstructionLimit); err != nil {
			logger.Fatal("loading heuristic scripts", zap.Error(err))
		}
		caller = mgr
	}
	h, err := planner.ResolveHeuristic(cfg.Planner.Heuristic, caller, scriptNamespace)
	if err != nil {
		logger.Fatal("resolving heuristic", zap.Error(err))
	}

	var onSearch func(checkers.SearchEvent)
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Ready(ctx); err != nil {
			logger.Fatal("checking database schema", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		onSearch = episodeRecorder(pool.Episodes(), cfg.Planner, logger)
	}

	aiSide, err := checkers.ParseColor(cfg.Game.AIColor)
	if err != nil {
		logger.Fatal("parsing ai color", zap.Error(err))
	}
	opts := planner.Options{
		Heuristic:     h,
		Weight:        cfg.Planner.Weight,
		MaxExpansions: cfg.Planner.MaxExpansions,
	}
	newPlayer := func(c checkers.Color, name string) *checkers.Player {
		p := checkers.NewPlayer(c, opts, logger.Named(name))
		p.Timeout = cfg.Planner.Timeout
		p.OnSearch = onSearch
		return p
	}

	ai := newPlayer(aiSide, "ai")
	var hinter *checkers.Player
	if *hints {
		hinter = newPlayer(aiSide.Opponent(), "hint")
	}

	board := checkers.NewBoard(cfg.Game.BoardSize, cfg.Game.PieceRows)
	m := match.New(board, ai, hinter, logger)
	outcome, err := m.Run(ctx, os.Stdin, os.Stdout)
	if err != nil && ctx.Err() == nil {
		logger.Fatal("match ended with error", zap.Error(err))
	}
	logger.Info("match finished",
		zap.Bool("over", outcome.Over),
		zap.Bool("quit", outcome.Quit),
		zap.Int("moves", outcome.Moves),
	)
	if outcome.Over {
		fmt.Fprintf(os.Stdout, "Game over after %d moves.\n", outcome.Moves)
	}
}

func episodeRecorder(repo *postgres.EpisodeRepository, pc config.PlannerConfig, logger *zap.Logger) func(checkers.SearchEvent) {
	return func(ev checkers.SearchEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ep := postgres.NewEpisode(postgres.SourceCheckers, ev.Domain, pc.Heuristic, pc.Weight, ev.Result)
		if _, err := repo.Record(ctx, ep); err != nil {
			logger.Warn("recording episode",
				zap.String("kind", ev.Kind),
				zap.String("goal", ev.Goal),
				zap.Error(err),
			)
		}
	}
}
