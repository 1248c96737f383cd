// Package main provides the planning server binary: the Planner gRPC service
// and a Prometheus /metrics endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/cory-johannsen/checkers/internal/config"
	"github.com/cory-johannsen/checkers/internal/observability"
	"github.com/cory-johannsen/checkers/internal/planserver"
	"github.com/cory-johannsen/checkers/internal/scripting"
	"github.com/cory-johannsen/checkers/internal/server"
	"github.com/cory-johannsen/checkers/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty uses defaults and CHECKERS_* environment")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, observability.ComponentPlanServer)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting plan server",
		zap.String("grpc_addr", cfg.PlanServer.Addr()),
		zap.String("heuristic", cfg.Planner.Heuristic),
		zap.Float64("weight", cfg.Planner.Weight),
	)

	metrics := observability.NewSearchMetrics()
	opts := []planserver.Option{planserver.WithMetrics(metrics)}

	if cfg.Scripting.HeuristicDir != "" {
		scriptMgr := scripting.NewManager(logger)
		defer scriptMgr.Close()
		if err := scriptMgr.LoadShared(cfg.Scripting.HeuristicDir, cfg.Scripting.InstructionLimit); err != nil {
			logger.Fatal("loading heuristic scripts", zap.Error(err))
		}
		logger.Info("heuristic scripts loaded", zap.String("dir", cfg.Scripting.HeuristicDir))
		opts = append(opts, planserver.WithScripts(scriptMgr))
	}

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
		opts = append(opts, planserver.WithEpisodes(pool.Episodes()))
	}

	svc := planserver.NewService(cfg.Planner, logger, opts...)
	grpcServer := grpc.NewServer()
	planserver.RegisterPlannerServer(grpcServer, svc)

	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", cfg.PlanServer.Addr())
			if err != nil {
				return err
			}
			logger.Info("grpc listening", zap.String("addr", lis.Addr().String()))
			return grpcServer.Serve(lis)
		},
		StopFn: func() {
			grpcServer.GracefulStop()
		},
	})

	if cfg.PlanServer.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer := &http.Server{
			Addr:              cfg.PlanServer.MetricsAddr(),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		lifecycle.Add("metrics", &server.FuncService{
			StartFn: func() error {
				logger.Info("metrics listening", zap.String("addr", metricsServer.Addr))
				if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			},
			StopFn: func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = metricsServer.Shutdown(shutdownCtx)
			},
		})
	}

	logger.Info("plan server initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("plan server stopped with error", zap.Error(err))
	}
}
