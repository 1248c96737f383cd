// Package postgres persists planning episodes in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"

	"github.com/cory-johannsen/checkers/internal/config"
)

// ErrSchemaMissing is returned by Pool.Ready when the episode table has not
// been migrated.
var ErrSchemaMissing = errors.New("postgres: planning_episodes table missing; run cmd/migrate")

// Pool wraps a pgx connection pool with health-check and lifecycle methods.
type Pool struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPool creates a PostgreSQL connection pool from cfg. Query tracing is sent
// to logger: every statement at debug level when logger has debug enabled,
// otherwise only pgx warnings and errors.
//
// Precondition: cfg must contain valid database connection parameters;
// logger must be non-nil.
// Postcondition: Returns a connected Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	if logger == nil {
		panic("postgres.NewPool: logger must not be nil")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.Tracer = newTracer(logger.Named("pgx"))

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}

	return &Pool{pool: pool, logger: logger}, nil
}

// newTracer adapts logger to pgx's tracelog.
func newTracer(logger *zap.Logger) *tracelog.TraceLog {
	level := tracelog.LogLevelWarn
	if logger.Core().Enabled(zap.DebugLevel) {
		level = tracelog.LogLevelDebug
	}
	return &tracelog.TraceLog{
		LogLevel: level,
		Logger: tracelog.LoggerFunc(func(_ context.Context, lvl tracelog.LogLevel, msg string, data map[string]any) {
			fields := make([]zap.Field, 0, len(data))
			for k, v := range data {
				fields = append(fields, zap.Any(k, v))
			}
			switch lvl {
			case tracelog.LogLevelError:
				logger.Error(msg, fields...)
			case tracelog.LogLevelWarn:
				logger.Warn(msg, fields...)
			case tracelog.LogLevelInfo:
				logger.Info(msg, fields...)
			default:
				logger.Debug(msg, fields...)
			}
		}),
	}
}

// Health checks that the database is reachable within the given timeout.
//
// Precondition: The pool must not be closed.
// Postcondition: Returns nil if the database responds within the timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Ready reports whether the episode schema has been migrated.
//
// Postcondition: returns ErrSchemaMissing when planning_episodes does not
// exist, nil when it does.
func (p *Pool) Ready(ctx context.Context) error {
	var present bool
	if err := p.pool.QueryRow(ctx, `SELECT to_regclass('planning_episodes') IS NOT NULL`).Scan(&present); err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}
	if !present {
		return ErrSchemaMissing
	}
	return nil
}

// Episodes returns an EpisodeRepository backed by this pool.
func (p *Pool) Episodes() *EpisodeRepository {
	return NewEpisodeRepository(p.pool)
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.logger.Debug("closing database pool", zap.Int32("total_conns", p.pool.Stat().TotalConns()))
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for use by repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
