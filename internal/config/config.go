// Package config provides Viper-based configuration loading for the planner
// tools and the checkers game.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. CHECKERS_PLANNER_WEIGHT.
const EnvPrefix = "CHECKERS"

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Enabled turns on the planning episode log.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// PlannerConfig holds search settings.
type PlannerConfig struct {
	// Heuristic is a built-in heuristic name or alias, or "lua:<function>".
	Heuristic string `mapstructure:"heuristic"`
	// Weight scales the heuristic term; 0 is uniform-cost search.
	Weight float64 `mapstructure:"weight"`
	// MaxExpansions bounds each search; 0 is unbounded.
	MaxExpansions int `mapstructure:"max_expansions"`
	// Timeout bounds each search; 0 is unbounded.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ScriptingConfig holds Lua heuristic settings.
type ScriptingConfig struct {
	// HeuristicDir holds *.lua files defining script heuristics; empty
	// disables scripting.
	HeuristicDir string `mapstructure:"heuristic_dir"`
	// InstructionLimit caps the opcodes of one script call; 0 uses the
	// scripting default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// GameConfig holds checkers settings.
type GameConfig struct {
	BoardSize int `mapstructure:"board_size"`
	PieceRows int `mapstructure:"piece_rows"`
	// AIColor is the side the planner plays: "B" or "W".
	AIColor string `mapstructure:"ai_color"`
}

// PlanServerConfig holds planning service settings.
type PlanServerConfig struct {
	GRPCHost string `mapstructure:"grpc_host"`
	GRPCPort int    `mapstructure:"grpc_port"`
	// MetricsPort serves /metrics; 0 disables it.
	MetricsPort int `mapstructure:"metrics_port"`
}

// Addr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (p PlanServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", p.GRPCHost, p.GRPCPort)
}

// MetricsAddr returns the ":port" metrics listen address.
func (p PlanServerConfig) MetricsAddr() string {
	return fmt.Sprintf(":%d", p.MetricsPort)
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Planner    PlannerConfig    `mapstructure:"planner"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
	Game       GameConfig       `mapstructure:"game"`
	Database   DatabaseConfig   `mapstructure:"database"`
	PlanServer PlanServerConfig `mapstructure:"planserver"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateLogging(c.Logging),
		validatePlanner(c.Planner),
		validateScripting(c.Scripting),
		validateGame(c.Game),
		validatePlanServer(c.PlanServer),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func joined(errs []string) error {
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	return joined(errs)
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validatePlanner(p PlannerConfig) error {
	var errs []string
	if strings.TrimSpace(p.Heuristic) == "" {
		errs = append(errs, "planner.heuristic must not be empty")
	}
	if p.Weight < 0 {
		errs = append(errs, fmt.Sprintf("planner.weight must be >= 0, got %v", p.Weight))
	}
	if p.MaxExpansions < 0 {
		errs = append(errs, fmt.Sprintf("planner.max_expansions must be >= 0, got %d", p.MaxExpansions))
	}
	if p.Timeout < 0 {
		errs = append(errs, "planner.timeout must not be negative")
	}
	return joined(errs)
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.BoardSize < 3 {
		errs = append(errs, fmt.Sprintf("game.board_size must be >= 3, got %d", g.BoardSize))
	}
	if g.PieceRows < 1 {
		errs = append(errs, fmt.Sprintf("game.piece_rows must be >= 1, got %d", g.PieceRows))
	} else if 2*g.PieceRows >= g.BoardSize {
		errs = append(errs, fmt.Sprintf("game.piece_rows must leave an empty row between the sides, got %d rows on a %d board", g.PieceRows, g.BoardSize))
	}
	if c := strings.ToUpper(g.AIColor); c != "B" && c != "W" {
		errs = append(errs, fmt.Sprintf("game.ai_color must be one of [B, W], got %q", g.AIColor))
	}
	return joined(errs)
}

func validatePlanServer(p PlanServerConfig) error {
	var errs []string
	if p.GRPCHost == "" {
		errs = append(errs, "planserver.grpc_host must not be empty")
	}
	if p.GRPCPort < 1 || p.GRPCPort > 65535 {
		errs = append(errs, fmt.Sprintf("planserver.grpc_port must be 1-65535, got %d", p.GRPCPort))
	}
	if p.MetricsPort < 0 || p.MetricsPort > 65535 {
		errs = append(errs, fmt.Sprintf("planserver.metrics_port must be 0-65535, got %d", p.MetricsPort))
	}
	return joined(errs)
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result. An empty path uses defaults
// and the environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance carrying only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("planner.heuristic", "literal_count")
	v.SetDefault("planner.weight", 1.0)
	v.SetDefault("planner.max_expansions", 5000)
	v.SetDefault("planner.timeout", "10s")

	v.SetDefault("scripting.heuristic_dir", "")
	v.SetDefault("scripting.instruction_limit", 100000)

	v.SetDefault("game.board_size", 4)
	v.SetDefault("game.piece_rows", 1)
	v.SetDefault("game.ai_color", "W")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "checkers")
	v.SetDefault("database.password", "checkers")
	v.SetDefault("database.name", "checkers")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("planserver.grpc_host", "127.0.0.1")
	v.SetDefault("planserver.grpc_port", 50061)
	v.SetDefault("planserver.metrics_port", 9100)
}
