package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/PinjariAbdul/smart-task-analyser/internal/analysis"
	"github.com/PinjariAbdul/smart-task-analyser/internal/priority"
)

// ErrInvalidConfig is wrapped by every error Load returns for a bad value.
var ErrInvalidConfig = errors.New("invalid config")

// AnalysisConfig holds the engine tunables.
type AnalysisConfig struct {
	MaxBatchSize    int              `mapstructure:"max_batch_size"`
	DefaultStrategy string           `mapstructure:"default_strategy"`
	Weights         priority.Weights `mapstructure:"weights"`
}

// SuggestConfig holds the top-N suggestion defaults.
type SuggestConfig struct {
	Limit    int    `mapstructure:"limit"`
	Strategy string `mapstructure:"strategy"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	BodyLimit int    `mapstructure:"body_limit"`
}

// TelemetryConfig selects where analysis events are recorded. An empty
// path disables telemetry.
type TelemetryConfig struct {
	Path string `mapstructure:"path"`
}

// Config holds all runtime configuration.
// Values are populated from .taskanalyser.yaml, TASKANALYSER_* env vars, and CLI flags.
type Config struct {
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Suggest   SuggestConfig   `mapstructure:"suggest"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Verbose   bool            `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags, and validates the result.
func Load() (Config, error) {
	defaults := analysis.DefaultOptions()
	viper.SetDefault("analysis.max_batch_size", defaults.MaxBatchSize)
	viper.SetDefault("analysis.default_strategy", defaults.DefaultStrategy.String())
	viper.SetDefault("analysis.weights.urgency", defaults.Weights.Urgency)
	viper.SetDefault("analysis.weights.importance", defaults.Weights.Importance)
	viper.SetDefault("analysis.weights.unblocks", defaults.Weights.Unblocks)
	viper.SetDefault("analysis.weights.effort", defaults.Weights.Effort)
	viper.SetDefault("suggest.limit", defaults.SuggestLimit)
	viper.SetDefault("suggest.strategy", defaults.SuggestStrategy.String())
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.body_limit", 4<<20)
	viper.SetDefault("telemetry.path", "")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := cfg.AnalysisOptions(); err != nil {
		return Config{}, err
	}
	if cfg.Server.BodyLimit <= 0 {
		return Config{}, fmt.Errorf("%w: server.body_limit must be > 0, got %d", ErrInvalidConfig, cfg.Server.BodyLimit)
	}
	return cfg, nil
}

// AnalysisOptions converts the analysis and suggest sections into engine options.
func (c Config) AnalysisOptions() (analysis.Options, error) {
	if c.Analysis.MaxBatchSize < 0 {
		return analysis.Options{}, fmt.Errorf("%w: analysis.max_batch_size must be >= 0, got %d",
			ErrInvalidConfig, c.Analysis.MaxBatchSize)
	}
	if c.Suggest.Limit < 1 {
		return analysis.Options{}, fmt.Errorf("%w: suggest.limit must be >= 1, got %d", ErrInvalidConfig, c.Suggest.Limit)
	}
	def, err := priority.ParseStrategy(c.Analysis.DefaultStrategy, priority.Balanced)
	if err != nil {
		return analysis.Options{}, fmt.Errorf("%w: analysis.default_strategy: %w", ErrInvalidConfig, err)
	}
	sug, err := priority.ParseStrategy(c.Suggest.Strategy, priority.Balanced)
	if err != nil {
		return analysis.Options{}, fmt.Errorf("%w: suggest.strategy: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Analysis.Weights.Normalize(); err != nil {
		return analysis.Options{}, fmt.Errorf("%w: analysis.weights: %w", ErrInvalidConfig, err)
	}

	return analysis.Options{
		MaxBatchSize:    c.Analysis.MaxBatchSize,
		DefaultStrategy: def,
		Weights:         c.Analysis.Weights,
		SuggestLimit:    c.Suggest.Limit,
		SuggestStrategy: sug,
	}, nil
}
