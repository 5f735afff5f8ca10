package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/voxelforge/tick"
)

// storeConfig selects and configures the gametime persistence backend.
type storeConfig struct {
	// Backend is one of "memory", "redis", or "postgres".
	Backend string `yaml:"backend"`

	RedisAddr      string `yaml:"redis_addr"`
	RedisKeyPrefix string `yaml:"redis_key_prefix"`

	PostgresDSN string `yaml:"postgres_dsn"`
	World       string `yaml:"world"`
}

// daemonConfig is the tickd configuration file schema.
type daemonConfig struct {
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`

	StepInterval    time.Duration `yaml:"step_interval"`
	MaxStepDelta    float64       `yaml:"max_step_delta"`
	SaveInterval    time.Duration `yaml:"save_interval"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Store storeConfig `yaml:"store"`
}

func defaultDaemonConfig() daemonConfig {
	base := tick.DefaultConfig()
	return daemonConfig{
		LogLevel:        "info",
		MetricsAddr:     ":9090",
		StepInterval:    base.StepInterval,
		MaxStepDelta:    base.MaxStepDelta,
		SaveInterval:    base.SaveInterval,
		ShutdownTimeout: base.ShutdownTimeout,
		Store: storeConfig{
			Backend:        "memory",
			RedisAddr:      "localhost:6379",
			RedisKeyPrefix: "tick",
			World:          "default",
		},
	}
}

// loadDaemonConfig reads the YAML config file, falling back to defaults
// when path is empty. Environment variables override file values for
// the credentials-bearing settings, so DSNs stay out of the file.
func loadDaemonConfig(path string) (daemonConfig, error) {
	cfg := defaultDaemonConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("TICKD_REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := os.Getenv("TICKD_POSTGRES_DSN"); v != "" {
		cfg.Store.PostgresDSN = v
	}

	return cfg, nil
}

// loopConfig converts the daemon configuration into a tick.Config.
func (c daemonConfig) loopConfig() tick.Config {
	return tick.Config{
		StepInterval:    c.StepInterval,
		MaxStepDelta:    c.MaxStepDelta,
		SaveInterval:    c.SaveInterval,
		ShutdownTimeout: c.ShutdownTimeout,
	}
}

func (c daemonConfig) slogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
