package main

import (
	"log/slog"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	arena "github.com/pavanmanishd/bumparena"
	"github.com/pavanmanishd/bumparena/internal/bench"
)

const envVarPrefix = "ARENABENCH"

// Config is loaded from an optional YAML file, then the environment, then
// command-line flags, each layer overriding the previous one. Environment
// keys are ARENABENCH_ALLOCATIONS, ARENABENCH_LOG_LEVEL and so on.
type Config struct {
	Allocations    int    `split_words:"true" yaml:"allocations"`
	Workers        int    `split_words:"true" yaml:"workers"`
	Iterations     int    `split_words:"true" yaml:"iterations"`
	StressCapacity int    `split_words:"true" yaml:"stressCapacity"`
	Scenarios      string `split_words:"true" yaml:"scenarios"`
	Backing        string `split_words:"true" yaml:"backing"`
	Concurrent     bool   `split_words:"true" yaml:"concurrent"`
	LogLevel       string `split_words:"true" yaml:"logLevel"`
}

func defaultConfig() Config {
	return Config{
		Allocations:    10_000_000,
		Workers:        4,
		Iterations:     bench.DefaultIterations,
		StressCapacity: bench.DefaultStressCapacity,
		Scenarios:      "all",
		Backing:        arena.BackingHeap.String(),
		Concurrent:     true,
		LogLevel:       "info",
	}
}

// LoadConfig reads path (if non-empty, else $ARENABENCH_CONFIG_FILE) and
// overlays ARENABENCH_* environment variables.
func LoadConfig(path string) (Config, error) {
	c := defaultConfig()
	if path == "" {
		path = os.Getenv(envVarPrefix + "_CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, errors.Wrap(err, "reading config file")
		}
		if err := yaml.UnmarshalStrict(data, &c); err != nil {
			return c, errors.Wrap(err, "unmarshaling config file")
		}
	}
	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return c, errors.Wrap(err, "parsing environment variables")
	}
	return c, nil
}

// Validate checks ranges and resolves names into harness settings.
func (c Config) Validate() (bench.Config, []bench.Scenario, slog.Level, error) {
	var level slog.Level
	if c.Allocations <= 0 {
		return bench.Config{}, nil, level, errors.Errorf("allocations must be positive, got %d", c.Allocations)
	}
	if c.Workers <= 0 {
		return bench.Config{}, nil, level, errors.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Iterations <= 0 {
		return bench.Config{}, nil, level, errors.Errorf("iterations must be positive, got %d", c.Iterations)
	}
	if c.StressCapacity <= 0 {
		return bench.Config{}, nil, level, errors.Errorf("stress capacity must be positive, got %d", c.StressCapacity)
	}
	backing, err := arena.ParseBacking(c.Backing)
	if err != nil {
		return bench.Config{}, nil, level, err
	}
	scenarios, err := bench.ParseScenarios(c.Scenarios)
	if err != nil {
		return bench.Config{}, nil, level, err
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return bench.Config{}, nil, level, errors.Wrapf(err, "log level %q", c.LogLevel)
	}
	bc := bench.Config{
		Allocations:    c.Allocations,
		Workers:        c.Workers,
		Iterations:     c.Iterations,
		StressCapacity: c.StressCapacity,
		Backing:        backing,
	}
	if err := bc.Check(scenarios); err != nil {
		return bench.Config{}, nil, level, errors.Wrap(err, "allocations too large")
	}
	return bc, scenarios, level, nil
}
