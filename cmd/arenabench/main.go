// Command arenabench compares bump-arena allocation with the Go heap.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
	"golang.org/x/text/language"

	"github.com/pavanmanishd/bumparena/internal/bench"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		slog.Error("arenabench failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "arenabench",
		Usage: "time bump-arena allocation against the Go heap",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
			&cli.IntFlag{Name: "allocations", Aliases: []string{"n"}, Usage: "allocations per scenario (per worker when concurrent)"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "goroutines sharing the concurrent arena"},
			&cli.IntFlag{Name: "iterations", Aliases: []string{"i"}, Usage: "allocate/reset cycles per scenario"},
			&cli.IntFlag{Name: "stress-capacity", Usage: "arena size in bytes for the run-until-exhausted scenarios"},
			&cli.StringFlag{Name: "scenarios", Aliases: []string{"s"}, Usage: "comma-separated list of u8, u64, large, or all"},
			&cli.StringFlag{Name: "backing", Usage: "arena buffer backing: heap or mmap"},
			&cli.BoolFlag{Name: "concurrent", Usage: "also run the shared-arena scenarios"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	cfg, err := LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, &cfg)

	benchCfg, scenarios, level, err := cfg.Validate()
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
	h := bench.New(benchCfg, log)

	var rep bench.Report
	for _, s := range scenarios {
		r, err := h.Run(c.Context, s)
		if err != nil {
			return err
		}
		rep.Results = append(rep.Results, r)
	}

	if cfg.Concurrent {
		for _, s := range scenarios {
			r, err := h.RunConcurrent(c.Context, s)
			if err != nil {
				return err
			}
			rep.Concurrent = append(rep.Concurrent, r)
		}
	}

	for _, s := range scenarios {
		r, err := h.RunResetCycles(c.Context, s)
		if err != nil {
			return err
		}
		rep.Cycles = append(rep.Cycles, r)
	}

	for _, s := range scenarios {
		r, err := h.RunUntilExhausted(c.Context, s)
		if err != nil {
			return err
		}
		rep.Stress = append(rep.Stress, r)
	}
	return bench.Render(c.App.Writer, language.English, rep)
}

func applyFlags(c *cli.Context, cfg *Config) {
	if c.IsSet("allocations") {
		cfg.Allocations = c.Int("allocations")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("iterations") {
		cfg.Iterations = c.Int("iterations")
	}
	if c.IsSet("stress-capacity") {
		cfg.StressCapacity = c.Int("stress-capacity")
	}
	if c.IsSet("scenarios") {
		cfg.Scenarios = c.String("scenarios")
	}
	if c.IsSet("backing") {
		cfg.Backing = c.String("backing")
	}
	if c.IsSet("concurrent") {
		cfg.Concurrent = c.Bool("concurrent")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
}
