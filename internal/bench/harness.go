// Package bench times bump-arena allocation against the Go heap.
package bench

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	arena "github.com/pavanmanishd/bumparena"
)

// ErrOverlap is returned when concurrent allocations produced the same
// offset twice.
var ErrOverlap = errors.New("bench: concurrent allocations overlapped")

// ErrSizeRange is returned when a run would need an arena larger than an
// int can describe.
var ErrSizeRange = errors.New("bench: arena size out of range")

// Default values applied by New for zero Config fields.
const (
	DefaultIterations     = 10
	DefaultStressCapacity = 10 << 20
)

// Config controls a harness run.
type Config struct {
	Allocations    int           // allocations per scenario, and per worker in concurrent runs
	Workers        int           // goroutines sharing one ConcurrentArena
	Iterations     int           // allocate/reset cycles in RunResetCycles
	StressCapacity int           // arena size in bytes for RunUntilExhausted
	Backing        arena.Backing // buffer backing for every arena the harness creates
}

// Check reports whether every arena the harness would build for scenarios
// has a size that fits in an int.
func (c Config) Check(scenarios []Scenario) error {
	workers := c.Workers
	if workers <= 0 {
		workers = 1
	}
	for _, s := range scenarios {
		if _, err := arenaSize(s, 2, c.Allocations, int(s.Size)); err != nil {
			return err
		}
		if _, err := arenaSize(s, workers, c.Allocations, int(s.stride())); err != nil {
			return err
		}
	}
	return nil
}

// arenaSize multiplies non-negative factors, failing with ErrSizeRange
// instead of wrapping.
func arenaSize(s Scenario, factors ...int) (int, error) {
	n := 1
	for _, f := range factors {
		if f < 0 || (f != 0 && n > math.MaxInt/f) {
			return 0, errors.Wrapf(ErrSizeRange, "scenario %s: %v", s.Name, factors)
		}
		n *= f
	}
	return n, nil
}

// Result is the timing of one sequential scenario.
type Result struct {
	Scenario string
	Count    int
	Arena    time.Duration
	Heap     time.Duration
}

// Speedup returns Heap / Arena, or 0 if the arena time is zero.
func (r Result) Speedup() float64 {
	if r.Arena <= 0 {
		return 0
	}
	return float64(r.Heap) / float64(r.Arena)
}

// ConcurrentResult is the outcome of a shared-arena run.
type ConcurrentResult struct {
	Scenario string
	Workers  int
	PerWork  int
	Distinct int
	Elapsed  time.Duration
}

// Harness drives allocate/reset cycles.
type Harness struct {
	cfg Config
	log *slog.Logger
}

// New returns a Harness. A nil logger discards output.
func New(cfg Config, log *slog.Logger) *Harness {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultIterations
	}
	if cfg.StressCapacity <= 0 {
		cfg.StressCapacity = DefaultStressCapacity
	}
	return &Harness{cfg: cfg, log: log}
}

// checkEvery is how many allocations run between context checks.
const checkEvery = 1 << 12

// Run allocates cfg.Allocations regions of s's shape from an arena sized at
// twice the payload, writing into each, then does the same with make().
func (h *Harness) Run(ctx context.Context, s Scenario) (Result, error) {
	n := h.cfg.Allocations
	res := Result{Scenario: s.Name, Count: n}
	h.log.Info("scenario started", "scenario", s.Name, "allocations", n, "backing", h.cfg.Backing)

	size, err := arenaSize(s, 2, n, int(s.Size))
	if err != nil {
		return res, err
	}
	a, err := arena.New(size, arena.WithBacking(h.cfg.Backing))
	if err != nil {
		return res, errors.Wrapf(err, "scenario %s", s.Name)
	}
	defer a.Release()

	kept := make([][]byte, 0, n)
	start := time.Now()
	for i := 0; i < n; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		b := a.AllocBytes(s.Size, s.Align)
		if b == nil {
			return res, errors.Wrapf(arena.ErrOutOfMemory, "scenario %s: allocation %d", s.Name, i)
		}
		b[0] = byte(i)
		kept = append(kept, b)
	}
	res.Arena = time.Since(start)
	h.log.Debug("arena phase done", "scenario", s.Name, "elapsed", res.Arena, "bytes", a.Len())

	kept = kept[:0]
	start = time.Now()
	for i := 0; i < n; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		b := make([]byte, s.Size)
		b[0] = byte(i)
		kept = append(kept, b)
	}
	res.Heap = time.Since(start)

	h.log.Info("scenario finished", "scenario", s.Name, "arena", res.Arena, "heap", res.Heap)
	return res, nil
}

// RunConcurrent has cfg.Workers goroutines each make cfg.Allocations
// allocations from one ConcurrentArena sized for exactly that many, and
// verifies that no offset was handed out twice.
func (h *Harness) RunConcurrent(ctx context.Context, s Scenario) (ConcurrentResult, error) {
	workers, per := h.cfg.Workers, h.cfg.Allocations
	res := ConcurrentResult{Scenario: s.Name, Workers: workers, PerWork: per}
	h.log.Info("concurrent scenario started", "scenario", s.Name, "workers", workers, "per_worker", per)

	size, err := arenaSize(s, workers, per, int(s.stride()))
	if err != nil {
		return res, err
	}
	c, err := arena.NewConcurrent(size, arena.WithBacking(h.cfg.Backing))
	if err != nil {
		return res, errors.Wrapf(err, "scenario %s", s.Name)
	}
	defer c.Release()

	offsets := make([][]uintptr, workers)
	g, gctx := errgroup.WithContext(ctx)
	start := time.Now()
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			own := make([]uintptr, 0, per)
			for k := 0; k < per; k++ {
				if k%checkEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				r, err := c.Allocate(s.Size, s.Align)
				if err != nil {
					return errors.Wrapf(err, "worker %d: allocation %d", w, k)
				}
				own = append(own, r.Offset())
			}
			offsets[w] = own
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	res.Elapsed = time.Since(start)

	seen := make(map[uintptr]struct{}, workers*per)
	for _, own := range offsets {
		for _, off := range own {
			if _, dup := seen[off]; dup {
				return res, errors.Wrapf(ErrOverlap, "offset %d", off)
			}
			seen[off] = struct{}{}
		}
	}
	res.Distinct = len(seen)

	h.log.Info("concurrent scenario finished", "scenario", s.Name, "elapsed", res.Elapsed, "distinct", res.Distinct)
	return res, nil
}
