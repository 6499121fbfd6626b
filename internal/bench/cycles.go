package bench

import (
	"context"
	"time"

	"github.com/pkg/errors"

	arena "github.com/pavanmanishd/bumparena"
)

// CycleResult is the timing of repeated fill-then-reset passes over one arena.
type CycleResult struct {
	Scenario   string
	Count      int             // allocations per iteration
	Iterations []time.Duration // one entry per fill
	Total      time.Duration
}

// StressResult is the outcome of allocating until the arena is exhausted.
type StressResult struct {
	Scenario string
	Capacity int
	Count    int // successful allocations before the first failure
	Bytes    int // cursor position at exhaustion
	Elapsed  time.Duration
}

// RunResetCycles fills one arena with cfg.Allocations regions of s's shape,
// resets it, and repeats cfg.Iterations times. Every fill after a Reset must
// start again at offset 0.
func (h *Harness) RunResetCycles(ctx context.Context, s Scenario) (CycleResult, error) {
	n := h.cfg.Allocations
	res := CycleResult{Scenario: s.Name, Count: n}
	h.log.Info("reset cycles started", "scenario", s.Name, "allocations", n, "iterations", h.cfg.Iterations)

	size, err := arenaSize(s, 2, n, int(s.Size))
	if err != nil {
		return res, err
	}
	a, err := arena.New(size, arena.WithBacking(h.cfg.Backing))
	if err != nil {
		return res, errors.Wrapf(err, "scenario %s", s.Name)
	}
	defer a.Release()

	total := time.Now()
	for iter := 0; iter < h.cfg.Iterations; iter++ {
		start := time.Now()
		for i := 0; i < n; i++ {
			if i%checkEvery == 0 {
				if err := ctx.Err(); err != nil {
					return res, err
				}
			}
			r, err := a.Allocate(s.Size, s.Align)
			if err != nil {
				return res, errors.Wrapf(err, "scenario %s: iteration %d allocation %d", s.Name, iter, i)
			}
			if i == 0 && r.Offset() != 0 {
				return res, errors.Errorf("scenario %s: iteration %d started at offset %d", s.Name, iter, r.Offset())
			}
			if b, _ := a.Bytes(r); len(b) > 0 {
				b[0] = byte(i)
			}
		}
		d := time.Since(start)
		res.Iterations = append(res.Iterations, d)
		h.log.Debug("iteration done", "scenario", s.Name, "iteration", iter+1, "elapsed", d)
		a.Reset()
	}
	res.Total = time.Since(total)

	h.log.Info("reset cycles finished", "scenario", s.Name, "total", res.Total)
	return res, nil
}

// stressProgress is how many allocations pass between progress logs.
const stressProgress = 100_000

// RunUntilExhausted allocates regions of s's shape from an arena of
// cfg.StressCapacity bytes until it reports ErrOutOfMemory.
func (h *Harness) RunUntilExhausted(ctx context.Context, s Scenario) (StressResult, error) {
	res := StressResult{Scenario: s.Name, Capacity: h.cfg.StressCapacity}
	h.log.Info("stress started", "scenario", s.Name, "capacity", res.Capacity)

	a, err := arena.New(res.Capacity, arena.WithBacking(h.cfg.Backing))
	if err != nil {
		return res, errors.Wrapf(err, "scenario %s", s.Name)
	}
	defer a.Release()

	start := time.Now()
	for {
		if res.Count%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		if res.Count%stressProgress == 0 && res.Count != 0 {
			h.log.Debug("stress progress", "scenario", s.Name, "allocations", res.Count)
		}
		r, err := a.Allocate(s.Size, s.Align)
		if errors.Is(err, arena.ErrOutOfMemory) {
			break
		}
		if err != nil {
			return res, errors.Wrapf(err, "scenario %s: allocation %d", s.Name, res.Count)
		}
		if b, _ := a.Bytes(r); len(b) > 0 {
			b[0] = byte(res.Count)
		}
		res.Count++
	}
	res.Elapsed = time.Since(start)
	res.Bytes = a.Len()

	h.log.Info("stress finished", "scenario", s.Name, "allocations", res.Count, "elapsed", res.Elapsed)
	return res, nil
}
