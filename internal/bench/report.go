package bench

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report collects the results of one arenabench invocation.
type Report struct {
	Results    []Result
	Concurrent []ConcurrentResult
	Cycles     []CycleResult
	Stress     []StressResult
}

// Render writes a human-readable report with locale-grouped counts.
func Render(w io.Writer, lang language.Tag, rep Report) error {
	p := message.NewPrinter(lang)
	for _, r := range rep.Results {
		if _, err := p.Fprintf(w, "%s\n", r.Scenario); err != nil {
			return err
		}
		if _, err := p.Fprintf(w, "  Bump Allocator:     allocated %d in %v\n", r.Count, r.Arena); err != nil {
			return err
		}
		if _, err := p.Fprintf(w, "  Standard Allocator: allocated %d in %v\n", r.Count, r.Heap); err != nil {
			return err
		}
		if _, err := p.Fprintf(w, "  speedup: %.2fx\n", r.Speedup()); err != nil {
			return err
		}
	}
	for _, r := range rep.Concurrent {
		if _, err := p.Fprintf(w, "%s (concurrent)\n  %d workers x %d allocations: %d distinct offsets in %v\n",
			r.Scenario, r.Workers, r.PerWork, r.Distinct, r.Elapsed); err != nil {
			return err
		}
	}
	for _, r := range rep.Cycles {
		if _, err := p.Fprintf(w, "%s (reset cycles)\n", r.Scenario); err != nil {
			return err
		}
		for i, d := range r.Iterations {
			if _, err := p.Fprintf(w, "  iteration %d: allocated %d in %v\n", i+1, r.Count, d); err != nil {
				return err
			}
		}
		if _, err := p.Fprintf(w, "  total for %d iterations: %v\n", len(r.Iterations), r.Total); err != nil {
			return err
		}
	}
	for _, r := range rep.Stress {
		if _, err := p.Fprintf(w, "%s (stress)\n  %d allocations (%d of %d bytes) before out of memory in %v\n",
			r.Scenario, r.Count, r.Bytes, r.Capacity, r.Elapsed); err != nil {
			return err
		}
	}
	return nil
}
