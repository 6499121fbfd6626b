package bench

import (
	"strings"

	"github.com/pkg/errors"
)

// Scenario is one allocation shape the harness measures.
type Scenario struct {
	Name  string
	Size  uintptr
	Align uintptr
}

// stride is the number of bytes one allocation consumes in a packed arena.
func (s Scenario) stride() uintptr {
	mask := s.Align - 1
	return (s.Size + mask) & ^mask
}

// Scenarios lists the built-in shapes: a byte, a word and a 1 KiB record
// of 128 words.
var Scenarios = []Scenario{
	{Name: "u8", Size: 1, Align: 1},
	{Name: "u64", Size: 8, Align: 8},
	{Name: "large", Size: 1024, Align: 8},
}

// ParseScenarios resolves a comma-separated list of scenario names.
// An empty list selects all scenarios.
func ParseScenarios(list string) ([]Scenario, error) {
	list = strings.TrimSpace(list)
	if list == "" || list == "all" {
		return Scenarios, nil
	}
	var out []Scenario
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		s, ok := lookup(name)
		if !ok {
			return nil, errors.Errorf("bench: unknown scenario %q", name)
		}
		out = append(out, s)
	}
	return out, nil
}

func lookup(name string) (Scenario, bool) {
	for _, s := range Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}
