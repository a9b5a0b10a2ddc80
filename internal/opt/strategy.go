package opt

import (
	"fmt"
	"strings"
)

// Strategy selects how the search solver builds its first solution.
type Strategy int

const (
	PathCheapestArc Strategy = iota
	Savings
	Sweep
	Christofides
	ParallelCheapestInsertion
	LocalCheapestInsertion
)

var strategyNames = map[Strategy]string{
	PathCheapestArc:           "PATH_CHEAPEST_ARC",
	Savings:                   "SAVINGS",
	Sweep:                     "SWEEP",
	Christofides:              "CHRISTOFIDES",
	ParallelCheapestInsertion: "PARALLEL_CHEAPEST_INSERTION",
	LocalCheapestInsertion:    "LOCAL_CHEAPEST_INSERTION",
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Strategies lists every construction strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{PathCheapestArc, Savings, Sweep, Christofides, ParallelCheapestInsertion, LocalCheapestInsertion}
}

// ParseStrategy maps a name to a Strategy. Names are case-insensitive and may
// use '-' or spaces for '_'. Unknown names select PathCheapestArc.
func ParseStrategy(name string) Strategy {
	key := normalizeName(name)
	for s, n := range strategyNames {
		if n == key {
			return s
		}
	}
	return PathCheapestArc
}

// Metaheuristic selects the improvement phase of the search solver.
type Metaheuristic int

const (
	NoMetaheuristic Metaheuristic = iota
	GuidedLocalSearch
	SimulatedAnnealing
	TabuSearch
)

var metaheuristicNames = map[Metaheuristic]string{
	NoMetaheuristic:    "NONE",
	GuidedLocalSearch:  "GUIDED_LOCAL_SEARCH",
	SimulatedAnnealing: "SIMULATED_ANNEALING",
	TabuSearch:         "TABU_SEARCH",
}

func (m Metaheuristic) String() string {
	if n, ok := metaheuristicNames[m]; ok {
		return n
	}
	return fmt.Sprintf("Metaheuristic(%d)", int(m))
}

// ParseMetaheuristic maps a name to a Metaheuristic. An empty name is NONE.
func ParseMetaheuristic(name string) (Metaheuristic, error) {
	key := normalizeName(name)
	switch key {
	case "", "NONE":
		return NoMetaheuristic, nil
	case "GLS":
		return GuidedLocalSearch, nil
	case "SA":
		return SimulatedAnnealing, nil
	case "TABU", "GENERIC_TABU_SEARCH":
		return TabuSearch, nil
	}
	for m, n := range metaheuristicNames {
		if n == key {
			return m, nil
		}
	}
	return NoMetaheuristic, fmt.Errorf("unknown local search metaheuristic %q", name)
}

func normalizeName(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}
