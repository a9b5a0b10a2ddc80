package opt

import (
	"math"
	"time"
)

// SpanCoefficient weighs the gap between the longest and shortest vehicle
// route in the search objective.
const SpanCoefficient = 100.0

// Route is an ordered list of location indices that starts and ends at the depot.
type Route []int

// Stops returns the route without its depot bookends.
func (r Route) Stops() []int {
	if len(r) < 2 {
		return nil
	}
	return r[1 : len(r)-1]
}

// Stats summarizes the work a solver did.
type Stats struct {
	Iterations    int
	Improvements  int
	AcceptedWorse int
	InitialCost   float64
	BestCost      float64
	Strategy      string
	LocalSearch   string
}

// Solution is the result of a successful solve. It is not modified after the
// solver returns it.
type Solution struct {
	Routes         []Route // non-empty routes only
	Vehicles       []int   // vehicle index serving Routes[i]
	Objective      float64
	RouteDistances []float64
	RouteLoads     []int // nil when capacity is not modeled
	Dropped        []int // stops left unassigned; only the greedy solver drops stops
	SolveTime      time.Duration
	Algorithm      string
	Stats          Stats

	problem *Problem
}

// Problem returns the instance the solution was built for.
func (s *Solution) Problem() *Problem { return s.problem }

// Solver is the contract shared by the greedy and search solvers.
type Solver interface {
	Name() string
	Solve(p *Problem) (*Solution, error)
}

// newSolution turns per-vehicle stop lists into a Solution.
func newSolution(p *Problem, routes [][]int, algorithm string) *Solution {
	sol := &Solution{Algorithm: algorithm, problem: p}
	if p.HasCapacity() {
		sol.RouteLoads = []int{}
	}
	for v, stops := range routes {
		if len(stops) == 0 {
			continue
		}
		r := make(Route, 0, len(stops)+2)
		r = append(r, p.depot)
		r = append(r, stops...)
		r = append(r, p.depot)
		sol.Routes = append(sol.Routes, r)
		sol.Vehicles = append(sol.Vehicles, v)
		sol.RouteDistances = append(sol.RouteDistances, p.routeDistance(stops))
		if p.HasCapacity() {
			sol.RouteLoads = append(sol.RouteLoads, p.routeLoad(stops))
		}
	}
	return sol
}

// objective is total arc cost plus the span penalty over all vehicles. Idle
// vehicles count as routes of length zero.
func objective(dists []float64) float64 {
	total, lo, hi := 0.0, math.Inf(1), math.Inf(-1)
	for _, d := range dists {
		total += d
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	if len(dists) == 0 {
		return 0
	}
	return total + SpanCoefficient*(hi-lo)
}
