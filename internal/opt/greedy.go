package opt

import (
	"math"
	"time"
)

// Greedy builds routes by always driving to the nearest unvisited stop. It
// ignores demand, capacity and the distance ceiling, and never fails: stops
// left over once every vehicle has reached its cap are reported in
// Solution.Dropped.
type Greedy struct {
	// MaxStopsPerRoute is a soft cap per vehicle. Zero means ceil((n-1)/V)+2.
	MaxStopsPerRoute int
}

func (Greedy) Name() string { return "nearest_neighbor" }

func (g Greedy) Solve(p *Problem) (*Solution, error) {
	start := time.Now()
	stops := p.Stops()
	limit := g.MaxStopsPerRoute
	if limit <= 0 {
		limit = (len(stops)+p.vehicles-1)/p.vehicles + 2
	}
	visited := make([]bool, p.Size())
	visited[p.depot] = true
	remaining := len(stops)
	routes := make([][]int, p.vehicles)
	for v := 0; v < p.vehicles && remaining > 0; v++ {
		cur := p.depot
		for len(routes[v]) < limit && remaining > 0 {
			next, best := -1, math.Inf(1)
			// ascending scan with strict comparison: lowest index wins ties
			for _, s := range stops {
				if visited[s] {
					continue
				}
				if d := p.matrix[cur][s]; d < best {
					next, best = s, d
				}
			}
			routes[v] = append(routes[v], next)
			visited[next] = true
			remaining--
			cur = next
		}
	}
	sol := newSolution(p, routes, g.Name())
	for _, s := range stops {
		if !visited[s] {
			sol.Dropped = append(sol.Dropped, s)
		}
	}
	for _, d := range sol.RouteDistances {
		sol.Objective += d
	}
	sol.SolveTime = time.Since(start)
	sol.Stats = Stats{InitialCost: sol.Objective, BestCost: sol.Objective}
	return sol, nil
}
