package opt

import "math"

// dimensions accumulates load and distance along one vehicle's route, starting
// at zero at the depot. Every extension is checked against the vehicle limits,
// so a route that passes has every prefix within them.
type dimensions struct {
	p    *Problem
	v    int
	last int
	load int
	dist float64
}

func (p *Problem) dimensions(v int) dimensions {
	return dimensions{p: p, v: v, last: p.depot}
}

// visit extends the route to stop and reports whether both dimensions still hold.
func (d *dimensions) visit(stop int) bool {
	d.dist += d.p.matrix[d.last][stop]
	d.last = stop
	if d.p.demands != nil {
		d.load += d.p.demands[stop]
		if d.load > d.p.capacities[d.v] {
			return false
		}
	}
	return !d.p.hasMaxDist || d.dist <= d.p.maxDistance
}

// close adds the arc back to the depot.
func (d *dimensions) close() bool {
	d.dist += d.p.matrix[d.last][d.p.depot]
	d.last = d.p.depot
	return !d.p.hasMaxDist || d.dist <= d.p.maxDistance
}

// walk checks a full route for vehicle v and returns its distance.
func (p *Problem) walk(v int, stops []int) (float64, bool) {
	if len(stops) == 0 {
		return 0, true
	}
	d := p.dimensions(v)
	for _, s := range stops {
		if !d.visit(s) {
			return d.dist, false
		}
	}
	ok := d.close()
	return d.dist, ok
}

// routeDistance sums the arcs depot -> stops -> depot.
func (p *Problem) routeDistance(stops []int) float64 {
	if len(stops) == 0 {
		return 0
	}
	total := 0.0
	prev := p.depot
	for _, s := range stops {
		total += p.matrix[prev][s]
		prev = s
	}
	return total + p.matrix[prev][p.depot]
}

func (p *Problem) routeLoad(stops []int) int {
	if p.demands == nil {
		return 0
	}
	load := 0
	for _, s := range stops {
		load += p.demands[s]
	}
	return load
}

// servable reports whether stop fits alone on vehicle v.
func (p *Problem) servable(v, stop int) bool {
	_, ok := p.walk(v, []int{stop})
	return ok
}

// largestCapacity is the most load any single vehicle can carry.
func (p *Problem) largestCapacity() int {
	widest := 0
	for _, c := range p.capacities {
		if c > widest {
			widest = c
		}
	}
	return widest
}

// depotPaths returns the cheapest cost of reaching every location from the
// depot and of returning from it, chaining arcs through other locations. On a
// matrix without the triangle inequality these can undercut the direct arcs.
func (p *Problem) depotPaths() (out, in []float64) {
	n := len(p.matrix)
	out = shortestPaths(n, p.depot, func(i, j int) float64 { return p.matrix[i][j] })
	in = shortestPaths(n, p.depot, func(i, j int) float64 { return p.matrix[j][i] })
	return out, in
}

// shortestPaths is dense Dijkstra from src over non-negative arc costs.
func shortestPaths(n, src int, arc func(i, j int) float64) []float64 {
	dist := make([]float64, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[src] = 0
	for range n {
		u := -1
		for i := 0; i < n; i++ {
			if !done[i] && (u < 0 || dist[i] < dist[u]) {
				u = i
			}
		}
		if u < 0 || math.IsInf(dist[u], 1) {
			break
		}
		done[u] = true
		for j := 0; j < n; j++ {
			if !done[j] && j != u {
				if d := dist[u] + arc(u, j); d < dist[j] {
					dist[j] = d
				}
			}
		}
	}
	return dist
}
