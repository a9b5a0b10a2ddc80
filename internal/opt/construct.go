package opt

import (
	"math"
	"math/rand"
	"sort"
)

// builder holds per-vehicle routes under construction along with their
// distance and load, so insertions can be priced without a full walk.
type builder struct {
	p      *Problem
	routes [][]int
	dist   []float64
	load   []int
}

func newBuilder(p *Problem) *builder {
	return &builder{
		p:      p,
		routes: make([][]int, p.vehicles),
		dist:   make([]float64, p.vehicles),
		load:   make([]int, p.vehicles),
	}
}

type insertion struct {
	v, pos int
	delta  float64
}

// cost of placing stop between positions pos-1 and pos of vehicle v's route
func (b *builder) insertDelta(v, pos, stop int) float64 {
	r := b.routes[v]
	prev, next := b.p.depot, b.p.depot
	if pos > 0 {
		prev = r[pos-1]
	}
	if pos < len(r) {
		next = r[pos]
	}
	m := b.p.matrix
	if len(r) == 0 {
		// An empty route costs nothing, whatever the depot's self arc.
		return m[prev][stop] + m[stop][next]
	}
	return m[prev][stop] + m[stop][next] - m[prev][next]
}

// candidate returns vehicle v's route with stop placed at pos, reusing buf.
func (b *builder) candidate(buf []int, v, pos, stop int) []int {
	r := b.routes[v]
	buf = append(buf[:0], r[:pos]...)
	buf = append(buf, stop)
	return append(buf, r[pos:]...)
}

// best returns the cheapest feasible insertion of stop. Ties go to the lowest
// vehicle, then the lowest position.
func (b *builder) best(stop int) (insertion, bool) {
	p := b.p
	found := insertion{v: -1, delta: math.Inf(1)}
	var buf []int
	for v := range b.routes {
		if p.demands != nil && b.load[v]+p.demands[stop] > p.capacities[v] {
			continue
		}
		for pos := 0; pos <= len(b.routes[v]); pos++ {
			delta := b.insertDelta(v, pos, stop)
			if delta >= found.delta {
				continue
			}
			if p.hasMaxDist && b.dist[v]+delta > p.maxDistance*(1+1e-9) {
				continue
			}
			buf = b.candidate(buf, v, pos, stop)
			if _, ok := p.walk(v, buf); !ok {
				continue
			}
			found = insertion{v: v, pos: pos, delta: delta}
		}
	}
	return found, found.v >= 0
}

func (b *builder) insert(in insertion, stop int) {
	r := b.routes[in.v]
	r = append(r, 0)
	copy(r[in.pos+1:], r[in.pos:])
	r[in.pos] = stop
	b.routes[in.v] = r
	b.dist[in.v] = b.p.routeDistance(r)
	b.load[in.v] += b.p.Demand(stop)
}

// appendStop extends vehicle v's route; callers have checked feasibility.
func (b *builder) appendStop(v, stop int) {
	b.routes[v] = append(b.routes[v], stop)
	b.dist[v] = b.p.routeDistance(b.routes[v])
	b.load[v] += b.p.Demand(stop)
}

// construct builds a first solution with strategy s. Stops no route could take
// are returned as unassigned. The strategy actually applied is returned too,
// since sweep needs coordinates and falls back without them.
func construct(p *Problem, s Strategy) (*builder, []int, Strategy) {
	switch s {
	case Savings:
		b, rest := constructSavings(p)
		return b, rest, s
	case Sweep:
		if p.coords == nil {
			b, rest := constructPathCheapestArc(p)
			return b, rest, PathCheapestArc
		}
		b, rest := constructSweep(p)
		return b, rest, s
	case Christofides:
		b, rest := constructChristofides(p)
		return b, rest, s
	case ParallelCheapestInsertion:
		b, rest := constructParallelInsertion(p, p.Stops())
		return b, rest, s
	case LocalCheapestInsertion:
		b, rest := constructLocalInsertion(p)
		return b, rest, s
	default:
		b, rest := constructPathCheapestArc(p)
		return b, rest, PathCheapestArc
	}
}

// constructPathCheapestArc grows one vehicle's path at a time, always taking
// the cheapest arc from the path end to a stop that keeps the route feasible.
func constructPathCheapestArc(p *Problem) (*builder, []int) {
	b := newBuilder(p)
	visited := make([]bool, p.Size())
	visited[p.depot] = true
	stops := p.Stops()
	for v := 0; v < p.vehicles; v++ {
		dims := p.dimensions(v)
		for {
			next, best := -1, math.Inf(1)
			for _, s := range stops {
				if visited[s] || p.matrix[dims.last][s] >= best {
					continue
				}
				probe := dims
				if probe.visit(s) && probe.close() {
					next, best = s, p.matrix[dims.last][s]
				}
			}
			if next < 0 {
				break
			}
			dims.visit(next)
			visited[next] = true
			b.appendStop(v, next)
		}
	}
	var rest []int
	for _, s := range stops {
		if !visited[s] {
			rest = append(rest, s)
		}
	}
	return b, rest
}

// constructParallelInsertion repeatedly commits the cheapest feasible
// insertion across all pending stops and all vehicles.
func constructParallelInsertion(p *Problem, pending []int) (*builder, []int) {
	b := newBuilder(p)
	return b, b.insertAll(pending)
}

// insertAll places pending stops by global cheapest insertion and returns the
// ones that fit nowhere.
func (b *builder) insertAll(pending []int) []int {
	pending = append([]int(nil), pending...)
	for len(pending) > 0 {
		bestIdx := -1
		var bestIns insertion
		for i, s := range pending {
			in, ok := b.best(s)
			if ok && (bestIdx < 0 || in.delta < bestIns.delta) {
				bestIdx, bestIns = i, in
			}
		}
		if bestIdx < 0 {
			break
		}
		b.insert(bestIns, pending[bestIdx])
		pending = append(pending[:bestIdx], pending[bestIdx+1:]...)
	}
	return pending
}

// constructLocalInsertion takes stops farthest-from-depot first and inserts
// each at its own cheapest feasible position.
func constructLocalInsertion(p *Problem) (*builder, []int) {
	stops := p.Stops()
	sort.SliceStable(stops, func(i, j int) bool {
		return p.matrix[p.depot][stops[i]] > p.matrix[p.depot][stops[j]]
	})
	b := newBuilder(p)
	return b, b.insertEach(stops)
}

// insertEach inserts stops in the given order and returns those that fit nowhere.
func (b *builder) insertEach(order []int) []int {
	var rest []int
	for _, s := range order {
		in, ok := b.best(s)
		if !ok {
			rest = append(rest, s)
			continue
		}
		b.insert(in, s)
	}
	return rest
}

// repair tries cheap alternatives for a construction that left stops behind:
// global insertion of the leftovers, then fresh constructions with every other
// strategy, then shuffled insertion orders. It returns nil when nothing fits.
func repair(p *Problem, b *builder, rest []int, rng *rand.Rand, attempts int, expired func() bool) *builder {
	if rest = b.insertAll(rest); len(rest) == 0 {
		return b
	}
	for _, s := range Strategies() {
		if expired() {
			return nil
		}
		alt, left, _ := construct(p, s)
		if left = alt.insertAll(left); len(left) == 0 {
			return alt
		}
	}
	stops := p.Stops()
	for i := 0; i < attempts && !expired(); i++ {
		rng.Shuffle(len(stops), func(a, c int) { stops[a], stops[c] = stops[c], stops[a] })
		alt := newBuilder(p)
		if left := alt.insertEach(stops); len(left) == 0 {
			return alt
		}
	}
	return nil
}
