package opt

import "math"

const eps = 1e-7

// state is a complete feasible assignment during search: one stop list and
// its distance per vehicle.
type state struct {
	p      *Problem
	routes [][]int
	dist   []float64
}

func newState(b *builder) *state {
	st := &state{p: b.p, routes: make([][]int, len(b.routes)), dist: make([]float64, len(b.routes))}
	for v, r := range b.routes {
		st.routes[v] = append([]int(nil), r...)
		st.dist[v] = b.p.routeDistance(r)
	}
	return st
}

func (s *state) clone() *state {
	c := &state{p: s.p, routes: make([][]int, len(s.routes)), dist: append([]float64(nil), s.dist...)}
	for v, r := range s.routes {
		c.routes[v] = append([]int(nil), r...)
	}
	return c
}

func (s *state) cost() float64 { return objective(s.dist) }

// change replaces one vehicle's route.
type change struct {
	v     int
	stops []int
	dist  float64
}

// costWith returns the objective after applying ch.
func (s *state) costWith(ch []change) float64 {
	total, lo, hi := 0.0, math.Inf(1), math.Inf(-1)
	for v, d := range s.dist {
		for _, c := range ch {
			if c.v == v {
				d = c.dist
			}
		}
		total += d
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return total + SpanCoefficient*(hi-lo)
}

func (s *state) apply(ch []change) {
	for _, c := range ch {
		s.routes[c.v] = c.stops
		s.dist[c.v] = c.dist
	}
}

func (s *state) arcCount() int {
	n := 0
	for _, r := range s.routes {
		if len(r) > 0 {
			n += len(r) + 1
		}
	}
	return n
}

// arcs calls fn for every arc of a route, depot arcs included.
func (p *Problem) arcs(stops []int, fn func(i, j int)) {
	if len(stops) == 0 {
		return
	}
	prev := p.depot
	for _, s := range stops {
		fn(prev, s)
		prev = s
	}
	fn(prev, p.depot)
}

// scorer ranks a candidate set of changes; lower is better. A nil change set
// scores the current state.
type scorer func(st *state, ch []change) float64

func plainScore(st *state, ch []change) float64 { return st.costWith(ch) }

// admitter may veto a candidate. A nil admitter admits everything.
type admitter func(st *state, ch []change, score float64) bool

type move struct {
	changes []change
	score   float64
}

// evaluation keeps the best admitted candidate offered by a neighborhood scan.
type evaluation struct {
	st    *state
	score scorer
	admit admitter
	best  move
	found bool
}

func (e *evaluation) offer(ch ...change) {
	sc := e.score(e.st, ch)
	if e.found && sc >= e.best.score {
		return
	}
	if e.admit != nil && !e.admit(e.st, ch, sc) {
		return
	}
	owned := make([]change, len(ch))
	for i, c := range ch {
		owned[i] = change{v: c.v, stops: append([]int(nil), c.stops...), dist: c.dist}
	}
	e.best = move{changes: owned, score: sc}
	e.found = true
}
