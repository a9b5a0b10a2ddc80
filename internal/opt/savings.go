package opt

import "sort"

type saving struct {
	i, j  int
	value float64
}

// constructSavings is the Clarke-Wright savings heuristic. Every stop starts
// on its own route; routes are merged end-to-end in order of decreasing
// saving d(i,depot)+d(depot,j)-d(i,j) while the merged route stays feasible
// for the largest vehicle. Merged routes are then handed to vehicles,
// heaviest route first.
func constructSavings(p *Problem) (*builder, []int) {
	probe := widestVehicle(p)
	n := p.Size()
	chains := make([][]int, n) // chain id is the id of its first member
	owner := make([]int, n)
	var rest []int
	var members []int
	for _, s := range p.Stops() {
		if !p.servable(probe, s) {
			rest = append(rest, s)
			owner[s] = -1
			continue
		}
		chains[s] = []int{s}
		owner[s] = s
		members = append(members, s)
	}

	m, d := p.matrix, p.depot
	var list []saving
	for a := 0; a < len(members); a++ {
		for c := a + 1; c < len(members); c++ {
			i, j := members[a], members[c]
			if v := m[i][d] + m[d][j] - m[i][j]; v > 0 {
				list = append(list, saving{i: i, j: j, value: v})
			}
		}
	}
	sort.SliceStable(list, func(x, y int) bool { return list[x].value > list[y].value })

	var buf []int
	for _, sv := range list {
		ca, cc := owner[sv.i], owner[sv.j]
		if ca == cc {
			continue
		}
		A, C := chains[ca], chains[cc]
		merged := false
		for _, join := range joins(A, C, sv.i, sv.j) {
			buf = join(buf[:0])
			if _, ok := p.walk(probe, buf); ok {
				merged = true
				break
			}
		}
		if !merged {
			continue
		}
		chains[ca] = append([]int(nil), buf...)
		chains[cc] = nil
		for _, s := range C {
			owner[s] = ca
		}
	}

	var routes [][]int
	for _, c := range chains {
		if len(c) > 0 {
			routes = append(routes, c)
		}
	}
	b := newBuilder(p)
	return b, append(rest, b.assignRoutes(routes)...)
}

// joins lists the end-to-end concatenations of A and C that make i and j adjacent.
func joins(A, C []int, i, j int) []func([]int) []int {
	var out []func([]int) []int
	first := func(r []int) int { return r[0] }
	last := func(r []int) int { return r[len(r)-1] }
	if last(A) == i && first(C) == j {
		out = append(out, func(buf []int) []int { return append(append(buf, A...), C...) })
	}
	if last(C) == j && first(A) == i {
		out = append(out, func(buf []int) []int { return append(append(buf, C...), A...) })
	}
	if last(A) == i && last(C) == j {
		out = append(out, func(buf []int) []int { return append(append(buf, A...), reversed(C)...) })
	}
	if first(A) == i && first(C) == j {
		out = append(out, func(buf []int) []int { return append(append(buf, reversed(A)...), C...) })
	}
	return out
}

func reversed(r []int) []int {
	out := make([]int, len(r))
	for i, s := range r {
		out[len(r)-1-i] = s
	}
	return out
}

// widestVehicle returns the vehicle with the most capacity, lowest index on ties.
func widestVehicle(p *Problem) int {
	best := 0
	for v := 1; v < p.vehicles; v++ {
		if p.Capacity(v) > p.Capacity(best) {
			best = v
		}
	}
	return best
}

// assignRoutes gives each route to the first free vehicle, by descending
// capacity, that can run it. Stops on routes no vehicle takes are returned.
func (b *builder) assignRoutes(routes [][]int) []int {
	p := b.p
	sort.SliceStable(routes, func(x, y int) bool { return p.routeLoad(routes[x]) > p.routeLoad(routes[y]) })
	fleet := make([]int, p.vehicles)
	for v := range fleet {
		fleet[v] = v
	}
	sort.SliceStable(fleet, func(x, y int) bool { return p.Capacity(fleet[x]) > p.Capacity(fleet[y]) })
	taken := make([]bool, p.vehicles)
	var rest []int
	for _, r := range routes {
		placed := false
		for _, v := range fleet {
			if taken[v] {
				continue
			}
			if _, ok := p.walk(v, r); ok {
				taken[v] = true
				for _, s := range r {
					b.appendStop(v, s)
				}
				placed = true
				break
			}
		}
		if !placed {
			rest = append(rest, r...)
		}
	}
	return rest
}
