package opt

import (
	"math"
	"sort"
)

// constructSweep orders stops by polar angle around the depot and cuts the
// sequence into routes as the vehicle limits are reached.
func constructSweep(p *Problem) (*builder, []int) {
	dep := p.coords[p.depot]
	stops := p.Stops()
	angle := make([]float64, p.Size())
	for _, s := range stops {
		c := p.coords[s]
		angle[s] = math.Atan2(c.Lat-dep.Lat, c.Lng-dep.Lng)
	}
	sort.SliceStable(stops, func(i, j int) bool { return angle[stops[i]] < angle[stops[j]] })
	b := newBuilder(p)
	return b, b.fillInOrder(stops)
}

// fillInOrder appends stops in sequence to the current vehicle and moves on
// to the next vehicle when the next stop no longer fits. A stop that does not
// fit an empty route is skipped and returned.
func (b *builder) fillInOrder(order []int) []int {
	p := b.p
	var rest []int
	v := 0
	dims := p.dimensions(v)
	for i, s := range order {
		for {
			if v >= p.vehicles {
				return append(rest, order[i:]...)
			}
			probe := dims
			if probe.visit(s) && probe.close() {
				dims.visit(s)
				b.appendStop(v, s)
				break
			}
			if len(b.routes[v]) == 0 {
				rest = append(rest, s)
				break
			}
			v++
			if v < p.vehicles {
				dims = p.dimensions(v)
			}
		}
	}
	return rest
}
