package opt

import "math/rand"

const maxSegment = 3

// neighborhood enumerates feasible candidate moves of one kind. scan offers
// every candidate to ev; sample draws one random feasible candidate.
type neighborhood struct {
	name   string
	scan   func(st *state, ev *evaluation)
	sample func(st *state, rng *rand.Rand) ([]change, bool)
}

var neighborhoods = []neighborhood{
	{name: "relocate", scan: scanRelocate, sample: sampleRelocate},
	{name: "exchange", scan: scanExchange, sample: sampleExchange},
	{name: "two_opt", scan: scanTwoOpt, sample: sampleTwoOpt},
	{name: "two_opt_star", scan: scanTwoOptStar, sample: sampleTwoOptStar},
	{name: "cross", scan: scanCross, sample: sampleCross},
}

// splice returns src with seg inserted before position j, reusing dst.
func splice(dst, src []int, j int, seg []int) []int {
	dst = append(dst[:0], src[:j]...)
	dst = append(dst, seg...)
	return append(dst, src[j:]...)
}

func without(dst, src []int, i, l int) []int {
	dst = append(dst[:0], src[:i]...)
	return append(dst, src[i+l:]...)
}

func fits(p *Problem, v int, load int) bool {
	return p.demands == nil || load <= p.capacities[v]
}

// scanRelocate moves a segment of up to maxSegment stops to another position
// in the same route or in another vehicle's route.
func scanRelocate(st *state, ev *evaluation) {
	p := st.p
	var removed, ins []int
	for a, ra := range st.routes {
		for l := 1; l <= maxSegment; l++ {
			for i := 0; i+l <= len(ra); i++ {
				seg := ra[i : i+l]
				segLoad := p.routeLoad(seg)
				removed = without(removed, ra, i, l)
				da, okA := p.walk(a, removed)
				for b, rb := range st.routes {
					if b == a {
						for j := 0; j <= len(removed); j++ {
							if j == i {
								continue
							}
							ins = splice(ins, removed, j, seg)
							if d, ok := p.walk(a, ins); ok {
								ev.offer(change{a, ins, d})
							}
						}
						continue
					}
					if !okA || !fits(p, b, p.routeLoad(rb)+segLoad) {
						continue
					}
					for j := 0; j <= len(rb); j++ {
						ins = splice(ins, rb, j, seg)
						if d, ok := p.walk(b, ins); ok {
							ev.offer(change{a, removed, da}, change{b, ins, d})
						}
					}
				}
			}
		}
	}
}

func sampleRelocate(st *state, rng *rand.Rand) ([]change, bool) {
	p := st.p
	a := rng.Intn(len(st.routes))
	ra := st.routes[a]
	if len(ra) == 0 {
		return nil, false
	}
	l := 1 + rng.Intn(min(maxSegment, len(ra)))
	i := rng.Intn(len(ra) - l + 1)
	seg := ra[i : i+l]
	removed := without(nil, ra, i, l)
	b := rng.Intn(len(st.routes))
	if b == a {
		j := rng.Intn(len(removed) + 1)
		if j == i {
			return nil, false
		}
		ins := splice(nil, removed, j, seg)
		d, ok := p.walk(a, ins)
		return []change{{a, ins, d}}, ok
	}
	rb := st.routes[b]
	ins := splice(nil, rb, rng.Intn(len(rb)+1), seg)
	da, okA := p.walk(a, removed)
	db, okB := p.walk(b, ins)
	return []change{{a, removed, da}, {b, ins, db}}, okA && okB
}

// scanExchange swaps two stops, within a route or across two routes.
func scanExchange(st *state, ev *evaluation) {
	p := st.p
	var ca, cb []int
	for a, ra := range st.routes {
		for b := a; b < len(st.routes); b++ {
			rb := st.routes[b]
			for i := range ra {
				j0 := 0
				if a == b {
					j0 = i + 1
				}
				for j := j0; j < len(rb); j++ {
					if a == b {
						ca = append(ca[:0], ra...)
						ca[i], ca[j] = ca[j], ca[i]
						if d, ok := p.walk(a, ca); ok {
							ev.offer(change{a, ca, d})
						}
						continue
					}
					ca = append(ca[:0], ra...)
					cb = append(cb[:0], rb...)
					ca[i], cb[j] = rb[j], ra[i]
					da, okA := p.walk(a, ca)
					if !okA {
						continue
					}
					if db, ok := p.walk(b, cb); ok {
						ev.offer(change{a, ca, da}, change{b, cb, db})
					}
				}
			}
		}
	}
}

func sampleExchange(st *state, rng *rand.Rand) ([]change, bool) {
	p := st.p
	a, b := rng.Intn(len(st.routes)), rng.Intn(len(st.routes))
	ra, rb := st.routes[a], st.routes[b]
	if len(ra) == 0 || len(rb) == 0 {
		return nil, false
	}
	i, j := rng.Intn(len(ra)), rng.Intn(len(rb))
	if a == b {
		if i == j {
			return nil, false
		}
		ca := append([]int(nil), ra...)
		ca[i], ca[j] = ca[j], ca[i]
		d, ok := p.walk(a, ca)
		return []change{{a, ca, d}}, ok
	}
	ca := append([]int(nil), ra...)
	cb := append([]int(nil), rb...)
	ca[i], cb[j] = rb[j], ra[i]
	da, okA := p.walk(a, ca)
	db, okB := p.walk(b, cb)
	return []change{{a, ca, da}, {b, cb, db}}, okA && okB
}

func reverseInto(dst, src []int, i, k int) []int {
	dst = append(dst[:0], src...)
	for x, y := i, k; x < y; x, y = x+1, y-1 {
		dst[x], dst[y] = dst[y], dst[x]
	}
	return dst
}

// scanTwoOpt reverses a section of a single route.
func scanTwoOpt(st *state, ev *evaluation) {
	p := st.p
	var cand []int
	for a, ra := range st.routes {
		for i := 0; i < len(ra)-1; i++ {
			for k := i + 1; k < len(ra); k++ {
				cand = reverseInto(cand, ra, i, k)
				if d, ok := p.walk(a, cand); ok {
					ev.offer(change{a, cand, d})
				}
			}
		}
	}
}

func sampleTwoOpt(st *state, rng *rand.Rand) ([]change, bool) {
	a := rng.Intn(len(st.routes))
	ra := st.routes[a]
	if len(ra) < 2 {
		return nil, false
	}
	i := rng.Intn(len(ra) - 1)
	k := i + 1 + rng.Intn(len(ra)-i-1)
	cand := reverseInto(nil, ra, i, k)
	d, ok := st.p.walk(a, cand)
	return []change{{a, cand, d}}, ok
}

func tails(ca, cb, ra, rb []int, i, j int) ([]int, []int) {
	ca = append(append(ca[:0], ra[:i]...), rb[j:]...)
	cb = append(append(cb[:0], rb[:j]...), ra[i:]...)
	return ca, cb
}

// scanTwoOptStar exchanges the tails of two routes. Pairing a route with an
// idle vehicle splits it in two.
func scanTwoOptStar(st *state, ev *evaluation) {
	p := st.p
	var ca, cb []int
	for a, ra := range st.routes {
		for b := a + 1; b < len(st.routes); b++ {
			rb := st.routes[b]
			if len(ra) == 0 && len(rb) == 0 {
				continue
			}
			for i := 0; i <= len(ra); i++ {
				for j := 0; j <= len(rb); j++ {
					if (i == 0 && j == 0) || (i == len(ra) && j == len(rb)) {
						continue
					}
					ca, cb = tails(ca, cb, ra, rb, i, j)
					da, okA := p.walk(a, ca)
					if !okA {
						continue
					}
					if db, ok := p.walk(b, cb); ok {
						ev.offer(change{a, ca, da}, change{b, cb, db})
					}
				}
			}
		}
	}
}

func sampleTwoOptStar(st *state, rng *rand.Rand) ([]change, bool) {
	a, b := rng.Intn(len(st.routes)), rng.Intn(len(st.routes))
	if a == b {
		return nil, false
	}
	ra, rb := st.routes[a], st.routes[b]
	i, j := rng.Intn(len(ra)+1), rng.Intn(len(rb)+1)
	if (i == 0 && j == 0) || (i == len(ra) && j == len(rb)) {
		return nil, false
	}
	ca, cb := tails(nil, nil, ra, rb, i, j)
	da, okA := st.p.walk(a, ca)
	db, okB := st.p.walk(b, cb)
	return []change{{a, ca, da}, {b, cb, db}}, okA && okB
}

func swapSegments(ca, cb, ra, rb []int, i, la, j, lb int) ([]int, []int) {
	ca = append(append(append(ca[:0], ra[:i]...), rb[j:j+lb]...), ra[i+la:]...)
	cb = append(append(append(cb[:0], rb[:j]...), ra[i:i+la]...), rb[j+lb:]...)
	return ca, cb
}

// scanCross swaps segments of one or two stops between two routes.
func scanCross(st *state, ev *evaluation) {
	p := st.p
	var ca, cb []int
	for a, ra := range st.routes {
		for b := a + 1; b < len(st.routes); b++ {
			rb := st.routes[b]
			for la := 1; la <= 2; la++ {
				for lb := 1; lb <= 2; lb++ {
					if la == 1 && lb == 1 {
						continue // covered by exchange
					}
					for i := 0; i+la <= len(ra); i++ {
						for j := 0; j+lb <= len(rb); j++ {
							ca, cb = swapSegments(ca, cb, ra, rb, i, la, j, lb)
							da, okA := p.walk(a, ca)
							if !okA {
								continue
							}
							if db, ok := p.walk(b, cb); ok {
								ev.offer(change{a, ca, da}, change{b, cb, db})
							}
						}
					}
				}
			}
		}
	}
}

func sampleCross(st *state, rng *rand.Rand) ([]change, bool) {
	a, b := rng.Intn(len(st.routes)), rng.Intn(len(st.routes))
	if a == b {
		return nil, false
	}
	ra, rb := st.routes[a], st.routes[b]
	if len(ra) == 0 || len(rb) == 0 {
		return nil, false
	}
	la, lb := 1+rng.Intn(min(2, len(ra))), 1+rng.Intn(min(2, len(rb)))
	i, j := rng.Intn(len(ra)-la+1), rng.Intn(len(rb)-lb+1)
	ca, cb := swapSegments(nil, nil, ra, rb, i, la, j, lb)
	da, okA := st.p.walk(a, ca)
	db, okB := st.p.walk(b, cb)
	return []change{{a, ca, da}, {b, cb, db}}, okA && okB
}
