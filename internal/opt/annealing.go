package opt

import (
	"math"
	"time"
)

// simulatedAnnealing samples random feasible neighbors and accepts worsening
// ones with probability exp(-delta/T). T decays geometrically from its start
// value to a thousandth of it over the time budget. The best state found is
// polished with a final descent.
func (s *searcher) simulatedAnnealing(st *state) {
	stops := max(1, s.p.Size()-1)
	t0 := 0.05 * st.cost() / float64(stops)
	if t0 <= 0 {
		t0 = 1e-6
	}
	tEnd := t0 * 1e-3
	budget := s.deadline.Sub(s.start)
	limit := 50 * s.patience

	stall := 0
	for !s.expired() && stall < limit {
		frac := float64(time.Since(s.start)) / float64(budget)
		temp := t0 * math.Pow(tEnd/t0, math.Min(1, frac))
		h := neighborhoods[s.rng.Intn(len(neighborhoods))]
		ch, ok := h.sample(st, s.rng)
		if !ok {
			stall++
			continue
		}
		cur := st.cost()
		delta := st.costWith(ch) - cur
		if delta < eps || s.rng.Float64() < math.Exp(-delta/temp) {
			st.apply(ch)
			s.stats.Iterations++
			if delta > eps {
				s.stats.AcceptedWorse++
			}
		}
		if s.observe(st) {
			stall = 0
		} else {
			stall++
		}
	}
	polished := s.best.clone()
	s.descend(polished, plainScore)
}
