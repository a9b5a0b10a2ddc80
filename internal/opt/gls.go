package opt

// guidedLocalSearch alternates descents on an augmented cost with penalizing
// the arcs of the current local optimum that have the highest utility
// d(i,j)/(1+penalty). Frequently penalized arcs become expensive, which pushes
// the descent out of the optimum it is stuck in.
func (s *searcher) guidedLocalSearch(st *state) {
	n := s.p.Size()
	s.descend(st, plainScore)
	s.observe(st)
	lambda := 0.1 * st.cost() / float64(max(1, st.arcCount()))
	penalty := make([]int, n*n)

	routePenalty := func(stops []int) int {
		total := 0
		s.p.arcs(stops, func(i, j int) { total += penalty[i*n+j] })
		return total
	}
	augmented := func(st *state, ch []change) float64 {
		delta := 0
		for _, c := range ch {
			delta += routePenalty(c.stops) - routePenalty(st.routes[c.v])
		}
		return st.costWith(ch) + lambda*float64(delta)
	}

	stall := 0
	for !s.expired() && stall < s.patience {
		if !s.penalize(st, penalty) {
			return
		}
		s.descend(st, augmented)
		if s.observe(st) {
			stall = 0
		} else {
			stall++
		}
	}
}

// penalize bumps the penalty of every maximum-utility arc in st.
func (s *searcher) penalize(st *state, penalty []int) bool {
	n := s.p.Size()
	maxUtil := -1.0
	for _, r := range st.routes {
		s.p.arcs(r, func(i, j int) {
			if u := s.p.matrix[i][j] / float64(1+penalty[i*n+j]); u > maxUtil {
				maxUtil = u
			}
		})
	}
	if maxUtil < 0 {
		return false
	}
	for _, r := range st.routes {
		s.p.arcs(r, func(i, j int) {
			if u := s.p.matrix[i][j] / float64(1+penalty[i*n+j]); u >= maxUtil-eps {
				penalty[i*n+j]++
			}
		})
	}
	return true
}
