package opt

// tabuSearch always takes the best admissible move, even a worsening one.
// Arcs removed by a move may not be re-added for tenure iterations unless the
// resulting cost beats the best known (aspiration).
func (s *searcher) tabuSearch(st *state) {
	n := s.p.Size()
	tenure := 7 + n/10
	expiry := map[int]int{}
	iter := 0
	key := func(i, j int) int {
		if i > j {
			i, j = j, i
		}
		return i*n + j
	}
	arcSet := func(stops []int) map[int]bool {
		set := map[int]bool{}
		s.p.arcs(stops, func(i, j int) { set[key(i, j)] = true })
		return set
	}
	admit := func(st *state, ch []change, score float64) bool {
		if score < s.best.cost()-eps {
			return true
		}
		for _, c := range ch {
			old := arcSet(st.routes[c.v])
			tabu := false
			s.p.arcs(c.stops, func(i, j int) {
				k := key(i, j)
				if !old[k] && expiry[k] > iter {
					tabu = true
				}
			})
			if tabu {
				return false
			}
		}
		return true
	}

	stall := 0
	for !s.expired() && stall < s.patience {
		iter++
		mv, ok := s.bestMove(st, plainScore, admit)
		if !ok {
			return
		}
		var removed []int
		for _, c := range mv.changes {
			added := arcSet(c.stops)
			s.p.arcs(st.routes[c.v], func(i, j int) {
				if k := key(i, j); !added[k] {
					removed = append(removed, k)
				}
			})
		}
		before := st.cost()
		st.apply(mv.changes)
		s.stats.Iterations++
		if st.cost() > before+eps {
			s.stats.AcceptedWorse++
		}
		for _, k := range removed {
			expiry[k] = iter + tenure
		}
		if s.observe(st) {
			stall = 0
		} else {
			stall++
		}
	}
}
