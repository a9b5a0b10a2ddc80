package opt

import (
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimeLimit = 30 * time.Second
	DefaultPatience  = 100

	repairAttempts = 50
)

// Params tunes the search solver. The zero value is usable: a 30s limit,
// path cheapest arc construction and no improvement phase.
type Params struct {
	TimeLimit   time.Duration
	Strategy    Strategy
	LocalSearch Metaheuristic
	// Seed drives randomized moves; zero seeds from the clock.
	Seed int64
	// Patience is the number of non-improving rounds before a metaheuristic
	// gives up ahead of the time limit.
	Patience int
	// Workers bounds how many neighborhoods are evaluated concurrently.
	Workers int
}

func (p Params) withDefaults() Params {
	if p.TimeLimit <= 0 {
		p.TimeLimit = DefaultTimeLimit
	}
	if p.Patience <= 0 {
		p.Patience = DefaultPatience
	}
	if p.Workers <= 0 {
		p.Workers = len(neighborhoods)
	}
	if p.Seed == 0 {
		p.Seed = time.Now().UnixNano()
	}
	return p
}

// Search builds a first solution with a construction strategy and improves it
// with a local search metaheuristic until the time limit or convergence.
// Every route it returns satisfies the capacity and distance dimensions.
type Search struct {
	Params Params
}

func (Search) Name() string { return "constraint_search" }

// Solve blocks until the search terminates. It fails with an error matching
// ErrInfeasible when no feasible assignment exists or could be built, and
// ErrNoSolution when the time limit passed before one was found.
func (s Search) Solve(p *Problem) (*Solution, error) {
	start := time.Now()
	params := s.Params.withDefaults()
	deadline := start.Add(params.TimeLimit)
	expired := func() bool { return !time.Now().Before(deadline) }

	if err := precheck(p); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(params.Seed))
	b, rest, used := construct(p, params.Strategy)
	if len(rest) > 0 {
		slog.Debug("construction left stops unassigned", "strategy", used.String(), "unassigned", len(rest))
		if b = repair(p, b, rest, rng, repairAttempts, expired); b == nil {
			if expired() {
				return nil, fmt.Errorf("%w: %d stops unassigned after %s", ErrNoSolution, len(rest), params.TimeLimit)
			}
			return nil, fmt.Errorf("%w: no construction placed %d stops within capacity and distance limits", ErrInfeasible, len(rest))
		}
	}

	st := newState(b)
	sr := &searcher{
		p:        p,
		rng:      rng,
		deadline: deadline,
		start:    start,
		patience: params.Patience,
		workers:  params.Workers,
		best:     st.clone(),
		stats: Stats{
			InitialCost: st.cost(),
			Strategy:    used.String(),
			LocalSearch: params.LocalSearch.String(),
		},
	}
	switch params.LocalSearch {
	case GuidedLocalSearch:
		sr.guidedLocalSearch(st)
	case SimulatedAnnealing:
		sr.simulatedAnnealing(st)
	case TabuSearch:
		sr.tabuSearch(st)
	}
	sr.stats.BestCost = sr.best.cost()

	sol := newSolution(p, sr.best.routes, s.Name())
	sol.Objective = sr.stats.BestCost
	sol.Stats = sr.stats
	sol.SolveTime = time.Since(start)
	slog.Debug("search finished",
		"strategy", sr.stats.Strategy,
		"local_search", sr.stats.LocalSearch,
		"iterations", sr.stats.Iterations,
		"initial", sr.stats.InitialCost,
		"best", sr.stats.BestCost,
		"elapsed", sol.SolveTime)
	return sol, nil
}

// precheck rejects instances that no construction can satisfy. A stop is
// rejected on distance only when even its shortest round trip through other
// stops exceeds the limit; anything tighter is left to construction.
func precheck(p *Problem) error {
	if p.HasCapacity() {
		if d, c := p.totalDemand(), p.totalCapacity(); d > c {
			return fmt.Errorf("%w: total demand %d exceeds fleet capacity %d", ErrInfeasible, d, c)
		}
		widest := p.largestCapacity()
		for _, s := range p.Stops() {
			if p.demands[s] > widest {
				return fmt.Errorf("%w: stop %d demand %d exceeds every vehicle capacity (largest %d)",
					ErrInfeasible, s, p.demands[s], widest)
			}
		}
	}
	if p.hasMaxDist {
		out, in := p.depotPaths()
		for _, s := range p.Stops() {
			if rt := out[s] + in[s]; rt > p.maxDistance {
				return fmt.Errorf("%w: stop %d shortest round trip %.1f exceeds max distance %.1f",
					ErrInfeasible, s, rt, p.maxDistance)
			}
		}
	}
	return nil
}

// searcher carries the shared state of one improvement run.
type searcher struct {
	p        *Problem
	rng      *rand.Rand
	start    time.Time
	deadline time.Time
	patience int
	workers  int
	best     *state
	stats    Stats
}

func (s *searcher) expired() bool { return !time.Now().Before(s.deadline) }

// observe records st as the new best when it beats it.
func (s *searcher) observe(st *state) bool {
	if st.cost() < s.best.cost()-eps {
		s.best = st.clone()
		s.stats.Improvements++
		return true
	}
	return false
}

// bestMove evaluates every neighborhood concurrently and returns the lowest
// scoring admitted move. Ties go to the earlier neighborhood.
func (s *searcher) bestMove(st *state, score scorer, admit admitter) (move, bool) {
	results := make([]evaluation, len(neighborhoods))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, h := range neighborhoods {
		g.Go(func() error {
			results[i] = evaluation{st: st, score: score, admit: admit}
			h.scan(st, &results[i])
			return nil
		})
	}
	_ = g.Wait()
	var best move
	found := false
	for _, r := range results {
		if r.found && (!found || r.best.score < best.score) {
			best, found = r.best, true
		}
	}
	return best, found
}

// descend applies best-improvement moves under score until none improves.
func (s *searcher) descend(st *state, score scorer) {
	for !s.expired() {
		mv, ok := s.bestMove(st, score, nil)
		if !ok || mv.score >= score(st, nil)-eps {
			return
		}
		st.apply(mv.changes)
		s.stats.Iterations++
		s.observe(st)
	}
}
