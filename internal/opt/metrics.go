package opt

import "time"

// Metrics are the route-level figures derived from a Solution.
type Metrics struct {
	Objective        float64
	TotalDistance    float64
	MaxRouteDistance float64
	NumRoutes        int
	VehiclesUsed     int
	RouteDistances   []float64
	RouteLoads       []int // nil when capacity is not modeled
	Routes           []Route
	Vehicles         []int
	Dropped          []int
	ExecutionTime    time.Duration
	Algorithm        string
}

// ExtractMetrics recomputes distances and loads from the solution's routes.
// It does not modify sol and returns fresh slices on every call.
func ExtractMetrics(sol *Solution) Metrics {
	m := Metrics{
		Objective:      sol.Objective,
		NumRoutes:      len(sol.Routes),
		RouteDistances: make([]float64, 0, len(sol.Routes)),
		Routes:         make([]Route, 0, len(sol.Routes)),
		Vehicles:       append([]int(nil), sol.Vehicles...),
		Dropped:        append([]int(nil), sol.Dropped...),
		ExecutionTime:  sol.SolveTime,
		Algorithm:      sol.Algorithm,
	}
	p := sol.problem
	if p != nil && p.HasCapacity() {
		m.RouteLoads = make([]int, 0, len(sol.Routes))
	}
	for _, r := range sol.Routes {
		m.Routes = append(m.Routes, append(Route(nil), r...))
		d := 0.0
		if p != nil {
			for i := 0; i+1 < len(r); i++ {
				d += p.matrix[r[i]][r[i+1]]
			}
		}
		m.RouteDistances = append(m.RouteDistances, d)
		m.TotalDistance += d
		if d > m.MaxRouteDistance {
			m.MaxRouteDistance = d
		}
		if len(r.Stops()) > 0 {
			m.VehiclesUsed++
		}
		if m.RouteLoads != nil {
			m.RouteLoads = append(m.RouteLoads, p.routeLoad(r.Stops()))
		}
	}
	return m
}
