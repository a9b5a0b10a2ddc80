// Package opt implements the vehicle routing engine: the problem model, a
// nearest-neighbor solver, a constraint-guided search solver and the metrics
// extracted from their solutions.
package opt

import (
	"fmt"
	"math"

	"fleetopt/internal/geo"
)

// Problem is an immutable routing instance. Build it with NewProblem.
type Problem struct {
	matrix      [][]float64
	vehicles    int
	depot       int
	demands     []int
	capacities  []int
	maxDistance float64
	hasMaxDist  bool
	coords      []geo.Point

	errs []error // raised by options, reported by NewProblem
}

// Option configures optional parts of a Problem.
type Option func(*Problem)

// WithCapacities models the capacity dimension. demands has one entry per
// location and capacities one entry per vehicle.
func WithCapacities(demands, capacities []int) Option {
	return func(p *Problem) {
		p.demands = append([]int(nil), demands...)
		p.capacities = append([]int(nil), capacities...)
		if demands == nil && capacities != nil {
			p.errs = append(p.errs, &ValidationError{Field: "demands", Reason: "demand and capacity must be given together"})
		}
		if capacities == nil && demands != nil {
			p.errs = append(p.errs, &ValidationError{Field: "capacities", Reason: "demand and capacity must be given together"})
		}
	}
}

// WithMaxDistance caps the cumulative arc cost of every vehicle's route.
func WithMaxDistance(limit float64) Option {
	return func(p *Problem) {
		p.maxDistance = limit
		p.hasMaxDist = true
	}
}

// WithCoordinates attaches location coordinates, used by the sweep strategy.
func WithCoordinates(points []geo.Point) Option {
	return func(p *Problem) {
		p.coords = append([]geo.Point(nil), points...)
	}
}

// NewProblem validates and copies its inputs. The returned error, if any, is a
// *ValidationError.
func NewProblem(matrix [][]float64, vehicles, depot int, opts ...Option) (*Problem, error) {
	n := len(matrix)
	if n == 0 {
		return nil, &ValidationError{Field: "matrix", Reason: "must have at least one location"}
	}
	p := &Problem{vehicles: vehicles, depot: depot, matrix: make([][]float64, n)}
	for i, row := range matrix {
		if len(row) != n {
			return nil, &ValidationError{Field: "matrix", Reason: fmt.Sprintf("not square: row %d has %d entries, want %d", i, len(row), n)}
		}
		for j, v := range row {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &ValidationError{Field: "matrix", Reason: fmt.Sprintf("entry [%d][%d]=%v must be finite and >= 0", i, j, v)}
			}
		}
		p.matrix[i] = append([]float64(nil), row...)
	}
	if vehicles < 1 {
		return nil, &ValidationError{Field: "vehicles", Reason: fmt.Sprintf("must be >= 1, got %d", vehicles)}
	}
	if depot < 0 || depot >= n {
		return nil, &ValidationError{Field: "depot", Reason: fmt.Sprintf("index %d out of range [0,%d)", depot, n)}
	}
	for _, o := range opts {
		o(p)
	}
	if len(p.errs) > 0 {
		return nil, p.errs[0]
	}
	p.errs = nil
	if p.demands != nil {
		if len(p.demands) != n {
			return nil, &ValidationError{Field: "demands", Reason: fmt.Sprintf("count %d does not match location count %d", len(p.demands), n)}
		}
		if len(p.capacities) != vehicles {
			return nil, &ValidationError{Field: "capacities", Reason: fmt.Sprintf("count %d does not match vehicle count %d", len(p.capacities), vehicles)}
		}
		for i, d := range p.demands {
			if d < 0 {
				return nil, &ValidationError{Field: "demands", Reason: fmt.Sprintf("demand[%d]=%d must be >= 0", i, d)}
			}
		}
		for v, c := range p.capacities {
			if c < 0 {
				return nil, &ValidationError{Field: "capacities", Reason: fmt.Sprintf("capacity[%d]=%d must be >= 0", v, c)}
			}
		}
	}
	if p.hasMaxDist && (p.maxDistance < 0 || math.IsNaN(p.maxDistance)) {
		return nil, &ValidationError{Field: "maxDistance", Reason: fmt.Sprintf("must be >= 0, got %v", p.maxDistance)}
	}
	if p.coords != nil && len(p.coords) != n {
		return nil, &ValidationError{Field: "coordinates", Reason: fmt.Sprintf("count %d does not match location count %d", len(p.coords), n)}
	}
	return p, nil
}

// Size returns the number of locations, depot included.
func (p *Problem) Size() int { return len(p.matrix) }

// Vehicles returns the fleet size.
func (p *Problem) Vehicles() int { return p.vehicles }

// Depot returns the depot index.
func (p *Problem) Depot() int { return p.depot }

// Dist returns the arc cost from i to j.
func (p *Problem) Dist(i, j int) float64 { return p.matrix[i][j] }

// HasCapacity reports whether demands and capacities are modeled.
func (p *Problem) HasCapacity() bool { return p.demands != nil }

// Demand returns the demand of location i, or 0 without a capacity dimension.
func (p *Problem) Demand(i int) int {
	if p.demands == nil {
		return 0
	}
	return p.demands[i]
}

// Capacity returns the capacity of vehicle v, or 0 without a capacity dimension.
func (p *Problem) Capacity(v int) int {
	if p.capacities == nil {
		return 0
	}
	return p.capacities[v]
}

// MaxDistance returns the per-vehicle distance ceiling and whether one is set.
func (p *Problem) MaxDistance() (float64, bool) { return p.maxDistance, p.hasMaxDist }

// Coordinates returns the location coordinates, or nil when none were attached.
func (p *Problem) Coordinates() []geo.Point { return p.coords }

// Stops returns every non-depot index in ascending order.
func (p *Problem) Stops() []int {
	out := make([]int, 0, len(p.matrix)-1)
	for i := range p.matrix {
		if i != p.depot {
			out = append(out, i)
		}
	}
	return out
}

func (p *Problem) totalDemand() int {
	t := 0
	for i, d := range p.demands {
		if i != p.depot {
			t += d
		}
	}
	return t
}

func (p *Problem) totalCapacity() int {
	t := 0
	for _, c := range p.capacities {
		t += c
	}
	return t
}
