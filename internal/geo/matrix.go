// Package geo builds distance matrices from coordinate lists.
package geo

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// EarthRadiusM is the mean Earth radius used by the great-circle method.
const EarthRadiusM = 6371000.0

// Point is a 2-D coordinate. For the planar method Lng is read as x and Lat as y.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Method selects the distance function used to fill a matrix.
type Method string

const (
	GreatCircle Method = "great_circle"
	Planar      Method = "planar"
)

var ErrUnsupportedMethod = errors.New("unsupported distance method")

// ParseMethod accepts the canonical method names plus a few common aliases.
// An empty string selects GreatCircle.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "great_circle", "great-circle", "haversine":
		return GreatCircle, nil
	case "planar", "euclidean":
		return Planar, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, s)
}

// rows at or above this size are filled concurrently
const parallelRows = 64

// BuildMatrix returns the n×n matrix of pairwise distances between locs.
// Great-circle output is in meters; planar output is in the caller's units.
func BuildMatrix(locs []Point, method Method) ([][]float64, error) {
	var dist func(a, b Point) float64
	switch method {
	case GreatCircle:
		dist = Haversine
	case Planar:
		dist = Euclidean
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, string(method))
	}
	n := len(locs)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	fill := func(i int) {
		for j := 0; j < n; j++ {
			if i != j {
				m[i][j] = dist(locs[i], locs[j])
			}
		}
	}
	if n < parallelRows {
		for i := 0; i < n; i++ {
			fill(i)
		}
		return m, nil
	}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			fill(i)
			return nil
		})
	}
	_ = g.Wait()
	return m, nil
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusM * c
}

// Euclidean returns the straight-line distance on raw coordinate values.
func Euclidean(a, b Point) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lng-b.Lng)
}
