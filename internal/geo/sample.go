package geo

import (
	"fmt"
	"math"
	"math/rand"
)

// ValidateLatLng reports the first point whose latitude or longitude is out of range.
func ValidateLatLng(points []Point) error {
	for i, p := range points {
		if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
			return fmt.Errorf("location %d: latitude %v out of range [-90,90]", i, p.Lat)
		}
		if math.IsNaN(p.Lng) || p.Lng < -180 || p.Lng > 180 {
			return fmt.Errorf("location %d: longitude %v out of range [-180,180]", i, p.Lng)
		}
	}
	return nil
}

// SampleLocations returns n points: the depot followed by n-1 points scattered
// uniformly in angle and radius within radiusKm of it. One degree is taken as 111 km.
// The same seed always yields the same points.
func SampleLocations(depot Point, n int, radiusKm float64, seed int64) []Point {
	if n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(seed))
	radiusDeg := radiusKm / 111.0
	out := make([]Point, 0, n)
	out = append(out, depot)
	for i := 1; i < n; i++ {
		angle := rng.Float64() * 2 * math.Pi
		r := rng.Float64() * radiusDeg
		out = append(out, Point{Lat: depot.Lat + r*math.Cos(angle), Lng: depot.Lng + r*math.Sin(angle)})
	}
	return out
}

// SampleDemands returns n demands with 0 for the depot and 1..19 for every other location.
func SampleDemands(n int, seed int64) []int {
	if n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(seed))
	out := make([]int, n)
	for i := 1; i < n; i++ {
		out[i] = 1 + rng.Intn(19)
	}
	return out
}
