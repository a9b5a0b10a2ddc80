package geo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	saoPaulo = Point{Lat: -23.5505, Lng: -46.6333}
	rio      = Point{Lat: -22.9068, Lng: -43.1729}
)

func TestHaversineKnownFixture(t *testing.T) {
	d := Haversine(saoPaulo, rio)
	assert.GreaterOrEqual(t, d, 357000.0)
	assert.LessOrEqual(t, d, 362000.0)
	assert.Equal(t, d, Haversine(rio, saoPaulo))
	assert.Equal(t, 0.0, Haversine(rio, rio))
}

func TestBuildMatrixSymmetricZeroDiagonal(t *testing.T) {
	locs := SampleLocations(saoPaulo, 12, 30, 42)
	for _, method := range []Method{GreatCircle, Planar} {
		m, err := BuildMatrix(locs, method)
		require.NoError(t, err)
		require.Len(t, m, len(locs))
		for i := range m {
			require.Len(t, m[i], len(locs))
			assert.Equal(t, 0.0, m[i][i])
			for j := range m {
				assert.Equal(t, m[i][j], m[j][i], "method=%s i=%d j=%d", method, i, j)
				assert.GreaterOrEqual(t, m[i][j], 0.0)
			}
		}
	}
}

func TestBuildMatrixPlanarUnits(t *testing.T) {
	m, err := BuildMatrix([]Point{{Lat: 0, Lng: 0}, {Lat: 4, Lng: 3}}, Planar)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, m[0][1], 1e-12)
}

func TestBuildMatrixParallelMatchesSequential(t *testing.T) {
	locs := SampleLocations(saoPaulo, parallelRows+10, 50, 7)
	m, err := BuildMatrix(locs, GreatCircle)
	require.NoError(t, err)
	for i := range locs {
		for j := range locs {
			if i == j {
				continue
			}
			assert.Equal(t, Haversine(locs[i], locs[j]), m[i][j])
		}
	}
}

func TestBuildMatrixUnsupportedMethod(t *testing.T) {
	_, err := BuildMatrix([]Point{saoPaulo}, Method("manhattan"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedMethod))

	_, err = ParseMethod("manhattan")
	assert.True(t, errors.Is(err, ErrUnsupportedMethod))
}

func TestParseMethodAliases(t *testing.T) {
	cases := map[string]Method{
		"":             GreatCircle,
		"great_circle": GreatCircle,
		"great-circle": GreatCircle,
		"Haversine":    GreatCircle,
		"planar":       Planar,
		"euclidean":    Planar,
	}
	for in, want := range cases {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestBuildMatrixEmpty(t *testing.T) {
	m, err := BuildMatrix(nil, Planar)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestSampleLocationsDeterministic(t *testing.T) {
	a := SampleLocations(saoPaulo, 10, 30, 42)
	b := SampleLocations(saoPaulo, 10, 30, 42)
	assert.Equal(t, a, b)
	require.Len(t, a, 10)
	assert.Equal(t, saoPaulo, a[0])
	for _, p := range a[1:] {
		assert.LessOrEqual(t, Haversine(saoPaulo, p), 31000.0)
	}
}

func TestSampleDemands(t *testing.T) {
	d := SampleDemands(20, 1)
	require.Len(t, d, 20)
	assert.Equal(t, 0, d[0])
	for _, v := range d[1:] {
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 19)
	}
}

func TestValidateLatLng(t *testing.T) {
	assert.NoError(t, ValidateLatLng([]Point{saoPaulo, rio}))
	assert.Error(t, ValidateLatLng([]Point{{Lat: 91, Lng: 0}}))
	assert.Error(t, ValidateLatLng([]Point{{Lat: 0, Lng: -181}}))
}
