package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mumbai = Point{Latitude: 19.0760, Longitude: 72.8777}
	pune   = Point{Latitude: 18.5204, Longitude: 73.8567}
	thane  = Point{Latitude: 19.2183, Longitude: 72.9781}
)

func TestNewPoint(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{name: "valid", lat: 19.0760, lon: 72.8777},
		{name: "equator meridian", lat: 0, lon: 0},
		{name: "poles", lat: 90, lon: 180},
		{name: "negative extremes", lat: -90, lon: -180},
		{name: "latitude too high", lat: 90.01, lon: 0, wantErr: true},
		{name: "latitude too low", lat: -90.01, lon: 0, wantErr: true},
		{name: "longitude too high", lat: 0, lon: 180.5, wantErr: true},
		{name: "longitude too low", lat: 0, lon: -181, wantErr: true},
		{name: "NaN latitude", lat: math.NaN(), lon: 0, wantErr: true},
		{name: "infinite longitude", lat: 0, lon: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPoint(tt.lat, tt.lon)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPoint)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDistance_KnownPairs(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Point
		wantKm    float64
		tolerance float64
	}{
		{name: "mumbai to pune", a: mumbai, b: pune, wantKm: 119.5, tolerance: 2.0},
		{name: "mumbai to thane", a: mumbai, b: thane, wantKm: 19.0, tolerance: 2.0},
		{name: "same point", a: mumbai, b: mumbai, wantKm: 0, tolerance: 0.001},
		{
			name:      "antipodal upper bound",
			a:         Point{Latitude: 0, Longitude: 0},
			b:         Point{Latitude: 0, Longitude: 180},
			wantKm:    20015,
			tolerance: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Distance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantKm, got, tt.tolerance)
		})
	}
}

func TestDistance_Symmetry(t *testing.T) {
	ab, err := Distance(mumbai, pune)
	require.NoError(t, err)
	ba, err := Distance(pune, mumbai)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
}

func TestDistance_Bounds(t *testing.T) {
	// Half the Earth's circumference bounds any great-circle distance.
	const maxKm = 20016.0

	points := []Point{
		mumbai, pune, thane,
		{Latitude: 90, Longitude: 0},
		{Latitude: -90, Longitude: 0},
		{Latitude: 0, Longitude: 180},
		{Latitude: 0, Longitude: -180},
	}

	for _, a := range points {
		for _, b := range points {
			d, err := Distance(a, b)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, d, 0.0)
			assert.LessOrEqual(t, d, maxKm)
		}
	}
}

func TestDistance_InvalidInput(t *testing.T) {
	_, err := Distance(Point{Latitude: math.NaN(), Longitude: 0}, mumbai)
	assert.ErrorIs(t, err, ErrInvalidPoint)

	_, err = Distance(mumbai, Point{Latitude: 0, Longitude: 300})
	assert.ErrorIs(t, err, ErrInvalidPoint)
}

func TestInRange(t *testing.T) {
	tests := []struct {
		name     string
		center   *Point
		radiusKm float64
		point    *Point
		want     bool
		wantErr  error
	}{
		{name: "thane within 50km of mumbai", center: &mumbai, radiusKm: 50, point: &thane, want: true},
		{name: "pune outside 50km of mumbai", center: &mumbai, radiusKm: 50, point: &pune, want: false},
		{name: "pune within 200km of mumbai", center: &mumbai, radiusKm: 200, point: &pune, want: true},
		{name: "nil center", center: nil, radiusKm: 50, point: &thane, wantErr: ErrMissingCoordinates},
		{name: "nil point", center: &mumbai, radiusKm: 50, point: nil, wantErr: ErrMissingCoordinates},
		{name: "zero radius", center: &mumbai, radiusKm: 0, point: &thane, wantErr: ErrInvalidRadius},
		{name: "negative radius", center: &mumbai, radiusKm: -10, point: &thane, wantErr: ErrInvalidRadius},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InRange(tt.center, tt.radiusKm, tt.point)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInRange_BoundaryInclusive(t *testing.T) {
	center := Point{Latitude: 19.0760, Longitude: 72.8777}
	point := Point{Latitude: 19.2183, Longitude: 72.9781}

	distance, err := Distance(center, point)
	require.NoError(t, err)

	// A point exactly at the radius counts as in range.
	inside, err := InRange(&center, distance, &point)
	require.NoError(t, err)
	assert.True(t, inside)

	outside, err := InRange(&center, distance-0.001, &point)
	require.NoError(t, err)
	assert.False(t, outside)
}

func TestInRange_MatchesDistance(t *testing.T) {
	for _, radius := range []float64{1, 16, 50, 150, 2000} {
		d, err := Distance(mumbai, pune)
		require.NoError(t, err)

		in, err := InRange(&mumbai, radius, &pune)
		require.NoError(t, err)
		assert.Equal(t, d <= radius, in, "radius %f", radius)
	}
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 16.1, RoundKm(16.149))
	assert.Equal(t, 16.2, RoundKm(16.151))
	assert.Equal(t, 0.0, RoundKm(0.04))
	assert.Equal(t, 50.0, RoundKm(50.0))
}
