package geo

import (
	"math"

	"agriconnect/internal/errors"
)

// earthRadiusKm is the mean Earth radius used by the Haversine formula.
const earthRadiusKm = 6371.0

// Distance returns the great-circle distance between two points in
// kilometers, computed with the Haversine formula on a sphere of radius
// 6371 km. The result keeps full precision; rounding for display is a
// presentation decision (see RoundKm).
//
// Pure and safe for concurrent use. Malformed input fails with
// ErrInvalidPoint rather than propagating NaN into callers.
func Distance(a, b Point) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c, nil
}

// InRange reports whether point lies within radiusKm of center. The boundary
// is inclusive: a point exactly at the radius counts as in range.
//
// Both sides must carry coordinates; an unset center or point fails with
// ErrMissingCoordinates so the caller can apply its own unknown-location
// policy instead of silently dropping or keeping the candidate.
func InRange(center *Point, radiusKm float64, point *Point) (bool, error) {
	if center == nil || point == nil {
		return false, ErrMissingCoordinates
	}
	if radiusKm <= 0 || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return false, errors.Wrapf(ErrInvalidRadius, "radius %f must be a positive finite number", radiusKm)
	}

	distance, err := Distance(*center, *point)
	if err != nil {
		return false, err
	}

	return distance <= radiusKm, nil
}

// RoundKm rounds a distance to one decimal place for display.
func RoundKm(distanceKm float64) float64 {
	return math.Round(distanceKm*10) / 10
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
