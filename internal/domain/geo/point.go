// Package geo contains the geospatial core of the project: the Point value
// type, great-circle distance, radius matching, and the geofilter pipeline
// used by listings, bids and equipment search.
package geo

import (
	"math"

	"agriconnect/internal/errors"
)

var (
	// ErrInvalidPoint is returned when a coordinate is non-finite or out of range.
	ErrInvalidPoint = errors.New("invalid geographic point")
	// ErrMissingCoordinates is returned when a range check is asked to compare
	// against an unset point. Callers decide the policy for unknown locations;
	// the matcher never guesses.
	ErrMissingCoordinates = errors.New("missing coordinates")
	// ErrInvalidRadius is returned when a radius is zero, negative or non-finite.
	ErrInvalidRadius = errors.New("invalid radius")
)

// Point is an immutable latitude/longitude pair identifying a location on
// Earth. An absent location is expressed as a nil *Point, never as the zero
// value.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewPoint validates the coordinates and returns a Point.
func NewPoint(latitude, longitude float64) (Point, error) {
	p := Point{Latitude: latitude, Longitude: longitude}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}

	return p, nil
}

// Validate checks that both coordinates are finite and within range.
func (p Point) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) ||
		math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) {
		return errors.Wrap(ErrInvalidPoint, "coordinate is not finite")
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return errors.Wrapf(ErrInvalidPoint, "latitude %f out of range [-90,90]", p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return errors.Wrapf(ErrInvalidPoint, "longitude %f out of range [-180,180]", p.Longitude)
	}

	return nil
}
