package service

import (
	"context"

	"agriconnect/internal/domain/geo"
)

// Geocoder defines the interface for resolving a postal address to coordinates.
// Implementations are expected to cache results; forward geocoding providers
// rate-limit aggressively and city-level queries repeat constantly.
type Geocoder interface {
	// Geocode resolves a city/state/postal-code triple to a point.
	// A nil point with a nil error means the address could not be resolved.
	Geocode(ctx context.Context, city, state, postalCode string) (*geo.Point, error)
}
