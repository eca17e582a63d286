package usecase

import (
	"context"

	"agriconnect/internal/domain/entity"
	"agriconnect/internal/domain/geo"

	"github.com/google/uuid"
)

// UpdateLocationInput represents a partial update of an actor's location
// profile. Nil fields keep their stored values.
type UpdateLocationInput struct {
	City       *string  `json:"city,omitempty"`
	State      *string  `json:"state,omitempty"`
	PostalCode *string  `json:"postal_code,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	RadiusKm   *float64 `json:"radius_km,omitempty"`
}

// ResolveCoordinatesInput represents the input for turning an address into
// coordinates. The sensor fields carry a device GPS fix to fall back on when
// the geocoder cannot resolve the address.
type ResolveCoordinatesInput struct {
	City            string   `json:"city"`
	State           string   `json:"state"`
	PostalCode      string   `json:"postal_code"`
	SensorLatitude  *float64 `json:"sensor_latitude,omitempty"`
	SensorLongitude *float64 `json:"sensor_longitude,omitempty"`
}

// LocationUsecase defines the interface for location profile use cases
type LocationUsecase interface {
	// GetProfile retrieves an actor's location profile. It never fails for
	// a missing profile; the unset default is returned instead.
	GetProfile(ctx context.Context, userID uuid.UUID, role entity.Role) (*entity.LocationProfile, error)

	// UpdateProfile merges the input into the stored profile and persists
	// it. Updates for the same actor are serialized; the write is visible
	// to matching as soon as the call returns.
	UpdateProfile(ctx context.Context, userID uuid.UUID, role entity.Role, input *UpdateLocationInput) (*entity.LocationProfile, error)

	// ResolveCoordinates turns an address into a point, falling back to the
	// device sensor fix when the geocoder comes up empty. It stores either
	// a complete coordinate pair or nothing.
	ResolveCoordinates(ctx context.Context, userID uuid.UUID, role entity.Role, input *ResolveCoordinatesInput) (*geo.Point, error)
}
