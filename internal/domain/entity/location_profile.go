package entity

import (
	"time"

	"agriconnect/internal/domain/geo"

	"github.com/google/uuid"
)

// DefaultRadiusKm is the radius a profile starts with before the owner picks
// one: a farmer's delivery radius or a buyer's search radius.
const DefaultRadiusKm = 50.0

// LocationProfile is one actor's location configuration: a base point plus
// the radius they serve (farmer) or search (buyer). The address fields are
// display-only; matching uses Point exclusively.
//
// Invariant: IsSet implies Point != nil, and RadiusKm is positive regardless
// of IsSet. A profile is exclusively owned by its actor and carries no
// history; the last update wins.
type LocationProfile struct {
	UserID     uuid.UUID  // The owning actor. One profile per user and role.
	Role       Role       // Whether RadiusKm means delivery or search radius.
	City       string     // Free-text city, display only.
	State      string     // Free-text state, display only.
	PostalCode string     // Free-text postal code, display only.
	Point      *geo.Point // Base coordinates; nil until configured.
	RadiusKm   float64    // Delivery radius (farmer) or search radius (buyer), km.
	IsSet      bool       // True once the actor has configured a location.
	UpdatedAt  time.Time  // Timestamp of the last modification.
}

// NewLocationProfile returns the unset default profile for an actor.
func NewLocationProfile(userID uuid.UUID, role Role) *LocationProfile {
	return &LocationProfile{
		UserID:   userID,
		Role:     role,
		RadiusKm: DefaultRadiusKm,
	}
}

// Reference converts the profile into the viewer side of a geofilter pass.
// An unconfigured profile yields a nil center, which the pipeline treats
// permissively.
func (p *LocationProfile) Reference() geo.Reference {
	if p == nil || !p.IsSet || p.Point == nil {
		radius := DefaultRadiusKm
		if p != nil && p.RadiusKm > 0 {
			radius = p.RadiusKm
		}

		return geo.Reference{RadiusKm: radius}
	}

	return geo.Reference{Center: p.Point, RadiusKm: p.RadiusKm}
}
