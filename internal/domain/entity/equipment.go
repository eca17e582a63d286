package entity

import (
	"time"

	"agriconnect/internal/domain/geo"

	"github.com/google/uuid"
)

// Equipment is a machine or tool offered for rental or barter.
type Equipment struct {
	ID             uuid.UUID  // The Global Unique Identifier (GUID) for the equipment.
	OwnerID        uuid.UUID  // The farmer who owns the equipment.
	Name           string     // Equipment name, e.g. "tractor".
	Category       string     // Category, e.g. "tillage", "harvesting".
	DailyRate      float64    // Rental price per day; 0 for barter-only offers.
	Barter         bool       // True if the owner accepts barter instead of cash.
	OwnerName      string     // Display name of the owner.
	OwnerPhone     string     // Contact phone, may be empty.
	Location       *geo.Point // Where the equipment is stationed; nil if unknown.
	RentalRadiusKm *float64   // How far the owner is willing to serve; nil means no own limit.
	PhotoKey       string     // Blob storage key of the equipment photo, empty if none.
	CreatedAt      time.Time  // Timestamp of when this equipment was added.
	UpdatedAt      time.Time  // Timestamp of the last modification.
}

// GeoPoint implements geo.Item.
func (e *Equipment) GeoPoint() *geo.Point {
	return e.Location
}

// GeoRadiusKm implements geo.Item; the equipment's own radius is the owner's
// rental service radius.
func (e *Equipment) GeoRadiusKm() *float64 {
	return e.RentalRadiusKm
}

// EquipmentWithDistance bundles equipment with its transient distance from
// the viewer.
type EquipmentWithDistance struct {
	*Equipment
	DistanceKm *float64 `json:"distance_km"`
}
