package entity

import (
	"time"

	"agriconnect/internal/domain/geo"

	"github.com/google/uuid"
)

// Listing is a crop lot a farmer puts up for bidding.
type Listing struct {
	ID               uuid.UUID  // The Global Unique Identifier (GUID) for the listing.
	FarmerID         uuid.UUID  // The farmer who created the listing.
	Crop             string     // Crop name, e.g. "wheat", "onion".
	Unit             string     // Quantity unit, defaults to "kg".
	Quantity         float64    // Amount offered, in Unit.
	MinPrice         float64    // Minimum acceptable price per Unit.
	FarmerName       string     // Display name of the farmer.
	FarmerPhone      string     // Contact phone, may be empty.
	Location         *geo.Point // The lot's pickup point; nil if the farmer has no location set.
	DeliveryRadiusKm *float64   // How far the farmer delivers; nil means no own limit.
	PhotoKey         string     // Blob storage key of the crop photo, empty if none.
	CreatedAt        time.Time  // Timestamp of when this listing was created.
	UpdatedAt        time.Time  // Timestamp of the last modification.
}

// GeoPoint implements geo.Item.
func (l *Listing) GeoPoint() *geo.Point {
	return l.Location
}

// GeoRadiusKm implements geo.Item; the listing's own radius is the farmer's
// delivery radius.
func (l *Listing) GeoRadiusKm() *float64 {
	return l.DeliveryRadiusKm
}

// ListingWithDistance bundles a listing with its transient distance from the
// viewer, in km rounded to one decimal. Nil when either side has no
// coordinates. Never persisted; recomputed per query.
type ListingWithDistance struct {
	*Listing
	DistanceKm *float64 `json:"distance_km"`
}
