package entity

import (
	"time"

	"agriconnect/internal/domain/geo"

	"github.com/google/uuid"
)

// Bid is a buyer's offer on a listing.
type Bid struct {
	ID        uuid.UUID  // The Global Unique Identifier (GUID) for the bid.
	ListingID uuid.UUID  // The listing being bid on.
	BuyerID   uuid.UUID  // The buyer who placed the bid.
	BuyerName string     // Display name of the buyer.
	Amount    float64    // Offered price per listing unit.
	Location  *geo.Point // The buyer's base point at bid time; nil if unset.
	CreatedAt time.Time  // Timestamp of when this bid was placed.
}

// GeoPoint implements geo.Item.
func (b *Bid) GeoPoint() *geo.Point {
	return b.Location
}

// GeoRadiusKm implements geo.Item; bids carry no radius of their own.
func (b *Bid) GeoRadiusKm() *float64 {
	return nil
}

// BidWithDistance bundles a bid with its transient distance from the viewer.
type BidWithDistance struct {
	*Bid
	DistanceKm *float64 `json:"distance_km"`
}
