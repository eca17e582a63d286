package usecase

import (
	"context"

	"agriconnect/internal/domain/entity"

	"github.com/google/uuid"
)

// PlaceBidInput represents the input for placing a bid on a listing
type PlaceBidInput struct {
	ListingID uuid.UUID `json:"listing_id"`
	Amount    float64   `json:"amount"`
}

// BidUsecase defines the interface for bidding use cases
type BidUsecase interface {
	// PlaceBid records a buyer's offer on a listing. When both sides have
	// coordinates the buyer must be inside the listing's delivery range;
	// when either side has none the bid is allowed through. A bid-placed
	// event is published for the notification worker.
	PlaceBid(ctx context.Context, buyerID uuid.UUID, input *PlaceBidInput) (*entity.Bid, error)

	// ListForListing returns all bids on a listing, highest amount first.
	// Only the listing's farmer may call it.
	ListForListing(ctx context.Context, farmerID, listingID uuid.UUID) ([]*entity.Bid, error)

	// ListForBuyer returns the buyer's own bids annotated with the distance
	// from the buyer's profile point to each listing.
	ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]*entity.BidWithDistance, error)

	// ListNotifications returns the caller's recorded bid alerts, newest
	// first.
	ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Notification, error)
}
