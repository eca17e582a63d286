package repository

import (
	"context"
	"errors"

	"agriconnect/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrBidNotFound is returned when a bid is not found.
var ErrBidNotFound = errors.New("bid not found")

// BidRepository defines the standard operations for bid persistence.
type BidRepository interface {
	// Create persists a new bid.
	Create(ctx context.Context, bid *entity.Bid) error

	// FindByID retrieves a single bid by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error)

	// FindByListing retrieves all bids on a listing, highest amount first.
	FindByListing(ctx context.Context, listingID uuid.UUID) ([]*entity.Bid, error)

	// FindByBuyer retrieves all bids a buyer has placed, newest first.
	FindByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*entity.Bid, error)
}
