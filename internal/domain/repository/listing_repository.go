package repository

import (
	"context"
	"errors"

	"agriconnect/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrListingNotFound is returned when a listing is not found.
var ErrListingNotFound = errors.New("listing not found")

// ListingQuery narrows a listing search. Zero values mean "no constraint".
type ListingQuery struct {
	Crop     string // Case-insensitive substring match on the crop name.
	FarmerID uuid.UUID
	Page     int
	PageSize int
}

// ListingRepository defines the standard operations for listing persistence.
type ListingRepository interface {
	// Create persists a new listing.
	Create(ctx context.Context, listing *entity.Listing) error

	// FindByID retrieves a single listing by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error)

	// Find retrieves listings matching the query, newest first.
	Find(ctx context.Context, query ListingQuery) ([]*entity.Listing, error)

	// Update modifies an existing listing.
	Update(ctx context.Context, listing *entity.Listing) error

	// Delete removes a listing by its ID.
	Delete(ctx context.Context, id uuid.UUID) error
}
