package usecase

import (
	"context"
	"io"

	"agriconnect/internal/domain/entity"
	"agriconnect/internal/domain/geo"

	"github.com/google/uuid"
)

// CreateListingInput represents the input for creating a produce listing
type CreateListingInput struct {
	Crop             string   `json:"crop"`
	Unit             string   `json:"unit,omitempty"`
	Quantity         float64  `json:"quantity"`
	MinPrice         float64  `json:"min_price"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	DeliveryRadiusKm *float64 `json:"delivery_radius_km,omitempty"`
}

// ListListingsInput represents the query for browsing listings
type ListListingsInput struct {
	Crop       string   `json:"crop,omitempty"` // Substring match on crop name
	Page       int      `json:"page,omitempty"`
	PageSize   int      `json:"page_size,omitempty"`
	Gate       geo.Gate `json:"-"`           // Which radius gates the geofilter
	IncludeAll bool     `json:"include_all"` // Skip the geofilter entirely
}

// ListingUsecase defines the interface for produce listing use cases
type ListingUsecase interface {
	// CreateListing publishes a new crop lot for the farmer. When the input
	// carries no coordinates the farmer's profile point is used.
	CreateListing(ctx context.Context, farmerID uuid.UUID, input *CreateListingInput) (*entity.Listing, error)

	// GetListing retrieves a single listing by ID.
	GetListing(ctx context.Context, id uuid.UUID) (*entity.Listing, error)

	// ListListings returns listings matching the query, geofiltered against
	// the viewer's location profile and annotated with distance,
	// nearest first.
	ListListings(ctx context.Context, viewerID uuid.UUID, input *ListListingsInput) ([]*entity.ListingWithDistance, error)

	// DeleteListing removes a listing. Only the owning farmer may delete.
	DeleteListing(ctx context.Context, farmerID, listingID uuid.UUID) error

	// AttachPhoto stores a crop photo for a listing and returns the stored
	// key. Only the owning farmer may attach.
	AttachPhoto(ctx context.Context, farmerID, listingID uuid.UUID, contentType string, photo io.Reader) (string, error)

	// ShareQR renders a QR code PNG that links to the listing.
	ShareQR(ctx context.Context, listingID uuid.UUID) ([]byte, error)
}
