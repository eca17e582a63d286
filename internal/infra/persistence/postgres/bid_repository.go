package postgres

import (
	"context"

	"agriconnect/internal/domain/entity"
	domainerrors "agriconnect/internal/domain/errors"
	"agriconnect/internal/domain/repository"
	"agriconnect/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// bidRepository implements the repository.BidRepository interface.
type bidRepository struct {
	db *gorm.DB
}

// NewBidRepository is the constructor for bidRepository.
func NewBidRepository(db *gorm.DB) repository.BidRepository {
	return &bidRepository{
		db: db,
	}
}

// Create persists a new bid.
func (repo *bidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	bidM := fromBidDomain(bid)

	if err := repo.db.WithContext(ctx).Create(bidM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrListingNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create bid")
	}

	bid.ID = bidM.ID
	bid.CreatedAt = bidM.CreatedAt

	return nil
}

// FindByID retrieves a single bid by its unique ID.
func (repo *bidRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	var bidM model.BidModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&bidM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBidNotFound
		}

		return nil, errors.Wrap(err, "failed to find bid by ID")
	}

	return toBidDomain(&bidM), nil
}

// FindByListing retrieves all bids on a listing, highest amount first.
func (repo *bidRepository) FindByListing(ctx context.Context, listingID uuid.UUID) ([]*entity.Bid, error) {
	var bidModels []*model.BidModel

	if err := repo.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("amount DESC, created_at ASC").
		Find(&bidModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find bids by listing")
	}

	bids := make([]*entity.Bid, 0, len(bidModels))
	for _, bidM := range bidModels {
		bids = append(bids, toBidDomain(bidM))
	}

	return bids, nil
}

// FindByBuyer retrieves all bids a buyer has placed, newest first.
func (repo *bidRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*entity.Bid, error) {
	var bidModels []*model.BidModel

	if err := repo.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&bidModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find bids by buyer")
	}

	bids := make([]*entity.Bid, 0, len(bidModels))
	for _, bidM := range bidModels {
		bids = append(bids, toBidDomain(bidM))
	}

	return bids, nil
}

// --- Mapper Functions ---

func toBidDomain(data *model.BidModel) *entity.Bid {
	if data == nil {
		return nil
	}

	return &entity.Bid{
		ID:        data.ID,
		ListingID: data.ListingID,
		BuyerID:   data.BuyerID,
		BuyerName: data.BuyerName,
		Amount:    data.Amount,
		Location:  toGeoPoint(data.Latitude, data.Longitude),
		CreatedAt: data.CreatedAt,
	}
}

func fromBidDomain(data *entity.Bid) *model.BidModel {
	if data == nil {
		return nil
	}

	latitude, longitude := fromGeoPoint(data.Location)

	return &model.BidModel{
		ID:        data.ID,
		ListingID: data.ListingID,
		BuyerID:   data.BuyerID,
		BuyerName: data.BuyerName,
		Amount:    data.Amount,
		Latitude:  latitude,
		Longitude: longitude,
		CreatedAt: data.CreatedAt,
	}
}
