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

// listingRepository implements the repository.ListingRepository interface.
type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository is the constructor for listingRepository.
func NewListingRepository(db *gorm.DB) repository.ListingRepository {
	return &listingRepository{
		db: db,
	}
}

// Create persists a new listing.
func (repo *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	listingM := fromListingDomain(listing)

	if err := repo.db.WithContext(ctx).Create(listingM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("invalid farmer reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create listing")
	}

	listing.ID = listingM.ID
	listing.CreatedAt = listingM.CreatedAt
	listing.UpdatedAt = listingM.UpdatedAt

	return nil
}

// FindByID retrieves a single listing by its unique ID.
func (repo *listingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	var listingM model.ListingModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&listingM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrListingNotFound
		}

		return nil, errors.Wrap(err, "failed to find listing by ID")
	}

	return toListingDomain(&listingM), nil
}

// Find retrieves listings matching the query, newest first.
func (repo *listingRepository) Find(ctx context.Context, query repository.ListingQuery) ([]*entity.Listing, error) {
	var listingModels []*model.ListingModel

	tx := repo.db.WithContext(ctx).Model(&model.ListingModel{})

	if query.Crop != "" {
		tx = tx.Where("crop ILIKE ?", "%"+query.Crop+"%")
	}
	if query.FarmerID != uuid.Nil {
		tx = tx.Where("farmer_id = ?", query.FarmerID)
	}
	if query.PageSize > 0 {
		offset := 0
		if query.Page > 1 {
			offset = (query.Page - 1) * query.PageSize
		}
		tx = tx.Offset(offset).Limit(query.PageSize)
	}

	if err := tx.Order("created_at DESC").Find(&listingModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find listings")
	}

	listings := make([]*entity.Listing, 0, len(listingModels))
	for _, listingM := range listingModels {
		listings = append(listings, toListingDomain(listingM))
	}

	return listings, nil
}

// Update modifies an existing listing.
func (repo *listingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	listingM := fromListingDomain(listing)

	result := repo.db.WithContext(ctx).
		Model(&model.ListingModel{}).
		Where("id = ?", listing.ID).
		Updates(map[string]any{
			"crop":               listingM.Crop,
			"unit":               listingM.Unit,
			"quantity":           listingM.Quantity,
			"min_price":          listingM.MinPrice,
			"latitude":           listingM.Latitude,
			"longitude":          listingM.Longitude,
			"delivery_radius_km": listingM.DeliveryRadiusKm,
			"photo_key":          listingM.PhotoKey,
		})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update listing")
	}

	if result.RowsAffected == 0 {
		return repository.ErrListingNotFound
	}

	return nil
}

// Delete removes a listing by its ID.
func (repo *listingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.ListingModel{})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete listing")
	}

	if result.RowsAffected == 0 {
		return repository.ErrListingNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toListingDomain(data *model.ListingModel) *entity.Listing {
	if data == nil {
		return nil
	}

	return &entity.Listing{
		ID:               data.ID,
		FarmerID:         data.FarmerID,
		Crop:             data.Crop,
		Unit:             data.Unit,
		Quantity:         data.Quantity,
		MinPrice:         data.MinPrice,
		FarmerName:       data.FarmerName,
		FarmerPhone:      data.FarmerPhone,
		Location:         toGeoPoint(data.Latitude, data.Longitude),
		DeliveryRadiusKm: data.DeliveryRadiusKm,
		PhotoKey:         data.PhotoKey,
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
}

func fromListingDomain(data *entity.Listing) *model.ListingModel {
	if data == nil {
		return nil
	}

	latitude, longitude := fromGeoPoint(data.Location)

	return &model.ListingModel{
		ID:               data.ID,
		FarmerID:         data.FarmerID,
		Crop:             data.Crop,
		Unit:             data.Unit,
		Quantity:         data.Quantity,
		MinPrice:         data.MinPrice,
		FarmerName:       data.FarmerName,
		FarmerPhone:      data.FarmerPhone,
		Latitude:         latitude,
		Longitude:        longitude,
		DeliveryRadiusKm: data.DeliveryRadiusKm,
		PhotoKey:         data.PhotoKey,
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
}
