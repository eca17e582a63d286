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
	"gorm.io/gorm/clause"
)

// profileRepository implements the repository.ProfileRepository interface.
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository is the constructor for profileRepository.
func NewProfileRepository(db *gorm.DB) repository.ProfileRepository {
	return &profileRepository{
		db: db,
	}
}

// FindByUser retrieves the profile for a user in a role.
func (repo *profileRepository) FindByUser(ctx context.Context, userID uuid.UUID, role entity.Role) (*entity.LocationProfile, error) {
	var profileM model.LocationProfileModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND role = ?", userID, role.String()).
		First(&profileM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to find location profile")
	}

	return toProfileDomain(&profileM), nil
}

// Save persists the profile, replacing the stored row for the (user, role) pair.
func (repo *profileRepository) Save(ctx context.Context, profile *entity.LocationProfile) error {
	profileM := fromProfileDomain(profile)

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "role"}},
			UpdateAll: true,
		}).
		Create(profileM).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to save location profile")
	}

	profile.UpdatedAt = profileM.UpdatedAt

	return nil
}

// --- Mapper Functions ---

func toProfileDomain(data *model.LocationProfileModel) *entity.LocationProfile {
	if data == nil {
		return nil
	}

	return &entity.LocationProfile{
		UserID:     data.UserID,
		Role:       entity.Role(data.Role),
		City:       data.City,
		State:      data.State,
		PostalCode: data.PostalCode,
		Point:      toGeoPoint(data.Latitude, data.Longitude),
		RadiusKm:   data.RadiusKm,
		IsSet:      data.IsSet,
		UpdatedAt:  data.UpdatedAt,
	}
}

func fromProfileDomain(data *entity.LocationProfile) *model.LocationProfileModel {
	if data == nil {
		return nil
	}

	latitude, longitude := fromGeoPoint(data.Point)

	return &model.LocationProfileModel{
		UserID:     data.UserID,
		Role:       data.Role.String(),
		City:       data.City,
		State:      data.State,
		PostalCode: data.PostalCode,
		Latitude:   latitude,
		Longitude:  longitude,
		RadiusKm:   data.RadiusKm,
		IsSet:      data.IsSet,
		UpdatedAt:  data.UpdatedAt,
	}
}
