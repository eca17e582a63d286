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

// equipmentRepository implements the repository.EquipmentRepository interface.
type equipmentRepository struct {
	db *gorm.DB
}

// NewEquipmentRepository is the constructor for equipmentRepository.
func NewEquipmentRepository(db *gorm.DB) repository.EquipmentRepository {
	return &equipmentRepository{
		db: db,
	}
}

// Create persists a new equipment record.
func (repo *equipmentRepository) Create(ctx context.Context, equipment *entity.Equipment) error {
	equipmentM := fromEquipmentDomain(equipment)

	if err := repo.db.WithContext(ctx).Create(equipmentM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("invalid owner reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create equipment")
	}

	equipment.ID = equipmentM.ID
	equipment.CreatedAt = equipmentM.CreatedAt
	equipment.UpdatedAt = equipmentM.UpdatedAt

	return nil
}

// FindByID retrieves a single equipment record by its unique ID.
func (repo *equipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Equipment, error) {
	var equipmentM model.EquipmentModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&equipmentM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEquipmentNotFound
		}

		return nil, errors.Wrap(err, "failed to find equipment by ID")
	}

	return toEquipmentDomain(&equipmentM), nil
}

// Find retrieves equipment matching the query, newest first.
func (repo *equipmentRepository) Find(ctx context.Context, query repository.EquipmentQuery) ([]*entity.Equipment, error) {
	var equipmentModels []*model.EquipmentModel

	tx := repo.db.WithContext(ctx).Model(&model.EquipmentModel{})

	if query.Category != "" {
		tx = tx.Where("category = ?", query.Category)
	}
	if query.OnlyBarter {
		tx = tx.Where("barter = ?", true)
	}
	if query.OwnerID != uuid.Nil {
		tx = tx.Where("owner_id = ?", query.OwnerID)
	}

	if err := tx.Order("created_at DESC").Find(&equipmentModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find equipment")
	}

	items := make([]*entity.Equipment, 0, len(equipmentModels))
	for _, equipmentM := range equipmentModels {
		items = append(items, toEquipmentDomain(equipmentM))
	}

	return items, nil
}

// Update modifies an existing equipment record.
func (repo *equipmentRepository) Update(ctx context.Context, equipment *entity.Equipment) error {
	equipmentM := fromEquipmentDomain(equipment)

	result := repo.db.WithContext(ctx).
		Model(&model.EquipmentModel{}).
		Where("id = ?", equipment.ID).
		Updates(map[string]any{
			"name":             equipmentM.Name,
			"category":         equipmentM.Category,
			"daily_rate":       equipmentM.DailyRate,
			"barter":           equipmentM.Barter,
			"latitude":         equipmentM.Latitude,
			"longitude":        equipmentM.Longitude,
			"rental_radius_km": equipmentM.RentalRadiusKm,
			"photo_key":        equipmentM.PhotoKey,
		})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update equipment")
	}

	if result.RowsAffected == 0 {
		return repository.ErrEquipmentNotFound
	}

	return nil
}

// Delete removes an equipment record by its ID.
func (repo *equipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.EquipmentModel{})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete equipment")
	}

	if result.RowsAffected == 0 {
		return repository.ErrEquipmentNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toEquipmentDomain(data *model.EquipmentModel) *entity.Equipment {
	if data == nil {
		return nil
	}

	return &entity.Equipment{
		ID:             data.ID,
		OwnerID:        data.OwnerID,
		Name:           data.Name,
		Category:       data.Category,
		DailyRate:      data.DailyRate,
		Barter:         data.Barter,
		OwnerName:      data.OwnerName,
		OwnerPhone:     data.OwnerPhone,
		Location:       toGeoPoint(data.Latitude, data.Longitude),
		RentalRadiusKm: data.RentalRadiusKm,
		PhotoKey:       data.PhotoKey,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}

func fromEquipmentDomain(data *entity.Equipment) *model.EquipmentModel {
	if data == nil {
		return nil
	}

	latitude, longitude := fromGeoPoint(data.Location)

	return &model.EquipmentModel{
		ID:             data.ID,
		OwnerID:        data.OwnerID,
		Name:           data.Name,
		Category:       data.Category,
		DailyRate:      data.DailyRate,
		Barter:         data.Barter,
		OwnerName:      data.OwnerName,
		OwnerPhone:     data.OwnerPhone,
		Latitude:       latitude,
		Longitude:      longitude,
		RentalRadiusKm: data.RentalRadiusKm,
		PhotoKey:       data.PhotoKey,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}
