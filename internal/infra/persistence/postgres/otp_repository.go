package postgres

import (
	"context"
	"time"

	"agriconnect/internal/domain/entity"
	domainerrors "agriconnect/internal/domain/errors"
	"agriconnect/internal/domain/repository"
	"agriconnect/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// otpRepository implements the repository.OtpRepository interface.
type otpRepository struct {
	db *gorm.DB
}

// NewOtpRepository is the constructor for otpRepository.
func NewOtpRepository(db *gorm.DB) repository.OtpRepository {
	return &otpRepository{
		db: db,
	}
}

// Create persists a newly issued code.
func (repo *otpRepository) Create(ctx context.Context, code *entity.OtpCode) error {
	codeM := fromOtpDomain(code)

	if err := repo.db.WithContext(ctx).Create(codeM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create otp code")
	}

	code.ID = codeM.ID
	code.CreatedAt = codeM.CreatedAt

	return nil
}

// FindLatestRedeemable retrieves the newest unconsumed, unexpired code for a phone.
func (repo *otpRepository) FindLatestRedeemable(ctx context.Context, phone string) (*entity.OtpCode, error) {
	var codeM model.OtpCodeModel

	if err := repo.db.WithContext(ctx).
		Where("phone = ? AND consumed_at IS NULL AND expires_at > ?", phone, time.Now()).
		Order("created_at DESC").
		First(&codeM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOtpNotFound
		}

		return nil, errors.Wrap(err, "failed to find redeemable otp code")
	}

	return toOtpDomain(&codeM), nil
}

// Consume marks a code as redeemed. The consumed_at guard makes redemption
// first-writer-wins under concurrent attempts.
func (repo *otpRepository) Consume(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.OtpCodeModel{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", time.Now())

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to consume otp code")
	}

	if result.RowsAffected == 0 {
		return repository.ErrOtpNotFound
	}

	return nil
}

// DeleteExpired removes codes whose expiry has passed.
func (repo *otpRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&model.OtpCodeModel{})

	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete expired otp codes")
	}

	return result.RowsAffected, nil
}

// --- Mapper Functions ---

func toOtpDomain(data *model.OtpCodeModel) *entity.OtpCode {
	if data == nil {
		return nil
	}

	return &entity.OtpCode{
		ID:         data.ID,
		Phone:      data.Phone,
		CodeHash:   data.CodeHash,
		ExpiresAt:  data.ExpiresAt,
		ConsumedAt: data.ConsumedAt,
		CreatedAt:  data.CreatedAt,
	}
}

func fromOtpDomain(data *entity.OtpCode) *model.OtpCodeModel {
	if data == nil {
		return nil
	}

	return &model.OtpCodeModel{
		ID:         data.ID,
		Phone:      data.Phone,
		CodeHash:   data.CodeHash,
		ExpiresAt:  data.ExpiresAt,
		ConsumedAt: data.ConsumedAt,
		CreatedAt:  data.CreatedAt,
	}
}
