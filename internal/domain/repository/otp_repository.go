package repository

import (
	"context"
	"errors"

	"agriconnect/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrOtpNotFound is returned when no redeemable code exists for a phone.
var ErrOtpNotFound = errors.New("otp code not found")

// OtpRepository defines persistence for one-time login codes.
type OtpRepository interface {
	// Create persists a newly issued code.
	Create(ctx context.Context, code *entity.OtpCode) error

	// FindLatestRedeemable retrieves the most recently issued code for a
	// phone that is unconsumed and unexpired. Returns ErrOtpNotFound if
	// there is none.
	FindLatestRedeemable(ctx context.Context, phone string) (*entity.OtpCode, error)

	// Consume marks a code as redeemed. Returns ErrOtpNotFound if the code
	// was already consumed, so a code can never be redeemed twice.
	Consume(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes codes whose expiry has passed. Used by periodic
	// cleanup; returns the number of rows removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
