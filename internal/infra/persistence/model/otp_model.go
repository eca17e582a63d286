package model

import (
	"time"

	"github.com/google/uuid"
)

// OtpCodeModel mirrors the 'otp_codes' table. Only the bcrypt hash of the
// code is ever stored.
type OtpCodeModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Phone      string    `gorm:"type:varchar(20);not null;index"`
	CodeHash   string    `gorm:"type:varchar(100);not null"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (OtpCodeModel) TableName() string {
	return "otp_codes"
}
