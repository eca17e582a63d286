// Package model contains the GORM table mappings for the PostgreSQL schema.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v7().
// Accounts are keyed by verified phone number.
type UserModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Phone       string    `gorm:"type:varchar(20);unique;not null"`
	Name        string    `gorm:"type:varchar(100)"`
	Role        string    `gorm:"type:varchar(20);not null"`
	DeviceToken string    `gorm:"type:varchar(512)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
