package model

import (
	"time"

	"github.com/google/uuid"
)

// EquipmentModel mirrors the 'equipment' table.
type EquipmentModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	OwnerID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string    `gorm:"type:varchar(100);not null"`
	Category       string    `gorm:"type:varchar(50);index"`
	DailyRate      float64   `gorm:"not null"`
	Barter         bool      `gorm:"not null;default:false"`
	OwnerName      string    `gorm:"type:varchar(100)"`
	OwnerPhone     string    `gorm:"type:varchar(20)"`
	Latitude       *float64  `gorm:"type:double precision"`
	Longitude      *float64  `gorm:"type:double precision"`
	RentalRadiusKm *float64  `gorm:"type:double precision"`
	PhotoKey       string    `gorm:"type:varchar(255)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (EquipmentModel) TableName() string {
	return "equipment"
}
