package model

import (
	"time"

	"github.com/google/uuid"
)

// LocationProfileModel mirrors the 'location_profiles' table. One row per
// (user_id, role) pair; coordinates are nullable until the actor sets them.
type LocationProfileModel struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Role       string    `gorm:"type:varchar(20);primaryKey"`
	City       string    `gorm:"type:varchar(100)"`
	State      string    `gorm:"type:varchar(100)"`
	PostalCode string    `gorm:"type:varchar(20)"`
	Latitude   *float64  `gorm:"type:double precision"`
	Longitude  *float64  `gorm:"type:double precision"`
	RadiusKm   float64   `gorm:"not null"`
	IsSet      bool      `gorm:"not null;default:false"`
	UpdatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (LocationProfileModel) TableName() string {
	return "location_profiles"
}
