package model

import (
	"time"

	"github.com/google/uuid"
)

// ListingModel mirrors the 'listings' table. Farmer name and phone are
// denormalized at write time so list queries need no join.
type ListingModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	FarmerID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Crop             string    `gorm:"type:varchar(100);not null;index"`
	Unit             string    `gorm:"type:varchar(20);not null"`
	Quantity         float64   `gorm:"not null"`
	MinPrice         float64   `gorm:"not null"`
	FarmerName       string    `gorm:"type:varchar(100)"`
	FarmerPhone      string    `gorm:"type:varchar(20)"`
	Latitude         *float64  `gorm:"type:double precision"`
	Longitude        *float64  `gorm:"type:double precision"`
	DeliveryRadiusKm *float64  `gorm:"type:double precision"`
	PhotoKey         string    `gorm:"type:varchar(255)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (ListingModel) TableName() string {
	return "listings"
}
