package model

import (
	"time"

	"github.com/google/uuid"
)

// BidModel mirrors the 'bids' table. The buyer's location is frozen at bid
// time so later profile edits do not rewrite history.
type BidModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index"`
	BuyerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	BuyerName string    `gorm:"type:varchar(100)"`
	Amount    float64   `gorm:"not null"`
	Latitude  *float64  `gorm:"type:double precision"`
	Longitude *float64  `gorm:"type:double precision"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (BidModel) TableName() string {
	return "bids"
}
