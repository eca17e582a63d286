package usecase

import (
	"context"

	"agriconnect/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateEquipmentInput represents the input for offering equipment
type CreateEquipmentInput struct {
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	DailyRate      float64  `json:"daily_rate"`
	Barter         bool     `json:"barter"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	RentalRadiusKm *float64 `json:"rental_radius_km,omitempty"`
}

// ListEquipmentInput represents the query for browsing equipment
type ListEquipmentInput struct {
	Category   string `json:"category,omitempty"`
	OnlyBarter bool   `json:"only_barter,omitempty"`
}

// EquipmentUsecase defines the interface for equipment sharing use cases
type EquipmentUsecase interface {
	// CreateEquipment offers a machine for rental or barter. When the input
	// carries no coordinates the owner's profile point is used.
	CreateEquipment(ctx context.Context, ownerID uuid.UUID, input *CreateEquipmentInput) (*entity.Equipment, error)

	// ListEquipment returns equipment matching the query, gated by each
	// item's own rental radius and annotated with distance, nearest first.
	ListEquipment(ctx context.Context, viewerID uuid.UUID, input *ListEquipmentInput) ([]*entity.EquipmentWithDistance, error)
}
