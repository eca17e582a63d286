package repository

import (
	"context"
	"errors"

	"agriconnect/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrEquipmentNotFound is returned when an equipment record is not found.
var ErrEquipmentNotFound = errors.New("equipment not found")

// EquipmentQuery narrows an equipment search. Zero values mean "no constraint".
type EquipmentQuery struct {
	Category   string
	OnlyBarter bool
	OwnerID    uuid.UUID
}

// EquipmentRepository defines the standard operations for equipment persistence.
type EquipmentRepository interface {
	// Create persists a new equipment record.
	Create(ctx context.Context, equipment *entity.Equipment) error

	// FindByID retrieves a single equipment record by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Equipment, error)

	// Find retrieves equipment matching the query, newest first.
	Find(ctx context.Context, query EquipmentQuery) ([]*entity.Equipment, error)

	// Update modifies an existing equipment record.
	Update(ctx context.Context, equipment *entity.Equipment) error

	// Delete removes an equipment record by its ID.
	Delete(ctx context.Context, id uuid.UUID) error
}
