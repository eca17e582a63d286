package repository

import (
	"context"
	"errors"

	"agriconnect/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrProfileNotFound is returned when no location profile has been stored
// for an actor yet. Callers usually substitute the unset default profile.
var ErrProfileNotFound = errors.New("location profile not found")

// ProfileRepository defines persistence for one actor's location profile.
// There is at most one profile per (user, role) pair; Save is an upsert and
// a full replace of the stored row, never a partial write.
type ProfileRepository interface {
	// FindByUser retrieves the profile for a user in a role.
	// Returns ErrProfileNotFound if none was ever saved.
	FindByUser(ctx context.Context, userID uuid.UUID, role entity.Role) (*entity.LocationProfile, error)

	// Save persists the profile, inserting or replacing the existing row.
	// The write is synchronous: once Save returns nil, a subsequent
	// FindByUser from any process observes the new value.
	Save(ctx context.Context, profile *entity.LocationProfile) error
}
