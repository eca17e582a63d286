package repository

import (
	"context"
	"errors"

	"agriconnect/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrNotificationNotFound is returned when a notification is not found.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository defines persistence for bid alert records.
type NotificationRepository interface {
	// Create persists a new notification record.
	Create(ctx context.Context, notification *entity.Notification) error

	// UpdateStatus transitions a notification's delivery status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.NotificationStatus) error

	// FindByUser retrieves a user's notifications, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Notification, error)
}
