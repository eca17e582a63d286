package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationStatus tracks the delivery outcome of a push notification.
type NotificationStatus string

const (
	// NotificationStatusPending means the notification has not been pushed yet.
	NotificationStatusPending NotificationStatus = "pending"
	// NotificationStatusSent means the push was accepted by FCM.
	NotificationStatusSent NotificationStatus = "sent"
	// NotificationStatusFailed means delivery failed permanently.
	NotificationStatusFailed NotificationStatus = "failed"
)

// Notification records a bid alert pushed to a farmer's device.
type Notification struct {
	ID        uuid.UUID          // The Global Unique Identifier (GUID) for the notification.
	UserID    uuid.UUID          // The recipient (the farmer who owns the listing).
	ListingID uuid.UUID          // The listing the bid landed on.
	BidID     uuid.UUID          // The bid that triggered the alert.
	Title     string             // Push title.
	Body      string             // Push body.
	Status    NotificationStatus // Delivery outcome.
	SentAt    *time.Time         // When the push was accepted; nil until then.
	CreatedAt time.Time          // Timestamp of when this record was created.
}
