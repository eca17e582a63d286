// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core identity in the system. Accounts are keyed by verified
// phone number; name and role are filled in on first login.
type User struct {
	ID        uuid.UUID // The Global Unique Identifier (GUID) for the user.
	Phone     string    // E.164 phone number, verified through OTP or Firebase.
	Name      string    // The user's display name. May be empty until provided.
	Role      Role      // The marketplace role (farmer or buyer).
	// DeviceToken is the FCM registration token of the last signed-in
	// device. Empty until a client registers one at login.
	DeviceToken string
	CreatedAt   time.Time // Timestamp of when this account was created.
	UpdatedAt   time.Time // Timestamp of the last modification.
}
