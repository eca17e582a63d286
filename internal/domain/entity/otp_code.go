package entity

import (
	"time"

	"github.com/google/uuid"
)

// OtpCodeTTL is how long a one-time code stays redeemable after issue.
const OtpCodeTTL = 5 * time.Minute

// OtpCode is a one-time login code issued to a phone number. Only a bcrypt
// hash of the code is stored; the plaintext exists solely in the SMS.
type OtpCode struct {
	ID         uuid.UUID  // The Global Unique Identifier (GUID) for the code.
	Phone      string     // The phone number the code was sent to.
	CodeHash   string     // Bcrypt hash of the 6-digit code.
	ExpiresAt  time.Time  // The code is invalid after this instant.
	ConsumedAt *time.Time // Set when the code is redeemed; nil while unused.
	CreatedAt  time.Time  // Timestamp of when this code was issued.
}

// Redeemable reports whether the code can still be used at the given instant.
func (c *OtpCode) Redeemable(now time.Time) bool {
	return c.ConsumedAt == nil && now.Before(c.ExpiresAt)
}
