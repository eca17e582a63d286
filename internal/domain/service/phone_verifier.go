package service

import (
	"context"
)

// VerifiedPhone represents the outcome of a Firebase phone ID token verification
type VerifiedPhone struct {
	UID         string // Firebase user UID
	PhoneNumber string // E.164 phone number attested by Firebase
	Name        string // Display name if present on the Firebase user
}

// PhoneVerifier defines the interface for verifying phone-auth ID tokens.
// This is used for Firebase Phone Sign-In where the client sends an ID token
// after completing the SMS challenge on-device.
type PhoneVerifier interface {
	// VerifyIDToken verifies a phone-auth ID token and returns the attested phone identity
	VerifyIDToken(ctx context.Context, idToken string) (*VerifiedPhone, error)
}
