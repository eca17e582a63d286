// Package usecase defines the application's use case interfaces and their
// input/output types. Implementations live in the impl subpackage.
package usecase

import (
	"context"

	"agriconnect/internal/domain/entity"
)

// SendOtpInput represents the input for requesting a login code
type SendOtpInput struct {
	Phone string `json:"phone"`
}

// VerifyOtpInput represents the input for redeeming a login code
type VerifyOtpInput struct {
	Phone       string `json:"phone"`
	Code        string `json:"code"`
	Name        string `json:"name,omitempty"`
	Role        string `json:"role"`
	DeviceToken string `json:"device_token,omitempty"` // FCM token of the signing-in device
}

// FirebaseLoginInput represents the input for the Firebase phone sign-in flow
type FirebaseLoginInput struct {
	IDToken     string `json:"id_token"`
	Name        string `json:"name,omitempty"`
	Role        string `json:"role"`
	DeviceToken string `json:"device_token,omitempty"` // FCM token of the signing-in device
}

// AuthOutput bundles the authenticated user with a fresh token pair
type AuthOutput struct {
	User         *entity.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

// AuthUsecase defines the interface for phone-based authentication use cases
type AuthUsecase interface {
	// SendOtp issues a one-time login code for a phone number and hands it
	// to the SMS delivery pipeline. The code itself never leaves the server
	// in plaintext except through that pipeline.
	SendOtp(ctx context.Context, input *SendOtpInput) error

	// VerifyOtp redeems a previously issued code, creating the user on
	// first login, and returns a token pair.
	VerifyOtp(ctx context.Context, input *VerifyOtpInput) (*AuthOutput, error)

	// FirebaseLogin verifies a Firebase phone ID token, creating the user
	// on first login, and returns a token pair.
	FirebaseLogin(ctx context.Context, input *FirebaseLoginInput) (*AuthOutput, error)

	// Refresh exchanges a valid refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*AuthOutput, error)
}
