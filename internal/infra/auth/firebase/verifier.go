// Package firebase verifies Firebase phone sign-in ID tokens.
package firebase

import (
	"context"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"agriconnect/config"
	"agriconnect/internal/domain/service"
)

// phoneVerifier implements service.PhoneVerifier on top of the Firebase
// Admin SDK. The client completes the SMS challenge on-device; the server
// only ever sees the resulting ID token.
type phoneVerifier struct {
	client *firebaseauth.Client
	logger *slog.Logger
}

// NewPhoneVerifier creates a verifier from the configured Firebase project.
func NewPhoneVerifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.PhoneVerifier, error) {
	if cfg.Firebase == nil {
		return nil, errors.New("firebase configuration is required")
	}

	var opts []option.ClientOption
	if cfg.Firebase.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.Firebase.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get Firebase auth client")
	}

	return &phoneVerifier{client: client, logger: logger}, nil
}

// VerifyIDToken verifies the token signature against the project's public
// keys and extracts the attested phone identity.
func (v *phoneVerifier) VerifyIDToken(ctx context.Context, idToken string) (*service.VerifiedPhone, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to verify ID token")
	}

	phone, _ := token.Claims["phone_number"].(string)
	if phone == "" {
		return nil, errors.New("ID token carries no phone number claim")
	}

	name, _ := token.Claims["name"].(string)

	v.logger.Debug("Verified Firebase phone token", slog.String("uid", token.UID))

	return &service.VerifiedPhone{
		UID:         token.UID,
		PhoneNumber: phone,
		Name:        name,
	}, nil
}
