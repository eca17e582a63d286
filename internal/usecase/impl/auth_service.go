// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"time"

	"agriconnect/config"
	deliverycontext "agriconnect/internal/delivery/context"
	"agriconnect/internal/domain/entity"
	domainerrors "agriconnect/internal/domain/errors"
	"agriconnect/internal/domain/repository"
	"agriconnect/internal/domain/service"
	"agriconnect/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// otpResendInterval is the minimum gap between two codes for one phone.
const otpResendInterval = time.Minute

var phonePattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager     repository.TransactionManager
	otpRepo       repository.OtpRepository
	userRepo      repository.UserRepository
	hasher        service.CodeHasher
	tokenService  service.TokenService
	phoneVerifier service.PhoneVerifier
	publisher     service.EventPublisher
	otpTTL        time.Duration
	logger        *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	OtpRepo       repository.OtpRepository
	UserRepo      repository.UserRepository
	Hasher        service.CodeHasher
	TokenService  service.TokenService
	PhoneVerifier service.PhoneVerifier `optional:"true"`
	Publisher     service.EventPublisher
	Config        *config.Config
	Logger        *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	otpTTL := entity.OtpCodeTTL
	if params.Config != nil && params.Config.Auth != nil && params.Config.Auth.OtpTTL > 0 {
		otpTTL = params.Config.Auth.OtpTTL
	}

	return &authService{
		txManager:     params.TxManager,
		otpRepo:       params.OtpRepo,
		userRepo:      params.UserRepo,
		hasher:        params.Hasher,
		tokenService:  params.TokenService,
		phoneVerifier: params.PhoneVerifier,
		publisher:     params.Publisher,
		otpTTL:        otpTTL,
		logger:        params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SendOtp issues a fresh one-time code and hands it to the SMS pipeline.
func (srv *authService) SendOtp(ctx context.Context, input *usecase.SendOtpInput) error {
	if !phonePattern.MatchString(input.Phone) {
		return domainerrors.ErrInvalidPhone.WrapMessage("phone must be E.164")
	}

	now := time.Now()

	latest, err := srv.otpRepo.FindLatestRedeemable(ctx, input.Phone)
	if err != nil && !errors.Is(err, repository.ErrOtpNotFound) {
		return errors.Wrap(err, "failed to look up previous code")
	}
	if err == nil && now.Sub(latest.CreatedAt) < otpResendInterval {
		return domainerrors.ErrOtpThrottled.WrapMessage("code was issued moments ago")
	}

	code, err := generateOtpCode()
	if err != nil {
		return errors.Wrap(err, "failed to generate code")
	}

	hash, err := srv.hasher.Hash(code)
	if err != nil {
		return errors.Wrap(err, "failed to hash code")
	}

	otp := &entity.OtpCode{
		ID:        uuid.New(),
		Phone:     input.Phone,
		CodeHash:  hash,
		ExpiresAt: now.Add(srv.otpTTL),
		CreatedAt: now,
	}
	if err := srv.otpRepo.Create(ctx, otp); err != nil {
		return errors.Wrap(err, "failed to store code")
	}

	event := &service.MarketEvent{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		Type:      service.EventOtpRequested,
		Phone:     input.Phone,
		SmsBody:   fmt.Sprintf("Your AgriConnect login code is %s. It expires in %d minutes.", code, int(srv.otpTTL.Minutes())),
	}
	if err := srv.publisher.PublishMarketEvent(ctx, event); err != nil {
		return errors.Wrap(err, "failed to publish otp event")
	}

	srv.log(ctx).Info("Issued login code", slog.String("phone", maskPhone(input.Phone)))

	return nil
}

// VerifyOtp redeems a code, upserts the user and returns a token pair.
func (srv *authService) VerifyOtp(ctx context.Context, input *usecase.VerifyOtpInput) (*usecase.AuthOutput, error) {
	if !phonePattern.MatchString(input.Phone) {
		return nil, domainerrors.ErrInvalidPhone.WrapMessage("phone must be E.164")
	}

	role := entity.Role(input.Role)
	if !role.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("role must be farmer or buyer")
	}

	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		otpRepo := repoFactory.NewOtpRepository()

		code, err := otpRepo.FindLatestRedeemable(ctx, input.Phone)
		if errors.Is(err, repository.ErrOtpNotFound) {
			return domainerrors.ErrOtpInvalid.WrapMessage("no redeemable code for this phone")
		}
		if err != nil {
			return errors.Wrap(err, "failed to find code")
		}

		if !srv.hasher.Check(input.Code, code.CodeHash) {
			return domainerrors.ErrOtpInvalid.WrapMessage("code mismatch")
		}

		// Consume fails if another request redeemed the code first, so a
		// code can never mint two sessions.
		if err := otpRepo.Consume(ctx, code.ID); err != nil {
			if errors.Is(err, repository.ErrOtpNotFound) {
				return domainerrors.ErrOtpInvalid.WrapMessage("code already used")
			}

			return errors.Wrap(err, "failed to consume code")
		}

		userRepo := repoFactory.NewUserRepository()
		user, err = upsertUserByPhone(ctx, userRepo, input.Phone, input.Name, role)
		if err != nil {
			return err
		}

		return srv.registerDevice(ctx, userRepo, user, input.DeviceToken)
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Login code redeemed", slog.String("userID", user.ID.String()))

	return srv.issueTokens(user)
}

// FirebaseLogin verifies a Firebase phone ID token and signs the user in.
func (srv *authService) FirebaseLogin(ctx context.Context, input *usecase.FirebaseLoginInput) (*usecase.AuthOutput, error) {
	if srv.phoneVerifier == nil {
		return nil, domainerrors.ErrPhoneTokenInvalid.WrapMessage("firebase sign-in is not configured")
	}

	role := entity.Role(input.Role)
	if !role.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("role must be farmer or buyer")
	}

	verified, err := srv.phoneVerifier.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		return nil, domainerrors.ErrPhoneTokenInvalid.WrapMessage(err.Error())
	}

	name := input.Name
	if name == "" {
		name = verified.Name
	}

	var user *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		user, err = upsertUserByPhone(ctx, userRepo, verified.PhoneNumber, name, role)
		if err != nil {
			return err
		}

		return srv.registerDevice(ctx, userRepo, user, input.DeviceToken)
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Firebase sign-in", slog.String("userID", user.ID.String()))

	return srv.issueTokens(user)
}

// Refresh exchanges a refresh token for a new token pair.
func (srv *authService) Refresh(ctx context.Context, refreshToken string) (*usecase.AuthOutput, error) {
	claims, err := srv.tokenService.ValidateToken(refreshToken)
	if err != nil {
		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage(err.Error())
	}
	if claims.Type != service.TokenTypeRefresh {
		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("token is not a refresh token")
	}

	user, err := srv.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("token subject no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load user")
	}

	return srv.issueTokens(user)
}

func (srv *authService) issueTokens(user *entity.User) (*usecase.AuthOutput, error) {
	access, refresh, err := srv.tokenService.GenerateTokens(user.ID, user.Role.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	return &usecase.AuthOutput{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// upsertUserByPhone creates the account on first login and refreshes the
// display name on later ones. The phone number is the identity key.
// registerDevice stores the FCM token of the signing-in device so the
// notification worker can reach this user.
func (srv *authService) registerDevice(ctx context.Context, userRepo repository.UserRepository, user *entity.User, token string) error {
	if token == "" || token == user.DeviceToken {
		return nil
	}

	if err := userRepo.UpdateDeviceToken(ctx, user.ID, token); err != nil {
		return errors.Wrap(err, "failed to register device token")
	}
	user.DeviceToken = token

	return nil
}

func upsertUserByPhone(ctx context.Context, userRepo repository.UserRepository, phone, name string, role entity.Role) (*entity.User, error) {
	user, err := userRepo.FindByPhone(ctx, phone)
	if errors.Is(err, repository.ErrUserNotFound) {
		now := time.Now()
		user = &entity.User{
			ID:        uuid.New(),
			Phone:     phone,
			Name:      name,
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return nil, errors.Wrap(err, "failed to create user")
		}

		return user, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user by phone")
	}

	if name != "" && name != user.Name {
		user.Name = name
		user.UpdatedAt = time.Now()
		if err := userRepo.Update(ctx, user); err != nil {
			return nil, errors.Wrap(err, "failed to update user name")
		}
	}

	return user, nil
}

// generateOtpCode draws a uniform 6-digit code from crypto/rand.
func generateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", errors.Wrap(err, "failed to read random source")
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

// maskPhone hides all but the last two digits for logging.
func maskPhone(phone string) string {
	if len(phone) <= 2 {
		return "**"
	}

	masked := make([]byte, len(phone)-2)
	for i := range masked {
		masked[i] = '*'
	}

	return string(masked) + phone[len(phone)-2:]
}
