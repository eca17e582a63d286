package impl

import (
	"context"
	"testing"
	"time"

	"agriconnect/config"
	"agriconnect/internal/domain/entity"
	domainerrors "agriconnect/internal/domain/errors"
	"agriconnect/internal/domain/repository"
	"agriconnect/internal/domain/service"
	"agriconnect/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// authServiceFixtures holds all test dependencies for auth service tests.
type authServiceFixtures struct {
	service       usecase.AuthUsecase
	otpRepo       *mockOtpRepository
	userRepo      *mockUserRepository
	hasher        *mockCodeHasher
	tokenService  *mockTokenService
	phoneVerifier *mockPhoneVerifier
	publisher     *mockEventPublisher
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	t.Helper()

	otpRepo := &mockOtpRepository{}
	userRepo := &mockUserRepository{}
	hasher := &mockCodeHasher{}
	tokenService := &mockTokenService{}
	phoneVerifier := &mockPhoneVerifier{}
	publisher := &mockEventPublisher{}

	factory := &mockRepositoryFactory{
		userRepo: userRepo,
		otpRepo:  otpRepo,
	}

	service := NewAuthService(AuthServiceParams{
		TxManager:     &mockTransactionManager{factory: factory},
		OtpRepo:       otpRepo,
		UserRepo:      userRepo,
		Hasher:        hasher,
		TokenService:  tokenService,
		PhoneVerifier: phoneVerifier,
		Publisher:     publisher,
		Config:        &config.Config{},
		Logger:        testLogger(),
	})

	return authServiceFixtures{
		service:       service,
		otpRepo:       otpRepo,
		userRepo:      userRepo,
		hasher:        hasher,
		tokenService:  tokenService,
		phoneVerifier: phoneVerifier,
		publisher:     publisher,
	}
}

func TestAuthService_SendOtp_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.otpRepo.On("FindLatestRedeemable", ctx, "+919876543210").
		Return(nil, repository.ErrOtpNotFound)
	fx.hasher.On("Hash", mock.AnythingOfType("string")).Return("hashed", nil)
	fx.otpRepo.On("Create", ctx, mock.AnythingOfType("*entity.OtpCode")).Return(nil)
	fx.publisher.On("PublishMarketEvent", ctx, mock.AnythingOfType("*service.MarketEvent")).Return(nil)

	err := fx.service.SendOtp(ctx, &usecase.SendOtpInput{Phone: "+919876543210"})

	require.NoError(t, err)

	created := fx.otpRepo.Calls[1].Arguments.Get(1).(*entity.OtpCode)
	assert.Equal(t, "+919876543210", created.Phone)
	assert.Equal(t, "hashed", created.CodeHash)
	assert.True(t, created.ExpiresAt.After(time.Now()))

	event := fx.publisher.Calls[0].Arguments.Get(1).(*service.MarketEvent)
	assert.Equal(t, service.EventOtpRequested, event.Type)
	assert.Equal(t, "+919876543210", event.Phone)
	assert.Contains(t, event.SmsBody, "login code")
}

func TestAuthService_SendOtp_InvalidPhone(t *testing.T) {
	fx := createTestAuthService(t)

	for _, phone := range []string{"", "9876543210", "+0123", "not-a-phone", "+91 98765"} {
		err := fx.service.SendOtp(context.Background(), &usecase.SendOtpInput{Phone: phone})
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidPhone), "phone %q should be rejected", phone)
	}

	fx.otpRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_SendOtp_Throttled(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.otpRepo.On("FindLatestRedeemable", ctx, "+919876543210").
		Return(&entity.OtpCode{
			ID:        uuid.New(),
			Phone:     "+919876543210",
			CreatedAt: time.Now().Add(-10 * time.Second),
			ExpiresAt: time.Now().Add(4 * time.Minute),
		}, nil)

	err := fx.service.SendOtp(ctx, &usecase.SendOtpInput{Phone: "+919876543210"})

	assert.True(t, errors.Is(err, domainerrors.ErrOtpThrottled))
	fx.otpRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_VerifyOtp_FirstLoginCreatesUser(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	code := &entity.OtpCode{
		ID:        uuid.New(),
		Phone:     "+919876543210",
		CodeHash:  "stored-hash",
		ExpiresAt: time.Now().Add(time.Minute),
		CreatedAt: time.Now().Add(-time.Minute),
	}

	fx.otpRepo.On("FindLatestRedeemable", ctx, "+919876543210").Return(code, nil)
	fx.hasher.On("Check", "123456", "stored-hash").Return(true)
	fx.otpRepo.On("Consume", ctx, code.ID).Return(nil)
	fx.userRepo.On("FindByPhone", ctx, "+919876543210").Return(nil, repository.ErrUserNotFound)
	fx.userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)
	fx.tokenService.On("GenerateTokens", mock.AnythingOfType("uuid.UUID"), "farmer").
		Return("access", "refresh", nil)

	out, err := fx.service.VerifyOtp(ctx, &usecase.VerifyOtpInput{
		Phone: "+919876543210",
		Code:  "123456",
		Name:  "Ramesh",
		Role:  "farmer",
	})

	require.NoError(t, err)
	assert.Equal(t, "access", out.AccessToken)
	assert.Equal(t, "refresh", out.RefreshToken)
	assert.Equal(t, "Ramesh", out.User.Name)
	assert.Equal(t, entity.RoleFarmer, out.User.Role)
	assert.Equal(t, "+919876543210", out.User.Phone)
}

func TestAuthService_VerifyOtp_WrongCode(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	code := &entity.OtpCode{
		ID:        uuid.New(),
		Phone:     "+919876543210",
		CodeHash:  "stored-hash",
		ExpiresAt: time.Now().Add(time.Minute),
	}

	fx.otpRepo.On("FindLatestRedeemable", ctx, "+919876543210").Return(code, nil)
	fx.hasher.On("Check", "000000", "stored-hash").Return(false)

	_, err := fx.service.VerifyOtp(ctx, &usecase.VerifyOtpInput{
		Phone: "+919876543210",
		Code:  "000000",
		Role:  "buyer",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrOtpInvalid))
	fx.otpRepo.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything)
}

func TestAuthService_VerifyOtp_NoRedeemableCode(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.otpRepo.On("FindLatestRedeemable", ctx, "+919876543210").
		Return(nil, repository.ErrOtpNotFound)

	_, err := fx.service.VerifyOtp(ctx, &usecase.VerifyOtpInput{
		Phone: "+919876543210",
		Code:  "123456",
		Role:  "buyer",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrOtpInvalid))
}

func TestAuthService_VerifyOtp_ConsumedRace(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	code := &entity.OtpCode{
		ID:        uuid.New(),
		Phone:     "+919876543210",
		CodeHash:  "stored-hash",
		ExpiresAt: time.Now().Add(time.Minute),
	}

	fx.otpRepo.On("FindLatestRedeemable", ctx, "+919876543210").Return(code, nil)
	fx.hasher.On("Check", "123456", "stored-hash").Return(true)
	// A concurrent request consumed the code between Find and Consume.
	fx.otpRepo.On("Consume", ctx, code.ID).Return(repository.ErrOtpNotFound)

	_, err := fx.service.VerifyOtp(ctx, &usecase.VerifyOtpInput{
		Phone: "+919876543210",
		Code:  "123456",
		Role:  "buyer",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrOtpInvalid))
	fx.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_VerifyOtp_ReturningUserKeepsRole(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	code := &entity.OtpCode{
		ID:        uuid.New(),
		Phone:     "+919876543210",
		CodeHash:  "stored-hash",
		ExpiresAt: time.Now().Add(time.Minute),
	}
	existing := &entity.User{
		ID:    uuid.New(),
		Phone: "+919876543210",
		Name:  "Ramesh",
		Role:  entity.RoleFarmer,
	}

	fx.otpRepo.On("FindLatestRedeemable", ctx, "+919876543210").Return(code, nil)
	fx.hasher.On("Check", "123456", "stored-hash").Return(true)
	fx.otpRepo.On("Consume", ctx, code.ID).Return(nil)
	fx.userRepo.On("FindByPhone", ctx, "+919876543210").Return(existing, nil)
	fx.tokenService.On("GenerateTokens", existing.ID, "farmer").Return("access", "refresh", nil)

	out, err := fx.service.VerifyOtp(ctx, &usecase.VerifyOtpInput{
		Phone: "+919876543210",
		Code:  "123456",
		Role:  "buyer", // A different requested role does not rewrite the account.
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleFarmer, out.User.Role)
	fx.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_FirebaseLogin_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.phoneVerifier.On("VerifyIDToken", ctx, "firebase-token").
		Return(&service.VerifiedPhone{
			UID:         "firebase-uid",
			PhoneNumber: "+919876543210",
			Name:        "Ramesh",
		}, nil)
	fx.userRepo.On("FindByPhone", ctx, "+919876543210").Return(nil, repository.ErrUserNotFound)
	fx.userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)
	fx.tokenService.On("GenerateTokens", mock.AnythingOfType("uuid.UUID"), "buyer").
		Return("access", "refresh", nil)

	out, err := fx.service.FirebaseLogin(ctx, &usecase.FirebaseLoginInput{
		IDToken: "firebase-token",
		Role:    "buyer",
	})

	require.NoError(t, err)
	assert.Equal(t, "+919876543210", out.User.Phone)
	assert.Equal(t, "Ramesh", out.User.Name)
}

func TestAuthService_FirebaseLogin_BadToken(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.phoneVerifier.On("VerifyIDToken", ctx, "bad-token").
		Return(nil, errors.New("token expired"))

	_, err := fx.service.FirebaseLogin(ctx, &usecase.FirebaseLoginInput{
		IDToken: "bad-token",
		Role:    "buyer",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrPhoneTokenInvalid))
}

func TestAuthService_Refresh_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	user := &entity.User{ID: uuid.New(), Phone: "+919876543210", Role: entity.RoleBuyer}

	fx.tokenService.On("ValidateToken", "refresh-token").
		Return(&service.Claims{UserID: user.ID, Type: "refresh"}, nil)
	fx.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	fx.tokenService.On("GenerateTokens", user.ID, "buyer").Return("access2", "refresh2", nil)

	out, err := fx.service.Refresh(ctx, "refresh-token")

	require.NoError(t, err)
	assert.Equal(t, "access2", out.AccessToken)
	assert.Equal(t, "refresh2", out.RefreshToken)
}

func TestAuthService_Refresh_AccessTokenRejected(t *testing.T) {
	fx := createTestAuthService(t)

	fx.tokenService.On("ValidateToken", "access-token").
		Return(&service.Claims{UserID: uuid.New(), Type: "access"}, nil)

	_, err := fx.service.Refresh(context.Background(), "access-token")

	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestGenerateOtpCode_SixDigits(t *testing.T) {
	seen := make(map[string]struct{})
	for range 50 {
		code, err := generateOtpCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
		seen[code] = struct{}{}
	}

	// 50 draws from a million values collide with negligible probability.
	assert.Greater(t, len(seen), 40)
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "***********10", maskPhone("+919876543210"))
	assert.Equal(t, "**", maskPhone("+9"))
}
