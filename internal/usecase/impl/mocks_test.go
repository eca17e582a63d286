package impl

import (
	"context"
	"io"
	"log/slog"
	"time"

	"agriconnect/internal/domain/entity"
	"agriconnect/internal/domain/geo"
	"agriconnect/internal/domain/repository"
	"agriconnect/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Hand-rolled testify mocks for the interfaces the services consume.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockUserRepository struct{ mock.Mock }

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserRepository) FindByPhone(ctx context.Context, phone string) (*entity.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) UpdateDeviceToken(ctx context.Context, id uuid.UUID, token string) error {
	return m.Called(ctx, id, token).Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

type mockOtpRepository struct{ mock.Mock }

func (m *mockOtpRepository) Create(ctx context.Context, code *entity.OtpCode) error {
	return m.Called(ctx, code).Error(0)
}

func (m *mockOtpRepository) FindLatestRedeemable(ctx context.Context, phone string) (*entity.OtpCode, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.OtpCode), args.Error(1)
}

func (m *mockOtpRepository) Consume(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOtpRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)

	return args.Get(0).(int64), args.Error(1)
}

type mockProfileRepository struct{ mock.Mock }

func (m *mockProfileRepository) FindByUser(ctx context.Context, userID uuid.UUID, role entity.Role) (*entity.LocationProfile, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.LocationProfile), args.Error(1)
}

func (m *mockProfileRepository) Save(ctx context.Context, profile *entity.LocationProfile) error {
	return m.Called(ctx, profile).Error(0)
}

type mockListingRepository struct{ mock.Mock }

func (m *mockListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	return m.Called(ctx, listing).Error(0)
}

func (m *mockListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Listing), args.Error(1)
}

func (m *mockListingRepository) Find(ctx context.Context, query repository.ListingQuery) ([]*entity.Listing, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Listing), args.Error(1)
}

func (m *mockListingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	return m.Called(ctx, listing).Error(0)
}

func (m *mockListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockBidRepository struct{ mock.Mock }

func (m *mockBidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	return m.Called(ctx, bid).Error(0)
}

func (m *mockBidRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Bid), args.Error(1)
}

func (m *mockBidRepository) FindByListing(ctx context.Context, listingID uuid.UUID) ([]*entity.Bid, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Bid), args.Error(1)
}

func (m *mockBidRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*entity.Bid, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Bid), args.Error(1)
}

type mockNotificationRepository struct{ mock.Mock }

func (m *mockNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	return m.Called(ctx, notification).Error(0)
}

func (m *mockNotificationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.NotificationStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if notifications, ok := args.Get(0).([]*entity.Notification); ok {
		return notifications, args.Error(1)
	}

	return nil, args.Error(1)
}

type mockEquipmentRepository struct{ mock.Mock }

func (m *mockEquipmentRepository) Create(ctx context.Context, equipment *entity.Equipment) error {
	return m.Called(ctx, equipment).Error(0)
}

func (m *mockEquipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Equipment), args.Error(1)
}

func (m *mockEquipmentRepository) Find(ctx context.Context, query repository.EquipmentQuery) ([]*entity.Equipment, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Equipment), args.Error(1)
}

func (m *mockEquipmentRepository) Update(ctx context.Context, equipment *entity.Equipment) error {
	return m.Called(ctx, equipment).Error(0)
}

func (m *mockEquipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// mockTransactionManager runs the supplied function against a factory of
// mocks, standing in for a real transaction.
type mockTransactionManager struct {
	factory repository.RepositoryFactory
}

func (m *mockTransactionManager) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m.factory)
}

type mockRepositoryFactory struct {
	userRepo    repository.UserRepository
	otpRepo     repository.OtpRepository
	profileRepo repository.ProfileRepository
	bidRepo     repository.BidRepository
}

func (f *mockRepositoryFactory) NewUserRepository() repository.UserRepository {
	return f.userRepo
}

func (f *mockRepositoryFactory) NewOtpRepository() repository.OtpRepository {
	return f.otpRepo
}

func (f *mockRepositoryFactory) NewProfileRepository() repository.ProfileRepository {
	return f.profileRepo
}

func (f *mockRepositoryFactory) NewBidRepository() repository.BidRepository {
	return f.bidRepo
}

type mockCodeHasher struct{ mock.Mock }

func (m *mockCodeHasher) Hash(code string) (string, error) {
	args := m.Called(code)

	return args.String(0), args.Error(1)
}

func (m *mockCodeHasher) Check(code, hash string) bool {
	return m.Called(code, hash).Bool(0)
}

type mockTokenService struct{ mock.Mock }

func (m *mockTokenService) GenerateTokens(userID uuid.UUID, role string) (string, string, error) {
	args := m.Called(userID, role)

	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockTokenService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *mockTokenService) GetRefreshTokenDuration() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

type mockPhoneVerifier struct{ mock.Mock }

func (m *mockPhoneVerifier) VerifyIDToken(ctx context.Context, idToken string) (*service.VerifiedPhone, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*service.VerifiedPhone), args.Error(1)
}

type mockEventPublisher struct{ mock.Mock }

func (m *mockEventPublisher) PublishMarketEvent(ctx context.Context, event *service.MarketEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventPublisher) Close() error {
	return m.Called().Error(0)
}

type mockGeocoder struct{ mock.Mock }

func (m *mockGeocoder) Geocode(ctx context.Context, city, state, postalCode string) (*geo.Point, error) {
	args := m.Called(ctx, city, state, postalCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*geo.Point), args.Error(1)
}

type mockPhotoStore struct{ mock.Mock }

func (m *mockPhotoStore) Put(ctx context.Context, key string, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, key, contentType, r)

	return args.String(0), args.Error(1)
}

func (m *mockPhotoStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}

	return args.Get(0).(io.ReadCloser), args.String(1), args.Error(2)
}

func (m *mockPhotoStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type mockQRCodeService struct{ mock.Mock }

func (m *mockQRCodeService) GenerateListingQR(listingID uuid.UUID) ([]byte, error) {
	args := m.Called(listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockQRCodeService) ParseListingQR(qrData string) (uuid.UUID, error) {
	args := m.Called(qrData)

	return args.Get(0).(uuid.UUID), args.Error(1)
}

type mockGeoIndex struct{ mock.Mock }

func (m *mockGeoIndex) Insert(id uuid.UUID, p geo.Point) {
	m.Called(id, p)
}

func (m *mockGeoIndex) Remove(id uuid.UUID) {
	m.Called(id)
}

func (m *mockGeoIndex) Contains(id uuid.UUID) bool {
	args := m.Called(id)

	return args.Bool(0)
}

func (m *mockGeoIndex) Within(center geo.Point, radiusKm float64) []uuid.UUID {
	args := m.Called(center, radiusKm)
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).([]uuid.UUID)
}
