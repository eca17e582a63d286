package impl

import (
	"context"
	"sync"
	"testing"

	"agriconnect/config"
	"agriconnect/internal/domain/entity"
	domainerrors "agriconnect/internal/domain/errors"
	"agriconnect/internal/domain/geo"
	"agriconnect/internal/domain/repository"
	"agriconnect/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type locationServiceFixtures struct {
	service     usecase.LocationUsecase
	profileRepo *mockProfileRepository
	geocoder    *mockGeocoder
}

func createTestLocationService(t *testing.T) locationServiceFixtures {
	t.Helper()

	profileRepo := &mockProfileRepository{}
	geocoder := &mockGeocoder{}

	cfg := &config.Config{Marketplace: &config.MarketplaceConfig{MaxRadiusKm: 500}}

	service := NewLocationService(LocationServiceParams{
		ProfileRepo: profileRepo,
		Geocoder:    geocoder,
		Config:      cfg,
		Logger:      testLogger(),
	})

	return locationServiceFixtures{
		service:     service,
		profileRepo: profileRepo,
		geocoder:    geocoder,
	}
}

func floatPtr(v float64) *float64 { return &v }

func stringPtr(v string) *string { return &v }

func TestLocationService_GetProfile_MissingReturnsUnsetDefault(t *testing.T) {
	fx := createTestLocationService(t)
	ctx := context.Background()
	userID := uuid.New()

	fx.profileRepo.On("FindByUser", ctx, userID, entity.RoleBuyer).
		Return(nil, repository.ErrProfileNotFound)

	profile, err := fx.service.GetProfile(ctx, userID, entity.RoleBuyer)

	require.NoError(t, err)
	assert.False(t, profile.IsSet)
	assert.Nil(t, profile.Point)
	assert.Equal(t, entity.DefaultRadiusKm, profile.RadiusKm)
}

func TestLocationService_UpdateProfile_MergePreservesUnsetFields(t *testing.T) {
	fx := createTestLocationService(t)
	ctx := context.Background()
	userID := uuid.New()

	stored := &entity.LocationProfile{
		UserID:   userID,
		Role:     entity.RoleFarmer,
		City:     "Nashik",
		State:    "Maharashtra",
		Point:    &geo.Point{Latitude: 19.9975, Longitude: 73.7898},
		RadiusKm: 50,
		IsSet:    true,
	}

	fx.profileRepo.On("FindByUser", ctx, userID, entity.RoleFarmer).Return(stored, nil)
	fx.profileRepo.On("Save", ctx, mock.AnythingOfType("*entity.LocationProfile")).Return(nil)

	updated, err := fx.service.UpdateProfile(ctx, userID, entity.RoleFarmer, &usecase.UpdateLocationInput{
		RadiusKm: floatPtr(75),
	})

	require.NoError(t, err)
	assert.Equal(t, 75.0, updated.RadiusKm)
	// Untouched fields survive the merge.
	assert.Equal(t, "Nashik", updated.City)
	assert.NotNil(t, updated.Point)
	assert.Equal(t, 19.9975, updated.Point.Latitude)
	assert.True(t, updated.IsSet)
}

func TestLocationService_UpdateProfile_SettingCoordinatesMarksSet(t *testing.T) {
	fx := createTestLocationService(t)
	ctx := context.Background()
	userID := uuid.New()

	fx.profileRepo.On("FindByUser", ctx, userID, entity.RoleBuyer).
		Return(nil, repository.ErrProfileNotFound)
	fx.profileRepo.On("Save", ctx, mock.AnythingOfType("*entity.LocationProfile")).Return(nil)

	updated, err := fx.service.UpdateProfile(ctx, userID, entity.RoleBuyer, &usecase.UpdateLocationInput{
		City:      stringPtr("Pune"),
		Latitude:  floatPtr(18.5204),
		Longitude: floatPtr(73.8567),
	})

	require.NoError(t, err)
	assert.True(t, updated.IsSet)
	require.NotNil(t, updated.Point)
	assert.Equal(t, 18.5204, updated.Point.Latitude)
	assert.Equal(t, "Pune", updated.City)
	// Radius keeps its default when not supplied.
	assert.Equal(t, entity.DefaultRadiusKm, updated.RadiusKm)
}

func TestLocationService_UpdateProfile_RejectsHalfCoordinates(t *testing.T) {
	fx := createTestLocationService(t)

	_, err := fx.service.UpdateProfile(context.Background(), uuid.New(), entity.RoleBuyer, &usecase.UpdateLocationInput{
		Latitude: floatPtr(18.5),
	})

	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCoordinates))
	fx.profileRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLocationService_UpdateProfile_RejectsBadRadius(t *testing.T) {
	fx := createTestLocationService(t)
	ctx := context.Background()

	for _, radius := range []float64{0, -1, 501} {
		_, err := fx.service.UpdateProfile(ctx, uuid.New(), entity.RoleBuyer, &usecase.UpdateLocationInput{
			RadiusKm: floatPtr(radius),
		})
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidRadius), "radius %v should be rejected", radius)
	}
}

func TestLocationService_UpdateProfile_RejectsOutOfRangeCoordinates(t *testing.T) {
	fx := createTestLocationService(t)

	_, err := fx.service.UpdateProfile(context.Background(), uuid.New(), entity.RoleBuyer, &usecase.UpdateLocationInput{
		Latitude:  floatPtr(91),
		Longitude: floatPtr(73.8),
	})

	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCoordinates))
}

func TestLocationService_UpdateProfile_ConcurrentUpdatesAllLand(t *testing.T) {
	fx := createTestLocationService(t)
	ctx := context.Background()
	userID := uuid.New()

	var mu sync.Mutex
	stored := entity.NewLocationProfile(userID, entity.RoleBuyer)

	fx.profileRepo.On("FindByUser", ctx, userID, entity.RoleBuyer).
		Return(stored, nil)
	fx.profileRepo.On("Save", ctx, mock.AnythingOfType("*entity.LocationProfile")).
		Run(func(args mock.Arguments) {
			mu.Lock()
			defer mu.Unlock()
			stored = args.Get(1).(*entity.LocationProfile)
		}).
		Return(nil)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(radius float64) {
			defer wg.Done()
			_, err := fx.service.UpdateProfile(ctx, userID, entity.RoleBuyer, &usecase.UpdateLocationInput{
				RadiusKm: floatPtr(radius),
			})
			assert.NoError(t, err)
		}(float64(i + 1))
	}
	wg.Wait()

	// Last write wins; no interleaving corrupted the profile.
	mu.Lock()
	defer mu.Unlock()
	assert.Positive(t, stored.RadiusKm)
	assert.LessOrEqual(t, stored.RadiusKm, 10.0)
}

func TestLocationService_ResolveCoordinates_GeocoderHit(t *testing.T) {
	fx := createTestLocationService(t)
	ctx := context.Background()
	userID := uuid.New()

	resolved := &geo.Point{Latitude: 18.5204, Longitude: 73.8567}

	fx.geocoder.On("Geocode", ctx, "Pune", "Maharashtra", "411001").Return(resolved, nil)
	fx.profileRepo.On("FindByUser", ctx, userID, entity.RoleBuyer).
		Return(nil, repository.ErrProfileNotFound)
	fx.profileRepo.On("Save", ctx, mock.AnythingOfType("*entity.LocationProfile")).Return(nil)

	point, err := fx.service.ResolveCoordinates(ctx, userID, entity.RoleBuyer, &usecase.ResolveCoordinatesInput{
		City:       "Pune",
		State:      "Maharashtra",
		PostalCode: "411001",
	})

	require.NoError(t, err)
	assert.Equal(t, resolved, point)

	saved := lastSavedProfile(fx.profileRepo)
	assert.True(t, saved.IsSet)
	assert.Equal(t, "Pune", saved.City)
	assert.Equal(t, resolved, saved.Point)
}

func TestLocationService_ResolveCoordinates_SensorFallback(t *testing.T) {
	fx := createTestLocationService(t)
	ctx := context.Background()
	userID := uuid.New()

	fx.geocoder.On("Geocode", ctx, "Nowhere", "", "").Return(nil, nil)
	fx.profileRepo.On("FindByUser", ctx, userID, entity.RoleFarmer).
		Return(nil, repository.ErrProfileNotFound)
	fx.profileRepo.On("Save", ctx, mock.AnythingOfType("*entity.LocationProfile")).Return(nil)

	point, err := fx.service.ResolveCoordinates(ctx, userID, entity.RoleFarmer, &usecase.ResolveCoordinatesInput{
		City:            "Nowhere",
		SensorLatitude:  floatPtr(19.1),
		SensorLongitude: floatPtr(73.2),
	})

	require.NoError(t, err)
	require.NotNil(t, point)
	assert.Equal(t, 19.1, point.Latitude)
	assert.Equal(t, 73.2, point.Longitude)
}

func TestLocationService_ResolveCoordinates_ExhaustionFails(t *testing.T) {
	fx := createTestLocationService(t)
	ctx := context.Background()

	fx.geocoder.On("Geocode", ctx, "Nowhere", "", "").Return(nil, nil)

	_, err := fx.service.ResolveCoordinates(ctx, uuid.New(), entity.RoleBuyer, &usecase.ResolveCoordinatesInput{
		City: "Nowhere",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrGeocodeFailed))
	fx.profileRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLocationService_ResolveCoordinates_GeocoderErrorFallsBackToSensor(t *testing.T) {
	fx := createTestLocationService(t)
	ctx := context.Background()
	userID := uuid.New()

	fx.geocoder.On("Geocode", ctx, "Pune", "", "").Return(nil, errors.New("upstream 503"))
	fx.profileRepo.On("FindByUser", ctx, userID, entity.RoleBuyer).
		Return(nil, repository.ErrProfileNotFound)
	fx.profileRepo.On("Save", ctx, mock.AnythingOfType("*entity.LocationProfile")).Return(nil)

	point, err := fx.service.ResolveCoordinates(ctx, userID, entity.RoleBuyer, &usecase.ResolveCoordinatesInput{
		City:            "Pune",
		SensorLatitude:  floatPtr(18.52),
		SensorLongitude: floatPtr(73.85),
	})

	require.NoError(t, err)
	assert.Equal(t, 18.52, point.Latitude)
}

// lastSavedProfile digs the most recent Save argument out of the mock.
func lastSavedProfile(repo *mockProfileRepository) *entity.LocationProfile {
	for i := len(repo.Calls) - 1; i >= 0; i-- {
		if repo.Calls[i].Method == "Save" {
			return repo.Calls[i].Arguments.Get(1).(*entity.LocationProfile)
		}
	}

	return nil
}
