package impl

import (
	"context"
	"testing"

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

type equipmentServiceFixtures struct {
	service       usecase.EquipmentUsecase
	equipmentRepo *mockEquipmentRepository
	profileRepo   *mockProfileRepository
	userRepo      *mockUserRepository
	geoIndex      *mockGeoIndex
}

func createTestEquipmentService(t *testing.T, withIndex bool) equipmentServiceFixtures {
	t.Helper()

	equipmentRepo := &mockEquipmentRepository{}
	profileRepo := &mockProfileRepository{}
	userRepo := &mockUserRepository{}
	geoIndex := &mockGeoIndex{}

	params := EquipmentServiceParams{
		EquipmentRepo: equipmentRepo,
		ProfileRepo:   profileRepo,
		UserRepo:      userRepo,
		Logger:        testLogger(),
	}
	if withIndex {
		params.GeoIndex = geoIndex
	}

	return equipmentServiceFixtures{
		service:       NewEquipmentService(params),
		equipmentRepo: equipmentRepo,
		profileRepo:   profileRepo,
		userRepo:      userRepo,
		geoIndex:      geoIndex,
	}
}

func TestEquipmentService_CreateEquipment_IndexesLocation(t *testing.T) {
	fx := createTestEquipmentService(t, true)
	ctx := context.Background()
	ownerID := uuid.New()

	fx.userRepo.On("FindByID", ctx, ownerID).
		Return(&entity.User{ID: ownerID, Name: "Ramesh", Phone: "+919876543210"}, nil)
	fx.equipmentRepo.On("Create", ctx, mock.AnythingOfType("*entity.Equipment")).Return(nil)
	fx.geoIndex.On("Insert", mock.AnythingOfType("uuid.UUID"), testThane).Return()

	radius := 25.0
	equipment, err := fx.service.CreateEquipment(ctx, ownerID, &usecase.CreateEquipmentInput{
		Name:           "tractor",
		Category:       "tillage",
		DailyRate:      1200,
		Latitude:       floatPtr(testThane.Latitude),
		Longitude:      floatPtr(testThane.Longitude),
		RentalRadiusKm: &radius,
	})

	require.NoError(t, err)
	assert.Equal(t, "Ramesh", equipment.OwnerName)
	fx.geoIndex.AssertCalled(t, "Insert", equipment.ID, testThane)
}

func TestEquipmentService_CreateEquipment_Validation(t *testing.T) {
	fx := createTestEquipmentService(t, false)
	ctx := context.Background()

	_, err := fx.service.CreateEquipment(ctx, uuid.New(), &usecase.CreateEquipmentInput{
		Category: "tillage",
	})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	// A free offer that does not accept barter is meaningless.
	_, err = fx.service.CreateEquipment(ctx, uuid.New(), &usecase.CreateEquipmentInput{
		Name: "plough",
	})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	_, err = fx.service.CreateEquipment(ctx, uuid.New(), &usecase.CreateEquipmentInput{
		Name:           "plough",
		Barter:         true,
		RentalRadiusKm: floatPtr(-5),
	})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidRadius))
}

func TestEquipmentService_CreateEquipment_BarterOnlyAllowed(t *testing.T) {
	fx := createTestEquipmentService(t, false)
	ctx := context.Background()
	ownerID := uuid.New()

	fx.userRepo.On("FindByID", ctx, ownerID).
		Return(&entity.User{ID: ownerID, Name: "Ramesh"}, nil)
	fx.profileRepo.On("FindByUser", ctx, ownerID, entity.RoleFarmer).
		Return(nil, repository.ErrProfileNotFound)
	fx.equipmentRepo.On("Create", ctx, mock.AnythingOfType("*entity.Equipment")).Return(nil)

	equipment, err := fx.service.CreateEquipment(ctx, ownerID, &usecase.CreateEquipmentInput{
		Name:   "seed drill",
		Barter: true,
	})

	require.NoError(t, err)
	assert.True(t, equipment.Barter)
	assert.Zero(t, equipment.DailyRate)
}

func TestEquipmentService_ListEquipment_GatesByItemRadius(t *testing.T) {
	fx := createTestEquipmentService(t, false)
	ctx := context.Background()
	viewerID := uuid.New()

	shortReach := 10.0
	longReach := 30.0
	// Both sit in Thane, ~19 km from the Mumbai viewer. The 10 km machine
	// cannot serve Mumbai even though the viewer's own radius would let
	// it through; the 30 km machine can.
	tooShort := &entity.Equipment{ID: uuid.New(), Name: "baler", Location: &testThane, RentalRadiusKm: &shortReach}
	reaches := &entity.Equipment{ID: uuid.New(), Name: "tractor", Location: &testThane, RentalRadiusKm: &longReach}

	fx.equipmentRepo.On("Find", ctx, mock.AnythingOfType("repository.EquipmentQuery")).
		Return([]*entity.Equipment{tooShort, reaches}, nil)
	fx.profileRepo.On("FindByUser", ctx, viewerID, entity.RoleBuyer).
		Return(&entity.LocationProfile{
			UserID:   viewerID,
			Role:     entity.RoleBuyer,
			Point:    &testMumbai,
			RadiusKm: 200,
			IsSet:    true,
		}, nil)

	results, err := fx.service.ListEquipment(ctx, viewerID, &usecase.ListEquipmentInput{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, reaches.ID, results[0].ID)
	require.NotNil(t, results[0].DistanceKm)
	assert.InDelta(t, 19, *results[0].DistanceKm, 2)
}

func TestEquipmentService_ListEquipment_FarmerProfileFallback(t *testing.T) {
	fx := createTestEquipmentService(t, false)
	ctx := context.Background()
	viewerID := uuid.New()

	reach := 30.0
	item := &entity.Equipment{ID: uuid.New(), Location: &testThane, RentalRadiusKm: &reach}

	fx.equipmentRepo.On("Find", ctx, mock.AnythingOfType("repository.EquipmentQuery")).
		Return([]*entity.Equipment{item}, nil)
	// The viewer has no buyer profile but does have a farmer profile;
	// farmers rent machinery from each other.
	fx.profileRepo.On("FindByUser", ctx, viewerID, entity.RoleBuyer).
		Return(nil, repository.ErrProfileNotFound)
	fx.profileRepo.On("FindByUser", ctx, viewerID, entity.RoleFarmer).
		Return(&entity.LocationProfile{
			UserID:   viewerID,
			Role:     entity.RoleFarmer,
			Point:    &testMumbai,
			RadiusKm: 50,
			IsSet:    true,
		}, nil)

	results, err := fx.service.ListEquipment(ctx, viewerID, &usecase.ListEquipmentInput{})

	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestEquipmentService_ListEquipment_PrefilterTrimsCandidates(t *testing.T) {
	fx := createTestEquipmentService(t, true)
	ctx := context.Background()
	viewerID := uuid.New()

	reach := 30.0
	indexed := &entity.Equipment{ID: uuid.New(), Location: &testThane, RentalRadiusKm: &reach}
	missing := &entity.Equipment{ID: uuid.New(), Location: &testPune, RentalRadiusKm: &reach}
	unlocated := &entity.Equipment{ID: uuid.New()}

	fx.equipmentRepo.On("Find", ctx, mock.AnythingOfType("repository.EquipmentQuery")).
		Return([]*entity.Equipment{indexed, missing, unlocated}, nil)
	fx.profileRepo.On("FindByUser", ctx, viewerID, entity.RoleBuyer).
		Return(&entity.LocationProfile{
			UserID:   viewerID,
			Role:     entity.RoleBuyer,
			Point:    &testMumbai,
			RadiusKm: 50,
			IsSet:    true,
		}, nil)
	// The index knows both located machines but only one is near the viewer.
	fx.geoIndex.On("Within", testMumbai, mock.AnythingOfType("float64")).
		Return([]uuid.UUID{indexed.ID})
	fx.geoIndex.On("Contains", missing.ID).Return(true)

	results, err := fx.service.ListEquipment(ctx, viewerID, &usecase.ListEquipmentInput{})

	require.NoError(t, err)
	// The indexed machine survives, the out-of-box one is trimmed before
	// the exact check, and the unlocated one is never dropped.
	require.Len(t, results, 2)
	assert.Equal(t, indexed.ID, results[0].ID)
	assert.Equal(t, unlocated.ID, results[1].ID)
	assert.Nil(t, results[1].DistanceKm)
}

func TestEquipmentService_ListEquipment_UnindexedItemIsKept(t *testing.T) {
	fx := createTestEquipmentService(t, true)
	ctx := context.Background()
	viewerID := uuid.New()

	reach := 30.0
	unindexed := &entity.Equipment{ID: uuid.New(), Location: &testThane, RentalRadiusKm: &reach}

	fx.equipmentRepo.On("Find", ctx, mock.AnythingOfType("repository.EquipmentQuery")).
		Return([]*entity.Equipment{unindexed}, nil)
	fx.profileRepo.On("FindByUser", ctx, viewerID, entity.RoleBuyer).
		Return(&entity.LocationProfile{
			UserID:   viewerID,
			Role:     entity.RoleBuyer,
			Point:    &testMumbai,
			RadiusKm: 50,
			IsSet:    true,
		}, nil)
	// The index has never seen this machine, e.g. it was created while the
	// index was rebuilding. It must reach the exact check regardless.
	fx.geoIndex.On("Within", testMumbai, mock.AnythingOfType("float64")).
		Return(nil)
	fx.geoIndex.On("Contains", unindexed.ID).Return(false)

	results, err := fx.service.ListEquipment(ctx, viewerID, &usecase.ListEquipmentInput{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, unindexed.ID, results[0].ID)
	require.NotNil(t, results[0].DistanceKm)
}

func TestEquipmentService_ListEquipment_UnsetViewer(t *testing.T) {
	fx := createTestEquipmentService(t, true)
	ctx := context.Background()
	viewerID := uuid.New()

	items := []*entity.Equipment{
		{ID: uuid.New(), Location: &geo.Point{Latitude: 1, Longitude: 1}},
		{ID: uuid.New()},
	}

	fx.equipmentRepo.On("Find", ctx, mock.AnythingOfType("repository.EquipmentQuery")).
		Return(items, nil)
	fx.profileRepo.On("FindByUser", ctx, viewerID, entity.RoleBuyer).
		Return(nil, repository.ErrProfileNotFound)
	fx.profileRepo.On("FindByUser", ctx, viewerID, entity.RoleFarmer).
		Return(nil, repository.ErrProfileNotFound)

	results, err := fx.service.ListEquipment(ctx, viewerID, &usecase.ListEquipmentInput{})

	require.NoError(t, err)
	require.Len(t, results, 2)
	// No reference center: the index is never consulted.
	fx.geoIndex.AssertNotCalled(t, "Within", mock.Anything, mock.Anything)
}
