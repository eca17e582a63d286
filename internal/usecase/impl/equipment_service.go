package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "agriconnect/internal/delivery/context"
	"agriconnect/internal/domain/entity"
	domainerrors "agriconnect/internal/domain/errors"
	"agriconnect/internal/domain/geo"
	"agriconnect/internal/domain/repository"
	"agriconnect/internal/domain/service"
	"agriconnect/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// equipmentService implements the EquipmentUsecase interface.
type equipmentService struct {
	equipmentRepo repository.EquipmentRepository
	profileRepo   repository.ProfileRepository
	userRepo      repository.UserRepository
	geoIndex      service.GeoIndex
	logger        *slog.Logger
}

// EquipmentServiceParams holds dependencies for EquipmentService, injected by Fx.
type EquipmentServiceParams struct {
	fx.In

	EquipmentRepo repository.EquipmentRepository
	ProfileRepo   repository.ProfileRepository
	UserRepo      repository.UserRepository
	GeoIndex      service.GeoIndex `optional:"true"`
	Logger        *slog.Logger
}

// NewEquipmentService is the constructor for equipmentService.
func NewEquipmentService(params EquipmentServiceParams) usecase.EquipmentUsecase {
	return &equipmentService{
		equipmentRepo: params.EquipmentRepo,
		profileRepo:   params.ProfileRepo,
		userRepo:      params.UserRepo,
		geoIndex:      params.GeoIndex,
		logger:        params.Logger,
	}
}

func (srv *equipmentService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateEquipment offers a machine for rental or barter. Coordinates fall
// back to the owner's farmer profile point.
func (srv *equipmentService) CreateEquipment(ctx context.Context, ownerID uuid.UUID, input *usecase.CreateEquipmentInput) (*entity.Equipment, error) {
	if input.Name == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("name is required")
	}
	if input.DailyRate < 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("daily rate cannot be negative")
	}
	if input.DailyRate == 0 && !input.Barter {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("free offers must accept barter")
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, domainerrors.ErrInvalidCoordinates.WrapMessage("latitude and longitude must be provided together")
	}
	if input.RentalRadiusKm != nil && *input.RentalRadiusKm <= 0 {
		return nil, domainerrors.ErrInvalidRadius.WrapMessage("rental radius must be positive")
	}

	owner, err := srv.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("owner does not exist")
		}

		return nil, errors.Wrap(err, "failed to load owner")
	}

	var location *geo.Point
	if input.Latitude != nil && input.Longitude != nil {
		point, err := geo.NewPoint(*input.Latitude, *input.Longitude)
		if err != nil {
			return nil, domainerrors.ErrInvalidCoordinates.WrapMessage(err.Error())
		}
		location = &point
	}

	rentalRadius := input.RentalRadiusKm
	if location == nil || rentalRadius == nil {
		profile, err := srv.profileRepo.FindByUser(ctx, ownerID, entity.RoleFarmer)
		if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
			return nil, errors.Wrap(err, "failed to load owner profile")
		}
		if err == nil && profile.IsSet {
			if location == nil {
				location = profile.Point
			}
			if rentalRadius == nil {
				radius := profile.RadiusKm
				rentalRadius = &radius
			}
		}
	}

	now := time.Now()
	equipment := &entity.Equipment{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Name:           input.Name,
		Category:       input.Category,
		DailyRate:      input.DailyRate,
		Barter:         input.Barter,
		OwnerName:      owner.Name,
		OwnerPhone:     owner.Phone,
		Location:       location,
		RentalRadiusKm: rentalRadius,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := srv.equipmentRepo.Create(ctx, equipment); err != nil {
		return nil, errors.Wrap(err, "failed to create equipment")
	}

	if srv.geoIndex != nil && equipment.Location != nil {
		srv.geoIndex.Insert(equipment.ID, *equipment.Location)
	}

	srv.log(ctx).Info("Equipment offered",
		slog.String("equipmentID", equipment.ID.String()),
		slog.String("name", equipment.Name),
		slog.Bool("barter", equipment.Barter))

	return equipment, nil
}

// ListEquipment browses equipment, gated by each item's own rental radius
// and sorted nearest first. The spatial index trims candidates before the
// exact distance check runs.
func (srv *equipmentService) ListEquipment(ctx context.Context, viewerID uuid.UUID, input *usecase.ListEquipmentInput) ([]*entity.EquipmentWithDistance, error) {
	items, err := srv.equipmentRepo.Find(ctx, repository.EquipmentQuery{
		Category:   input.Category,
		OnlyBarter: input.OnlyBarter,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to query equipment")
	}

	ref, err := srv.viewerReference(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	items = srv.prefilter(items, ref)

	results := geo.Filter(items, ref, geo.GateItem)

	annotated := make([]*entity.EquipmentWithDistance, 0, len(results))
	for _, result := range results {
		annotated = append(annotated, &entity.EquipmentWithDistance{
			Equipment:  result.Item,
			DistanceKm: result.DistanceKm,
		})
	}

	return annotated, nil
}

// viewerReference loads the viewer's buyer profile, falling back to their
// farmer profile since farmers rent machinery from each other.
func (srv *equipmentService) viewerReference(ctx context.Context, viewerID uuid.UUID) (geo.Reference, error) {
	for _, role := range []entity.Role{entity.RoleBuyer, entity.RoleFarmer} {
		profile, err := srv.profileRepo.FindByUser(ctx, viewerID, role)
		if errors.Is(err, repository.ErrProfileNotFound) {
			continue
		}
		if err != nil {
			return geo.Reference{}, errors.Wrap(err, "failed to load viewer profile")
		}
		if profile.IsSet {
			return profile.Reference(), nil
		}
	}

	return entity.NewLocationProfile(viewerID, entity.RoleBuyer).Reference(), nil
}

// prefilter intersects the candidate list with the spatial index when both
// are available. Only items the index knows and places out of reach are
// trimmed; unlocated or never-indexed items go on to the exact check. The
// index is an optimization, never a source of truth.
func (srv *equipmentService) prefilter(items []*entity.Equipment, ref geo.Reference) []*entity.Equipment {
	if srv.geoIndex == nil || ref.Center == nil || len(items) == 0 {
		return items
	}

	maxRadius := ref.RadiusKm
	for _, item := range items {
		if item.RentalRadiusKm != nil && *item.RentalRadiusKm > maxRadius {
			maxRadius = *item.RentalRadiusKm
		}
	}

	nearby := make(map[uuid.UUID]struct{})
	for _, id := range srv.geoIndex.Within(*ref.Center, maxRadius) {
		nearby[id] = struct{}{}
	}

	kept := make([]*entity.Equipment, 0, len(items))
	for _, item := range items {
		if item.Location == nil {
			kept = append(kept, item)

			continue
		}
		if _, ok := nearby[item.ID]; ok {
			kept = append(kept, item)

			continue
		}
		if !srv.geoIndex.Contains(item.ID) {
			kept = append(kept, item)
		}
	}

	return kept
}
