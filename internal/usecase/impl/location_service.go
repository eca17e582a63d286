package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"agriconnect/config"
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

// locationService implements the LocationUsecase interface.
//
// Profile writes are read-modify-write merges, so updates for the same actor
// are serialized through a per-actor mutex. The geocoder is never called
// while a lock is held; resolution happens first and only the final write is
// serialized.
type locationService struct {
	profileRepo repository.ProfileRepository
	geocoder    service.Geocoder
	maxRadiusKm float64
	logger      *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// LocationServiceParams holds dependencies for LocationService, injected by Fx.
type LocationServiceParams struct {
	fx.In

	ProfileRepo repository.ProfileRepository
	Geocoder    service.Geocoder `optional:"true"`
	Config      *config.Config
	Logger      *slog.Logger
}

// NewLocationService is the constructor for locationService.
func NewLocationService(params LocationServiceParams) usecase.LocationUsecase {
	maxRadius := 0.0
	if params.Config != nil && params.Config.Marketplace != nil {
		maxRadius = params.Config.Marketplace.MaxRadiusKm
	}

	return &locationService{
		profileRepo: params.ProfileRepo,
		geocoder:    params.Geocoder,
		maxRadiusKm: maxRadius,
		logger:      params.Logger,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (srv *locationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// actorLock returns the mutex serializing writes for one (user, role) pair.
func (srv *locationService) actorLock(userID uuid.UUID, role entity.Role) *sync.Mutex {
	key := userID.String() + "/" + role.String()

	srv.mu.Lock()
	defer srv.mu.Unlock()

	lock, ok := srv.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		srv.locks[key] = lock
	}

	return lock
}

// GetProfile retrieves an actor's profile, substituting the unset default
// when nothing was ever saved. A missing profile is not an error.
func (srv *locationService) GetProfile(ctx context.Context, userID uuid.UUID, role entity.Role) (*entity.LocationProfile, error) {
	profile, err := srv.profileRepo.FindByUser(ctx, userID, role)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return entity.NewLocationProfile(userID, role), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load location profile")
	}

	return profile, nil
}

// UpdateProfile merges the input into the stored profile and persists the
// result. Fields absent from the input keep their stored values; the merge
// runs under the actor's lock so concurrent updates cannot interleave.
func (srv *locationService) UpdateProfile(ctx context.Context, userID uuid.UUID, role entity.Role, input *usecase.UpdateLocationInput) (*entity.LocationProfile, error) {
	if err := validateLocationInput(input, srv.maxRadiusKm); err != nil {
		return nil, err
	}

	lock := srv.actorLock(userID, role)
	lock.Lock()
	defer lock.Unlock()

	profile, err := srv.GetProfile(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	applyLocationUpdates(profile, input)
	profile.UpdatedAt = time.Now()

	// Save is synchronous: once it returns, every subsequent match sees the
	// new point and radius.
	if err := srv.profileRepo.Save(ctx, profile); err != nil {
		return nil, errors.Wrap(err, "failed to save location profile")
	}

	srv.log(ctx).Info("Location profile updated",
		slog.String("userID", userID.String()),
		slog.String("role", role.String()),
		slog.Bool("isSet", profile.IsSet))

	return profile, nil
}

// ResolveCoordinates turns an address into coordinates through the geocoder,
// falling back to the device sensor fix. Either a complete pair is stored or
// nothing changes.
func (srv *locationService) ResolveCoordinates(ctx context.Context, userID uuid.UUID, role entity.Role, input *usecase.ResolveCoordinatesInput) (*geo.Point, error) {
	point, err := srv.resolvePoint(ctx, input)
	if err != nil {
		return nil, err
	}

	lock := srv.actorLock(userID, role)
	lock.Lock()
	defer lock.Unlock()

	profile, err := srv.GetProfile(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	profile.City = input.City
	profile.State = input.State
	profile.PostalCode = input.PostalCode
	profile.Point = point
	profile.IsSet = true
	profile.UpdatedAt = time.Now()

	if err := srv.profileRepo.Save(ctx, profile); err != nil {
		return nil, errors.Wrap(err, "failed to save resolved location")
	}

	srv.log(ctx).Info("Resolved coordinates",
		slog.String("userID", userID.String()),
		slog.Float64("lat", point.Latitude),
		slog.Float64("lng", point.Longitude))

	return point, nil
}

// resolvePoint tries the geocoder first and the sensor fix second. No lock
// is held while the geocoder call is in flight.
func (srv *locationService) resolvePoint(ctx context.Context, input *usecase.ResolveCoordinatesInput) (*geo.Point, error) {
	if srv.geocoder != nil {
		point, err := srv.geocoder.Geocode(ctx, input.City, input.State, input.PostalCode)
		if err != nil {
			// Provider trouble is not fatal while a sensor fix remains.
			srv.log(ctx).Warn("Geocoder failed, trying sensor fallback", slog.Any("error", err))
		}
		if point != nil {
			return point, nil
		}
	}

	if input.SensorLatitude != nil && input.SensorLongitude != nil {
		point, err := geo.NewPoint(*input.SensorLatitude, *input.SensorLongitude)
		if err != nil {
			return nil, domainerrors.ErrInvalidCoordinates.WrapMessage("sensor fix is out of range")
		}

		return &point, nil
	}

	return nil, domainerrors.ErrGeocodeFailed.WrapMessage("no geocoder result and no sensor fix")
}

// validateLocationInput rejects bad radii and half-given coordinates before
// anything is loaded or locked.
func validateLocationInput(input *usecase.UpdateLocationInput, maxRadiusKm float64) error {
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return domainerrors.ErrInvalidCoordinates.WrapMessage("latitude and longitude must be provided together")
	}

	if input.Latitude != nil {
		if _, err := geo.NewPoint(*input.Latitude, *input.Longitude); err != nil {
			return domainerrors.ErrInvalidCoordinates.WrapMessage(err.Error())
		}
	}

	if input.RadiusKm != nil {
		if *input.RadiusKm <= 0 {
			return domainerrors.ErrInvalidRadius.WrapMessage("radius must be positive")
		}
		if maxRadiusKm > 0 && *input.RadiusKm > maxRadiusKm {
			return domainerrors.ErrInvalidRadius.WrapMessage("radius exceeds the allowed maximum")
		}
	}

	return nil
}

// applyLocationUpdates merges the partial input into the profile. Setting
// coordinates marks the profile as configured.
func applyLocationUpdates(profile *entity.LocationProfile, input *usecase.UpdateLocationInput) {
	if input.City != nil {
		profile.City = *input.City
	}
	if input.State != nil {
		profile.State = *input.State
	}
	if input.PostalCode != nil {
		profile.PostalCode = *input.PostalCode
	}
	if input.Latitude != nil && input.Longitude != nil {
		profile.Point = &geo.Point{Latitude: *input.Latitude, Longitude: *input.Longitude}
		profile.IsSet = true
	}
	if input.RadiusKm != nil {
		profile.RadiusKm = *input.RadiusKm
	}
}
