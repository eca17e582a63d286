package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
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

const (
	defaultPageSize = 20
	maxPageSize     = 100
	defaultUnit     = "kg"
)

// listingService implements the ListingUsecase interface.
type listingService struct {
	listingRepo repository.ListingRepository
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	photoStore  service.PhotoStore
	qrService   service.QRCodeService
	pageSize    int
	maxPage     int
	logger      *slog.Logger
}

// ListingServiceParams holds dependencies for ListingService, injected by Fx.
type ListingServiceParams struct {
	fx.In

	ListingRepo repository.ListingRepository
	ProfileRepo repository.ProfileRepository
	UserRepo    repository.UserRepository
	PhotoStore  service.PhotoStore    `optional:"true"`
	QRService   service.QRCodeService `optional:"true"`
	Config      *config.Config
	Logger      *slog.Logger
}

// NewListingService is the constructor for listingService.
func NewListingService(params ListingServiceParams) usecase.ListingUsecase {
	pageSize := defaultPageSize
	maxPage := maxPageSize
	if params.Config != nil && params.Config.Marketplace != nil {
		if params.Config.Marketplace.PageSize > 0 {
			pageSize = params.Config.Marketplace.PageSize
		}
		if params.Config.Marketplace.MaxPageSize > 0 {
			maxPage = params.Config.Marketplace.MaxPageSize
		}
	}

	return &listingService{
		listingRepo: params.ListingRepo,
		profileRepo: params.ProfileRepo,
		userRepo:    params.UserRepo,
		photoStore:  params.PhotoStore,
		qrService:   params.QRService,
		pageSize:    pageSize,
		maxPage:     maxPage,
		logger:      params.Logger,
	}
}

func (srv *listingService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateListing publishes a crop lot. Coordinates fall back to the farmer's
// profile point so a lot created from the app picks up the farm location
// without the client re-sending it.
func (srv *listingService) CreateListing(ctx context.Context, farmerID uuid.UUID, input *usecase.CreateListingInput) (*entity.Listing, error) {
	if input.Crop == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("crop is required")
	}
	if input.Quantity <= 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("quantity must be positive")
	}
	if input.MinPrice < 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("min price cannot be negative")
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, domainerrors.ErrInvalidCoordinates.WrapMessage("latitude and longitude must be provided together")
	}

	farmer, err := srv.userRepo.FindByID(ctx, farmerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("farmer does not exist")
		}

		return nil, errors.Wrap(err, "failed to load farmer")
	}

	location, deliveryRadius, err := srv.listingGeometry(ctx, farmerID, input)
	if err != nil {
		return nil, err
	}

	unit := input.Unit
	if unit == "" {
		unit = defaultUnit
	}

	now := time.Now()
	listing := &entity.Listing{
		ID:               uuid.New(),
		FarmerID:         farmerID,
		Crop:             input.Crop,
		Unit:             unit,
		Quantity:         input.Quantity,
		MinPrice:         input.MinPrice,
		FarmerName:       farmer.Name,
		FarmerPhone:      farmer.Phone,
		Location:         location,
		DeliveryRadiusKm: deliveryRadius,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := srv.listingRepo.Create(ctx, listing); err != nil {
		return nil, errors.Wrap(err, "failed to create listing")
	}

	srv.log(ctx).Info("Listing created",
		slog.String("listingID", listing.ID.String()),
		slog.String("crop", listing.Crop),
		slog.Bool("located", listing.Location != nil))

	return listing, nil
}

// listingGeometry picks the lot's point and delivery radius from the input,
// falling back to the farmer's location profile for whatever is missing.
func (srv *listingService) listingGeometry(ctx context.Context, farmerID uuid.UUID, input *usecase.CreateListingInput) (*geo.Point, *float64, error) {
	var location *geo.Point
	if input.Latitude != nil && input.Longitude != nil {
		point, err := geo.NewPoint(*input.Latitude, *input.Longitude)
		if err != nil {
			return nil, nil, domainerrors.ErrInvalidCoordinates.WrapMessage(err.Error())
		}
		location = &point
	}

	deliveryRadius := input.DeliveryRadiusKm
	if deliveryRadius != nil && *deliveryRadius <= 0 {
		return nil, nil, domainerrors.ErrInvalidRadius.WrapMessage("delivery radius must be positive")
	}

	if location != nil && deliveryRadius != nil {
		return location, deliveryRadius, nil
	}

	profile, err := srv.profileRepo.FindByUser(ctx, farmerID, entity.RoleFarmer)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return location, deliveryRadius, nil
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load farmer profile")
	}

	if location == nil && profile.IsSet {
		location = profile.Point
	}
	if deliveryRadius == nil && profile.IsSet {
		radius := profile.RadiusKm
		deliveryRadius = &radius
	}

	return location, deliveryRadius, nil
}

// GetListing retrieves a single listing.
func (srv *listingService) GetListing(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	listing, err := srv.listingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, domainerrors.ErrListingNotFound.WrapMessage(id.String())
		}

		return nil, errors.Wrap(err, "failed to load listing")
	}

	return listing, nil
}

// ListListings browses listings geofiltered against the viewer's profile.
func (srv *listingService) ListListings(ctx context.Context, viewerID uuid.UUID, input *usecase.ListListingsInput) ([]*entity.ListingWithDistance, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}

	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = srv.pageSize
	}
	if pageSize > srv.maxPage {
		pageSize = srv.maxPage
	}

	listings, err := srv.listingRepo.Find(ctx, repository.ListingQuery{
		Crop:     input.Crop,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to query listings")
	}

	ref, err := srv.viewerReference(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	// "Show everything" keeps the distance annotation but widens the gate
	// past any real distance.
	if input.IncludeAll {
		ref.RadiusKm = math.Inf(1)
	}

	results := geo.Filter(listings, ref, input.Gate)

	annotated := make([]*entity.ListingWithDistance, 0, len(results))
	for _, result := range results {
		annotated = append(annotated, &entity.ListingWithDistance{
			Listing:    result.Item,
			DistanceKm: result.DistanceKm,
		})
	}

	return annotated, nil
}

// viewerReference loads the viewer's buyer profile as the filter reference.
// Unknown viewers browse permissively, the same as an unset profile.
func (srv *listingService) viewerReference(ctx context.Context, viewerID uuid.UUID) (geo.Reference, error) {
	profile, err := srv.profileRepo.FindByUser(ctx, viewerID, entity.RoleBuyer)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return entity.NewLocationProfile(viewerID, entity.RoleBuyer).Reference(), nil
	}
	if err != nil {
		return geo.Reference{}, errors.Wrap(err, "failed to load viewer profile")
	}

	return profile.Reference(), nil
}

// DeleteListing removes a listing after an ownership check.
func (srv *listingService) DeleteListing(ctx context.Context, farmerID, listingID uuid.UUID) error {
	listing, err := srv.GetListing(ctx, listingID)
	if err != nil {
		return err
	}

	if listing.FarmerID != farmerID {
		return domainerrors.ErrListingOwnershipViolation.WrapMessage("listing belongs to another farmer")
	}

	if err := srv.listingRepo.Delete(ctx, listingID); err != nil {
		return errors.Wrap(err, "failed to delete listing")
	}

	srv.log(ctx).Info("Listing deleted", slog.String("listingID", listingID.String()))

	return nil
}

// AttachPhoto stores a crop photo and records its key on the listing.
func (srv *listingService) AttachPhoto(ctx context.Context, farmerID, listingID uuid.UUID, contentType string, photo io.Reader) (string, error) {
	if srv.photoStore == nil {
		return "", domainerrors.ErrInternalError.WrapMessage("photo storage is not configured")
	}

	listing, err := srv.GetListing(ctx, listingID)
	if err != nil {
		return "", err
	}

	if listing.FarmerID != farmerID {
		return "", domainerrors.ErrListingOwnershipViolation.WrapMessage("listing belongs to another farmer")
	}

	key := fmt.Sprintf("listings/%s/%d", listingID, time.Now().UnixNano())
	storedKey, err := srv.photoStore.Put(ctx, key, contentType, photo)
	if err != nil {
		return "", errors.Wrap(err, "failed to store photo")
	}

	listing.PhotoKey = storedKey
	listing.UpdatedAt = time.Now()
	if err := srv.listingRepo.Update(ctx, listing); err != nil {
		return "", errors.Wrap(err, "failed to record photo key")
	}

	return storedKey, nil
}

// ShareQR renders a QR code PNG linking to the listing.
func (srv *listingService) ShareQR(ctx context.Context, listingID uuid.UUID) ([]byte, error) {
	if srv.qrService == nil {
		return nil, domainerrors.ErrInternalError.WrapMessage("qr generation is not configured")
	}

	if _, err := srv.GetListing(ctx, listingID); err != nil {
		return nil, err
	}

	png, err := srv.qrService.GenerateListingQR(listingID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate qr code")
	}

	return png, nil
}
