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

// bidService implements the BidUsecase interface.
type bidService struct {
	txManager   repository.TransactionManager
	bidRepo     repository.BidRepository
	listingRepo repository.ListingRepository
	profileRepo repository.ProfileRepository
	notifyRepo  repository.NotificationRepository
	publisher   service.EventPublisher
	logger      *slog.Logger
}

// BidServiceParams holds dependencies for BidService, injected by Fx.
type BidServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	BidRepo     repository.BidRepository
	ListingRepo repository.ListingRepository
	ProfileRepo repository.ProfileRepository
	NotifyRepo  repository.NotificationRepository
	Publisher   service.EventPublisher
	Logger      *slog.Logger
}

// NewBidService is the constructor for bidService.
func NewBidService(params BidServiceParams) usecase.BidUsecase {
	return &bidService{
		txManager:   params.TxManager,
		bidRepo:     params.BidRepo,
		listingRepo: params.ListingRepo,
		profileRepo: params.ProfileRepo,
		notifyRepo:  params.NotifyRepo,
		publisher:   params.Publisher,
		logger:      params.Logger,
	}
}

func (srv *bidService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// PlaceBid records a buyer's offer. When both the listing and the buyer have
// coordinates, the buyer must sit inside the listing's delivery range; when
// either side has none, the bid goes through and the farmer decides.
func (srv *bidService) PlaceBid(ctx context.Context, buyerID uuid.UUID, input *usecase.PlaceBidInput) (*entity.Bid, error) {
	if input.Amount <= 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("amount must be positive")
	}

	listing, err := srv.listingRepo.FindByID(ctx, input.ListingID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, domainerrors.ErrListingNotFound.WrapMessage(input.ListingID.String())
		}

		return nil, errors.Wrap(err, "failed to load listing")
	}

	if listing.FarmerID == buyerID {
		return nil, domainerrors.ErrBidOnOwnListing.WrapMessage("farmer and buyer are the same account")
	}

	buyerPoint, err := srv.buyerPoint(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	if err := srv.checkDeliveryRange(ctx, listing, buyerPoint); err != nil {
		return nil, err
	}

	var bid *entity.Bid
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		buyer, err := repoFactory.NewUserRepository().FindByID(ctx, buyerID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound.WrapMessage("buyer does not exist")
			}

			return errors.Wrap(err, "failed to load buyer")
		}

		bid = &entity.Bid{
			ID:        uuid.New(),
			ListingID: listing.ID,
			BuyerID:   buyerID,
			BuyerName: buyer.Name,
			Amount:    input.Amount,
			Location:  buyerPoint,
			CreatedAt: time.Now(),
		}

		if err := repoFactory.NewBidRepository().Create(ctx, bid); err != nil {
			return errors.Wrap(err, "failed to create bid")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// The push is best effort: a publisher outage must not unwind a
	// committed bid.
	event := &service.MarketEvent{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		Type:      service.EventBidPlaced,
		ListingID: listing.ID.String(),
		BidID:     bid.ID.String(),
		FarmerID:  listing.FarmerID.String(),
		BuyerID:   buyerID.String(),
		BuyerName: bid.BuyerName,
		Crop:      listing.Crop,
		Amount:    bid.Amount,
	}
	if err := srv.publisher.PublishMarketEvent(ctx, event); err != nil {
		srv.log(ctx).Error("Failed to publish bid event",
			slog.String("bidID", bid.ID.String()),
			slog.Any("error", err))
	}

	srv.log(ctx).Info("Bid placed",
		slog.String("bidID", bid.ID.String()),
		slog.String("listingID", listing.ID.String()),
		slog.Float64("amount", bid.Amount))

	return bid, nil
}

// buyerPoint loads the buyer's profile point; an unset profile yields nil.
func (srv *bidService) buyerPoint(ctx context.Context, buyerID uuid.UUID) (*geo.Point, error) {
	profile, err := srv.profileRepo.FindByUser(ctx, buyerID, entity.RoleBuyer)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load buyer profile")
	}

	if !profile.IsSet {
		return nil, nil
	}

	return profile.Point, nil
}

// checkDeliveryRange enforces the listing's delivery radius against the
// buyer's point. Missing coordinates on either side skip the check; a
// missing listing radius falls back to the farmer's profile radius.
func (srv *bidService) checkDeliveryRange(ctx context.Context, listing *entity.Listing, buyerPoint *geo.Point) error {
	if listing.Location == nil || buyerPoint == nil {
		return nil
	}

	radius := 0.0
	switch {
	case listing.DeliveryRadiusKm != nil:
		radius = *listing.DeliveryRadiusKm
	default:
		profile, err := srv.profileRepo.FindByUser(ctx, listing.FarmerID, entity.RoleFarmer)
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to load farmer profile")
		}
		radius = profile.RadiusKm
	}

	if radius <= 0 {
		return nil
	}

	ok, err := geo.InRange(listing.Location, radius, buyerPoint)
	if err != nil {
		return errors.Wrap(err, "failed to check delivery range")
	}
	if !ok {
		return domainerrors.ErrBidOutOfRange.WrapMessage("buyer is outside the delivery radius")
	}

	return nil
}

// ListForListing returns a listing's bids, highest amount first. Only the
// owning farmer may see them.
func (srv *bidService) ListForListing(ctx context.Context, farmerID, listingID uuid.UUID) ([]*entity.Bid, error) {
	listing, err := srv.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, domainerrors.ErrListingNotFound.WrapMessage(listingID.String())
		}

		return nil, errors.Wrap(err, "failed to load listing")
	}

	if listing.FarmerID != farmerID {
		return nil, domainerrors.ErrListingOwnershipViolation.WrapMessage("listing belongs to another farmer")
	}

	bids, err := srv.bidRepo.FindByListing(ctx, listingID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load bids")
	}

	return bids, nil
}

// ListForBuyer returns the buyer's bids annotated with the distance from the
// buyer's profile point to each listing's location.
func (srv *bidService) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]*entity.BidWithDistance, error) {
	bids, err := srv.bidRepo.FindByBuyer(ctx, buyerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load bids")
	}

	buyerPoint, err := srv.buyerPoint(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	annotated := make([]*entity.BidWithDistance, 0, len(bids))
	for _, bid := range bids {
		annotated = append(annotated, &entity.BidWithDistance{
			Bid:        bid,
			DistanceKm: srv.listingDistance(ctx, bid.ListingID, buyerPoint),
		})
	}

	return annotated, nil
}

// ListNotifications returns the caller's recorded bid alerts, newest first.
func (srv *bidService) ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Notification, error) {
	const defaultLimit = 50
	if limit <= 0 || limit > defaultLimit {
		limit = defaultLimit
	}

	notifications, err := srv.notifyRepo.FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}

	return notifications, nil
}

// listingDistance computes the rounded distance to a listing, or nil when
// either side has no coordinates or the listing is gone.
func (srv *bidService) listingDistance(ctx context.Context, listingID uuid.UUID, buyerPoint *geo.Point) *float64 {
	if buyerPoint == nil {
		return nil
	}

	listing, err := srv.listingRepo.FindByID(ctx, listingID)
	if err != nil || listing.Location == nil {
		return nil
	}

	distance, err := geo.Distance(*buyerPoint, *listing.Location)
	if err != nil {
		return nil
	}

	rounded := geo.RoundKm(distance)

	return &rounded
}
