package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"agriconnect/config"
	deliverycontext "agriconnect/internal/delivery/context"
	"agriconnect/internal/domain/constants"
	"agriconnect/internal/domain/entity"
	"agriconnect/internal/domain/repository"
	"agriconnect/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// retryableError wraps an error to indicate it should trigger a Pub/Sub retry
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// newRetryableError wraps an error as retryable
func newRetryableError(err error) error {
	return &retryableError{err: err}
}

// isRetryableError checks if an error is retryable
func isRetryableError(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}

// PushHandler handles Pub/Sub push messages for marketplace events
type PushHandler struct {
	verifyPushAuth   bool
	logger           *slog.Logger
	notificationSvc  service.NotificationService
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config           *config.Config
	Logger           *slog.Logger
	NotificationSvc  service.NotificationService
	UserRepo         repository.UserRepository
	NotificationRepo repository.NotificationRepository
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	// Only Google-delivered pushes carry a verifiable ID token, and local
	// development skips verification entirely.
	verifyPushAuth := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == constants.PubSubProviderGoogle &&
		params.Config.Env.Env != constants.EnvDevelop

	return &PushHandler{
		verifyPushAuth:   verifyPushAuth,
		logger:           params.Logger,
		notificationSvc:  params.NotificationSvc,
		userRepo:         params.UserRepo,
		notificationRepo: params.NotificationRepo,
	}
}

// HandlePush handles incoming Pub/Sub push messages
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	// Verify Pub/Sub token in production for Google provider
	if h.verifyPushAuth {
		if err := verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	// Parse Pub/Sub message
	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Decode base64 message data
	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Parse marketplace event
	var event service.MarketEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Worker] Failed to parse market event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Extract request_id for distributed tracing
	// Priority: message attributes > event field > existing context
	requestID := h.extractRequestID(ctx, &pushMsg, &event)

	// Create request-scoped logger with request_id
	reqLogger := h.logger.With(slog.String("request_id", requestID))

	// Update context with request_id and logger
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Info("[Worker] Processing market event",
		slog.String("type", event.Type),
		slog.String("listing_id", event.ListingID),
		slog.String("bid_id", event.BidID),
	)

	if err := h.processEvent(ctx, reqLogger, &event); err != nil {
		reqLogger.Error("[Worker] Failed to process market event",
			slog.String("type", event.Type),
			slog.Any("error", err),
			slog.Bool("retryable", isRetryableError(err)),
		)
		// Return 503 for retryable errors to trigger Pub/Sub retry
		// Return 200 for non-retryable errors to prevent infinite retries
		if isRetryableError(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	reqLogger.Info("[Worker] Market event processed successfully",
		slog.String("type", event.Type),
	)

	return c.NoContent(http.StatusOK)
}

// extractRequestID extracts request_id from message attributes, event, or generates a new one
func (h *PushHandler) extractRequestID(ctx context.Context, pushMsg *PubSubMessage, event *service.MarketEvent) string {
	// 1. Try message attributes (from Pub/Sub)
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}

	// 2. Try event field (from JSON payload)
	if event.RequestID != "" {
		return event.RequestID
	}

	// 3. Try existing context (from RequestIDMiddleware via X-Request-Id header)
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	// 4. Generate new UUID as fallback
	return uuid.New().String()
}

// processEvent dispatches a market event to its handler
func (h *PushHandler) processEvent(ctx context.Context, logger *slog.Logger, event *service.MarketEvent) error {
	switch event.Type {
	case service.EventBidPlaced:
		return h.processBidPlaced(ctx, logger, event)
	case service.EventOtpRequested:
		return h.processOtpRequested(logger, event)
	default:
		// Unknown types are acked so a stale schema never wedges the
		// subscription.
		logger.Warn("[Worker] Unknown market event type", slog.String("type", event.Type))

		return nil
	}
}

// processBidPlaced pushes a bid alert to the listing's farmer and records
// the delivery outcome.
func (h *PushHandler) processBidPlaced(ctx context.Context, logger *slog.Logger, event *service.MarketEvent) error {
	farmerID, listingID, bidID, err := parseBidEventIDs(event)
	if err != nil {
		return err
	}

	notification := &entity.Notification{
		ID:        uuid.New(),
		UserID:    farmerID,
		ListingID: listingID,
		BidID:     bidID,
		Title:     bidTitle(event),
		Body:      bidBody(event),
		Status:    entity.NotificationStatusPending,
		CreatedAt: time.Now(),
	}

	if err := h.notificationRepo.Create(ctx, notification); err != nil {
		return newRetryableError(errors.WithStack(err))
	}

	farmer, err := h.userRepo.FindByID(ctx, farmerID)
	if errors.Is(err, repository.ErrUserNotFound) {
		// The farmer was deleted between the bid and this push.
		h.markNotification(ctx, logger, notification.ID, entity.NotificationStatusFailed)

		return nil
	}
	if err != nil {
		return newRetryableError(errors.WithStack(err))
	}

	if h.notificationSvc == nil {
		logger.Warn("[Worker] Push delivery is not configured")
		h.markNotification(ctx, logger, notification.ID, entity.NotificationStatusFailed)

		return nil
	}

	if farmer.DeviceToken == "" {
		logger.Info("[Worker] Farmer has no registered device",
			slog.String("farmer_id", farmerID.String()),
		)
		h.markNotification(ctx, logger, notification.ID, entity.NotificationStatusFailed)

		return nil
	}

	data := map[string]string{
		"listing_id": event.ListingID,
		"bid_id":     event.BidID,
		"amount":     fmt.Sprintf("%.2f", event.Amount),
	}

	// A failed push is acked rather than retried; retrying would mint a
	// duplicate notification record for the same bid.
	if err := h.notificationSvc.SendSingleNotification(ctx, farmer.DeviceToken, notification.Title, notification.Body, data); err != nil {
		logger.Error("[Worker] Failed to push bid alert",
			slog.String("bid_id", event.BidID),
			slog.Any("error", err),
		)
		h.markNotification(ctx, logger, notification.ID, entity.NotificationStatusFailed)

		return nil
	}

	h.markNotification(ctx, logger, notification.ID, entity.NotificationStatusSent)

	return nil
}

// processOtpRequested hands a login code to the SMS gateway. The gateway
// integration is an outbound HTTP hook in production; here the send is
// recorded with the phone masked.
func (h *PushHandler) processOtpRequested(logger *slog.Logger, event *service.MarketEvent) error {
	if event.Phone == "" || event.SmsBody == "" {
		return errors.New("otp event missing phone or body")
	}

	logger.Info("[Worker] Dispatching login code SMS",
		slog.String("phone", maskPhone(event.Phone)),
		slog.Int("body_length", len(event.SmsBody)),
	)

	return nil
}

// markNotification transitions a notification's delivery status, logging
// rather than failing the push on error.
func (h *PushHandler) markNotification(ctx context.Context, logger *slog.Logger, id uuid.UUID, status entity.NotificationStatus) {
	if err := h.notificationRepo.UpdateStatus(ctx, id, status); err != nil {
		logger.Error("[Worker] Failed to update notification status",
			slog.String("notification_id", id.String()),
			slog.String("status", string(status)),
			slog.Any("error", err),
		)
	}
}

// parseBidEventIDs parses and validates all IDs from a bid-placed event
func parseBidEventIDs(event *service.MarketEvent) (farmerID, listingID, bidID uuid.UUID, err error) {
	farmerID, err = uuid.Parse(event.FarmerID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, errors.WithStack(err)
	}

	listingID, err = uuid.Parse(event.ListingID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, errors.WithStack(err)
	}

	bidID, err = uuid.Parse(event.BidID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, errors.WithStack(err)
	}

	return farmerID, listingID, bidID, nil
}

// bidTitle builds the push title for a bid alert
func bidTitle(event *service.MarketEvent) string {
	if event.Crop == "" {
		return "New bid on your listing"
	}

	return fmt.Sprintf("New bid on your %s", event.Crop)
}

// bidBody builds the push body for a bid alert
func bidBody(event *service.MarketEvent) string {
	buyer := event.BuyerName
	if buyer == "" {
		buyer = "A buyer"
	}

	return fmt.Sprintf("%s offered %.2f", buyer, event.Amount)
}

// maskPhone hides all but the last three digits of a phone number
func maskPhone(phone string) string {
	const visible = 3
	if len(phone) <= visible {
		return strings.Repeat("*", len(phone))
	}

	return strings.Repeat("*", len(phone)-visible) + phone[len(phone)-visible:]
}

// verifyPubSubToken verifies the JWT token from Google Pub/Sub push requests
// Reference: https://cloud.google.com/pubsub/docs/push#authenticating_standard_push_requests
func verifyPubSubToken(req *http.Request) error {
	// Get the Authorization header
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	// Extract Bearer token
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	// Construct the expected audience (the push endpoint URL)
	// The audience should be the URL of this endpoint
	scheme := "https"
	if req.TLS == nil {
		scheme = "http" // For local development
	}
	audience := fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)

	// Validate the token using Google's ID token validator
	ctx := req.Context()
	payload, err := idtoken.Validate(ctx, token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	// Verify the token is from Google Pub/Sub
	// The issuer should be accounts.google.com
	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	// Verify email is verified (if email claim exists)
	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
