package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"agriconnect/internal/delivery/http/response"
	"agriconnect/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// BidHandlerParams holds dependencies for BidHandler, injected by Fx.
type BidHandlerParams struct {
	fx.In

	BidUC  usecase.BidUsecase
	Logger *slog.Logger
}

// BidHandler holds dependencies for bidding handlers.
type BidHandler struct {
	bidUC  usecase.BidUsecase
	logger *slog.Logger
}

// NewBidHandler is the constructor for BidHandler.
func NewBidHandler(params BidHandlerParams) *BidHandler {
	return &BidHandler{
		bidUC:  params.BidUC,
		logger: params.Logger,
	}
}

// PlaceBidRequest represents the request body for placing a bid.
type PlaceBidRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// PlaceBid handles recording a buyer's offer on a listing.
func (h *BidHandler) PlaceBid(c echo.Context) error {
	buyerID, err := getUserID(c)
	if err != nil {
		return err
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid listing ID")
	}

	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid bid input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.PlaceBidInput{
		ListingID: listingID,
		Amount:    req.Amount,
	}

	bid, err := h.bidUC.PlaceBid(c.Request().Context(), buyerID, input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, bid)
}

// ListForListing handles retrieving all bids on the caller's listing,
// highest amount first.
func (h *BidHandler) ListForListing(c echo.Context) error {
	farmerID, err := getUserID(c)
	if err != nil {
		return err
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid listing ID")
	}

	bids, err := h.bidUC.ListForListing(c.Request().Context(), farmerID, listingID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, bids)
}

// ListNotifications handles retrieving the caller's recorded bid alerts.
func (h *BidHandler) ListNotifications(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return response.BadRequest(c, "INVALID_QUERY", "Invalid limit")
		}
	}

	notifications, err := h.bidUC.ListNotifications(c.Request().Context(), userID, limit)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, notifications)
}

// ListMine handles retrieving the caller's own bids with listing distance.
func (h *BidHandler) ListMine(c echo.Context) error {
	buyerID, err := getUserID(c)
	if err != nil {
		return err
	}

	bids, err := h.bidUC.ListForBuyer(c.Request().Context(), buyerID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, bids)
}
