package handler

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"agriconnect/internal/delivery/http/response"
	"agriconnect/internal/domain/geo"
	"agriconnect/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// maxPhotoSize caps uploaded crop photos at 5 MiB.
const maxPhotoSize = 5 << 20

// ListingHandlerParams holds dependencies for ListingHandler, injected by Fx.
type ListingHandlerParams struct {
	fx.In

	ListingUC usecase.ListingUsecase
	Logger    *slog.Logger
}

// ListingHandler holds dependencies for produce listing handlers.
type ListingHandler struct {
	listingUC usecase.ListingUsecase
	logger    *slog.Logger
}

// NewListingHandler is the constructor for ListingHandler.
func NewListingHandler(params ListingHandlerParams) *ListingHandler {
	return &ListingHandler{
		listingUC: params.ListingUC,
		logger:    params.Logger,
	}
}

// CreateListingRequest represents the request body for publishing a crop lot.
type CreateListingRequest struct {
	Crop             string   `json:"crop" validate:"required,max=100"`
	Unit             string   `json:"unit,omitempty" validate:"omitempty,max=20"`
	Quantity         float64  `json:"quantity" validate:"required,gt=0"`
	MinPrice         float64  `json:"min_price" validate:"required,gt=0"`
	Latitude         *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude        *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	DeliveryRadiusKm *float64 `json:"delivery_radius_km,omitempty" validate:"omitempty,gt=0"`
}

// CreateListing handles publishing a new crop lot for the farmer.
func (h *ListingHandler) CreateListing(c echo.Context) error {
	farmerID, err := getUserID(c)
	if err != nil {
		return err
	}

	var req CreateListingRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid listing input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.CreateListingInput{
		Crop:             req.Crop,
		Unit:             req.Unit,
		Quantity:         req.Quantity,
		MinPrice:         req.MinPrice,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		DeliveryRadiusKm: req.DeliveryRadiusKm,
	}

	listing, err := h.listingUC.CreateListing(c.Request().Context(), farmerID, input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, listing)
}

// ListListings handles browsing listings geofiltered against the viewer's
// profile. Query parameters: crop, page, page_size, gate (viewer|delivery)
// and include_all.
func (h *ListingHandler) ListListings(c echo.Context) error {
	viewerID, err := getUserID(c)
	if err != nil {
		return err
	}

	input := &usecase.ListListingsInput{
		Crop: c.QueryParam("crop"),
	}

	if page := c.QueryParam("page"); page != "" {
		input.Page, err = strconv.Atoi(page)
		if err != nil || input.Page < 1 {
			return response.BadRequest(c, "INVALID_QUERY", "Invalid page number")
		}
	}

	if pageSize := c.QueryParam("page_size"); pageSize != "" {
		input.PageSize, err = strconv.Atoi(pageSize)
		if err != nil || input.PageSize < 1 {
			return response.BadRequest(c, "INVALID_QUERY", "Invalid page size")
		}
	}

	switch c.QueryParam("gate") {
	case "", "viewer":
		input.Gate = geo.GateViewer
	case "delivery":
		input.Gate = geo.GateItem
	default:
		return response.BadRequest(c, "INVALID_QUERY", "Gate must be 'viewer' or 'delivery'")
	}

	if includeAll := c.QueryParam("include_all"); includeAll != "" {
		input.IncludeAll, err = strconv.ParseBool(includeAll)
		if err != nil {
			return response.BadRequest(c, "INVALID_QUERY", "Invalid include_all flag")
		}
	}

	listings, err := h.listingUC.ListListings(c.Request().Context(), viewerID, input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, listings)
}

// GetListing handles retrieving a single listing by ID.
func (h *ListingHandler) GetListing(c echo.Context) error {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid listing ID")
	}

	listing, err := h.listingUC.GetListing(c.Request().Context(), listingID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, listing)
}

// DeleteListing handles removing a listing owned by the caller.
func (h *ListingHandler) DeleteListing(c echo.Context) error {
	farmerID, err := getUserID(c)
	if err != nil {
		return err
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid listing ID")
	}

	if err := h.listingUC.DeleteListing(c.Request().Context(), farmerID, listingID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Listing deleted"})
}

// AttachPhoto handles a multipart crop photo upload for a listing.
func (h *ListingHandler) AttachPhoto(c echo.Context) error {
	farmerID, err := getUserID(c)
	if err != nil {
		return err
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid listing ID")
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Missing photo file")
	}

	if fileHeader.Size > maxPhotoSize {
		return response.BadRequest(c, "PHOTO_TOO_LARGE", "Photo exceeds the 5 MiB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Unreadable photo file")
	}
	defer func(file multipart.File) {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded photo", slog.Any("error", closeErr))
		}
	}(file)

	contentType := fileHeader.Header.Get("Content-Type")

	key, err := h.listingUC.AttachPhoto(c.Request().Context(), farmerID, listingID, contentType, file)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, map[string]string{"photo_key": key})
}

// ShareQR handles rendering a shareable QR code PNG for a listing.
func (h *ListingHandler) ShareQR(c echo.Context) error {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid listing ID")
	}

	png, err := h.listingUC.ShareQR(c.Request().Context(), listingID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
