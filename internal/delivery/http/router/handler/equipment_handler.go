package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"agriconnect/internal/delivery/http/response"
	"agriconnect/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// EquipmentHandlerParams holds dependencies for EquipmentHandler, injected by Fx.
type EquipmentHandlerParams struct {
	fx.In

	EquipmentUC usecase.EquipmentUsecase
	Logger      *slog.Logger
}

// EquipmentHandler holds dependencies for equipment sharing handlers.
type EquipmentHandler struct {
	equipmentUC usecase.EquipmentUsecase
	logger      *slog.Logger
}

// NewEquipmentHandler is the constructor for EquipmentHandler.
func NewEquipmentHandler(params EquipmentHandlerParams) *EquipmentHandler {
	return &EquipmentHandler{
		equipmentUC: params.EquipmentUC,
		logger:      params.Logger,
	}
}

// CreateEquipmentRequest represents the request body for offering equipment.
type CreateEquipmentRequest struct {
	Name           string   `json:"name" validate:"required,max=100"`
	Category       string   `json:"category" validate:"required,max=50"`
	DailyRate      float64  `json:"daily_rate" validate:"min=0"`
	Barter         bool     `json:"barter"`
	Latitude       *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude      *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	RentalRadiusKm *float64 `json:"rental_radius_km,omitempty" validate:"omitempty,gt=0"`
}

// CreateEquipment handles offering a machine for rental or barter.
func (h *EquipmentHandler) CreateEquipment(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return err
	}

	var req CreateEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid equipment input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.CreateEquipmentInput{
		Name:           req.Name,
		Category:       req.Category,
		DailyRate:      req.DailyRate,
		Barter:         req.Barter,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		RentalRadiusKm: req.RentalRadiusKm,
	}

	equipment, err := h.equipmentUC.CreateEquipment(c.Request().Context(), ownerID, input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, equipment)
}

// ListEquipment handles browsing equipment gated by each item's rental
// radius. Query parameters: category and only_barter.
func (h *EquipmentHandler) ListEquipment(c echo.Context) error {
	viewerID, err := getUserID(c)
	if err != nil {
		return err
	}

	input := &usecase.ListEquipmentInput{
		Category: c.QueryParam("category"),
	}

	if onlyBarter := c.QueryParam("only_barter"); onlyBarter != "" {
		input.OnlyBarter, err = strconv.ParseBool(onlyBarter)
		if err != nil {
			return response.BadRequest(c, "INVALID_QUERY", "Invalid only_barter flag")
		}
	}

	equipment, err := h.equipmentUC.ListEquipment(c.Request().Context(), viewerID, input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, equipment)
}
