package handler

import (
	"log/slog"
	"net/http"

	"agriconnect/internal/delivery/http/response"
	"agriconnect/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// LocationHandlerParams holds dependencies for LocationHandler, injected by Fx.
type LocationHandlerParams struct {
	fx.In

	LocationUC usecase.LocationUsecase
	Logger     *slog.Logger
}

// LocationHandler holds dependencies for location profile handlers.
type LocationHandler struct {
	locationUC usecase.LocationUsecase
	logger     *slog.Logger
}

// NewLocationHandler is the constructor for LocationHandler.
func NewLocationHandler(params LocationHandlerParams) *LocationHandler {
	return &LocationHandler{
		locationUC: params.LocationUC,
		logger:     params.Logger,
	}
}

// UpdateLocationRequest represents the request body for updating a location
// profile. Omitted fields keep their stored values.
type UpdateLocationRequest struct {
	City       *string  `json:"city,omitempty" validate:"omitempty,max=100"`
	State      *string  `json:"state,omitempty" validate:"omitempty,max=100"`
	PostalCode *string  `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Latitude   *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude  *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	RadiusKm   *float64 `json:"radius_km,omitempty" validate:"omitempty,gt=0"`
}

// ResolveCoordinatesRequest represents the request body for geocoding an
// address, with an optional device GPS fix as fallback.
type ResolveCoordinatesRequest struct {
	City            string   `json:"city" validate:"omitempty,max=100"`
	State           string   `json:"state" validate:"omitempty,max=100"`
	PostalCode      string   `json:"postal_code" validate:"omitempty,max=20"`
	SensorLatitude  *float64 `json:"sensor_latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	SensorLongitude *float64 `json:"sensor_longitude,omitempty" validate:"omitempty,min=-180,max=180"`
}

// GetProfile handles retrieving the caller's location profile.
func (h *LocationHandler) GetProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	role, err := getRole(c)
	if err != nil {
		return err
	}

	profile, err := h.locationUC.GetProfile(c.Request().Context(), userID, role)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, profile)
}

// UpdateProfile handles a partial update of the caller's location profile.
func (h *LocationHandler) UpdateProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	role, err := getRole(c)
	if err != nil {
		return err
	}

	var req UpdateLocationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid location input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.UpdateLocationInput{
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		RadiusKm:   req.RadiusKm,
	}

	profile, err := h.locationUC.UpdateProfile(c.Request().Context(), userID, role, input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, profile)
}

// ResolveCoordinates handles turning an address into stored coordinates.
func (h *LocationHandler) ResolveCoordinates(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	role, err := getRole(c)
	if err != nil {
		return err
	}

	var req ResolveCoordinatesRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid address input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.ResolveCoordinatesInput{
		City:            req.City,
		State:           req.State,
		PostalCode:      req.PostalCode,
		SensorLatitude:  req.SensorLatitude,
		SensorLongitude: req.SensorLongitude,
	}

	point, err := h.locationUC.ResolveCoordinates(c.Request().Context(), userID, role, input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	if point == nil {
		return response.Success(c, http.StatusOK, map[string]any{"resolved": false})
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"resolved":  true,
		"latitude":  point.Latitude,
		"longitude": point.Longitude,
	})
}
