package handler

import (
	"log/slog"
	"net/http"

	"agriconnect/internal/delivery/http/response"
	"agriconnect/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Logger *slog.Logger
}

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC: params.AuthUC,
		logger: params.Logger,
	}
}

// SendOtpRequest represents the request body for requesting a login code.
type SendOtpRequest struct {
	Phone string `json:"phone" validate:"required,min=8,max=20"`
}

// VerifyOtpRequest represents the request body for redeeming a login code.
type VerifyOtpRequest struct {
	Phone       string `json:"phone" validate:"required,min=8,max=20"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	Name        string `json:"name,omitempty" validate:"omitempty,max=100"`
	Role        string `json:"role" validate:"required,oneof=farmer buyer"`
	DeviceToken string `json:"device_token,omitempty" validate:"omitempty,max=512"`
}

// FirebaseLoginRequest represents the request body for the Firebase phone sign-in flow.
type FirebaseLoginRequest struct {
	IDToken     string `json:"id_token" validate:"required"`
	Name        string `json:"name,omitempty" validate:"omitempty,max=100"`
	Role        string `json:"role" validate:"required,oneof=farmer buyer"`
	DeviceToken string `json:"device_token,omitempty" validate:"omitempty,max=512"`
}

// RefreshRequest represents the request body for exchanging a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// SendOtp handles issuing a one-time login code.
func (h *AuthHandler) SendOtp(c echo.Context) error {
	var req SendOtpRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid OTP request input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.SendOtpInput{Phone: req.Phone}
	if err := h.authUC.SendOtp(c.Request().Context(), input); err != nil {
		return response.HandleAppError(c, err)
	}

	// The response never reveals whether the phone is already registered.
	return response.Success(c, http.StatusOK, map[string]string{"message": "OTP sent"})
}

// VerifyOtp handles redeeming a login code for a token pair.
func (h *AuthHandler) VerifyOtp(c echo.Context) error {
	var req VerifyOtpRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid OTP verification input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.VerifyOtpInput{
		Phone:       req.Phone,
		Code:        req.Code,
		Name:        req.Name,
		Role:        req.Role,
		DeviceToken: req.DeviceToken,
	}

	output, err := h.authUC.VerifyOtp(c.Request().Context(), input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, output)
}

// FirebaseLogin handles sign-in with a Firebase phone ID token.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid Firebase login input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.FirebaseLoginInput{
		IDToken:     req.IDToken,
		Name:        req.Name,
		Role:        req.Role,
		DeviceToken: req.DeviceToken,
	}

	output, err := h.authUC.FirebaseLogin(c.Request().Context(), input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, output)
}

// Refresh handles exchanging a refresh token for a new token pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid refresh input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	output, err := h.authUC.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, output)
}
