package handler

import (
	"agriconnect/internal/delivery/http/middleware"
	"agriconnect/internal/delivery/http/response"
	"agriconnect/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated user ID placed by the auth middleware.
func getUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	return userID, nil
}

// getRole extracts the authenticated marketplace role placed by the auth middleware.
func getRole(c echo.Context) (entity.Role, error) {
	roleStr, ok := c.Get(middleware.ContextKeyRole).(string)
	if !ok {
		return "", response.Forbidden(c, "ROLE_MISSING", "Permission denied: role information missing")
	}

	role := entity.Role(roleStr)
	if !role.IsValid() {
		return "", response.Forbidden(c, "ROLE_INVALID", "Permission denied: unknown role")
	}

	return role, nil
}
