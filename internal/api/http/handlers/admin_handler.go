package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/insideout/userdb/internal/api/dto"
	"github.com/insideout/userdb/internal/auth"
	"github.com/insideout/userdb/internal/service"
	apperrors "github.com/insideout/userdb/pkg/util/errorutil"
)

// AdminHandler serves the dashboard data: users and API usage.
type AdminHandler struct {
	auth  *service.AuthService
	usage *service.UsageService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService, usage *service.UsageService) *AdminHandler {
	return &AdminHandler{auth: authService, usage: usage}
}

// Users handles GET {prefix}/users (admin only).
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

// APICalls handles GET {prefix}/api-calls[?user_id=].
func (h *AdminHandler) APICalls(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("invalid or missing session")
	}

	calls, err := h.usage.List(c.UserContext(), claims, c.Query("user_id"))
	switch {
	case errors.Is(err, service.ErrForeignUsage):
		return apperrors.NewForbidden(err.Error())
	case errors.Is(err, service.ErrInvalidUserID):
		return apperrors.NewValidationError(err.Error(), map[string]any{"user_id": "uuid"})
	case err != nil:
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAPICallResponses(calls)})
}
