package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/insideout/userdb/internal/api/dto"
	"github.com/insideout/userdb/internal/auth"
	"github.com/insideout/userdb/internal/service"
	apperrors "github.com/insideout/userdb/pkg/util/errorutil"
)

// AuthHandler exposes registration, session and password reset endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	cookies auth.CookieConfig
	version string
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookies auth.CookieConfig, version string) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: cookies, version: version}
}

// Index handles GET {prefix}.
func (h *AuthHandler) Index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Hello, this is " + h.version + " of the database."})
}

// Register handles POST {prefix}/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return apperrors.NewConflict(err.Error(), map[string]any{"email": "taken"})
		}
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "successfully registered user",
		"data":    fiber.Map{"user": dto.NewUserResponse(user)},
	})
}

// Login handles POST {prefix}/login and sets the session cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewUnauthorized(err.Error())
		}
		return err
	}

	h.cookies.SetSession(c, session.Token)
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"data": fiber.Map{
			"user":    dto.NewUserResponse(session.User),
			"session": dto.SessionResponse{ExpiresAt: session.Claims.Expiry().UTC()},
		},
	})
}

// VerifyToken handles GET {prefix}/verify-token behind the auth gate.
func (h *AuthHandler) VerifyToken(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("invalid or missing session")
	}
	return c.JSON(fiber.Map{"message": "Token is valid", "info": claims})
}

// Logout handles POST {prefix}/logout. It always clears the cookie and answers 200.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := h.cookies.TokenFromRequest(c)
	h.cookies.ClearSession(c)
	h.auth.Logout(c.UserContext(), token)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// ForgotPassword handles POST {prefix}/forgot-password. The response does not
// reveal whether the email exists.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	if err := h.auth.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"message": "If the account exists, a reset link has been sent"})
}

// ResetPassword handles POST {prefix}/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	if err := h.auth.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		if errors.Is(err, service.ErrResetTokenInvalid) {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		return err
	}
	return c.JSON(fiber.Map{"message": "Password has been reset successfully"})
}
