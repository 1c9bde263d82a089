package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/insideout/userdb/pkg/util/errorutil"
)

const (
	claimsKey = "auth_claims"
	tokenKey  = "auth_token"
)

// unauthenticatedMessage is the only failure text clients ever see.
const unauthenticatedMessage = "invalid or missing session"

// AuthMiddleware verifies the session cookie and stores the claims on the context.
type AuthMiddleware struct {
	tokens   *TokenManager
	denylist Denylist
	cookies  CookieConfig
	logger   *zap.Logger
	onReject func(reason string)
}

// NewAuthMiddleware constructs middleware. denylist may be nil when revocation is disabled.
func NewAuthMiddleware(tokens *TokenManager, denylist Denylist, cookies CookieConfig, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, denylist: denylist, cookies: cookies, logger: logger}
}

// OnReject registers fn to be called with the internal reason of every rejected session.
func (m *AuthMiddleware) OnReject(fn func(reason string)) {
	m.onReject = fn
}

func (m *AuthMiddleware) reject(c *fiber.Ctx, reason string, fields ...zap.Field) error {
	fields = append([]zap.Field{zap.String("reason", reason), zap.String("path", c.Path())}, fields...)
	m.logger.Debug("session rejected", fields...)
	if m.onReject != nil {
		m.onReject(reason)
	}
	return apperrors.NewUnauthorized(unauthenticatedMessage)
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	raw := m.cookies.TokenFromRequest(c)
	if raw == "" {
		return m.reject(c, "missing")
	}

	claims, err := m.tokens.Verify(raw)
	if err != nil {
		return m.reject(c, FailureReason(err), zap.Error(err))
	}

	if m.denylist != nil {
		revoked, err := m.denylist.IsRevoked(c.UserContext(), raw)
		if err != nil {
			m.logger.Error("denylist lookup failed", zap.Error(err))
			return apperrors.NewInternalError(err)
		}
		if revoked {
			return m.reject(c, FailureReason(ErrTokenRevoked), zap.String("subject", claims.ID))
		}
	}

	c.Locals(claimsKey, claims)
	c.Locals(tokenKey, raw)
	return c.Next()
}

// ClaimsFromContext retrieves the verified claims.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*Claims)
	return claims, ok && claims != nil
}
