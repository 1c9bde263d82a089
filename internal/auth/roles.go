package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/insideout/userdb/internal/domain"
	apperrors "github.com/insideout/userdb/pkg/util/errorutil"
)

// RequireRole ensures the verified claims carry one of the allowed roles.
// It must run after AuthMiddleware.Handle.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(unauthenticatedMessage)
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[claims.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin is RequireRole(domain.RoleAdmin).
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}
