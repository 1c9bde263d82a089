package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/insideout/userdb/internal/api/http/handlers"
	"github.com/insideout/userdb/internal/auth"
)

// DefaultAPIPrefix is used when RouteConfig.Prefix is empty.
const DefaultAPIPrefix = "/api/v1"

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Prefix         string
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	LoginLimiter   fiber.Handler
	Usage          fiber.Handler
}

// RegisterRoutes wires HTTP routes. Gated routes carry their middleware in the
// route chain so public siblings under the same prefix stay open.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultAPIPrefix
	}
	api := app.Group(prefix)

	api.Get("/", cfg.Auth.Index)
	api.Post("/register", cfg.Auth.Register)
	api.Post("/login", chain(cfg.LoginLimiter, cfg.Auth.Login)...)
	api.Post("/logout", cfg.Auth.Logout)
	api.Post("/forgot-password", cfg.Auth.ForgotPassword)
	api.Post("/reset-password", cfg.Auth.ResetPassword)

	gate := cfg.AuthMiddleware.Handle
	api.Get("/verify-token", chain(gate, cfg.Usage, cfg.Auth.VerifyToken)...)
	api.Get("/users", chain(gate, cfg.Usage, auth.RequireAdmin(), cfg.Admin.Users)...)
	api.Get("/api-calls", chain(gate, cfg.Usage, cfg.Admin.APICalls)...)
}

func chain(handlers ...fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
