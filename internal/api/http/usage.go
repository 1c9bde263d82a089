package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/insideout/userdb/internal/auth"
)

// UsageRecorder stores one API call per authenticated request.
type UsageRecorder interface {
	Record(ctx context.Context, userID, method, endpoint string) error
}

// RecordUsage must run after the auth gate. Recording is best effort: a
// failure is logged and the request proceeds.
func RecordUsage(recorder UsageRecorder, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		claims, ok := auth.ClaimsFromContext(c)
		if ok && recorder != nil {
			if err := recorder.Record(c.UserContext(), claims.ID, c.Method(), c.Path()); err != nil {
				logger.Warn("record api call", zap.String("user_id", claims.ID), zap.Error(err))
			}
		}
		return c.Next()
	}
}
