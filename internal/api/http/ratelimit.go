package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	apperrors "github.com/insideout/userdb/pkg/util/errorutil"
)

const (
	defaultLoginRate   = "5-M"
	loginLimiterPrefix = "limiter:login"
)

// NewLoginLimiter builds the limiter guarding POST /login. A nil client, or a
// client whose server cannot load the limiter scripts, selects the in-process
// memory store. Only a bad rate string is an error.
func NewLoginLimiter(client *redis.Client, formatted string, logger *zap.Logger) (*limiter.Limiter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if formatted == "" {
		formatted = defaultLoginRate
	}
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}

	opts := limiter.StoreOptions{Prefix: loginLimiterPrefix, CleanUpInterval: limiter.DefaultCleanUpInterval}
	var store limiter.Store
	if client != nil {
		store, err = redisstore.NewStoreWithOptions(client, opts)
		if err != nil {
			logger.Warn("login limiter falling back to memory store", zap.Error(err))
			store = nil
		}
	}
	if store == nil {
		store = memory.NewStoreWithOptions(opts)
	}
	return limiter.New(store, rate), nil
}

// RateLimit throttles requests per client IP. Store failures let the request
// through; an unavailable limiter must not lock everyone out of login.
func RateLimit(l *limiter.Limiter, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		if l == nil {
			return c.Next()
		}
		lctx, err := l.Get(c.UserContext(), c.IP())
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			logger.Info("rate limit reached", zap.String("ip", c.IP()), zap.String("path", c.Path()))
			return apperrors.NewTooManyRequests("too many attempts, try again later", map[string]any{"retry_at": lctx.Reset})
		}
		return c.Next()
	}
}
