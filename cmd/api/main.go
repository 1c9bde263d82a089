package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/insideout/userdb/internal/api/http"
	"github.com/insideout/userdb/internal/api/http/handlers"
	"github.com/insideout/userdb/internal/auth"
	"github.com/insideout/userdb/internal/config"
	"github.com/insideout/userdb/internal/events"
	"github.com/insideout/userdb/internal/observability"
	"github.com/insideout/userdb/internal/persistence"
	"github.com/insideout/userdb/internal/repository"
	"github.com/insideout/userdb/internal/service"
	"github.com/insideout/userdb/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret)
	if err != nil {
		if errors.Is(err, auth.ErrConfiguration) {
			logger.Fatal("AUTH_JWT_SECRET must be set", zap.Error(err))
		}
		logger.Fatal("failed to init token manager", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo  repository.UserRepository
		resetRepo repository.PasswordResetRepository
		callRepo  repository.APICallRepository
		pgPinger  handlers.Pinger
	)
	if pg.Configured() {
		pool := pg.PoolHandle()
		userRepo = repository.NewUserRepository(pool)
		resetRepo = repository.NewPasswordResetRepository(pool)
		callRepo = repository.NewAPICallRepository(pool)
		pgPinger = pg
	} else {
		logger.Warn("using in-memory repositories; data is lost on restart")
		userRepo = repository.NewMemoryUserRepository()
		resetRepo = repository.NewMemoryPasswordResetRepository(userRepo)
		callRepo = repository.NewMemoryAPICallRepository()
	}

	var denylist auth.Denylist
	if cfg.Auth.RevocationEnabled {
		denylist = auth.NewRedisDenylist(redis.Client, "")
		logger.Info("token revocation enabled")
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		Tokens:            tokens,
		Denylist:          denylist,
		Dispatcher:        dispatcher,
		Logger:            logger,
		Metrics:           metrics,
	})
	usageService := service.NewUsageService(callRepo)

	loginLimiter, err := httptransport.NewLoginLimiter(redis.Client, cfg.RateLimit.LoginRate, logger)
	if err != nil {
		logger.Fatal("invalid RATE_LIMIT_LOGIN", zap.Error(err))
	}

	cookies := auth.CookieConfig{
		Name:     cfg.Auth.CookieName,
		Domain:   cfg.Auth.CookieDomain,
		Secure:   cfg.Auth.CookieSecure,
		SameSite: cfg.Auth.CookieSameSite,
	}
	authMiddleware := auth.NewAuthMiddleware(tokens, denylist, cookies, logger)
	authMiddleware.OnReject(metrics.RecordAuthFailure)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		Timeout:        cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Prefix: cfg.App.APIPrefix,
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pgPinger,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService, cookies, cfg.App.Version),
		Admin:          handlers.NewAdminHandler(authService, usageService),
		AuthMiddleware: authMiddleware,
		LoginLimiter:   httptransport.RateLimit(loginLimiter, logger),
		Usage:          httptransport.RecordUsage(usageService, logger),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("prefix", cfg.App.APIPrefix))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
