package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Auth.JWTSecret, "secret must never get a default")
	assert.Equal(t, "authToken", cfg.Auth.CookieName)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, "None", cfg.Auth.CookieSameSite)
	assert.False(t, cfg.Auth.RevocationEnabled)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, time.Hour, cfg.Auth.PasswordResetTTL())
	assert.Equal(t, "/api/v1", cfg.App.APIPrefix)
	assert.Equal(t, "5-M", cfg.RateLimit.LoginRate)
	assert.Equal(t, "migrations", cfg.Postgres.MigrationsDir)
	assert.Equal(t, []string{"https://insideout-psi.vercel.app", "https://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_REVOCATION_ENABLED", "true")
	t.Setenv("AUTH_COOKIE_SECURE", "not-a-bool")
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Auth.RevocationEnabled)
	assert.True(t, cfg.Auth.CookieSecure, "unparsable values fall back")
	assert.Equal(t, "127.0.0.1:9000", cfg.App.Addr())
	assert.Equal(t, time.Duration(0), cfg.App.RequestTimeout())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	assert.Error(t, err)
}
