package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThroughWrappedDomainErrors(t *testing.T) {
	base := NewConflict("email already registered", map[string]any{"field": "email"})
	wrapped := fmt.Errorf("register: %w", base)

	got := ToDomainError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, "CONFLICT", got.Code)
	assert.Equal(t, http.StatusConflict, got.HTTPStatus)
	assert.Equal(t, "email", got.Details["field"])
}

func TestToDomainErrorMapsFiberErrors(t *testing.T) {
	got := ToDomainError(fiber.ErrNotFound)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, http.StatusNotFound, got.HTTPStatus)

	got = ToDomainError(fiber.NewError(http.StatusTeapot, "short and stout"))
	assert.Equal(t, "REQUEST_FAILED", got.Code)
	assert.Equal(t, "short and stout", got.Message)
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	got := ToDomainError(fmt.Errorf("lookup: %w", pgx.ErrNoRows))
	assert.Equal(t, "NOT_FOUND", got.Code)
}

func TestToDomainErrorHidesUnknownErrors(t *testing.T) {
	cause := errors.New("connection reset by peer")
	got := ToDomainError(cause)

	assert.Equal(t, "INTERNAL_ERROR", got.Code)
	assert.Equal(t, "internal server error", got.Message)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, ToDomainError(nil))
}
