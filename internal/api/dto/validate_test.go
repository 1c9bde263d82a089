package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/insideout/userdb/pkg/util/errorutil"
)

func TestValidateReportsFields(t *testing.T) {
	err := Validate(UserRegisterRequest{Name: "Ada", Email: "not-an-email", Password: "short"})
	require.Error(t, err)

	de := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Equal(t, map[string]any{"email": "email", "password": "min"}, de.Details)
}

func TestValidateAcceptsGoodPayload(t *testing.T) {
	assert.NoError(t, Validate(UserLoginRequest{Email: "ada@example.com", Password: "x"}))
	assert.NoError(t, Validate(ResetPasswordRequest{Token: "t", Password: "long-enough"}))
}

func TestValidateUsesJSONTagNames(t *testing.T) {
	type filter struct {
		UserID   string `json:"user_id" validate:"required,uuid"`
		HTTPVerb string `json:"http_method,omitempty" validate:"required"`
		Untagged string `validate:"required"`
	}

	err := Validate(filter{UserID: "42"})
	require.Error(t, err)
	assert.Equal(t, map[string]any{
		"user_id":     "uuid",
		"http_method": "required",
		"Untagged":    "required",
	}, apperrors.ToDomainError(err).Details)
}
