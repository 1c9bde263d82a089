package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insideout/userdb/internal/auth"
	"github.com/insideout/userdb/internal/domain"
	"github.com/insideout/userdb/internal/repository"
)

func TestUsageVisibility(t *testing.T) {
	ctx := context.Background()
	svc := NewUsageService(repository.NewMemoryAPICallRepository())

	alice, bob := uuid.NewString(), uuid.NewString()
	require.NoError(t, svc.Record(ctx, alice, "GET", "/api/v1/verify-token"))
	require.NoError(t, svc.Record(ctx, alice, "GET", "/api/v1/api-calls"))
	require.NoError(t, svc.Record(ctx, bob, "GET", "/api/v1/users"))

	admin := &auth.Claims{ID: uuid.NewString(), Role: domain.RoleAdmin}
	all, err := svc.List(ctx, admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	bobs, err := svc.List(ctx, admin, bob)
	require.NoError(t, err)
	assert.Len(t, bobs, 1)

	aliceClaims := &auth.Claims{ID: alice, Role: domain.RoleUser}
	own, err := svc.List(ctx, aliceClaims, "")
	require.NoError(t, err)
	assert.Len(t, own, 2)

	_, err = svc.List(ctx, aliceClaims, bob)
	assert.ErrorIs(t, err, ErrForeignUsage)

	_, err = svc.List(ctx, admin, "42")
	assert.ErrorIs(t, err, ErrInvalidUserID)
}
