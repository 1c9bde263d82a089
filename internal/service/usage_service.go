package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/insideout/userdb/internal/auth"
	"github.com/insideout/userdb/internal/domain"
	"github.com/insideout/userdb/internal/repository"
)

var (
	// ErrForeignUsage is returned when a non-admin asks for another user's calls.
	ErrForeignUsage = errors.New("cannot view another user's api calls")
	// ErrInvalidUserID is returned for a user_id filter that is not a uuid.
	ErrInvalidUserID = errors.New("user_id must be a uuid")
)

// UsageService records and reports per-user API calls.
type UsageService struct {
	calls repository.APICallRepository
}

// NewUsageService builds the service.
func NewUsageService(calls repository.APICallRepository) *UsageService {
	return &UsageService{calls: calls}
}

// Record stores one call for userID.
func (s *UsageService) Record(ctx context.Context, userID, method, endpoint string) error {
	return s.calls.Record(ctx, &domain.APICall{
		UserID:     userID,
		HTTPMethod: method,
		Endpoint:   endpoint,
	})
}

// List returns calls visible to the caller. Admins see everything, optionally
// filtered by userID; everyone else only sees their own.
func (s *UsageService) List(ctx context.Context, caller *auth.Claims, userID string) ([]domain.APICall, error) {
	if userID != "" {
		if _, err := uuid.Parse(userID); err != nil {
			return nil, ErrInvalidUserID
		}
	}
	if caller.Role != domain.RoleAdmin {
		if userID != "" && userID != caller.ID {
			return nil, ErrForeignUsage
		}
		return s.calls.ListByUser(ctx, caller.ID)
	}
	if userID == "" {
		return s.calls.List(ctx)
	}
	return s.calls.ListByUser(ctx, userID)
}
