package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/insideout/userdb/internal/auth"
	"github.com/insideout/userdb/internal/config"
	"github.com/insideout/userdb/internal/domain"
	"github.com/insideout/userdb/internal/events"
	"github.com/insideout/userdb/internal/observability"
	"github.com/insideout/userdb/internal/repository"
)

var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned by Register for a duplicate email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrResetTokenInvalid covers unknown, used and expired reset tokens.
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
)

// Session is the outcome of a successful login.
type Session struct {
	User   *domain.User
	Token  string
	Claims *auth.Claims
}

// AuthService coordinates registration, login, logout and password resets.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	tokens     *auth.TokenManager
	denylist   auth.Denylist
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	bcryptCost int
	resetTTL   time.Duration
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
// Denylist, Dispatcher and Metrics are optional.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Tokens            *auth.TokenManager
	Denylist          auth.Denylist
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
	Metrics           *observability.Metrics
	Clock             func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	s := &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		tokens:     deps.Tokens,
		denylist:   deps.Denylist,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		bcryptCost: cfg.BcryptCost,
		resetTTL:   cfg.PasswordResetTTL(),
		now:        deps.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Register creates a new account. Self-registered accounts always get the user role.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{Email: user.Email, Name: user.Name})
	return user, nil
}

// Login verifies the password against the credential store and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	token, claims, err := s.tokens.Issue(auth.Identity{
		SubjectID: user.ID,
		Email:     user.Email,
		Role:      user.Role,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserLoggedIn, user.ID, nil)
	return &Session{User: user, Token: token, Claims: claims}, nil
}

// Logout deny-lists token when revocation is enabled. Without a deny-list the
// token stays valid until exp and only the cookie is cleared. A deny-list
// failure is logged and counted; the caller still ends the session.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return
	}
	if s.denylist != nil {
		if err := s.denylist.Revoke(ctx, token, claims.Expiry()); err != nil {
			s.logger.Error("revoke token on logout", zap.String("user_id", claims.ID), zap.Error(err))
			s.metrics.RecordRevocationFailure()
		}
	}
	s.publish(ctx, events.EventUserLoggedOut, claims.ID, nil)
}

// RequestPasswordReset stores a single-use reset token for email. Unknown
// emails succeed silently so the endpoint cannot be used to probe accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug("password reset for unknown email")
			return nil
		}
		return err
	}

	reset := &domain.PasswordReset{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordResetRequested, user.ID, events.PasswordResetRequestedPayload{
		Email:     user.Email,
		Token:     reset.Token,
		ExpiresAt: reset.ExpiresAt,
	})
	return nil
}

// ResetPassword redeems a reset token and replaces the password hash. The
// token is spent only if the new hash is stored.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	reset, err := s.resets.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrResetTokenInvalid
		}
		return err
	}
	if !reset.Usable(s.now()) {
		return ErrResetTokenInvalid
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.resets.Redeem(ctx, reset.ID, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrResetTokenInvalid
		}
		return err
	}

	s.publish(ctx, events.EventPasswordResetCompleted, reset.UserID, nil)
	return nil
}

// ListUsers returns every identity record.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: s.now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("type", string(eventType)), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
