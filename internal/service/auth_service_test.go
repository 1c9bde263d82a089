package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/insideout/userdb/internal/auth"
	"github.com/insideout/userdb/internal/config"
	"github.com/insideout/userdb/internal/domain"
	"github.com/insideout/userdb/internal/events"
	"github.com/insideout/userdb/internal/observability"
	"github.com/insideout/userdb/internal/repository"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) handler(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordedEvents) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type flakyUserRepository struct {
	repository.UserRepository
	updateErr error
}

func (r *flakyUserRepository) Update(ctx context.Context, user *domain.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	return r.UserRepository.Update(ctx, user)
}

type authFixture struct {
	svc      *AuthService
	users    *flakyUserRepository
	resets   repository.PasswordResetRepository
	tokens   *auth.TokenManager
	redis    *miniredis.Miniredis
	denylist *auth.RedisDenylist
	metrics  *observability.Metrics
	events   *recordedEvents
	now      time.Time
}

func newAuthFixture(t *testing.T, withDenylist bool) *authFixture {
	t.Helper()
	f := &authFixture{
		users:   &flakyUserRepository{UserRepository: repository.NewMemoryUserRepository()},
		metrics: observability.NewMetrics(),
		events:  &recordedEvents{},
		now:     time.Now(),
	}
	f.resets = repository.NewMemoryPasswordResetRepository(f.users)

	tokens, err := auth.NewTokenManager("s3cret")
	require.NoError(t, err)
	f.tokens = tokens

	dispatcher := events.NewInMemoryDispatcher()
	for _, et := range []events.EventType{
		events.EventUserRegistered,
		events.EventUserLoggedIn,
		events.EventUserLoggedOut,
		events.EventPasswordResetRequested,
		events.EventPasswordResetCompleted,
	} {
		dispatcher.Subscribe(et, f.events.handler)
	}

	deps := AuthDependencies{
		UserRepo:          f.users,
		PasswordResetRepo: f.resets,
		Tokens:            tokens,
		Dispatcher:        dispatcher,
		Logger:            zap.NewNop(),
		Metrics:           f.metrics,
		Clock:             func() time.Time { return f.now },
	}
	if withDenylist {
		f.redis = miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: f.redis.Addr(), MaxRetries: -1})
		t.Cleanup(func() { _ = client.Close() })
		f.denylist = auth.NewRedisDenylist(client, "")
		deps.Denylist = f.denylist
	}

	f.svc = NewAuthService(config.AuthConfig{BcryptCost: bcrypt.MinCost, PasswordResetTTLMinutes: 60}, deps)
	return f
}

func TestRegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, " Ada ", " Ada@Example.com ", "pw-123456")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "pw-123456", user.PasswordHash)
	assert.Len(t, f.events.ofType(events.EventUserRegistered), 1)

	_, err = f.svc.Register(ctx, "Ada again", "ada@example.com", "pw")
	assert.ErrorIs(t, err, ErrEmailTaken)

	session, err := f.svc.Login(ctx, "ADA@example.com", "pw-123456")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)

	claims, err := f.tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.ID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.Equal(t, *session.Claims, *claims)
	assert.Len(t, f.events.ofType(events.EventUserLoggedIn), 1)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "Ada", "ada@example.com", "pw-123456")
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "nobody@example.com", "pw-123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginCarriesAdminRole(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	hash, err := auth.HashPassword("root-pw", bcrypt.MinCost)
	require.NoError(t, err)
	admin := &domain.User{Name: "Root", Email: "root@example.com", PasswordHash: hash, Role: domain.RoleAdmin}
	require.NoError(t, f.users.Create(ctx, admin))

	session, err := f.svc.Login(ctx, "root@example.com", "root-pw")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, session.Claims.Role)
}

func TestLogoutWithoutDenylistLeavesTokenValid(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "Ada", "ada@example.com", "pw-123456")
	require.NoError(t, err)
	session, err := f.svc.Login(ctx, "ada@example.com", "pw-123456")
	require.NoError(t, err)

	f.svc.Logout(ctx, session.Token)
	_, err = f.tokens.Verify(session.Token)
	assert.NoError(t, err, "stateless tokens survive logout until exp")
	f.svc.Logout(ctx, "")
	f.svc.Logout(ctx, "garbage")
	assert.Len(t, f.events.ofType(events.EventUserLoggedOut), 1)
}

func TestLogoutWithDenylistRevokes(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "Ada", "ada@example.com", "pw-123456")
	require.NoError(t, err)
	session, err := f.svc.Login(ctx, "ada@example.com", "pw-123456")
	require.NoError(t, err)

	f.svc.Logout(ctx, session.Token)

	revoked, err := f.denylist.IsRevoked(ctx, session.Token)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Len(t, f.events.ofType(events.EventUserLoggedOut), 1)
}

func TestLogoutCountsDenylistFailure(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "Ada", "ada@example.com", "pw-123456")
	require.NoError(t, err)
	session, err := f.svc.Login(ctx, "ada@example.com", "pw-123456")
	require.NoError(t, err)

	f.redis.Close()
	f.svc.Logout(ctx, session.Token)

	assert.Equal(t, int64(1), f.metrics.Snapshot().RevocationFailures)
	assert.Len(t, f.events.ofType(events.EventUserLoggedOut), 1)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "Ada", "ada@example.com", "old-password")
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "nobody@example.com"))
	assert.Empty(t, f.events.ofType(events.EventPasswordResetRequested))

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ada@example.com"))
	requested := f.events.ofType(events.EventPasswordResetRequested)
	require.Len(t, requested, 1)
	payload, ok := requested[0].Payload.(events.PasswordResetRequestedPayload)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", payload.Email)
	assert.WithinDuration(t, f.now.Add(time.Hour), payload.ExpiresAt, time.Second)

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "unknown", "x"), ErrResetTokenInvalid)
	require.NoError(t, f.svc.ResetPassword(ctx, payload.Token, "new-password"))
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, payload.Token, "again"), ErrResetTokenInvalid)

	_, err = f.svc.Login(ctx, "ada@example.com", "old-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "ada@example.com", "new-password")
	assert.NoError(t, err)
	assert.Len(t, f.events.ofType(events.EventPasswordResetCompleted), 1)
}

func TestPasswordResetExpires(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "Ada", "ada@example.com", "old-password")
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ada@example.com"))
	payload := f.events.ofType(events.EventPasswordResetRequested)[0].Payload.(events.PasswordResetRequestedPayload)

	f.now = f.now.Add(61 * time.Minute)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, payload.Token, "new-password"), ErrResetTokenInvalid)
}

func TestPasswordResetSurvivesFailedUpdate(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "Ada", "ada@example.com", "old-password")
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ada@example.com"))
	payload := f.events.ofType(events.EventPasswordResetRequested)[0].Payload.(events.PasswordResetRequestedPayload)

	f.users.updateErr = errors.New("connection reset")
	err = f.svc.ResetPassword(ctx, payload.Token, "new-password")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrResetTokenInvalid)
	assert.Empty(t, f.events.ofType(events.EventPasswordResetCompleted))

	_, err = f.svc.Login(ctx, "ada@example.com", "old-password")
	assert.NoError(t, err, "old password still works after a failed reset")

	f.users.updateErr = nil
	require.NoError(t, f.svc.ResetPassword(ctx, payload.Token, "new-password"))
	_, err = f.svc.Login(ctx, "ada@example.com", "new-password")
	assert.NoError(t, err)
}
