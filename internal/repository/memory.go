package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/insideout/userdb/internal/domain"
)

// The in-memory repositories back the service when no POSTGRES_DSN is given
// and serve as test doubles. Lookups miss with pgx.ErrNoRows, like the pgx ones.

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewMemoryUserRepository returns a process-local credential store.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]domain.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Email < users[j].Email
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

type memoryPasswordResetRepository struct {
	mu     sync.Mutex
	resets map[string]domain.PasswordReset
	users  UserRepository
}

// NewMemoryPasswordResetRepository returns a process-local reset token store
// that redeems tokens against users.
func NewMemoryPasswordResetRepository(users UserRepository) PasswordResetRepository {
	return &memoryPasswordResetRepository{resets: make(map[string]domain.PasswordReset), users: users}
}

func (r *memoryPasswordResetRepository) Create(_ context.Context, reset *domain.PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reset.ID = uuid.NewString()
	reset.CreatedAt = time.Now().UTC()
	r.resets[reset.ID] = *reset
	return nil
}

func (r *memoryPasswordResetRepository) GetByToken(_ context.Context, token string) (*domain.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reset := range r.resets {
		if reset.Token == token {
			return &reset, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryPasswordResetRepository) Redeem(ctx context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reset, ok := r.resets[id]
	if !ok || reset.UsedAt != nil {
		return pgx.ErrNoRows
	}
	user, err := r.users.GetByID(ctx, reset.UserID)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	if err := r.users.Update(ctx, user); err != nil {
		return err
	}

	now := time.Now().UTC()
	reset.UsedAt = &now
	r.resets[id] = reset
	return nil
}

type memoryAPICallRepository struct {
	mu    sync.RWMutex
	calls []domain.APICall
}

// NewMemoryAPICallRepository returns a process-local usage log.
func NewMemoryAPICallRepository() APICallRepository {
	return &memoryAPICallRepository{}
}

func (r *memoryAPICallRepository) Record(_ context.Context, call *domain.APICall) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	call.ID = uuid.NewString()
	call.CreatedAt = time.Now().UTC()
	r.calls = append(r.calls, *call)
	return nil
}

func (r *memoryAPICallRepository) List(_ context.Context) ([]domain.APICall, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]domain.APICall(nil), r.calls...), nil
}

func (r *memoryAPICallRepository) ListByUser(_ context.Context, userID string) ([]domain.APICall, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.APICall
	for _, call := range r.calls {
		if call.UserID == userID {
			out = append(out, call)
		}
	}
	return out, nil
}
