package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/insideout/userdb/internal/domain"
)

// PasswordResetRepository manages password reset token persistence.
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *domain.PasswordReset) error
	GetByToken(ctx context.Context, token string) (*domain.PasswordReset, error)
	// Redeem spends the unused reset id and stores passwordHash for its user
	// as one unit. A spent or unknown id yields pgx.ErrNoRows and changes nothing.
	Redeem(ctx context.Context, id, passwordHash string) error
}

type passwordResetRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordResetRepository constructs repository.
func NewPasswordResetRepository(pool *pgxpool.Pool) PasswordResetRepository {
	return &passwordResetRepository{pool: pool}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *domain.PasswordReset) error {
	const query = `
        INSERT INTO password_reset_tokens (user_id, token, expires_at)
        VALUES ($1,$2,$3)
        RETURNING id::text, created_at`
	return r.pool.QueryRow(ctx, query,
		reset.UserID,
		reset.Token,
		reset.ExpiresAt,
	).Scan(&reset.ID, &reset.CreatedAt)
}

func (r *passwordResetRepository) GetByToken(ctx context.Context, token string) (*domain.PasswordReset, error) {
	const query = `
        SELECT id::text, user_id::text, token, expires_at, used_at, created_at
        FROM password_reset_tokens WHERE token=$1`
	var reset domain.PasswordReset
	if err := r.pool.QueryRow(ctx, query, token).Scan(
		&reset.ID,
		&reset.UserID,
		&reset.Token,
		&reset.ExpiresAt,
		&reset.UsedAt,
		&reset.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *passwordResetRepository) Redeem(ctx context.Context, id, passwordHash string) error {
	const query = `
        WITH redeemed AS (
            UPDATE password_reset_tokens SET used_at=NOW()
            WHERE id=$1 AND used_at IS NULL
            RETURNING user_id
        )
        UPDATE users SET password_hash=$2, updated_at=NOW()
        FROM redeemed WHERE users.id = redeemed.user_id`
	cmd, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
