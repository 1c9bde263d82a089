package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/insideout/userdb/internal/domain"
)

// APICallRepository stores per-user request accounting.
type APICallRepository interface {
	Record(ctx context.Context, call *domain.APICall) error
	List(ctx context.Context) ([]domain.APICall, error)
	ListByUser(ctx context.Context, userID string) ([]domain.APICall, error)
}

type apiCallRepository struct {
	pool *pgxpool.Pool
}

// NewAPICallRepository returns a Postgres-backed implementation.
func NewAPICallRepository(pool *pgxpool.Pool) APICallRepository {
	return &apiCallRepository{pool: pool}
}

func (r *apiCallRepository) Record(ctx context.Context, call *domain.APICall) error {
	const query = `
        INSERT INTO api_calls (user_id, http_method, endpoint)
        VALUES ($1, $2, $3)
        RETURNING id::text, created_at`
	return r.pool.QueryRow(ctx, query, call.UserID, call.HTTPMethod, call.Endpoint).
		Scan(&call.ID, &call.CreatedAt)
}

func (r *apiCallRepository) List(ctx context.Context) ([]domain.APICall, error) {
	const query = `
        SELECT id::text, user_id::text, http_method, endpoint, created_at
        FROM api_calls ORDER BY created_at`
	return r.query(ctx, query)
}

func (r *apiCallRepository) ListByUser(ctx context.Context, userID string) ([]domain.APICall, error) {
	const query = `
        SELECT id::text, user_id::text, http_method, endpoint, created_at
        FROM api_calls WHERE user_id=$1 ORDER BY created_at`
	return r.query(ctx, query, userID)
}

func (r *apiCallRepository) query(ctx context.Context, query string, args ...any) ([]domain.APICall, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.APICall, error) {
		var call domain.APICall
		err := row.Scan(&call.ID, &call.UserID, &call.HTTPMethod, &call.Endpoint, &call.CreatedAt)
		return call, err
	})
}
