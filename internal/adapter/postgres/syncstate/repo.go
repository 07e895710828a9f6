// Package syncstate implements the sync state repository using PostgreSQL.
package syncstate

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skylens/skylens-backend/internal/adapter/postgres"
	"github.com/skylens/skylens-backend/internal/domain"
)

const table = "sync_state"

// Repo persists per-account sync cursors.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new sync state repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get returns the sync state for an account DID.
// Returns domain.ErrNotFound for accounts that have never synced.
func (r *Repo) Get(ctx context.Context, accountDID string) (*domain.SyncState, error) {
	sql, args, err := postgres.Builder().
		Select("account_did", "cursor", "last_seen_at", "updated_at").
		From(table).
		Where(squirrel.Eq{"account_did": accountDID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	var s domain.SyncState
	err = r.pool.QueryRow(ctx, sql, args...).
		Scan(&s.AccountDID, &s.Cursor, &s.LastSeenAt, &s.UpdatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "sync_state", accountDID)
	}
	return &s, nil
}

// Save upserts the sync state for an account, stamping updated_at.
func (r *Repo) Save(ctx context.Context, s *domain.SyncState) error {
	sql, args, err := postgres.Builder().
		Insert(table).
		Columns("account_did", "cursor", "last_seen_at", "updated_at").
		Values(s.AccountDID, s.Cursor, s.LastSeenAt, time.Now().UTC()).
		Suffix(`ON CONFLICT (account_did) DO UPDATE SET
			cursor = EXCLUDED.cursor,
			last_seen_at = EXCLUDED.last_seen_at,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "sync_state", s.AccountDID)
	}
	return nil
}
