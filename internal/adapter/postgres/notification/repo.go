// Package notification implements the notification repository using PostgreSQL.
// It stores the raw notification feed pulled from Bluesky; aggregation is
// done in memory by the feed package, not in SQL.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skylens/skylens-backend/internal/adapter/postgres"
	"github.com/skylens/skylens-backend/internal/domain"
)

const table = "notifications"

var columns = []string{
	"uri", "cid", "reason",
	"author_did", "author_handle", "author_display_name", "author_avatar",
	"reason_subject", "is_read", "indexed_at",
}

// Repo provides notification persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new notification repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListRecent returns the newest notifications ordered by indexed_at DESC,
// capped at limit. An empty feed yields an empty slice, not an error.
func (r *Repo) ListRecent(ctx context.Context, limit int) ([]*domain.Notification, error) {
	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		OrderBy("indexed_at DESC", "uri").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows)
}

// Count returns the total number of stored notifications.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM notifications").Scan(&count); err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// UpsertBatch inserts notifications, updating is_read and indexed_at on
// conflict. The AppView re-delivers notifications with flipped read flags,
// so last write wins. A nil or empty batch is a no-op.
func (r *Repo) UpsertBatch(ctx context.Context, ns []*domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	insert := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Suffix(`ON CONFLICT (uri) DO UPDATE SET
			cid = EXCLUDED.cid,
			is_read = EXCLUDED.is_read,
			indexed_at = EXCLUDED.indexed_at`)

	for _, n := range ns {
		insert = insert.Values(
			n.URI, n.CID, string(n.Reason),
			n.Author.DID, n.Author.Handle, n.Author.DisplayName, n.Author.Avatar,
			n.ReasonSubject, n.IsRead, n.IndexedAt,
		)
	}

	sql, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "notification", ns[0].URI)
	}
	return nil
}

// MarkReadBefore flips is_read on every unread notification indexed at or
// before the cutoff. Returns the number of updated rows.
func (r *Repo) MarkReadBefore(ctx context.Context, cutoff time.Time) (int, error) {
	sql, args, err := postgres.Builder().
		Update(table).
		Set("is_read", true).
		Where(squirrel.Eq{"is_read": false}).
		Where(squirrel.LtOrEq{"indexed_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build mark read query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ---------------------------------------------------------------------------
// Row scanning
// ---------------------------------------------------------------------------

func scanNotifications(rows pgx.Rows) ([]*domain.Notification, error) {
	ns := make([]*domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		ns = append(ns, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return ns, nil
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var (
		n      domain.Notification
		reason string
	)
	err := row.Scan(
		&n.URI, &n.CID, &reason,
		&n.Author.DID, &n.Author.Handle, &n.Author.DisplayName, &n.Author.Avatar,
		&n.ReasonSubject, &n.IsRead, &n.IndexedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Reason = domain.Reason(reason)
	return &n, nil
}
