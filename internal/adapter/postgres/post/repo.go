// Package post implements the post repository using PostgreSQL.
// Stored posts are the durable half of the in-memory PostCache: once a
// post URI is persisted it is never deleted, only overwritten.
package post

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skylens/skylens-backend/internal/adapter/postgres"
	"github.com/skylens/skylens-backend/internal/domain"
)

const table = "posts"

var columns = []string{
	"uri", "cid",
	"author_did", "author_handle", "author_display_name", "author_avatar",
	"text", "record_created_at", "reply_root", "reply_parent",
	"indexed_at",
}

// Repo provides post persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new post repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByURIs returns the stored posts matching the given AT-URIs. URIs with
// no stored post are silently absent from the result; callers treat absence
// as a cache miss, not an error.
func (r *Repo) GetByURIs(ctx context.Context, uris []string) ([]*domain.Post, error) {
	if len(uris) == 0 {
		return []*domain.Post{}, nil
	}

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"uri": uris}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("get posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// UpsertBatch inserts posts, overwriting the full row on conflict. Post
// records are immutable upstream but the AppView may re-index them, so
// last write wins. A nil or empty batch is a no-op.
func (r *Repo) UpsertBatch(ctx context.Context, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	insert := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Suffix(`ON CONFLICT (uri) DO UPDATE SET
			cid = EXCLUDED.cid,
			text = EXCLUDED.text,
			record_created_at = EXCLUDED.record_created_at,
			reply_root = EXCLUDED.reply_root,
			reply_parent = EXCLUDED.reply_parent,
			indexed_at = EXCLUDED.indexed_at`)

	for _, p := range posts {
		var root, parent *string
		if p.Record.Reply != nil {
			root = &p.Record.Reply.Root
			parent = &p.Record.Reply.Parent
		}
		insert = insert.Values(
			p.URI, p.CID,
			p.Author.DID, p.Author.Handle, p.Author.DisplayName, p.Author.Avatar,
			p.Record.Text, p.Record.CreatedAt, root, parent,
			p.IndexedAt,
		)
	}

	sql, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "post", posts[0].URI)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Row scanning
// ---------------------------------------------------------------------------

func scanPosts(rows pgx.Rows) ([]*domain.Post, error) {
	posts := make([]*domain.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var (
		p            domain.Post
		root, parent *string
	)
	err := row.Scan(
		&p.URI, &p.CID,
		&p.Author.DID, &p.Author.Handle, &p.Author.DisplayName, &p.Author.Avatar,
		&p.Record.Text, &p.Record.CreatedAt, &root, &parent,
		&p.IndexedAt,
	)
	if err != nil {
		return nil, err
	}

	// A reply ref exists only when the record declared one. Root may be
	// present without parent in malformed records; keep whatever was stored.
	if root != nil || parent != nil {
		p.Record.Reply = &domain.ReplyRef{}
		if root != nil {
			p.Record.Reply.Root = *root
		}
		if parent != nil {
			p.Record.Reply.Parent = *parent
		}
	}
	return &p, nil
}
