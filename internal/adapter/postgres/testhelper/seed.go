package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skylens/skylens-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// BuildNotification returns a notification with a unique URI, ready to seed.
func BuildNotification(reason domain.Reason, indexedAt time.Time) *domain.Notification {
	suffix := uniqueSuffix()
	return &domain.Notification{
		URI:    "at://did:plc:" + suffix + "/app.bsky.feed.like/" + suffix,
		CID:    "bafy-" + suffix,
		Reason: reason,
		Author: domain.Actor{
			DID:    "did:plc:" + suffix,
			Handle: suffix + ".bsky.social",
		},
		IndexedAt: indexedAt.UTC().Truncate(time.Microsecond),
	}
}

// BuildPost returns a post with a unique URI. If parent is non-empty the
// record carries a reply ref pointing at root/parent.
func BuildPost(root, parent string) *domain.Post {
	suffix := uniqueSuffix()
	text := "post " + suffix
	created := time.Now().UTC().Truncate(time.Microsecond)
	p := &domain.Post{
		URI: "at://did:plc:" + suffix + "/app.bsky.feed.post/" + suffix,
		CID: "bafy-" + suffix,
		Author: domain.Actor{
			DID:    "did:plc:" + suffix,
			Handle: suffix + ".bsky.social",
		},
		Record: domain.PostRecord{
			Text:      &text,
			CreatedAt: &created,
		},
		IndexedAt: created,
	}
	if parent != "" {
		p.Record.Reply = &domain.ReplyRef{Root: root, Parent: parent}
	}
	return p
}

// FetchNotification reads one stored notification row by URI with raw SQL,
// bypassing the repository under test. Fails the test when the row is absent.
func FetchNotification(t *testing.T, pool *pgxpool.Pool, uri string) *domain.Notification {
	t.Helper()

	var (
		n      domain.Notification
		reason string
	)
	err := pool.QueryRow(context.Background(),
		`SELECT uri, cid, reason, author_did, author_handle, author_display_name, author_avatar, reason_subject, is_read, indexed_at
		 FROM notifications WHERE uri = $1`, uri,
	).Scan(
		&n.URI, &n.CID, &reason,
		&n.Author.DID, &n.Author.Handle, &n.Author.DisplayName, &n.Author.Avatar,
		&n.ReasonSubject, &n.IsRead, &n.IndexedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: FetchNotification %s: %v", uri, err)
	}
	n.Reason = domain.Reason(reason)
	return &n
}

// SeedNotification inserts a notification built around the given reason and
// time, returning the stored value.
func SeedNotification(t *testing.T, pool *pgxpool.Pool, reason domain.Reason, indexedAt time.Time) *domain.Notification {
	t.Helper()

	n := BuildNotification(reason, indexedAt)
	_, err := pool.Exec(context.Background(),
		`INSERT INTO notifications (uri, cid, reason, author_did, author_handle, author_display_name, author_avatar, reason_subject, is_read, indexed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		n.URI, n.CID, string(n.Reason),
		n.Author.DID, n.Author.Handle, n.Author.DisplayName, n.Author.Avatar,
		n.ReasonSubject, n.IsRead, n.IndexedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedNotification insert: %v", err)
	}
	return n
}
