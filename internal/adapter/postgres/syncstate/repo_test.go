package syncstate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/skylens/skylens-backend/internal/adapter/postgres/syncstate"
	"github.com/skylens/skylens-backend/internal/adapter/postgres/testhelper"
	"github.com/skylens/skylens-backend/internal/domain"
)

func newRepo(t *testing.T) *syncstate.Repo {
	t.Helper()
	return syncstate.New(testhelper.SetupTestDB(t))
}

func testDID() string {
	return "did:plc:" + uuid.New().String()[:8]
}

func TestRepo_Get_NeverSynced(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)

	_, err := repo.Get(context.Background(), testDID())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("got %v, want domain.ErrNotFound", err)
	}
}

func TestRepo_Save_ThenGet(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()

	did := testDID()
	seen := time.Now().UTC().Truncate(time.Microsecond)
	state := &domain.SyncState{
		AccountDID: did,
		Cursor:     "cursor-1",
		LastSeenAt: &seen,
	}

	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("Save: unexpected error: %v", err)
	}

	got, err := repo.Get(ctx, did)
	if err != nil {
		t.Fatalf("Get: unexpected error: %v", err)
	}
	if got.Cursor != "cursor-1" {
		t.Errorf("Cursor = %q, want cursor-1", got.Cursor)
	}
	if got.LastSeenAt == nil || !got.LastSeenAt.Equal(seen) {
		t.Errorf("LastSeenAt = %v, want %v", got.LastSeenAt, seen)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be stamped")
	}
}

func TestRepo_Save_UpsertAdvancesCursor(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()

	did := testDID()
	if err := repo.Save(ctx, &domain.SyncState{AccountDID: did, Cursor: "cursor-1"}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := repo.Save(ctx, &domain.SyncState{AccountDID: did, Cursor: "cursor-2"}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := repo.Get(ctx, did)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Cursor != "cursor-2" {
		t.Errorf("Cursor = %q, want cursor-2", got.Cursor)
	}
}
