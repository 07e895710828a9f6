package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/skylens/skylens-backend/internal/domain"
)

// RefreshResult summarizes one feed sync.
type RefreshResult struct {
	Pages         int `json:"pages"`
	Notifications int `json:"notifications"`
	// Cursor is the backfill cursor after this refresh; empty once the
	// feed has been consumed to its tail.
	Cursor string `json:"cursor"`
}

// Refresh pulls recent pages of the notification feed from the AppView,
// persists them, and prefetches the posts the notifications point at.
// Upserts are idempotent, so overlapping pulls are harmless.
func (s *Service) Refresh(ctx context.Context, input RefreshInput) (*RefreshResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	result := &RefreshResult{}
	subjects := make(map[string]struct{})

	// Always start from the head: the feed is newest-first and the
	// interesting delta lives there. The final cursor is persisted so the
	// backfill command can keep walking into older history.
	cursor := ""
	for page := 0; page < input.MaxPages; page++ {
		p, err := s.client.ListNotifications(ctx, cursor, input.PageSize)
		if err != nil {
			return nil, fmt.Errorf("list notifications page %d: %w", page, err)
		}
		if len(p.Notifications) == 0 {
			cursor = p.Cursor
			break
		}

		if err := s.notifs.UpsertBatch(ctx, p.Notifications); err != nil {
			return nil, fmt.Errorf("store notifications: %w", err)
		}

		result.Pages++
		result.Notifications += len(p.Notifications)
		for _, n := range p.Notifications {
			for _, uri := range n.PostURIs() {
				subjects[uri] = struct{}{}
			}
		}

		cursor = p.Cursor
		if cursor == "" {
			break
		}
	}
	result.Cursor = cursor

	s.prefetchPosts(ctx, subjects)

	if err := s.saveSyncState(ctx, cursor); err != nil {
		return nil, err
	}

	total, err := s.notifs.Count(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "counting stored notifications failed", slog.Any("error", err))
	}

	s.log.InfoContext(ctx, "feed refreshed",
		slog.Int("pages", result.Pages),
		slog.Int("notifications", result.Notifications),
		slog.Int("stored_total", total),
	)
	return result, nil
}

// prefetchPosts hydrates subject posts so snapshot reads start warm.
// Failures here degrade thread quality, they do not fail the refresh.
func (s *Service) prefetchPosts(ctx context.Context, subjects map[string]struct{}) {
	uris := make([]string, 0, len(subjects))
	for uri := range subjects {
		uris = append(uris, uri)
	}

	known, err := s.posts.GetByURIs(ctx, uris)
	if err != nil {
		s.log.WarnContext(ctx, "prefetch: reading stored posts failed", slog.Any("error", err))
		return
	}
	for _, p := range known {
		delete(subjects, p.URI)
	}

	missing := make([]string, 0, len(subjects))
	for uri := range subjects {
		missing = append(missing, uri)
	}
	if len(missing) == 0 {
		return
	}

	claimed := s.inFlight.Claim(missing...)
	defer s.inFlight.Release(claimed...)

	fetched, err := s.loader.LoadMany(ctx, claimed)
	if err != nil {
		s.log.WarnContext(ctx, "prefetch: hydrating posts failed", slog.Any("error", err))
		return
	}
	if err := s.posts.UpsertBatch(ctx, fetched); err != nil {
		s.log.WarnContext(ctx, "prefetch: storing posts failed", slog.Any("error", err))
	}
}

func (s *Service) saveSyncState(ctx context.Context, cursor string) error {
	state, err := s.sync.Get(ctx, s.client.DID())
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("read sync state: %w", err)
	}
	if state == nil {
		state = &domain.SyncState{AccountDID: s.client.DID()}
	}

	state.Cursor = cursor
	if err := s.sync.Save(ctx, state); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}
	return nil
}

// MarkSeen pushes the seen watermark upstream via updateSeen and flips the
// local read flags up to the same watermark.
func (s *Service) MarkSeen(ctx context.Context, input MarkSeenInput) (int, error) {
	seenAt := input.seenAtOrNow()

	if err := s.client.UpdateSeen(ctx, seenAt); err != nil {
		return 0, fmt.Errorf("update seen upstream: %w", err)
	}

	updated, err := s.notifs.MarkReadBefore(ctx, seenAt)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}

	state, err := s.sync.Get(ctx, s.client.DID())
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return 0, fmt.Errorf("read sync state: %w", err)
	}
	if state == nil {
		state = &domain.SyncState{AccountDID: s.client.DID()}
	}
	state.LastSeenAt = &seenAt
	if err := s.sync.Save(ctx, state); err != nil {
		return 0, fmt.Errorf("save sync state: %w", err)
	}

	s.log.InfoContext(ctx, "feed marked seen",
		slog.Time("seen_at", seenAt),
		slog.Int("updated", updated),
	)
	return updated, nil
}
