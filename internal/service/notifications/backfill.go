package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/skylens/skylens-backend/internal/domain"
)

// BackfillResult summarizes one backfill run.
type BackfillResult struct {
	Pages         int
	Notifications int
	// Exhausted reports that the feed has no older pages left.
	Exhausted bool
}

// Backfill resumes from the persisted cursor and walks older pages of the
// notification feed, persisting them as it goes. Refresh covers the head of
// the feed; Backfill covers the tail, so together repeated runs converge on
// the full history.
func (s *Service) Backfill(ctx context.Context, input RefreshInput) (*BackfillResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	// The sync state row is keyed by DID, which a fresh client only knows
	// after authenticating.
	did, err := s.client.Login(ctx)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	state, err := s.sync.Get(ctx, did)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("read sync state: %w", err)
	}

	cursor := ""
	if state != nil {
		cursor = state.Cursor
	}
	if cursor == "" && state != nil {
		// An empty persisted cursor after a prior run means the feed was
		// already consumed to its tail.
		s.log.InfoContext(ctx, "backfill: feed already exhausted")
		return &BackfillResult{Exhausted: true}, nil
	}

	result := &BackfillResult{}
	subjects := make(map[string]struct{})

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
			if uri := n.SubjectURI(); domain.IsATURI(uri) {
				subjects[uri] = struct{}{}
			}
		}

		cursor = p.Cursor
		if cursor == "" {
			break
		}
	}
	result.Exhausted = cursor == ""

	s.prefetchPosts(ctx, subjects)

	if err := s.saveSyncState(ctx, cursor); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "feed backfilled",
		slog.Int("pages", result.Pages),
		slog.Int("notifications", result.Notifications),
		slog.Bool("exhausted", result.Exhausted),
	)
	return result, nil
}
