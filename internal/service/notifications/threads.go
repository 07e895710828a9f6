package notifications

import (
	"context"
	"log/slog"

	"github.com/skylens/skylens-backend/internal/domain"
	"github.com/skylens/skylens-backend/internal/feed"
)

// Threads reconstructs conversation threads from the most recent
// notifications. Reply notifications are grouped under their resolved
// conversation root; threads come back sorted by latest activity.
func (s *Service) Threads(ctx context.Context, input FeedInput) ([]*domain.ConversationThread, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	ns, cache, err := s.loadSnapshot(ctx, input.limitOrDefault())
	if err != nil {
		return nil, err
	}

	threads := feed.BuildConversationThreads(ns, cache)
	s.log.DebugContext(ctx, "threads built",
		slog.Int("notifications", len(ns)),
		slog.Int("threads", len(threads)),
		slog.Int("cached_posts", cache.Len()),
	)
	return threads, nil
}
