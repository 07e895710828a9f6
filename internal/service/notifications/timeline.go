package notifications

import (
	"context"
	"log/slog"

	"github.com/skylens/skylens-backend/internal/domain"
	"github.com/skylens/skylens-backend/internal/feed"
)

// Timeline aggregates the most recent notifications into timeline events:
// user activity runs, post engagement bursts, follow clusters, and
// individual leftovers, sorted newest-first.
func (s *Service) Timeline(ctx context.Context, input FeedInput) ([]*domain.AggregatedEvent, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	ns, cache, err := s.loadSnapshot(ctx, input.limitOrDefault())
	if err != nil {
		return nil, err
	}

	events := feed.BuildTimeline(ns, cache)
	s.log.DebugContext(ctx, "timeline built",
		slog.Int("notifications", len(ns)),
		slog.Int("events", len(events)),
	)
	return events, nil
}
