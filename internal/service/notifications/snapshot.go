package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/skylens/skylens-backend/internal/domain"
	"github.com/skylens/skylens-backend/internal/feed"
)

// loadSnapshot reads the most recent notifications and builds a post cache
// warm enough for root resolution: stored posts first, then an iterative
// discovery loop that hydrates newly revealed root URIs from the AppView.
func (s *Service) loadSnapshot(ctx context.Context, limit int) ([]*domain.Notification, *feed.PostCache, error) {
	ns, err := s.notifs.ListRecent(ctx, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("list notifications: %w", err)
	}

	// Every post a notification references: the subject plus, for replies
	// and quotes, the triggering record itself. Root resolution walks the
	// triggering record's reply refs, so it must be in the cache too.
	subjects := make(map[string]struct{}, len(ns))
	for _, n := range ns {
		for _, uri := range n.PostURIs() {
			subjects[uri] = struct{}{}
		}
	}

	uris := make([]string, 0, len(subjects))
	for uri := range subjects {
		uris = append(uris, uri)
	}
	stored, err := s.posts.GetByURIs(ctx, uris)
	if err != nil {
		return nil, nil, fmt.Errorf("load stored posts: %w", err)
	}
	cache := feed.NewPostCacheFrom(stored)

	// Round 0: referenced posts never stored. Following rounds: root URIs
	// that the previous round's posts revealed. A URI unresolvable this
	// snapshot (deleted post, AppView error) is attempted once, not once
	// per round.
	missing := make(map[string]struct{})
	for uri := range subjects {
		if !cache.Has(uri) {
			missing[uri] = struct{}{}
		}
	}

	attempted := make(map[string]struct{})
	for round := 0; round < discoveryRounds; round++ {
		for uri := range feed.DiscoverMissingRoots(cache, s.inFlight.Snapshot()) {
			missing[uri] = struct{}{}
		}
		for uri := range missing {
			if _, done := attempted[uri]; done {
				delete(missing, uri)
			}
		}
		if len(missing) == 0 {
			break
		}
		for uri := range missing {
			attempted[uri] = struct{}{}
		}

		s.hydrate(ctx, cache, missing)
		missing = make(map[string]struct{})
	}

	return ns, cache, nil
}

// hydrate resolves the given URIs into the cache: the durable store first,
// then the AppView in batches for the remainder. A failed batch is logged
// and skipped; the affected subtrees degrade to provisional roots.
func (s *Service) hydrate(ctx context.Context, cache *feed.PostCache, uris map[string]struct{}) {
	all := make([]string, 0, len(uris))
	for uri := range uris {
		all = append(all, uri)
	}
	stored, err := s.posts.GetByURIs(ctx, all)
	if err != nil {
		s.log.WarnContext(ctx, "reading stored posts failed", slog.Any("error", err))
	} else {
		cache.Add(stored...)
		for _, p := range stored {
			delete(uris, p.URI)
		}
	}
	if len(uris) == 0 {
		return
	}

	for _, batch := range feed.BatchURIs(uris, feed.MaxBatchSize) {
		claimed := s.inFlight.Claim(batch...)
		if len(claimed) == 0 {
			continue
		}

		posts, err := s.loader.LoadMany(ctx, claimed)
		if err != nil {
			s.inFlight.Release(claimed...)
			s.log.WarnContext(ctx, "hydrating posts failed",
				slog.Int("batch_size", len(claimed)),
				slog.Any("error", err),
			)
			continue
		}

		cache.Add(posts...)
		if err := s.posts.UpsertBatch(ctx, posts); err != nil {
			s.log.WarnContext(ctx, "storing hydrated posts failed", slog.Any("error", err))
		}
		s.inFlight.Release(claimed...)
	}
}
