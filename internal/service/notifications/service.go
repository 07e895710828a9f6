// Package notifications provides the business logic for syncing the
// Bluesky notification feed and serving reconstructed conversation threads
// and aggregated timelines from it.
package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/skylens/skylens-backend/internal/domain"
	"github.com/skylens/skylens-backend/internal/feed"
)

const (
	// DefaultFeedLimit caps how many notifications one snapshot covers
	// when the caller does not say otherwise.
	DefaultFeedLimit = 200
	// MaxFeedLimit bounds snapshot size regardless of the caller.
	MaxFeedLimit = 1000

	// discoveryRounds caps the iterative root discovery loop. Each round
	// can only reveal strictly deeper ancestors, so deep threads converge
	// quickly and pathological chains stay bounded.
	discoveryRounds = 5
)

type feedClient interface {
	DID() string
	Login(ctx context.Context) (string, error)
	ListNotifications(ctx context.Context, cursor string, limit int) (*domain.NotificationPage, error)
	UpdateSeen(ctx context.Context, seenAt time.Time) error
}

// postLoader batches and deduplicates post hydration against the AppView.
type postLoader interface {
	LoadMany(ctx context.Context, uris []string) ([]*domain.Post, error)
}

type notificationRepo interface {
	UpsertBatch(ctx context.Context, ns []*domain.Notification) error
	ListRecent(ctx context.Context, limit int) ([]*domain.Notification, error)
	MarkReadBefore(ctx context.Context, cutoff time.Time) (int, error)
	Count(ctx context.Context) (int, error)
}

type postRepo interface {
	UpsertBatch(ctx context.Context, posts []*domain.Post) error
	GetByURIs(ctx context.Context, uris []string) ([]*domain.Post, error)
}

type syncStateRepo interface {
	Get(ctx context.Context, accountDID string) (*domain.SyncState, error)
	Save(ctx context.Context, s *domain.SyncState) error
}

// Service reconstructs conversation threads and aggregated timelines from
// the account's notification feed.
type Service struct {
	client feedClient
	loader postLoader
	notifs notificationRepo
	posts  postRepo
	sync   syncStateRepo

	// inFlight guards against concurrent snapshots hydrating the same
	// post URIs twice.
	inFlight *feed.InFlightSet

	log *slog.Logger
}

// NewService creates a new notifications service.
func NewService(
	log *slog.Logger,
	client feedClient,
	loader postLoader,
	notifs notificationRepo,
	posts postRepo,
	sync syncStateRepo,
) *Service {
	return &Service{
		client:   client,
		loader:   loader,
		notifs:   notifs,
		posts:    posts,
		sync:     sync,
		inFlight: feed.NewInFlightSet(),
		log:      log.With("service", "notifications"),
	}
}

// StorePosts persists posts into the durable post store. It also serves as
// the sink for the firehose ingester.
func (s *Service) StorePosts(ctx context.Context, posts []*domain.Post) error {
	return s.posts.UpsertBatch(ctx, posts)
}
