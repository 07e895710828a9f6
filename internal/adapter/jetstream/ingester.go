// Package jetstream ingests post records from a Jetstream firehose endpoint.
// It opportunistically warms the post store so root resolution needs fewer
// app.bsky.feed.getPosts round trips.
package jetstream

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"nhooyr.io/websocket"

	"github.com/skylens/skylens-backend/internal/config"
	"github.com/skylens/skylens-backend/internal/domain"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second

	// Jetstream frames for bare post records stay well under this.
	maxFrameBytes = 1 << 20
)

// postSink receives posts decoded from the firehose.
type postSink interface {
	StorePosts(ctx context.Context, posts []*domain.Post) error
}

// Ingester maintains a Jetstream subscription and forwards post creations
// to the sink. It reconnects with exponential backoff until the context is
// canceled.
type Ingester struct {
	url  string
	sink postSink
	log  *slog.Logger
}

// New creates a Jetstream ingester subscribed to app.bsky.feed.post.
func New(cfg config.JetstreamConfig, sink postSink, logger *slog.Logger) (*Ingester, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, domain.NewValidationError("url", "must be a valid URL")
	}

	q := u.Query()
	q.Set("wantedCollections", collectionPost)
	u.RawQuery = q.Encode()

	return &Ingester{
		url:  u.String(),
		sink: sink,
		log:  logger.With("component", "jetstream"),
	}, nil
}

// Run blocks, consuming the firehose until ctx is canceled. Connection
// failures are logged and retried; Run only returns the context's error.
func (i *Ingester) Run(ctx context.Context) error {
	backoff := initialBackoff

	for {
		err := i.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		i.log.WarnContext(ctx, "jetstream connection lost, reconnecting",
			slog.Any("error", err),
			slog.Duration("backoff", backoff),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// consume dials the endpoint and reads frames until the connection breaks.
func (i *Ingester) consume(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, i.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "shutting down")
	conn.SetReadLimit(maxFrameBytes)

	i.log.InfoContext(ctx, "jetstream connected", slog.String("url", i.url))

	for {
		_, frame, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		post, ok, err := decodePost(frame)
		if err != nil {
			// Malformed frames are skipped, not fatal.
			i.log.DebugContext(ctx, "skipping malformed jetstream frame", slog.Any("error", err))
			continue
		}
		if !ok {
			continue
		}

		if err := i.sink.StorePosts(ctx, []*domain.Post{post}); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			i.log.WarnContext(ctx, "failed to store firehose post",
				slog.String("uri", post.URI),
				slog.Any("error", err),
			)
		}
	}
}
