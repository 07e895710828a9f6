package bsky

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/skylens/skylens-backend/internal/domain"
)

const loaderWait = 5 * time.Millisecond

type postFetcher interface {
	GetPosts(ctx context.Context, uris []string) ([]*domain.Post, error)
}

// PostLoader coalesces concurrent post lookups into getPosts batches of at
// most MaxPostsPerRequest URIs and de-duplicates identical keys while a
// batch is open. It does not memoize across batches: the loader lives for
// the process, and caching belongs to feed.PostCache and the post store.
type PostLoader struct {
	loader *dataloader.Loader[string, *domain.Post]
}

// NewPostLoader creates a PostLoader on top of a fetcher (normally the
// Client).
func NewPostLoader(fetcher postFetcher) *PostLoader {
	return &PostLoader{
		loader: dataloader.NewBatchedLoader(
			newPostBatchFn(fetcher),
			dataloader.WithBatchCapacity[string, *domain.Post](MaxPostsPerRequest),
			dataloader.WithWait[string, *domain.Post](loaderWait),
			dataloader.WithCache[string, *domain.Post](&dataloader.NoCache[string, *domain.Post]{}),
		),
	}
}

func newPostBatchFn(fetcher postFetcher) dataloader.BatchFunc[string, *domain.Post] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[*domain.Post] {
		results := make([]*dataloader.Result[*domain.Post], len(keys))

		posts, err := fetcher.GetPosts(ctx, keys)
		if err != nil {
			for i := range keys {
				results[i] = &dataloader.Result[*domain.Post]{Error: err}
			}
			return results
		}

		byURI := make(map[string]*domain.Post, len(posts))
		for _, p := range posts {
			byURI[p.URI] = p
		}
		// A URI the AppView cannot return (deleted or blocked post) maps
		// to nil data, not an error: absence is a valid answer.
		for i, key := range keys {
			results[i] = &dataloader.Result[*domain.Post]{Data: byURI[key]}
		}
		return results
	}
}

// Load fetches one post, batched with concurrent callers. Returns nil
// when the post is unavailable.
func (l *PostLoader) Load(ctx context.Context, uri string) (*domain.Post, error) {
	return l.loader.Load(ctx, uri)()
}

// LoadMany fetches many posts in as few getPosts calls as the batch limit
// allows. Unavailable posts are dropped from the result; a transport
// error fails the whole call.
func (l *PostLoader) LoadMany(ctx context.Context, uris []string) ([]*domain.Post, error) {
	thunk := l.loader.LoadMany(ctx, uris)
	posts, errs := thunk()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	out := make([]*domain.Post, 0, len(posts))
	for _, p := range posts {
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}
