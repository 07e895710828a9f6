// Package feed implements the notification reconstruction and aggregation
// engine: root resolution for reply chains, conversation-thread grouping,
// temporal clustering with burst detection, and incremental discovery of
// missing thread roots.
//
// The aggregation functions are pure: they derive their output from an
// explicit (notification set, post cache) snapshot and never mutate their
// inputs, so they can be re-run on every snapshot change.
package feed

import (
	"sync"

	"github.com/skylens/skylens-backend/internal/domain"
)

// PostCache is an append-only union of fetched posts keyed by AT-URI.
// Within a session epoch a cached URI is never evicted, so late-arriving
// batch results can always be merged harmlessly. Add performs an atomic
// union; readers never observe a half-written merge.
type PostCache struct {
	mu    sync.RWMutex
	posts map[string]*domain.Post
}

// NewPostCache returns an empty cache.
func NewPostCache() *PostCache {
	return &PostCache{posts: make(map[string]*domain.Post)}
}

// NewPostCacheFrom returns a cache seeded with the given posts.
func NewPostCacheFrom(posts []*domain.Post) *PostCache {
	c := NewPostCache()
	c.Add(posts...)
	return c
}

// Get returns the cached post for uri, if any.
func (c *PostCache) Get(uri string) (*domain.Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.posts[uri]
	return p, ok
}

// Has reports whether uri is cached.
func (c *PostCache) Has(uri string) bool {
	_, ok := c.Get(uri)
	return ok
}

// Add merges posts into the cache (union by URI, last write wins on the
// value; the key set only grows). Returns the number of URIs that were new.
func (c *PostCache) Add(posts ...*domain.Post) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := 0
	for _, p := range posts {
		if p == nil || p.URI == "" {
			continue
		}
		if _, ok := c.posts[p.URI]; !ok {
			added++
		}
		c.posts[p.URI] = p
	}
	return added
}

// Len returns the number of cached posts.
func (c *PostCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.posts)
}

// URIs returns the cached URI set.
func (c *PostCache) URIs() map[string]struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	uris := make(map[string]struct{}, len(c.posts))
	for uri := range c.posts {
		uris[uri] = struct{}{}
	}
	return uris
}

// Posts returns a snapshot slice of the cached posts. Order is not defined.
func (c *PostCache) Posts() []*domain.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.Post, 0, len(c.posts))
	for _, p := range c.posts {
		out = append(out, p)
	}
	return out
}

// InFlightSet tracks URIs that have been handed to the fetch collaborator
// but not yet merged back, so repeated discovery passes never request the
// same URI twice within an epoch.
type InFlightSet struct {
	mu   sync.Mutex
	uris map[string]struct{}
}

// NewInFlightSet returns an empty in-flight set.
func NewInFlightSet() *InFlightSet {
	return &InFlightSet{uris: make(map[string]struct{})}
}

// Claim marks uris as in flight and returns the subset that was not
// already claimed.
func (s *InFlightSet) Claim(uris ...string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	claimed := make([]string, 0, len(uris))
	for _, uri := range uris {
		if _, ok := s.uris[uri]; ok {
			continue
		}
		s.uris[uri] = struct{}{}
		claimed = append(claimed, uri)
	}
	return claimed
}

// Release clears uris from the set. Called after a batch is merged, and
// also after a failed batch so the URIs stay eligible for a later
// discovery pass.
func (s *InFlightSet) Release(uris ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, uri := range uris {
		delete(s.uris, uri)
	}
}

// Snapshot returns a copy of the current in-flight URI set.
func (s *InFlightSet) Snapshot() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]struct{}, len(s.uris))
	for uri := range s.uris {
		out[uri] = struct{}{}
	}
	return out
}

// Len returns the number of in-flight URIs.
func (s *InFlightSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uris)
}
