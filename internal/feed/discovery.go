package feed

import (
	"sort"

	"github.com/skylens/skylens-backend/internal/domain"
)

// MaxBatchSize is the getPosts batch limit imposed by the AppView.
const MaxBatchSize = 25

// DiscoverMissingRoots scans the cached reply posts and returns the URIs
// whose fetch would advance root resolution: declared reply.root URIs not
// yet cached, and for posts that declare only a parent, the first uncached
// ancestor of their parent chain. URIs already in flight are excluded, so
// the result is exactly the delta set. Because the cache is append-only and
// in-flight tracking prevents duplicate requests within an epoch, repeated
// discovery passes monotonically shrink the undiscovered set.
func DiscoverMissingRoots(cache *PostCache, inFlight map[string]struct{}) map[string]struct{} {
	missing := make(map[string]struct{})
	add := func(uri string) {
		if !domain.IsATURI(uri) || cache.Has(uri) {
			return
		}
		if _, ok := inFlight[uri]; ok {
			return
		}
		missing[uri] = struct{}{}
	}

	for _, post := range cache.Posts() {
		reply := post.Record.Reply
		if reply == nil {
			continue
		}
		if reply.Root != "" {
			add(reply.Root)
			continue
		}

		// No declared root: walk the parent chain until some ancestor
		// declares one. The first uncached ancestor is the next fetch.
		visited := map[string]struct{}{post.URI: {}}
		uri := reply.Parent
		for uri != "" {
			if _, seen := visited[uri]; seen {
				break
			}
			visited[uri] = struct{}{}

			parent, ok := cache.Get(uri)
			if !ok {
				add(uri)
				break
			}
			if parent.Record.Reply == nil {
				break
			}
			if root := parent.Record.Reply.Root; root != "" {
				add(root)
				break
			}
			uri = parent.Record.Reply.Parent
		}
	}
	return missing
}

// BatchURIs splits a URI set into batches of at most size URIs each. The
// input is sorted first so batch composition is deterministic.
func BatchURIs(uris map[string]struct{}, size int) [][]string {
	if size <= 0 {
		size = MaxBatchSize
	}

	sorted := make([]string, 0, len(uris))
	for uri := range uris {
		sorted = append(sorted, uri)
	}
	sort.Strings(sorted)

	var batches [][]string
	for len(sorted) > 0 {
		n := min(size, len(sorted))
		batches = append(batches, sorted[:n])
		sorted = sorted[n:]
	}
	return batches
}
