package feed

import "github.com/skylens/skylens-backend/internal/domain"

// ResolveRoot computes the canonical thread-root URI for a notification
// against the current post cache. Priority order:
//
//  1. The cached post for the notification's URI declares reply.root —
//     that URI is authoritative.
//  2. The post declares only reply.parent — walk the parent chain
//     iteratively with a visited set; the first revisited URI or cache
//     miss ends the walk, returning the last resolvable URI.
//  3. No post is cached but reasonSubject is present — return it as a
//     provisional root, a stable placeholder until the true ancestor is
//     fetched.
//  4. Otherwise the notification is self-rooted: return its own URI.
//
// The walk is O(chain depth) and always terminates; revisiting a URI
// returns that URI rather than looping. Provisional roots may later be
// superseded once the true ancestor loads — recomputation re-keys the
// group, which is accepted eventual consistency, not a defect.
func ResolveRoot(n *domain.Notification, cache *PostCache) string {
	post, ok := cache.Get(n.URI)
	if !ok {
		if n.ReasonSubject != nil && domain.IsATURI(*n.ReasonSubject) {
			return *n.ReasonSubject
		}
		return n.URI
	}

	visited := map[string]struct{}{n.URI: {}}
	cur := n.URI
	for {
		reply := post.Record.Reply
		if reply == nil {
			// Original post, mention target, or malformed record.
			return cur
		}
		if reply.Root != "" {
			return reply.Root
		}
		if reply.Parent == "" {
			return cur
		}
		if _, seen := visited[reply.Parent]; seen {
			return reply.Parent
		}
		next, cached := cache.Get(reply.Parent)
		if !cached {
			// Chain incomplete: cur is the last resolvable URI.
			return cur
		}
		visited[reply.Parent] = struct{}{}
		cur = reply.Parent
		post = next
	}
}
