package feed

import (
	"sort"

	"github.com/skylens/skylens-backend/internal/domain"
)

// BuildConversationThreads partitions the reply-reason notifications of
// the snapshot into conversation threads keyed by resolved root, sorted by
// the latest reply's indexedAt descending. Every reply notification lands
// in exactly one thread; non-reply reasons are ignored.
//
// The function is pure: identical inputs yield structurally identical
// output, and neither the notifications nor the cache are mutated.
func BuildConversationThreads(notifications []*domain.Notification, cache *PostCache) []*domain.ConversationThread {
	groups := make(map[string]*domain.ConversationThread)
	var order []string // first-seen root order keeps grouping deterministic

	for _, n := range notifications {
		if n == nil || n.Reason != domain.ReasonReply {
			continue
		}

		root := ResolveRoot(n, cache)
		th, ok := groups[root]
		if !ok {
			th = &domain.ConversationThread{RootURI: root}
			groups[root] = th
			order = append(order, root)
		}

		th.Replies = append(th.Replies, n)
		th.TotalReplies++
		if !th.HasParticipant(n.Author.Handle) {
			th.Participants = append(th.Participants, n.Author.Handle)
		}
		// Strictly-after comparison: equal timestamps keep the earlier
		// feed-order member.
		if th.LatestReply == nil || n.IndexedAt.After(th.LatestReply.IndexedAt) {
			th.LatestReply = n
		}
	}

	threads := make([]*domain.ConversationThread, 0, len(order))
	for _, root := range order {
		th := groups[root]
		if post, ok := cache.Get(root); ok {
			th.RootPost = post
			t := post.CreatedOrIndexedAt()
			th.OriginalPostTime = &t
		}
		threads = append(threads, th)
	}

	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].LatestReply.IndexedAt.After(threads[j].LatestReply.IndexedAt)
	})

	return threads
}
