package domain

import "time"

// ConversationThread groups the reply notifications that belong to one
// resolved thread root. Threads are derived data: they are recomputed
// whenever the notification set or the post cache changes and are never
// mutated in place.
type ConversationThread struct {
	// RootURI is the resolved root of the conversation. It may be a
	// provisional root (typically a reasonSubject) until the true thread
	// ancestor has been fetched; recomputation then re-keys the thread.
	RootURI string
	// RootPost is the cached root post, when available.
	RootPost *Post
	// Replies holds the member notifications in feed order.
	Replies []*Notification
	// Participants lists the distinct handles seen in Replies, in order
	// of first appearance.
	Participants []string
	// LatestReply is the member with the greatest IndexedAt; ties keep
	// the earlier feed-order member.
	LatestReply  *Notification
	TotalReplies int
	// OriginalPostTime is the root post's createdAt, else its indexedAt;
	// nil while the root post is unknown.
	OriginalPostTime *time.Time
}

// UnreadCount returns how many member replies are unread.
func (t *ConversationThread) UnreadCount() int {
	n := 0
	for _, r := range t.Replies {
		if !r.IsRead {
			n++
		}
	}
	return n
}

// HasParticipant reports whether the handle already appears in the thread.
func (t *ConversationThread) HasParticipant(handle string) bool {
	for _, h := range t.Participants {
		if h == handle {
			return true
		}
	}
	return false
}
