package domain

import (
	"strings"
	"time"
)

// Actor identifies the account that triggered a notification or authored
// a post.
type Actor struct {
	DID         string
	Handle      string
	DisplayName *string
	Avatar      *string
}

// Notification is one entry from the account's notification feed.
// Notifications are immutable once fetched; all derived structures are
// recomputed from the accumulated set rather than patched in place.
type Notification struct {
	// URI is the AT-URI of the record that caused the notification
	// (e.g. at://did:plc:abc/app.bsky.feed.like/3l3qo2vuowo2b).
	URI string
	// CID is the content identifier of that record.
	CID    string
	Reason Reason
	Author Actor
	// ReasonSubject is the AT-URI of the post the interaction is about,
	// when the reason has one (likes, reposts, replies, quotes).
	ReasonSubject *string
	IsRead        bool
	IndexedAt     time.Time
}

// SubjectURI returns the URI of the underlying post this notification is
// about: ReasonSubject when present and well-formed, else the
// notification's own URI.
func (n *Notification) SubjectURI() string {
	if n.ReasonSubject != nil && IsATURI(*n.ReasonSubject) {
		return *n.ReasonSubject
	}
	return n.URI
}

// PostURIs returns every post URI this notification references: the declared
// subject post plus, when the record that triggered the notification is
// itself a post (replies, mentions, quotes), the notification's own URI.
// Root resolution walks the triggering record's reply refs, so both need
// hydrating. Like, repost and follow records are not posts and are never
// returned.
func (n *Notification) PostURIs() []string {
	uris := make([]string, 0, 2)
	if s := n.ReasonSubject; s != nil && IsATURI(*s) {
		uris = append(uris, *s)
	}
	if n.recordIsPost() && IsATURI(n.URI) && (len(uris) == 0 || uris[0] != n.URI) {
		uris = append(uris, n.URI)
	}
	return uris
}

// recordIsPost reports whether the record behind the notification is a post
// record, as opposed to a like, repost or follow record.
func (n *Notification) recordIsPost() bool {
	switch n.Reason {
	case ReasonReply, ReasonMention, ReasonQuote:
		return true
	}
	return false
}

// IsATURI reports whether s looks like an AT-URI. A malformed subject is
// treated as absent rather than surfaced as an error.
func IsATURI(s string) bool {
	return strings.HasPrefix(s, "at://") && len(s) > len("at://")
}

// NotificationPage is one page of the account's notification feed.
type NotificationPage struct {
	Notifications []*Notification
	// Cursor resumes pagination; empty means the feed is exhausted.
	Cursor string
}
