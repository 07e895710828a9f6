package domain

import "time"

// ReplyRef carries the back-references a reply post declares: the thread
// root and the immediate parent. Either may be empty on malformed records.
type ReplyRef struct {
	Root   string
	Parent string
}

// PostRecord is the subset of an app.bsky.feed.post record the engine
// consumes. All fields are optional; absent or ill-typed record data
// degrades to self-rooted grouping, never to an error.
type PostRecord struct {
	Text      *string
	CreatedAt *time.Time
	Reply     *ReplyRef
}

// Post is a fetched post body, keyed by its AT-URI. Posts arrive
// asynchronously and are merged into an append-only cache; a URI, once
// cached, is never evicted within a session epoch.
type Post struct {
	URI       string
	CID       string
	Author    Actor
	Record    PostRecord
	IndexedAt time.Time
}

// IsReply reports whether the post declares any reply reference.
func (p *Post) IsReply() bool {
	return p.Record.Reply != nil && (p.Record.Reply.Root != "" || p.Record.Reply.Parent != "")
}

// CreatedOrIndexedAt prefers the record's self-reported creation time and
// falls back to the AppView's indexing time.
func (p *Post) CreatedOrIndexedAt() time.Time {
	if p.Record.CreatedAt != nil {
		return *p.Record.CreatedAt
	}
	return p.IndexedAt
}
