package jetstream

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/skylens/skylens-backend/internal/domain"
)

const (
	kindCommit = "commit"

	opCreate = "create"

	collectionPost = "app.bsky.feed.post"
)

// event is the raw JSON frame from Jetstream.
type event struct {
	DID    string  `json:"did"`
	TimeUS int64   `json:"time_us"`
	Kind   string  `json:"kind"`
	Commit *commit `json:"commit,omitempty"`
}

type commit struct {
	Rev        string          `json:"rev,omitempty"`
	Operation  string          `json:"operation"`
	Collection string          `json:"collection,omitempty"`
	RKey       string          `json:"rkey,omitempty"`
	Record     json.RawMessage `json:"record,omitempty"`
	CID        string          `json:"cid,omitempty"`
}

// postRecord is the parsed content of an app.bsky.feed.post record.
type postRecord struct {
	Type      string    `json:"$type"`
	Text      string    `json:"text"`
	CreatedAt string    `json:"createdAt"`
	Reply     *replyRef `json:"reply,omitempty"`
}

type replyRef struct {
	Root   strongRef `json:"root"`
	Parent strongRef `json:"parent"`
}

type strongRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// decodePost extracts a domain.Post from a raw Jetstream frame. The second
// return is false for frames that are not post creations (deletes, updates,
// likes, account and identity events).
func decodePost(frame []byte) (*domain.Post, bool, error) {
	var ev event
	if err := json.Unmarshal(frame, &ev); err != nil {
		return nil, false, fmt.Errorf("decode event: %w", err)
	}

	if ev.Kind != kindCommit || ev.Commit == nil {
		return nil, false, nil
	}
	c := ev.Commit
	if c.Operation != opCreate || c.Collection != collectionPost || len(c.Record) == 0 {
		return nil, false, nil
	}

	var rec postRecord
	if err := json.Unmarshal(c.Record, &rec); err != nil {
		return nil, false, fmt.Errorf("decode post record: %w", err)
	}

	p := &domain.Post{
		URI:       fmt.Sprintf("at://%s/%s/%s", ev.DID, c.Collection, c.RKey),
		CID:       c.CID,
		Author:    domain.Actor{DID: ev.DID, Handle: ev.DID},
		IndexedAt: time.UnixMicro(ev.TimeUS).UTC(),
	}
	if rec.Text != "" {
		text := rec.Text
		p.Record.Text = &text
	}
	// createdAt is author-supplied and occasionally garbage; fall back to
	// the event time by leaving CreatedAt nil.
	if ts, err := time.Parse(time.RFC3339, rec.CreatedAt); err == nil {
		created := ts.UTC()
		p.Record.CreatedAt = &created
	}
	if rec.Reply != nil {
		p.Record.Reply = &domain.ReplyRef{
			Root:   rec.Reply.Root.URI,
			Parent: rec.Reply.Parent.URI,
		}
	}

	return p, true, nil
}
