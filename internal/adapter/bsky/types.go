package bsky

import (
	"time"

	"github.com/skylens/skylens-backend/internal/domain"
)

// Wire types for the XRPC endpoints the client consumes. Only the fields
// the engine needs are decoded; everything else in the lexicon is ignored.

type sessionResponse struct {
	DID        string `json:"did"`
	Handle     string `json:"handle"`
	AccessJWT  string `json:"accessJwt"`
	RefreshJWT string `json:"refreshJwt"`
}

type apiActor struct {
	DID         string  `json:"did"`
	Handle      string  `json:"handle"`
	DisplayName *string `json:"displayName,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}

type apiReplyTarget struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

type apiReplyRef struct {
	Root   *apiReplyTarget `json:"root,omitempty"`
	Parent *apiReplyTarget `json:"parent,omitempty"`
}

type apiRecord struct {
	Text      *string      `json:"text,omitempty"`
	CreatedAt *string      `json:"createdAt,omitempty"`
	Reply     *apiReplyRef `json:"reply,omitempty"`
}

type apiNotification struct {
	URI           string    `json:"uri"`
	CID           string    `json:"cid"`
	Author        apiActor  `json:"author"`
	Reason        string    `json:"reason"`
	ReasonSubject *string   `json:"reasonSubject,omitempty"`
	IsRead        bool      `json:"isRead"`
	IndexedAt     time.Time `json:"indexedAt"`
}

type listNotificationsResponse struct {
	Cursor        string            `json:"cursor,omitempty"`
	Notifications []apiNotification `json:"notifications"`
}

type apiPost struct {
	URI       string     `json:"uri"`
	CID       string     `json:"cid"`
	Author    apiActor   `json:"author"`
	Record    *apiRecord `json:"record,omitempty"`
	IndexedAt time.Time  `json:"indexedAt"`
}

type getPostsResponse struct {
	Posts []apiPost `json:"posts"`
}


func (a apiActor) toDomain() domain.Actor {
	return domain.Actor{
		DID:         a.DID,
		Handle:      a.Handle,
		DisplayName: a.DisplayName,
		Avatar:      a.Avatar,
	}
}

func (n apiNotification) toDomain() *domain.Notification {
	return &domain.Notification{
		URI:           n.URI,
		CID:           n.CID,
		Reason:        domain.Reason(n.Reason),
		Author:        n.Author.toDomain(),
		ReasonSubject: n.ReasonSubject,
		IsRead:        n.IsRead,
		IndexedAt:     n.IndexedAt,
	}
}

func (p apiPost) toDomain() *domain.Post {
	out := &domain.Post{
		URI:       p.URI,
		CID:       p.CID,
		Author:    p.Author.toDomain(),
		IndexedAt: p.IndexedAt,
	}
	if p.Record == nil {
		return out
	}

	out.Record.Text = p.Record.Text
	if p.Record.CreatedAt != nil {
		// Records are user-supplied; a malformed createdAt degrades to
		// the indexedAt fallback rather than failing the post.
		if t, err := time.Parse(time.RFC3339, *p.Record.CreatedAt); err == nil {
			out.Record.CreatedAt = &t
		}
	}
	if p.Record.Reply != nil {
		ref := domain.ReplyRef{}
		if p.Record.Reply.Root != nil {
			ref.Root = p.Record.Reply.Root.URI
		}
		if p.Record.Reply.Parent != nil {
			ref.Parent = p.Record.Reply.Parent.URI
		}
		if ref.Root != "" || ref.Parent != "" {
			out.Record.Reply = &ref
		}
	}
	return out
}
