package rest

import (
	"time"

	"github.com/skylens/skylens-backend/internal/domain"
)

// Response shapes are decoupled from the domain types so the wire format
// stays stable while the engine evolves.

type actorResponse struct {
	DID         string  `json:"did"`
	Handle      string  `json:"handle"`
	DisplayName *string `json:"display_name,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}

type notificationResponse struct {
	URI           string        `json:"uri"`
	Reason        string        `json:"reason"`
	Author        actorResponse `json:"author"`
	ReasonSubject *string       `json:"reason_subject,omitempty"`
	IsRead        bool          `json:"is_read"`
	IndexedAt     time.Time     `json:"indexed_at"`
}

type postResponse struct {
	URI       string        `json:"uri"`
	Author    actorResponse `json:"author"`
	Text      *string       `json:"text,omitempty"`
	CreatedAt *time.Time    `json:"created_at,omitempty"`
	IndexedAt time.Time     `json:"indexed_at"`
}

type threadResponse struct {
	RootURI          string                 `json:"root_uri"`
	RootPost         *postResponse          `json:"root_post,omitempty"`
	Replies          []notificationResponse `json:"replies"`
	Participants     []string               `json:"participants"`
	LatestReply      *notificationResponse  `json:"latest_reply,omitempty"`
	TotalReplies     int                    `json:"total_replies"`
	UnreadCount      int                    `json:"unread_count"`
	OriginalPostTime *time.Time             `json:"original_post_time,omitempty"`
}

type affectedPostResponse struct {
	URI  string  `json:"uri"`
	Text *string `json:"text,omitempty"`
}

type eventResponse struct {
	Time          time.Time              `json:"time"`
	Type          string                 `json:"type"`
	Reasons       []string               `json:"reasons"`
	Actors        []string               `json:"actors"`
	Notifications []notificationResponse `json:"notifications"`
	EarliestTime  *time.Time             `json:"earliest_time,omitempty"`
	LatestTime    *time.Time             `json:"latest_time,omitempty"`
	Intensity     *string                `json:"intensity,omitempty"`
	PostURI       *string                `json:"post_uri,omitempty"`
	PostText      *string                `json:"post_text,omitempty"`
	PrimaryActor  *string                `json:"primary_actor,omitempty"`
	AffectedPosts []affectedPostResponse `json:"affected_posts,omitempty"`
}

func toActorResponse(a domain.Actor) actorResponse {
	return actorResponse{
		DID:         a.DID,
		Handle:      a.Handle,
		DisplayName: a.DisplayName,
		Avatar:      a.Avatar,
	}
}

func toNotificationResponse(n *domain.Notification) notificationResponse {
	return notificationResponse{
		URI:           n.URI,
		Reason:        n.Reason.String(),
		Author:        toActorResponse(n.Author),
		ReasonSubject: n.ReasonSubject,
		IsRead:        n.IsRead,
		IndexedAt:     n.IndexedAt,
	}
}

func toNotificationResponses(ns []*domain.Notification) []notificationResponse {
	out := make([]notificationResponse, len(ns))
	for i, n := range ns {
		out[i] = toNotificationResponse(n)
	}
	return out
}

func toPostResponse(p *domain.Post) *postResponse {
	if p == nil {
		return nil
	}
	return &postResponse{
		URI:       p.URI,
		Author:    toActorResponse(p.Author),
		Text:      p.Record.Text,
		CreatedAt: p.Record.CreatedAt,
		IndexedAt: p.IndexedAt,
	}
}

func toThreadsResponse(threads []*domain.ConversationThread) []threadResponse {
	out := make([]threadResponse, len(threads))
	for i, t := range threads {
		resp := threadResponse{
			RootURI:          t.RootURI,
			RootPost:         toPostResponse(t.RootPost),
			Replies:          toNotificationResponses(t.Replies),
			Participants:     t.Participants,
			TotalReplies:     t.TotalReplies,
			UnreadCount:      t.UnreadCount(),
			OriginalPostTime: t.OriginalPostTime,
		}
		if t.LatestReply != nil {
			lr := toNotificationResponse(t.LatestReply)
			resp.LatestReply = &lr
		}
		out[i] = resp
	}
	return out
}

func toTimelineResponse(events []*domain.AggregatedEvent) []eventResponse {
	out := make([]eventResponse, len(events))
	for i, e := range events {
		reasons := make([]string, len(e.Types))
		for j, r := range e.Types {
			reasons[j] = r.String()
		}

		resp := eventResponse{
			Time:          e.Time,
			Type:          e.Type.String(),
			Reasons:       reasons,
			Actors:        e.Actors,
			Notifications: toNotificationResponses(e.Notifications),
			EarliestTime:  e.EarliestTime,
			LatestTime:    e.LatestTime,
			PostURI:       e.PostURI,
			PostText:      e.PostText,
			PrimaryActor:  e.PrimaryActor,
		}
		if e.Intensity != nil {
			intensity := e.Intensity.String()
			resp.Intensity = &intensity
		}
		if len(e.AffectedPosts) > 0 {
			resp.AffectedPosts = make([]affectedPostResponse, len(e.AffectedPosts))
			for j, ap := range e.AffectedPosts {
				resp.AffectedPosts[j] = affectedPostResponse{URI: ap.URI, Text: ap.Text}
			}
		}
		out[i] = resp
	}
	return out
}
