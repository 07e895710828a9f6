package domain

import "time"

// AffectedPost is a post touched by a user-activity run, paired with its
// cached text when the post body is known.
type AffectedPost struct {
	URI  string
	Text *string
}

// AggregatedEvent is one entry of the clustered activity timeline. Every
// notification of the input snapshot belongs to exactly one event; the
// clustering passes are disjoint and exhaustive.
type AggregatedEvent struct {
	// Time is the event's representative time: a burst's LatestTime, a
	// singleton's own notification time. The timeline is sorted by it,
	// newest first.
	Time          time.Time
	Notifications []*Notification
	// Types lists the distinct reasons present, in first-seen order.
	Types []Reason
	// Actors lists the distinct acting handles, in first-seen order.
	Actors []string
	Type   AggregationType
	// EarliestTime and LatestTime bound multi-member events; nil for
	// singletons.
	EarliestTime *time.Time
	LatestTime   *time.Time
	// Intensity grades post-burst events; nil for every other type.
	Intensity *BurstIntensity
	// PostURI and PostText identify the engaged post for post and
	// post-burst events.
	PostURI  *string
	PostText *string
	// PrimaryActor is the single acting user of a user-activity event.
	PrimaryActor *string
	// AffectedPosts lists the distinct posts a user-activity run touched.
	AffectedPosts []AffectedPost
}

// Span returns the duration between the earliest and latest member times,
// or zero for singletons.
func (e *AggregatedEvent) Span() time.Duration {
	if e.EarliestTime == nil || e.LatestTime == nil {
		return 0
	}
	return e.LatestTime.Sub(*e.EarliestTime)
}
