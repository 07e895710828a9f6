package feed

import (
	"sort"
	"time"

	"github.com/skylens/skylens-backend/internal/domain"
)

// Clustering parameters. Earlier passes claim notifications first, so the
// ordering of the passes is part of the contract.
const (
	// userActivityWindow is the maximum gap between a run's earliest
	// member and the next (older) notification by the same user.
	userActivityWindow = 30 * time.Minute
	// userActivityMin is the run size below which members are released
	// back for later passes.
	userActivityMin = 3

	// postBurstMin is the engagement-group size that forms a burst.
	postBurstMin = 3

	// followClusterGap is the sliding window between adjacent follows.
	followClusterGap = 2 * time.Hour
	// followClusterMin is the cluster size below which follows stay
	// individual events.
	followClusterMin = 2

	burstHighCount   = 10
	burstHighSpan    = 6 * time.Hour
	burstMediumCount = 5
	burstMediumSpan  = 12 * time.Hour
)

// BuildTimeline partitions the complete notification snapshot (all
// reasons) into aggregated events, newest representative time first. The
// three clustering passes — user-activity bursts, post-engagement bursts,
// follow bursts — claim notifications in that priority order; anything
// left becomes an individual mixed event. The passes are disjoint and
// exhaustive: every notification lands in exactly one event.
//
// The function is deterministic: identical inputs yield structurally
// identical output.
func BuildTimeline(notifications []*domain.Notification, cache *PostCache) []*domain.AggregatedEvent {
	claimed := make([]bool, len(notifications))
	for i, n := range notifications {
		if n == nil {
			claimed[i] = true
		}
	}

	var events []*domain.AggregatedEvent
	events = append(events, userActivityPass(notifications, claimed, cache)...)
	events = append(events, postEngagementPass(notifications, claimed, cache)...)
	events = append(events, followPass(notifications, claimed)...)
	events = append(events, remainderPass(notifications, claimed)...)

	// Stable sort keeps same-time events in pass order, which makes the
	// output reproducible for memoization and property tests.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.After(events[j].Time)
	})

	return events
}

// userActivityPass finds runs of >= userActivityMin notifications by the
// same acting user within a sliding 30-minute window, walking each user's
// notifications newest-first. Sub-threshold runs are released unclaimed.
func userActivityPass(notifications []*domain.Notification, claimed []bool, cache *PostCache) []*domain.AggregatedEvent {
	byUser := make(map[string][]int)
	var userOrder []string
	for i, n := range notifications {
		if claimed[i] {
			continue
		}
		did := n.Author.DID
		if _, ok := byUser[did]; !ok {
			userOrder = append(userOrder, did)
		}
		byUser[did] = append(byUser[did], i)
	}

	var events []*domain.AggregatedEvent
	for _, did := range userOrder {
		idxs := append([]int(nil), byUser[did]...)
		// Newest first; ties keep feed order.
		sort.SliceStable(idxs, func(a, b int) bool {
			return notifications[idxs[a]].IndexedAt.After(notifications[idxs[b]].IndexedAt)
		})

		var run []int
		flush := func() {
			if len(run) >= userActivityMin {
				for _, i := range run {
					claimed[i] = true
				}
				events = append(events, newUserActivityEvent(notifications, run, cache))
			}
			run = nil
		}

		for _, i := range idxs {
			t := notifications[i].IndexedAt
			if len(run) == 0 {
				run = append(run, i)
				continue
			}
			// The run's current earliest member is the last appended one
			// (the walk is newest-first).
			earliest := notifications[run[len(run)-1]].IndexedAt
			if earliest.Sub(t) <= userActivityWindow {
				run = append(run, i)
			} else {
				flush()
				run = append(run, i)
			}
		}
		flush()
	}

	return events
}

func newUserActivityEvent(notifications []*domain.Notification, run []int, cache *PostCache) *domain.AggregatedEvent {
	members := make([]*domain.Notification, len(run))
	for i, idx := range run {
		members[i] = notifications[idx]
	}

	latest := members[0].IndexedAt
	earliest := members[len(members)-1].IndexedAt
	handle := members[0].Author.Handle

	ev := &domain.AggregatedEvent{
		Time:          latest,
		Notifications: members,
		Type:          domain.AggregationUserActivity,
		Actors:        []string{handle},
		PrimaryActor:  &handle,
		EarliestTime:  &earliest,
		LatestTime:    &latest,
	}

	seenPosts := make(map[string]struct{})
	for _, n := range members {
		ev.Types = appendReason(ev.Types, n.Reason)

		subject := n.SubjectURI()
		if _, ok := seenPosts[subject]; ok {
			continue
		}
		seenPosts[subject] = struct{}{}
		ev.AffectedPosts = append(ev.AffectedPosts, domain.AffectedPost{
			URI:  subject,
			Text: postText(cache, subject),
		})
	}

	return ev
}

// postEngagementPass groups the remaining like/repost/quote/reply
// notifications by the post they engage. Groups of >= postBurstMin become
// post-burst events; smaller groups break into individual post events.
func postEngagementPass(notifications []*domain.Notification, claimed []bool, cache *PostCache) []*domain.AggregatedEvent {
	byPost := make(map[string][]int)
	var postOrder []string
	for i, n := range notifications {
		if claimed[i] || !isEngagement(n.Reason) {
			continue
		}
		subject := n.SubjectURI()
		if _, ok := byPost[subject]; !ok {
			postOrder = append(postOrder, subject)
		}
		byPost[subject] = append(byPost[subject], i)
	}

	var events []*domain.AggregatedEvent
	for _, uri := range postOrder {
		idxs := byPost[uri]
		for _, i := range idxs {
			claimed[i] = true
		}

		if len(idxs) >= postBurstMin {
			events = append(events, newPostBurstEvent(notifications, idxs, uri, cache))
			continue
		}
		for _, i := range idxs {
			n := notifications[i]
			subject := uri
			events = append(events, &domain.AggregatedEvent{
				Time:          n.IndexedAt,
				Notifications: []*domain.Notification{n},
				Type:          domain.AggregationPost,
				Types:         []domain.Reason{n.Reason},
				Actors:        []string{n.Author.Handle},
				PostURI:       &subject,
				PostText:      postText(cache, subject),
			})
		}
	}

	return events
}

func newPostBurstEvent(notifications []*domain.Notification, idxs []int, uri string, cache *PostCache) *domain.AggregatedEvent {
	members := make([]*domain.Notification, len(idxs))
	for i, idx := range idxs {
		members[i] = notifications[idx]
	}

	earliest := members[0].IndexedAt
	latest := members[0].IndexedAt
	for _, n := range members[1:] {
		if n.IndexedAt.Before(earliest) {
			earliest = n.IndexedAt
		}
		if n.IndexedAt.After(latest) {
			latest = n.IndexedAt
		}
	}

	intensity := burstIntensity(len(members), latest.Sub(earliest))
	subject := uri

	ev := &domain.AggregatedEvent{
		Time:          latest,
		Notifications: members,
		Type:          domain.AggregationPostBurst,
		EarliestTime:  &earliest,
		LatestTime:    &latest,
		Intensity:     &intensity,
		PostURI:       &subject,
		PostText:      postText(cache, subject),
	}
	for _, n := range members {
		ev.Types = appendReason(ev.Types, n.Reason)
		ev.Actors = appendActor(ev.Actors, n.Author.Handle)
	}

	return ev
}

// burstIntensity grades a post burst by member count and time span:
// high for >=10 within 6h, medium for >=5 within 12h, else low.
func burstIntensity(count int, span time.Duration) domain.BurstIntensity {
	switch {
	case count >= burstHighCount && span <= burstHighSpan:
		return domain.BurstHigh
	case count >= burstMediumCount && span <= burstMediumSpan:
		return domain.BurstMedium
	default:
		return domain.BurstLow
	}
}

// followPass clusters the remaining follow notifications oldest-first with
// a 2-hour sliding gap: a follow joins the current cluster if it is within
// the gap of the previously accumulated member. Clusters of
// >= followClusterMin merge into one event; singletons stay individual
// follow events.
func followPass(notifications []*domain.Notification, claimed []bool) []*domain.AggregatedEvent {
	var idxs []int
	for i, n := range notifications {
		if claimed[i] || n.Reason != domain.ReasonFollow {
			continue
		}
		idxs = append(idxs, i)
	}
	if len(idxs) == 0 {
		return nil
	}

	// Oldest first; ties keep feed order.
	sort.SliceStable(idxs, func(a, b int) bool {
		return notifications[idxs[a]].IndexedAt.Before(notifications[idxs[b]].IndexedAt)
	})

	var events []*domain.AggregatedEvent
	var cluster []int
	flush := func() {
		for _, i := range cluster {
			claimed[i] = true
		}
		events = append(events, newFollowEvent(notifications, cluster))
		cluster = nil
	}

	for _, i := range idxs {
		if len(cluster) == 0 {
			cluster = append(cluster, i)
			continue
		}
		prev := notifications[cluster[len(cluster)-1]].IndexedAt
		if notifications[i].IndexedAt.Sub(prev) <= followClusterGap {
			cluster = append(cluster, i)
		} else {
			flush()
			cluster = append(cluster, i)
		}
	}
	flush()

	return events
}

func newFollowEvent(notifications []*domain.Notification, cluster []int) *domain.AggregatedEvent {
	members := make([]*domain.Notification, len(cluster))
	for i, idx := range cluster {
		members[i] = notifications[idx]
	}

	ev := &domain.AggregatedEvent{
		Time:          members[len(members)-1].IndexedAt,
		Notifications: members,
		Type:          domain.AggregationFollow,
		Types:         []domain.Reason{domain.ReasonFollow},
	}
	for _, n := range members {
		ev.Actors = appendActor(ev.Actors, n.Author.Handle)
	}

	if len(members) >= followClusterMin {
		earliest := members[0].IndexedAt
		latest := members[len(members)-1].IndexedAt
		ev.EarliestTime = &earliest
		ev.LatestTime = &latest
	}

	return ev
}

// remainderPass turns every unclaimed notification (mentions, verification
// reasons, via-repost variants outside a user run, ...) into an individual
// mixed event.
func remainderPass(notifications []*domain.Notification, claimed []bool) []*domain.AggregatedEvent {
	var events []*domain.AggregatedEvent
	for i, n := range notifications {
		if claimed[i] {
			continue
		}
		claimed[i] = true
		events = append(events, &domain.AggregatedEvent{
			Time:          n.IndexedAt,
			Notifications: []*domain.Notification{n},
			Type:          domain.AggregationMixed,
			Types:         []domain.Reason{n.Reason},
			Actors:        []string{n.Author.Handle},
		})
	}
	return events
}

// isEngagement reports whether the reason participates in the
// post-engagement pass.
func isEngagement(r domain.Reason) bool {
	switch r {
	case domain.ReasonLike, domain.ReasonRepost, domain.ReasonQuote, domain.ReasonReply:
		return true
	}
	return false
}

func postText(cache *PostCache, uri string) *string {
	if post, ok := cache.Get(uri); ok {
		return post.Record.Text
	}
	return nil
}

func appendReason(types []domain.Reason, r domain.Reason) []domain.Reason {
	for _, t := range types {
		if t == r {
			return types
		}
	}
	return append(types, r)
}

func appendActor(actors []string, handle string) []string {
	for _, a := range actors {
		if a == handle {
			return actors
		}
	}
	return append(actors, handle)
}
