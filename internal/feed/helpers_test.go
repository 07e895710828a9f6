package feed

import (
	"fmt"
	"time"

	"github.com/skylens/skylens-backend/internal/domain"
)

var testEpoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func postURI(author, rkey string) string {
	return fmt.Sprintf("at://did:plc:%s/app.bsky.feed.post/%s", author, rkey)
}

// note builds a notification by author at testEpoch+offset. subject may be
// empty for no reasonSubject.
func note(reason domain.Reason, author string, offset time.Duration, subject string) *domain.Notification {
	n := &domain.Notification{
		URI:       fmt.Sprintf("at://did:plc:%s/app.bsky.feed.%s/%d", author, reason, offset/time.Second),
		CID:       "bafy" + author,
		Reason:    reason,
		Author:    domain.Actor{DID: "did:plc:" + author, Handle: author + ".bsky.social"},
		IndexedAt: testEpoch.Add(offset),
	}
	if subject != "" {
		n.ReasonSubject = &subject
	}
	return n
}

// post builds a cached post. root and parent may be empty.
func post(uri, root, parent string, text string) *domain.Post {
	p := &domain.Post{
		URI:       uri,
		CID:       "bafyp",
		Author:    domain.Actor{DID: "did:plc:author", Handle: "author.bsky.social"},
		IndexedAt: testEpoch,
	}
	if text != "" {
		p.Record.Text = &text
	}
	if root != "" || parent != "" {
		p.Record.Reply = &domain.ReplyRef{Root: root, Parent: parent}
	}
	return p
}

// countMembers sums event membership and checks each notification appears
// exactly once across the event list.
func partitionCounts(events []*domain.AggregatedEvent) (total int, dup bool) {
	seen := make(map[*domain.Notification]bool)
	for _, ev := range events {
		for _, n := range ev.Notifications {
			if seen[n] {
				dup = true
			}
			seen[n] = true
			total++
		}
	}
	return total, dup
}
