package domain

import "time"

// SyncState tracks per-account progress through the paginated notification
// feed so refreshes resume where the previous one stopped.
type SyncState struct {
	AccountDID string
	// Cursor is the opaque listNotifications pagination cursor; empty
	// means start from the head of the feed.
	Cursor string
	// LastSeenAt is the last time the account marked its notifications
	// seen (propagated to updateSeen).
	LastSeenAt *time.Time
	UpdatedAt  time.Time
}
