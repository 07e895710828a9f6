package notifications

import (
	"time"

	"github.com/skylens/skylens-backend/internal/domain"
)

// RefreshInput holds the parameters for one feed sync.
type RefreshInput struct {
	// MaxPages bounds how many listNotifications pages one refresh pulls.
	MaxPages int
	// PageSize is the per-page limit passed to the AppView (max 100).
	PageSize int
}

// Validate checks all fields and collects all errors.
func (i RefreshInput) Validate() error {
	var errs []domain.FieldError
	if i.MaxPages < 1 {
		errs = append(errs, domain.FieldError{Field: "max_pages", Message: "must be at least 1"})
	}
	if i.MaxPages > 50 {
		errs = append(errs, domain.FieldError{Field: "max_pages", Message: "max 50"})
	}
	if i.PageSize < 1 {
		errs = append(errs, domain.FieldError{Field: "page_size", Message: "must be at least 1"})
	}
	if i.PageSize > 100 {
		errs = append(errs, domain.FieldError{Field: "page_size", Message: "max 100"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// FeedInput holds the parameters for snapshot-based reads (threads, timeline).
type FeedInput struct {
	// Limit caps how many recent notifications the snapshot covers.
	// Zero means DefaultFeedLimit.
	Limit int
}

// Validate checks all fields and collects all errors.
func (i FeedInput) Validate() error {
	var errs []domain.FieldError
	if i.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be non-negative"})
	}
	if i.Limit > MaxFeedLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "max 1000"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func (i FeedInput) limitOrDefault() int {
	if i.Limit == 0 {
		return DefaultFeedLimit
	}
	return i.Limit
}

// MarkSeenInput holds the parameters for marking the feed as seen.
type MarkSeenInput struct {
	// SeenAt is the watermark; notifications indexed at or before it are
	// marked read. Zero means now.
	SeenAt time.Time
}

func (i MarkSeenInput) seenAtOrNow() time.Time {
	if i.SeenAt.IsZero() {
		return time.Now().UTC()
	}
	return i.SeenAt.UTC()
}
