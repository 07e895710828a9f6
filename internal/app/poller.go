package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/skylens/skylens-backend/internal/config"
	"github.com/skylens/skylens-backend/internal/service/notifications"
)

// runPoller refreshes the notification feed on a fixed interval until the
// context is canceled. An immediate first pass warms the store at startup.
func runPoller(ctx context.Context, svc *notifications.Service, cfg config.PollConfig, logger *slog.Logger) {
	log := logger.With("component", "poller")

	input := notifications.RefreshInput{
		MaxPages: cfg.MaxPages,
		PageSize: cfg.PageSize,
	}

	refresh := func() {
		result, err := svc.Refresh(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WarnContext(ctx, "scheduled refresh failed", slog.Any("error", err))
			return
		}
		log.DebugContext(ctx, "scheduled refresh done",
			slog.Int("pages", result.Pages),
			slog.Int("notifications", result.Notifications),
		)
	}

	refresh()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
