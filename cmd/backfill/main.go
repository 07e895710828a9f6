// Command backfill walks older pages of the notification feed, resuming
// from the cursor persisted by the server's refresh loop. It is intended to
// be invoked by an external cron job until the feed reports exhaustion, not
// as an in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/skylens/skylens-backend/internal/adapter/bsky"
	"github.com/skylens/skylens-backend/internal/adapter/postgres"
	notificationrepo "github.com/skylens/skylens-backend/internal/adapter/postgres/notification"
	postrepo "github.com/skylens/skylens-backend/internal/adapter/postgres/post"
	"github.com/skylens/skylens-backend/internal/adapter/postgres/syncstate"
	"github.com/skylens/skylens-backend/internal/app"
	"github.com/skylens/skylens-backend/internal/config"
	"github.com/skylens/skylens-backend/internal/service/notifications"
)

func main() {
	maxPages := flag.Int("pages", 20, "maximum pages to pull in one run")
	pageSize := flag.Int("page-size", 100, "notifications per page (max 100)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	client := bsky.NewClient(cfg.Bluesky, logger)
	loader := bsky.NewPostLoader(client)

	svc := notifications.NewService(
		logger,
		client,
		loader,
		notificationrepo.New(pool),
		postrepo.New(pool),
		syncstate.New(pool),
	)

	result, err := svc.Backfill(ctx, notifications.RefreshInput{
		MaxPages: *maxPages,
		PageSize: *pageSize,
	})
	if err != nil {
		logger.Error("backfill failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("backfill completed",
		slog.Int("pages", result.Pages),
		slog.Int("notifications", result.Notifications),
		slog.Bool("exhausted", result.Exhausted),
	)
}
