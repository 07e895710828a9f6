// Package app wires configuration, storage, the Bluesky client, services,
// and the HTTP server into a running process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/skylens/skylens-backend/internal/adapter/bsky"
	"github.com/skylens/skylens-backend/internal/adapter/jetstream"
	"github.com/skylens/skylens-backend/internal/adapter/postgres"
	notificationrepo "github.com/skylens/skylens-backend/internal/adapter/postgres/notification"
	postrepo "github.com/skylens/skylens-backend/internal/adapter/postgres/post"
	"github.com/skylens/skylens-backend/internal/adapter/postgres/syncstate"
	"github.com/skylens/skylens-backend/internal/config"
	"github.com/skylens/skylens-backend/internal/service/notifications"
	"github.com/skylens/skylens-backend/internal/transport/rest"
)

// Run is the application entry point. It blocks until ctx is canceled,
// then shuts the HTTP server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting skylens backend",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := migrate(ctx, cfg.Database); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

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

	if cfg.Poll.Enabled {
		go runPoller(ctx, svc, cfg.Poll, logger)
	}

	if cfg.Jetstream.Enabled {
		ing, err := jetstream.New(cfg.Jetstream, svc, logger)
		if err != nil {
			return fmt.Errorf("create jetstream ingester: %w", err)
		}
		go func() {
			if err := ing.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("jetstream ingester stopped", slog.Any("error", err))
			}
		}()
	}

	router := rest.NewRouter(
		rest.NewHealthHandler(pool, BuildVersion()),
		rest.NewNotificationsHandler(svc, logger),
		cfg.Admin.Token,
		logger,
	)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
