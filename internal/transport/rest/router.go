package rest

import (
	"log/slog"
	"net/http"

	"github.com/skylens/skylens-backend/internal/transport/middleware"
)

// NewRouter assembles the HTTP routes. Read endpoints are open; mutating
// endpoints sit behind the admin token.
func NewRouter(
	health *HealthHandler,
	notifs *NotificationsHandler,
	adminToken string,
	logger *slog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /health/live", health.Live)
	mux.HandleFunc("GET /health/ready", health.Ready)

	mux.HandleFunc("GET /api/v1/threads", notifs.Threads)
	mux.HandleFunc("GET /api/v1/timeline", notifs.Timeline)

	admin := middleware.AdminToken(adminToken)
	mux.Handle("POST /api/v1/refresh", admin(http.HandlerFunc(notifs.Refresh)))
	mux.Handle("POST /api/v1/seen", admin(http.HandlerFunc(notifs.MarkSeen)))

	return middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logger(logger),
	)(mux)
}
