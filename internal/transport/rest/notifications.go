package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/skylens/skylens-backend/internal/domain"
	"github.com/skylens/skylens-backend/internal/service/notifications"
)

type notificationsService interface {
	Threads(ctx context.Context, input notifications.FeedInput) ([]*domain.ConversationThread, error)
	Timeline(ctx context.Context, input notifications.FeedInput) ([]*domain.AggregatedEvent, error)
	Refresh(ctx context.Context, input notifications.RefreshInput) (*notifications.RefreshResult, error)
	MarkSeen(ctx context.Context, input notifications.MarkSeenInput) (int, error)
}

// NotificationsHandler serves the aggregated notification endpoints.
type NotificationsHandler struct {
	svc notificationsService
	log *slog.Logger
}

// NewNotificationsHandler creates a NotificationsHandler.
func NewNotificationsHandler(svc notificationsService, logger *slog.Logger) *NotificationsHandler {
	return &NotificationsHandler{
		svc: svc,
		log: logger.With("handler", "notifications"),
	}
}

// Threads returns reconstructed conversation threads, newest first.
// GET /api/v1/threads?limit=200
func (h *NotificationsHandler) Threads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.svc.Threads(r.Context(), notifications.FeedInput{Limit: queryInt(r, "limit")})
	if err != nil {
		h.writeServiceError(w, r, "threads", err)
		return
	}
	writeJSON(w, http.StatusOK, toThreadsResponse(threads))
}

// Timeline returns aggregated timeline events, newest first.
// GET /api/v1/timeline?limit=200
func (h *NotificationsHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Timeline(r.Context(), notifications.FeedInput{Limit: queryInt(r, "limit")})
	if err != nil {
		h.writeServiceError(w, r, "timeline", err)
		return
	}
	writeJSON(w, http.StatusOK, toTimelineResponse(events))
}

// refreshRequest is the optional JSON body for POST /api/v1/refresh.
type refreshRequest struct {
	MaxPages int `json:"max_pages"`
	PageSize int `json:"page_size"`
}

// Refresh triggers a feed sync against the AppView.
// POST /api/v1/refresh
func (h *NotificationsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	req := refreshRequest{MaxPages: 5, PageSize: 50}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	result, err := h.svc.Refresh(r.Context(), notifications.RefreshInput{
		MaxPages: req.MaxPages,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.writeServiceError(w, r, "refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// seenRequest is the optional JSON body for POST /api/v1/seen.
type seenRequest struct {
	SeenAt *time.Time `json:"seen_at"`
}

// MarkSeen marks the feed as seen up to a watermark (default: now).
// POST /api/v1/seen
func (h *NotificationsHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	var req seenRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	input := notifications.MarkSeenInput{}
	if req.SeenAt != nil {
		input.SeenAt = *req.SeenAt
	}

	updated, err := h.svc.MarkSeen(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, r, "mark seen", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

func (h *NotificationsHandler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUnavailable):
		h.log.ErrorContext(r.Context(), op+" failed upstream", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "upstream unavailable")
	default:
		h.log.ErrorContext(r.Context(), op+" failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func queryInt(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1 // let input validation reject it
	}
	return n
}
