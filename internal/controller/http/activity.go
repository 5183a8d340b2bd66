package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
	"github.com/vadim/reddit-insight/internal/httpx/response"
)

// ActivityPolicy defines the interface for user analytics operations
type ActivityPolicy interface {
	GetSummary(ctx context.Context, username string) (*entity.Summary, error)
	GetActivity(ctx context.Context, username string) (*entity.ActivityResult, error)
}

// ActivityHandler handles HTTP requests for user analytics
type ActivityHandler struct {
	policy ActivityPolicy
	logger *slog.Logger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(p ActivityPolicy, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{policy: p, logger: logger}
}

// RegisterRoutes registers activity routes
func (h *ActivityHandler) RegisterRoutes(r chi.Router) {
	// Quick profile overview
	r.Get("/get_user_summary", h.GetSummary())

	// Full history analytics
	r.Get("/get_user_activity", h.GetActivity())
}

// GetSummary handles GET /get_user_summary?username=
func (h *ActivityHandler) GetSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := strings.TrimSpace(r.URL.Query().Get("username"))
		if username == "" {
			response.BadRequest(w, "Username is required")
			return
		}

		summary, err := h.policy.GetSummary(r.Context(), username)
		if err != nil {
			h.handleActivityError(w, r, username, err)
			return
		}

		response.OK(w, summary)
	}
}

// GetActivity handles GET /get_user_activity?username=
func (h *ActivityHandler) GetActivity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := strings.TrimSpace(r.URL.Query().Get("username"))
		if username == "" {
			response.BadRequest(w, "Username is required")
			return
		}

		activity, err := h.policy.GetActivity(r.Context(), username)
		if err != nil {
			h.handleActivityError(w, r, username, err)
			return
		}

		response.OK(w, activity)
	}
}

// handleActivityError maps domain errors to HTTP responses. Upstream details
// are logged and never returned to the client.
func (h *ActivityHandler) handleActivityError(w http.ResponseWriter, r *http.Request, username string, err error) {
	switch {
	case errors.Is(err, entity.ErrUsernameRequired):
		response.BadRequest(w, "Username is required")
		return
	case errors.Is(err, entity.ErrUserNotFound):
		response.NotFound(w, fmt.Sprintf("User: %s was not found.", username))
		return
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		h.logger.Debug("client went away", "path", r.URL.Path, "username", username)
		return
	}

	h.logger.Error("request failed", "path", r.URL.Path, "username", username, "error", err)

	switch {
	case errors.Is(err, entity.ErrPaginationLimitExceeded):
		response.InternalError(w, "User history is too large to analyze")
	case errors.Is(err, entity.ErrAuth):
		response.InternalError(w, "Failed to authenticate with Reddit")
	case errors.Is(err, context.DeadlineExceeded):
		response.InternalError(w, "Reddit took too long to respond")
	case errors.Is(err, entity.ErrUpstream):
		response.InternalError(w, "Failed to fetch data from Reddit")
	default:
		response.InternalError(w, "Internal server error")
	}
}
