package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"vims/internal/news"
	"vims/pkg/platform/httputil"
)

// Service defines the news operations the handler needs.
type Service interface {
	Headlines(ctx context.Context, limit int) []news.Article
}

// Handler serves the news feed.
type Handler struct {
	service Service
}

// New constructs a news handler.
func New(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the news endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/news", h.handleNews)
}

func (h *Handler) handleNews(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		// A malformed limit falls back to the default page size.
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	articles := h.service.Headlines(r.Context(), limit)
	httputil.WriteJSON(w, http.StatusOK, articles)
}
