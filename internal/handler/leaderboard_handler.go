package handler

import (
	"net/http"

	"eventvote/internal/container"
	"eventvote/internal/domain"
	"eventvote/internal/service"
	"eventvote/pkg/logger"
)

// LeaderboardHandler serves the public and admin rankings
type LeaderboardHandler struct {
	leaderboard *service.LeaderboardService
	logger      *logger.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(c *container.Container) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: c.Services.Leaderboard,
		logger:      c.GetLogger(),
	}
}

// GetLeaderboard handles GET /api/leaderboard. Entries are empty while the
// leaderboard is hidden.
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.leaderboard.PublicLeaderboard(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	etag := generateETag(board)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")

	respondJSON(w, http.StatusOK, board)
}

// GetAdminLeaderboard handles GET /api/admin/leaderboard
func (h *LeaderboardHandler) GetAdminLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboard.Leaderboard(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	visible, err := h.leaderboard.GetLeaderboardVisibility(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, domain.Leaderboard{Visible: visible, Entries: entries})
}
