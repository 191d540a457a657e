package handler

import (
	"net/http"
	"strings"

	"eventvote/internal/container"
	"eventvote/internal/domain"
	"eventvote/internal/service"
	"eventvote/pkg/errors"
	"eventvote/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// AdminHandler serves the privileged edit and session control endpoints
type AdminHandler struct {
	teams       *service.TeamService
	admin       *service.AdminService
	session     *service.SessionService
	leaderboard *service.LeaderboardService
	logger      *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(c *container.Container) *AdminHandler {
	return &AdminHandler{
		teams:       c.Services.Teams,
		admin:       c.Services.Admin,
		session:     c.Services.Session,
		leaderboard: c.Services.Leaderboard,
		logger:      c.GetLogger(),
	}
}

// UpdateTeam handles PUT /api/admin/teams/{teamId}
func (h *AdminHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	var update domain.TeamUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	team, err := h.teams.UpdateTeam(r.Context(), chi.URLParam(r, "teamId"), update)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// DeleteTeam handles DELETE /api/admin/teams/{teamId}
func (h *AdminHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.DeleteTeam(r.Context(), chi.URLParam(r, "teamId"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// DeleteVote handles DELETE /api/admin/votes/{voteId}
func (h *AdminHandler) DeleteVote(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteVote(r.Context(), chi.URLParam(r, "voteId")); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateVote handles PUT /api/admin/votes/{voteId}
func (h *AdminHandler) UpdateVote(w http.ResponseWriter, r *http.Request) {
	var req domain.RatingUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	vote, err := h.admin.UpdateVoteRating(r.Context(), chi.URLParam(r, "voteId"), req.Rating)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, vote)
}

// SetLeaderboardVisibility handles POST /api/admin/leaderboard-visibility
func (h *AdminHandler) SetLeaderboardVisibility(w http.ResponseWriter, r *http.Request) {
	var req domain.VisibilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	if err := h.leaderboard.SetLeaderboardVisibility(r.Context(), req.IsVisible); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

// InitVotingState handles POST /api/admin/voting-state/init
func (h *AdminHandler) InitVotingState(w http.ResponseWriter, r *http.Request) {
	session, err := h.session.InitVotingState(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// SetVotingState handles PUT /api/admin/voting-state
func (h *AdminHandler) SetVotingState(w http.ResponseWriter, r *http.Request) {
	var session domain.VotingSession
	if err := decodeJSON(w, r, &session); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	if session.PresentingTeam != nil && strings.TrimSpace(session.PresentingTeam.ID) == "" {
		respondError(w, r, errors.NewValidationError("Presenting team id is required", nil), h.logger)
		return
	}

	saved, err := h.session.SetVotingState(r.Context(), session)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// StartVoting handles POST /api/admin/voting/start
func (h *AdminHandler) StartVoting(w http.ResponseWriter, r *http.Request) {
	var req domain.StartVotingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	if strings.TrimSpace(req.TeamID) == "" {
		respondError(w, r, errors.NewValidationError("team_id is required", nil), h.logger)
		return
	}

	session, err := h.session.StartVoting(r.Context(), req.TeamID)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// EndVoting handles POST /api/admin/voting/end
func (h *AdminHandler) EndVoting(w http.ResponseWriter, r *http.Request) {
	session, err := h.session.EndVoting(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// ResetVotingState handles POST /api/admin/voting/reset
func (h *AdminHandler) ResetVotingState(w http.ResponseWriter, r *http.Request) {
	session, err := h.session.ResetVotingState(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, session)
}
