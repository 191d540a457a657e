package handler

import (
	"net/http"

	"eventvote/internal/container"
	"eventvote/internal/domain"
	"eventvote/internal/middleware"
	"eventvote/internal/service"
	"eventvote/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// TeamHandler serves team listings, team detail and self-edit
type TeamHandler struct {
	teams       *service.TeamService
	voting      *service.VotingService
	leaderboard *service.LeaderboardService
	logger      *logger.Logger
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(c *container.Container) *TeamHandler {
	return &TeamHandler{
		teams:       c.Services.Teams,
		voting:      c.Services.Voting,
		leaderboard: c.Services.Leaderboard,
		logger:      c.GetLogger(),
	}
}

// ListTeams handles GET /api/teams
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.ListTeams(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, teams)
}

// GetTeam handles GET /api/teams/{teamId} and includes the team's aggregate
func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	stats, err := h.leaderboard.TeamStats(r.Context(), chi.URLParam(r, "teamId"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetTeamVotes handles GET /api/teams/{teamId}/votes
func (h *TeamHandler) GetTeamVotes(w http.ResponseWriter, r *http.Request) {
	votes, err := h.voting.GetTeamVotes(r.Context(), chi.URLParam(r, "teamId"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, votes)
}

// GetMe handles GET /api/me
func (h *TeamHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	team, err := h.teams.GetTeam(r.Context(), middleware.GetTeamID(r.Context()))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// UpdateMe handles PUT /api/me. A team can only edit its own record.
func (h *TeamHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var update domain.TeamUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	team, err := h.teams.UpdateTeam(r.Context(), middleware.GetTeamID(r.Context()), update)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, team)
}
