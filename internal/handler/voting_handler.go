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

// VotingHandler serves the voter-facing session and submission endpoints
type VotingHandler struct {
	voting  *service.VotingService
	session *service.SessionService
	logger  *logger.Logger
}

// NewVotingHandler creates a new voting handler
func NewVotingHandler(c *container.Container) *VotingHandler {
	return &VotingHandler{
		voting:  c.Services.Voting,
		session: c.Services.Session,
		logger:  c.GetLogger(),
	}
}

// VotingStateResponse adds the derived phase to the session record
type VotingStateResponse struct {
	domain.VotingSession
	Phase domain.SessionPhase `json:"phase"`
}

// GetVotingState handles GET /api/voting/state
func (h *VotingHandler) GetVotingState(w http.ResponseWriter, r *http.Request) {
	session, err := h.session.GetVotingState(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, VotingStateResponse{VotingSession: session, Phase: session.Phase()})
}

// GetEligibility handles GET /api/voting/eligibility/{teamId}
func (h *VotingHandler) GetEligibility(w http.ResponseWriter, r *http.Request) {
	eligibility, err := h.voting.Eligibility(r.Context(), chi.URLParam(r, "teamId"), middleware.GetTeamID(r.Context()))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, eligibility)
}

// SubmitVote handles POST /api/voting/vote. The target is always the team
// currently presenting.
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req domain.VoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	vote, err := h.voting.SubmitPresentingVote(r.Context(), middleware.GetTeamID(r.Context()), req.Rating)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, domain.VoteResponse{Vote: vote, Message: "Vote recorded"})
}
