package handler

import (
	"net/http"

	"eventvote/internal/container"
	"eventvote/internal/domain"
	"eventvote/internal/service"
	"eventvote/pkg/logger"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	teams  *service.TeamService
	auth   *service.AuthService
	logger *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(c *container.Container) *AuthHandler {
	return &AuthHandler{
		teams:  c.Services.Teams,
		auth:   c.Services.Auth,
		logger: c.GetLogger(),
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	resp, err := h.teams.RegisterTeam(r.Context(), req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	resp, err := h.teams.Login(r.Context(), req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// AdminLogin handles POST /api/admin/login
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	resp, err := h.auth.AdminLogin(req.Password)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
