package handler

import (
	"context"
	"net/http"
	"time"

	"eventvote/internal/container"
	"eventvote/pkg/logger"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	checks map[string]func(ctx context.Context) error
	store  string
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(c *container.Container) *HealthHandler {
	store := "memory"
	if c.HasDatabase() {
		store = "postgres"
	}
	return &HealthHandler{
		checks: c.HealthChecks(),
		store:  store,
		logger: c.GetLogger(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Store     string            `json:"store"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   "eventvote",
		Store:     h.store,
		Checks:    make(map[string]string, len(h.checks)),
	}

	status := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.WithError(err).WithField("backend", name).Warn("Health check failed")
			response.Checks[name] = "unhealthy"
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Checks[name] = "healthy"
	}

	respondJSON(w, status, response)
}
