package handler

import (
	"net/http"
	"time"

	"eventvote/internal/container"
	"eventvote/internal/middleware"
	"eventvote/pkg/errors"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter configures every route. live serves the WebSocket snapshot stream.
func NewRouter(c *container.Container, live http.Handler) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()
	auth := c.Services.Auth

	r := chi.NewRouter()

	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.AllowedOrigins), log))
	r.Use(middleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Metrics)

	healthHandler := NewHealthHandler(c)
	authHandler := NewAuthHandler(c)
	teamHandler := NewTeamHandler(c)
	votingHandler := NewVotingHandler(c)
	leaderboardHandler := NewLeaderboardHandler(c)
	adminHandler := NewAdminHandler(c)

	loginLimiter := middleware.NewRateLimiter(20, time.Minute)
	adminLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Get("/health", healthHandler.Check)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Long-lived connection, kept out of the timeout and compression group
		r.Handle("/live", live)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.Compress(5))
			r.Use(chiMiddleware.Timeout(30 * time.Second))

			r.Route("/auth", func(r chi.Router) {
				r.Use(middleware.RateLimit(loginLimiter, log))
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
			})

			r.Get("/teams", teamHandler.ListTeams)
			r.Get("/teams/{teamId}", teamHandler.GetTeam)
			r.Get("/teams/{teamId}/votes", teamHandler.GetTeamVotes)
			r.Get("/leaderboard", leaderboardHandler.GetLeaderboard)
			r.Get("/voting/state", votingHandler.GetVotingState)

			// Team token required
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(auth, log))

				r.Get("/me", teamHandler.GetMe)
				r.Put("/me", teamHandler.UpdateMe)
				r.Get("/voting/eligibility/{teamId}", votingHandler.GetEligibility)
				r.Post("/voting/vote", votingHandler.SubmitVote)
			})

			r.Route("/admin", func(r chi.Router) {
				r.With(middleware.RateLimit(adminLimiter, log)).Post("/login", authHandler.AdminLogin)

				r.Group(func(r chi.Router) {
					r.Use(middleware.Admin(auth, log))

					r.Get("/leaderboard", leaderboardHandler.GetAdminLeaderboard)
					r.Post("/leaderboard-visibility", adminHandler.SetLeaderboardVisibility)

					r.Put("/teams/{teamId}", adminHandler.UpdateTeam)
					r.Delete("/teams/{teamId}", adminHandler.DeleteTeam)
					r.Put("/votes/{voteId}", adminHandler.UpdateVote)
					r.Delete("/votes/{voteId}", adminHandler.DeleteVote)

					r.Post("/voting-state/init", adminHandler.InitVotingState)
					r.Put("/voting-state", adminHandler.SetVotingState)
					r.Post("/voting/start", adminHandler.StartVoting)
					r.Post("/voting/end", adminHandler.EndVoting)
					r.Post("/voting/reset", adminHandler.ResetVotingState)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errors.Write(w, errors.NewNotFoundError("Endpoint not found"), middleware.GetRequestID(r.Context()))
	})

	log.Info("Router configured successfully")
	return r
}
