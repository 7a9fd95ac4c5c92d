// Package api exposes the reputation ledger over HTTP.
//
// Routes live under /api/v1. Error responses use the httpx envelope and map
// ledger error codes deterministically: validation and self-vouch to 400,
// unauthorized to 401, not-found to 404, conflict to 409, everything else
// to 500.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agentethos/ethos/internal/config"
	"github.com/agentethos/ethos/internal/engine"
	"github.com/agentethos/ethos/internal/httpx"
)

// Server holds the HTTP surface over the engine.
type Server struct {
	eng *engine.Engine
	cfg config.Config
}

// New creates a server for the given engine and configuration.
func New(eng *engine.Engine, cfg config.Config) *Server {
	return &Server{eng: eng, cfg: cfg}
}

// Handler builds the chi router with all routes and middleware attached.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httpx.RequestLogger)
	r.Use(httpx.CORSMiddleware(s.cfg.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/agents/register", s.handleRegister)
		r.Get("/agents/profile", s.handleProfile)
		r.Get("/vouches", s.handleListVouches)
		r.Get("/leaderboard", s.handleLeaderboard)

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAgent)
			r.Get("/agents/me", s.handleMe)
			r.Post("/vouches", s.handleSubmitVouch)
			r.Post("/vouches/{vouch_id}/flag", s.handleFlagVouch)
		})
	})

	return r
}
