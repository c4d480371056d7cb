// Package server provides the HTTP server setup and wiring.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	adminDomain "github.com/debayudh07/connectx/internal/admin/domain"
	adminTransport "github.com/debayudh07/connectx/internal/admin/transport"
	"github.com/debayudh07/connectx/internal/auth"
	bountyDomain "github.com/debayudh07/connectx/internal/bounty/domain"
	bountyTransport "github.com/debayudh07/connectx/internal/bounty/transport"
	"github.com/debayudh07/connectx/internal/collab"
	"github.com/debayudh07/connectx/internal/config"
	"github.com/debayudh07/connectx/internal/middleware/logging"
	"github.com/debayudh07/connectx/internal/middleware/ratelimit"
	"github.com/debayudh07/connectx/internal/middleware/realip"
	"github.com/debayudh07/connectx/internal/observability/metrics"
	"github.com/debayudh07/connectx/internal/storage"
)

// Server is the HTTP server
type Server struct {
	cfg    *config.Config
	store  storage.Store
	logger *slog.Logger
	router *chi.Mux

	// Services typed via transport interfaces
	bountySvc bountyTransport.Service
	adminSvc  adminTransport.Service
}

// New creates a new server. Collaborator endpoints are seeded from the
// environment and can be rewired at runtime through the admin API.
func New(cfg *config.Config, store storage.Store, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  store,
		logger: logger,
		router: chi.NewRouter(),
	}

	registry := collab.NewRegistry()
	registry.SetEndpoints(collab.Endpoints{
		Reputation: cfg.Collaborators.ReputationURL,
		BadgeMint:  cfg.Collaborators.BadgeMintURL,
		Verifier:   cfg.Collaborators.VerifierURL,
	})

	s.bountySvc = bountyDomain.LoggingMiddleware(logger)(bountyDomain.NewService(store, registry))
	s.adminSvc = adminDomain.LoggingMiddleware(logger)(adminDomain.NewService(store, registry))

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// MetricsHandler returns the metrics HTTP handler for a separate metrics server
func (s *Server) MetricsHandler() http.Handler {
	return metrics.Handler()
}

func (s *Server) setupMiddleware() {
	// Real IP resolution runs first so rate limiting and logging see
	// the actual client.
	s.router.Use(realip.NewResolver(realip.Config{
		TrustProxy:     s.cfg.Proxy.TrustProxy,
		TrustedProxies: s.cfg.Proxy.TrustedProxies,
	}).Middleware)

	s.router.Use(maxBodySize(int64(s.cfg.Security.MaxBodySizeMB) * 1024 * 1024))

	s.router.Use(ratelimit.Middleware(ratelimit.Config{
		Enabled:        s.cfg.RateLimit.Enabled,
		RequestsPerMin: s.cfg.RateLimit.RequestsPerMin,
		BurstSize:      s.cfg.RateLimit.BurstSize,
		CleanupMinutes: s.cfg.RateLimit.CleanupMinutes,
	}))

	s.router.Use(middleware.RequestID)
	s.router.Use(logging.Middleware(s.logger))
	s.router.Use(metrics.Middleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-API-Key")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
}

func (s *Server) setupRoutes() {
	// Health checks
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/readyz", s.handleHealth)

	bountyHandler := bountyTransport.NewHandler(s.bountySvc)
	adminHandler := adminTransport.NewHandler(s.adminSvc)

	requireAuth := func(r chi.Router) {
		r.Use(auth.Middleware(s.store, writeError))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		// Read operations - no auth required
		bountyHandler.RegisterReadRoutes(r)
		adminHandler.RegisterReadRoutes(r)

		// Write operations - auth required
		r.Group(func(r chi.Router) {
			requireAuth(r)
			bountyHandler.RegisterWriteRoutes(r)
		})

		// Admin surface - auth required, role checks happen in the domain
		r.Route("/admin", func(r chi.Router) {
			requireAuth(r)
			adminHandler.RegisterAdminRoutes(r)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// maxBodySize limits request body size
func maxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
