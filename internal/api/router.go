package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds the store check behind /api/health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/management/devices", func(r chi.Router) {
			r.Post("/", s.handleCreateDevice)
			r.Delete("/", s.handleDeleteAllDevices)
			r.Delete("/{id}", s.handleDeleteDevice)
		})

		r.Route("/info/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Get("/available", s.handleListAvailableDevices)
			r.Get("/name/{name}", s.handleListDevicesByName)
			r.Get("/{id}", s.handleGetDevice)
		})

		r.Route("/booking", func(r chi.Router) {
			r.Post("/book", s.handleBookDevice)
			r.Post("/return", s.handleReturnDevice)
		})
	})

	return r
}

// handleHealth reports liveness and, when a store is wired, its health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": s.version,
		"remote":  s.resolver.HasRemote(),
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := s.db.HealthCheck(ctx); err != nil {
			s.logger.Warn("health check failed", "error", err)
			resp["status"] = "unhealthy"
			resp["database"] = "unavailable"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp["database"] = "ok"
	}

	writeJSON(w, http.StatusOK, resp)
}
