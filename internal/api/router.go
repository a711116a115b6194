package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/api/health", s.handleHealthCheck)

	r.Route("/api/audit", func(r chi.Router) {
		r.Post("/create", s.handleCreateAudit)
		r.Get("/latest", s.handleLatestAudit)
		r.Get("/history", s.handleAuditHistory)
		r.Get("/{jobID}/status", s.handleAuditStatus)
		r.Get("/{jobID}/results", s.handleAuditResults)
		r.Post("/{jobID}/refresh", s.handleRefreshAudit)
	})

	return r
}
