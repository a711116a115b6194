package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nmang004/rival-outranker-sub013/internal/domain"
)

func (s *Server) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	var req domain.AuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid URL: "+req.URL)
		return
	}

	jobID, err := s.manager.Create(req.URL, req.Options)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusAccepted, domain.JobStatusResponse{
		JobID:  jobID,
		Status: domain.JobPending,
	})
}

func (s *Server) handleAuditStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	status, err := s.manager.GetStatus(jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			s.respondWithError(w, http.StatusNotFound, "Audit job not found")
			return
		}
		s.logger.Error("failed to get job status", zap.String("job_id", jobID), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve status")
		return
	}

	s.respondWithJSON(w, http.StatusOK, status)
}

func (s *Server) handleAuditResults(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := s.manager.GetResult(jobID)
	switch {
	case errors.Is(err, domain.ErrJobNotFound):
		s.respondWithError(w, http.StatusNotFound, "Audit job not found")
		return
	case errors.Is(err, domain.ErrJobNotReady):
		s.respondWithError(w, http.StatusTooEarly, "Audit still running")
		return
	case err != nil:
		s.logger.Error("failed to get job result", zap.String("job_id", jobID), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve results")
		return
	}

	s.respondWithJSON(w, http.StatusOK, domain.AuditResultResponse{
		JobID:      job.ID,
		URL:        job.URL,
		Status:     job.Status,
		PageCount:  job.PageCount,
		Categories: job.Categories,
		Summary:    job.Summary,
	})
}

func (s *Server) handleRefreshAudit(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	// The body is optional; it may override the crawl target.
	var req domain.AuditRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	newID, err := s.manager.Refresh(jobID, req.URL)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			s.respondWithError(w, http.StatusNotFound, "Audit job not found")
			return
		}
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusAccepted, domain.JobStatusResponse{
		JobID:  newID,
		Status: domain.JobPending,
	})
}

func (s *Server) handleLatestAudit(w http.ResponseWriter, r *http.Request) {
	siteURL := r.URL.Query().Get("url")
	if siteURL == "" {
		s.respondWithError(w, http.StatusBadRequest, "URL query parameter is required")
		return
	}
	if s.redisStore == nil {
		s.respondWithError(w, http.StatusServiceUnavailable, "Latest-audit index not configured")
		return
	}

	jobID, err := s.redisStore.GetLatestJobID(r.Context(), siteURL)
	if err != nil {
		s.logger.Error("failed to query latest audit", zap.String("url", siteURL), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not query latest audit")
		return
	}
	if jobID == "" {
		s.respondWithError(w, http.StatusNotFound, "No completed audit for this site")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{"job_id": jobID, "url": siteURL})
}

func (s *Server) handleAuditHistory(w http.ResponseWriter, r *http.Request) {
	siteURL := r.URL.Query().Get("url")
	if siteURL == "" {
		s.respondWithError(w, http.StatusBadRequest, "URL query parameter is required")
		return
	}
	if s.pgStore == nil {
		s.respondWithError(w, http.StatusServiceUnavailable, "Audit archive not configured")
		return
	}

	records, err := s.pgStore.GetAuditHistory(r.Context(), siteURL, 10)
	if err != nil {
		s.logger.Error("failed to query audit history", zap.String("url", siteURL), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not query audit history")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]any{"url": siteURL, "audits": records})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)
	healthy := true

	if s.pgStore != nil {
		if err := s.pgStore.Ping(ctx); err != nil {
			healthStatus["postgres"] = "unhealthy"
			healthy = false
			s.logger.Error("health check failed for postgres", zap.Error(err))
		} else {
			healthStatus["postgres"] = "healthy"
		}
	} else {
		healthStatus["postgres"] = "disabled"
	}

	if s.redisStore != nil {
		if err := s.redisStore.Ping(ctx); err != nil {
			healthStatus["redis"] = "unhealthy"
			healthy = false
			s.logger.Error("health check failed for redis", zap.Error(err))
		} else {
			healthStatus["redis"] = "healthy"
		}
	} else {
		healthStatus["redis"] = "disabled"
	}

	if !healthy {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
