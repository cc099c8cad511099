package server

import (
	"encoding/json"
	"net/http"
	"time"
)

type indexResponse struct {
	App         string `json:"app"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	cfg := s.config()
	s.logger.Info("Request to /", "request_id", RequestIDFromContext(r.Context()))
	writeJSON(w, http.StatusOK, indexResponse{
		App:         cfg.App.Name,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	rate := s.config().Readiness.FailureRate

	healthy := s.probe.Healthy(rate)
	s.metrics.RecordReadinessCheck(healthy)

	if !healthy {
		s.logger.Warn("Readiness check failed", "request_id", RequestIDFromContext(r.Context()))
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ready"})
}

func (s *Server) handleChaos(w http.ResponseWriter, r *http.Request) {
	if s.config().Chaos.Enabled {
		s.metrics.RecordChaosTrigger()
		s.logger.Error("Chaos mode triggered, crashing", "request_id", RequestIDFromContext(r.Context()))
		panic("simulated failure")
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Chaos mode disabled"})
}

func (s *Server) handleSlow(w http.ResponseWriter, r *http.Request) {
	delay := s.config().Slow.Delay

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		writeJSON(w, http.StatusOK, messageResponse{Message: "Slow response simulated"})
	case <-r.Context().Done():
		// Client went away; nothing useful to write.
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
