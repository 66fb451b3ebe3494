package api

import (
	"context"
	"net/http"
	"time"

	"github.com/shelfline/shelfline-server/internal/http/response"
)

// HealthStatus contains health check data in API responses.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// handleHealthCheck reports overall server health, including a database ping.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := HealthStatus{Status: "healthy", Database: "healthy"}
	status := http.StatusOK

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("Health check: database ping failed", "error", err)
		health.Status = "unhealthy"
		health.Database = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	response.JSON(w, status, health, s.logger)
}
