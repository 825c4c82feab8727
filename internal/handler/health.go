package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/itemvault/pkg/database"
)

// Pinger checks connectivity of an optional dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness, readiness, and the database ping endpoint
type HealthHandler struct {
	pool   *database.ConnectionPool
	redis  Pinger // nil when Redis is not configured
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(pool *database.ConnectionPool, redis Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthHandler{
		pool:   pool,
		redis:  redis,
		logger: logger,
	}
}

// Health handles GET /health - simple liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DBPing handles GET /db-ping - checks the backing store round trip
func (h *HealthHandler) DBPing(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.pool.Health(ctx); err != nil {
		h.logger.Error("db ping failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]bool{"db": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"db": true})
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Ready handles GET /readyz - 200 only if all configured dependencies are healthy
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	ready := true

	if err := h.pool.Health(ctx); err != nil {
		checks["postgres"] = "error: " + err.Error()
		ready = false
	} else {
		checks["postgres"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			checks["redis"] = "error: " + err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "not configured"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, ReadinessResponse{Status: status, Checks: checks})
}
