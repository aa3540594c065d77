package handler

import (
	"net/http"

	"github.com/userdeskio/api/internal/infra/postgres"
	"github.com/userdeskio/api/internal/infra/redis"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db    *postgres.DB
	redis *redis.Client
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *postgres.DB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health reports process liveness.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the backing stores answer.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	status := http.StatusOK

	if err := h.db.HealthCheck(r.Context()); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.redis != nil {
		if err := h.redis.Ping(r.Context()); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, status, map[string]any{
		"status": http.StatusText(status),
		"checks": checks,
	})
}
