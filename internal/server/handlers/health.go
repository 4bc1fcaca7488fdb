// internal/server/handlers/health.go

package handlers

import (
	"context"
	"net/http"
	"time"

	"neighborly/internal/server/respond"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnStatus is satisfied by *nats.Conn
type ConnStatus interface {
	IsConnected() bool
}

// HealthHandler reports dependency status
type HealthHandler struct {
	db      Pinger
	nats    ConnStatus
	version string
}

// NewHealthHandler creates a new health handler. nats may be nil.
func NewHealthHandler(db Pinger, nats ConnStatus, version string) *HealthHandler {
	return &HealthHandler{db: db, nats: nats, version: version}
}

// Health answers 200 when the database responds and 503 otherwise. A lost
// NATS connection is reported but does not fail the check, since events are
// best effort.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{
		"status":   "ok",
		"version":  h.version,
		"database": "up",
		"nats":     "disconnected",
	}

	if err := h.db.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = "down"
	}
	if h.nats != nil && h.nats.IsConnected() {
		body["nats"] = "connected"
	}

	respond.JSON(w, status, body)
}
