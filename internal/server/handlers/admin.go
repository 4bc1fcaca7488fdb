// internal/server/handlers/admin.go

package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"neighborly/internal/server/respond"
	"neighborly/internal/service/sweep"
)

// Sweeper runs the expiry sweep
type Sweeper interface {
	SweepExpired(ctx context.Context) (sweep.Result, error)
	GetStats() sweep.Stats
}

// AdminHandler handles operator endpoints
type AdminHandler struct {
	sweeper Sweeper
	logger  *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(sweeper Sweeper, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{sweeper: sweeper, logger: logger.Named("admin_handler")}
}

// Sweep expires due notices and advertisements now
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	res, err := h.sweeper.SweepExpired(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, res)
}

// SweepStats returns the sweeper's run counters
func (h *AdminHandler) SweepStats(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, h.sweeper.GetStats())
}
