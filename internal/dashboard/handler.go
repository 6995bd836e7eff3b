package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/tutorwise/tutorwise-platform/pkg/logging"
)

// Handler serves the dashboard home counters.
type Handler struct {
	repo   *StatsRepository
	logger *logging.Logger
}

// NewHandler creates a dashboard HTTP handler.
func NewHandler(repo *StatsRepository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// GetStats returns the dashboard counters.
// GET /admin/dashboard
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.GetStats(r.Context())
	if err != nil {
		h.logger.Error("failed to load dashboard stats", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		h.logger.Error("failed to encode dashboard stats", "error", err)
	}
}
