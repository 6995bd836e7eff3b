package reminder

import (
	"encoding/json"
	"net/http"

	"github.com/tutorwise/tutorwise-platform/pkg/logging"
)

// Handler exposes the sweep as an admin endpoint so ops can rerun it.
type Handler struct {
	sweeper *Sweeper
	logger  *logging.Logger
}

// NewHandler creates a reminder HTTP handler.
func NewHandler(sweeper *Sweeper, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{sweeper: sweeper, logger: logger}
}

// Run triggers one sweep and returns its report. The processed guard makes
// reruns safe.
// POST /admin/reminders/run
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	report, err := h.sweeper.Run(r.Context())
	if err != nil {
		h.logger.Error("manual reminder sweep failed", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}
