package availability

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tutorwise/tutorwise-platform/pkg/logging"
)

// Handler provides HTTP endpoints for managing availability windows.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a new availability HTTP handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes returns a chi router with availability admin routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/toggle", h.Toggle)
	r.Delete("/{id}", h.Delete)
	return r
}

// List returns all windows for one tutor.
// GET /admin/availability?tutor_id=N
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tutorID, err := strconv.ParseInt(r.URL.Query().Get("tutor_id"), 10, 64)
	if err != nil || tutorID <= 0 {
		http.Error(w, `{"error": "tutor_id query parameter required"}`, http.StatusBadRequest)
		return
	}

	windows, err := h.repo.ListForTutor(r.Context(), tutorID)
	if err != nil {
		h.logger.Error("failed to list availability", "tutor_id", tutorID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, windows)
}

// Get returns one window.
// GET /admin/availability/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := windowID(w, r)
	if !ok {
		return
	}
	win, err := h.repo.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, `{"error": "window not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to get availability window", "id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, win)
}

// CreateWindowRequest is the request body for creating a window. Active is a
// pointer so a missing "activo" field defaults to true rather than false.
type CreateWindowRequest struct {
	TutorID int64  `json:"tutor_id"`
	Weekday int    `json:"dia_semana"`
	Start   string `json:"hora_inicio"`
	End     string `json:"hora_fin"`
	Active  *bool  `json:"activo"`
}

// Create adds a new window.
// POST /admin/availability
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	win := Window{
		TutorID: req.TutorID,
		Weekday: req.Weekday,
		Start:   req.Start,
		End:     req.End,
		Active:  true,
	}
	if req.Active != nil {
		win.Active = *req.Active
	}

	if err := h.repo.Create(r.Context(), &win); err != nil {
		h.writeRepoError(w, "create availability window", err)
		return
	}
	writeJSON(w, http.StatusCreated, win)
}

// Update rewrites a window.
// PUT /admin/availability/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := windowID(w, r)
	if !ok {
		return
	}
	existing, err := h.repo.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, `{"error": "window not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load availability window", "id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	win := *existing
	if err := json.NewDecoder(r.Body).Decode(&win); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	win.ID = id
	win.TutorID = existing.TutorID

	if err := h.repo.Update(r.Context(), &win); err != nil {
		h.writeRepoError(w, "update availability window", err)
		return
	}
	writeJSON(w, http.StatusOK, win)
}

// Toggle flips a window's active flag.
// POST /admin/availability/{id}/toggle
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := windowID(w, r)
	if !ok {
		return
	}
	win, err := h.repo.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, `{"error": "window not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load availability window", "id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	if err := h.repo.SetActive(r.Context(), id, !win.Active); err != nil {
		h.writeRepoError(w, "toggle availability window", err)
		return
	}
	win.Active = !win.Active
	writeJSON(w, http.StatusOK, win)
}

// Delete removes a window.
// DELETE /admin/availability/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := windowID(w, r)
	if !ok {
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeRepoError(w, "delete availability window", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeRepoError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, `{"error": "window not found"}`, http.StatusNotFound)
	case errors.Is(err, ErrWindowOverlap):
		http.Error(w, `{"error": "window overlaps an existing active window"}`, http.StatusConflict)
	case errors.Is(err, ErrInvalidWindow):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("availability repository error", "action", action, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
	}
}

func windowID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, `{"error": "invalid window id"}`, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
