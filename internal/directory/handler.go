package directory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tutorwise/tutorwise-platform/pkg/logging"
)

// Handler provides HTTP endpoints for clients and tutors.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a new directory HTTP handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ClientRoutes returns a chi router with client admin routes.
func (h *Handler) ClientRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListClients)
	r.Post("/", h.CreateClient)
	r.Get("/{id}", h.GetClient)
	r.Put("/{id}", h.UpdateClient)
	r.Delete("/{id}", h.DeleteClient)
	return r
}

// TutorRoutes returns a chi router with tutor admin routes.
func (h *Handler) TutorRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListTutors)
	r.Post("/", h.CreateTutor)
	r.Get("/{id}", h.GetTutor)
	r.Put("/{id}", h.UpdateTutor)
	r.Delete("/{id}", h.DeleteTutor)
	return r
}

// ListClients returns all clients.
// GET /admin/clients
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.repo.ListClients(r.Context())
	if err != nil {
		h.logger.Error("failed to list clients", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

// GetClient returns one client.
// GET /admin/clients/{id}
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.repo.GetClient(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, "get client", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateClient adds a client.
// POST /admin/clients
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var c Client
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if err := h.repo.CreateClient(r.Context(), &c); err != nil {
		h.writeRepoError(w, "create client", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateClient rewrites a client.
// PUT /admin/clients/{id}
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	existing, err := h.repo.GetClient(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, "load client", err)
		return
	}

	c := *existing
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	c.ID = id

	if err := h.repo.UpdateClient(r.Context(), &c); err != nil {
		h.writeRepoError(w, "update client", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteClient removes a client.
// DELETE /admin/clients/{id}
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeleteClient(r.Context(), id); err != nil {
		h.writeRepoError(w, "delete client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTutors returns all tutors.
// GET /admin/tutors
func (h *Handler) ListTutors(w http.ResponseWriter, r *http.Request) {
	tutors, err := h.repo.ListTutors(r.Context())
	if err != nil {
		h.logger.Error("failed to list tutors", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tutors)
}

// GetTutor returns one tutor.
// GET /admin/tutors/{id}
func (h *Handler) GetTutor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := h.repo.GetTutor(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, "get tutor", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTutor adds a tutor.
// POST /admin/tutors
func (h *Handler) CreateTutor(w http.ResponseWriter, r *http.Request) {
	var t Tutor
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if err := h.repo.CreateTutor(r.Context(), &t); err != nil {
		h.writeRepoError(w, "create tutor", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTutor rewrites a tutor.
// PUT /admin/tutors/{id}
func (h *Handler) UpdateTutor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	existing, err := h.repo.GetTutor(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, "load tutor", err)
		return
	}

	t := *existing
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	t.ID = id

	if err := h.repo.UpdateTutor(r.Context(), &t); err != nil {
		h.writeRepoError(w, "update tutor", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTutor removes a tutor.
// DELETE /admin/tutors/{id}
func (h *Handler) DeleteTutor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeleteTutor(r.Context(), id); err != nil {
		h.writeRepoError(w, "delete tutor", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeRepoError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, `{"error": "not found"}`, http.StatusNotFound)
	case errors.Is(err, ErrInvalid):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("directory repository error", "action", action, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, `{"error": "invalid id"}`, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
