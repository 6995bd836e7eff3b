package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tutorwise/tutorwise-platform/pkg/logging"
)

// Handler provides HTTP endpoints for the service catalog.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a new catalog HTTP handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ServiceRoutes returns a chi router with service admin routes.
func (h *Handler) ServiceRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListServices)
	r.Post("/", h.CreateService)
	r.Get("/{id}", h.GetService)
	r.Put("/{id}", h.UpdateService)
	r.Delete("/{id}", h.DeleteService)
	return r
}

// SpecialtyRoutes returns a chi router with specialty admin routes.
func (h *Handler) SpecialtyRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListSpecialties)
	r.Post("/", h.CreateSpecialty)
	r.Delete("/{id}", h.DeleteSpecialty)
	return r
}

// ListServices returns the full catalog.
// GET /admin/services
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.repo.ListServices(r.Context())
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, services)
}

// GetService returns one service.
// GET /admin/services/{id}
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	svc, err := h.repo.GetServiceByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, "get service", err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// CreateService adds a service to the catalog.
// POST /admin/services
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var svc Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if err := h.repo.CreateService(r.Context(), &svc); err != nil {
		h.writeRepoError(w, "create service", err)
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}

// UpdateService rewrites a service.
// PUT /admin/services/{id}
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	existing, err := h.repo.GetServiceByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, "load service", err)
		return
	}

	svc := *existing
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	svc.ID = id

	if err := h.repo.UpdateService(r.Context(), &svc); err != nil {
		h.writeRepoError(w, "update service", err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// DeleteService removes a service.
// DELETE /admin/services/{id}
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeleteService(r.Context(), id); err != nil {
		h.writeRepoError(w, "delete service", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSpecialties returns the specialty taxonomy.
// GET /admin/specialties
func (h *Handler) ListSpecialties(w http.ResponseWriter, r *http.Request) {
	specialties, err := h.repo.ListSpecialties(r.Context())
	if err != nil {
		h.logger.Error("failed to list specialties", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, specialties)
}

// CreateSpecialty adds a specialty.
// POST /admin/specialties
func (h *Handler) CreateSpecialty(w http.ResponseWriter, r *http.Request) {
	var sp Specialty
	if err := json.NewDecoder(r.Body).Decode(&sp); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if err := h.repo.CreateSpecialty(r.Context(), &sp); err != nil {
		h.writeRepoError(w, "create specialty", err)
		return
	}
	writeJSON(w, http.StatusCreated, sp)
}

// DeleteSpecialty removes a specialty.
// DELETE /admin/specialties/{id}
func (h *Handler) DeleteSpecialty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeleteSpecialty(r.Context(), id); err != nil {
		h.writeRepoError(w, "delete specialty", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeRepoError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, `{"error": "not found"}`, http.StatusNotFound)
	case errors.Is(err, ErrInvalidService):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("catalog repository error", "action", action, "error", err)
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
