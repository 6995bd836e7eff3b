package bookings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tutorwise/tutorwise-platform/internal/scheduling"
	"github.com/tutorwise/tutorwise-platform/pkg/logging"
)

// Handler provides HTTP endpoints for bookings and availability validation.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new bookings HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes returns a chi router with booking admin routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Reschedule)
	r.Patch("/{id}/status", h.SetStatus)
	r.Delete("/{id}", h.Delete)
	return r
}

// ValidateRequest is the availability check request body. The field names
// are shared with the admin frontend.
type ValidateRequest struct {
	TutorID          int64     `json:"tutor_id"`
	FechaHora        time.Time `json:"fecha_hora"`
	ServicioID       int64     `json:"servicio_id"`
	ReservaIDExcluir *int64    `json:"reserva_id_excluir,omitempty"`
}

// ValidateAvailability runs the validator and returns the verdict. Denials
// are 200s; only system failures use the error envelope.
// POST /admin/validate-availability
func (h *Handler) ValidateAvailability(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorEnvelope(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return
	}

	verdict, err := h.service.CheckAvailability(r.Context(), req.TutorID, req.FechaHora, req.ServicioID, req.ReservaIDExcluir)
	if err != nil {
		if errors.Is(err, scheduling.ErrServiceNotFound) {
			writeErrorEnvelope(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		h.logger.Error("availability validation failed", "tutor_id", req.TutorID, "error", err)
		writeErrorEnvelope(w, http.StatusInternalServerError, "VALIDATION_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

// CreateBookingRequest is the booking creation request body.
type CreateBookingRequest struct {
	ClientID  int64     `json:"cliente_id"`
	TutorID   int64     `json:"tutor_id"`
	ServiceID int64     `json:"servicio_id"`
	StartsAt  time.Time `json:"fecha_hora"`
	Status    Status    `json:"estado,omitempty"`
	Notes     string    `json:"notas,omitempty"`
}

// Create validates and inserts a booking. A deny returns 409 with the
// verdict body.
// POST /admin/bookings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.Status != "" && !req.Status.Valid() {
		http.Error(w, `{"error": "invalid estado"}`, http.StatusBadRequest)
		return
	}

	b := Booking{
		ClientID:  req.ClientID,
		TutorID:   req.TutorID,
		ServiceID: req.ServiceID,
		StartsAt:  req.StartsAt,
		Status:    req.Status,
		Notes:     req.Notes,
	}
	if err := h.service.Create(r.Context(), &b); err != nil {
		h.writeServiceError(w, "create booking", err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// Get returns one booking.
// GET /admin/bookings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "get booking", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Reschedule moves a booking, excluding it from its own conflict check.
// PUT /admin/bookings/{id}
func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	existing, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "load booking", err)
		return
	}

	req := CreateBookingRequest{
		ClientID:  existing.ClientID,
		TutorID:   existing.TutorID,
		ServiceID: existing.ServiceID,
		StartsAt:  existing.StartsAt,
		Notes:     existing.Notes,
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	b := *existing
	b.ClientID = req.ClientID
	b.TutorID = req.TutorID
	b.ServiceID = req.ServiceID
	b.StartsAt = req.StartsAt
	b.Notes = req.Notes

	if err := h.service.Reschedule(r.Context(), &b); err != nil {
		h.writeServiceError(w, "reschedule booking", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// SetStatusRequest is the status transition request body.
type SetStatusRequest struct {
	Status Status `json:"estado"`
}

// SetStatus transitions a booking's lifecycle state.
// PATCH /admin/bookings/{id}/status
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if !req.Status.Valid() {
		http.Error(w, `{"error": "invalid estado"}`, http.StatusBadRequest)
		return
	}

	b, err := h.service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeServiceError(w, "set booking status", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Delete removes a booking permanently.
// DELETE /admin/bookings/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, "delete booking", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Calendar returns all bookings in a date range with display names.
// GET /admin/calendar?start=2025-03-03&end=2025-03-10
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateParam(r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, `{"error": "invalid start parameter"}`, http.StatusBadRequest)
		return
	}
	to, err := parseDateParam(r.URL.Query().Get("end"))
	if err != nil {
		http.Error(w, `{"error": "invalid end parameter"}`, http.StatusBadRequest)
		return
	}
	if !to.After(from) {
		http.Error(w, `{"error": "end must be after start"}`, http.StatusBadRequest)
		return
	}

	entries, err := h.service.Calendar(r.Context(), from, to)
	if err != nil {
		h.writeServiceError(w, "calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, action string, err error) {
	var denied *ErrDenied
	switch {
	case errors.As(err, &denied):
		writeJSON(w, http.StatusConflict, denied.Verdict)
	case errors.Is(err, ErrNotFound):
		http.Error(w, `{"error": "booking not found"}`, http.StatusNotFound)
	case errors.Is(err, scheduling.ErrServiceNotFound):
		http.Error(w, `{"error": "service not found"}`, http.StatusBadRequest)
	default:
		h.logger.Error("bookings service error", "action", action, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
	}
}

// parseDateParam accepts either a bare date or an RFC3339 timestamp.
func parseDateParam(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, `{"error": "invalid booking id"}`, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

type errorEnvelope struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	} `json:"error"`
}

func writeErrorEnvelope(w http.ResponseWriter, status int, code, message string) {
	var env errorEnvelope
	env.Error.Code = code
	env.Error.Message = message
	env.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)
	writeJSON(w, status, env)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
