// Package bookings owns the reservation lifecycle: validated creation and
// rescheduling, status transitions, and the calendar read paths.
package bookings

import "time"

// Status is a booking lifecycle state. The wire values are shared with the
// admin frontend and the database CHECK constraint.
type Status string

const (
	StatusPending   Status = "Pendiente"
	StatusConfirmed Status = "Confirmada"
	StatusCompleted Status = "Completada"
	StatusCancelled Status = "Cancelada"
)

// Valid reports whether s is one of the four lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Booking is one reserved tutoring session. EndsAt is denormalized from the
// service duration at write time so overlap queries never join servicios.
type Booking struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"cliente_id"`
	TutorID   int64     `json:"tutor_id"`
	ServiceID int64     `json:"servicio_id"`
	StartsAt  time.Time `json:"fecha_hora"`
	EndsAt    time.Time `json:"fecha_fin"`
	Status    Status    `json:"estado"`
	Notes     string    `json:"notas"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CalendarEntry is a booking joined with the names the calendar view shows.
type CalendarEntry struct {
	Booking
	ClientName  string `json:"cliente_nombre"`
	TutorName   string `json:"tutor_nombre"`
	ServiceName string `json:"servicio_nombre"`
}
