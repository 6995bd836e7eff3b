// Package availability manages the weekly availability templates tutors
// publish. Each window is a recurring weekday block; bookings are validated
// against the active windows only.
package availability

import "time"

// Window is one recurring weekly availability block for a tutor.
// Weekday follows the 0=Sunday convention, matching time.Weekday.
type Window struct {
	ID        int64     `json:"id"`
	TutorID   int64     `json:"tutor_id"`
	Weekday   int       `json:"dia_semana"`
	Start     string    `json:"hora_inicio"`
	End       string    `json:"hora_fin"`
	Active    bool      `json:"activo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
