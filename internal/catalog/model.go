// Package catalog manages the tutoring service catalog and its specialty
// taxonomy. Service durations feed the booking validator.
package catalog

import "time"

// Durations are minutes; every service must fit the platform's slot policy.
const (
	MinDurationMinutes = 30
	MaxDurationMinutes = 120
)

// Service is one bookable tutoring offering.
type Service struct {
	ID              int64     `json:"id"`
	Name            string    `json:"nombre"`
	Description     string    `json:"descripcion"`
	DurationMinutes int       `json:"duracion_minutos"`
	SpecialtyID     *int64    `json:"especialidad_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Specialty is one subject area tutors can teach.
type Specialty struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nombre"`
	CreatedAt time.Time `json:"created_at"`
}
