// Package directory manages the people records of the platform: the clients
// who book tutoring sessions and the tutors who give them.
package directory

import "time"

// Client is one person who books sessions.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nombre"`
	Email     string    `json:"email"`
	Phone     string    `json:"telefono"`
	Notes     string    `json:"notas"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tutor is one person who teaches. SpecialtyIDs reference especialidades.
type Tutor struct {
	ID           int64     `json:"id"`
	Name         string    `json:"nombre"`
	Email        string    `json:"email"`
	Phone        string    `json:"telefono"`
	SpecialtyIDs []int64   `json:"especialidades"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Contact is the name/email pair the notifier needs for one recipient.
type Contact struct {
	Name  string
	Email string
}
