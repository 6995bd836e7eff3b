// Package scheduling decides whether a candidate booking fits a tutor's
// weekly availability template and does not collide with committed bookings.
package scheduling

import "time"

// ReasonCode is the machine-readable outcome of a validation. The wire
// values are shared with the admin frontend and must not change.
type ReasonCode string

const (
	ReasonAvailable       ReasonCode = "DISPONIBLE"
	ReasonNoAvailability  ReasonCode = "NO_DISPONIBILIDAD_CONFIGURADA"
	ReasonOutsideWindow   ReasonCode = "FUERA_DE_HORARIO"
	ReasonBookingConflict ReasonCode = "CONFLICTO_RESERVA"
	ReasonPartialOverlap  ReasonCode = "SOLAPAMIENTO_PARCIAL"
)

// Verdict is the validator's admit/deny decision. It is a value object,
// never persisted.
type Verdict struct {
	Available bool           `json:"disponible"`
	Reason    ReasonCode     `json:"motivo"`
	Message   string         `json:"mensaje"`
	Details   map[string]any `json:"detalles,omitempty"`
}

var dayNames = [7]string{
	"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado",
}

// DayName returns the Spanish weekday name used in verdict messages.
// time.Weekday numbering starts at Sunday, matching the 0=Sunday convention
// of the disponibilidades table.
func DayName(d time.Weekday) string {
	return dayNames[int(d)%7]
}
