package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrServiceNotFound is returned by ServiceCatalog implementations when the
// referenced service does not exist. The validator surfaces it as a system
// error rather than a denial: a dangling service id is a data-integrity
// problem, not a scheduling conflict.
var ErrServiceNotFound = errors.New("scheduling: service not found")

// ServiceInfo is the slice of the service catalog the validator needs.
type ServiceInfo struct {
	ID              int64
	Name            string
	DurationMinutes int
}

// Window is one recurring weekly availability block, as local clock values.
type Window struct {
	ID    int64
	Start string // "HH:MM:SS"
	End   string // "HH:MM:SS"
}

// BookedSlot is a committed, non-cancelled booking with its end time already
// resolved from the service duration.
type BookedSlot struct {
	ID          int64
	StartsAt    time.Time
	EndsAt      time.Time
	ServiceName string
	Status      string
}

// ServiceCatalog resolves service durations.
type ServiceCatalog interface {
	GetService(ctx context.Context, id int64) (*ServiceInfo, error)
}

// WindowSource lists a tutor's active availability windows for one weekday.
type WindowSource interface {
	ActiveWindows(ctx context.Context, tutorID int64, day time.Weekday) ([]Window, error)
}

// BookingSource lists a tutor's non-cancelled bookings whose start falls in
// [from, to), with end times resolved from each booking's own service.
type BookingSource interface {
	ListForTutorBetween(ctx context.Context, tutorID int64, from, to time.Time) ([]BookedSlot, error)
}

// Validator is the pure booking-availability decision function. It has no
// side effects and is safe for concurrent use; the bookings table's
// exclusion constraint remains the final authority under races.
type Validator struct {
	catalog  ServiceCatalog
	windows  WindowSource
	bookings BookingSource
}

// NewValidator wires the validator to its three read-only stores.
func NewValidator(catalog ServiceCatalog, windows WindowSource, bookings BookingSource) *Validator {
	return &Validator{catalog: catalog, windows: windows, bookings: bookings}
}

// Validate decides whether a booking for tutorID starting at start with the
// given service may be placed. excludeBookingID skips one booking during
// conflict checks so an edited booking does not collide with itself.
// A denial is a normal verdict, never an error; errors indicate bad input,
// unresolved references or store failures.
func (v *Validator) Validate(ctx context.Context, tutorID int64, start time.Time, serviceID int64, excludeBookingID *int64) (*Verdict, error) {
	if tutorID <= 0 {
		return nil, fmt.Errorf("scheduling: tutor id is required")
	}
	if serviceID <= 0 {
		return nil, fmt.Errorf("scheduling: service id is required")
	}
	if start.IsZero() {
		return nil, fmt.Errorf("scheduling: start time is required")
	}

	svc, err := v.catalog.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			return nil, fmt.Errorf("scheduling: service %d: %w", serviceID, err)
		}
		return nil, fmt.Errorf("scheduling: servicios store: %w", err)
	}

	duration := time.Duration(svc.DurationMinutes) * time.Minute
	end := start.Add(duration)
	day := start.Weekday()

	windows, err := v.windows.ActiveWindows(ctx, tutorID, day)
	if err != nil {
		return nil, fmt.Errorf("scheduling: disponibilidades store: %w", err)
	}
	if len(windows) == 0 {
		return &Verdict{
			Available: false,
			Reason:    ReasonNoAvailability,
			Message:   fmt.Sprintf("El tutor no tiene disponibilidad configurada para %s", DayName(day)),
			Details: map[string]any{
				"dia_semana":      int(day),
				"hora_solicitada": formatClock(secondsOfDay(start)),
			},
		}, nil
	}

	// Containment, not overlap: the booking must fit inside one single
	// window. Straddling two adjacent windows is rejected even when they
	// are contiguous.
	startSec := secondsOfDay(start)
	endSec := startSec + svc.DurationMinutes*60
	matched, err := findContainingWindow(windows, startSec, endSec)
	if err != nil {
		return nil, err
	}
	if matched == nil {
		ranges := make([]string, 0, len(windows))
		for _, w := range windows {
			ranges = append(ranges, fmt.Sprintf("%s-%s", w.Start, w.End))
		}
		requested := fmt.Sprintf("%s-%s", formatClock(startSec), formatClock(endSec))
		return &Verdict{
			Available: false,
			Reason:    ReasonOutsideWindow,
			Message:   fmt.Sprintf("El horario solicitado (%s) no está dentro de la disponibilidad del tutor", requested),
			Details: map[string]any{
				"horarios_disponibles": strings.Join(ranges, ", "),
				"hora_solicitada":      requested,
				"duracion_servicio":    fmt.Sprintf("%d minutos", svc.DurationMinutes),
			},
		}, nil
	}

	// Single conflict pass over a date-bounded fetch: one day of slack on
	// each side covers any booking whose interval can reach the candidate.
	slots, err := v.bookings.ListForTutorBetween(ctx, tutorID, start.Add(-24*time.Hour), end.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("scheduling: reservas store: %w", err)
	}
	slots = withoutBooking(slots, excludeBookingID)
	candidate := Interval{Start: start, End: end}

	// A conflict whose start lies inside the candidate interval reports
	// CONFLICTO_RESERVA; any other overlap reports SOLAPAMIENTO_PARCIAL.
	// The direct-conflict check runs over all slots first so reporting
	// matches the historical two-scan behavior exactly.
	for _, s := range slots {
		if !s.StartsAt.Before(start) && s.StartsAt.Before(end) {
			return &Verdict{
				Available: false,
				Reason:    ReasonBookingConflict,
				Message:   "El tutor ya tiene una reserva en este horario",
				Details: map[string]any{
					"reserva_conflicto": map[string]any{
						"id":         s.ID,
						"fecha_hora": s.StartsAt.Format(time.RFC3339),
						"estado":     s.Status,
					},
				},
			}, nil
		}
	}
	for _, s := range slots {
		if candidate.Overlaps(Interval{Start: s.StartsAt, End: s.EndsAt}) {
			return &Verdict{
				Available: false,
				Reason:    ReasonPartialOverlap,
				Message:   "El horario solicitado se solapa con otra reserva existente",
				Details: map[string]any{
					"reserva_existente": map[string]any{
						"inicio":   s.StartsAt.Format(time.RFC3339),
						"fin":      s.EndsAt.Format(time.RFC3339),
						"servicio": s.ServiceName,
					},
					"reserva_solicitada": map[string]any{
						"inicio":   start.Format(time.RFC3339),
						"fin":      end.Format(time.RFC3339),
						"servicio": svc.Name,
					},
				},
			}, nil
		}
	}

	return &Verdict{
		Available: true,
		Reason:    ReasonAvailable,
		Message:   "El horario está disponible para la reserva",
		Details: map[string]any{
			"tutor_id":         tutorID,
			"fecha_hora":       start.Format(time.RFC3339),
			"servicio":         svc.Name,
			"duracion_minutos": svc.DurationMinutes,
			"dia_semana":       DayName(day),
			"bloque_disponibilidad": map[string]any{
				"inicio": matched.Start,
				"fin":    matched.End,
			},
		},
	}, nil
}

func findContainingWindow(windows []Window, startSec, endSec int) (*Window, error) {
	for i := range windows {
		w := windows[i]
		ws, err := parseClock(w.Start)
		if err != nil {
			return nil, fmt.Errorf("scheduling: window %d: %w", w.ID, err)
		}
		we, err := parseClock(w.End)
		if err != nil {
			return nil, fmt.Errorf("scheduling: window %d: %w", w.ID, err)
		}
		if startSec >= ws && endSec <= we {
			return &w, nil
		}
	}
	return nil, nil
}

func withoutBooking(slots []BookedSlot, exclude *int64) []BookedSlot {
	if exclude == nil {
		return slots
	}
	out := slots[:0]
	for _, s := range slots {
		if s.ID != *exclude {
			out = append(out, s)
		}
	}
	return out
}
