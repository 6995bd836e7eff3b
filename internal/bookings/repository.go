package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tutorwise/tutorwise-platform/internal/notify"
	"github.com/tutorwise/tutorwise-platform/internal/scheduling"
)

// ErrNotFound is returned when a booking id does not exist.
var ErrNotFound = errors.New("bookings: booking not found")

// ErrSlotTaken is returned when the reservas exclusion constraint rejects a
// write. It means another booking won the slot after validation passed.
var ErrSlotTaken = errors.New("bookings: slot already taken")

// exclusionViolation is the Postgres error code raised by EXCLUDE
// constraints.
const exclusionViolation = "23P01"

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence for reservas.
type Repository struct {
	db DB
}

// NewRepository creates a new bookings repository.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("bookings: db required")
	}
	return &Repository{db: db}
}

const bookingColumns = `id, cliente_id, tutor_id, servicio_id, fecha_hora, fecha_fin, estado, notas, created_at, updated_at`

// Create inserts a booking. endsAt comes from the service duration the
// caller already resolved during validation.
func (r *Repository) Create(ctx context.Context, b *Booking, endsAt time.Time) error {
	if b.Status == "" {
		b.Status = StatusPending
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO reservas (cliente_id, tutor_id, servicio_id, fecha_hora, fecha_fin, estado, notas)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		b.ClientID, b.TutorID, b.ServiceID, b.StartsAt, endsAt, string(b.Status), b.Notes).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if isExclusionViolation(err) {
		return ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("bookings: create: %w", err)
	}
	b.EndsAt = endsAt
	return nil
}

// UpdateSchedule moves a booking to a new tutor, service or time.
func (r *Repository) UpdateSchedule(ctx context.Context, b *Booking, endsAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE reservas
		SET cliente_id = $1, tutor_id = $2, servicio_id = $3, fecha_hora = $4, fecha_fin = $5, notas = $6, updated_at = now()
		WHERE id = $7`,
		b.ClientID, b.TutorID, b.ServiceID, b.StartsAt, endsAt, b.Notes, b.ID)
	if isExclusionViolation(err) {
		return ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("bookings: update schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	b.EndsAt = endsAt
	return nil
}

// Get loads one booking.
func (r *Repository) Get(ctx context.Context, id int64) (*Booking, error) {
	var b Booking
	err := r.db.QueryRow(ctx, `
		SELECT `+bookingColumns+` FROM reservas WHERE id = $1`, id).
		Scan(&b.ID, &b.ClientID, &b.TutorID, &b.ServiceID, &b.StartsAt, &b.EndsAt, &b.Status, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: get: %w", err)
	}
	return &b, nil
}

// ListForTutorBetween returns the tutor's non-cancelled bookings whose start
// falls in [from, to), with the service name joined in. It is the
// validator's conflict read path. Implements scheduling.BookingSource.
func (r *Repository) ListForTutorBetween(ctx context.Context, tutorID int64, from, to time.Time) ([]scheduling.BookedSlot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.id, r.fecha_hora, r.fecha_fin, s.nombre, r.estado
		FROM reservas r
		JOIN servicios s ON s.id = r.servicio_id
		WHERE r.tutor_id = $1
		  AND r.estado <> 'Cancelada'
		  AND r.fecha_hora >= $2 AND r.fecha_hora < $3
		ORDER BY r.fecha_hora`, tutorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("bookings: list for tutor: %w", err)
	}
	defer rows.Close()

	var out []scheduling.BookedSlot
	for rows.Next() {
		var s scheduling.BookedSlot
		if err := rows.Scan(&s.ID, &s.StartsAt, &s.EndsAt, &s.ServiceName, &s.Status); err != nil {
			return nil, fmt.Errorf("bookings: scan slot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: list for tutor: %w", err)
	}
	return out, nil
}

// ListBetween returns all bookings starting in [from, to) joined with the
// names the calendar shows.
func (r *Repository) ListBetween(ctx context.Context, from, to time.Time) ([]CalendarEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.id, r.cliente_id, r.tutor_id, r.servicio_id, r.fecha_hora, r.fecha_fin,
		       r.estado, r.notas, r.created_at, r.updated_at,
		       c.nombre, t.nombre, s.nombre
		FROM reservas r
		JOIN clientes c ON c.id = r.cliente_id
		JOIN tutores t ON t.id = r.tutor_id
		JOIN servicios s ON s.id = r.servicio_id
		WHERE r.fecha_hora >= $1 AND r.fecha_hora < $2
		ORDER BY r.fecha_hora`, from, to)
	if err != nil {
		return nil, fmt.Errorf("bookings: list between: %w", err)
	}
	defer rows.Close()

	out := []CalendarEntry{}
	for rows.Next() {
		var e CalendarEntry
		if err := rows.Scan(&e.ID, &e.ClientID, &e.TutorID, &e.ServiceID, &e.StartsAt, &e.EndsAt,
			&e.Status, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
			&e.ClientName, &e.TutorName, &e.ServiceName); err != nil {
			return nil, fmt.Errorf("bookings: scan calendar entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: list between: %w", err)
	}
	return out, nil
}

// ListConfirmedBetween returns confirmed bookings starting in [from, to]
// with everything the reminder emails need already joined in.
func (r *Repository) ListConfirmedBetween(ctx context.Context, from, to time.Time) ([]notify.BookingEmail, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.id, c.nombre, c.email, t.nombre, t.email, s.nombre, s.duracion_minutos, r.fecha_hora, r.notas
		FROM reservas r
		JOIN clientes c ON c.id = r.cliente_id
		JOIN tutores t ON t.id = r.tutor_id
		JOIN servicios s ON s.id = r.servicio_id
		WHERE r.estado = 'Confirmada'
		  AND r.fecha_hora >= $1 AND r.fecha_hora <= $2
		ORDER BY r.fecha_hora`, from, to)
	if err != nil {
		return nil, fmt.Errorf("bookings: list confirmed: %w", err)
	}
	defer rows.Close()

	var out []notify.BookingEmail
	for rows.Next() {
		var e notify.BookingEmail
		if err := rows.Scan(&e.BookingID, &e.ClientName, &e.ClientEmail, &e.TutorName, &e.TutorEmail,
			&e.ServiceName, &e.DurationMinutes, &e.StartsAt, &e.Notes); err != nil {
			return nil, fmt.Errorf("bookings: scan confirmed booking: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: list confirmed: %w", err)
	}
	return out, nil
}

// EmailContext loads the joined recipient and service facts for one booking.
func (r *Repository) EmailContext(ctx context.Context, id int64) (*notify.BookingEmail, error) {
	var e notify.BookingEmail
	err := r.db.QueryRow(ctx, `
		SELECT r.id, c.nombre, c.email, t.nombre, t.email, s.nombre, s.duracion_minutos, r.fecha_hora, r.notas
		FROM reservas r
		JOIN clientes c ON c.id = r.cliente_id
		JOIN tutores t ON t.id = r.tutor_id
		JOIN servicios s ON s.id = r.servicio_id
		WHERE r.id = $1`, id).
		Scan(&e.BookingID, &e.ClientName, &e.ClientEmail, &e.TutorName, &e.TutorEmail,
			&e.ServiceName, &e.DurationMinutes, &e.StartsAt, &e.Notes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: email context: %w", err)
	}
	return &e, nil
}

// UpdateStatus transitions a booking's lifecycle state.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE reservas SET estado = $1, updated_at = now() WHERE id = $2`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("bookings: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a booking permanently.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reservas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("bookings: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == exclusionViolation
}
