package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tutorwise/tutorwise-platform/internal/scheduling"
)

// ErrNotFound is returned when a window id does not exist.
var ErrNotFound = errors.New("availability: window not found")

// ErrWindowOverlap is returned when a window would overlap an existing
// active window for the same tutor and weekday.
var ErrWindowOverlap = errors.New("availability: window overlaps an existing one")

// ErrInvalidWindow wraps field-validation failures.
var ErrInvalidWindow = errors.New("availability: invalid window")

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides CRUD operations for disponibilidades.
type Repository struct {
	db DB
}

// NewRepository creates a new availability repository.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("availability: db required")
	}
	return &Repository{db: db}
}

const windowColumns = `id, tutor_id, dia_semana, hora_inicio::text, hora_fin::text, activo, created_at, updated_at`

// ListForTutor returns all of a tutor's windows, active or not, ordered by
// weekday and start time.
func (r *Repository) ListForTutor(ctx context.Context, tutorID int64) ([]Window, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+windowColumns+`
		FROM disponibilidades
		WHERE tutor_id = $1
		ORDER BY dia_semana, hora_inicio`, tutorID)
	if err != nil {
		return nil, fmt.Errorf("availability: list for tutor: %w", err)
	}
	defer rows.Close()
	return scanWindows(rows)
}

// ActiveWindows returns the tutor's active windows for one weekday. It is
// the validator's read path.
func (r *Repository) ActiveWindows(ctx context.Context, tutorID int64, day time.Weekday) ([]scheduling.Window, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, hora_inicio::text, hora_fin::text
		FROM disponibilidades
		WHERE tutor_id = $1 AND dia_semana = $2 AND activo
		ORDER BY hora_inicio`, tutorID, int(day))
	if err != nil {
		return nil, fmt.Errorf("availability: active windows: %w", err)
	}
	defer rows.Close()

	var out []scheduling.Window
	for rows.Next() {
		var w scheduling.Window
		if err := rows.Scan(&w.ID, &w.Start, &w.End); err != nil {
			return nil, fmt.Errorf("availability: scan window: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("availability: active windows: %w", err)
	}
	return out, nil
}

// Get loads one window by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Window, error) {
	var w Window
	err := r.db.QueryRow(ctx, `
		SELECT `+windowColumns+`
		FROM disponibilidades
		WHERE id = $1`, id).
		Scan(&w.ID, &w.TutorID, &w.Weekday, &w.Start, &w.End, &w.Active, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("availability: get window: %w", err)
	}
	return &w, nil
}

// Create inserts a new window after validating it against the tutor's
// existing active windows for the same weekday.
func (r *Repository) Create(ctx context.Context, w *Window) error {
	if err := validateWindow(w); err != nil {
		return err
	}
	if err := r.checkOverlap(ctx, w, 0); err != nil {
		return err
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO disponibilidades (tutor_id, dia_semana, hora_inicio, hora_fin, activo)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		w.TutorID, w.Weekday, w.Start, w.End, w.Active).
		Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("availability: create window: %w", err)
	}
	return nil
}

// Update rewrites a window's schedule fields.
func (r *Repository) Update(ctx context.Context, w *Window) error {
	if err := validateWindow(w); err != nil {
		return err
	}
	if err := r.checkOverlap(ctx, w, w.ID); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE disponibilidades
		SET dia_semana = $1, hora_inicio = $2, hora_fin = $3, activo = $4, updated_at = now()
		WHERE id = $5`,
		w.Weekday, w.Start, w.End, w.Active, w.ID)
	if err != nil {
		return fmt.Errorf("availability: update window: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive toggles a window without touching its schedule.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE disponibilidades SET activo = $1, updated_at = now()
		WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("availability: set active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a window permanently.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM disponibilidades WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("availability: delete window: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// checkOverlap rejects a window that overlaps another active window for the
// same tutor and weekday. excludeID skips the window's own row on update.
// The validator never relies on this; it just keeps templates sane.
func (r *Repository) checkOverlap(ctx context.Context, w *Window, excludeID int64) error {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM disponibilidades
			WHERE tutor_id = $1 AND dia_semana = $2 AND activo
			  AND id <> $3
			  AND hora_inicio < $5::time AND $4::time < hora_fin
		)`, w.TutorID, w.Weekday, excludeID, w.Start, w.End).Scan(&exists)
	if err != nil {
		return fmt.Errorf("availability: overlap check: %w", err)
	}
	if exists {
		return ErrWindowOverlap
	}
	return nil
}

func validateWindow(w *Window) error {
	if w.TutorID <= 0 {
		return fmt.Errorf("%w: tutor id is required", ErrInvalidWindow)
	}
	if w.Weekday < 0 || w.Weekday > 6 {
		return fmt.Errorf("%w: dia_semana must be 0-6", ErrInvalidWindow)
	}
	start, err := parseClock(w.Start)
	if err != nil {
		return fmt.Errorf("%w: hora_inicio: %v", ErrInvalidWindow, err)
	}
	end, err := parseClock(w.End)
	if err != nil {
		return fmt.Errorf("%w: hora_fin: %v", ErrInvalidWindow, err)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: hora_inicio must be before hora_fin", ErrInvalidWindow)
	}
	return nil
}

// parseClock accepts "HH:MM" or "HH:MM:SS" and returns the parsed time.
func parseClock(s string) (time.Time, error) {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected HH:MM or HH:MM:SS, got %q", s)
	}
	return t, nil
}

func scanWindows(rows pgx.Rows) ([]Window, error) {
	var out []Window
	for rows.Next() {
		var w Window
		if err := rows.Scan(&w.ID, &w.TutorID, &w.Weekday, &w.Start, &w.End, &w.Active, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("availability: scan window: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("availability: list windows: %w", err)
	}
	return out, nil
}
