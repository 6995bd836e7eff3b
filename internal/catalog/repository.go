package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tutorwise/tutorwise-platform/internal/scheduling"
)

// ErrNotFound is returned when a service or specialty id does not exist.
var ErrNotFound = errors.New("catalog: not found")

// ErrInvalidService wraps field-validation failures.
var ErrInvalidService = errors.New("catalog: invalid service")

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence for servicios and especialidades.
type Repository struct {
	db DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("catalog: db required")
	}
	return &Repository{db: db}
}

const serviceColumns = `id, nombre, descripcion, duracion_minutos, especialidad_id, created_at, updated_at`

// GetService resolves a service to the slice the booking validator needs.
// Implements scheduling.ServiceCatalog.
func (r *Repository) GetService(ctx context.Context, id int64) (*scheduling.ServiceInfo, error) {
	var info scheduling.ServiceInfo
	err := r.db.QueryRow(ctx, `
		SELECT id, nombre, duracion_minutos FROM servicios WHERE id = $1`, id).
		Scan(&info.ID, &info.Name, &info.DurationMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, scheduling.ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get service duration: %w", err)
	}
	return &info, nil
}

// ListServices returns the full catalog ordered by name.
func (r *Repository) ListServices(ctx context.Context) ([]Service, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+serviceColumns+` FROM servicios ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list services: %w", err)
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.DurationMinutes, &s.SpecialtyID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan service: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list services: %w", err)
	}
	return out, nil
}

// GetServiceByID loads one service with all fields.
func (r *Repository) GetServiceByID(ctx context.Context, id int64) (*Service, error) {
	var s Service
	err := r.db.QueryRow(ctx, `
		SELECT `+serviceColumns+` FROM servicios WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Description, &s.DurationMinutes, &s.SpecialtyID, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get service: %w", err)
	}
	return &s, nil
}

// CreateService inserts a new service.
func (r *Repository) CreateService(ctx context.Context, s *Service) error {
	if err := validateService(s); err != nil {
		return err
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO servicios (nombre, descripcion, duracion_minutos, especialidad_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		s.Name, s.Description, s.DurationMinutes, s.SpecialtyID).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: create service: %w", err)
	}
	return nil
}

// UpdateService rewrites a service.
func (r *Repository) UpdateService(ctx context.Context, s *Service) error {
	if err := validateService(s); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE servicios
		SET nombre = $1, descripcion = $2, duracion_minutos = $3, especialidad_id = $4, updated_at = now()
		WHERE id = $5`,
		s.Name, s.Description, s.DurationMinutes, s.SpecialtyID, s.ID)
	if err != nil {
		return fmt.Errorf("catalog: update service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteService removes a service permanently.
func (r *Repository) DeleteService(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM servicios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog: delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSpecialties returns all specialties ordered by name.
func (r *Repository) ListSpecialties(ctx context.Context) ([]Specialty, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, nombre, created_at FROM especialidades ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list specialties: %w", err)
	}
	defer rows.Close()

	var out []Specialty
	for rows.Next() {
		var sp Specialty
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan specialty: %w", err)
		}
		out = append(out, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list specialties: %w", err)
	}
	return out, nil
}

// CreateSpecialty inserts a new specialty.
func (r *Repository) CreateSpecialty(ctx context.Context, sp *Specialty) error {
	if sp.Name == "" {
		return fmt.Errorf("%w: nombre is required", ErrInvalidService)
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO especialidades (nombre) VALUES ($1)
		RETURNING id, created_at`, sp.Name).
		Scan(&sp.ID, &sp.CreatedAt)
	if err != nil {
		return fmt.Errorf("catalog: create specialty: %w", err)
	}
	return nil
}

// DeleteSpecialty removes a specialty permanently.
func (r *Repository) DeleteSpecialty(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM especialidades WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog: delete specialty: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func validateService(s *Service) error {
	if s.Name == "" {
		return fmt.Errorf("%w: nombre is required", ErrInvalidService)
	}
	if s.DurationMinutes < MinDurationMinutes || s.DurationMinutes > MaxDurationMinutes {
		return fmt.Errorf("%w: duracion_minutos must be between %d and %d",
			ErrInvalidService, MinDurationMinutes, MaxDurationMinutes)
	}
	return nil
}
