package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a client or tutor id does not exist.
var ErrNotFound = errors.New("directory: not found")

// ErrInvalid wraps field-validation failures.
var ErrInvalid = errors.New("directory: invalid record")

// Repository provides persistence for clientes and tutores.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new directory repository.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		panic("directory: db required")
	}
	return &Repository{db: db}
}

// ListClients returns all clients ordered by name.
func (r *Repository) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, nombre, email, telefono, notas, created_at, updated_at
		FROM clientes ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("directory: list clients: %w", err)
	}
	defer rows.Close()

	out := []Client{}
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("directory: scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetClient loads one client.
func (r *Repository) GetClient(ctx context.Context, id int64) (*Client, error) {
	var c Client
	err := r.db.QueryRowContext(ctx, `
		SELECT id, nombre, email, telefono, notas, created_at, updated_at
		FROM clientes WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("directory: get client: %w", err)
	}
	return &c, nil
}

// CreateClient inserts a new client.
func (r *Repository) CreateClient(ctx context.Context, c *Client) error {
	if err := validateContactFields(c.Name, c.Email); err != nil {
		return err
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO clientes (nombre, email, telefono, notas)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		c.Name, c.Email, c.Phone, c.Notes).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("directory: create client: %w", err)
	}
	return nil
}

// UpdateClient rewrites a client.
func (r *Repository) UpdateClient(ctx context.Context, c *Client) error {
	if err := validateContactFields(c.Name, c.Email); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE clientes SET nombre = $1, email = $2, telefono = $3, notas = $4, updated_at = now()
		WHERE id = $5`,
		c.Name, c.Email, c.Phone, c.Notes, c.ID)
	if err != nil {
		return fmt.Errorf("directory: update client: %w", err)
	}
	return checkAffected(res)
}

// DeleteClient removes a client permanently.
func (r *Repository) DeleteClient(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clientes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("directory: delete client: %w", err)
	}
	return checkAffected(res)
}

// ListTutors returns all tutors ordered by name.
func (r *Repository) ListTutors(ctx context.Context) ([]Tutor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, nombre, email, telefono, especialidades, created_at, updated_at
		FROM tutores ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("directory: list tutors: %w", err)
	}
	defer rows.Close()

	out := []Tutor{}
	for rows.Next() {
		var t Tutor
		if err := rows.Scan(&t.ID, &t.Name, &t.Email, &t.Phone, pq.Array(&t.SpecialtyIDs), &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("directory: scan tutor: %w", err)
		}
		if t.SpecialtyIDs == nil {
			t.SpecialtyIDs = []int64{}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTutor loads one tutor.
func (r *Repository) GetTutor(ctx context.Context, id int64) (*Tutor, error) {
	var t Tutor
	err := r.db.QueryRowContext(ctx, `
		SELECT id, nombre, email, telefono, especialidades, created_at, updated_at
		FROM tutores WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Email, &t.Phone, pq.Array(&t.SpecialtyIDs), &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("directory: get tutor: %w", err)
	}
	if t.SpecialtyIDs == nil {
		t.SpecialtyIDs = []int64{}
	}
	return &t, nil
}

// CreateTutor inserts a new tutor.
func (r *Repository) CreateTutor(ctx context.Context, t *Tutor) error {
	if err := validateContactFields(t.Name, t.Email); err != nil {
		return err
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO tutores (nombre, email, telefono, especialidades)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		t.Name, t.Email, t.Phone, pq.Array(t.SpecialtyIDs)).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("directory: create tutor: %w", err)
	}
	return nil
}

// UpdateTutor rewrites a tutor.
func (r *Repository) UpdateTutor(ctx context.Context, t *Tutor) error {
	if err := validateContactFields(t.Name, t.Email); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE tutores SET nombre = $1, email = $2, telefono = $3, especialidades = $4, updated_at = now()
		WHERE id = $5`,
		t.Name, t.Email, t.Phone, pq.Array(t.SpecialtyIDs), t.ID)
	if err != nil {
		return fmt.Errorf("directory: update tutor: %w", err)
	}
	return checkAffected(res)
}

// DeleteTutor removes a tutor permanently.
func (r *Repository) DeleteTutor(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tutores WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("directory: delete tutor: %w", err)
	}
	return checkAffected(res)
}

// ClientContact returns the notifier contact for a client.
func (r *Repository) ClientContact(ctx context.Context, id int64) (*Contact, error) {
	return r.contact(ctx, "clientes", id)
}

// TutorContact returns the notifier contact for a tutor.
func (r *Repository) TutorContact(ctx context.Context, id int64) (*Contact, error) {
	return r.contact(ctx, "tutores", id)
}

func (r *Repository) contact(ctx context.Context, table string, id int64) (*Contact, error) {
	var c Contact
	err := r.db.QueryRowContext(ctx,
		`SELECT nombre, email FROM `+table+` WHERE id = $1`, id).
		Scan(&c.Name, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("directory: contact lookup in %s: %w", table, err)
	}
	return &c, nil
}

func validateContactFields(name, email string) error {
	if name == "" {
		return fmt.Errorf("%w: nombre is required", ErrInvalid)
	}
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalid)
	}
	return nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("directory: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
