package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorwise/tutorwise-platform/internal/scheduling"
)

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock), mock
}

func TestGetService(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, nombre, duracion_minutos FROM servicios").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "nombre", "duracion_minutos"}).
			AddRow(int64(1), "Clase de matemáticas", 50))

	info, err := repo.GetService(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, &scheduling.ServiceInfo{ID: 1, Name: "Clase de matemáticas", DurationMinutes: 50}, info)
}

func TestGetServiceNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, nombre, duracion_minutos FROM servicios").
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetService(context.Background(), 99)
	assert.ErrorIs(t, err, scheduling.ErrServiceNotFound)
}

func TestCreateService(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	specialtyID := int64(2)

	mock.ExpectQuery("INSERT INTO servicios").
		WithArgs("Clase de física", "Mecánica y ondas", 60, &specialtyID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(7), now, now))

	svc := Service{Name: "Clase de física", Description: "Mecánica y ondas", DurationMinutes: 60, SpecialtyID: &specialtyID}
	require.NoError(t, repo.CreateService(context.Background(), &svc))
	assert.Equal(t, int64(7), svc.ID)
}

func TestCreateServiceDurationBounds(t *testing.T) {
	repo, _ := newMockRepo(t)
	ctx := context.Background()

	for _, minutes := range []int{0, 29, 121, 480} {
		svc := Service{Name: "Clase", DurationMinutes: minutes}
		err := repo.CreateService(ctx, &svc)
		assert.ErrorIs(t, err, ErrInvalidService, "duration %d", minutes)
	}

	// Edges are legal.
	for _, minutes := range []int{30, 120} {
		now := time.Now()
		_, mock := newMockRepo(t)
		repo := NewRepository(mock)
		mock.ExpectQuery("INSERT INTO servicios").
			WithArgs("Clase", "", minutes, (*int64)(nil)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(1), now, now))
		svc := Service{Name: "Clase", DurationMinutes: minutes}
		assert.NoError(t, repo.CreateService(ctx, &svc), "duration %d", minutes)
	}
}

func TestUpdateServiceNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE servicios").
		WithArgs("Clase", "", 45, (*int64)(nil), int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	svc := Service{ID: 99, Name: "Clase", DurationMinutes: 45}
	err := repo.UpdateService(context.Background(), &svc)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSpecialties(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT id, nombre, created_at FROM especialidades").
		WillReturnRows(pgxmock.NewRows([]string{"id", "nombre", "created_at"}).
			AddRow(int64(1), "Matemáticas", now).
			AddRow(int64(2), "Física", now))

	specialties, err := repo.ListSpecialties(context.Background())
	require.NoError(t, err)
	require.Len(t, specialties, 2)
	assert.Equal(t, "Matemáticas", specialties[0].Name)
}

func TestDeleteSpecialtyNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM especialidades").
		WithArgs(int64(404)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteSpecialty(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
