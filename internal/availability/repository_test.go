package availability

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock), mock
}

func TestActiveWindows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, hora_inicio::text, hora_fin::text").
		WithArgs(int64(5), 1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "hora_inicio", "hora_fin"}).
			AddRow(int64(10), "09:00:00", "12:00:00").
			AddRow(int64(11), "14:00:00", "17:00:00"))

	windows, err := repo.ActiveWindows(context.Background(), 5, time.Monday)
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, "09:00:00", windows[0].Start)
	assert.Equal(t, "17:00:00", windows[1].End)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveWindowsEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, hora_inicio::text, hora_fin::text").
		WithArgs(int64(5), 2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "hora_inicio", "hora_fin"}))

	windows, err := repo.ActiveWindows(context.Background(), 5, time.Tuesday)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestCreateWindow(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(5), 1, int64(0), "09:00:00", "12:00:00").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO disponibilidades").
		WithArgs(int64(5), 1, "09:00:00", "12:00:00", true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(3), now, now))

	w := Window{TutorID: 5, Weekday: 1, Start: "09:00:00", End: "12:00:00", Active: true}
	require.NoError(t, repo.Create(context.Background(), &w))
	assert.Equal(t, int64(3), w.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWindowOverlapRejected(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(5), 1, int64(0), "10:00:00", "13:00:00").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	w := Window{TutorID: 5, Weekday: 1, Start: "10:00:00", End: "13:00:00", Active: true}
	err := repo.Create(context.Background(), &w)
	assert.ErrorIs(t, err, ErrWindowOverlap)
}

func TestCreateWindowValidation(t *testing.T) {
	repo, _ := newMockRepo(t)
	ctx := context.Background()

	tests := []struct {
		name string
		w    Window
	}{
		{"missing tutor", Window{Weekday: 1, Start: "09:00:00", End: "12:00:00"}},
		{"bad weekday", Window{TutorID: 5, Weekday: 7, Start: "09:00:00", End: "12:00:00"}},
		{"bad clock", Window{TutorID: 5, Weekday: 1, Start: "late", End: "12:00:00"}},
		{"inverted range", Window{TutorID: 5, Weekday: 1, Start: "12:00:00", End: "09:00:00"}},
		{"empty range", Window{TutorID: 5, Weekday: 1, Start: "09:00:00", End: "09:00:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, &tt.w)
			assert.ErrorIs(t, err, ErrInvalidWindow)
		})
	}
}

func TestUpdateWindowExcludesSelfFromOverlapCheck(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(5), 1, int64(3), "09:00:00", "13:00:00").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("UPDATE disponibilidades").
		WithArgs(1, "09:00:00", "13:00:00", true, int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	w := Window{ID: 3, TutorID: 5, Weekday: 1, Start: "09:00:00", End: "13:00:00", Active: true}
	require.NoError(t, repo.Update(context.Background(), &w))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWindowNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(5), 1, int64(99), "09:00:00", "13:00:00").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("UPDATE disponibilidades").
		WithArgs(1, "09:00:00", "13:00:00", true, int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	w := Window{ID: 99, TutorID: 5, Weekday: 1, Start: "09:00:00", End: "13:00:00", Active: true}
	err := repo.Update(context.Background(), &w)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetActive(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE disponibilidades SET activo").
		WithArgs(false, int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetActive(context.Background(), 3, false))
}

func TestDeleteWindowNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM disponibilidades").
		WithArgs(int64(404)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetWindowNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, tutor_id").
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
