package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*StatsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStatsRepository(db, nil), mock
}

func expectCounts(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clientes`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tutores`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM servicios`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reservas`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(30))
	mock.ExpectQuery(`SELECT estado, COUNT\(\*\) FROM reservas GROUP BY estado`).
		WillReturnRows(sqlmock.NewRows([]string{"estado", "count"}).
			AddRow("Pendiente", 5).
			AddRow("Confirmada", 20).
			AddRow("Cancelada", 5))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reservas\s+WHERE estado = 'Confirmada' AND fecha_hora >= \$1 AND fecha_hora < \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reservas\s+WHERE estado = 'Confirmada' AND fecha_hora >= \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(8))
}

func TestGetStats(t *testing.T) {
	repo, mock := newMockRepo(t)
	expectCounts(mock)

	stats, err := repo.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.Clients)
	assert.Equal(t, int64(4), stats.Tutors)
	assert.Equal(t, int64(30), stats.Bookings)
	assert.Equal(t, int64(20), stats.ByStatus["Confirmada"])
	assert.Equal(t, int64(3), stats.TodayConfirmed)
	assert.Equal(t, int64(8), stats.Upcoming)
	assert.NotEmpty(t, stats.GeneratedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStatsQueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clientes`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetStats(context.Background())
	assert.Error(t, err)
}

func TestDashboardHandler(t *testing.T) {
	repo, mock := newMockRepo(t)
	expectCounts(mock)

	h := NewHandler(repo, nil)
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	rec := httptest.NewRecorder()
	h.GetStats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reservas_por_estado"`)
}
