package directory

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestListClients(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT id, nombre, email, telefono, notas").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "email", "telefono", "notas", "created_at", "updated_at"}).
			AddRow(1, "Ana García", "ana@example.com", "+34600111222", "", now, now).
			AddRow(2, "Luis Pérez", "luis@example.com", "", "prefiere tardes", now, now))

	clients, err := repo.ListClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "Ana García", clients[0].Name)
	assert.Equal(t, "prefiere tardes", clients[1].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateClientValidation(t *testing.T) {
	repo, _ := newMockRepo(t)
	ctx := context.Background()

	err := repo.CreateClient(ctx, &Client{Email: "ana@example.com"})
	assert.ErrorIs(t, err, ErrInvalid)

	err = repo.CreateClient(ctx, &Client{Name: "Ana García"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestCreateClient(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO clientes").
		WithArgs("Ana García", "ana@example.com", "+34600111222", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(9, now, now))

	c := Client{Name: "Ana García", Email: "ana@example.com", Phone: "+34600111222"}
	require.NoError(t, repo.CreateClient(context.Background(), &c))
	assert.Equal(t, int64(9), c.ID)
}

func TestGetTutorSpecialtiesArray(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT id, nombre, email, telefono, especialidades").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "email", "telefono", "especialidades", "created_at", "updated_at"}).
			AddRow(3, "María López", "maria@example.com", "", "{1,4}", now, now))

	tutor, err := repo.GetTutor(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, tutor.SpecialtyIDs)
}

func TestCreateTutorSendsSpecialtyArray(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO tutores").
		WithArgs("María López", "maria@example.com", "", pq.Array([]int64{1, 4})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(3, now, now))

	tut := Tutor{Name: "María López", Email: "maria@example.com", SpecialtyIDs: []int64{1, 4}}
	require.NoError(t, repo.CreateTutor(context.Background(), &tut))
	assert.Equal(t, int64(3), tut.ID)
}

func TestUpdateClientNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE clientes").
		WithArgs("Ana García", "ana@example.com", "", "", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateClient(context.Background(), &Client{ID: 99, Name: "Ana García", Email: "ana@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientContact(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT nombre, email FROM clientes").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"nombre", "email"}).
			AddRow("Ana García", "ana@example.com"))

	contact, err := repo.ClientContact(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, &Contact{Name: "Ana García", Email: "ana@example.com"}, contact)
}

func TestTutorContactNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT nombre, email FROM tutores").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"nombre", "email"}))

	_, err := repo.TutorContact(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
