package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescope/internal/models"
)

func newMockPostgres(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	// Schema is applied by NewPostgresStore against a live database; the
	// mock store is built directly.
	return &PostgresStore{db: db}, mock
}

func TestPostgresCreateUser_UniqueViolation(t *testing.T) {
	s, mock := newMockPostgres(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	err := s.CreateUser(context.Background(), &models.User{
		Name: "Dup", Email: "dup@example.com", PasswordHash: "h",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveAnalysis_InsertsRow(t *testing.T) {
	s, mock := newMockPostgres(t)
	mock.ExpectExec("INSERT INTO analyses").
		WillReturnResult(sqlmock.NewResult(0, 1))

	a := sampleAnalysis("user-1")
	err := s.SaveAnalysis(context.Background(), a)
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAnalysisByID_NotFound(t *testing.T) {
	s, mock := newMockPostgres(t)
	mock.ExpectQuery("SELECT .+ FROM analyses").
		WithArgs("missing", "user-1").
		WillReturnError(sql.ErrNoRows)

	_, err := s.AnalysisByID(context.Background(), "missing", "user-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
