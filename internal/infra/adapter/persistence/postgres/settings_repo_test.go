package postgres_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedcore/internal/infra/adapter/persistence/postgres"
)

func TestSettingsRepo_Get_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM settings WHERE key = $1`)).
		WithArgs("default-update-interval").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("60"))

	repo := postgres.NewSettingsRepo(db)
	value, ok, err := repo.Get(context.Background(), "default-update-interval")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "60", value)
}

func TestSettingsRepo_Get_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM settings WHERE key = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	repo := postgres.NewSettingsRepo(db)
	_, ok, err := repo.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettingsRepo_Set(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO settings`)).
		WithArgs("k", "v").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewSettingsRepo(db)
	require.NoError(t, repo.Set(context.Background(), "k", "v"))
	require.NoError(t, mock.ExpectationsWereMet())
}
