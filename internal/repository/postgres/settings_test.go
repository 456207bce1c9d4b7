package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSettingsRepo(t *testing.T) (*settingsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSettingsRepository(db, zap.NewNop()), mock
}

func TestSettingsRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("returns nil when key is absent", func(t *testing.T) {
		repo, mock := newSettingsRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM store_settings")).
			WithArgs("zoho_refresh_token").
			WillReturnRows(sqlmock.NewRows([]string{"key", "value", "version", "updated_at"}))

		s, err := repo.Get(ctx, "zoho_refresh_token")
		require.NoError(t, err)
		assert.Nil(t, s)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns the stored row", func(t *testing.T) {
		repo, mock := newSettingsRepo(t)
		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("FROM store_settings")).
			WithArgs("zoho_access_token").
			WillReturnRows(sqlmock.NewRows([]string{"key", "value", "version", "updated_at"}).
				AddRow("zoho_access_token", "tok", int64(4), now))

		s, err := repo.Get(ctx, "zoho_access_token")
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, "tok", s.Value)
		assert.Equal(t, int64(4), s.Version)
	})
}

func TestSettingsRepository_SetMany(t *testing.T) {
	repo, mock := newSettingsRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO store_settings")).
		WithArgs("a_key", "1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO store_settings")).
		WithArgs("b_key", "2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SetMany(context.Background(), map[string]string{"b_key": "2", "a_key": "1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepository_CompareAndSet(t *testing.T) {
	ctx := context.Background()

	t.Run("writes when version matches", func(t *testing.T) {
		repo, mock := newSettingsRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("WHERE key = $1 AND version = $2")).
			WithArgs("zoho_access_token", int64(3), "new", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.CompareAndSet(ctx, "zoho_access_token", 3, "new")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("reports a lost race", func(t *testing.T) {
		repo, mock := newSettingsRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("WHERE key = $1 AND version = $2")).
			WithArgs("zoho_access_token", int64(3), "new", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.CompareAndSet(ctx, "zoho_access_token", 3, "new")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("version zero inserts only when absent", func(t *testing.T) {
		repo, mock := newSettingsRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (key) DO NOTHING")).
			WithArgs("zoho_access_token", "new", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.CompareAndSet(ctx, "zoho_access_token", 0, "new")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
