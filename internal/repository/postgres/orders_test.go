package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/pkg/errors"
)

func newOrderRepo(t *testing.T) (*orderRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOrderRepository(db, zap.NewNop()), mock
}

func TestOrderRepository_ClaimZohoSync(t *testing.T) {
	repo, mock := newOrderRepo(t)
	id := uuid.New()
	at := time.Now()

	claim := regexp.QuoteMeta("WHERE id = $1 AND zoho_synced_at IS NULL")
	mock.ExpectExec(claim).WithArgs(id, at).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(claim).WithArgs(id, at).WillReturnResult(sqlmock.NewResult(0, 0))

	first, err := repo.ClaimZohoSync(context.Background(), id, at)
	require.NoError(t, err)
	second, err := repo.ClaimZohoSync(context.Background(), id, at)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second, "an already claimed order cannot be claimed again")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ReleaseZohoSync(t *testing.T) {
	repo, mock := newOrderRepo(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("SET zoho_synced_at = NULL, zoho_sync_error = $2")).
		WithArgs(id, "boom", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ReleaseZohoSync(context.Background(), id, "boom"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newOrderRepo(t)
	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), id)
	var nf *errors.ErrNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "order", nf.Resource)
}

func TestOrderRepository_CountByStatus(t *testing.T) {
	repo, mock := newOrderRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("clicked", int64(5)).
			AddRow("confirmed", int64(2)))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, counts[domain.OrderStatusClicked])
	assert.Equal(t, 2, counts[domain.OrderStatusConfirmed])
	assert.Equal(t, 0, counts[domain.OrderStatusCancelled])
}
