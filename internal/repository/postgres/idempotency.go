package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/pkg/errors"
)

type idempotencyKeyRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewIdempotencyKeyRepository creates the repository binding Idempotency-Key headers to orders
func NewIdempotencyKeyRepository(db *sql.DB, logger *zap.Logger) *idempotencyKeyRepository {
	return &idempotencyKeyRepository{db: db, logger: logger}
}

// GetByKey returns nil when the key was never bound
func (r *idempotencyKeyRepository) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT key, order_id, request_hash, created_at FROM idempotency_keys WHERE key = $1`, key)

	var k domain.IdempotencyKey
	err := row.Scan(&k.Key, &k.OrderID, &k.RequestHash, &k.CreatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to read idempotency key", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &k, nil
}

// Create binds a key to an order. A key that is already bound yields ErrConflict, which
// lets the losing side of two concurrent requests find the winner's order.
func (r *idempotencyKeyRepository) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO idempotency_keys (key, order_id, request_hash, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO NOTHING`,
		key.Key, key.OrderID, key.RequestHash, key.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to store idempotency key", zap.String("key", key.Key), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &errors.ErrConflict{Message: "idempotency key already used"}
	}
	return nil
}
