package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
)

type productViewRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductViewRepository creates a new product view repository
func NewProductViewRepository(db *sql.DB, logger *zap.Logger) *productViewRepository {
	return &productViewRepository{
		db:     db,
		logger: logger,
	}
}

func (r *productViewRepository) Create(ctx context.Context, view *domain.ProductView) error {
	query := `
		INSERT INTO product_views (id, product_id, viewed_at)
		VALUES ($1, $2, $3)
	`

	if view.ID == uuid.Nil {
		view.ID = uuid.New()
	}
	if view.ViewedAt.IsZero() {
		view.ViewedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query, view.ID, view.ProductID, view.ViewedAt)
	if err != nil {
		r.logger.Error("Failed to record product view", zap.String("product_id", view.ProductID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (r *productViewRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM product_views WHERE viewed_at >= $1`, since).Scan(&n)
	if err != nil {
		r.logger.Error("Failed to count product views", zap.Error(err))
		return 0, err
	}
	return n, nil
}
