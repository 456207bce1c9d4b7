package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `id, product_id, product_name, price, quantity, customer_phone, status, admin_notes,
	zoho_salesorder_id, zoho_salesorder_number, zoho_sync_error, zoho_synced_at, created_at, updated_at`

func scanOrder(row rowScanner, extra ...any) (*domain.Order, error) {
	var o domain.Order
	var productID uuid.NullUUID
	var customerPhone, adminNotes, soID, soNumber, syncError sql.NullString
	var syncedAt sql.NullTime

	dest := []any{
		&o.ID, &productID, &o.ProductName, &o.Price, &o.Quantity, &customerPhone, &o.Status, &adminNotes,
		&soID, &soNumber, &syncError, &syncedAt, &o.CreatedAt, &o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if productID.Valid {
		o.ProductID = &productID.UUID
	}
	o.CustomerPhone = nullStringPtr(customerPhone)
	o.AdminNotes = nullStringPtr(adminNotes)
	o.ZohoSalesOrderID = nullStringPtr(soID)
	o.ZohoSalesOrderNumber = nullStringPtr(soNumber)
	o.ZohoSyncError = nullStringPtr(syncError)
	if syncedAt.Valid {
		o.ZohoSyncedAt = &syncedAt.Time
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	query := `
		INSERT INTO orders (id, product_id, product_name, price, quantity, customer_phone, status, admin_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = domain.OrderStatusClicked
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		o.ID, uuidPtrValue(o.ProductID), o.ProductName, o.Price, o.Quantity, o.CustomerPhone,
		o.Status, o.AdminNotes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) List(ctx context.Context, f domain.OrderFilter) ([]*domain.Order, int, error) {
	query := `
		SELECT ` + orderColumns + `, COUNT(*) OVER() AS total_count
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, query, string(f.Status), limit, f.Offset)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.Order
	total := 0
	for rows.Next() {
		o, err := scanOrder(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *orderRepository) UpdateStatusAndNotes(ctx context.Context, id uuid.UUID, status domain.OrderStatus, adminNotes *string) error {
	query := `
		UPDATE orders
		SET status = $2, admin_notes = $3, updated_at = $4
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, status, adminNotes, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order", zap.Error(err))
		return err
	}
	return requireRow(res, "order", id.String())
}

func (r *orderRepository) ClaimZohoSync(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET zoho_synced_at = $2, updated_at = $2 WHERE id = $1 AND zoho_synced_at IS NULL`,
		id, at,
	)
	if err != nil {
		r.logger.Error("Failed to claim order for Zoho push", zap.String("order_id", id.String()), zap.Error(err))
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *orderRepository) ReleaseZohoSync(ctx context.Context, id uuid.UUID, syncError string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE orders SET zoho_synced_at = NULL, zoho_sync_error = $2, updated_at = $3 WHERE id = $1`,
		id, syncError, time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to release Zoho push claim", zap.String("order_id", id.String()), zap.Error(err))
		return err
	}
	return nil
}

func (r *orderRepository) SetZohoSalesOrder(ctx context.Context, id uuid.UUID, ref domain.SalesOrderRef) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET zoho_salesorder_id = $2, zoho_salesorder_number = $3, zoho_sync_error = NULL, updated_at = $4
		WHERE id = $1
	`, id, ref.ID, ref.Number, time.Now())
	if err != nil {
		r.logger.Error("Failed to store Zoho sales order", zap.String("order_id", id.String()), zap.Error(err))
		return err
	}
	return nil
}

func (r *orderRepository) SetZohoSyncError(ctx context.Context, id uuid.UUID, syncError string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE orders SET zoho_sync_error = $2, updated_at = $3 WHERE id = $1`,
		id, syncError, time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to store Zoho sync error", zap.String("order_id", id.String()), zap.Error(err))
		return err
	}
	return nil
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		r.logger.Error("Failed to count orders by status", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.OrderStatus]int, len(domain.OrderStatuses))
	for _, s := range domain.OrderStatuses {
		out[s] = 0
	}
	for rows.Next() {
		var status domain.OrderStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
