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

type customerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *sql.DB, logger *zap.Logger) *customerRepository {
	return &customerRepository{
		db:     db,
		logger: logger,
	}
}

const customerColumns = `id, phone, name, address, otp_hash, otp_expires_at, is_verified, created_at, updated_at`

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	var c domain.Customer
	var address, otpHash sql.NullString
	var otpExpiresAt sql.NullTime

	err := row.Scan(&c.ID, &c.Phone, &c.Name, &address, &otpHash, &otpExpiresAt, &c.IsVerified, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Address = nullStringPtr(address)
	c.OTPHash = nullStringPtr(otpHash)
	if otpExpiresAt.Valid {
		c.OTPExpiresAt = &otpExpiresAt.Time
	}
	return &c, nil
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE phone = $1`
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, phone))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get customer by phone", zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "customer", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get customer by ID", zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *customerRepository) SaveOTP(ctx context.Context, phone, otpHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO customers (id, phone, otp_hash, otp_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (phone) DO UPDATE SET
			otp_hash = EXCLUDED.otp_hash,
			otp_expires_at = EXCLUDED.otp_expires_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, uuid.New(), phone, otpHash, expiresAt, time.Now())
	if err != nil {
		r.logger.Error("Failed to save OTP", zap.Error(err))
		return err
	}
	return nil
}

func (r *customerRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE customers
		SET is_verified = true, otp_hash = NULL, otp_expires_at = NULL, updated_at = $2
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark customer verified", zap.Error(err))
		return err
	}
	return requireRow(res, "customer", id.String())
}

func (r *customerRepository) UpsertVerified(ctx context.Context, phone, name string, address *string) (*domain.Customer, error) {
	query := `
		INSERT INTO customers (id, phone, name, address, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, true, $5, $5)
		ON CONFLICT (phone) DO UPDATE SET
			name = EXCLUDED.name,
			address = COALESCE(EXCLUDED.address, customers.address),
			is_verified = true,
			otp_hash = NULL,
			otp_expires_at = NULL,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + customerColumns
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, uuid.New(), phone, name, address, time.Now()))
	if err != nil {
		r.logger.Error("Failed to upsert verified customer", zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *customerRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name string, address *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE customers SET name = $2, address = $3, updated_at = $4 WHERE id = $1`,
		id, name, address, time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to update customer profile", zap.Error(err))
		return err
	}
	return requireRow(res, "customer", id.String())
}

func (r *customerRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers WHERE is_verified`).Scan(&n); err != nil {
		r.logger.Error("Failed to count customers", zap.Error(err))
		return 0, err
	}
	return n, nil
}

func (r *customerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC`)
	if err != nil {
		r.logger.Error("Failed to list customers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
