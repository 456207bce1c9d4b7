package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/pkg/errors"
)

type staffRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *sql.DB, logger *zap.Logger) *staffRepository {
	return &staffRepository{
		db:     db,
		logger: logger,
	}
}

const staffColumns = `id, email, name, password_hash, role, is_active, created_at, updated_at`

func scanStaff(row rowScanner) (*domain.StaffUser, error) {
	var u domain.StaffUser
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_users WHERE email = $1`
	u, err := scanStaff(r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get staff user by email", zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (r *staffRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffUser, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_users WHERE id = $1`
	u, err := scanStaff(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "staff user", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get staff user by ID", zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (r *staffRepository) List(ctx context.Context) ([]*domain.StaffUser, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+staffColumns+` FROM staff_users ORDER BY created_at`)
	if err != nil {
		r.logger.Error("Failed to list staff users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []*domain.StaffUser
	for rows.Next() {
		u, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *staffRepository) Create(ctx context.Context, u *domain.StaffUser) error {
	query := `
		INSERT INTO staff_users (` + staffColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &errors.ErrConflict{Message: "a staff account with this email already exists"}
		}
		r.logger.Error("Failed to create staff user", zap.Error(err))
		return err
	}
	return nil
}
