package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &repository.Repositories{
		Settings:       NewSettingsRepository(db, logger),
		Product:        NewProductRepository(db, logger),
		Order:          NewOrderRepository(db, logger),
		IdempotencyKey: NewIdempotencyKeyRepository(db, logger),
		Customer:       NewCustomerRepository(db, logger),
		Staff:          NewStaffRepository(db, logger),
		ProductView:    NewProductViewRepository(db, logger),
	}
}
