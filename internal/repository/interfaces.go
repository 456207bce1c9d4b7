package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chiefcousin/toybox/internal/domain"
)

// SettingsRepository is the store_settings key/value table.
// Missing keys are reported as nil, never as an error.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (*domain.Setting, error)
	GetMany(ctx context.Context, keys ...string) (map[string]*domain.Setting, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, values map[string]string) error
	// CompareAndSet writes value only when the stored version equals expectedVersion.
	// expectedVersion 0 means the key must not exist yet.
	CompareAndSet(ctx context.Context, key string, expectedVersion int64, value string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// ProductRepository defines product data access methods
type ProductRepository interface {
	// UpsertFromZoho inserts a new product for an unseen Zoho item or overwrites only the
	// Zoho-owned fields of the linked product. Reports whether a row was inserted.
	UpsertFromZoho(ctx context.Context, product *domain.Product) (bool, error)
	GetByZohoItemID(ctx context.Context, itemID string) (*domain.Product, error)
	DeactivateByZohoItemID(ctx context.Context, itemID string) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Search(ctx context.Context, query string, limit int) ([]*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int, error)
	ListLinked(ctx context.Context) ([]*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Counts(ctx context.Context) (total, active, linked int, err error)
}

// OrderRepository defines order data access methods
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int, error)
	UpdateStatusAndNotes(ctx context.Context, id uuid.UUID, status domain.OrderStatus, adminNotes *string) error
	// ClaimZohoSync stamps zoho_synced_at only if it is still NULL. Exactly one caller wins.
	ClaimZohoSync(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	// ReleaseZohoSync clears zoho_synced_at and records the push error
	ReleaseZohoSync(ctx context.Context, id uuid.UUID, syncError string) error
	SetZohoSalesOrder(ctx context.Context, id uuid.UUID, ref domain.SalesOrderRef) error
	SetZohoSyncError(ctx context.Context, id uuid.UUID, syncError string) error
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error)
}

// IdempotencyKeyRepository defines idempotency key data access methods
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

// CustomerRepository defines storefront customer data access methods
type CustomerRepository interface {
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	// SaveOTP creates the customer if needed and replaces the pending code
	SaveOTP(ctx context.Context, phone, otpHash string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	// UpsertVerified creates or updates a verified customer without an OTP round-trip
	UpsertVerified(ctx context.Context, phone, name string, address *string) (*domain.Customer, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name string, address *string) error
	List(ctx context.Context) ([]*domain.Customer, error)
	// Count returns the number of verified customers
	Count(ctx context.Context) (int, error)
}

// StaffRepository defines staff account data access methods
type StaffRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffUser, error)
	List(ctx context.Context) ([]*domain.StaffUser, error)
	Create(ctx context.Context, user *domain.StaffUser) error
}

// ProductViewRepository records storefront product views
type ProductViewRepository interface {
	Create(ctx context.Context, view *domain.ProductView) error
	CountSince(ctx context.Context, since time.Time) (int, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	Settings       SettingsRepository
	Product        ProductRepository
	Order          OrderRepository
	IdempotencyKey IdempotencyKeyRepository
	Customer       CustomerRepository
	Staff          StaffRepository
	ProductView    ProductViewRepository
}
