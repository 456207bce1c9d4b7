package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Fields split into two groups:
// Zoho-owned (name, description, price, compare_at_price, sku, stock_quantity, is_active)
// are overwritten by every sync; locally-owned (slug, category_id, brand, age_range, tags,
// is_featured) are never touched by sync. Products without ZohoItemID were created locally.
type Product struct {
	ID             uuid.UUID
	Name           string
	Slug           string
	Description    *string
	Price          decimal.Decimal
	CompareAtPrice decimal.NullDecimal
	SKU            *string
	StockQuantity  int
	CategoryID     *uuid.UUID
	Brand          *string
	AgeRange       *string
	Tags           []string
	IsFeatured     bool
	IsActive       bool
	ZohoItemID     *string
	// LastSyncedFromZoho is stamped by every mapping of a Zoho item
	LastSyncedFromZoho *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Order represents a WhatsApp order intent and its handling by staff
type Order struct {
	ID                   uuid.UUID
	ProductID            *uuid.UUID
	ProductName          string
	Price                decimal.Decimal
	Quantity             int
	CustomerPhone        *string
	Status               OrderStatus
	AdminNotes           *string
	ZohoSalesOrderID     *string
	ZohoSalesOrderNumber *string
	ZohoSyncError        *string
	// ZohoSyncedAt guards against pushing the same order to Zoho twice
	ZohoSyncedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Customer is a storefront shopper identified by phone number
type Customer struct {
	ID           uuid.UUID
	Phone        string
	Name         string
	Address      *string
	OTPHash      *string
	OTPExpiresAt *time.Time
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StaffUser is an admin dashboard account
type StaffUser struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         StaffRole
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Setting is one row of the store_settings key/value table.
// Version increases on every write and backs compare-and-set updates.
type Setting struct {
	Key       string
	Value     string
	Version   int64
	UpdatedAt time.Time
}

// TokenRecord is the Zoho OAuth state persisted in store_settings
type TokenRecord struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	// AccessTokenVersion is the settings version of the access token row when read
	AccessTokenVersion int64
}

// SyncResult summarizes one full catalog sync
type SyncResult struct {
	Total   int      `json:"total"`
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// SalesOrderRef identifies a sales order created in Zoho
type SalesOrderRef struct {
	ID     string
	Number string
}

// IdempotencyKey stores idempotency information for order intent requests
type IdempotencyKey struct {
	Key         string
	OrderID     uuid.UUID
	RequestHash string
	CreatedAt   time.Time
}

// ProductView is a single storefront product page view
type ProductView struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	ViewedAt  time.Time
}

// ProductSort enumerates storefront listing orders
type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
	ProductSortName      ProductSort = "name"
)

// ProductFilter narrows a product listing
type ProductFilter struct {
	Query      string
	CategoryID *uuid.UUID
	// CategorySlug is ignored when no category has that slug
	CategorySlug    string
	AgeRange        string
	Brand           string // case-insensitive exact match
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	InStock         bool
	Featured        *bool
	IncludeInactive bool
	Sort            ProductSort
	Limit           int
	Offset          int
}

// OrderFilter narrows an order listing
type OrderFilter struct {
	Status OrderStatus
	Limit  int
	Offset int
}

// DashboardStats aggregates counts for the admin dashboard
type DashboardStats struct {
	TotalProducts   int                 `json:"total_products"`
	ActiveProducts  int                 `json:"active_products"`
	LinkedProducts  int                 `json:"linked_products"`
	OrdersByStatus  map[OrderStatus]int `json:"orders_by_status"`
	ViewsLast30Days int                 `json:"views_last_30_days"`
	Customers       int                 `json:"customers"`
}
