package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chiefcousin/toybox/internal/domain"
)

// OrderIntentRequest is logged when a shopper taps the WhatsApp order button
type OrderIntentRequest struct {
	ProductID     *uuid.UUID      `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	CustomerPhone *string         `json:"customer_phone,omitempty"`
}

// OrderIntentResult is the stored order and the deep link that opens the chat
type OrderIntentResult struct {
	Order       *domain.Order
	WhatsAppURL string
	// Replayed is set when an Idempotency-Key matched an earlier request
	Replayed bool
}

// UpdateOrderRequest is a staff edit of an order. Absent fields are left unchanged.
type UpdateOrderRequest struct {
	Status     *domain.OrderStatus `json:"status"`
	AdminNotes *string             `json:"admin_notes"`
}

// ProductInput creates or edits a product from the admin dashboard.
// Zoho-owned fields are ignored for products linked to a Zoho item.
type ProductInput struct {
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Description    *string          `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	SKU            *string          `json:"sku"`
	StockQuantity  int              `json:"stock_quantity"`
	CategoryID     *uuid.UUID       `json:"category_id"`
	Brand          *string          `json:"brand"`
	AgeRange       *string          `json:"age_range"`
	Tags           []string         `json:"tags"`
	IsFeatured     bool             `json:"is_featured"`
	IsActive       *bool            `json:"is_active"`
}

// ProductResponse is the JSON shape of a product
type ProductResponse struct {
	ID                 uuid.UUID        `json:"id"`
	Name               string           `json:"name"`
	Slug               string           `json:"slug"`
	Description        *string          `json:"description"`
	Price              decimal.Decimal  `json:"price"`
	CompareAtPrice     *decimal.Decimal `json:"compare_at_price"`
	SKU                *string          `json:"sku"`
	StockQuantity      int              `json:"stock_quantity"`
	CategoryID         *uuid.UUID       `json:"category_id"`
	Brand              *string          `json:"brand"`
	AgeRange           *string          `json:"age_range"`
	Tags               []string         `json:"tags"`
	IsFeatured         bool             `json:"is_featured"`
	IsActive           bool             `json:"is_active"`
	ZohoItemID         *string          `json:"zoho_item_id"`
	LastSyncedFromZoho *string          `json:"last_synced_from_zoho"`
}

// ToProductResponse converts a product for JSON output
func ToProductResponse(p *domain.Product) ProductResponse {
	r := ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         p.Price,
		SKU:           p.SKU,
		StockQuantity: p.StockQuantity,
		CategoryID:    p.CategoryID,
		Brand:         p.Brand,
		AgeRange:      p.AgeRange,
		Tags:          p.Tags,
		IsFeatured:    p.IsFeatured,
		IsActive:      p.IsActive,
		ZohoItemID:    p.ZohoItemID,
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if p.CompareAtPrice.Valid {
		d := p.CompareAtPrice.Decimal
		r.CompareAtPrice = &d
	}
	if p.LastSyncedFromZoho != nil {
		s := p.LastSyncedFromZoho.UTC().Format(time.RFC3339)
		r.LastSyncedFromZoho = &s
	}
	return r
}

// OrderResponse is the JSON shape of an order
type OrderResponse struct {
	ID                   uuid.UUID          `json:"id"`
	ProductID            *uuid.UUID         `json:"product_id"`
	ProductName          string             `json:"product_name"`
	Price                decimal.Decimal    `json:"price"`
	Quantity             int                `json:"quantity"`
	CustomerPhone        *string            `json:"customer_phone"`
	Status               domain.OrderStatus `json:"status"`
	AdminNotes           *string            `json:"admin_notes"`
	ZohoSalesOrderID     *string            `json:"zoho_salesorder_id"`
	ZohoSalesOrderNumber *string            `json:"zoho_salesorder_number"`
	ZohoSyncError        *string            `json:"zoho_sync_error"`
	ZohoSynced           bool               `json:"zoho_synced"`
	CreatedAt            string             `json:"created_at"`
	UpdatedAt            string             `json:"updated_at"`
}

// ToOrderResponse converts an order for JSON output
func ToOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:                   o.ID,
		ProductID:            o.ProductID,
		ProductName:          o.ProductName,
		Price:                o.Price,
		Quantity:             o.Quantity,
		CustomerPhone:        o.CustomerPhone,
		Status:               o.Status,
		AdminNotes:           o.AdminNotes,
		ZohoSalesOrderID:     o.ZohoSalesOrderID,
		ZohoSalesOrderNumber: o.ZohoSalesOrderNumber,
		ZohoSyncError:        o.ZohoSyncError,
		ZohoSynced:           o.ZohoSalesOrderID != nil,
		CreatedAt:            o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:            o.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// CustomerResponse is the JSON shape of a customer profile
type CustomerResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Address    *string   `json:"address"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  string    `json:"created_at"`
}

// ToCustomerResponse converts a customer for JSON output; OTP fields are never exposed
func ToCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:         c.ID,
		Name:       c.Name,
		Phone:      c.Phone,
		Address:    c.Address,
		IsVerified: c.IsVerified,
		CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// StaffResponse is the JSON shape of a staff account
type StaffResponse struct {
	ID       uuid.UUID        `json:"id"`
	Email    string           `json:"email"`
	Name     string           `json:"name"`
	Role     domain.StaffRole `json:"role"`
	IsActive bool             `json:"is_active"`
}

// ToStaffResponse converts a staff account for JSON output
func ToStaffResponse(u *domain.StaffUser) StaffResponse {
	return StaffResponse{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}
