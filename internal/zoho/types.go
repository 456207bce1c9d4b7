package zoho

import (
	"github.com/shopspring/decimal"
)

// Envelope is the code/message pair every Zoho Inventory response carries.
// Code 0 means success.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e Envelope) envelope() Envelope { return e }

// CustomField is a user-defined item field. Value may be a string, a number or null.
type CustomField struct {
	CustomFieldID string `json:"customfield_id"`
	Label         string `json:"label"`
	Value         any    `json:"value"`
}

// Tag is a Zoho reporting tag attached to an item
type Tag struct {
	TagID         string `json:"tag_id"`
	TagOptionName string `json:"tag_option_name"`
}

// Item is a Zoho Inventory item as returned by GET /items and GET /items/{id}
type Item struct {
	ItemID      string          `json:"item_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Rate        decimal.Decimal `json:"rate"`
	// PurchaseRate is the cost price; not mapped to products
	PurchaseRate          decimal.Decimal `json:"purchase_rate"`
	SKU                   *string         `json:"sku"`
	ActualAvailableStock  float64         `json:"actual_available_stock"`
	AvailableForSaleStock float64         `json:"available_for_sale_stock"`
	Status                string          `json:"status"`
	CustomFields          []CustomField   `json:"custom_fields,omitempty"`
	ImageDocumentID       string          `json:"image_document_id,omitempty"`
	Tags                  []Tag           `json:"tags,omitempty"`
}

// PageContext describes list pagination
type PageContext struct {
	Page        int  `json:"page"`
	PerPage     int  `json:"per_page"`
	HasMorePage bool `json:"has_more_page"`
	Total       int  `json:"total"`
}

// ItemsResponse is the body of GET /items
type ItemsResponse struct {
	Envelope
	Items       []Item       `json:"items"`
	PageContext *PageContext `json:"page_context,omitempty"`
}

// HasMore reports whether another page should be requested
func (r *ItemsResponse) HasMore() bool {
	return r.PageContext != nil && r.PageContext.HasMorePage
}

// ItemResponse is the body of GET /items/{id}
type ItemResponse struct {
	Envelope
	Item Item `json:"item"`
}

// SalesOrderLineItem is one line of a sales order. ItemID links the line to a
// Zoho item so stock is tracked; it is omitted for products created locally.
type SalesOrderLineItem struct {
	ItemID      string          `json:"item_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Rate        decimal.Decimal `json:"rate"`
	Quantity    int             `json:"quantity"`
	Unit        string          `json:"unit,omitempty"`
}

// CreateSalesOrderPayload is the sales order sent inside the JSONString form field
type CreateSalesOrderPayload struct {
	CustomerName    string               `json:"customer_name"`
	ReferenceNumber string               `json:"reference_number,omitempty"`
	LineItems       []SalesOrderLineItem `json:"line_items"`
	Notes           string               `json:"notes,omitempty"`
}

// SalesOrder is the created sales order
type SalesOrder struct {
	SalesOrderID     string `json:"salesorder_id"`
	SalesOrderNumber string `json:"salesorder_number"`
	Status           string `json:"status"`
}

// SalesOrderResponse is the body of POST /salesorders
type SalesOrderResponse struct {
	Envelope
	SalesOrder *SalesOrder `json:"salesorder,omitempty"`
}

// WebhookPayload is what Zoho posts for item events
type WebhookPayload struct {
	EventType      string `json:"event_type"`
	OrganizationID string `json:"organization_id"`
	Data           struct {
		Item Item `json:"item"`
	} `json:"data"`
}

// tokenResponse is the body of the accounts token endpoint
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	APIDomain    string `json:"api_domain"`
	TokenType    string `json:"token_type"`
	Error        string `json:"error"`
}
