package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiefcousin/toybox/internal/zoho"
)

func strPtr(s string) *string { return &s }

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name   string
		itemID string
		want   string
	}{
		{"Wooden Train Set", "abc123def456", "wooden-train-set-def456"},
		{"  LEGO® City -- Fire Truck!! ", "9000001234567", "lego-city-fire-truck-234567"},
		{"Ball", "42", "ball-42"},
		{"***", "abcdefgh", "cdefgh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateSlug(tt.name, tt.itemID))
		})
	}
}

func TestGenerateSlug_SameNameDifferentItems(t *testing.T) {
	a := GenerateSlug("Rubber Duck", "1000000111111")
	b := GenerateSlug("Rubber Duck", "1000000222222")
	assert.NotEqual(t, a, b)
}

func TestMapItemToProduct(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	item := zoho.Item{
		ItemID:               "abc123def456",
		Name:                 "Wooden Train Set",
		Description:          strPtr("Twelve pieces"),
		Rate:                 decimal.RequireFromString("24.50"),
		SKU:                  strPtr("WT-12"),
		ActualAvailableStock: 7,
		Status:               "active",
		CustomFields: []zoho.CustomField{
			{Label: "Compare At Price", Value: "29.99"},
		},
	}

	p := MapItemToProduct(item, "", now)

	assert.Equal(t, "Wooden Train Set", p.Name)
	assert.Equal(t, "wooden-train-set-def456", p.Slug)
	require.NotNil(t, p.Description)
	assert.Equal(t, "Twelve pieces", *p.Description)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("24.5")))
	require.True(t, p.CompareAtPrice.Valid)
	assert.True(t, p.CompareAtPrice.Decimal.Equal(decimal.RequireFromString("29.99")))
	require.NotNil(t, p.SKU)
	assert.Equal(t, "WT-12", *p.SKU)
	assert.Equal(t, 7, p.StockQuantity)
	assert.True(t, p.IsActive)
	require.NotNil(t, p.ZohoItemID)
	assert.Equal(t, "abc123def456", *p.ZohoItemID)
	require.NotNil(t, p.LastSyncedFromZoho)
	assert.Equal(t, now, *p.LastSyncedFromZoho)
}

func TestMapItemToProduct_EmptyOptionalFields(t *testing.T) {
	item := zoho.Item{
		ItemID:      "x1",
		Name:        "Kite",
		Description: strPtr(""),
		SKU:         strPtr(""),
		Status:      "inactive",
	}

	p := MapItemToProduct(item, "", time.Now())

	assert.Nil(t, p.Description)
	assert.Nil(t, p.SKU)
	assert.False(t, p.IsActive)
	assert.False(t, p.CompareAtPrice.Valid)
}

func TestMapItemToProduct_CompareAtPrice(t *testing.T) {
	tests := []struct {
		name   string
		fields []zoho.CustomField
		valid  bool
		want   string
	}{
		{"missing field", nil, false, ""},
		{"null value", []zoho.CustomField{{Label: "Compare At Price", Value: nil}}, false, ""},
		{"empty string", []zoho.CustomField{{Label: "Compare At Price", Value: ""}}, false, ""},
		{"unparseable", []zoho.CustomField{{Label: "Compare At Price", Value: "n/a"}}, false, ""},
		{"number", []zoho.CustomField{{Label: "Compare At Price", Value: float64(19.5)}}, true, "19.5"},
		{"string", []zoho.CustomField{{Label: "Compare At Price", Value: " 12.00 "}}, true, "12"},
		{"other label only", []zoho.CustomField{{Label: "compare at price", Value: "5"}}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := MapItemToProduct(zoho.Item{ItemID: "i1", Name: "Toy", CustomFields: tt.fields}, "", time.Now())
			assert.Equal(t, tt.valid, p.CompareAtPrice.Valid)
			if tt.valid {
				assert.True(t, p.CompareAtPrice.Decimal.Equal(decimal.RequireFromString(tt.want)))
			}
		})
	}
}

func TestMapItemToProduct_ConfiguredLabel(t *testing.T) {
	item := zoho.Item{
		ItemID: "i1",
		Name:   "Toy",
		CustomFields: []zoho.CustomField{
			{Label: "Compare At Price", Value: "10"},
			{Label: "MSRP", Value: "15"},
		},
	}

	p := MapItemToProduct(item, "MSRP", time.Now())

	require.True(t, p.CompareAtPrice.Valid)
	assert.True(t, p.CompareAtPrice.Decimal.Equal(decimal.NewFromInt(15)))
}
