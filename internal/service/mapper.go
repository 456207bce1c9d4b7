package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/zoho"
)

// DefaultCompareAtLabel is the custom field label read as the compare-at price
const DefaultCompareAtLabel = "Compare At Price"

const slugSuffixLen = 6

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// MapItemToProduct converts a Zoho item into the Zoho-owned fields of a product.
// Locally-owned fields are left zero; the repository decides whether they are written.
func MapItemToProduct(item zoho.Item, compareAtLabel string, now time.Time) *domain.Product {
	if compareAtLabel == "" {
		compareAtLabel = DefaultCompareAtLabel
	}

	itemID := item.ItemID
	synced := now
	p := &domain.Product{
		Name:               item.Name,
		Slug:               GenerateSlug(item.Name, item.ItemID),
		Description:        emptyToNil(item.Description),
		Price:              item.Rate,
		CompareAtPrice:     compareAtPrice(item.CustomFields, compareAtLabel),
		SKU:                emptyToNil(item.SKU),
		StockQuantity:      int(item.ActualAvailableStock),
		IsActive:           item.Status == "active",
		ZohoItemID:         &itemID,
		LastSyncedFromZoho: &synced,
		Tags:               []string{},
	}
	return p
}

// GenerateSlug lowercases name, collapses every run of non-alphanumerics into a
// single dash and appends the last six characters of the item id.
func GenerateSlug(name, itemID string) string {
	base := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(name), "-"), "-")

	suffix := itemID
	if len(suffix) > slugSuffixLen {
		suffix = suffix[len(suffix)-slugSuffixLen:]
	}

	if base == "" {
		return suffix
	}
	if suffix == "" {
		return base
	}
	return base + "-" + suffix
}

func compareAtPrice(fields []zoho.CustomField, label string) decimal.NullDecimal {
	for _, f := range fields {
		if f.Label != label {
			continue
		}
		switch v := f.Value.(type) {
		case float64:
			return decimal.NewNullDecimal(decimal.NewFromFloat(v))
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				return decimal.NullDecimal{}
			}
			d, err := decimal.NewFromString(s)
			if err != nil {
				return decimal.NullDecimal{}
			}
			return decimal.NewNullDecimal(d)
		default:
			return decimal.NullDecimal{}
		}
	}
	return decimal.NullDecimal{}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
