package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// WhatsAppProduct is the part of a product quoted in an order message
type WhatsAppProduct struct {
	Name  string
	Price decimal.Decimal
	Slug  string
}

// BuildWhatsAppURL returns the wa.me deep link that opens a chat with the store
// pre-filled with the order message.
func BuildWhatsAppURL(phone string, product WhatsAppProduct, quantity int, siteURL string) string {
	productURL := strings.TrimSuffix(siteURL, "/") + "/products/" + product.Slug
	message := strings.Join([]string{
		"Hi! I'd like to order:",
		"",
		"*" + product.Name + "*",
		"Price: " + FormatPrice(product.Price),
		fmt.Sprintf("Quantity: %d", quantity),
		"",
		"Product link: " + productURL,
	}, "\n")

	return "https://wa.me/" + digitsOnly(phone) + "?text=" + encodeURIComponent(message)
}

// FormatPrice renders an amount as US dollars, e.g. $1,234.50
func FormatPrice(price decimal.Decimal) string {
	sign := ""
	if price.IsNegative() {
		sign = "-"
		price = price.Neg()
	}

	fixed := price.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// encodeURIComponent escapes like QueryEscape but keeps spaces as %20, which wa.me expects
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
