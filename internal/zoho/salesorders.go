package zoho

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// CreateSalesOrder creates a sales order. Zoho expects the order JSON
// serialized into the JSONString field of the request body.
func (c *Client) CreateSalesOrder(ctx context.Context, payload CreateSalesOrderPayload) (*SalesOrder, error) {
	inner, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sales order: %w", err)
	}

	var out SalesOrderResponse
	body := map[string]string{"JSONString": string(inner)}
	if err := c.doJSON(ctx, http.MethodPost, "/salesorders", nil, body, &out); err != nil {
		return nil, err
	}
	if out.SalesOrder == nil {
		return nil, fmt.Errorf("zoho returned no salesorder in response")
	}
	return out.SalesOrder, nil
}
