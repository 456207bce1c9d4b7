package zoho

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultPerPage is the largest page size Zoho accepts for /items
const DefaultPerPage = 200

// ListItems fetches one page of items (1-based page)
func (c *Client) ListItems(ctx context.Context, page, perPage int) (*ItemsResponse, error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var out ItemsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/items", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetItem fetches a single item by id
func (c *Client) GetItem(ctx context.Context, itemID string) (*Item, error) {
	var out ItemResponse
	if err := c.doJSON(ctx, http.MethodGet, "/items/"+url.PathEscape(itemID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}
