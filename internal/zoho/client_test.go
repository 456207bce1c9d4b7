package zoho

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/config"
	"github.com/chiefcousin/toybox/pkg/errors"
)

type staticToken string

func (s staticToken) ValidAccessToken(context.Context) (string, error) { return string(s), nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.ZohoConfig{APIBase: srv.URL, OrgID: "org-1"}, staticToken("tok"), zap.NewNop())
}

func TestClient_InjectsAuthAndOrganization(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Zoho-oauthtoken tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "org-1", r.URL.Query().Get("organization_id"))
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "200", r.URL.Query().Get("per_page"))

		w.Write([]byte(`{
			"code": 0, "message": "success",
			"items": [{"item_id": "1", "name": "Ball", "rate": 4.5, "actual_available_stock": 7, "status": "active"}],
			"page_context": {"page": 2, "per_page": 200, "has_more_page": true}
		}`))
	})

	resp, err := c.ListItems(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.HasMore())
	assert.True(t, resp.Items[0].Rate.Equal(decimal.RequireFromString("4.5")))
}

func TestClient_NonZeroCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 1002, "message": "Item does not exist."}`))
	})

	_, err := c.GetItem(context.Background(), "missing")
	var apiErr *errors.ErrVendorAPI
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 1002, apiErr.Code)
	assert.Equal(t, "Item does not exist.", apiErr.Message)
}

func TestClient_Non2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":57,"message":"not authorized"}`))
	})

	_, err := c.ListItems(context.Background(), 1, 200)
	var apiErr *errors.ErrVendorAPI
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Message, "not authorized")
}

func TestClient_CreateSalesOrderSendsJSONString(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/salesorders", r.URL.Path)

		raw, _ := io.ReadAll(r.Body)
		var outer map[string]string
		require.NoError(t, json.Unmarshal(raw, &outer))

		var payload CreateSalesOrderPayload
		require.NoError(t, json.Unmarshal([]byte(outer["JSONString"]), &payload))
		assert.Equal(t, "WhatsApp +15551234", payload.CustomerName)
		require.Len(t, payload.LineItems, 1)
		assert.Equal(t, "pcs", payload.LineItems[0].Unit)

		w.Write([]byte(`{"code":0,"message":"ok","salesorder":{"salesorder_id":"SO-1","salesorder_number":"SO-00001","status":"draft"}}`))
	})

	so, err := c.CreateSalesOrder(context.Background(), CreateSalesOrderPayload{
		CustomerName: "WhatsApp +15551234",
		LineItems: []SalesOrderLineItem{
			{Name: "Ball", Rate: decimal.NewFromInt(5), Quantity: 1, Unit: "pcs"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "SO-1", so.SalesOrderID)
	assert.Equal(t, "SO-00001", so.SalesOrderNumber)
}

func TestClient_CreateSalesOrderWithoutOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"message":"ok"}`))
	})

	_, err := c.CreateSalesOrder(context.Background(), CreateSalesOrderPayload{CustomerName: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no salesorder")
}
