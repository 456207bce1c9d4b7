package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chiefcousin/toybox/internal/config"
	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/metrics"
	"github.com/chiefcousin/toybox/internal/repository"
	"github.com/chiefcousin/toybox/internal/repository/memory"
	apperrors "github.com/chiefcousin/toybox/pkg/errors"
)

type orderFixture struct {
	repos   *repository.Repositories
	sales   *fakeSalesOrders
	metrics *metrics.Metrics
	push    *OrderPushService
	orders  *OrderService
}

func newOrderFixture(t *testing.T, connected bool) *orderFixture {
	t.Helper()
	repos := memory.NewRepositories()
	sales := &fakeSalesOrders{}
	m := metrics.New()
	push := NewOrderPushService(sales, fakeConnection(connected), repos, m, zap.NewNop())
	store := config.StoreConfig{SiteURL: "https://toybox.example", WhatsAppNumber: "+1 555 0100"}
	return &orderFixture{
		repos:   repos,
		sales:   sales,
		metrics: m,
		push:    push,
		orders:  NewOrderService(repos, push, store, zap.NewNop()),
	}
}

func (f *orderFixture) linkedProduct(t *testing.T, itemID string) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Name:       "Wooden Train Set",
		Slug:       "wooden-train-set-def456",
		Price:      decimal.RequireFromString("24.50"),
		IsActive:   true,
		ZohoItemID: &itemID,
	}
	require.NoError(t, f.repos.Product.Create(context.Background(), p))
	return p
}

func (f *orderFixture) clickedOrder(t *testing.T, productID *uuid.UUID) *domain.Order {
	t.Helper()
	res, err := f.orders.RecordIntent(context.Background(), OrderIntentRequest{
		ProductID:   productID,
		ProductName: "Wooden Train Set",
		Price:       decimal.RequireFromString("24.50"),
		Quantity:    2,
	}, "", "")
	require.NoError(t, err)
	return res.Order
}

func statusPtr(s domain.OrderStatus) *domain.OrderStatus { return &s }

func TestRecordIntent(t *testing.T) {
	f := newOrderFixture(t, true)
	p := f.linkedProduct(t, "abc123def456")

	res, err := f.orders.RecordIntent(context.Background(), OrderIntentRequest{
		ProductID:   &p.ID,
		ProductName: p.Name,
		Price:       p.Price,
	}, "", "")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusClicked, res.Order.Status)
	assert.Equal(t, 1, res.Order.Quantity)
	assert.True(t, strings.HasPrefix(res.WhatsAppURL, "https://wa.me/15550100?text="))
	assert.Contains(t, res.WhatsAppURL, "wooden-train-set-def456")
	assert.False(t, res.Replayed)
}

func TestRecordIntent_Validation(t *testing.T) {
	f := newOrderFixture(t, true)
	unknown := uuid.New()

	tests := []struct {
		name string
		req  OrderIntentRequest
	}{
		{"missing name", OrderIntentRequest{Price: decimal.NewFromInt(1)}},
		{"missing price", OrderIntentRequest{ProductName: "Kite"}},
		{"unknown product", OrderIntentRequest{ProductID: &unknown, ProductName: "Kite", Price: decimal.NewFromInt(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.RecordIntent(context.Background(), tt.req, "", "")
			var verr *apperrors.ErrValidation
			assert.True(t, errors.As(err, &verr))
		})
	}
}

func TestRecordIntent_StoreNumberSetting(t *testing.T) {
	f := newOrderFixture(t, true)
	require.NoError(t, f.repos.Settings.Set(context.Background(), domain.SettingWhatsAppNumber, "44 20 7946 0000"))

	res, err := f.orders.RecordIntent(context.Background(), OrderIntentRequest{
		ProductName: "Kite",
		Price:       decimal.NewFromInt(9),
	}, "", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.WhatsAppURL, "https://wa.me/442079460000?text="))
}

func TestRecordIntent_IdempotencyKeyRace(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t, true)
	req := OrderIntentRequest{ProductName: "Kite", Price: decimal.NewFromInt(9)}

	first, err := f.orders.RecordIntent(ctx, req, "key-1", "hash")
	require.NoError(t, err)

	// a second request that missed the key check in middleware
	second, err := f.orders.RecordIntent(ctx, req, "key-1", "hash")
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)

	orders, _, err := f.repos.Order.List(ctx, domain.OrderFilter{Status: domain.OrderStatusCancelled})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].AdminNotes)
	assert.Contains(t, *orders[0].AdminNotes, first.Order.ID.String())
}

func TestUpdateOrder_NothingToUpdate(t *testing.T) {
	f := newOrderFixture(t, true)
	o := f.clickedOrder(t, nil)

	_, err := f.orders.UpdateOrder(context.Background(), o.ID, UpdateOrderRequest{})
	var verr *apperrors.ErrValidation
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Nothing to update", verr.Message)
}

func TestUpdateOrder_Transitions(t *testing.T) {
	tests := []struct {
		name  string
		path  []domain.OrderStatus
		to    domain.OrderStatus
		valid bool
	}{
		{"clicked to confirmed", nil, domain.OrderStatusConfirmed, true},
		{"clicked to fulfilled", nil, domain.OrderStatusFulfilled, true},
		{"clicked to cancelled", nil, domain.OrderStatusCancelled, true},
		{"confirmed to fulfilled", []domain.OrderStatus{domain.OrderStatusConfirmed}, domain.OrderStatusFulfilled, true},
		{"confirmed to clicked", []domain.OrderStatus{domain.OrderStatusConfirmed}, domain.OrderStatusClicked, false},
		{"fulfilled is terminal", []domain.OrderStatus{domain.OrderStatusFulfilled}, domain.OrderStatusCancelled, false},
		{"cancelled is terminal", []domain.OrderStatus{domain.OrderStatusCancelled}, domain.OrderStatusConfirmed, false},
		{"same status", []domain.OrderStatus{domain.OrderStatusConfirmed}, domain.OrderStatusConfirmed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newOrderFixture(t, false)
			o := f.clickedOrder(t, nil)
			for _, s := range tt.path {
				_, err := f.orders.UpdateOrder(ctx, o.ID, UpdateOrderRequest{Status: statusPtr(s)})
				require.NoError(t, err)
			}

			got, err := f.orders.UpdateOrder(ctx, o.ID, UpdateOrderRequest{Status: statusPtr(tt.to)})
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got.Status)
				return
			}
			var terr *apperrors.ErrInvalidStateTransition
			assert.True(t, errors.As(err, &terr))
		})
	}
}

func TestUpdateOrder_InvalidStatus(t *testing.T) {
	f := newOrderFixture(t, false)
	o := f.clickedOrder(t, nil)

	_, err := f.orders.UpdateOrder(context.Background(), o.ID, UpdateOrderRequest{Status: statusPtr("shipped")})
	var verr *apperrors.ErrValidation
	assert.True(t, errors.As(err, &verr))
}

func TestUpdateOrder_NotesOnly(t *testing.T) {
	f := newOrderFixture(t, true)
	o := f.clickedOrder(t, nil)
	notes := "customer will pick up"

	got, err := f.orders.UpdateOrder(context.Background(), o.ID, UpdateOrderRequest{AdminNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusClicked, got.Status)
	require.NotNil(t, got.AdminNotes)
	assert.Equal(t, notes, *got.AdminNotes)
	assert.Equal(t, 0, f.sales.count())
}

func TestUpdateOrder_ConfirmPushesSalesOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t, true)
	p := f.linkedProduct(t, "abc123def456")
	o := f.clickedOrder(t, &p.ID)

	got, err := f.orders.UpdateOrder(ctx, o.ID, UpdateOrderRequest{Status: statusPtr(domain.OrderStatusConfirmed)})
	require.NoError(t, err)

	require.Equal(t, 1, f.sales.count())
	payload := f.sales.payloads[0]
	assert.Equal(t, "WhatsApp Customer", payload.CustomerName)
	assert.Equal(t, o.ID.String(), payload.ReferenceNumber)
	assert.Equal(t, "ToyBox WhatsApp order. ID: "+o.ID.String(), payload.Notes)
	require.Len(t, payload.LineItems, 1)
	assert.Equal(t, "abc123def456", payload.LineItems[0].ItemID)
	assert.Equal(t, 2, payload.LineItems[0].Quantity)
	assert.Equal(t, "pcs", payload.LineItems[0].Unit)

	require.NotNil(t, got.ZohoSalesOrderID)
	assert.Equal(t, "so-1", *got.ZohoSalesOrderID)
	require.NotNil(t, got.ZohoSalesOrderNumber)
	assert.Equal(t, "SO-00001", *got.ZohoSalesOrderNumber)
	assert.Nil(t, got.ZohoSyncError)
	assert.NotNil(t, got.ZohoSyncedAt)
	assert.Equal(t, float64(1), f.metrics.OrderPushCount("success"))
}

func TestUpdateOrder_ConfirmTwiceCreatesOneSalesOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t, true)
	o := f.clickedOrder(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.orders.UpdateOrder(ctx, o.ID, UpdateOrderRequest{Status: statusPtr(domain.OrderStatusConfirmed)})
		}()
	}
	wg.Wait()

	_, err := f.orders.UpdateOrder(ctx, o.ID, UpdateOrderRequest{Status: statusPtr(domain.OrderStatusConfirmed)})
	require.NoError(t, err)

	assert.Equal(t, 1, f.sales.count())
}

func TestUpdateOrder_PushFailureIsRecordedAndRetried(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t, true)
	o := f.clickedOrder(t, nil)
	f.sales.err = errors.New("zoho API error 1001: rate limit")

	got, err := f.orders.UpdateOrder(ctx, o.ID, UpdateOrderRequest{Status: statusPtr(domain.OrderStatusConfirmed)})
	require.NoError(t, err, "a failed push must not fail the status change")
	assert.Equal(t, domain.OrderStatusConfirmed, got.Status)
	require.NotNil(t, got.ZohoSyncError)
	assert.Contains(t, *got.ZohoSyncError, "rate limit")
	assert.Nil(t, got.ZohoSyncedAt)
	assert.Nil(t, got.ZohoSalesOrderID)

	f.sales.err = nil
	got, err = f.orders.UpdateOrder(ctx, o.ID, UpdateOrderRequest{Status: statusPtr(domain.OrderStatusConfirmed)})
	require.NoError(t, err)
	require.NotNil(t, got.ZohoSalesOrderID)
	assert.Nil(t, got.ZohoSyncError)
	assert.Equal(t, 1, f.sales.count())
	assert.Equal(t, float64(1), f.metrics.OrderPushCount("failed"))
}

func TestUpdateOrder_NotConnectedSkipsPush(t *testing.T) {
	f := newOrderFixture(t, false)
	o := f.clickedOrder(t, nil)

	got, err := f.orders.UpdateOrder(context.Background(), o.ID, UpdateOrderRequest{Status: statusPtr(domain.OrderStatusConfirmed)})
	require.NoError(t, err)
	assert.Equal(t, 0, f.sales.count())
	assert.Nil(t, got.ZohoSyncedAt)
}

func TestBuildSalesOrderPayload_CustomerPhone(t *testing.T) {
	phone := "+15550100"
	o := &domain.Order{
		ID:            uuid.New(),
		ProductName:   "Kite",
		Price:         decimal.NewFromInt(9),
		Quantity:      1,
		CustomerPhone: &phone,
	}

	p := BuildSalesOrderPayload(o, "", "Kaira")

	assert.Equal(t, "WhatsApp +15550100", p.CustomerName)
	assert.Equal(t, "Kaira WhatsApp order. ID: "+o.ID.String(), p.Notes)
	assert.Empty(t, p.LineItems[0].ItemID)
}

// unrecordableOrders fails every write of a push outcome
type unrecordableOrders struct {
	repository.OrderRepository
}

func (unrecordableOrders) SetZohoSalesOrder(context.Context, uuid.UUID, domain.SalesOrderRef) error {
	return errors.New("connection reset")
}

func (unrecordableOrders) SetZohoSyncError(context.Context, uuid.UUID, string) error {
	return errors.New("connection reset")
}

func TestRecordSyncResult_LogsUnrecordedSalesOrder(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	repos := memory.NewRepositories()
	repos.Order = unrecordableOrders{OrderRepository: repos.Order}
	push := NewOrderPushService(&fakeSalesOrders{}, fakeConnection(true), repos, nil, zap.New(core))

	err := push.RecordSyncResult(context.Background(), uuid.New(), &domain.SalesOrderRef{ID: "so-1", Number: "SO-00001"}, nil)
	require.Error(t, err)

	entries := logs.FilterMessage("Zoho order push: failed to record sync error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "SO-00001", entries[0].ContextMap()["salesorder_number"])
}
