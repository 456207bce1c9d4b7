package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/metrics"
	"github.com/chiefcousin/toybox/internal/repository"
	"github.com/chiefcousin/toybox/internal/zoho"
)

const (
	defaultStoreName = "ToyBox"
	lineItemUnit     = "pcs"
)

// Order push results recorded in metrics
const (
	pushSuccess = "success"
	pushFailed  = "failed"
	pushSkipped = "skipped"
)

// SalesOrderCreator creates sales orders in Zoho Inventory
type SalesOrderCreator interface {
	CreateSalesOrder(ctx context.Context, payload zoho.CreateSalesOrderPayload) (*zoho.SalesOrder, error)
}

// OrderPushService turns confirmed orders into Zoho sales orders
type OrderPushService struct {
	salesOrders SalesOrderCreator
	connection  ConnectionChecker
	orders      repository.OrderRepository
	products    repository.ProductRepository
	settings    repository.SettingsRepository
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewOrderPushService creates an order push service
func NewOrderPushService(
	salesOrders SalesOrderCreator,
	connection ConnectionChecker,
	repos *repository.Repositories,
	m *metrics.Metrics,
	logger *zap.Logger,
) *OrderPushService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderPushService{
		salesOrders: salesOrders,
		connection:  connection,
		orders:      repos.Order,
		products:    repos.Product,
		settings:    repos.Settings,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// BuildSalesOrderPayload builds the single-line sales order for an order.
// itemID links the line to a Zoho item and may be empty.
func BuildSalesOrderPayload(order *domain.Order, itemID, storeName string) zoho.CreateSalesOrderPayload {
	customer := "WhatsApp Customer"
	if order.CustomerPhone != nil && *order.CustomerPhone != "" {
		customer = "WhatsApp " + *order.CustomerPhone
	}
	if storeName == "" {
		storeName = defaultStoreName
	}

	id := order.ID.String()
	return zoho.CreateSalesOrderPayload{
		CustomerName:    customer,
		ReferenceNumber: id,
		Notes:           fmt.Sprintf("%s WhatsApp order. ID: %s", storeName, id),
		LineItems: []zoho.SalesOrderLineItem{{
			ItemID:   itemID,
			Name:     order.ProductName,
			Rate:     order.Price,
			Quantity: order.Quantity,
			Unit:     lineItemUnit,
		}},
	}
}

// PushOrder creates the sales order in Zoho and returns its id and number
func (s *OrderPushService) PushOrder(ctx context.Context, order *domain.Order, itemID string) (*domain.SalesOrderRef, error) {
	payload := BuildSalesOrderPayload(order, itemID, s.storeName(ctx))
	so, err := s.salesOrders.CreateSalesOrder(ctx, payload)
	if err != nil {
		return nil, err
	}
	return &domain.SalesOrderRef{ID: so.SalesOrderID, Number: so.SalesOrderNumber}, nil
}

// RecordSyncResult stores the outcome of a push on the order row. A failure
// releases the push claim so confirming again retries.
func (s *OrderPushService) RecordSyncResult(ctx context.Context, orderID uuid.UUID, ref *domain.SalesOrderRef, pushErr error) error {
	if pushErr != nil {
		return s.orders.ReleaseZohoSync(ctx, orderID, pushErr.Error())
	}
	if err := s.orders.SetZohoSalesOrder(ctx, orderID, *ref); err != nil {
		// the sales order exists in Zoho; keep the claim so it is not created twice
		msg := fmt.Sprintf("sales order %s created but not recorded: %v", ref.Number, err)
		if markErr := s.orders.SetZohoSyncError(ctx, orderID, msg); markErr != nil {
			s.logger.Error("Zoho order push: failed to record sync error",
				zap.String("order_id", orderID.String()),
				zap.String("salesorder_number", ref.Number),
				zap.Error(markErr),
			)
		}
		return err
	}
	return nil
}

// PushOnConfirm pushes a just-confirmed order to Zoho at most once. Failures are
// logged and recorded on the order; they never propagate to the caller.
func (s *OrderPushService) PushOnConfirm(ctx context.Context, orderID uuid.UUID) {
	if s.salesOrders == nil || !s.connection.IsConnected(ctx) {
		return
	}

	claimed, err := s.orders.ClaimZohoSync(ctx, orderID, s.now())
	if err != nil {
		s.logger.Error("Zoho order push: failed to claim order", zap.String("order_id", orderID.String()), zap.Error(err))
		s.metrics.OrderPush(pushFailed)
		return
	}
	if !claimed {
		s.logger.Debug("Zoho order push: already synced", zap.String("order_id", orderID.String()))
		s.metrics.OrderPush(pushSkipped)
		return
	}

	ref, pushErr := s.push(ctx, orderID)
	if pushErr != nil {
		s.logger.Error("Zoho order push failed", zap.String("order_id", orderID.String()), zap.Error(pushErr))
		s.metrics.OrderPush(pushFailed)
	}

	// the push already happened; record it even if the request is gone
	if err := s.RecordSyncResult(context.WithoutCancel(ctx), orderID, ref, pushErr); err != nil {
		s.logger.Error("Zoho order push: failed to record result", zap.String("order_id", orderID.String()), zap.Error(err))
	}
	if pushErr == nil {
		s.metrics.OrderPush(pushSuccess)
		s.logger.Info("Zoho sales order created",
			zap.String("order_id", orderID.String()),
			zap.String("salesorder_id", ref.ID),
			zap.String("salesorder_number", ref.Number),
		)
	}
}

func (s *OrderPushService) push(ctx context.Context, orderID uuid.UUID) (*domain.SalesOrderRef, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	itemID := ""
	if order.ProductID != nil {
		p, err := s.products.GetByID(ctx, *order.ProductID)
		if err != nil {
			// the product may have been removed; push the line without a link
			s.logger.Warn("Zoho order push: product lookup failed", zap.String("order_id", orderID.String()), zap.Error(err))
		} else if p.ZohoItemID != nil {
			itemID = *p.ZohoItemID
		}
	}
	return s.PushOrder(ctx, order, itemID)
}

func (s *OrderPushService) storeName(ctx context.Context) string {
	st, err := s.settings.Get(ctx, domain.SettingStoreName)
	if err != nil || st == nil || st.Value == "" {
		return defaultStoreName
	}
	return st.Value
}
