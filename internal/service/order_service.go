package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/config"
	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/repository"
	"github.com/chiefcousin/toybox/pkg/errors"
)

// OrderPusher pushes confirmed orders to Zoho
type OrderPusher interface {
	PushOnConfirm(ctx context.Context, orderID uuid.UUID)
}

// OrderService records WhatsApp order intents and applies staff edits
type OrderService struct {
	repos  *repository.Repositories
	pusher OrderPusher
	store  config.StoreConfig
	logger *zap.Logger
}

// NewOrderService creates a new order service. pusher may be nil when Zoho is not configured.
func NewOrderService(repos *repository.Repositories, pusher OrderPusher, store config.StoreConfig, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		repos:  repos,
		pusher: pusher,
		store:  store,
		logger: logger,
	}
}

// RecordIntent stores a "clicked" order and returns the WhatsApp link for it.
// When idempotencyKey is set the key is bound to the new order; a concurrent
// request that bound the key first wins and this order is cancelled as a duplicate.
func (s *OrderService) RecordIntent(ctx context.Context, req OrderIntentRequest, idempotencyKey, requestHash string) (*OrderIntentResult, error) {
	if req.ProductName == "" || req.Price.IsZero() {
		return nil, &errors.ErrValidation{Message: "Missing required fields"}
	}
	if req.Price.IsNegative() {
		return nil, &errors.ErrValidation{Message: "price must not be negative", Fields: map[string]string{"price": "negative"}}
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	var product *domain.Product
	if req.ProductID != nil {
		p, err := s.repos.Product.GetByID(ctx, *req.ProductID)
		if err != nil {
			if errors.IsNotFound(err) {
				return nil, &errors.ErrValidation{Message: "Unknown product_id", Fields: map[string]string{"product_id": "not found"}}
			}
			return nil, err
		}
		product = p
	}

	order := &domain.Order{
		ProductID:     req.ProductID,
		ProductName:   req.ProductName,
		Price:         req.Price,
		Quantity:      quantity,
		CustomerPhone: req.CustomerPhone,
		Status:        domain.OrderStatusClicked,
	}
	if err := s.repos.Order.Create(ctx, order); err != nil {
		s.logger.Error("Failed to log WhatsApp order", zap.Error(err))
		return nil, err
	}
	s.logger.Info("WhatsApp order logged", zap.String("order_id", order.ID.String()), zap.String("product_name", order.ProductName))

	if idempotencyKey != "" {
		err := s.repos.IdempotencyKey.Create(ctx, &domain.IdempotencyKey{
			Key:         idempotencyKey,
			OrderID:     order.ID,
			RequestHash: requestHash,
		})
		if errors.IsConflict(err) {
			return s.resolveDuplicate(ctx, order, idempotencyKey)
		}
		if err != nil {
			s.logger.Warn("Failed to store idempotency key", zap.String("key", idempotencyKey), zap.Error(err))
		}
	}

	return &OrderIntentResult{
		Order:       order,
		WhatsAppURL: s.whatsAppURL(ctx, order, product),
	}, nil
}

func (s *OrderService) resolveDuplicate(ctx context.Context, dup *domain.Order, key string) (*OrderIntentResult, error) {
	existing, err := s.repos.IdempotencyKey.GetByKey(ctx, key)
	if err != nil || existing == nil {
		return nil, &errors.ErrConflict{Message: "idempotency key already used"}
	}
	note := fmt.Sprintf("Duplicate of order %s", existing.OrderID)
	if err := s.repos.Order.UpdateStatusAndNotes(ctx, dup.ID, domain.OrderStatusCancelled, &note); err != nil {
		s.logger.Warn("Failed to cancel duplicate order", zap.String("order_id", dup.ID.String()), zap.Error(err))
	}
	return s.ReplayIntent(ctx, existing.OrderID)
}

// ReplayIntent returns the result of an earlier RecordIntent for the same idempotency key
func (s *OrderService) ReplayIntent(ctx context.Context, orderID uuid.UUID) (*OrderIntentResult, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	var product *domain.Product
	if order.ProductID != nil {
		if p, err := s.repos.Product.GetByID(ctx, *order.ProductID); err == nil {
			product = p
		}
	}
	return &OrderIntentResult{
		Order:       order,
		WhatsAppURL: s.whatsAppURL(ctx, order, product),
		Replayed:    true,
	}, nil
}

// whatsAppURL is empty when the store has no WhatsApp number configured
func (s *OrderService) whatsAppURL(ctx context.Context, order *domain.Order, product *domain.Product) string {
	phone := s.store.WhatsAppNumber
	if st, err := s.repos.Settings.Get(ctx, domain.SettingWhatsAppNumber); err == nil && st != nil && st.Value != "" {
		phone = st.Value
	}
	if phone == "" {
		return ""
	}

	wp := WhatsAppProduct{Name: order.ProductName, Price: order.Price}
	if product != nil {
		wp.Slug = product.Slug
	}
	return BuildWhatsAppURL(phone, wp, order.Quantity, s.store.SiteURL)
}

// UpdateOrder applies a status change and/or admin notes. Confirming an order
// pushes it to Zoho; a push failure is recorded on the order and does not fail the update.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID uuid.UUID, req UpdateOrderRequest) (*domain.Order, error) {
	if req.Status == nil && req.AdminNotes == nil {
		return nil, &errors.ErrValidation{Message: "Nothing to update"}
	}

	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	status := order.Status
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, &errors.ErrValidation{
				Message: fmt.Sprintf("invalid status: %s", *req.Status),
				Fields:  map[string]string{"status": "must be one of clicked, confirmed, fulfilled, cancelled"},
			}
		}
		if !order.Status.CanTransitionTo(*req.Status) {
			return nil, &errors.ErrInvalidStateTransition{From: order.Status, To: *req.Status}
		}
		status = *req.Status
	}

	notes := order.AdminNotes
	if req.AdminNotes != nil {
		notes = req.AdminNotes
	}

	if err := s.repos.Order.UpdateStatusAndNotes(ctx, orderID, status, notes); err != nil {
		return nil, err
	}
	if status != order.Status {
		s.logger.Info("Order status changed",
			zap.String("order_id", orderID.String()),
			zap.String("from", string(order.Status)),
			zap.String("to", string(status)),
		)
	}

	// re-confirming retries a failed push; the claim keeps it to one sales order
	if req.Status != nil && status == domain.OrderStatusConfirmed && s.pusher != nil {
		s.pusher.PushOnConfirm(ctx, orderID)
	}

	return s.repos.Order.GetByID(ctx, orderID)
}

// GetOrder returns one order
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.repos.Order.GetByID(ctx, orderID)
}

// ListOrders returns a page of orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, &errors.ErrValidation{Message: fmt.Sprintf("invalid status: %s", filter.Status)}
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repos.Order.List(ctx, filter)
}
