package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/zoho"
)

// ItemEventHandler applies Zoho item events to the catalog
type ItemEventHandler interface {
	SyncItem(ctx context.Context, itemID string) error
	DeactivateItem(ctx context.Context, itemID string) error
}

// HandleItemEvent routes one webhook payload. ignored is true for event types
// that do not touch the catalog.
func HandleItemEvent(ctx context.Context, catalog ItemEventHandler, payload zoho.WebhookPayload, logger *zap.Logger) (ignored bool, err error) {
	itemID := payload.Data.Item.ItemID

	switch domain.WebhookEventType(payload.EventType) {
	case domain.WebhookEventItemCreated, domain.WebhookEventItemUpdated:
		logger.Info("Zoho webhook: syncing item", zap.String("event_type", payload.EventType), zap.String("zoho_item_id", itemID))
		return false, catalog.SyncItem(ctx, itemID)
	case domain.WebhookEventItemDeleted:
		logger.Info("Zoho webhook: deactivating item", zap.String("zoho_item_id", itemID))
		return false, catalog.DeactivateItem(ctx, itemID)
	default:
		logger.Debug("Zoho webhook: ignoring event", zap.String("event_type", payload.EventType))
		return true, nil
	}
}
