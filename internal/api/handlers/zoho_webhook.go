package handlers

import (
	"crypto/hmac"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/metrics"
	"github.com/chiefcousin/toybox/internal/repository"
	"github.com/chiefcousin/toybox/internal/service"
	"github.com/chiefcousin/toybox/internal/zoho"
)

func verifyWebhookToken(stored, incoming string) bool {
	if stored == "" || incoming == "" {
		return false
	}
	// constant-time compare
	return hmac.Equal([]byte(stored), []byte(incoming))
}

// HandleZohoWebhook handles POST /api/zoho/webhook?token=<secret>.
// Register in Zoho Inventory under Settings > Webhooks for Item Created, Item Updated
// and Item Deleted. Every outcome answers 200: Zoho retries non-2xx deliveries.
func HandleZohoWebhook(settings repository.SettingsRepository, catalog service.ItemEventHandler, m *metrics.Metrics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var stored string
		tokenRow, err := settings.Get(ctx, domain.SettingZohoWebhookToken)
		if err != nil {
			logger.Error("Zoho webhook: failed to load token", zap.Error(err))
		} else if tokenRow != nil {
			stored = tokenRow.Value
		}
		if !verifyWebhookToken(stored, c.Query("token")) {
			logger.Warn("Zoho webhook: invalid or missing token", zap.String("client_ip", c.ClientIP()))
			m.WebhookEvent(metrics.WebhookAuthFailed)
			c.JSON(http.StatusOK, gin.H{"ok": false, "error": "Invalid token"})
			return
		}

		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			m.WebhookEvent(metrics.WebhookInvalidPayload)
			c.JSON(http.StatusOK, gin.H{"ok": false, "error": "Invalid JSON"})
			return
		}
		var payload zoho.WebhookPayload
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			m.WebhookEvent(metrics.WebhookInvalidPayload)
			c.JSON(http.StatusOK, gin.H{"ok": false, "error": "Invalid JSON"})
			return
		}

		ignored, err := service.HandleItemEvent(ctx, catalog, payload, logger)
		if err != nil {
			logger.Error("Zoho webhook: error processing event",
				zap.String("event_type", payload.EventType),
				zap.String("zoho_item_id", payload.Data.Item.ItemID),
				zap.Error(err),
			)
			m.WebhookEvent(metrics.WebhookFailed)
			c.JSON(http.StatusOK, gin.H{"ok": false, "error": err.Error()})
			return
		}
		if ignored {
			m.WebhookEvent(metrics.WebhookIgnored)
			c.JSON(http.StatusOK, gin.H{"ok": true, "ignored": true})
			return
		}

		m.WebhookEvent(metrics.WebhookProcessed)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
