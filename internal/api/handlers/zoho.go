package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/repository"
	"github.com/chiefcousin/toybox/internal/service"
	"github.com/chiefcousin/toybox/pkg/errors"
)

const (
	oauthStateCookie = "tb_zoho_state"
	settingsPath     = "/admin/settings"
)

// ZohoConnector runs the OAuth connect and disconnect flow
type ZohoConnector interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) error
	Disconnect(ctx context.Context) error
	IsConnected(ctx context.Context) bool
}

// CatalogSyncer runs and reports full catalog syncs
type CatalogSyncer interface {
	SyncAll(ctx context.Context) (*domain.SyncResult, error)
	Status(ctx context.Context) (*service.SyncState, error)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HandleZohoAuth handles GET /api/zoho/auth by redirecting to the Zoho consent screen
func HandleZohoAuth(connector ZohoConnector, secure bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := randomHex(16)
		if err != nil {
			logger.Error("Failed to generate OAuth state", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(oauthStateCookie, state, 600, "/api/zoho", "", secure, true)
		c.Redirect(http.StatusFound, connector.AuthURL(state))
	}
}

// HandleZohoCallback handles GET /api/zoho/callback. It exchanges the authorization
// code for tokens and sends the admin back to the settings page with the outcome.
func HandleZohoCallback(connector ZohoConnector, siteURL string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		redirect := func(key, value string) {
			q := url.Values{}
			q.Set(key, value)
			c.Redirect(http.StatusFound, siteURL+settingsPath+"?"+q.Encode())
		}

		code := c.Query("code")
		if e := c.Query("error"); e != "" || code == "" {
			if e == "" {
				e = "No authorization code received"
			}
			redirect("zoho_error", e)
			return
		}

		if expected, err := c.Cookie(oauthStateCookie); err == nil && expected != "" {
			if !verifyWebhookToken(expected, c.Query("state")) {
				logger.Warn("Zoho OAuth callback with mismatched state")
				redirect("zoho_error", "Invalid OAuth state")
				return
			}
		}

		if err := connector.ExchangeCode(c.Request.Context(), code); err != nil {
			logger.Error("Zoho token exchange failed", zap.Error(err))
			redirect("zoho_error", err.Error())
			return
		}
		redirect("zoho_connected", "1")
	}
}

// HandleZohoSync handles POST /api/zoho/sync
func HandleZohoSync(connector ZohoConnector, syncer CatalogSyncer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !connector.IsConnected(c.Request.Context()) {
			respondError(c, logger, "Zoho sync failed", &errors.ErrNotConnected{})
			return
		}
		result, err := syncer.SyncAll(c.Request.Context())
		if err != nil {
			respondError(c, logger, "Zoho sync failed", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "result": result})
	}
}

// HandleZohoStatus handles GET /api/zoho/status
func HandleZohoStatus(syncer CatalogSyncer, settings repository.SettingsRepository, siteURL string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := syncer.Status(c.Request.Context())
		if err != nil {
			respondError(c, logger, "Failed to read Zoho status", err)
			return
		}

		webhookURL := ""
		if tok, err := settings.Get(c.Request.Context(), domain.SettingZohoWebhookToken); err == nil && tok != nil && tok.Value != "" {
			webhookURL = webhookURLFor(siteURL, tok.Value)
		}

		c.JSON(http.StatusOK, gin.H{
			"connected":    st.Connected,
			"sync_status":  st.Status,
			"sync_error":   st.Error,
			"last_sync_at": st.LastSyncAt,
			"webhook_url":  webhookURL,
		})
	}
}

// HandleRotateWebhookToken handles POST /api/zoho/webhook-token. The old token stops
// working immediately, so the webhook URL in Zoho must be updated.
func HandleRotateWebhookToken(settings repository.SettingsRepository, siteURL string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := randomHex(24)
		if err != nil {
			logger.Error("Failed to generate webhook token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if err := settings.Set(c.Request.Context(), domain.SettingZohoWebhookToken, token); err != nil {
			respondError(c, logger, "Failed to store webhook token", err)
			return
		}
		logger.Info("Zoho webhook token rotated")
		c.JSON(http.StatusOK, gin.H{"ok": true, "webhook_url": webhookURLFor(siteURL, token)})
	}
}

// HandleZohoDisconnect handles POST /api/zoho/disconnect
func HandleZohoDisconnect(connector ZohoConnector, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := connector.Disconnect(c.Request.Context()); err != nil {
			respondError(c, logger, "Failed to disconnect Zoho", err)
			return
		}
		logger.Info("Zoho disconnected")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func webhookURLFor(siteURL, token string) string {
	return siteURL + "/api/zoho/webhook?token=" + url.QueryEscape(token)
}
