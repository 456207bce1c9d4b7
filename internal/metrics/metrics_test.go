package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountersAndHandler(t *testing.T) {
	m := New()
	m.WebhookEvent(WebhookAuthFailed)
	m.WebhookEvent(WebhookAuthFailed)
	m.SyncItems("created", 3)
	m.OrderPush("success")

	assert.Equal(t, 2.0, m.WebhookEventCount(WebhookAuthFailed))
	assert.Equal(t, 3.0, m.SyncItemCount("created"))
	assert.Equal(t, 1.0, m.OrderPushCount("success"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `toybox_zoho_webhook_events_total{outcome="auth_failed"} 2`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.WebhookEvent(WebhookProcessed)
		m.SyncRun("idle")
		m.SyncItems("updated", 1)
		m.OrderPush("failed")
	})
}
