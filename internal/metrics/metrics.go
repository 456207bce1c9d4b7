// Package metrics exposes Prometheus counters for the Zoho integration.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Webhook outcomes
const (
	WebhookProcessed      = "processed"
	WebhookAuthFailed     = "auth_failed"
	WebhookInvalidPayload = "invalid_payload"
	WebhookFailed         = "failed"
	WebhookIgnored        = "ignored"
)

// Metrics holds the service counters on its own registry
type Metrics struct {
	registry      *prometheus.Registry
	webhookEvents *prometheus.CounterVec
	syncRuns      *prometheus.CounterVec
	syncItems     *prometheus.CounterVec
	orderPushes   *prometheus.CounterVec
}

// New creates and registers all counters
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toybox",
			Subsystem: "zoho",
			Name:      "webhook_events_total",
			Help:      "Zoho webhook deliveries by outcome.",
		}, []string{"outcome"}),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toybox",
			Subsystem: "zoho",
			Name:      "sync_runs_total",
			Help:      "Full catalog syncs by final status.",
		}, []string{"status"}),
		syncItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toybox",
			Subsystem: "zoho",
			Name:      "sync_items_total",
			Help:      "Items processed by catalog syncs.",
		}, []string{"result"}),
		orderPushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toybox",
			Subsystem: "zoho",
			Name:      "order_push_total",
			Help:      "Sales order pushes by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.webhookEvents,
		m.syncRuns,
		m.syncItems,
		m.orderPushes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// All recorders are nil-safe so callers can run without metrics.

func (m *Metrics) WebhookEvent(outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SyncRun(status string) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(status).Inc()
}

func (m *Metrics) SyncItems(result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.syncItems.WithLabelValues(result).Add(float64(n))
}

func (m *Metrics) OrderPush(result string) {
	if m == nil {
		return
	}
	m.orderPushes.WithLabelValues(result).Inc()
}

// WebhookEventCount returns the current counter value (tests and status endpoints)
func (m *Metrics) WebhookEventCount(outcome string) float64 {
	return counterValue(m.webhookEvents.WithLabelValues(outcome))
}

// OrderPushCount returns the current counter value
func (m *Metrics) OrderPushCount(result string) float64 {
	return counterValue(m.orderPushes.WithLabelValues(result))
}

// SyncItemCount returns the current counter value
func (m *Metrics) SyncItemCount(result string) float64 {
	return counterValue(m.syncItems.WithLabelValues(result))
}
