package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters the settlement and webhook paths report into.
type Metrics struct {
	Registry *prometheus.Registry

	WebhookEventsReceived  *prometheus.CounterVec
	WebhookEventsDuplicate prometheus.Counter
	WebhookEventsOrphaned  prometheus.Counter

	SettlementBatchesBilled prometheus.Counter
	SettlementBatchesFailed prometheus.Counter
	SettlementFeeCents      prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		WebhookEventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalis_webhook_events_received_total",
			Help: "Gateway webhook events received, by event type.",
		}, []string{"event"}),
		WebhookEventsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitalis_webhook_events_duplicate_total",
			Help: "Webhook events skipped by the idempotency layer.",
		}),
		WebhookEventsOrphaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitalis_webhook_events_orphaned_total",
			Help: "Webhook events with no matching local entity.",
		}),
		SettlementBatchesBilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitalis_settlement_batches_billed_total",
			Help: "Per-clinic settlement batches billed successfully.",
		}),
		SettlementBatchesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitalis_settlement_batches_failed_total",
			Help: "Per-clinic settlement batches left pending after a gateway failure.",
		}),
		SettlementFeeCents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitalis_settlement_fee_cents_total",
			Help: "Platform fee cents billed through settlement batches.",
		}),
	}

	registry.MustRegister(
		m.WebhookEventsReceived,
		m.WebhookEventsDuplicate,
		m.WebhookEventsOrphaned,
		m.SettlementBatchesBilled,
		m.SettlementBatchesFailed,
		m.SettlementFeeCents,
	)

	return m
}
