package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhooksReceived counts webhook deliveries by intake outcome.
	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mountainshares",
		Name:      "webhooks_received_total",
		Help:      "Webhook deliveries by intake outcome.",
	}, []string{"outcome"})

	// SettlementsTotal counts completed settlement sequences by terminal state.
	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mountainshares",
		Name:      "settlements_total",
		Help:      "Settlement sequences by terminal state.",
	}, []string{"status"})

	// SettlementDuration observes end-to-end settle latency in seconds.
	SettlementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mountainshares",
		Name:      "settlement_duration_seconds",
		Help:      "End-to-end settlement latency.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// BreakerState exports the circuit breaker state (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mountainshares",
		Name:      "breaker_state",
		Help:      "Primary settlement circuit breaker state (0 closed, 1 half-open, 2 open).",
	})

	// FeeTransfersTotal counts per-recipient fee transfers by result.
	FeeTransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mountainshares",
		Name:      "fee_transfers_total",
		Help:      "Per-recipient fee transfers by result.",
	}, []string{"recipient", "result"})
)
