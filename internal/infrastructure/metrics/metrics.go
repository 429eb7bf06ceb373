package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PaymentMetrics groups the prometheus instruments for the payment pipeline
type PaymentMetrics struct {
	// Checkout
	PaymentRequestsCreatedTotal prometheus.CounterVec
	PaymentRequestsExpiredTotal prometheus.Counter
	PixChargesCreatedTotal      prometheus.CounterVec

	// Inbound webhooks
	WebhooksReceivedTotal   prometheus.CounterVec
	WebhookDuplicatesTotal  prometheus.CounterVec
	WebhookUnresolvedTotal  prometheus.CounterVec
	TransactionStatusTotal  prometheus.CounterVec

	// Dispatch to the orders service
	DispatchAttemptsTotal   prometheus.CounterVec
	DispatchExhaustedTotal  prometheus.Counter
	OrdersCreatedTotal      prometheus.Counter
	DispatchDuration        prometheus.HistogramVec
	QueueDepth              prometheus.GaugeVec

	// Reconciliation
	ReconciliationRunsTotal    prometheus.Counter
	ReconciliationUpdatesTotal prometheus.CounterVec
}

func NewPaymentMetrics() *PaymentMetrics {
	return &PaymentMetrics{
		PaymentRequestsCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_requests_created_total",
				Help: "Checkout requests created",
			},
			[]string{"service_id"},
		),

		PaymentRequestsExpiredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_requests_expired_total",
				Help: "Checkout requests expired before payment",
			},
		),

		PixChargesCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pix_charges_created_total",
				Help: "PIX charges created on a provider",
			},
			[]string{"provider"},
		),

		WebhooksReceivedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhooks_received_total",
				Help: "Inbound provider webhook deliveries",
			},
			[]string{"provider"},
		),

		WebhookDuplicatesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_duplicates_total",
				Help: "Webhook deliveries suppressed as replays",
			},
			[]string{"provider"},
		),

		WebhookUnresolvedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_unresolved_total",
				Help: "Webhook deliveries that matched no known transaction",
			},
			[]string{"provider"},
		),

		TransactionStatusTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transaction_status_total",
				Help: "Transaction status transitions applied from providers",
			},
			[]string{"provider", "status"},
		),

		DispatchAttemptsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatch_attempts_total",
				Help: "Orders-service notification attempts",
			},
			[]string{"result"},
		),

		DispatchExhaustedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "dispatch_exhausted_total",
				Help: "Queue items that hit the retry ceiling",
			},
		),

		OrdersCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fulfillment_orders_created_total",
				Help: "Fulfillment orders accepted by the orders service",
			},
		),

		DispatchDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dispatch_duration_seconds",
				Help:    "Time spent delivering one queue item",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"result"},
		),

		QueueDepth: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "processing_queue_depth",
				Help: "Queue items by status",
			},
			[]string{"status"},
		),

		ReconciliationRunsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reconciliation_runs_total",
				Help: "Status reconciliation sweeps executed",
			},
		),

		ReconciliationUpdatesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reconciliation_updates_total",
				Help: "Payment requests whose status changed during reconciliation",
			},
			[]string{"new_status"},
		),
	}
}

func (m *PaymentMetrics) RecordWebhook(provider string) {
	m.WebhooksReceivedTotal.WithLabelValues(provider).Inc()
}

func (m *PaymentMetrics) RecordDuplicate(provider string) {
	m.WebhookDuplicatesTotal.WithLabelValues(provider).Inc()
}

func (m *PaymentMetrics) RecordUnresolved(provider string) {
	m.WebhookUnresolvedTotal.WithLabelValues(provider).Inc()
}

func (m *PaymentMetrics) RecordStatusTransition(provider, status string) {
	m.TransactionStatusTotal.WithLabelValues(provider, status).Inc()
}

func (m *PaymentMetrics) RecordDispatch(result string, durationSeconds float64, orders int) {
	m.DispatchAttemptsTotal.WithLabelValues(result).Inc()
	m.DispatchDuration.WithLabelValues(result).Observe(durationSeconds)
	if orders > 0 {
		m.OrdersCreatedTotal.Add(float64(orders))
	}
}

func (m *PaymentMetrics) RecordQueueDepth(pending, processed, failed int64) {
	m.QueueDepth.WithLabelValues("pending").Set(float64(pending))
	m.QueueDepth.WithLabelValues("processed").Set(float64(processed))
	m.QueueDepth.WithLabelValues("failed").Set(float64(failed))
}
