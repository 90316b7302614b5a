package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records the commerce pipeline: webhook deliveries coming in
// from the payment provider and checkout handoffs going out.
type PipelineMetrics struct {
	webhookEvents    *prometheus.CounterVec
	webhookDuration  *prometheus.HistogramVec
	checkoutAttempts *prometheus.CounterVec
}

// Webhook outcomes used as label values.
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeDropped   = "dropped"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Webhook deliveries by event type and outcome.",
	}, []string{"event_type", "outcome"})
	webhookDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_handle_duration_seconds",
		Help:    "Duration of webhook reconciliation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	checkoutAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout handoffs to the payment provider by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(webhookEvents, webhookDuration, checkoutAttempts)
	return &PipelineMetrics{
		webhookEvents:    webhookEvents,
		webhookDuration:  webhookDuration,
		checkoutAttempts: checkoutAttempts,
	}
}

// IncWebhookEvent increments the delivery counter for an event type and outcome.
func (p *PipelineMetrics) IncWebhookEvent(eventType, outcome string) {
	if p == nil || p.webhookEvents == nil {
		return
	}
	p.webhookEvents.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// ObserveWebhookDuration records how long reconciliation took for an event type.
func (p *PipelineMetrics) ObserveWebhookDuration(eventType string, duration time.Duration) {
	if p == nil || p.webhookDuration == nil {
		return
	}
	p.webhookDuration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

// IncCheckoutAttempt increments the checkout counter for the given outcome.
func (p *PipelineMetrics) IncCheckoutAttempt(outcome string) {
	if p == nil || p.checkoutAttempts == nil {
		return
	}
	p.checkoutAttempts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
