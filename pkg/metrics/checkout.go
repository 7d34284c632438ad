package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records outcomes of the checkout transaction.
type CheckoutMetrics struct {
	attempts *prometheus.CounterVec
	orders   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by result.",
	}, []string{"result"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created by payment type.",
	}, []string{"payment_type"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of the checkout transaction in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(attempts, orders, duration)
	return &CheckoutMetrics{
		attempts: attempts,
		orders:   orders,
		duration: duration,
	}
}

// ObserveAttempt records one checkout attempt and its duration.
func (m *CheckoutMetrics) ObserveAttempt(result string, elapsed time.Duration) {
	if m == nil || m.attempts == nil {
		return
	}
	m.attempts.WithLabelValues(normalizeLabel(result)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// IncOrderCreated counts one committed order.
func (m *CheckoutMetrics) IncOrderCreated(paymentType string) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(paymentType)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
