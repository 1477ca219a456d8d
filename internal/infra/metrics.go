package infra

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CheckoutMetrics are the Prometheus instruments of the billing pipeline.
type CheckoutMetrics struct {
	Checkouts       *prometheus.CounterVec // outcome: success | insufficient_stock | invalid | error
	CheckoutSeconds prometheus.Histogram   // end-to-end checkout latency
	Revenue         *prometheus.CounterVec // payment_method
	LowStockAlerts  prometheus.Counter     // low-stock notifications enqueued
	SideEffectFails *prometheus.CounterVec // step: notify | publish | invoice
	Jobs            *prometheus.CounterVec // type, result
}

// NewCheckoutMetrics builds and registers the instruments on reg.
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate registration.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	m := &CheckoutMetrics{
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airportpos",
			Subsystem: "billing",
			Name:      "checkouts_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		CheckoutSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "airportpos",
			Subsystem: "billing",
			Name:      "checkout_duration_seconds",
			Help:      "Checkout latency including post-commit side effects.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		Revenue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airportpos",
			Subsystem: "billing",
			Name:      "revenue_total",
			Help:      "Sum of committed bill totals.",
		}, []string{"payment_method"}),
		LowStockAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airportpos",
			Subsystem: "stock",
			Name:      "low_stock_alerts_total",
			Help:      "Low-stock notifications handed to the dispatcher.",
		}),
		SideEffectFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airportpos",
			Subsystem: "billing",
			Name:      "side_effect_failures_total",
			Help:      "Post-commit steps that failed without affecting the checkout.",
		}, []string{"step"}),
		Jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airportpos",
			Subsystem: "worker",
			Name:      "jobs_total",
			Help:      "Background jobs processed by type and result.",
		}, []string{"type", "result"}),
	}
	reg.MustRegister(m.Checkouts, m.CheckoutSeconds, m.Revenue, m.LowStockAlerts, m.SideEffectFails, m.Jobs)
	return m
}

// MetricsHandler exposes the default registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// The helpers below accept a nil receiver so callers built without metrics
// (unit tests, CLI tools) need no guards.

func (m *CheckoutMetrics) ObserveCheckout(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(outcome).Inc()
	m.CheckoutSeconds.Observe(seconds)
}

func (m *CheckoutMetrics) AddRevenue(paymentMethod string, amount float64) {
	if m == nil {
		return
	}
	m.Revenue.WithLabelValues(paymentMethod).Add(amount)
}

func (m *CheckoutMetrics) LowStockAlert() {
	if m == nil {
		return
	}
	m.LowStockAlerts.Inc()
}

func (m *CheckoutMetrics) SideEffectFailed(step string) {
	if m == nil {
		return
	}
	m.SideEffectFails.WithLabelValues(step).Inc()
}

func (m *CheckoutMetrics) JobDone(jobType, result string) {
	if m == nil {
		return
	}
	m.Jobs.WithLabelValues(jobType, result).Inc()
}
