// Package monitoring exposes Prometheus metrics for the booking flow.
// The /metrics endpoint is registered in the router; everything here is
// fire-and-forget from the handlers.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkoutTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_attempts_total",
			Help: "Checkout attempts by outcome",
		},
		[]string{"outcome"},
	)

	ticketsSold = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_sold_total",
			Help: "Total tickets sold across all committed orders",
		},
	)

	orderValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_value",
			Help:    "Total price of committed orders",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
	)
)

// Checkout outcomes recorded against checkout_attempts_total.
const (
	OutcomeCommitted    = "committed"
	OutcomeEmptyCart    = "empty_cart"
	OutcomeValidation   = "validation_failed"
	OutcomeInvalidCode  = "invalid_code"
	OutcomeCommitFailed = "commit_failed"
	OutcomeError        = "error"
)

// TrackCheckout records one checkout attempt with its outcome.
func TrackCheckout(outcome string) {
	checkoutTotal.WithLabelValues(outcome).Inc()
}

// TrackOrder records a committed order's ticket count and value.
func TrackOrder(tickets int, total float64) {
	ticketsSold.Add(float64(tickets))
	orderValue.Observe(total)
}
