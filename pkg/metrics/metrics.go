package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the order intake collectors. Each instance owns its
// registry so tests and multiple servers do not collide.
type Metrics struct {
	Registry *prometheus.Registry

	OrdersAccepted *prometheus.CounterVec
	OrdersRejected *prometheus.CounterVec
	OrderAmount    prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		OrdersAccepted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venueorder_orders_accepted_total",
				Help: "Total number of orders that passed validation (by symbol notation).",
			},
			[]string{"notation"},
		),
		OrdersRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venueorder_orders_rejected_total",
				Help: "Total number of orders rejected at construction (by error kind).",
			},
			[]string{"kind"},
		),
		OrderAmount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "venueorder_order_amount_abs",
				Help:    "Absolute amount of accepted orders.",
				Buckets: prometheus.ExponentialBuckets(0.001, 10, 10),
			},
		),
	}
	m.Registry.MustRegister(m.OrdersAccepted, m.OrdersRejected, m.OrderAmount)
	return m
}
