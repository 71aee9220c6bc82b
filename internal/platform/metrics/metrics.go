// Package metrics exposes Prometheus instrumentation for the order workflow.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OrdersCreated counts successfully submitted lab orders.
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "labreq_orders_created_total",
		Help: "Total number of lab orders created.",
	})

	// OrderIDRetries counts identifier allocation attempts that hit a
	// concurrent duplicate and were retried.
	OrderIDRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "labreq_orderid_retries_total",
		Help: "Total number of order identifier allocation retries.",
	})

	// OrderIDExhausted counts order submissions that failed after the
	// allocation retry ceiling.
	OrderIDExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "labreq_orderid_exhausted_total",
		Help: "Total number of order submissions that exhausted identifier allocation retries.",
	})

	// StatusUpdates counts order status transitions by target status.
	StatusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "labreq_status_updates_total",
		Help: "Total number of order status updates.",
	}, []string{"status"})
)

// Handler returns the echo handler serving the Prometheus scrape endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
