package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders placed successfully",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order placements",
	}, []string{"reason"})

	OrderPlacementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_placement_latency_seconds",
		Help:    "Latency of the order placement transaction",
		Buckets: prometheus.DefBuckets,
	})

	StockAdjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Total number of administrative stock adjustments",
	}, []string{"reason"})

	StockAdjustmentsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments_failed_total",
		Help: "Total number of failed stock adjustments",
	}, []string{"reason"})

	LedgerDriftProducts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ledger_drift_products",
		Help: "Number of products whose stock disagrees with the inventory ledger",
	})

	AdminLoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_logins_total",
		Help: "Total number of admin login attempts",
	}, []string{"outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
