// Package metrics provides Prometheus metrics for wiki-api.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wikiapi"

var (
	// HTTPRequestsTotal counts served requests by route and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// StoreOperationsTotal counts store calls by outcome.
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of document store operations",
		},
		[]string{"backend", "operation", "status"},
	)

	// StoreOperationDuration measures store round trips.
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of document store operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	// ImportedArticlesTotal counts files handled by the import command.
	ImportedArticlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_articles_total",
			Help:      "Total number of Markdown files processed by import",
		},
		[]string{"status"},
	)
)

// Status maps an error to the status label value.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
