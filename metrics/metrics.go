package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code", "service"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "service"},
	)

	// Store metrics
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of record store operations",
		},
		[]string{"operation", "table", "status"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Record store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	// Collector metrics
	RecordsCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_collected_total",
			Help: "Total number of records appended by the collectors",
		},
		[]string{"collector"},
	)

	QueriesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_queries_skipped_total",
			Help: "Total number of news queries that yielded no stored item",
		},
		[]string{"reason"},
	)

	// Serving metrics
	RecordsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_served_total",
			Help: "Total number of records returned by the serving API",
		},
		[]string{"endpoint"},
	)

	MalformedRecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "malformed_records_skipped_total",
			Help: "Total number of stored records dropped during reshaping",
		},
		[]string{"endpoint"},
	)
)
