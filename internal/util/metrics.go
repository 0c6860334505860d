package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_processed_total",
		Help: "Total number of webhook events processed successfully",
	}, []string{"event_type"})

	EventsDuplicateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webhook_events_duplicate_total",
		Help: "Total number of duplicate webhook events suppressed",
	})

	EventsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_failed_total",
		Help: "Total number of webhook events that failed processing",
	}, []string{"reason"})

	EventsUnknownTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webhook_events_unknown_total",
		Help: "Total number of events classified as unknown",
	})

	LedgerLookupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_lookup_failures_total",
		Help: "Total number of idempotency ledger lookups that errored",
	})

	CatalogUpsertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_master_upserts_total",
		Help: "Total number of master catalog upserts",
	})

	CatalogPropagationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_store_propagations_total",
		Help: "Total number of store catalog copies written",
	})

	CatalogDeletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_store_deletes_total",
		Help: "Total number of store catalog entries deleted",
	})

	CatalogBootstrapsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_bootstraps_total",
		Help: "Total number of store/product bootstrap creations",
	}, []string{"kind"})

	RefreshSignalsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refresh_signals_failed_total",
		Help: "Total number of refresh signal publish failures",
	})

	ProcessingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "webhook_processing_latency_seconds",
		Help:    "End-to-end latency of webhook event processing",
		Buckets: prometheus.DefBuckets,
	})

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
