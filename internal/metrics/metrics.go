// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssetReconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_asset_reconciliations_total",
		Help: "Asset reconciliation calls by outcome",
	}, []string{"outcome"})

	AssetReconciliationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_asset_reconciliation_duration_seconds",
		Help:    "Duration of asset reconciliation calls",
		Buckets: prometheus.DefBuckets,
	})

	AssetsUploadedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_assets_uploaded_total",
		Help: "Objects uploaded to storage by bucket",
	}, []string{"bucket"})

	StorageOperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_storage_operation_errors_total",
		Help: "Failed storage gateway operations",
	}, []string{"operation", "bucket"})

	CompensationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_compensations_total",
		Help: "Compensating actions run after a failed asset write",
	}, []string{"action", "result"})

	ReconciliationIssuesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_reconciliation_issues_total",
		Help: "Irreconcilable states recorded for manual cleanup",
	})

	SlugFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_slug_fallbacks_total",
		Help: "Slugs resolved with the timestamp fallback",
	})

	SchemaCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_schema_cache_total",
		Help: "Category schema cache lookups by result",
	}, []string{"result"})

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
