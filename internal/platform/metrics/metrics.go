// Package metrics registers the Prometheus instruments for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Fetches         *prometheus.CounterVec
	FetchDebounced  prometheus.Counter
	FetchErrors     prometheus.Counter
	FetchLatency    prometheus.Histogram
	RecordsCreated  *prometheus.CounterVec
	RecordsDeleted  *prometheus.CounterVec
	EnrichmentCalls *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Fetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confcrm_fetches_total",
			Help: "Total collection fetches, labeled by collection",
		}, []string{"collection"}),
		FetchDebounced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confcrm_fetches_debounced_total",
			Help: "Fetch calls suppressed by the debounce guard",
		}),
		FetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confcrm_fetch_errors_total",
			Help: "Fetches that completed with an error",
		}),
		FetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "confcrm_fetch_duration_seconds",
			Help:    "FetchData latency",
			Buckets: prometheus.DefBuckets,
		}),
		RecordsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confcrm_records_created_total",
			Help: "Records created, labeled by collection",
		}, []string{"collection"}),
		RecordsDeleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confcrm_records_deleted_total",
			Help: "Records deleted, labeled by collection",
		}, []string{"collection"}),
		EnrichmentCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confcrm_enrichment_calls_total",
			Help: "Enrichment client calls, labeled by provider and outcome",
		}, []string{"provider", "outcome"}),
		HTTPLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "confcrm_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
