package metrics

import "github.com/prometheus/client_golang/prometheus"

// Catalog Prometheus metrics.
var (
	SnapshotLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "healthbridge",
			Name:      "snapshot_loads_total",
			Help:      "Collection snapshot loads from the store",
		},
		[]string{"collection", "result"}, // "ok" / "error"
	)

	SnapshotCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "healthbridge",
			Name:      "snapshot_cache_total",
			Help:      "Snapshot cache hits and misses",
		},
		[]string{"collection", "result"}, // "hit" / "miss"
	)

	SnapshotSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "healthbridge",
			Name:      "snapshot_items",
			Help:      "Items in the last loaded snapshot",
		},
		[]string{"collection"},
	)

	QueryResultItems = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "healthbridge",
			Name:      "query_result_items",
			Help:      "Matching items per catalog query, before pagination",
			Buckets:   []float64{0, 1, 3, 6, 12, 24, 50, 100, 250},
		},
		[]string{"collection"},
	)

	AdminWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "healthbridge",
			Name:      "admin_writes_total",
			Help:      "Admin catalog writes",
		},
		[]string{"collection", "op", "result"},
	)

	InquiriesSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "healthbridge",
			Name:      "inquiries_submitted_total",
			Help:      "Quote requests stored",
		},
	)

	LeadPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "healthbridge",
			Name:      "lead_publish_errors_total",
			Help:      "Lead events that could not be published",
		},
	)
)

var catalogMetricsRegistered bool

// RegisterCatalogMetrics registers catalog metrics. Must be called once from main.
func RegisterCatalogMetrics() {
	if catalogMetricsRegistered {
		return
	}
	prometheus.MustRegister(SnapshotLoadsTotal)
	prometheus.MustRegister(SnapshotCacheTotal)
	prometheus.MustRegister(SnapshotSize)
	prometheus.MustRegister(QueryResultItems)
	prometheus.MustRegister(AdminWritesTotal)
	prometheus.MustRegister(InquiriesSubmittedTotal)
	prometheus.MustRegister(LeadPublishErrorsTotal)
	catalogMetricsRegistered = true
}
