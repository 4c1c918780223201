package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// event ingestion pipeline.
type Metrics struct {
	FeaturesFetched prometheus.Counter
	QueryFailures   prometheus.Counter
	PointsAccepted  prometheus.Counter
	PointsDuplicate prometheus.Counter
	PointsRejected  prometheus.Counter
	BatchesEmitted  prometheus.Counter
	RunActive       prometheus.Gauge

	BatchSize           prometheus.Histogram
	FeedRequestDuration prometheus.Histogram

	PointsByCategory *prometheus.CounterVec // label: category
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FeaturesFetched,
		m.QueryFailures,
		m.PointsAccepted,
		m.PointsDuplicate,
		m.PointsRejected,
		m.BatchesEmitted,
		m.RunActive,
		m.BatchSize,
		m.FeedRequestDuration,
		m.PointsByCategory,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeaturesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geopol",
			Name:      "features_fetched_total",
			Help:      "Total raw features returned by the event feed.",
		}),
		QueryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geopol",
			Name:      "query_failures_total",
			Help:      "Total feed queries that failed (network, status, payload).",
		}),
		PointsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geopol",
			Name:      "points_accepted_total",
			Help:      "Total classified points accepted into the stream.",
		}),
		PointsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geopol",
			Name:      "points_duplicate_total",
			Help:      "Total candidates dropped by cross-query deduplication.",
		}),
		PointsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geopol",
			Name:      "points_rejected_total",
			Help:      "Total features dropped by the mapper (bad coordinates, noise).",
		}),
		BatchesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geopol",
			Name:      "batches_emitted_total",
			Help:      "Total point batches delivered to subscribers.",
		}),
		RunActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "geopol",
			Name:      "run_active",
			Help:      "1 while an orchestrator run is in flight.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "geopol",
			Name:      "batch_size",
			Help:      "Number of points per emitted batch.",
			Buckets:   []float64{1, 5, 10, 20, 40, 80},
		}),
		FeedRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "geopol",
			Name:      "feed_request_duration_seconds",
			Help:      "Duration of event feed HTTP requests.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		PointsByCategory: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geopol",
			Name:      "points_by_category_total",
			Help:      "Accepted points by classified category.",
		}, []string{"category"}),
	}
}
