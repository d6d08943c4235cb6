package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the client engine.
type Metrics struct {
	// Snapshot refreshes.
	Refreshes        *prometheus.CounterVec // labels: outcome={success,error}
	RefreshDuration  prometheus.Histogram
	CachedHazards    prometheus.Gauge
	RefreshLoopAlive prometheus.Gauge

	// Report submission.
	Submissions       *prometheus.CounterVec // labels: outcome={committed,aborted,rejected}
	OptimisticApplied prometheus.Counter
	Notices           *prometheus.CounterVec // labels: level={info,warning,error}

	// Hazard API.
	APIDuration *prometheus.HistogramVec // labels: method={list,create}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge

	// Report publishing.
	ReportsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all engine metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Refreshes,
		m.RefreshDuration,
		m.CachedHazards,
		m.RefreshLoopAlive,
		m.Submissions,
		m.OptimisticApplied,
		m.Notices,
		m.APIDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
		m.ReportsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "refreshes_total",
			Help:      "Hazard snapshot refreshes by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazard_map",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a full hazard collection fetch.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		CachedHazards: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_map",
			Name:      "cached_hazards",
			Help:      "Number of features in the current snapshot, optimistic entries included.",
		}),
		RefreshLoopAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_map",
			Name:      "refresh_loop_running",
			Help:      "1 when the periodic refresh loop is active, 0 when shut down.",
		}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "submissions_total",
			Help:      "Hazard report submissions by outcome.",
		}, []string{"outcome"}),
		OptimisticApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "optimistic_applied_total",
			Help:      "Speculative hazards appended before the store confirmed them.",
		}),
		Notices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "notices_total",
			Help:      "User-visible notices by level.",
		}, []string{"level"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hazard_map",
			Name:      "api_duration_seconds",
			Help:      "Hazard API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazard_map",
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_map",
			Name:      "geocode_enabled",
			Help:      "1 when popup place labels are geocoded, 0 otherwise.",
		}),
		ReportsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "reports_published_total",
			Help:      "Confirmed hazards published to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}
