package observability

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Entitlement metrics
	EntitlementResolutionsTotal *prometheus.CounterVec
	AccessChecksTotal           *prometheus.CounterVec
	AddonActivationsTotal       *prometheus.CounterVec
	AddonDeactivationsTotal     *prometheus.CounterVec

	// Billing metrics
	InvoicesGeneratedTotal   *prometheus.CounterVec
	ProrataComputationsTotal *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atelier_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atelier_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		EntitlementResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atelier_entitlement_resolutions_total",
				Help: "Total number of feature matrix resolutions",
			},
			[]string{"status"},
		),
		AccessChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atelier_access_checks_total",
				Help: "Total number of role access checks",
			},
			[]string{"result"},
		),
		AddonActivationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atelier_addon_activations_total",
				Help: "Total number of addon activations",
			},
			[]string{"addon"},
		),
		AddonDeactivationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atelier_addon_deactivations_total",
				Help: "Total number of addon deactivations",
			},
			[]string{"addon"},
		),

		InvoicesGeneratedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atelier_invoices_generated_total",
				Help: "Total number of invoices generated",
			},
			[]string{"change_type"},
		),
		ProrataComputationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atelier_prorata_computations_total",
				Help: "Total number of prorata computations",
			},
			[]string{"change_type"},
		),

		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atelier_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache", "layer"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atelier_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache"},
		),

		DBConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "atelier_db_connections_active",
			Help: "Number of active database connections",
		}),
		DBConnectionsIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "atelier_db_connections_idle",
			Help: "Number of idle database connections",
		}),

		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.EntitlementResolutionsTotal,
		m.AccessChecksTotal,
		m.AddonActivationsTotal,
		m.AddonDeactivationsTotal,
		m.InvoicesGeneratedTotal,
		m.ProrataComputationsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
	)

	return m
}

// Handler returns the HTTP handler exposing the metrics registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CollectDBStats samples database pool stats into the gauges every interval
// until the stop channel closes.
func (m *Metrics) CollectDBStats(db *sql.DB, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats := db.Stats()
			m.DBConnectionsActive.Set(float64(stats.InUse))
			m.DBConnectionsIdle.Set(float64(stats.Idle))
		}
	}
}
