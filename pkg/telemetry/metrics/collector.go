package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "augur"
	subsystem = "engine"
)

// Result status labels used on analysis metrics.
const (
	StatusSuccess  = "success"
	StatusFailure  = "failure"
	StatusCacheHit = "cache_hit"
)

// Collector owns every Prometheus metric the engine emits.
type Collector struct {
	registry *prometheus.Registry

	analysesTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec

	cacheHitsTotal      prometheus.Counter
	cacheMissesTotal    prometheus.Counter
	cacheEvictionsTotal *prometheus.CounterVec
	cacheEntries        prometheus.Gauge

	rateLimitRejectedTotal prometheus.Counter

	pluginErrorsTotal    *prometheus.CounterVec
	sandboxTimeoutsTotal *prometheus.CounterVec

	pluginsLoaded prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics. A nil
// registry gets a fresh private one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "analyses_total",
				Help:      "Total analyses by type and status",
			},
			[]string{"type", "status"},
		),
		analysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "analysis_duration_seconds",
				Help:      "Analysis latency by type",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"type"},
		),

		cacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_hits_total",
			Help:      "Total result cache hits",
		}),
		cacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_misses_total",
			Help:      "Total result cache misses",
		}),
		cacheEvictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_evictions_total",
				Help:      "Total result cache evictions by reason",
			},
			[]string{"reason"},
		),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_entries",
			Help:      "Current result cache entry count",
		}),

		rateLimitRejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rate_limit_rejected_total",
			Help:      "Total requests rejected by the rate limiter",
		}),

		pluginErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "plugin_errors_total",
				Help:      "Total plugin errors by plugin and stage",
			},
			[]string{"plugin", "stage"},
		),
		sandboxTimeoutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sandbox_timeouts_total",
				Help:      "Total sandbox deadline expirations by plugin",
			},
			[]string{"plugin"},
		),

		pluginsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plugins_loaded",
			Help:      "Currently loaded plugin count",
		}),
	}

	registry.MustRegister(
		c.analysesTotal,
		c.analysisDuration,
		c.cacheHitsTotal,
		c.cacheMissesTotal,
		c.cacheEvictionsTotal,
		c.cacheEntries,
		c.rateLimitRejectedTotal,
		c.pluginErrorsTotal,
		c.sandboxTimeoutsTotal,
		c.pluginsLoaded,
	)
	return c
}

// RecordAnalysis records one completed analysis. Cache hits skip the
// latency histogram; their duration reflects lookup, not analysis.
func (c *Collector) RecordAnalysis(analysisType, status string, duration time.Duration) {
	c.analysesTotal.WithLabelValues(analysisType, status).Inc()
	if status != StatusCacheHit {
		c.analysisDuration.WithLabelValues(analysisType).Observe(duration.Seconds())
	}
}

// RecordCacheHit counts a cache hit.
func (c *Collector) RecordCacheHit() { c.cacheHitsTotal.Inc() }

// RecordCacheMiss counts a cache miss.
func (c *Collector) RecordCacheMiss() { c.cacheMissesTotal.Inc() }

// RecordCacheEviction counts an eviction with its reason.
func (c *Collector) RecordCacheEviction(reason string) {
	c.cacheEvictionsTotal.WithLabelValues(reason).Inc()
}

// SetCacheEntries tracks the current cache size.
func (c *Collector) SetCacheEntries(n int) { c.cacheEntries.Set(float64(n)) }

// RecordRateLimitRejection counts a rate limiter rejection.
func (c *Collector) RecordRateLimitRejection() { c.rateLimitRejectedTotal.Inc() }

// RecordPluginError counts a plugin error at a lifecycle stage
// (load, validate, execute).
func (c *Collector) RecordPluginError(plugin, stage string) {
	c.pluginErrorsTotal.WithLabelValues(plugin, stage).Inc()
}

// RecordSandboxTimeout counts a sandbox deadline expiration.
func (c *Collector) RecordSandboxTimeout(plugin string) {
	c.sandboxTimeoutsTotal.WithLabelValues(plugin).Inc()
}

// SetPluginsLoaded tracks the loaded plugin count.
func (c *Collector) SetPluginsLoaded(n int) { c.pluginsLoaded.Set(float64(n)) }

// Registry exposes the collector's registry for test assertions.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler returns an HTTP handler serving the metrics in Prometheus
// exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
