package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mapviz"

// Default buckets
var (
	DefaultHTTPDurationBuckets    = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultClusterDurationBuckets = []float64{.0005, .001, .005, .01, .05, .1, .5, 1}
)

// Metrics holds the service's collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ClusterDuration     prometheus.Histogram
	ClusterEntities     prometheus.Histogram
	CacheLookups        *prometheus.CounterVec
	EntitiesIngested    prometheus.Counter
}

// New registers all collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   DefaultHTTPDurationBuckets,
		}, []string{"route", "method"}),
		ClusterDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cluster_duration_seconds",
			Help:      "Time spent clustering and coloring one request's entities.",
			Buckets:   DefaultClusterDurationBuckets,
		}),
		ClusterEntities: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cluster_input_entities",
			Help:      "Entities fed to the clusterer per computation.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 9),
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_cache_lookups_total",
			Help:      "Cluster memo lookups by result.",
		}, []string{"result"}),
		EntitiesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_ingested_total",
			Help:      "Entities stored through the ingest endpoint.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ClusterDuration,
		m.ClusterEntities,
		m.CacheLookups,
		m.EntitiesIngested,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CacheHit records a memo hit
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("hit").Inc()
}

// CacheMiss records a memo miss
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

// ObserveCluster records one clustering pass
func (m *Metrics) ObserveCluster(entities int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ClusterEntities.Observe(float64(entities))
	m.ClusterDuration.Observe(elapsed.Seconds())
}

// Ingested counts stored entities
func (m *Metrics) Ingested(n int) {
	if m == nil {
		return
	}
	m.EntitiesIngested.Add(float64(n))
}

// Middleware records request count and latency keyed by the matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
