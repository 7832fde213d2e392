package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"folivix/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncClassificationsTotal(outcome string)
	ObserveClassificationDuration(duration time.Duration)
	SetUsersTotal(count int)
	SetResultsTotal(count int)
}

type MetricsProvider struct {
	requestsTotal          *prometheus.CounterVec
	requestDuration        *prometheus.HistogramVec
	cacheHits              prometheus.Counter
	cacheMisses            prometheus.Counter
	classificationsTotal   *prometheus.CounterVec
	classificationDuration prometheus.Histogram
	usersTotal             prometheus.Gauge
	resultsTotal           prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncClassificationsTotal(outcome string) {
	m.classificationsTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) ObserveClassificationDuration(duration time.Duration) {
	m.classificationDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetUsersTotal(count int) {
	m.usersTotal.Set(float64(count))
}

func (m *MetricsProvider) SetResultsTotal(count int) {
	m.resultsTotal.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "folivix_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "folivix_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "folivix_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "folivix_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		classificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "folivix_classifications_total",
			Help: "Total number of remote classification calls",
		}, []string{"outcome"}),

		classificationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "folivix_classification_duration_seconds",
			Help:    "Remote classification round-trip duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		usersTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "folivix_users_total",
			Help: "Number of local user profiles",
		}),

		resultsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "folivix_results_total",
			Help: "Number of analysis results cached for the active user",
		}),
	}
}

type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                  {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)  {}
func (n *noopMetrics) IncCacheHits()                                     {}
func (n *noopMetrics) IncCacheMisses()                                   {}
func (n *noopMetrics) IncClassificationsTotal(_ string)                  {}
func (n *noopMetrics) ObserveClassificationDuration(_ time.Duration)     {}
func (n *noopMetrics) SetUsersTotal(_ int)                               {}
func (n *noopMetrics) SetResultsTotal(_ int)                             {}
