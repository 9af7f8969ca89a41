package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "piriven"

// Outcome labels for CMS requests.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the site's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	CMSRequests     *prometheus.CounterVec
	CMSDuration     *prometheus.HistogramVec
	SectionFailures *prometheus.CounterVec
	EchoCache       *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CMSRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cms_requests_total",
			Help:      "Requests sent to the content API by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		CMSDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cms_request_duration_seconds",
			Help:      "Latency of content API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		SectionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_section_failures_total",
			Help:      "Page sections rendered with their empty state because a fetch failed.",
		}, []string{"page", "section"}),
		EchoCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "echo_cache_lookups_total",
			Help:      "Detail page echo cache lookups by kind and result.",
		}, []string{"kind", "result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Served HTTP requests by route and status.",
		}, []string{"route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of served HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveCMS records one content API call. A nil receiver is a no-op.
func (m *Metrics) ObserveCMS(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CMSRequests.WithLabelValues(endpoint, outcome).Inc()
	m.CMSDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// SectionFailed counts a page section that fell back to its empty state.
func (m *Metrics) SectionFailed(page, section string) {
	if m == nil {
		return
	}
	m.SectionFailures.WithLabelValues(page, section).Inc()
}

// EchoLookup counts an echo cache read.
func (m *Metrics) EchoLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.EchoCache.WithLabelValues(kind, result).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
