package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reddit_insight"

// Metrics groups every Prometheus collector the service exports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	upstreamRequests   *prometheus.CounterVec
	paginationExceeded *prometheus.CounterVec
	cacheLookups       *prometheus.CounterVec
	cacheEvictions     *prometheus.CounterVec
	analysisDuration   *prometheus.HistogramVec
	sharedFlights      *prometheus.CounterVec
}

// New registers all collectors on the given registerer
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		upstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Requests sent to the Reddit API. 'status_code' is 0 if the request failed with no response.",
		}, []string{"endpoint", "status_code"}),
		paginationExceeded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "pagination_limit_exceeded_total",
			Help:      "Listing walks aborted because the page ceiling was reached.",
		}, []string{"kind", "sort"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Response cache lookups by result (hit, miss, expired).",
		}, []string{"result"}),
		cacheEvictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Response cache evictions by reason (capacity, size, ttl).",
		}, []string{"reason"}),
		analysisDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "activity",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching and analyzing a user's history.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),
		sharedFlights: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "activity",
			Name:      "shared_results_total",
			Help:      "Callers that received the result of an in-flight computation started by another caller.",
		}, []string{"operation"}),
	}
}

// UpstreamRequest records one outbound request
func (m *Metrics) UpstreamRequest(endpoint string, statusCode int) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
}

// PaginationLimitExceeded records an aborted listing walk
func (m *Metrics) PaginationLimitExceeded(kind, sort string) {
	if m == nil {
		return
	}
	m.paginationExceeded.WithLabelValues(kind, sort).Inc()
}

// CacheLookup records a cache lookup result
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// CacheEviction records an evicted cache entry
func (m *Metrics) CacheEviction(reason string) {
	if m == nil {
		return
	}
	m.cacheEvictions.WithLabelValues(reason).Inc()
}

// ObserveAnalysis records the duration of one fetch-and-analyze run
func (m *Metrics) ObserveAnalysis(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.analysisDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// SharedFlight records a caller served by another caller's computation
func (m *Metrics) SharedFlight(operation string) {
	if m == nil {
		return
	}
	m.sharedFlights.WithLabelValues(operation).Inc()
}
