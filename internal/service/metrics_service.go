package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the domain counters.
const (
	resultOK       = "ok"
	resultNoop     = "noop"
	resultConflict = "conflict"
	resultRejected = "invalid_state"
	resultError    = "error"
)

// MetricsService owns the Prometheus registry for HTTP, cache and domain metrics.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheLookups    *prometheus.CounterVec
	moves           *prometheus.CounterVec
	decisions       *prometheus.CounterVec
	submissions     prometheus.Counter
}

// NewMetricsService registers all collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by outcome",
	}, []string{"outcome"})

	moves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordering_moves_total",
		Help: "Reorder requests by collection and result",
	}, []string{"collection", "result"})

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ppdb_decisions_total",
		Help: "PPDB review decisions by outcome and result",
	}, []string{"outcome", "result"})

	submissions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ppdb_submissions_total",
		Help: "Accepted PPDB registrations",
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		cacheLatency, cacheWrite, cacheLookups,
		moves, decisions, submissions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheLookups:    cacheLookups,
		moves:           moves,
		decisions:       decisions,
		submissions:     submissions,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup and whether it hit.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

// ObserveCacheWrite tracks the duration of a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordMove counts a reorder request.
func (m *MetricsService) RecordMove(collection, result string) {
	if m == nil {
		return
	}
	m.moves.WithLabelValues(collection, result).Inc()
}

// RecordDecision counts a PPDB review decision.
func (m *MetricsService) RecordDecision(outcome, result string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(outcome, result).Inc()
}

// RecordSubmission counts an accepted registration.
func (m *MetricsService) RecordSubmission() {
	if m == nil {
		return
	}
	m.submissions.Inc()
}

