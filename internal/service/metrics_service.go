package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/ascend-api/internal/models"
)

// Match outcomes recorded by ObserveMatch.
const (
	MatchResultExact    = "exact"
	MatchResultIndustry = "industry"
	MatchResultGlobal   = "global"
	MatchResultNone     = "none"
)

// MetricsService owns the Prometheus registry and keeps lightweight counters for the stats endpoints.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	matches         *prometheus.CounterVec
	queueDepth      prometheus.Gauge
	queueInFlight   prometheus.Gauge
	queueReclaimed  prometheus.Counter
	assignments     prometheus.Counter
	trustRecomputes prometheus.Counter
	trustDuration   prometheus.Histogram
	feedback        *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	matchCount           uint64
	unmatchedCount       uint64
	recomputeCount       uint64
	queueDepthValue      int64
}

// NewMetricsService registers HTTP, cache and routing collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses",
		}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ascend_matches_total",
			Help: "Mentor match attempts by the strategy that produced the result",
		}, []string{"result"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ascend_queue_depth",
			Help: "Questions currently waiting in the in-memory queue",
		}),
		queueInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ascend_queue_in_flight",
			Help: "Questions dequeued and awaiting a response",
		}),
		queueReclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ascend_queue_reclaimed_total",
			Help: "Dequeued questions returned to the queue after their lease expired",
		}),
		assignments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ascend_assignments_total",
			Help: "Questions assigned to a mentor by the load balancer",
		}),
		trustRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ascend_trust_recomputes_total",
			Help: "Trust score recomputations",
		}),
		trustDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ascend_trust_recompute_seconds",
			Help:    "Duration of a single trust recompute",
			Buckets: prometheus.DefBuckets,
		}),
		feedback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ascend_feedback_total",
			Help: "Feedback submissions by outcome",
		}, []string{"outcome"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLatency, m.cacheWrite, m.cacheHitRatio, m.cacheHits, m.cacheMisses,
		m.matches, m.queueDepth, m.queueInFlight, m.queueReclaimed, m.assignments,
		m.trustRecomputes, m.trustDuration, m.feedback,
		goroutines,
	)

	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
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

// Registry exposes the underlying registry for tests and custom collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveMatch counts a matcher run by the strategy that produced its result.
func (m *MetricsService) ObserveMatch(result string) {
	if m == nil {
		return
	}
	m.matches.WithLabelValues(result).Inc()
	if result == MatchResultNone {
		atomic.AddUint64(&m.unmatchedCount, 1)
		return
	}
	atomic.AddUint64(&m.matchCount, 1)
}

// SetQueueDepth publishes queue occupancy.
func (m *MetricsService) SetQueueDepth(queued, inFlight int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(queued))
	m.queueInFlight.Set(float64(inFlight))
	atomic.StoreInt64(&m.queueDepthValue, int64(queued))
}

// AddReclaimed counts questions returned to the queue by the lease reclaimer.
func (m *MetricsService) AddReclaimed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.queueReclaimed.Add(float64(n))
}

// IncAssignments counts load-balanced assignments.
func (m *MetricsService) IncAssignments() {
	if m == nil {
		return
	}
	m.assignments.Inc()
}

// ObserveTrustRecompute records one recompute and its duration.
func (m *MetricsService) ObserveTrustRecompute(duration time.Duration) {
	if m == nil {
		return
	}
	m.trustRecomputes.Inc()
	m.trustDuration.Observe(duration.Seconds())
	atomic.AddUint64(&m.recomputeCount, 1)
}

// IncFeedback counts a stored feedback by outcome.
func (m *MetricsService) IncFeedback(outcome models.FeedbackOutcome) {
	if m == nil {
		return
	}
	m.feedback.WithLabelValues(string(outcome)).Inc()
}

// Snapshot returns aggregated counters suitable for the system stats endpoint.
func (m *MetricsService) Snapshot() models.SystemStats {
	if m == nil {
		return models.SystemStats{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemStats{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		MatchesTotal:             atomic.LoadUint64(&m.matchCount),
		UnmatchedTotal:           atomic.LoadUint64(&m.unmatchedCount),
		TrustRecomputes:          atomic.LoadUint64(&m.recomputeCount),
		QueueDepth:               int(atomic.LoadInt64(&m.queueDepthValue)),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
