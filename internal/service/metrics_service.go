package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheLookups    *prometheus.CounterVec

	runDuration     *prometheus.HistogramVec
	runsTotal       *prometheus.CounterVec
	sessionsPlaced  *prometheus.CounterVec
	unscheduled     *prometheus.CounterVec
	forcedClears    prometheus.Counter
	balancerMoves   prometheus.Counter
	violations      *prometheus.CounterVec
	exportsRendered *prometheus.CounterVec
}

// NewMetricsService registers the collectors on a private registry.
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
			Help:    "Latency for cache set operations",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "timetable_run_duration_seconds",
			Help:    "Duration of scheduler runs",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"mode"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_runs_total",
			Help: "Scheduler runs by mode and outcome",
		}, []string{"mode", "outcome"}),
		sessionsPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_sessions_placed_total",
			Help: "Sessions placed by phase",
		}, []string{"phase"}),
		unscheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_unscheduled_total",
			Help: "Sessions the scheduler gave up on, by reason",
		}, []string{"reason"}),
		forcedClears: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timetable_forced_clears_total",
			Help: "Cells cleared by the free-day enforcer",
		}),
		balancerMoves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timetable_balancer_moves_total",
			Help: "Cells moved by the day balancer",
		}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_invariant_violations_total",
			Help: "Invariant violations found in generated timetables",
		}, []string{"kind"}),
		exportsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_exports_total",
			Help: "Rendered timetable exports by format",
		}, []string{"format"}),
	}

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLatency.(prometheus.Collector), m.cacheWrite.(prometheus.Collector), m.cacheLookups,
		m.runDuration, m.runsTotal, m.sessionsPlaced, m.unscheduled, m.forcedClears, m.balancerMoves,
		m.violations, m.exportsRendered,
		collectors.NewGoCollector(),
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
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveSchedulerRun records the outcome of one scheduler run. mode is
// "generate" or "preview".
func (m *MetricsService) ObserveSchedulerRun(mode string, res *scheduler.Result, violations []scheduler.Violation, duration time.Duration) {
	if m == nil || res == nil {
		return
	}
	outcome := "complete"
	if len(res.Unscheduled) > 0 {
		outcome = "partial"
	}
	m.runDuration.WithLabelValues(mode).Observe(duration.Seconds())
	m.runsTotal.WithLabelValues(mode, outcome).Inc()
	m.sessionsPlaced.WithLabelValues(string(scheduler.PhaseFirstHour)).Add(float64(res.Stats.FirstHourPlaced))
	m.sessionsPlaced.WithLabelValues(string(scheduler.PhaseLabs)).Add(float64(res.Stats.LabBlocksPlaced))
	m.sessionsPlaced.WithLabelValues(string(scheduler.PhaseTheory)).Add(float64(res.Stats.TheoryPlaced))
	for _, entry := range res.Unscheduled {
		m.unscheduled.WithLabelValues(entry.Reason).Inc()
	}
	m.forcedClears.Add(float64(res.Stats.ForcedClears))
	m.balancerMoves.Add(float64(res.Stats.BalancerMoves))
	for _, v := range violations {
		m.violations.WithLabelValues(v.Kind).Inc()
	}
}

// RecordSchedulerFailure counts a run that ended in an error.
func (m *MetricsService) RecordSchedulerFailure(mode string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(mode, "error").Inc()
}

// RecordExport counts a rendered export.
func (m *MetricsService) RecordExport(format string) {
	if m == nil {
		return
	}
	m.exportsRendered.WithLabelValues(format).Inc()
}
