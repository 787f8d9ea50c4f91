// Package metrics exposes the Prometheus registry every agent reports
// into: tick timing, per-source availability, fusion throughput, and
// route-query outcomes.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every metric the core publishes.
type Registry struct {
	// Scheduler/tick metrics.
	TickDuration     prometheus.Histogram
	TicksTotal       *prometheus.CounterVec // status = ok|failed
	SchedulerPaused  prometheus.Gauge

	// Collector (C3/C4) metrics.
	SourceAvailable      *prometheus.GaugeVec // source name -> 1/0
	SourceFetchDuration  *prometheus.HistogramVec
	ScoutBacklogSize     prometheus.Gauge

	// Fusion (C5) metrics.
	FusionDuration       prometheus.Histogram
	EdgesUpdatedTotal    prometheus.Counter
	ScoutsIngestedTotal  prometheus.Counter
	ScoutsRejectedTotal  prometheus.Counter
	BadRecordsTotal      prometheus.Counter
	HazardInboxDepth     prometheus.Gauge

	// Routing (C6) metrics.
	RouteQueriesTotal    *prometheus.CounterVec // outcome = ok|unreachable_endpoint|no_safe_route|timeout
	RouteQueryDuration   *prometheus.HistogramVec
	RouteWarningsTotal   *prometheus.CounterVec // level = INFO|CAUTION|WARNING|CRITICAL

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide metrics registry.
func DefaultRegistry() *Registry {
	once.Do(func() { defaultRegistry = NewRegistry() })
	return defaultRegistry
}

// NewRegistry builds a fresh registry with every metric initialized.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	r.TickDuration = promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
		Name:    "floodroute_tick_duration_seconds",
		Help:    "Duration of one scheduler tick (collection + fusion).",
		Buckets: prometheus.DefBuckets,
	})
	r.TicksTotal = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "floodroute_ticks_total",
		Help: "Total scheduler ticks, by outcome.",
	}, []string{"status"})
	r.SchedulerPaused = promauto.With(reg).NewGauge(prometheus.GaugeOpts{
		Name: "floodroute_scheduler_paused",
		Help: "1 if collectors are paused for hazard-inbox backpressure, else 0.",
	})

	r.SourceAvailable = promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
		Name: "floodroute_source_available",
		Help: "1 if the named external source succeeded on its last poll, else 0.",
	}, []string{"source"})
	r.SourceFetchDuration = promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "floodroute_source_fetch_duration_seconds",
		Help:    "Duration of one external source fetch.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"source"})
	r.ScoutBacklogSize = promauto.With(reg).NewGauge(prometheus.GaugeOpts{
		Name: "floodroute_scout_backlog_size",
		Help: "Scout reports queued locally in C4 past the per-tick batch cap.",
	})

	r.FusionDuration = promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
		Name:    "floodroute_fusion_duration_seconds",
		Help:    "Duration of one hazard fusion pass over the graph.",
		Buckets: prometheus.DefBuckets,
	})
	r.EdgesUpdatedTotal = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "floodroute_edges_updated_total",
		Help: "Total edge risk updates emitted by fusion.",
	})
	r.ScoutsIngestedTotal = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "floodroute_scouts_ingested_total",
		Help: "Total scout reports accepted into the cache.",
	})
	r.ScoutsRejectedTotal = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "floodroute_scouts_rejected_total",
		Help: "Total scout reports rejected for invalid coordinates or severity/confidence.",
	})
	r.BadRecordsTotal = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "floodroute_bad_records_total",
		Help: "Total malformed batches dropped by the hazard agent.",
	})
	r.HazardInboxDepth = promauto.With(reg).NewGauge(prometheus.GaugeOpts{
		Name: "floodroute_hazard_inbox_depth",
		Help: "Messages currently queued in the hazard agent's mailbox.",
	})

	r.RouteQueriesTotal = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "floodroute_route_queries_total",
		Help: "Total route queries, by outcome.",
	}, []string{"outcome"})
	r.RouteQueryDuration = promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "floodroute_route_query_duration_seconds",
		Help:    "Duration of one route query.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	}, []string{"mode"})
	r.RouteWarningsTotal = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "floodroute_route_warnings_total",
		Help: "Total successful routes, by warning level.",
	}, []string{"level"})

	return r
}

// Gatherer exposes the underlying prometheus.Registry for an HTTP handler.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
