package metrics

import "time"

// RecordTick records one scheduler tick's outcome and duration.
func (r *Registry) RecordTick(status string, duration time.Duration) {
	r.TicksTotal.WithLabelValues(status).Inc()
	r.TickDuration.Observe(duration.Seconds())
}

// RecordSourceFetch records one external source poll.
func (r *Registry) RecordSourceFetch(source string, available bool, duration time.Duration) {
	v := 0.0
	if available {
		v = 1.0
	}
	r.SourceAvailable.WithLabelValues(source).Set(v)
	r.SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordFusion records one hazard-agent tick's stats.
func (r *Registry) RecordFusion(duration time.Duration, edgesUpdated, scoutsIngested, scoutsRejected, badRecords int) {
	r.FusionDuration.Observe(duration.Seconds())
	r.EdgesUpdatedTotal.Add(float64(edgesUpdated))
	r.ScoutsIngestedTotal.Add(float64(scoutsIngested))
	r.ScoutsRejectedTotal.Add(float64(scoutsRejected))
	r.BadRecordsTotal.Add(float64(badRecords))
}

// RecordRouteQuery records one route query's outcome, mode, and duration.
func (r *Registry) RecordRouteQuery(outcome, mode string, duration time.Duration) {
	r.RouteQueriesTotal.WithLabelValues(outcome).Inc()
	r.RouteQueryDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordRouteWarning records the warning level of one successful route.
func (r *Registry) RecordRouteWarning(level string) {
	r.RouteWarningsTotal.WithLabelValues(level).Inc()
}
