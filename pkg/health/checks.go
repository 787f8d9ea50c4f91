package health

import (
	"fmt"
	"sync"
	"time"
)

// GraphCheck reports readiness based on whether the road graph has been
// loaded with at least one node and edge.
func GraphCheck(snap func() (nodeCount, edgeCount int)) CheckFunc {
	return func() Check {
		nodes, edges := snap()
		if nodes == 0 || edges == 0 {
			return Check{
				Name:    "graph_loaded",
				Status:  StatusUnhealthy,
				Message: "road graph has no nodes or edges loaded",
				Details: map[string]any{"nodes": nodes, "edges": edges},
			}
		}
		return Check{
			Name:    "graph_loaded",
			Status:  StatusHealthy,
			Message: fmt.Sprintf("%d nodes, %d edges", nodes, edges),
			Details: map[string]any{"nodes": nodes, "edges": edges},
		}
	}
}

// TickFreshness tracks the time of the most recent successful scheduler
// tick and reports liveness based on how stale it has become. A tick more
// than staleAfter old is degraded; more than 2*staleAfter is unhealthy.
type TickFreshness struct {
	mu       sync.Mutex
	lastTick time.Time
}

// NewTickFreshness builds a tracker with no recorded tick yet.
func NewTickFreshness() *TickFreshness {
	return &TickFreshness{}
}

// Observe records a new successful tick at t.
func (f *TickFreshness) Observe(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTick = t
}

// Check reports liveness given the maximum acceptable tick age, evaluated
// against the current time now.
func (f *TickFreshness) Check(now time.Time, staleAfter time.Duration) CheckFunc {
	return func() Check {
		f.mu.Lock()
		last := f.lastTick
		f.mu.Unlock()

		if last.IsZero() {
			return Check{
				Name:    "last_tick_fresh",
				Status:  StatusDegraded,
				Message: "no tick has completed yet",
			}
		}

		age := now.Sub(last)
		details := map[string]any{"age_seconds": age.Seconds(), "last_tick": last}

		switch {
		case age > 2*staleAfter:
			return Check{Name: "last_tick_fresh", Status: StatusUnhealthy,
				Message: fmt.Sprintf("last tick %s ago, exceeds %s", age, 2*staleAfter), Details: details}
		case age > staleAfter:
			return Check{Name: "last_tick_fresh", Status: StatusDegraded,
				Message: fmt.Sprintf("last tick %s ago, exceeds %s", age, staleAfter), Details: details}
		default:
			return Check{Name: "last_tick_fresh", Status: StatusHealthy,
				Message: fmt.Sprintf("last tick %s ago", age), Details: details}
		}
	}
}

// SourceDegradation tracks which upstream sources failed on the most
// recent flood-collector tick (river, weather, reservoir) for surfacing in
// the readiness/liveness response. Any currently-degraded source reports
// the whole check as degraded, never unhealthy: a down gauge station
// feed is a known, tolerated failure mode (§8), not an outage of the
// routing core itself.
type SourceDegradation struct {
	mu       sync.Mutex
	degraded []string
}

// NewSourceDegradation builds an empty tracker.
func NewSourceDegradation() *SourceDegradation {
	return &SourceDegradation{}
}

// Observe records the set of sources that degraded on the latest tick.
// An empty slice clears prior degradation.
func (s *SourceDegradation) Observe(degraded []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.degraded = append([]string(nil), degraded...)
}

// Check reports the current degradation set.
func (s *SourceDegradation) Check() CheckFunc {
	return func() Check {
		s.mu.Lock()
		degraded := append([]string(nil), s.degraded...)
		s.mu.Unlock()

		if len(degraded) == 0 {
			return Check{Name: "source_degradation", Status: StatusHealthy, Message: "all sources available"}
		}
		return Check{
			Name:    "source_degradation",
			Status:  StatusDegraded,
			Message: fmt.Sprintf("%d source(s) degraded", len(degraded)),
			Details: map[string]any{"sources": degraded},
		}
	}
}

// HazardInboxBackpressure reports degraded status whenever the scheduler
// has paused collectors for hazard-inbox backpressure (§5).
func HazardInboxBackpressure(isPaused func() bool, pending func() int) CheckFunc {
	return func() Check {
		if isPaused() {
			return Check{
				Name:    "hazard_inbox_backpressure",
				Status:  StatusDegraded,
				Message: "collectors paused: hazard inbox over high-water mark",
				Details: map[string]any{"pending": pending()},
			}
		}
		return Check{
			Name:    "hazard_inbox_backpressure",
			Status:  StatusHealthy,
			Details: map[string]any{"pending": pending()},
		}
	}
}
