// Package statuspub publishes each scheduler tick's Status probe to
// external observers: a bundled TUI or an out-of-process dashboard,
// without either polling the scheduler directly. First-class here rather
// than the build-tag-gated optional feature it is in the teacher's
// replication package, since status fan-out is core to this system.
package statuspub

import "time"

// SourceStatus is the availability of one upstream collector source as of
// the most recent tick.
type SourceStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Status is one tick's broadcastable summary (§5, §4.5).
type Status struct {
	Tick            uint64         `json:"tick"`
	At              time.Time      `json:"at"`
	SchedulerPaused bool           `json:"scheduler_paused"`
	EdgesUpdated    int            `json:"edges_updated"`
	ScoutsIngested  int            `json:"scouts_ingested"`
	ScoutsRejected  int            `json:"scouts_rejected"`
	FusionDuration  time.Duration  `json:"fusion_duration"`
	Sources         []SourceStatus `json:"sources"`
	LastRouteWarn   string         `json:"last_route_warning,omitempty"`
}

// Probe is polled directly by in-process observers (the bundled TUI) that
// don't need the network fan-out a PUB socket provides.
type Probe interface {
	Latest() (Status, bool)
}
