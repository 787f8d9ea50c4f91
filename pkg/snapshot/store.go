// Package snapshot persists the graph's edge risk map across restarts so a
// redeploy does not forget the last fused hazard picture while the
// collectors warm back up. The canonical store is local disk, snappy
// framed like the teacher's write-ahead log; an optional S3-backed store
// shares the same interface for multi-instance deployments.
package snapshot

import (
	"time"

	"github.com/dd0wney/floodroute/pkg/roadgraph"
)

// EdgeRisk is one persisted (key, risk) pair.
type EdgeRisk struct {
	Key  roadgraph.EdgeKey
	Risk float64
}

// State is the full persisted edge risk map plus the time it was taken.
type State struct {
	TakenAt time.Time
	Edges   []EdgeRisk
}

// Store saves and loads a State. Implementations must treat "no snapshot
// exists yet" as (nil, nil), not an error, so a fresh deployment starts
// clean.
type Store interface {
	Save(state State) error
	Load() (*State, error)
}

// StateFromSnapshot builds a State from a graph snapshot.
func StateFromSnapshot(snap *roadgraph.Snapshot, takenAt time.Time) State {
	edges := snap.Edges()
	out := State{TakenAt: takenAt, Edges: make([]EdgeRisk, 0, len(edges))}
	for _, e := range edges {
		out.Edges = append(out.Edges, EdgeRisk{Key: e.Key, Risk: e.Risk})
	}
	return out
}

// Apply replays a loaded State's risks back onto a live graph via a single
// batched update, restoring the last-known hazard picture before the
// collectors have run their first tick.
func Apply(graph *roadgraph.RoadGraph, state *State) error {
	if state == nil || len(state.Edges) == 0 {
		return nil
	}
	updates := make([]roadgraph.EdgeRiskUpdate, 0, len(state.Edges))
	for _, e := range state.Edges {
		updates = append(updates, roadgraph.EdgeRiskUpdate{Key: e.Key, Risk: e.Risk})
	}
	return graph.BatchUpdateEdgeRisks(updates)
}
