// Package roadgraph implements C1, the Graph Environment: it owns the road
// multigraph, serializes edge-risk mutations, and exposes neighbor/edge
// iteration plus a spatial index over edge midpoints.
package roadgraph

import (
	"fmt"

	"github.com/dd0wney/floodroute/pkg/geo"
)

// NodeID identifies a graph node.
type NodeID uint64

// EdgeKey identifies one directed edge, keyed by (source, target, parallel
// index) so parallel edges between the same pair of nodes are distinct.
type EdgeKey struct {
	From     NodeID
	To       NodeID
	Parallel int
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("%d-%d-%d", k.From, k.To, k.Parallel)
}

// Node is a stable intersection/waypoint with a WGS84 coordinate.
type Node struct {
	ID    NodeID
	Point geo.Point
}

// Edge is one directed road segment. LengthMeters and Geometry are fixed at
// load time; Risk and Weight are the graph's only mutable fields and are
// only ever written through RoadGraph's write path.
type Edge struct {
	Key          EdgeKey
	LengthMeters float64
	Geometry     []geo.Point
	Risk         float64
	Weight       float64 // combined weight, currently == LengthMeters (see §4.1)
}

// Midpoint returns the geographic midpoint of the edge's geometry, falling
// back to the midpoint of its two endpoints when no polyline is recorded.
func (e *Edge) midpoint(nodes map[NodeID]*Node) geo.Point {
	if len(e.Geometry) > 0 {
		return e.Geometry[len(e.Geometry)/2]
	}
	from := nodes[e.Key.From]
	to := nodes[e.Key.To]
	if from == nil || to == nil {
		return geo.Point{}
	}
	return geo.Midpoint(from.Point, to.Point)
}

// ImpassableThreshold is the risk value at and above which an edge is
// excluded from routing entirely.
const ImpassableThreshold = 0.9

// Impassable reports whether risk makes this edge unusable by any mode.
func (e *Edge) Impassable() bool {
	return e.Risk >= ImpassableThreshold
}

// EdgeRiskUpdate pairs an edge key with the risk value to apply to it.
type EdgeRiskUpdate struct {
	Key  EdgeKey
	Risk float64
}

func clampRisk(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
