package roadgraph

import (
	"fmt"
	"sync"

	"github.com/dd0wney/floodroute/pkg/geo"
)

// ErrNotMapped is returned by NearestNode when no node lies within the
// configured max-mapping distance of the query point.
var ErrNotMapped = fmt.Errorf("roadgraph: no node within mapping distance")

// ErrEdgeNotFound is returned by single-edge operations on an unknown key.
var ErrEdgeNotFound = fmt.Errorf("roadgraph: edge not found")

// DefaultMaxMappingDistanceMeters is the default NearestNode cutoff.
const DefaultMaxMappingDistanceMeters = 500.0

// DefaultGridCellSizeDeg is the default spatial-index cell size (~111m).
const DefaultGridCellSizeDeg = 0.001

// Config controls RoadGraph construction.
type Config struct {
	MaxMappingDistanceMeters float64
	GridCellSizeDeg          float64
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxMappingDistanceMeters: DefaultMaxMappingDistanceMeters,
		GridCellSizeDeg:          DefaultGridCellSizeDeg,
	}
}

// RoadGraph is the directed multigraph C1 owns. The edge count is fixed for
// the lifetime of the process; only Risk (and the derived Weight) mutate,
// and only through UpdateEdgeRisk/BatchUpdateEdgeRisks.
type RoadGraph struct {
	cfg Config

	mu       sync.RWMutex
	nodes    map[NodeID]*Node
	edges    map[EdgeKey]*Edge
	outgoing map[NodeID][]EdgeKey

	nodeIndex *geo.Grid[NodeID]
	edgeIndex *geo.Grid[EdgeKey]
}

// New builds a RoadGraph from a fixed set of nodes and edges. The edge
// count is fixed from this point on: later calls only mutate risk.
func New(cfg Config, nodes []Node, edges []Edge) (*RoadGraph, error) {
	if cfg.MaxMappingDistanceMeters <= 0 {
		cfg.MaxMappingDistanceMeters = DefaultMaxMappingDistanceMeters
	}
	if cfg.GridCellSizeDeg <= 0 {
		cfg.GridCellSizeDeg = DefaultGridCellSizeDeg
	}

	g := &RoadGraph{
		cfg:       cfg,
		nodes:     make(map[NodeID]*Node, len(nodes)),
		edges:     make(map[EdgeKey]*Edge, len(edges)),
		outgoing:  make(map[NodeID][]EdgeKey),
		nodeIndex: geo.NewGrid[NodeID](cfg.GridCellSizeDeg),
		edgeIndex: geo.NewGrid[EdgeKey](cfg.GridCellSizeDeg),
	}

	for i := range nodes {
		n := nodes[i]
		if !n.Point.Valid() {
			return nil, fmt.Errorf("roadgraph: node %d has invalid coordinate %v", n.ID, n.Point)
		}
		node := n
		g.nodes[n.ID] = &node
		g.nodeIndex.Insert(n.ID, n.Point)
	}

	for i := range edges {
		e := edges[i]
		if _, ok := g.nodes[e.Key.From]; !ok {
			return nil, fmt.Errorf("roadgraph: edge %s references unknown source node", e.Key)
		}
		if _, ok := g.nodes[e.Key.To]; !ok {
			return nil, fmt.Errorf("roadgraph: edge %s references unknown target node", e.Key)
		}
		if _, exists := g.edges[e.Key]; exists {
			return nil, fmt.Errorf("roadgraph: duplicate edge key %s", e.Key)
		}
		e.Risk = clampRisk(e.Risk)
		e.Weight = e.LengthMeters
		edge := e
		g.edges[e.Key] = &edge
		g.outgoing[e.Key.From] = append(g.outgoing[e.Key.From], e.Key)
		g.edgeIndex.Insert(e.Key, edge.midpoint(g.nodes))
	}

	return g, nil
}

// NearestNode returns the node closest to pt by great-circle distance,
// rejecting queries farther than the configured max mapping distance.
func (g *RoadGraph) NearestNode(pt geo.Point) (NodeID, error) {
	if err := geo.Validate(pt); err != nil {
		return 0, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	id, dist, ok := g.nodeIndex.Nearest(pt)
	if !ok || dist > g.cfg.MaxMappingDistanceMeters {
		return 0, ErrNotMapped
	}
	return id, nil
}

// EdgesInRadius returns every edge whose midpoint lies within rMeters of pt.
func (g *RoadGraph) EdgesInRadius(pt geo.Point, rMeters float64) ([]EdgeKey, error) {
	if err := geo.Validate(pt); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.edgeIndex.WithinRadius(pt, rMeters), nil
}

// UpdateEdgeRisk mutates one edge's risk and recomputes its combined
// weight atomically under the write lock.
func (g *RoadGraph) UpdateEdgeRisk(key EdgeKey, risk float64) error {
	return g.BatchUpdateEdgeRisks([]EdgeRiskUpdate{{Key: key, Risk: risk}})
}

// BatchUpdateEdgeRisks applies many risk updates under a single acquisition
// of the write lock — the path fusion is expected to use exclusively, so
// readers (routing) see consistent per-tick states. If any key is unknown,
// none of the updates is applied.
func (g *RoadGraph) BatchUpdateEdgeRisks(updates []EdgeRiskUpdate) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, u := range updates {
		if _, ok := g.edges[u.Key]; !ok {
			return fmt.Errorf("%w: %s", ErrEdgeNotFound, u.Key)
		}
	}
	for _, u := range updates {
		edge := g.edges[u.Key]
		edge.Risk = clampRisk(u.Risk)
		edge.Weight = edge.LengthMeters
	}
	return nil
}

// Node returns a copy of the node, if present.
func (g *RoadGraph) Node(id NodeID) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// OutgoingEdges returns the edge keys leaving node id.
func (g *RoadGraph) OutgoingEdges(id NodeID) []EdgeKey {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := g.outgoing[id]
	out := make([]EdgeKey, len(keys))
	copy(out, keys)
	return out
}

// Edge returns a copy of the edge for key, if present.
func (g *RoadGraph) Edge(key EdgeKey) (Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[key]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// Stats summarizes graph size for status reporting.
type Stats struct {
	NodeCount int
	EdgeCount int
}

func (g *RoadGraph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Stats{NodeCount: len(g.nodes), EdgeCount: len(g.edges)}
}
