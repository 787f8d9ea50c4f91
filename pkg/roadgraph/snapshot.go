package roadgraph

import "github.com/dd0wney/floodroute/pkg/geo"

// Snapshot is an immutable read view of the graph, taken under a single
// read-lock acquisition, so a routing search is never perturbed mid-flight
// by a concurrent fusion write.
type Snapshot struct {
	nodes    map[NodeID]Node
	edges    map[EdgeKey]Edge
	outgoing map[NodeID][]EdgeKey
}

// Snapshot copies the current node/edge/adjacency state under a read lock.
func (g *RoadGraph) Snapshot() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := &Snapshot{
		nodes:    make(map[NodeID]Node, len(g.nodes)),
		edges:    make(map[EdgeKey]Edge, len(g.edges)),
		outgoing: make(map[NodeID][]EdgeKey, len(g.outgoing)),
	}
	for id, n := range g.nodes {
		s.nodes[id] = *n
	}
	for key, e := range g.edges {
		s.edges[key] = *e
	}
	for id, keys := range g.outgoing {
		cp := make([]EdgeKey, len(keys))
		copy(cp, keys)
		s.outgoing[id] = cp
	}
	return s
}

// Node returns the node for id, as it stood at snapshot time.
func (s *Snapshot) Node(id NodeID) (Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Edge returns the edge for key, as it stood at snapshot time.
func (s *Snapshot) Edge(key EdgeKey) (Edge, bool) {
	e, ok := s.edges[key]
	return e, ok
}

// OutgoingEdges returns the edge keys leaving id, as they stood at snapshot time.
func (s *Snapshot) OutgoingEdges(id NodeID) []EdgeKey {
	return s.outgoing[id]
}

// NodePoint is a convenience accessor used by the A* heuristic.
func (s *Snapshot) NodePoint(id NodeID) (geo.Point, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return geo.Point{}, false
	}
	return n.Point, true
}

// NodeCount returns the number of nodes in the snapshot.
func (s *Snapshot) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of edges in the snapshot.
func (s *Snapshot) EdgeCount() int { return len(s.edges) }

// Edges returns every edge in the snapshot, in no particular order. Used
// by fusion to walk the whole graph once per tick.
func (s *Snapshot) Edges() []Edge {
	out := make([]Edge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, e)
	}
	return out
}

// EdgeMidpoint returns the geographic midpoint used for spatial joins
// against the edge's fixed geometry/endpoints, as computed at load time.
func (s *Snapshot) EdgeMidpoint(key EdgeKey) (geo.Point, bool) {
	e, ok := s.edges[key]
	if !ok {
		return geo.Point{}, false
	}
	if len(e.Geometry) > 0 {
		return e.Geometry[len(e.Geometry)/2], true
	}
	from, ok1 := s.nodes[e.Key.From]
	to, ok2 := s.nodes[e.Key.To]
	if !ok1 || !ok2 {
		return geo.Point{}, false
	}
	return geo.Midpoint(from.Point, to.Point), true
}
