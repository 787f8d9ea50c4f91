package routing

import (
	"container/heap"
	"context"

	"github.com/dd0wney/floodroute/pkg/geo"
	"github.com/dd0wney/floodroute/pkg/roadgraph"
)

// pqItem is one entry in the A* open set.
type pqItem struct {
	node     roadgraph.NodeID
	priority float64 // g + h
	index    int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].priority < pq[j].priority }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i]; pq[i].index, pq[j].index = i, j }
func (pq *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// edgeCost is the "virtual meters" cost for one edge under mode, or
// (0, false) if the edge is impassable (§4.6 "Cost function").
func edgeCost(e roadgraph.Edge, mode Mode) (float64, bool) {
	if e.Impassable() {
		return 0, false
	}
	return e.LengthMeters + PenaltyFor(mode)*e.Risk, true
}

// searchResult carries the winning path plus the per-edge risk profile
// needed to build the final RouteResult.
type searchResult struct {
	nodes       []roadgraph.NodeID
	edges       []roadgraph.EdgeKey
	lengthMeters float64
	maxRisk     float64
	avgRisk     float64
}

// astar runs A* from start to end over snap using mode's cost function,
// checking ctx for cancellation/deadline between expansions (§5
// "Cancellation and timeouts"). Multigraph handling: every parallel edge
// between two nodes is relaxed independently, so the lowest-cost edge
// naturally wins the standard best-known-distance comparison (§4.6).
func astar(ctx context.Context, snap *roadgraph.Snapshot, start, end roadgraph.NodeID, mode Mode) (*searchResult, error) {
	if start == end {
		return &searchResult{nodes: []roadgraph.NodeID{start}}, nil
	}

	endPt, ok := snap.NodePoint(end)
	if !ok {
		return nil, &RouteFailure{Kind: FailureUnreachableEndpoint, Message: "end node not in graph"}
	}

	gScore := map[roadgraph.NodeID]float64{start: 0}
	cameFromNode := map[roadgraph.NodeID]roadgraph.NodeID{}
	cameFromEdge := map[roadgraph.NodeID]roadgraph.EdgeKey{}
	closed := map[roadgraph.NodeID]bool{}

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{node: start, priority: heuristic(snap, start, endPt)})

	for pq.Len() > 0 {
		select {
		case <-ctx.Done():
			return nil, &RouteFailure{Kind: FailureTimeout, Message: "deadline exceeded during search"}
		default:
		}

		current := heap.Pop(pq).(*pqItem).node
		if closed[current] {
			continue
		}
		if current == end {
			return reconstruct(snap, cameFromNode, cameFromEdge, start, end, mode), nil
		}
		closed[current] = true

		for _, key := range snap.OutgoingEdges(current) {
			edge, ok := snap.Edge(key)
			if !ok {
				continue
			}
			cost, passable := edgeCost(edge, mode)
			if !passable {
				continue
			}

			tentative := gScore[current] + cost
			if existing, seen := gScore[key.To]; seen && tentative >= existing {
				continue
			}

			gScore[key.To] = tentative
			cameFromNode[key.To] = current
			cameFromEdge[key.To] = key

			h := heuristic(snap, key.To, endPt)
			heap.Push(pq, &pqItem{node: key.To, priority: tentative + h})
		}
	}

	return nil, &RouteFailure{Kind: FailureNoSafeRoute, Message: "search exhausted with no passable path"}
}

// heuristic is great-circle distance to the goal: it never overestimates
// because real road paths are at least as long as the chord (§4.6
// "Admissibility").
func heuristic(snap *roadgraph.Snapshot, n roadgraph.NodeID, goal geo.Point) float64 {
	pt, ok := snap.NodePoint(n)
	if !ok {
		return 0
	}
	return geo.HaversineMeters(pt, goal)
}

func reconstruct(snap *roadgraph.Snapshot, cameFromNode map[roadgraph.NodeID]roadgraph.NodeID, cameFromEdge map[roadgraph.NodeID]roadgraph.EdgeKey, start, end roadgraph.NodeID, mode Mode) *searchResult {
	var nodes []roadgraph.NodeID
	var edges []roadgraph.EdgeKey

	n := end
	for n != start {
		nodes = append(nodes, n)
		key := cameFromEdge[n]
		edges = append(edges, key)
		n = cameFromNode[n]
	}
	nodes = append(nodes, start)

	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	var total, maxRisk, sumRisk float64
	for _, key := range edges {
		e, _ := snap.Edge(key)
		total += e.LengthMeters
		sumRisk += e.Risk
		if e.Risk > maxRisk {
			maxRisk = e.Risk
		}
	}
	var avgRisk float64
	if len(edges) > 0 {
		avgRisk = sumRisk / float64(len(edges))
	}

	return &searchResult{
		nodes:        nodes,
		edges:        edges,
		lengthMeters: total,
		maxRisk:      maxRisk,
		avgRisk:      avgRisk,
	}
}
