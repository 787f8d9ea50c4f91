package roadgraph

import (
	"testing"

	"github.com/dd0wney/floodroute/pkg/geo"
)

func sampleGraph(t *testing.T) *RoadGraph {
	t.Helper()
	nodes := []Node{
		{ID: 1, Point: geo.Point{Lat: 14.6500, Lon: 121.1000}},
		{ID: 2, Point: geo.Point{Lat: 14.6510, Lon: 121.1010}},
	}
	edges := []Edge{
		{Key: EdgeKey{From: 1, To: 2, Parallel: 0}, LengthMeters: 150},
	}
	g, err := New(DefaultConfig(), nodes, edges)
	if err != nil {
		t.Fatalf("unexpected error building graph: %v", err)
	}
	return g
}

func TestNearestNodeWithinMappingDistanceSucceeds(t *testing.T) {
	g := sampleGraph(t)

	// ~500m due north of node 1 (1 deg lat ~= 111195m on the haversine
	// sphere, which puts the point a fraction of a millimetre inside the limit).
	offsetDeg := DefaultMaxMappingDistanceMeters / 111195.0
	pt := geo.Point{Lat: 14.6500 + offsetDeg, Lon: 121.1000}

	if _, err := g.NearestNode(pt); err != nil {
		t.Fatalf("expected point at mapping boundary to map, got %v", err)
	}
}

func TestNearestNodeBeyondMappingDistanceFails(t *testing.T) {
	g := sampleGraph(t)

	offsetDeg := (DefaultMaxMappingDistanceMeters + 50) / 111000.0
	pt := geo.Point{Lat: 14.6500 + offsetDeg, Lon: 121.1000}

	if _, err := g.NearestNode(pt); err == nil {
		t.Fatal("expected point beyond mapping distance to fail")
	}
}

func TestNearestNodeRejectsInvalidCoordinate(t *testing.T) {
	g := sampleGraph(t)
	if _, err := g.NearestNode(geo.Point{Lat: 999, Lon: 0}); err == nil {
		t.Fatal("expected invalid coordinate to fail")
	}
}

func TestEdgeImpassableAtThreshold(t *testing.T) {
	g := sampleGraph(t)
	key := EdgeKey{From: 1, To: 2, Parallel: 0}

	if err := g.UpdateEdgeRisk(key, 0.9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, ok := g.Edge(key)
	if !ok {
		t.Fatal("expected edge to exist")
	}
	if !e.Impassable() {
		t.Fatal("expected risk of exactly 0.9 to be impassable")
	}
}

func TestEdgeJustBelowThresholdIsPassable(t *testing.T) {
	g := sampleGraph(t)
	key := EdgeKey{From: 1, To: 2, Parallel: 0}

	if err := g.UpdateEdgeRisk(key, 0.899999); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, _ := g.Edge(key)
	if e.Impassable() {
		t.Fatal("expected risk just below 0.9 to remain passable")
	}
}

func TestUpdateEdgeRiskClampsOutOfRange(t *testing.T) {
	g := sampleGraph(t)
	key := EdgeKey{From: 1, To: 2, Parallel: 0}

	if err := g.UpdateEdgeRisk(key, 1.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, _ := g.Edge(key)
	if e.Risk != 1.0 {
		t.Fatalf("expected risk clamped to 1.0, got %f", e.Risk)
	}

	if err := g.UpdateEdgeRisk(key, -0.2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, _ = g.Edge(key)
	if e.Risk != 0.0 {
		t.Fatalf("expected risk clamped to 0.0, got %f", e.Risk)
	}
}

func TestUpdateEdgeRiskUnknownKeyFails(t *testing.T) {
	g := sampleGraph(t)
	err := g.UpdateEdgeRisk(EdgeKey{From: 99, To: 100, Parallel: 0}, 0.5)
	if err == nil {
		t.Fatal("expected error for unknown edge key")
	}
}

func TestBatchUpdateEdgeRisksIsAtomic(t *testing.T) {
	g := sampleGraph(t)
	key := EdgeKey{From: 1, To: 2, Parallel: 0}

	err := g.BatchUpdateEdgeRisks([]EdgeRiskUpdate{
		{Key: key, Risk: 0.4},
		{Key: EdgeKey{From: 99, To: 100, Parallel: 0}, Risk: 0.5},
	})
	if err == nil {
		t.Fatal("expected batch with an unknown key to fail")
	}
	if e, _ := g.Edge(key); e.Risk != 0 {
		t.Fatalf("expected failed batch to leave risk at 0, got %f", e.Risk)
	}
}

func TestNewRejectsDuplicateEdgeKey(t *testing.T) {
	nodes := []Node{
		{ID: 1, Point: geo.Point{Lat: 14.65, Lon: 121.10}},
		{ID: 2, Point: geo.Point{Lat: 14.66, Lon: 121.11}},
	}
	edges := []Edge{
		{Key: EdgeKey{From: 1, To: 2, Parallel: 0}, LengthMeters: 100},
		{Key: EdgeKey{From: 1, To: 2, Parallel: 0}, LengthMeters: 120},
	}
	if _, err := New(DefaultConfig(), nodes, edges); err == nil {
		t.Fatal("expected duplicate edge key to fail")
	}
}

func TestNewRejectsEdgeToUnknownNode(t *testing.T) {
	nodes := []Node{{ID: 1, Point: geo.Point{Lat: 14.65, Lon: 121.10}}}
	edges := []Edge{{Key: EdgeKey{From: 1, To: 2, Parallel: 0}, LengthMeters: 100}}
	if _, err := New(DefaultConfig(), nodes, edges); err == nil {
		t.Fatal("expected edge referencing unknown node to fail")
	}
}

func TestSnapshotIsIndependentOfLaterMutation(t *testing.T) {
	g := sampleGraph(t)
	key := EdgeKey{From: 1, To: 2, Parallel: 0}

	snap := g.Snapshot()
	if err := g.UpdateEdgeRisk(key, 0.8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e, ok := snap.Edge(key)
	if !ok {
		t.Fatal("expected edge present in snapshot")
	}
	if e.Risk != 0 {
		t.Fatalf("expected snapshot to retain pre-mutation risk of 0, got %f", e.Risk)
	}
}

func TestEdgesInRadiusFindsMidpoint(t *testing.T) {
	g := sampleGraph(t)
	keys, err := g.EdgesInRadius(geo.Point{Lat: 14.6505, Lon: 121.1005}, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected 1 edge in radius, got %d", len(keys))
	}
}
