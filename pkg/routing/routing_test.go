package routing

import (
	"context"
	"testing"

	"github.com/dd0wney/floodroute/pkg/geo"
	"github.com/dd0wney/floodroute/pkg/roadgraph"
)

// buildLineGraph builds three nodes in a line: 1 -> 2 -> 3, plus a
// parallel, shorter-but-riskier edge directly 1 -> 3.
func buildLineGraph(t *testing.T) *roadgraph.RoadGraph {
	t.Helper()
	nodes := []roadgraph.Node{
		{ID: 1, Point: geo.Point{Lat: 14.6500, Lon: 121.1000}},
		{ID: 2, Point: geo.Point{Lat: 14.6510, Lon: 121.1000}},
		{ID: 3, Point: geo.Point{Lat: 14.6520, Lon: 121.1000}},
	}
	edges := []roadgraph.Edge{
		{Key: roadgraph.EdgeKey{From: 1, To: 2, Parallel: 0}, LengthMeters: 500, Risk: 0.1},
		{Key: roadgraph.EdgeKey{From: 2, To: 3, Parallel: 0}, LengthMeters: 500, Risk: 0.1},
		{Key: roadgraph.EdgeKey{From: 1, To: 3, Parallel: 0}, LengthMeters: 700, Risk: 0.95},
	}
	g, err := roadgraph.New(roadgraph.DefaultConfig(), nodes, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func TestRouteExcludesImpassableEdge(t *testing.T) {
	g := buildLineGraph(t)
	agent, err := NewAgent(DefaultConfig(), g, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer agent.Close()

	res, err := agent.Route(context.Background(), RouteRequest{
		Start: geo.Point{Lat: 14.6500, Lon: 121.1000},
		End:   geo.Point{Lat: 14.6520, Lon: 121.1000},
		Mode:  Fastest,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Edges) != 2 {
		t.Fatalf("expected the 2-hop safe path, got %d edges", len(res.Edges))
	}
}

func TestFastestModeIgnoresRiskWithinThreshold(t *testing.T) {
	nodes := []roadgraph.Node{
		{ID: 1, Point: geo.Point{Lat: 14.6500, Lon: 121.1000}},
		{ID: 2, Point: geo.Point{Lat: 14.6510, Lon: 121.1000}},
	}
	edges := []roadgraph.Edge{
		{Key: roadgraph.EdgeKey{From: 1, To: 2, Parallel: 0}, LengthMeters: 500, Risk: 0.7},
		{Key: roadgraph.EdgeKey{From: 1, To: 2, Parallel: 1}, LengthMeters: 900, Risk: 0.0},
	}
	g, err := roadgraph.New(roadgraph.DefaultConfig(), nodes, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agent, _ := NewAgent(DefaultConfig(), g, nil)
	defer agent.Close()

	res, err := agent.Route(context.Background(), RouteRequest{
		Start: geo.Point{Lat: 14.6500, Lon: 121.1000},
		End:   geo.Point{Lat: 14.6510, Lon: 121.1000},
		Mode:  Fastest,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.LengthMeters != 500 {
		t.Fatalf("expected fastest mode to take the shorter risky edge, got length %f", res.LengthMeters)
	}
}

func TestSafestModePrefersLongerSaferEdge(t *testing.T) {
	nodes := []roadgraph.Node{
		{ID: 1, Point: geo.Point{Lat: 14.6500, Lon: 121.1000}},
		{ID: 2, Point: geo.Point{Lat: 14.6510, Lon: 121.1000}},
	}
	edges := []roadgraph.Edge{
		{Key: roadgraph.EdgeKey{From: 1, To: 2, Parallel: 0}, LengthMeters: 500, Risk: 0.7},
		{Key: roadgraph.EdgeKey{From: 1, To: 2, Parallel: 1}, LengthMeters: 900, Risk: 0.0},
	}
	g, err := roadgraph.New(roadgraph.DefaultConfig(), nodes, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agent, _ := NewAgent(DefaultConfig(), g, nil)
	defer agent.Close()

	res, err := agent.Route(context.Background(), RouteRequest{
		Start: geo.Point{Lat: 14.6500, Lon: 121.1000},
		End:   geo.Point{Lat: 14.6510, Lon: 121.1000},
		Mode:  Safest,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.LengthMeters != 900 {
		t.Fatalf("expected safest mode to detour onto the zero-risk edge, got length %f", res.LengthMeters)
	}
}

func TestRouteUnreachableEndpointFails(t *testing.T) {
	g := buildLineGraph(t)
	agent, _ := NewAgent(DefaultConfig(), g, nil)
	defer agent.Close()

	_, err := agent.Route(context.Background(), RouteRequest{
		Start: geo.Point{Lat: 14.6500, Lon: 121.1000},
		End:   geo.Point{Lat: 50.0, Lon: 50.0},
		Mode:  Balanced,
	})
	rf, ok := err.(*RouteFailure)
	if !ok {
		t.Fatalf("expected *RouteFailure, got %T", err)
	}
	if rf.Kind != FailureUnreachableEndpoint {
		t.Fatalf("expected unreachable_endpoint, got %s", rf.Kind)
	}
}

func TestRouteNoSafeRouteWhenAllEdgesImpassable(t *testing.T) {
	nodes := []roadgraph.Node{
		{ID: 1, Point: geo.Point{Lat: 14.6500, Lon: 121.1000}},
		{ID: 2, Point: geo.Point{Lat: 14.6510, Lon: 121.1000}},
	}
	edges := []roadgraph.Edge{
		{Key: roadgraph.EdgeKey{From: 1, To: 2, Parallel: 0}, LengthMeters: 500, Risk: 0.95},
	}
	g, err := roadgraph.New(roadgraph.DefaultConfig(), nodes, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agent, _ := NewAgent(DefaultConfig(), g, nil)
	defer agent.Close()

	_, err = agent.Route(context.Background(), RouteRequest{
		Start: geo.Point{Lat: 14.6500, Lon: 121.1000},
		End:   geo.Point{Lat: 14.6510, Lon: 121.1000},
		Mode:  Fastest,
	})
	rf, ok := err.(*RouteFailure)
	if !ok {
		t.Fatalf("expected *RouteFailure, got %T", err)
	}
	if rf.Kind != FailureNoSafeRoute {
		t.Fatalf("expected no_safe_route, got %s", rf.Kind)
	}
}

func TestEvacuateReturnsFirstFeasibleCandidate(t *testing.T) {
	g := buildLineGraph(t)
	agent, _ := NewAgent(DefaultConfig(), g, nil)
	defer agent.Close()

	res, err := agent.Evacuate(context.Background(), EvacuationRequest{
		From: geo.Point{Lat: 14.6500, Lon: 121.1000},
		Candidates: []geo.Point{
			{Lat: 50.0, Lon: 50.0}, // unreachable, closer on map scale is irrelevant here
			{Lat: 14.6520, Lon: 121.1000},
		},
		Mode: Balanced,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.LengthMeters <= 0 {
		t.Fatal("expected a feasible route")
	}
}

func TestRouteSameNodeReturnsTrivialPath(t *testing.T) {
	g := buildLineGraph(t)
	agent, _ := NewAgent(DefaultConfig(), g, nil)
	defer agent.Close()

	res, err := agent.Route(context.Background(), RouteRequest{
		Start: geo.Point{Lat: 14.6500, Lon: 121.1000},
		End:   geo.Point{Lat: 14.6500, Lon: 121.1000},
		Mode:  Balanced,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.LengthMeters != 0 {
		t.Fatalf("expected zero-length trivial path, got %f", res.LengthMeters)
	}
}
