package hazard

import (
	"context"
	"testing"
	"time"

	"github.com/dd0wney/floodroute/pkg/acl"
	"github.com/dd0wney/floodroute/pkg/collectors"
	"github.com/dd0wney/floodroute/pkg/floodsource"
	"github.com/dd0wney/floodroute/pkg/geo"
	"github.com/dd0wney/floodroute/pkg/roadgraph"
)

func testGraph(t *testing.T) *roadgraph.RoadGraph {
	t.Helper()
	nodes := []roadgraph.Node{
		{ID: 1, Point: geo.Point{Lat: 14.6500, Lon: 121.1000}},
		{ID: 2, Point: geo.Point{Lat: 14.6510, Lon: 121.1010}},
	}
	edges := []roadgraph.Edge{
		{Key: roadgraph.EdgeKey{From: 1, To: 2, Parallel: 0}, LengthMeters: 150},
	}
	g, err := roadgraph.New(roadgraph.DefaultConfig(), nodes, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func TestAgentTickIngestsAndUpdatesGraph(t *testing.T) {
	sub := acl.NewSubstrate(8)
	g := testGraph(t)

	agent := NewAgent(AgentConfig{
		Fusion:    DefaultConfig(),
		Graph:     g,
		Substrate: sub,
		SelfID:    "hazard",
	}, roadgraph.DefaultGridCellSizeDeg)

	sub.Register("flood_collector")
	if err := sub.Send(acl.Message{
		Performative: acl.Inform,
		Sender:       "flood_collector",
		Receiver:     "hazard",
		Ontology:     acl.OntologyFloodDataBatch,
		Content: collectors.FloodDataBatch{
			Stations: []floodsource.StationReading{
				floodsource.StationReading{StationID: "a", Lat: 14.6505, Lon: 121.1005, WaterLevel: 19, Thresholds: floodsource.StationThresholds{Alert: 15, Alarm: 16, Critical: 18}}.Classify(),
			},
			CollectedAt: time.Now(),
		},
	}); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	stats, err := agent.Tick(context.Background())
	if err != nil {
		t.Fatalf("unexpected tick error: %v", err)
	}
	if stats.StationsIngested != 1 {
		t.Fatalf("expected 1 station ingested, got %d", stats.StationsIngested)
	}
	if stats.EdgesUpdated != 1 {
		t.Fatalf("expected 1 edge updated, got %d", stats.EdgesUpdated)
	}

	e, ok := g.Edge(roadgraph.EdgeKey{From: 1, To: 2, Parallel: 0})
	if !ok {
		t.Fatal("expected edge to exist")
	}
	if e.Risk <= 0 {
		t.Fatalf("expected edge risk raised by nearby critical station, got %f", e.Risk)
	}
}

func TestAgentTickDropsStationWithUnconfiguredThresholds(t *testing.T) {
	sub := acl.NewSubstrate(8)
	g := testGraph(t)

	agent := NewAgent(AgentConfig{
		Fusion:    DefaultConfig(),
		Graph:     g,
		Substrate: sub,
		SelfID:    "hazard",
	}, roadgraph.DefaultGridCellSizeDeg)

	sub.Register("flood_collector")
	if err := sub.Send(acl.Message{
		Performative: acl.Inform,
		Sender:       "flood_collector",
		Receiver:     "hazard",
		Ontology:     acl.OntologyFloodDataBatch,
		Content: collectors.FloodDataBatch{
			Stations: []floodsource.StationReading{
				floodsource.StationReading{StationID: "unconfigured", Lat: 14.6505, Lon: 121.1005, WaterLevel: 19}.Classify(),
			},
			CollectedAt: time.Now(),
		},
	}); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	stats, err := agent.Tick(context.Background())
	if err != nil {
		t.Fatalf("unexpected tick error: %v", err)
	}
	if stats.StationsIngested != 0 {
		t.Fatalf("expected 0 stations ingested, got %d", stats.StationsIngested)
	}
	if stats.EdgesUpdated != 0 {
		t.Fatalf("expected edge risk to stay untouched by an excluded station, got %d updates", stats.EdgesUpdated)
	}
}

func TestAgentTickDropsMalformedContent(t *testing.T) {
	sub := acl.NewSubstrate(8)
	g := testGraph(t)

	agent := NewAgent(AgentConfig{
		Fusion:    DefaultConfig(),
		Graph:     g,
		Substrate: sub,
		SelfID:    "hazard",
	}, roadgraph.DefaultGridCellSizeDeg)

	sub.Register("bad_sender")
	if err := sub.Send(acl.Message{
		Performative: acl.Inform,
		Sender:       "bad_sender",
		Receiver:     "hazard",
		Ontology:     acl.OntologyFloodDataBatch,
		Content:      "not a FloodDataBatch",
	}); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	stats, err := agent.Tick(context.Background())
	if err != nil {
		t.Fatalf("unexpected tick error: %v", err)
	}
	if stats.BadRecordsDropped != 1 {
		t.Fatalf("expected 1 bad record dropped, got %d", stats.BadRecordsDropped)
	}
}

func TestAgentRejectsScoutReportWithInvalidSeverity(t *testing.T) {
	sub := acl.NewSubstrate(8)
	g := testGraph(t)

	agent := NewAgent(AgentConfig{
		Fusion:    DefaultConfig(),
		Graph:     g,
		Substrate: sub,
		SelfID:    "hazard",
	}, roadgraph.DefaultGridCellSizeDeg)

	sub.Register("scout_collector")
	if err := sub.Send(acl.Message{
		Performative: acl.Inform,
		Sender:       "scout_collector",
		Receiver:     "hazard",
		Ontology:     acl.OntologyScoutReportBatch,
		Content: collectors.ScoutReportBatch{
			Reports: []floodsource.ScoutReport{
				{Text: "bad", HasCoordinates: true, Lat: 14.65, Lon: 121.10, Severity: 1.5, Confidence: 0.5},
			},
			CollectedAt: time.Now(),
		},
	}); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	stats, err := agent.Tick(context.Background())
	if err != nil {
		t.Fatalf("unexpected tick error: %v", err)
	}
	if stats.ScoutsRejected != 1 {
		t.Fatalf("expected 1 scout rejected, got %d", stats.ScoutsRejected)
	}
}
