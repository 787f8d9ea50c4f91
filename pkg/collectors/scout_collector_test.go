package collectors

import (
	"context"
	"testing"
	"time"

	"github.com/dd0wney/floodroute/pkg/acl"
	"github.com/dd0wney/floodroute/pkg/floodsource"
)

func makeReports(n int) []floodsource.ScoutReport {
	out := make([]floodsource.ScoutReport, n)
	for i := range out {
		out[i] = floodsource.ScoutReport{
			Text:           "flooding here",
			HasCoordinates: true,
			Lat:            14.65,
			Lon:            121.10,
			Severity:       0.5,
			Confidence:     0.7,
			Type:           floodsource.ReportFlooding,
			ReportedAt:     time.Now(),
		}
	}
	return out
}

func TestScoutCollectorCapsBatchSize(t *testing.T) {
	sub := acl.NewSubstrate(8)
	sub.Register("hazard")

	source := floodsource.NewSimulatedReportSource(makeReports(15))
	c := NewScoutCollector(ScoutCollectorConfig{
		Source:        source,
		Substrate:     sub,
		SelfID:        "scout_collector",
		HazardAgentID: "hazard",
		BatchSize:     10,
	})

	if err := c.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg, err := sub.Receive("hazard", time.Second)
	if err != nil {
		t.Fatalf("expected a message: %v", err)
	}
	batch := msg.Content.(ScoutReportBatch)
	if len(batch.Reports) != 10 {
		t.Fatalf("expected batch capped at 10, got %d", len(batch.Reports))
	}
	if c.Backlog() != 5 {
		t.Fatalf("expected 5 reports queued for next tick, got %d", c.Backlog())
	}
}

func TestScoutCollectorDrainsBacklogOverMultipleTicks(t *testing.T) {
	sub := acl.NewSubstrate(8)
	sub.Register("hazard")

	source := floodsource.NewSimulatedReportSource(makeReports(15))
	c := NewScoutCollector(ScoutCollectorConfig{
		Source:        source,
		Substrate:     sub,
		SelfID:        "scout_collector",
		HazardAgentID: "hazard",
		BatchSize:     10,
	})

	if err := c.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sub.Receive("hazard", time.Second)

	if err := c.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg, err := sub.Receive("hazard", time.Second)
	if err != nil {
		t.Fatalf("expected second batch: %v", err)
	}
	batch := msg.Content.(ScoutReportBatch)
	if len(batch.Reports) != 5 {
		t.Fatalf("expected remaining 5 reports, got %d", len(batch.Reports))
	}
	if c.Backlog() != 0 {
		t.Fatalf("expected empty backlog, got %d", c.Backlog())
	}
}

func TestScoutCollectorDiscardsReportWithNoLocation(t *testing.T) {
	sub := acl.NewSubstrate(8)
	sub.Register("hazard")

	source := floodsource.NewSimulatedReportSource([]floodsource.ScoutReport{
		{Text: "flooding somewhere", Severity: 0.5, Confidence: 0.5},
	})
	c := NewScoutCollector(ScoutCollectorConfig{
		Source:        source,
		Substrate:     sub,
		SelfID:        "scout_collector",
		HazardAgentID: "hazard",
	})

	if err := c.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg, err := sub.Receive("hazard", time.Second)
	if err != nil {
		t.Fatalf("expected a message: %v", err)
	}
	batch := msg.Content.(ScoutReportBatch)
	if len(batch.Reports) != 0 {
		t.Fatalf("expected report with no location to be discarded, got %d", len(batch.Reports))
	}
}

func TestSubmitFeedbackQueuesSyntheticReport(t *testing.T) {
	sub := acl.NewSubstrate(8)
	sub.Register("hazard")

	c := NewScoutCollector(ScoutCollectorConfig{
		Substrate:     sub,
		SelfID:        "scout_collector",
		HazardAgentID: "hazard",
	})

	c.SubmitFeedback(14.65, 121.10, "flooded", 0, time.Now())
	if c.Backlog() != 1 {
		t.Fatalf("expected 1 queued report, got %d", c.Backlog())
	}
}
