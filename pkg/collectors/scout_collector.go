package collectors

import (
	"context"
	"time"

	"github.com/dd0wney/floodroute/pkg/acl"
	"github.com/dd0wney/floodroute/pkg/floodsource"
	"github.com/dd0wney/floodroute/pkg/logging"
)

// DefaultScoutBatchSize is the default per-tick cap on emitted reports (§4.4).
const DefaultScoutBatchSize = 10

// ScoutReportBatch is the normalized payload of one scout_report_batch
// INFORM.
type ScoutReportBatch struct {
	Reports     []floodsource.ScoutReport
	CollectedAt time.Time
}

// ScoutCollector is C4: it pulls crowdsourced reports, discards those
// missing both a location name and coordinates, and emits at most
// BatchSize per tick. Reports beyond that cap queue locally, FIFO, for
// the next tick (§4.4) rather than flooding C5.
type ScoutCollector struct {
	source    floodsource.ReportSource
	substrate *acl.Substrate
	selfID    string
	hazardID  string
	batchSize int
	pullDeadline time.Duration
	log       logging.Logger

	backlog []floodsource.ScoutReport
}

// ScoutCollectorConfig wires a ScoutCollector's collaborators.
type ScoutCollectorConfig struct {
	Source        floodsource.ReportSource
	Substrate     *acl.Substrate
	SelfID        string
	HazardAgentID string
	BatchSize     int
	PullDeadline  time.Duration
	Logger        logging.Logger
}

// NewScoutCollector constructs C4 and registers its mailbox.
func NewScoutCollector(cfg ScoutCollectorConfig) *ScoutCollector {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultScoutBatchSize
	}
	if cfg.PullDeadline <= 0 {
		cfg.PullDeadline = DefaultSourceTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewDefaultLogger()
	}
	cfg.Substrate.Register(cfg.SelfID)

	return &ScoutCollector{
		source:       cfg.Source,
		substrate:    cfg.Substrate,
		selfID:       cfg.SelfID,
		hazardID:     cfg.HazardAgentID,
		batchSize:    cfg.BatchSize,
		pullDeadline: cfg.PullDeadline,
		log:          cfg.Logger.With(logging.Component("scout_collector")),
	}
}

// isAcceptable reports whether r carries enough location information to be
// usable by fusion (§4.4: "missing both [is] discarded").
func isAcceptable(r floodsource.ScoutReport) bool {
	if r.HasCoordinates {
		return true
	}
	return r.LocationName != ""
}

// Tick pulls new reports (bounded by the pull deadline), prepends any
// locally-queued backlog, and emits at most batchSize to the hazard agent.
// The remainder stays queued, FIFO, for the next tick.
func (c *ScoutCollector) Tick(ctx context.Context) error {
	if c.source != nil {
		cctx, cancel := context.WithTimeout(ctx, c.pullDeadline)
		fresh, err := c.source.NextBatch(cctx, c.batchSize)
		cancel()
		if err != nil {
			c.log.Warn("report source failed", logging.Source("scout"), logging.Err(err))
		} else {
			for _, r := range fresh {
				if isAcceptable(r) {
					c.backlog = append(c.backlog, r)
				} else {
					c.log.Debug("discarding report with no resolvable location")
				}
			}
		}
	}

	n := c.batchSize
	if n > len(c.backlog) {
		n = len(c.backlog)
	}
	emit := c.backlog[:n]
	c.backlog = c.backlog[n:]

	if len(c.backlog) > 0 {
		c.log.Info("scout reports queued past batch cap", logging.Int("queued", len(c.backlog)))
	}

	batch := ScoutReportBatch{Reports: emit, CollectedAt: time.Now()}
	return c.substrate.Send(acl.Message{
		Performative: acl.Inform,
		Sender:       c.selfID,
		Receiver:     c.hazardID,
		Ontology:     acl.OntologyScoutReportBatch,
		Content:      batch,
	})
}

// SubmitFeedback translates a direct user feedback submission (§6) into a
// synthetic ScoutReport and queues it like any other pulled report. Kind
// maps to a ReportType and, for "flooded", a conservative default severity
// when the caller does not supply one explicitly via severity > 0.
func (c *ScoutCollector) SubmitFeedback(lat, lon float64, kind string, severity float64, at time.Time) {
	rt := floodsource.ReportType(kind)
	if kind == "flooded" {
		rt = floodsource.ReportFlooding
	}
	if severity <= 0 {
		switch rt {
		case floodsource.ReportFlooding:
			severity = 0.7
		case floodsource.ReportBlocked:
			severity = 0.6
		case floodsource.ReportTraffic:
			severity = 0.3
		default:
			severity = 0.1
		}
	}
	c.backlog = append(c.backlog, floodsource.ScoutReport{
		Text:           "user feedback: " + kind,
		HasCoordinates: true,
		Lat:            lat,
		Lon:            lon,
		Severity:       severity,
		Confidence:     0.6,
		Type:           rt,
		ReportedAt:     at,
	})
}

// Backlog reports how many reports are queued locally for a later batch:
// pulled reports past the batch cap and submitted feedback alike.
func (c *ScoutCollector) Backlog() int {
	return len(c.backlog)
}
