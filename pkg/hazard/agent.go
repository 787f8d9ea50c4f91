package hazard

import (
	"context"
	"time"

	"github.com/dd0wney/floodroute/pkg/acl"
	"github.com/dd0wney/floodroute/pkg/collectors"
	"github.com/dd0wney/floodroute/pkg/floodsource"
	"github.com/dd0wney/floodroute/pkg/geo"
	"github.com/dd0wney/floodroute/pkg/logging"
	"github.com/dd0wney/floodroute/pkg/roadgraph"
)

// TickStats summarizes one fusion cycle, surfaced to the scheduler/status
// probe for observability.
type TickStats struct {
	MessagesDrained  int
	StationsIngested int
	ScoutsIngested   int
	ScoutsRejected   int
	ScoutsDuplicate  int
	BadRecordsDropped int
	EdgesUpdated     int
	Duration         time.Duration
}

// Agent is C5: the sole owner of every cache it reads, and the sole
// writer of edge risk on the graph.
type Agent struct {
	cfg   Config
	graph *roadgraph.RoadGraph
	depth DepthSource

	substrate *acl.Substrate
	selfID    string

	caches *caches
	log    logging.Logger
}

// AgentConfig wires an Agent's collaborators.
type AgentConfig struct {
	Fusion    Config
	Graph     *roadgraph.RoadGraph
	Depth     DepthSource // optional
	Substrate *acl.Substrate
	SelfID    string
	Logger    logging.Logger
}

// NewAgent constructs C5 and registers its mailbox. scoutCellDeg should
// match C1's grid cell size (§4.5 "scout_index: grid ... matching C1's
// cell size").
func NewAgent(cfg AgentConfig, scoutCellDeg float64) *Agent {
	fusionCfg := cfg.Fusion.normalized()
	if cfg.Logger == nil {
		cfg.Logger = logging.NewDefaultLogger()
	}
	cfg.Substrate.Register(cfg.SelfID)

	return &Agent{
		cfg:       fusionCfg,
		graph:     cfg.Graph,
		depth:     cfg.Depth,
		substrate: cfg.Substrate,
		selfID:    cfg.SelfID,
		caches:    newCaches(fusionCfg.ScoutCacheCapacity, scoutCellDeg),
		log:       cfg.Logger.With(logging.Component("hazard")),
	}
}

// Tick drains the inbox fully, ingests every batch, purges expired cache
// entries, runs the spatial fusion pass over the whole graph, and emits
// one batched write to C1 (§4.5).
func (a *Agent) Tick(ctx context.Context) (TickStats, error) {
	start := time.Now()
	stats := TickStats{}

	msgs, err := a.substrate.DrainAll(a.selfID)
	if err != nil {
		return stats, err
	}
	stats.MessagesDrained = len(msgs)

	now := time.Now()
	for _, msg := range msgs {
		switch msg.Ontology {
		case acl.OntologyFloodDataBatch:
			n, bad := a.ingestFloodBatch(msg.Content, now)
			stats.StationsIngested += n
			stats.BadRecordsDropped += bad
		case acl.OntologyScoutReportBatch:
			ok, dup, rej := a.ingestScoutBatch(msg.Content, now)
			stats.ScoutsIngested += ok
			stats.ScoutsDuplicate += dup
			stats.ScoutsRejected += rej
		default:
			a.log.Warn("dropping message with unrecognized ontology", logging.String("ontology", msg.Ontology))
			stats.BadRecordsDropped++
		}
	}

	a.caches.purgeExpired(now, a.cfg.OfficialTTL, a.cfg.ScoutTTL)

	snap := a.graph.Snapshot()
	updates := fuseAll(a.cfg, a.caches, a.depth, snap, now)
	if len(updates) > 0 {
		if err := a.graph.BatchUpdateEdgeRisks(updates); err != nil {
			return stats, err
		}
	}
	stats.EdgesUpdated = len(updates)
	stats.Duration = time.Since(start)

	a.log.Info("fusion tick complete",
		logging.Int("messages_drained", stats.MessagesDrained),
		logging.Int("edges_updated", stats.EdgesUpdated),
		logging.Int("scouts_ingested", stats.ScoutsIngested),
		logging.Duration("duration", stats.Duration))

	return stats, nil
}

func (a *Agent) ingestFloodBatch(content any, now time.Time) (stationsIngested, badRecords int) {
	batch, ok := content.(collectors.FloodDataBatch)
	if !ok {
		a.log.Warn("dropping malformed flood_data_batch")
		return 0, 1
	}

	for _, s := range batch.Stations {
		if err := geo.Validate(geo.Point{Lat: s.Lat, Lon: s.Lon}); err != nil {
			a.log.Warn("dropping station reading with invalid coordinate", logging.Station(s.StationID))
			badRecords++
			continue
		}
		if s.Status == floodsource.StationExcluded {
			a.log.Warn("dropping station reading with no configured thresholds", logging.Station(s.StationID))
			badRecords++
			continue
		}
		a.caches.putStation(s, now)
		stationsIngested++
	}
	for _, w := range batch.Weather {
		a.caches.putWeather(w, now)
	}
	for _, r := range batch.Reservoirs {
		if err := geo.Validate(geo.Point{Lat: r.Lat, Lon: r.Lon}); err != nil {
			a.log.Warn("dropping reservoir reading with invalid coordinate", logging.String("reservoir_id", r.ReservoirID))
			badRecords++
			continue
		}
		a.caches.putReservoir(r, now)
	}
	return stationsIngested, badRecords
}

func (a *Agent) ingestScoutBatch(content any, now time.Time) (ingested, duplicate, rejected int) {
	batch, ok := content.(collectors.ScoutReportBatch)
	if !ok {
		a.log.Warn("dropping malformed scout_report_batch")
		return 0, 0, 1
	}

	for _, r := range batch.Reports {
		if r.Severity < 0 || r.Severity > 1 || r.Confidence < 0 || r.Confidence > 1 {
			rejected++
			continue
		}
		if r.HasCoordinates {
			if err := geo.Validate(geo.Point{Lat: r.Lat, Lon: r.Lon}); err != nil {
				rejected++
				continue
			}
		}
		if r.ReportedAt.IsZero() {
			r.ReportedAt = now
		}
		if a.caches.putScout(r, now) {
			ingested++
		} else {
			duplicate++
		}
	}
	return ingested, duplicate, rejected
}

// Pending reports how many messages are queued in this agent's inbox, for
// the scheduler's high/low-water-mark backpressure check (§5).
func (a *Agent) Pending() int {
	return a.substrate.Pending(a.selfID)
}

