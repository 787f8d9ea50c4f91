package routing

import (
	"context"
	"sort"
	"time"

	"github.com/dd0wney/floodroute/pkg/geo"
	"github.com/dd0wney/floodroute/pkg/logging"
	"github.com/dd0wney/floodroute/pkg/parallel"
	"github.com/dd0wney/floodroute/pkg/roadgraph"
)

// Config tunes the routing agent.
type Config struct {
	AverageSpeedMPS         float64
	LongRouteThresholdMeters float64
	Workers                 int
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		AverageSpeedMPS:          DefaultAverageSpeedMPS,
		LongRouteThresholdMeters: LongRouteThresholdMeters,
		Workers:                  4,
	}
}

// Agent is C6: it answers route requests against C1's current snapshot,
// using a worker pool so concurrent queries never block on one another
// (§5 "Route queries run as independent tasks on a worker pool").
type Agent struct {
	cfg   Config
	graph *roadgraph.RoadGraph
	pool  *parallel.WorkerPool
	log   logging.Logger
}

// NewAgent constructs C6 over graph with the given worker pool size.
func NewAgent(cfg Config, graph *roadgraph.RoadGraph, log logging.Logger) (*Agent, error) {
	if cfg.AverageSpeedMPS <= 0 {
		cfg.AverageSpeedMPS = DefaultAverageSpeedMPS
	}
	if cfg.LongRouteThresholdMeters <= 0 {
		cfg.LongRouteThresholdMeters = LongRouteThresholdMeters
	}
	if log == nil {
		log = logging.NewDefaultLogger()
	}

	pool, err := parallel.NewWorkerPool(cfg.Workers)
	if err != nil {
		return nil, err
	}

	return &Agent{cfg: cfg, graph: graph, pool: pool, log: log.With(logging.Component("routing"))}, nil
}

// Close shuts down the agent's worker pool.
func (a *Agent) Close() { a.pool.Close() }

// Route answers one route request synchronously against the graph's
// current snapshot (§4.6).
func (a *Agent) Route(ctx context.Context, req RouteRequest) (*RouteResult, error) {
	snap := a.graph.Snapshot()

	startID, err := a.graph.NearestNode(req.Start)
	if err != nil {
		return nil, &RouteFailure{Kind: FailureUnreachableEndpoint, Message: "start: " + err.Error()}
	}
	endID, err := a.graph.NearestNode(req.End)
	if err != nil {
		return nil, &RouteFailure{Kind: FailureUnreachableEndpoint, Message: "end: " + err.Error()}
	}

	searchCtx := ctx
	if !req.Deadline.IsZero() {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithDeadline(ctx, req.Deadline)
		defer cancel()
	}

	result, err := astar(searchCtx, snap, startID, endID, req.Mode)
	if err != nil {
		return nil, err
	}

	return a.toRouteResult(snap, result), nil
}

// RouteAsync submits req to the worker pool and delivers the result on the
// returned channel exactly once.
func (a *Agent) RouteAsync(ctx context.Context, req RouteRequest) <-chan RouteOutcome {
	out := make(chan RouteOutcome, 1)
	submitted := a.pool.Submit(func() {
		res, err := a.Route(ctx, req)
		out <- RouteOutcome{Result: res, Err: err}
	})
	if !submitted {
		out <- RouteOutcome{Err: &RouteFailure{Kind: FailureTimeout, Message: "routing agent is shutting down"}}
	}
	return out
}

// RouteOutcome is the payload delivered on a RouteAsync channel.
type RouteOutcome struct {
	Result *RouteResult
	Err    error
}

func (a *Agent) toRouteResult(snap *roadgraph.Snapshot, r *searchResult) *RouteResult {
	coords := make([]geo.Point, 0, len(r.nodes))
	for _, n := range r.nodes {
		if pt, ok := snap.NodePoint(n); ok {
			coords = append(coords, pt)
		}
	}

	warning := WarnInfo
	switch {
	case r.maxRisk >= 0.9:
		// Should never happen: impassable edges are excluded during search.
		a.log.Error("route contains an edge at or above the impassable threshold", logging.Float64("max_risk", r.maxRisk))
		warning = WarnCritical
	case r.maxRisk > 0.6 || r.lengthMeters > a.cfg.LongRouteThresholdMeters:
		warning = WarnWarning
	case r.maxRisk > 0.3:
		warning = WarnCaution
	}

	return &RouteResult{
		NodePath:     r.nodes,
		Coordinates:  coords,
		Edges:        r.edges,
		LengthMeters: r.lengthMeters,
		MaxEdgeRisk:  r.maxRisk,
		AvgEdgeRisk:  r.avgRisk,
		ETASeconds:   r.lengthMeters / a.cfg.AverageSpeedMPS,
		Warning:      warning,
	}
}

// EvacuationRequest asks for the nearest feasible safe destination among
// a set of candidates (§4.6 "Evacuation search").
type EvacuationRequest struct {
	From       geo.Point
	Candidates []geo.Point
	Mode       Mode
	Deadline   time.Time
}

// Evacuate tries candidates in order of straight-line distance from
// From and returns the first one with a feasible route.
func (a *Agent) Evacuate(ctx context.Context, req EvacuationRequest) (*RouteResult, error) {
	type candidate struct {
		pt   geo.Point
		dist float64
	}
	ordered := make([]candidate, len(req.Candidates))
	for i, c := range req.Candidates {
		ordered[i] = candidate{pt: c, dist: geo.HaversineMeters(req.From, c)}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].dist < ordered[j].dist })

	var lastErr error
	for _, c := range ordered {
		res, err := a.Route(ctx, RouteRequest{Start: req.From, End: c.pt, Mode: req.Mode, Deadline: req.Deadline})
		if err == nil {
			return res, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = &RouteFailure{Kind: FailureNoSafeRoute, Message: "no evacuation candidates supplied"}
	}
	return nil, lastErr
}
