// Command floodroute-server wires together the graph environment, message
// substrate, and the four agents (C3/C4/C5/C6) into one running
// deployment, loads any persisted edge-risk snapshot, serves the HTTP API,
// and shuts down cleanly on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dd0wney/floodroute/pkg/acl"
	"github.com/dd0wney/floodroute/pkg/collectors"
	"github.com/dd0wney/floodroute/pkg/floodsource"
	"github.com/dd0wney/floodroute/pkg/hazard"
	"github.com/dd0wney/floodroute/pkg/health"
	"github.com/dd0wney/floodroute/pkg/logging"
	"github.com/dd0wney/floodroute/pkg/metrics"
	"github.com/dd0wney/floodroute/pkg/roadgraph"
	"github.com/dd0wney/floodroute/pkg/routing"
	"github.com/dd0wney/floodroute/pkg/scheduler"
	"github.com/dd0wney/floodroute/pkg/snapshot"
	"github.com/dd0wney/floodroute/pkg/statuspub"
)

const (
	selfIDFlood  = "flood-collector"
	selfIDScout  = "scout-collector"
	selfIDHazard = "hazard-agent"
)

func main() {
	graphPath := flag.String("graph", "", "path to the road network YAML file")
	dataDir := flag.String("data", "./data/floodroute", "directory for the shutdown edge-risk snapshot")
	addr := flag.String("addr", ":8090", "HTTP listen address for the route/evacuate/health API")
	statusAddr := flag.String("status-addr", "", "if set, bind a statuspub PUB socket here (e.g. tcp://*:9095)")
	flag.Parse()

	log := logging.NewDefaultLogger().With(logging.Component("main"))

	if *graphPath == "" {
		log.Error("missing required -graph flag")
		os.Exit(1)
	}

	graph, err := roadgraph.Load(roadgraph.DefaultConfig(), *graphPath)
	if err != nil {
		log.Error("failed to load road graph", logging.Err(err))
		os.Exit(1)
	}

	snapStore, err := snapshot.NewLocalStore(*dataDir)
	if err != nil {
		log.Error("failed to open snapshot store", logging.Err(err))
		os.Exit(1)
	}
	if state, err := snapStore.Load(); err != nil {
		log.Warn("failed to load persisted edge-risk snapshot, starting cold", logging.Err(err))
	} else if state != nil {
		if err := snapshot.Apply(graph, state); err != nil {
			log.Warn("failed to apply persisted snapshot", logging.Err(err))
		} else {
			log.Info("restored edge-risk snapshot",
				logging.Any("edges", len(state.Edges)),
				logging.Any("taken_at", state.TakenAt))
		}
	}

	substrate := acl.NewSubstrate(1024)

	fusionCfg := hazard.DefaultConfig()
	depthAdapter := hazard.NewDepthSourceAdapter(floodsource.NewSimulatedDepthMapSource(map[string]float64{
		fusionCfg.ScenarioKey: 0.0,
	}))

	hazardAgent := hazard.NewAgent(hazard.AgentConfig{
		Fusion:    fusionCfg,
		Graph:     graph,
		Depth:     depthAdapter,
		Substrate: substrate,
		SelfID:    selfIDHazard,
		Logger:    log,
	}, roadgraph.DefaultGridCellSizeDeg)

	floodCollector := collectors.NewFloodCollector(collectors.FloodCollectorConfig{
		River:         floodsource.NewSimulatedRiverSource(nil),
		Weather:       floodsource.NewSimulatedWeatherSource(nil),
		Reservoir:     floodsource.NewSimulatedReservoirSource(nil),
		Simulated:     floodsource.NewSimulatedRiverSource(nil),
		Substrate:     substrate,
		SelfID:        selfIDFlood,
		HazardAgentID: selfIDHazard,
		Logger:        log,
	})

	scoutCollector := collectors.NewScoutCollector(collectors.ScoutCollectorConfig{
		Source:        floodsource.NewSimulatedReportSource(nil),
		Substrate:     substrate,
		SelfID:        selfIDScout,
		HazardAgentID: selfIDHazard,
		Logger:        log,
	})

	routingAgent, err := routing.NewAgent(routing.DefaultConfig(), graph, log)
	if err != nil {
		log.Error("failed to construct routing agent", logging.Err(err))
		os.Exit(1)
	}
	defer routingAgent.Close()

	reg := metrics.DefaultRegistry()
	recorder := statuspub.NewRecorder()

	var broadcaster *statuspub.Broadcaster
	if *statusAddr != "" {
		broadcaster, err = statuspub.NewBroadcaster(*statusAddr)
		if err != nil {
			log.Warn("failed to start status broadcaster, continuing without it", logging.Err(err))
		} else {
			defer broadcaster.Close()
		}
	}

	tickFreshness := health.NewTickFreshness()
	sourceDegradation := health.NewSourceDegradation()

	var sched *scheduler.Scheduler
	var tick uint64

	sched = scheduler.New(
		scheduler.DefaultConfig(),
		floodCollector.Tick,
		scoutCollector.Tick,
		func(ctx context.Context) error {
			start := time.Now()
			stats, err := hazardAgent.Tick(ctx)
			if err != nil {
				reg.RecordTick("failed", time.Since(start))
				return err
			}
			tick++
			reg.RecordTick("ok", time.Since(start))
			reg.RecordFusion(stats.Duration, stats.EdgesUpdated, stats.ScoutsIngested, stats.ScoutsRejected, stats.BadRecordsDropped)
			tickFreshness.Observe(time.Now())

			recorder.Record(statuspub.Status{
				Tick:            tick,
				At:              time.Now(),
				SchedulerPaused: sched.IsPaused(),
				EdgesUpdated:    stats.EdgesUpdated,
				ScoutsIngested:  stats.ScoutsIngested,
				ScoutsRejected:  stats.ScoutsRejected,
				FusionDuration:  stats.Duration,
			})
			if broadcaster != nil {
				if s, ok := recorder.Latest(); ok {
					if err := broadcaster.Publish(s); err != nil {
						log.Warn("status broadcast failed", logging.Err(err))
					}
				}
			}
			return nil
		},
		hazardAgent.Pending,
		log,
	)

	checker := health.NewChecker()
	checker.RegisterReadinessCheck("graph_loaded", health.GraphCheck(func() (int, int) {
		snap := graph.Snapshot()
		return snap.NodeCount(), snap.EdgeCount()
	}))
	checker.RegisterLivenessCheck("last_tick_fresh", func() health.Check {
		return tickFreshness.Check(time.Now(), 2*scheduler.DefaultTickInterval)()
	})
	checker.RegisterLivenessCheck("source_degradation", sourceDegradation.Check())
	checker.RegisterLivenessCheck("hazard_inbox", health.HazardInboxBackpressure(sched.IsPaused, hazardAgent.Pending))

	go sched.Run()

	api := newAPIServer(routingAgent, scoutCollector, checker, recorder, log)
	httpSrv := &http.Server{
		Addr:    *addr,
		Handler: api.router(),
	}

	go func() {
		log.Info("http api listening", logging.Any("addr", *addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", logging.Err(err))
		}
	}()

	log.Info("floodroute server started", logging.Any("graph", *graphPath))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown did not complete cleanly", logging.Err(err))
	}

	sched.Stop()

	state := snapshot.StateFromSnapshot(graph.Snapshot(), time.Now())
	if err := snapStore.Save(state); err != nil {
		log.Error("failed to persist edge-risk snapshot on shutdown", logging.Err(err))
	}

	log.Info("floodroute server exited")
}
