// Package config aggregates every agent's tunables into one struct so
// cmd/floodroute-server has a single place to build, default, and
// validate the whole deployment before wiring agents together.
package config

import (
	"github.com/dd0wney/floodroute/pkg/collectors"
	"github.com/dd0wney/floodroute/pkg/hazard"
	"github.com/dd0wney/floodroute/pkg/roadgraph"
	"github.com/dd0wney/floodroute/pkg/routing"
	"github.com/dd0wney/floodroute/pkg/scheduler"
	"github.com/dd0wney/floodroute/pkg/validation"
)

// SnapshotConfig tunes the shutdown edge-risk persistence layer (§6
// "Persisted state").
type SnapshotConfig struct {
	DataDir    string
	UseS3      bool
	S3Bucket   string
	S3Key      string
}

// StatusPubConfig tunes the optional status broadcast fan-out.
type StatusPubConfig struct {
	Enabled bool
	Addr    string
}

// GraphConfig names the on-disk road network file loaded at startup.
type GraphConfig struct {
	Path string
	Graph roadgraph.Config
}

// Config is the full deployment configuration, one struct per component.
type Config struct {
	Graph      GraphConfig
	Flood      collectors.FloodCollectorConfig
	Scout      collectors.ScoutCollectorConfig
	Fusion     hazard.Config
	Routing    routing.Config
	Scheduler  scheduler.Config
	Snapshot   SnapshotConfig
	StatusPub  StatusPubConfig
}

// Default returns every component's documented defaults, with the
// deployment-specific fields (graph path, bucket names, bind addresses)
// left for the caller to fill in.
func Default() Config {
	return Config{
		Graph:     GraphConfig{Graph: roadgraph.DefaultConfig()},
		Fusion:    hazard.DefaultConfig(),
		Routing:   routing.DefaultConfig(),
		Scheduler: scheduler.DefaultConfig(),
		Snapshot:  SnapshotConfig{DataDir: "./data/snapshots"},
		StatusPub: StatusPubConfig{Enabled: false, Addr: "tcp://*:9095"},
	}
}

// Validate checks every cross-component invariant that the individual
// component constructors don't themselves enforce: the graph file must be
// named, the fusion weights must sum to 1.0, and an S3 snapshot store
// needs a bucket.
func (c Config) Validate() error {
	v := validation.NewConfigValidator("Config").
		Required("Graph.Path", c.Graph.Path).
		Custom("Fusion", func() error { return c.Fusion.Validate() })

	if c.Snapshot.UseS3 {
		v.Required("Snapshot.S3Bucket", c.Snapshot.S3Bucket)
	}
	if c.StatusPub.Enabled {
		v.Required("StatusPub.Addr", c.StatusPub.Addr)
	}

	return v.Validate()
}
