package roadgraph

import (
	"fmt"
	"os"

	"github.com/dd0wney/floodroute/pkg/geo"
	"gopkg.in/yaml.v3"
)

// fileFormat is the on-disk shape of the default "Graph source" adapter
// (§6): the on-disk format is opaque to the core's own operations, but this
// module's default loader round-trips node ids, coordinates, and edge
// lengths through this YAML document.
type fileFormat struct {
	Nodes []fileNode `yaml:"nodes"`
	Edges []fileEdge `yaml:"edges"`
}

type fileNode struct {
	ID  uint64  `yaml:"id"`
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

type fileEdge struct {
	From     uint64      `yaml:"from"`
	To       uint64      `yaml:"to"`
	Parallel int         `yaml:"parallel"`
	LengthM  float64     `yaml:"length_m"`
	Risk     float64     `yaml:"risk"`
	Geometry []filePoint `yaml:"geometry,omitempty"`
}

type filePoint struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// Load reads a YAML road-graph file and builds a RoadGraph from it. A
// failed load (missing or malformed file) is fatal per §4.1: the caller
// must not start serving on error.
func Load(cfg Config, path string) (*RoadGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roadgraph: failed to read graph file %s: %w", path, err)
	}

	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("roadgraph: malformed graph file %s: %w", path, err)
	}

	nodes := make([]Node, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		nodes = append(nodes, Node{ID: NodeID(n.ID), Point: geo.Point{Lat: n.Lat, Lon: n.Lon}})
	}

	edges := make([]Edge, 0, len(doc.Edges))
	for _, e := range doc.Edges {
		geomPts := make([]geo.Point, 0, len(e.Geometry))
		for _, p := range e.Geometry {
			geomPts = append(geomPts, geo.Point{Lat: p.Lat, Lon: p.Lon})
		}
		edges = append(edges, Edge{
			Key:          EdgeKey{From: NodeID(e.From), To: NodeID(e.To), Parallel: e.Parallel},
			LengthMeters: e.LengthM,
			Geometry:     geomPts,
			Risk:         e.Risk,
		})
	}

	g, err := New(cfg, nodes, edges)
	if err != nil {
		return nil, fmt.Errorf("roadgraph: failed to build graph from %s: %w", path, err)
	}
	return g, nil
}
