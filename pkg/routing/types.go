// Package routing implements C6, the routing agent: mode-selectable
// risk-aware shortest-path search over the graph environment, annotated
// with warnings and typed failures (§4.6).
package routing

import (
	"time"

	"github.com/dd0wney/floodroute/pkg/geo"
	"github.com/dd0wney/floodroute/pkg/roadgraph"
)

// Mode selects the per-mode risk-to-distance conversion in the cost
// function (§4.6 "Cost function").
type Mode string

const (
	Safest   Mode = "safest"
	Balanced Mode = "balanced"
	Fastest  Mode = "fastest"
)

// riskPenaltyPerUnit is P(mode): virtual meters charged per unit of edge
// risk, by mode.
var riskPenaltyPerUnit = map[Mode]float64{
	Safest:   100000,
	Balanced: 2000,
	Fastest:  0,
}

// PenaltyFor returns P(mode), defaulting unknown modes to Balanced.
func PenaltyFor(m Mode) float64 {
	if p, ok := riskPenaltyPerUnit[m]; ok {
		return p
	}
	return riskPenaltyPerUnit[Balanced]
}

// WarningLevel annotates a route by its worst contributing edge risk
// (§4.6 "Warnings").
type WarningLevel string

const (
	WarnInfo     WarningLevel = "INFO"
	WarnCaution  WarningLevel = "CAUTION"
	WarnWarning  WarningLevel = "WARNING"
	WarnCritical WarningLevel = "CRITICAL"
)

// RouteFailureKind is the reason a route request could not be satisfied.
type RouteFailureKind string

const (
	FailureUnreachableEndpoint RouteFailureKind = "unreachable_endpoint"
	FailureNoSafeRoute         RouteFailureKind = "no_safe_route"
	FailureTimeout             RouteFailureKind = "timeout"
)

// RouteFailure is the typed error a route query returns instead of a
// RouteResult when no usable path exists.
type RouteFailure struct {
	Kind    RouteFailureKind
	Message string
}

func (f *RouteFailure) Error() string { return string(f.Kind) + ": " + f.Message }

// RouteRequest is one REQUEST(route, start, end, mode) (§4.6).
type RouteRequest struct {
	Start    geo.Point
	End      geo.Point
	Mode     Mode
	Deadline time.Time
}

// RouteResult is the successful response to a route request.
type RouteResult struct {
	NodePath     []roadgraph.NodeID
	Coordinates  []geo.Point
	Edges        []roadgraph.EdgeKey
	LengthMeters float64
	MaxEdgeRisk  float64
	AvgEdgeRisk  float64
	ETASeconds   float64
	Warning      WarningLevel
}

// LongRouteThresholdMeters routes longer than this carry at least a
// WARNING annotation regardless of risk (§4.6).
const LongRouteThresholdMeters = 10000.0

// DefaultAverageSpeedMPS is used to derive ETA from length when no
// per-mode speed model is configured (about 30 km/h, city-arterial
// average under normal conditions).
const DefaultAverageSpeedMPS = 8.33
