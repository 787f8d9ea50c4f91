package hazard

import (
	"context"
	"math"
	"time"

	"github.com/dd0wney/floodroute/pkg/floodsource"
	"github.com/dd0wney/floodroute/pkg/geo"
	"github.com/dd0wney/floodroute/pkg/roadgraph"
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// decay applies exponential time decay: v * exp(-rate * Δt minutes).
func decay(v, rate, ageMinutes float64) float64 {
	return v * math.Exp(-rate*ageMinutes)
}

func scoutDecayRate(cfg Config, origin floodsource.HazardOrigin) float64 {
	if origin == floodsource.OriginRiverReservoir {
		return cfg.ScoutRiverReservoirDecayRate
	}
	return cfg.ScoutRainDecayRate
}

// kernelWeight is the distance-attenuation factor for a scout report at
// distance d from the edge midpoint (§4.5 step 2).
func kernelWeight(cfg Config, d float64) float64 {
	if cfg.LinearDecay {
		w := 1 - d/cfg.ScoutRadiusMeters
		if w < 0 {
			return 0
		}
		return w
	}
	sigma := cfg.GaussianSigma
	return math.Exp(-(d * d) / (2 * sigma * sigma))
}

// depthRisk maps a raster depth in meters to a risk via the sigmoid in
// §4.5 step 5.
func depthRisk(cfg Config, h float64) float64 {
	return 1.0 / (1.0 + math.Exp(-cfg.DepthK*(h-cfg.DepthH0)))
}

// officialSource is a unified view over station and reservoir readings,
// both of which follow the same cache discipline (§3).
type officialSource struct {
	lat, lon   float64
	risk       float64
	receivedAt time.Time
}

// nearestOfficial finds the closest station-or-reservoir reading to pt
// within radiusM, or ok=false if none qualifies.
func (c *caches) nearestOfficial(pt geo.Point, radiusM float64) (officialSource, bool) {
	var best officialSource
	bestDist := math.Inf(1)
	found := false

	consider := func(lat, lon, risk float64, receivedAt time.Time) {
		d := geo.HaversineMeters(pt, geo.Point{Lat: lat, Lon: lon})
		if d <= radiusM && d < bestDist {
			bestDist = d
			best = officialSource{lat: lat, lon: lon, risk: risk, receivedAt: receivedAt}
			found = true
		}
	}

	for _, s := range c.stations {
		consider(s.reading.Lat, s.reading.Lon, s.reading.Risk, s.receivedAt)
	}
	for _, r := range c.reservoirs {
		consider(r.reading.Lat, r.reading.Lon, r.reading.Risk, r.receivedAt)
	}
	return best, found
}

// crowdRisk computes the weighted-average crowd-risk contribution for an
// edge midpoint (§4.5 steps 1-3). Weighted average, never summed: this is
// the property that prevents risk from exceeding 1.0 before clamping when
// many reports cluster at the same location.
func crowdRisk(cfg Config, c *caches, mid geo.Point, now time.Time) (risk float64, visualOverride *floodsource.ScoutReport) {
	reports := c.scoutsNear(mid, cfg.ScoutRadiusMeters)

	var weightedSum, totalWeight float64
	for i := range reports {
		e := reports[i]
		d := geo.HaversineMeters(mid, geo.Point{Lat: e.report.Lat, Lon: e.report.Lon})
		ageMinutes := now.Sub(e.receivedAt).Minutes()
		rate := scoutDecayRate(cfg, e.report.Origin)

		w := kernelWeight(cfg, d) * e.report.Confidence * math.Exp(-rate*ageMinutes)
		decayedSeverity := decay(e.report.Severity, rate, ageMinutes)

		weightedSum += w * decayedSeverity
		totalWeight += w

		// §4.5 step 7: visual-override candidate.
		if e.report.VisualEvidence &&
			d <= cfg.VisualOverrideRadiusMeters &&
			e.report.Severity >= cfg.VisualOverrideMinRisk &&
			e.report.Confidence >= cfg.VisualOverrideMinConfidence {
			if visualOverride == nil || e.report.Severity > visualOverride.Severity {
				r := e.report
				visualOverride = &r
			}
		}
	}

	if totalWeight == 0 {
		return 0, visualOverride
	}
	return clamp01(weightedSum / totalWeight), visualOverride
}

// officialRisk computes the time-decayed nearest-station-or-reservoir
// contribution (§4.5 step 4).
func officialRisk(cfg Config, c *caches, mid geo.Point, now time.Time) float64 {
	src, ok := c.nearestOfficial(mid, cfg.StationInfluenceRadiusMeters)
	if !ok {
		return 0
	}
	ageMinutes := now.Sub(src.receivedAt).Minutes()
	return clamp01(decay(src.risk, cfg.OfficialDecayRate, ageMinutes))
}

// DepthSource is the optional raster depth-map collaborator narrowed to
// the single call fusion needs.
type DepthSource interface {
	DepthAt(lat, lon float64, scenarioKey string) (meters float64, ok bool)
}

// depthSourceAdapter adapts the context/error-returning
// floodsource.DepthMapSource to the synchronous DepthSource fusion calls
// internally. A raster lookup failure degrades to "no depth data" rather
// than aborting the whole fusion pass, consistent with every other source
// in this package.
type depthSourceAdapter struct {
	source floodsource.DepthMapSource
}

// NewDepthSourceAdapter wraps a floodsource.DepthMapSource for use as this
// package's DepthSource.
func NewDepthSourceAdapter(source floodsource.DepthMapSource) DepthSource {
	return &depthSourceAdapter{source: source}
}

func (a *depthSourceAdapter) DepthAt(lat, lon float64, scenarioKey string) (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	meters, ok, err := a.source.DepthAt(ctx, lat, lon, scenarioKey)
	if err != nil {
		return 0, false
	}
	return meters, ok
}

// composite computes R_e for one edge midpoint, applying the visual
// override rule last (§4.5 step 6-7).
func composite(cfg Config, c *caches, depth DepthSource, mid geo.Point, now time.Time) float64 {
	var dRisk float64
	if depth != nil {
		if h, ok := depth.DepthAt(mid.Lat, mid.Lon, cfg.ScenarioKey); ok {
			dRisk = depthRisk(cfg, h)
		}
	}

	cRisk, override := crowdRisk(cfg, c, mid, now)
	oRisk := officialRisk(cfg, c, mid, now)

	composite := clamp01(cfg.WeightDepth*dRisk + cfg.WeightCrowd*cRisk + cfg.WeightOfficial*oRisk)

	if override != nil {
		composite = clamp01(math.Max(composite, override.Severity+cfg.VisualOverrideBonus))
	}
	return composite
}

// fuseAll walks every edge in the snapshot and returns the batch of risk
// updates to apply to C1 (§4.5 "Emit"), one for each edge whose risk
// changed.
func fuseAll(cfg Config, c *caches, depth DepthSource, snap *roadgraph.Snapshot, now time.Time) []roadgraph.EdgeRiskUpdate {
	edges := snap.Edges()
	updates := make([]roadgraph.EdgeRiskUpdate, 0, len(edges))
	for _, e := range edges {
		mid, ok := snap.EdgeMidpoint(e.Key)
		if !ok {
			continue
		}
		risk := composite(cfg, c, depth, mid, now)
		if risk == e.Risk {
			continue
		}
		updates = append(updates, roadgraph.EdgeRiskUpdate{Key: e.Key, Risk: risk})
	}
	return updates
}
