// Package hazard implements C5, the fusion agent: it maintains
// time-decayed multi-source caches and computes the per-edge composite
// risk that it writes back to the graph environment each tick. This is
// the crux of the system (§4.5).
package hazard

import (
	"time"

	"github.com/dd0wney/floodroute/pkg/validation"
)

// Config tunes every fusion parameter named in §4.5. Zero-value fields
// are replaced with the DefaultConfig values by normalized(), which
// NewAgent applies.
type Config struct {
	// ScoutRadiusMeters (R) bounds the spatial join of scout reports
	// against an edge midpoint.
	ScoutRadiusMeters float64
	// GaussianSigma is the kernel width; default R/3.
	GaussianSigma float64
	// LinearDecay selects the linear-kernel alternative to the default
	// Gaussian kernel (§4.5 step 2: "permitted only as an explicit
	// configuration alternative").
	LinearDecay bool

	// Per-source per-minute exponential decay rates.
	ScoutRainDecayRate       float64
	ScoutRiverReservoirDecayRate float64
	OfficialDecayRate        float64

	// TTL hard cutoffs purge entries entirely regardless of decayed value.
	ScoutTTL    time.Duration
	OfficialTTL time.Duration

	// StationInfluenceRadiusMeters bounds the "nearest station" search for
	// the official-risk contribution.
	StationInfluenceRadiusMeters float64

	// Depth-risk sigmoid parameters (§4.5 step 5).
	DepthK  float64
	DepthH0 float64

	// Composite weights (α, β, γ); must sum to 1.0.
	WeightDepth    float64
	WeightCrowd    float64
	WeightOfficial float64

	// Visual-override rule (§4.5 step 7).
	VisualOverrideRadiusMeters  float64
	VisualOverrideMinRisk       float64
	VisualOverrideMinConfidence float64
	VisualOverrideBonus         float64

	// Cache bounds.
	ScoutCacheCapacity int

	// ScenarioKey selects the depth-map collaborator's return period.
	ScenarioKey string
}

// DefaultConfig returns the weights, radii, and decay rates documented in
// §4.5 and §4.3.
func DefaultConfig() Config {
	const r = 800.0
	return Config{
		ScoutRadiusMeters:            r,
		GaussianSigma:                r / 3,
		LinearDecay:                  false,
		ScoutRainDecayRate:           0.10,
		ScoutRiverReservoirDecayRate: 0.03,
		OfficialDecayRate:            0.05,
		ScoutTTL:                     45 * time.Minute,
		OfficialTTL:                  90 * time.Minute,
		StationInfluenceRadiusMeters: 1500.0,
		DepthK:                       2.0,
		DepthH0:                      0.5,
		WeightDepth:                  0.5,
		WeightCrowd:                  0.3,
		WeightOfficial:               0.2,
		VisualOverrideRadiusMeters:   300.0,
		VisualOverrideMinRisk:        0.8,
		VisualOverrideMinConfidence:  0.8,
		VisualOverrideBonus:          0.1,
		ScoutCacheCapacity:           1000,
		ScenarioKey:                  "default",
	}
}

func (c Config) normalized() Config {
	if c.ScoutRadiusMeters <= 0 {
		c.ScoutRadiusMeters = DefaultConfig().ScoutRadiusMeters
	}
	if c.GaussianSigma <= 0 {
		c.GaussianSigma = c.ScoutRadiusMeters / 3
	}
	if c.ScoutRainDecayRate <= 0 {
		c.ScoutRainDecayRate = DefaultConfig().ScoutRainDecayRate
	}
	if c.ScoutRiverReservoirDecayRate <= 0 {
		c.ScoutRiverReservoirDecayRate = DefaultConfig().ScoutRiverReservoirDecayRate
	}
	if c.OfficialDecayRate <= 0 {
		c.OfficialDecayRate = DefaultConfig().OfficialDecayRate
	}
	if c.ScoutTTL <= 0 {
		c.ScoutTTL = DefaultConfig().ScoutTTL
	}
	if c.OfficialTTL <= 0 {
		c.OfficialTTL = DefaultConfig().OfficialTTL
	}
	if c.StationInfluenceRadiusMeters <= 0 {
		c.StationInfluenceRadiusMeters = DefaultConfig().StationInfluenceRadiusMeters
	}
	if c.DepthK <= 0 {
		c.DepthK = DefaultConfig().DepthK
	}
	if c.DepthH0 <= 0 {
		c.DepthH0 = DefaultConfig().DepthH0
	}
	if c.WeightDepth == 0 && c.WeightCrowd == 0 && c.WeightOfficial == 0 {
		d := DefaultConfig()
		c.WeightDepth, c.WeightCrowd, c.WeightOfficial = d.WeightDepth, d.WeightCrowd, d.WeightOfficial
	}
	if c.VisualOverrideRadiusMeters <= 0 {
		c.VisualOverrideRadiusMeters = DefaultConfig().VisualOverrideRadiusMeters
	}
	if c.VisualOverrideMinRisk <= 0 {
		c.VisualOverrideMinRisk = DefaultConfig().VisualOverrideMinRisk
	}
	if c.VisualOverrideMinConfidence <= 0 {
		c.VisualOverrideMinConfidence = DefaultConfig().VisualOverrideMinConfidence
	}
	if c.VisualOverrideBonus <= 0 {
		c.VisualOverrideBonus = DefaultConfig().VisualOverrideBonus
	}
	if c.ScoutCacheCapacity <= 0 {
		c.ScoutCacheCapacity = DefaultConfig().ScoutCacheCapacity
	}
	if c.ScenarioKey == "" {
		c.ScenarioKey = DefaultConfig().ScenarioKey
	}
	return c
}

// Validate checks the composite weights sum to 1.0 and that the scout and
// station radii, the kernel sigma and the three decay rates are positive;
// the visual-override parameters are not checked. Intended for a config loaded from an operator-supplied file,
// not for the zero-value Config that normalized() fills in.
func (c Config) Validate() error {
	return validation.NewConfigValidator("hazard.Config").
		PositiveFloat("ScoutRadiusMeters", c.ScoutRadiusMeters).
		PositiveFloat("GaussianSigma", c.GaussianSigma).
		PositiveFloat("ScoutRainDecayRate", c.ScoutRainDecayRate).
		PositiveFloat("ScoutRiverReservoirDecayRate", c.ScoutRiverReservoirDecayRate).
		PositiveFloat("OfficialDecayRate", c.OfficialDecayRate).
		PositiveFloat("StationInfluenceRadiusMeters", c.StationInfluenceRadiusMeters).
		SumsTo("Weight{Depth,Crowd,Official}", []float64{c.WeightDepth, c.WeightCrowd, c.WeightOfficial}, 1.0, 1e-6).
		Validate()
}
