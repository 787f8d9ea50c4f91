// Package collectors implements C3 (Flood Collector Agent) and C4 (Scout
// Collector Agent): the two periodic pull agents that normalize external
// signals and push them to the hazard agent over the message substrate.
package collectors

import (
	"context"
	"time"

	"github.com/dd0wney/floodroute/pkg/acl"
	"github.com/dd0wney/floodroute/pkg/floodsource"
	"github.com/dd0wney/floodroute/pkg/logging"
)

// DefaultSourceTimeout bounds each upstream call (§5 "Suspension points").
const DefaultSourceTimeout = 10 * time.Second

// FloodDataBatch is the normalized payload of one flood_data_batch INFORM
// (§4.3). A malformed batch never reaches C5 partially populated.
type FloodDataBatch struct {
	Stations   []floodsource.StationReading
	Weather    []floodsource.WeatherObservation
	Reservoirs []floodsource.ReservoirReading
	Degraded   []string // source names that failed or were substituted this tick
	CollectedAt time.Time
}

// WeatherPoint is one location C3 polls the weather source for.
type WeatherPoint struct {
	AreaName string
	Lat      float64
	Lon      float64
}

// FloodCollector is C3: it polls river/weather/reservoir sources on each
// tick, classifies readings, and INFORMs the hazard agent.
type FloodCollector struct {
	river      floodsource.RiverSource
	weather    floodsource.WeatherSource
	reservoir  floodsource.ReservoirSource
	simulated  floodsource.RiverSource // replaces River's readings whenever River fails; weather and reservoir have no substitute
	weatherPts []WeatherPoint

	substrate  *acl.Substrate
	selfID     string
	hazardID   string
	sourceTimeout time.Duration
	log        logging.Logger
}

// FloodCollectorConfig wires a FloodCollector's collaborators.
type FloodCollectorConfig struct {
	River         floodsource.RiverSource
	Weather       floodsource.WeatherSource
	Reservoir     floodsource.ReservoirSource
	Simulated     floodsource.RiverSource // optional; substituted when River fails (§4.3)
	WeatherPoints []WeatherPoint
	Substrate     *acl.Substrate
	SelfID        string
	HazardAgentID string
	SourceTimeout time.Duration
	Logger        logging.Logger
}

// NewFloodCollector constructs C3 and registers its mailbox.
func NewFloodCollector(cfg FloodCollectorConfig) *FloodCollector {
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = DefaultSourceTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewDefaultLogger()
	}
	cfg.Substrate.Register(cfg.SelfID)

	return &FloodCollector{
		river:         cfg.River,
		weather:       cfg.Weather,
		reservoir:     cfg.Reservoir,
		simulated:     cfg.Simulated,
		weatherPts:    cfg.WeatherPoints,
		substrate:     cfg.Substrate,
		selfID:        cfg.SelfID,
		hazardID:      cfg.HazardAgentID,
		sourceTimeout: cfg.SourceTimeout,
		log:           cfg.Logger.With(logging.Component("flood_collector")),
	}
}

// Tick polls every configured source and INFORMs the hazard agent with one
// flood_data_batch. Per-source failures degrade rather than abort the
// tick (§4.3): one bad source never taints the rest.
func (c *FloodCollector) Tick(ctx context.Context) error {
	batch := FloodDataBatch{CollectedAt: time.Now()}

	stations, degraded := c.fetchStations(ctx)
	batch.Stations = stations
	if degraded {
		batch.Degraded = append(batch.Degraded, "river")
	}

	for _, p := range c.weatherPts {
		obs, err := c.fetchWeatherOne(ctx, p)
		if err != nil {
			c.log.Warn("weather source failed", logging.Source("weather"), logging.String("area", p.AreaName), logging.Err(err))
			batch.Degraded = append(batch.Degraded, "weather:"+p.AreaName)
			continue
		}
		batch.Weather = append(batch.Weather, obs)
	}

	reservoirs, err := c.fetchReservoirs(ctx)
	if err != nil {
		c.log.Warn("reservoir source failed", logging.Source("reservoir"), logging.Err(err))
		batch.Degraded = append(batch.Degraded, "reservoir")
	} else {
		batch.Reservoirs = reservoirs
	}

	if len(batch.Degraded) > 0 {
		c.log.Warn("tick completed with degraded sources", logging.Any("degraded", batch.Degraded))
	}

	return c.substrate.Send(acl.Message{
		Performative: acl.Inform,
		Sender:       c.selfID,
		Receiver:     c.hazardID,
		Ontology:     acl.OntologyFloodDataBatch,
		Content:      batch,
	})
}

func (c *FloodCollector) fetchStations(ctx context.Context) ([]floodsource.StationReading, bool) {
	if c.river == nil {
		return nil, false
	}

	cctx, cancel := context.WithTimeout(ctx, c.sourceTimeout)
	defer cancel()

	readings, err := c.river.FetchStations(cctx)
	if err == nil {
		return readings, false
	}

	c.log.Warn("river source failed", logging.Source("river"), logging.Err(err))
	if c.simulated == nil {
		return nil, true
	}

	sctx, scancel := context.WithTimeout(ctx, c.sourceTimeout)
	defer scancel()
	readings, simErr := c.simulated.FetchStations(sctx)
	if simErr != nil {
		c.log.Warn("simulated river fallback also failed", logging.Err(simErr))
		return nil, true
	}
	c.log.Warn("river source degraded, substituted simulated data", logging.Source("river"))
	return readings, true
}

func (c *FloodCollector) fetchWeatherOne(ctx context.Context, p WeatherPoint) (floodsource.WeatherObservation, error) {
	if c.weather == nil {
		return floodsource.WeatherObservation{}, nil
	}
	cctx, cancel := context.WithTimeout(ctx, c.sourceTimeout)
	defer cancel()
	return c.weather.FetchCurrent(cctx, p.Lat, p.Lon)
}

func (c *FloodCollector) fetchReservoirs(ctx context.Context) ([]floodsource.ReservoirReading, error) {
	if c.reservoir == nil {
		return nil, nil
	}
	cctx, cancel := context.WithTimeout(ctx, c.sourceTimeout)
	defer cancel()
	return c.reservoir.FetchReservoirs(cctx)
}
