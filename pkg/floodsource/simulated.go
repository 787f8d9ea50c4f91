package floodsource

import (
	"context"
	"sync"
	"time"
)

// SimulatedRiverSource replays a fixed, mutable set of station readings.
// Scenario tests mutate Readings between ticks to script a flood event
// (e.g. raising "Sto Nino" past its critical threshold) without needing a
// live scraper.
type SimulatedRiverSource struct {
	mu        sync.Mutex
	readings  map[string]StationReading
	failNext  bool
}

// NewSimulatedRiverSource builds a source seeded with the given readings,
// keyed by StationID.
func NewSimulatedRiverSource(seed []StationReading) *SimulatedRiverSource {
	s := &SimulatedRiverSource{readings: make(map[string]StationReading, len(seed))}
	for _, r := range seed {
		s.readings[r.StationID] = r
	}
	return s
}

// Set overwrites (or adds) one station's reading for the next fetch.
func (s *SimulatedRiverSource) Set(r StationReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings[r.StationID] = r
}

// FailNextFetch makes the next FetchStations call return Unavailable,
// modeling the graceful-degradation scenario from §8.
func (s *SimulatedRiverSource) FailNextFetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = true
}

func (s *SimulatedRiverSource) FetchStations(ctx context.Context) ([]StationReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext {
		s.failNext = false
		return nil, &Unavailable{Source: "river"}
	}

	out := make([]StationReading, 0, len(s.readings))
	for _, r := range s.readings {
		out = append(out, r.Classify())
	}
	return out, nil
}

// SimulatedWeatherSource answers each query with the seeded observation
// nearest to the query point.
type SimulatedWeatherSource struct {
	mu           sync.Mutex
	observations []WeatherObservation
	failNext     bool
}

func NewSimulatedWeatherSource(seed []WeatherObservation) *SimulatedWeatherSource {
	return &SimulatedWeatherSource{observations: append([]WeatherObservation(nil), seed...)}
}

func (s *SimulatedWeatherSource) SetAll(obs []WeatherObservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observations = append([]WeatherObservation(nil), obs...)
}

func (s *SimulatedWeatherSource) FailNextFetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = true
}

func (s *SimulatedWeatherSource) FetchCurrent(ctx context.Context, lat, lon float64) (WeatherObservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext {
		s.failNext = false
		return WeatherObservation{}, &Unavailable{Source: "weather"}
	}

	var nearest WeatherObservation
	bestDist := -1.0
	for _, o := range s.observations {
		d := (o.Lat-lat)*(o.Lat-lat) + (o.Lon-lon)*(o.Lon-lon)
		if bestDist < 0 || d < bestDist {
			bestDist, nearest = d, o
		}
	}
	return nearest.Classify(), nil
}

// SimulatedReservoirSource mirrors SimulatedRiverSource for dam gauges.
type SimulatedReservoirSource struct {
	mu       sync.Mutex
	readings map[string]ReservoirReading
	failNext bool
}

func NewSimulatedReservoirSource(seed []ReservoirReading) *SimulatedReservoirSource {
	s := &SimulatedReservoirSource{readings: make(map[string]ReservoirReading, len(seed))}
	for _, r := range seed {
		s.readings[r.ReservoirID] = r
	}
	return s
}

func (s *SimulatedReservoirSource) Set(r ReservoirReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings[r.ReservoirID] = r
}

func (s *SimulatedReservoirSource) FailNextFetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = true
}

func (s *SimulatedReservoirSource) FetchReservoirs(ctx context.Context) ([]ReservoirReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext {
		s.failNext = false
		return nil, &Unavailable{Source: "reservoir"}
	}

	out := make([]ReservoirReading, 0, len(s.readings))
	for _, r := range s.readings {
		out = append(out, r.Classify())
	}
	return out, nil
}

// SimulatedReportSource serves scout reports from a FIFO backlog, honoring
// maxN per call and the caller's context deadline while waiting for more.
type SimulatedReportSource struct {
	mu      sync.Mutex
	backlog []ScoutReport
}

func NewSimulatedReportSource(seed []ScoutReport) *SimulatedReportSource {
	return &SimulatedReportSource{backlog: append([]ScoutReport(nil), seed...)}
}

// Push appends reports to the backlog, as a live ingest pipeline would.
func (s *SimulatedReportSource) Push(reports ...ScoutReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backlog = append(s.backlog, reports...)
}

func (s *SimulatedReportSource) NextBatch(ctx context.Context, maxN int) ([]ScoutReport, error) {
	s.mu.Lock()
	n := maxN
	if n > len(s.backlog) {
		n = len(s.backlog)
	}
	batch := append([]ScoutReport(nil), s.backlog[:n]...)
	s.backlog = s.backlog[n:]
	s.mu.Unlock()

	if len(batch) > 0 {
		return batch, nil
	}

	// Nothing queued: honor the deadline rather than returning empty
	// immediately, mirroring a blocking live source.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(10 * time.Millisecond):
		return nil, nil
	}
}

// SimulatedDepthMapSource returns a fixed depth for any point tagged with
// a known scenario key, modeling a raster lookup without decoding files.
type SimulatedDepthMapSource struct {
	mu        sync.Mutex
	scenarios map[string]float64
}

func NewSimulatedDepthMapSource(scenarios map[string]float64) *SimulatedDepthMapSource {
	cp := make(map[string]float64, len(scenarios))
	for k, v := range scenarios {
		cp[k] = v
	}
	return &SimulatedDepthMapSource{scenarios: cp}
}

func (s *SimulatedDepthMapSource) DepthAt(ctx context.Context, lat, lon float64, scenarioKey string) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.scenarios[scenarioKey]
	return d, ok, nil
}
