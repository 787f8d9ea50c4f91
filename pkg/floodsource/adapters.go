package floodsource

import "context"

// RiverSource is the adapter contract for river gauge scrapes (§6). A
// concrete adapter may fail with Unavailable; C3 skips it for that tick.
type RiverSource interface {
	FetchStations(ctx context.Context) ([]StationReading, error)
}

// WeatherSource is the adapter contract for the weather API (§6).
type WeatherSource interface {
	FetchCurrent(ctx context.Context, lat, lon float64) (WeatherObservation, error)
}

// ReservoirSource is the adapter contract for reservoir/dam scrapes (§6).
type ReservoirSource interface {
	FetchReservoirs(ctx context.Context) ([]ReservoirReading, error)
}

// DepthMapSource is the optional raster flood-depth collaborator (§6). A
// result with ok=false means no raster coverage at that point;
// fusion treats that as a zero depth-risk contribution, not an error.
type DepthMapSource interface {
	DepthAt(ctx context.Context, lat, lon float64, scenarioKey string) (meters float64, ok bool, err error)
}

// ReportSource is the adapter contract for crowdsourced text reports
// (§6). NextBatch may block up to the context deadline waiting for new
// reports; returning fewer than maxN is not an error.
type ReportSource interface {
	NextBatch(ctx context.Context, maxN int) ([]ScoutReport, error)
}
