package hazard

import (
	"hash/fnv"
	"strconv"
	"time"

	"github.com/dd0wney/floodroute/pkg/floodsource"
	"github.com/dd0wney/floodroute/pkg/geo"
)

type cachedStation struct {
	reading    floodsource.StationReading
	receivedAt time.Time
}

type cachedWeather struct {
	obs        floodsource.WeatherObservation
	receivedAt time.Time
}

type cachedReservoir struct {
	reading    floodsource.ReservoirReading
	receivedAt time.Time
}

// scoutEntry is one retained crowdsourced observation.
type scoutEntry struct {
	report     floodsource.ScoutReport
	receivedAt time.Time
}

// caches holds every cache C5 owns (§4.5 "State"). None of it is shared
// outside the fusion agent's own goroutine.
type caches struct {
	stations   map[string]cachedStation
	weather    map[string]cachedWeather
	reservoirs map[string]cachedReservoir

	// scout is a ring buffer (oldest evicted first past capacity) plus a
	// dedup index over (location, text-hash) pairs, and a grid matching
	// C1's cell size for O(1) proximity joins.
	scout       []scoutEntry
	scoutDedup  map[string]struct{}
	scoutIndex  *geo.Grid[int]
	scoutCap    int
	scoutCellDeg float64
}

func newCaches(scoutCap int, scoutCellDeg float64) *caches {
	if scoutCellDeg <= 0 {
		scoutCellDeg = geo.DefaultGridCellSizeDeg
	}
	return &caches{
		stations:    make(map[string]cachedStation),
		weather:     make(map[string]cachedWeather),
		reservoirs:  make(map[string]cachedReservoir),
		scoutDedup:  make(map[string]struct{}),
		scoutIndex:  geo.NewGrid[int](scoutCellDeg),
		scoutCap:    scoutCap,
		scoutCellDeg: scoutCellDeg,
	}
}

func (c *caches) putStation(r floodsource.StationReading, at time.Time) {
	c.stations[r.StationID] = cachedStation{reading: r, receivedAt: at}
}

func (c *caches) putWeather(o floodsource.WeatherObservation, at time.Time) {
	c.weather[o.AreaName] = cachedWeather{obs: o, receivedAt: at}
}

func (c *caches) putReservoir(r floodsource.ReservoirReading, at time.Time) {
	c.reservoirs[r.ReservoirID] = cachedReservoir{reading: r, receivedAt: at}
}

// dedupeKey discretizes a report's location to ~11m (4 decimal degrees)
// and combines it with a hash of its text, matching §4.5's "(location,
// text-hash)" dedup index.
func dedupeKey(r floodsource.ScoutReport) string {
	h := fnv.New64a()
	h.Write([]byte(r.Text))
	textHash := strconv.FormatUint(h.Sum64(), 16)

	if r.HasCoordinates {
		lat := strconv.FormatFloat(roundTo(r.Lat, 4), 'f', 4, 64)
		lon := strconv.FormatFloat(roundTo(r.Lon, 4), 'f', 4, 64)
		return lat + "," + lon + "|" + textHash
	}
	return r.LocationName + "|" + textHash
}

func roundTo(v float64, decimals int) float64 {
	p := 1.0
	for i := 0; i < decimals; i++ {
		p *= 10
	}
	if v >= 0 {
		return float64(int64(v*p+0.5)) / p
	}
	return float64(int64(v*p-0.5)) / p
}

// putScout appends a new report, evicting the oldest entry once over
// capacity. Returns false if the report is a duplicate of one already
// cached (not appended; the caller counts it as a duplicate).
func (c *caches) putScout(r floodsource.ScoutReport, at time.Time) bool {
	key := dedupeKey(r)
	if _, dup := c.scoutDedup[key]; dup {
		return false
	}

	c.scout = append(c.scout, scoutEntry{report: r, receivedAt: at})
	c.scoutDedup[key] = struct{}{}
	if r.HasCoordinates {
		c.scoutIndex.Insert(len(c.scout)-1, geo.Point{Lat: r.Lat, Lon: r.Lon})
	}

	if len(c.scout) > c.scoutCap {
		c.evictOldestScout()
	}
	return true
}

func (c *caches) evictOldestScout() {
	// The ring buffer evicts index 0; grid ids reference slice positions,
	// so rebuild both after a shift to keep them consistent. Capacity is
	// small (default 1000) so a full rebuild per eviction is acceptable.
	c.scout = c.scout[1:]

	newDedup := make(map[string]struct{}, len(c.scoutDedup))
	newIndex := geo.NewGrid[int](c.scoutCellDeg)
	for i, e := range c.scout {
		newDedup[dedupeKey(e.report)] = struct{}{}
		if e.report.HasCoordinates {
			newIndex.Insert(i, geo.Point{Lat: e.report.Lat, Lon: e.report.Lon})
		}
	}
	c.scoutDedup = newDedup
	c.scoutIndex = newIndex
}

// purgeExpired drops station/reservoir/weather entries past the official
// TTL and scout entries past the scout TTL (§4.5 "TTL hard cutoffs").
func (c *caches) purgeExpired(now time.Time, officialTTL, scoutTTL time.Duration) {
	for k, v := range c.stations {
		if now.Sub(v.receivedAt) > officialTTL {
			delete(c.stations, k)
		}
	}
	for k, v := range c.weather {
		if now.Sub(v.receivedAt) > officialTTL {
			delete(c.weather, k)
		}
	}
	for k, v := range c.reservoirs {
		if now.Sub(v.receivedAt) > officialTTL {
			delete(c.reservoirs, k)
		}
	}

	kept := c.scout[:0:0]
	for _, e := range c.scout {
		if now.Sub(e.receivedAt) <= scoutTTL {
			kept = append(kept, e)
		}
	}
	if len(kept) != len(c.scout) {
		c.scout = kept
		// Rebuild index/dedup against the surviving entries.
		c.scoutDedup = make(map[string]struct{}, len(c.scout))
		c.scoutIndex = geo.NewGrid[int](c.scoutCellDeg)
		for i, e := range c.scout {
			c.scoutDedup[dedupeKey(e.report)] = struct{}{}
			if e.report.HasCoordinates {
				c.scoutIndex.Insert(i, geo.Point{Lat: e.report.Lat, Lon: e.report.Lon})
			}
		}
	}
}

// scoutsNear returns every cached scout report within radiusM of pt.
func (c *caches) scoutsNear(pt geo.Point, radiusM float64) []scoutEntry {
	ids := c.scoutIndex.WithinRadius(pt, radiusM)
	out := make([]scoutEntry, 0, len(ids))
	for _, id := range ids {
		if id >= 0 && id < len(c.scout) {
			out = append(out, c.scout[id])
		}
	}
	return out
}
