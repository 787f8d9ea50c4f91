package geo

import "math"

// cellKey identifies one grid cell by its integer lat/lon indices.
type cellKey struct {
	x, y int64
}

// Grid is an integer-keyed spatial grid over points, used for both the road
// graph's edge-midpoint index (C1) and the hazard agent's scout-report
// index (C5) — both are specified to share the same cell size so radius
// queries compose across components without re-indexing.
type Grid[K comparable] struct {
	cellSizeDeg float64
	cells       map[cellKey][]entry[K]
}

type entry[K comparable] struct {
	id K
	pt Point
}

// DefaultGridCellSizeDeg is the default cell size (~111m).
const DefaultGridCellSizeDeg = 0.001

// NewGrid creates an empty grid with the given cell size in degrees.
// The spec's default is ~0.001 degrees (~111m).
func NewGrid[K comparable](cellSizeDeg float64) *Grid[K] {
	if cellSizeDeg <= 0 {
		cellSizeDeg = DefaultGridCellSizeDeg
	}
	return &Grid[K]{cellSizeDeg: cellSizeDeg, cells: make(map[cellKey][]entry[K])}
}

func (g *Grid[K]) keyFor(p Point) cellKey {
	return cellKey{
		x: int64(math.Floor(p.Lon / g.cellSizeDeg)),
		y: int64(math.Floor(p.Lat / g.cellSizeDeg)),
	}
}

// Insert places id at point pt into its cell.
func (g *Grid[K]) Insert(id K, pt Point) {
	k := g.keyFor(pt)
	g.cells[k] = append(g.cells[k], entry[K]{id: id, pt: pt})
}

// WithinRadius returns every id whose inserted point lies within radiusM
// meters of center, using an exact great-circle filter after probing the
// cells overlapping a bounding box of side 2*radius.
func (g *Grid[K]) WithinRadius(center Point, radiusM float64) []K {
	cellSpanMeters := g.cellSizeDeg * 111000 // ~ degrees to meters at the equator
	cellRadius := int64(math.Ceil(radiusM/cellSpanMeters)) + 1

	base := g.keyFor(center)
	var out []K
	for dx := -cellRadius; dx <= cellRadius; dx++ {
		for dy := -cellRadius; dy <= cellRadius; dy++ {
			cell := cellKey{x: base.x + dx, y: base.y + dy}
			for _, e := range g.cells[cell] {
				if HaversineMeters(center, e.pt) <= radiusM {
					out = append(out, e.id)
				}
			}
		}
	}
	return out
}

// Nearest returns the id closest to center along with its distance in
// meters. ok is false if the grid is empty.
func (g *Grid[K]) Nearest(center Point) (id K, distanceM float64, ok bool) {
	if len(g.cells) == 0 {
		return id, 0, false
	}

	// Expand outward ring by ring. A cell at Chebyshev grid-distance k from
	// center's own cell can hold no point closer than (k-1)*cellSpan: two
	// cells that far apart can share at most one boundary, so anything
	// closer than that bound would have to sit in a ring already scanned.
	// Once that guaranteed minimum for the next ring is no better than the
	// best match found so far, no further ring can improve it.
	base := g.keyFor(center)
	cellSpanMeters := g.cellSizeDeg * 111000 // ~ degrees to meters at the equator

	best := math.MaxFloat64
	var bestID K
	found := false

	const maxRing = 100000
	for ring := int64(0); ring <= maxRing; ring++ {
		for dx := -ring; dx <= ring; dx++ {
			for dy := -ring; dy <= ring; dy++ {
				onRingEdge := dx == -ring || dx == ring || dy == -ring || dy == ring
				if ring > 0 && !onRingEdge {
					continue // interior already scanned at a smaller ring
				}
				cell := cellKey{x: base.x + dx, y: base.y + dy}
				for _, e := range g.cells[cell] {
					d := HaversineMeters(center, e.pt)
					if d < best {
						best = d
						bestID = e.id
						found = true
					}
				}
			}
		}

		nextRingMinDist := float64(ring) * cellSpanMeters
		if found && best <= nextRingMinDist {
			break
		}
	}

	return bestID, best, found
}
