package osmfusion

import (
	"fmt"
)

const (
	// DefaultSplitTolerance is the distance (in map units) to snap split point to existing vertex
	DefaultSplitTolerance = 1e-3
)

// SplitCache remembers curves which have been split during a single conflation pass: original curve -> produced curve
type SplitCache struct {
	produced map[CurveID]*Curve
}

// NewSplitCache returns empty cache
func NewSplitCache() *SplitCache {
	return &SplitCache{
		produced: make(map[CurveID]*Curve),
	}
}

// Get returns curve produced by splitting given original curve
func (cache *SplitCache) Get(id CurveID) (*Curve, bool) {
	curve, ok := cache.produced[id]
	return curve, ok
}

// Len returns number of split curves
func (cache *SplitCache) Len() int {
	return len(cache.produced)
}

// Splitter splits lanelets and their bounds. It mutates the map: new points, curves and lanelets are added to it
type Splitter struct {
	m         *Map
	geom      GeometryPort
	cache     *SplitCache
	tolerance float64
}

// NewSplitter creates splitter working on the given map within the scope of the given cache
func NewSplitter(m *Map, geom GeometryPort, cache *SplitCache, tolerance float64) *Splitter {
	return &Splitter{
		m:         m,
		geom:      geom,
		cache:     cache,
		tolerance: tolerance,
	}
}

// SplitCurve splits curve at projection of the given point. Original curve is truncated to end at the split point,
// returned curve starts at the split point and holds the remaining points.
// If invert is true, curve is walked in reverse order: truncated curve keeps the end part and returned curve the start part.
// Only the first split per curve is performed: repeated calls return cached curve whatever the point is
func (sp *Splitter) SplitCurve(curve *Curve, pt *Point, invert bool) (*Curve, error) {
	if produced, ok := sp.cache.Get(curve.ID); ok {
		return produced, nil
	}
	if curve.Len() < 2 {
		return nil, fmt.Errorf("curve %d has %d point(s), can't split it", curve.ID, curve.Len())
	}

	view := curveView{curve: curve, invert: invert}
	viewPts := view.Points()
	coords := make([]Coord, len(viewPts))
	for i, p := range viewPts {
		coords[i] = p.Coord
	}
	n := len(coords)

	projected := sp.geom.Project(curve, pt.Coord)
	minIdx := 0
	minDist := projected.Distance(coords[0])
	for i := 1; i < n; i++ {
		d := projected.Distance(coords[i])
		if d < minDist {
			minDist = d
			minIdx = i
		}
	}

	var splitPt *Point
	ind := 0
	if minDist < sp.tolerance {
		switch minIdx {
		case 0:
			// Both curves need at least 2 points: interpolate between first two
			mid := midCoord(coords[0], coords[1])
			splitPt = NewPoint(PointID(sp.m.NewID()), mid.X, mid.Y, mid.Z)
			ind = findSegment2D(splitPt.Coord, coords)
		case n - 1:
			// Same for the last two
			mid := midCoord(coords[n-2], coords[n-1])
			splitPt = NewPoint(PointID(sp.m.NewID()), mid.X, mid.Y, mid.Z)
			ind = findSegment2D(splitPt.Coord, coords)
		default:
			splitPt = viewPts[minIdx]
			ind = minIdx
		}
	} else {
		splitPt = NewPoint(PointID(sp.m.NewID()), projected.X, projected.Y, projected.Z)
		ind = findSegment2D(splitPt.Coord, coords)
	}

	retained := make([]*Point, 0, ind+2)
	retained = append(retained, viewPts[:ind+1]...)
	if !retained[len(retained)-1].Same(splitPt) {
		retained = append(retained, splitPt)
	}
	producedPts := make([]*Point, 0, n-ind)
	producedPts = append(producedPts, splitPt)
	producedPts = append(producedPts, viewPts[ind+1:]...)

	if invert {
		retained = reversePoints(retained)
		producedPts = reversePoints(producedPts)
	}
	curve.Points = retained
	produced := NewCurve(CurveID(sp.m.NewID()), producedPts)
	produced.Attributes = curve.Attributes.Clone()
	sp.cache.produced[curve.ID] = produced
	return produced, nil
}
