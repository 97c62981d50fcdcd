package osmfusion

import (
	"github.com/paulmach/orb/planar"
)

// GeometryPort is a set of geometric primitives used by conflation
type GeometryPort interface {
	// Project returns closest point on the curve for given coordinate
	Project(curve *Curve, pt Coord) Coord
	// Distance2D returns planar distance between two coordinates
	Distance2D(a, b Coord) float64
	// Follows returns true if next lanelet directly succeeds prev lanelet
	Follows(prev, next *Lanelet) bool
	// Length returns planar length of the curve
	Length(curve *Curve) float64
	// InterpolateAtDistance returns point of the curve at given planar distance from its start
	InterpolateAtDistance(curve *Curve, distance float64) Coord
}

// PlanarGeometry implements GeometryPort for map in local metric coordinates
type PlanarGeometry struct{}

func (PlanarGeometry) Project(curve *Curve, pt Coord) Coord {
	return projectOnLine(curve.Coords(), pt)
}

func (PlanarGeometry) Distance2D(a, b Coord) float64 {
	return planar.Distance(a.XY(), b.XY())
}

// Follows checks that both bounds of prev end exactly (by point identity) where bounds of next start.
// Bounds are walked in lanelet direction
func (PlanarGeometry) Follows(prev, next *Lanelet) bool {
	if prev.Left.Len() == 0 || prev.Right.Len() == 0 || next.Left.Len() == 0 || next.Right.Len() == 0 {
		return false
	}
	return prev.LeftBound().Back().Same(next.LeftBound().Front()) && prev.RightBound().Back().Same(next.RightBound().Front())
}

func (PlanarGeometry) Length(curve *Curve) float64 {
	return planar.Length(curve.LineString())
}

func (PlanarGeometry) InterpolateAtDistance(curve *Curve, distance float64) Coord {
	return interpolateAtDistance(curve.Coords(), distance)
}
