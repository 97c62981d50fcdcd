package osmfusion

import (
	"github.com/paulmach/orb"
)

type CurveID int64

// Curve is an ordered sequence of points: lanelet bound, polyline segment, etc.
type Curve struct {
	ID         CurveID
	Points     []*Point
	Attributes Attributes
}

// NewCurve creates curve with empty attributes. Given slice is copied
func NewCurve(id CurveID, pts []*Point) *Curve {
	curve := &Curve{
		ID:         id,
		Points:     make([]*Point, len(pts)),
		Attributes: make(Attributes),
	}
	copy(curve.Points, pts)
	return curve
}

// Len returns number of points
func (curve *Curve) Len() int {
	return len(curve.Points)
}

// Front returns first point of the curve
//
// Note: panics on empty curve
//
func (curve *Curve) Front() *Point {
	return curve.Points[0]
}

// Back returns last point of the curve
//
// Note: panics on empty curve
//
func (curve *Curve) Back() *Point {
	return curve.Points[len(curve.Points)-1]
}

// Coords returns coordinates of curve's points
func (curve *Curve) Coords() []Coord {
	coords := make([]Coord, len(curve.Points))
	for i, pt := range curve.Points {
		coords[i] = pt.Coord
	}
	return coords
}

// LineString returns planar representation of the curve
func (curve *Curve) LineString() orb.LineString {
	line := make(orb.LineString, len(curve.Points))
	for i, pt := range curve.Points {
		line[i] = pt.Coord.XY()
	}
	return line
}

// curveView is a read-only view on the curve which could walk it in reverse order.
// The underlying curve is never reordered
type curveView struct {
	curve  *Curve
	invert bool
}

func (view curveView) Len() int {
	return len(view.curve.Points)
}

func (view curveView) At(i int) *Point {
	if view.invert {
		return view.curve.Points[len(view.curve.Points)-1-i]
	}
	return view.curve.Points[i]
}

func (view curveView) Front() *Point {
	return view.At(0)
}

func (view curveView) Back() *Point {
	return view.At(view.Len() - 1)
}

// Coords returns coordinates in view order
func (view curveView) Coords() []Coord {
	coords := make([]Coord, view.Len())
	for i := range coords {
		coords[i] = view.At(i).Coord
	}
	return coords
}

// Points returns points in view order. Returns new slice
func (view curveView) Points() []*Point {
	pts := make([]*Point, view.Len())
	for i := range pts {
		pts[i] = view.At(i)
	}
	return pts
}

// reversePoints reverses order of points in given slice. Returns new slice
func reversePoints(pts []*Point) []*Point {
	inputLen := len(pts)
	output := make([]*Point, inputLen)
	for i, n := range pts {
		j := inputLen - i - 1
		output[j] = n
	}
	return output
}
