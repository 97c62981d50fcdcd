package osmfusion

// newTestCurve creates curve with fresh point IDs from the map
func newTestCurve(m *Map, xy ...[2]float64) *Curve {
	pts := make([]*Point, len(xy))
	for i, c := range xy {
		pts[i] = NewPoint(PointID(m.NewID()), c[0], c[1], 0)
	}
	return NewCurve(CurveID(m.NewID()), pts)
}

// newTestLanelet creates lanelet and adds it to the map
func newTestLanelet(m *Map, left, right *Curve) *Lanelet {
	ll := NewLanelet(LaneletID(m.NewID()), left, right, Attributes{"type": "lanelet"})
	m.AddLanelet(ll)
	return ll
}

// newStraightLanelet creates lanelet along X axis between x0 and x1 with bounds at y+1 and y-1
func newStraightLanelet(m *Map, x0, x1, y float64) *Lanelet {
	left := newTestCurve(m, [2]float64{x0, y + 1}, [2]float64{x1, y + 1})
	right := newTestCurve(m, [2]float64{x0, y - 1}, [2]float64{x1, y - 1})
	return newTestLanelet(m, left, right)
}

// newFollowingLanelet creates lanelet starting where prev ends (shared points) and ending at x1
func newFollowingLanelet(m *Map, prev *Lanelet, x1 float64) *Lanelet {
	leftEnd := NewPoint(PointID(m.NewID()), x1, prev.Left.Back().Coord.Y, 0)
	rightEnd := NewPoint(PointID(m.NewID()), x1, prev.Right.Back().Coord.Y, 0)
	left := NewCurve(CurveID(m.NewID()), []*Point{prev.Left.Back(), leftEnd})
	right := NewCurve(CurveID(m.NewID()), []*Point{prev.Right.Back(), rightEnd})
	return newTestLanelet(m, left, right)
}

// newReference creates reference segments along given X coordinates at y = 0
func newReference(m *Map, xs ...float64) []*Segment {
	segs := make([]*Segment, 0, len(xs)-1)
	for i := 0; i+1 < len(xs); i++ {
		segs = append(segs, &Segment{
			Curve:    newTestCurve(m, [2]float64{xs[i], 0}, [2]float64{xs[i+1], 0}),
			Forward:  []LaneletID{},
			Backward: []LaneletID{},
		})
	}
	return segs
}

// newTarget creates target segments along given X coordinates at y = 0.5 with given tags
func newTarget(m *Map, xs []float64, tags []Attributes) []*Curve {
	curves := make([]*Curve, 0, len(xs)-1)
	for i := 0; i+1 < len(xs); i++ {
		curve := newTestCurve(m, [2]float64{xs[i], 0.5}, [2]float64{xs[i+1], 0.5})
		curve.Attributes = tags[i].Clone()
		curves = append(curves, curve)
	}
	return curves
}

func pointIDs(pts []*Point) []PointID {
	ids := make([]PointID, len(pts))
	for i, pt := range pts {
		ids[i] = pt.ID
	}
	return ids
}
