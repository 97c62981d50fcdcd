package osmfusion

type LaneletID int64

// Lanelet is a directed lane-level edge of the map bounded by two curves.
// Bounds may be shared with neighbour lanelets, so a bound stored against the lanelet direction
// is marked as inverted instead of being reordered
type Lanelet struct {
	ID            LaneletID
	Left          *Curve
	Right         *Curve
	LeftInverted  bool
	RightInverted bool
	// Center is an optional explicit centerline in lanelet direction
	Center *Curve
	// RegulatoryElements are traffic rules applied to the lanelet
	RegulatoryElements []RegulatoryElementID
	Attributes         Attributes
}

// NewLanelet creates lanelet. Attributes are copied
func NewLanelet(id LaneletID, left, right *Curve, attrs Attributes) *Lanelet {
	if attrs == nil {
		attrs = make(Attributes)
	}
	return &Lanelet{
		ID:                 id,
		Left:               left,
		Right:              right,
		RegulatoryElements: []RegulatoryElementID{},
		Attributes:         attrs.Clone(),
	}
}

// LeftBound returns left bound walked in lanelet direction
func (ll *Lanelet) LeftBound() curveView {
	return curveView{curve: ll.Left, invert: ll.LeftInverted}
}

// RightBound returns right bound walked in lanelet direction
func (ll *Lanelet) RightBound() curveView {
	return curveView{curve: ll.Right, invert: ll.RightInverted}
}

// orientBounds sets inversion flags so both bounds run the same way and the left bound lies on the left side.
// Stored curves are not touched
func (ll *Lanelet) orientBounds() {
	ll.LeftInverted, ll.RightInverted = false, false
	if ll.Left.Len() < 2 || ll.Right.Len() < 2 {
		return
	}
	lf, lb := ll.Left.Front().Coord, ll.Left.Back().Coord
	rf, rb := ll.Right.Front().Coord, ll.Right.Back().Coord
	if lf.Distance(rb)+lb.Distance(rf) < lf.Distance(rf)+lb.Distance(rb) {
		ll.RightInverted = true
		rf, rb = rb, rf
	}
	// Left side of the direction vector has positive cross product
	dx, dy := lb.X-lf.X, lb.Y-lf.Y
	vx, vy := (lf.X+lb.X-rf.X-rb.X)/2, (lf.Y+lb.Y-rf.Y-rb.Y)/2
	if dx*vy-dy*vx < 0 {
		ll.LeftInverted = !ll.LeftInverted
		ll.RightInverted = !ll.RightInverted
	}
}

// Centerline returns explicit centerline if present. Otherwise middle coordinates of bounds:
// bounds with different number of points are sampled by index of the longest one
func (ll *Lanelet) Centerline() []Coord {
	if ll.Center != nil && ll.Center.Len() > 0 {
		return ll.Center.Coords()
	}
	left := ll.LeftBound().Coords()
	right := ll.RightBound().Coords()
	if len(left) == 0 || len(right) == 0 {
		return nil
	}
	n := len(left)
	if len(right) > n {
		n = len(right)
	}
	if n == 1 {
		return []Coord{midCoord(left[0], right[0])}
	}
	center := make([]Coord, n)
	for i := 0; i < n; i++ {
		li := i * (len(left) - 1) / (n - 1)
		ri := i * (len(right) - 1) / (n - 1)
		center[i] = midCoord(left[li], right[ri])
	}
	return center
}
