package osmfusion

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// NearestSegment returns index of reference segment closest to the point: the one with minimum sum of
// planar distances from the point to segment's first and last points. Returns -1 for empty reference polyline
func NearestSegment(match *Match, pt *Point, geom GeometryPort) int {
	best := -1
	bestDist := math.Inf(1)
	for i, seg := range match.Reference {
		if seg.Curve == nil || seg.Curve.Len() == 0 {
			continue
		}
		d := geom.Distance2D(seg.Curve.Front().Coord, pt.Coord) + geom.Distance2D(seg.Curve.Back().Coord, pt.Coord)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// segmentIndices maps every point to its nearest reference segment
func segmentIndices(match *Match, pts []*Point, geom GeometryPort) []int {
	indices := make([]int, len(pts))
	for i, pt := range pts {
		indices[i] = NearestSegment(match, pt, geom)
	}
	return indices
}

// alongReference returns points ordered along reference polyline: by nearest segment, then by distance
// from the segment's first point. Points at equal positions keep given order. Returns new slice
func alongReference(match *Match, pts []*Point, geom GeometryPort) []*Point {
	type position struct {
		pt      *Point
		segment int
		offset  float64
	}
	positions := make([]position, len(pts))
	for i, pt := range pts {
		positions[i] = position{pt: pt, segment: NearestSegment(match, pt, geom)}
		if positions[i].segment >= 0 {
			positions[i].offset = geom.Distance2D(match.Reference[positions[i].segment].Curve.Front().Coord, pt.Coord)
		}
	}
	sort.SliceStable(positions, func(i, j int) bool {
		if positions[i].segment != positions[j].segment {
			return positions[i].segment < positions[j].segment
		}
		return positions[i].offset < positions[j].offset
	})
	ordered := make([]*Point, len(positions))
	for i, p := range positions {
		ordered[i] = p.pt
	}
	return ordered
}

// toReferenceOrder reverses change points of polylines running opposite ways, so they follow reference polyline.
// Values are kept in target order: consumers reverse them via direction agreement
func toReferenceOrder(match *Match, changes []TagChanges) {
	if match.SameDirection() {
		return
	}
	for i := range changes {
		changes[i].Points = reversePoints(changes[i].Points)
	}
}

// SplitLanelets splits every lanelet represented by the nearest reference segment of each point.
// Points are processed along reference polyline, so every split point meets the lanelet produced by the previous split.
// New lanelets are added to the map and the match is updated to reference them
func (sp *Splitter) SplitLanelets(match *Match, pts []*Point) error {
	for _, pt := range alongReference(match, pts, sp.geom) {
		ind := NearestSegment(match, pt, sp.geom)
		if ind < 0 {
			return nil
		}
		for _, direction := range directions {
			err := sp.splitDirection(match, ind, direction, pt)
			if err != nil {
				return errors.Wrapf(err, "Can't split %s lanelets of segment %d", direction, ind)
			}
		}
	}
	return nil
}

func (sp *Splitter) splitDirection(match *Match, ind int, direction DirectionType, pt *Point) error {
	// Curves are split in reference polyline order: bounds stored against it are walked inverted
	backward := direction == DIRECTION_BACKWARD
	seg := match.Reference[ind]
	for i := 0; i < len(seg.Lanelets(direction)); i++ {
		orig, err := sp.m.Lanelet(seg.Lanelets(direction)[i])
		if err != nil {
			return err
		}
		newLeft, err := sp.SplitCurve(orig.Left, pt, backward != orig.LeftInverted)
		if err != nil {
			return errors.Wrapf(err, "Can't split left bound of lanelet %d", orig.ID)
		}
		newRight, err := sp.SplitCurve(orig.Right, pt, backward != orig.RightInverted)
		if err != nil {
			return errors.Wrapf(err, "Can't split right bound of lanelet %d", orig.ID)
		}
		newLanelet := NewLanelet(LaneletID(sp.m.NewID()), newLeft, newRight, orig.Attributes)
		newLanelet.LeftInverted = orig.LeftInverted
		newLanelet.RightInverted = orig.RightInverted
		newLanelet.RegulatoryElements = append(newLanelet.RegulatoryElements, orig.RegulatoryElements...)
		if orig.Center != nil {
			newLanelet.Center, err = sp.SplitCurve(orig.Center, pt, backward)
			if err != nil {
				return errors.Wrapf(err, "Can't split centerline of lanelet %d", orig.ID)
			}
		}
		sp.m.AddLanelet(newLanelet)
		err = match.UpdateReferenceLanelet(direction, i, orig.ID, newLanelet.ID, ind)
		if err != nil {
			return err
		}
	}
	return nil
}
