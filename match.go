package osmfusion

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

type DirectionType uint16

const (
	DIRECTION_FORWARD = DirectionType(iota + 1)
	DIRECTION_BACKWARD
)

func (iotaIdx DirectionType) String() string {
	return [...]string{"forward", "backward"}[iotaIdx-1]
}

var (
	directions = []DirectionType{DIRECTION_FORWARD, DIRECTION_BACKWARD}
)

// Segment is a part of reference polyline. It represents adjacent lanelets in both directions:
// lanelets running along the segment (forward) and against it (backward)
type Segment struct {
	Curve    *Curve
	Forward  []LaneletID
	Backward []LaneletID
}

// Lanelets returns lanelets represented by segment in given direction
func (seg *Segment) Lanelets(direction DirectionType) []LaneletID {
	switch direction {
	case DIRECTION_FORWARD:
		return seg.Forward
	case DIRECTION_BACKWARD:
		return seg.Backward
	default:
		panic("Should not happen!")
	}
}

// AllLanelets returns backward lanelets followed by forward ones
func (seg *Segment) AllLanelets() []LaneletID {
	all := make([]LaneletID, 0, len(seg.Backward)+len(seg.Forward))
	all = append(all, seg.Backward...)
	all = append(all, seg.Forward...)
	return all
}

// LanesCount returns number of lanelets represented by segment in both directions
func (seg *Segment) LanesCount() int {
	return len(seg.Forward) + len(seg.Backward)
}

func (seg *Segment) lanelets(direction DirectionType) *[]LaneletID {
	switch direction {
	case DIRECTION_FORWARD:
		return &seg.Forward
	case DIRECTION_BACKWARD:
		return &seg.Backward
	default:
		panic("Should not happen!")
	}
}

// Match is a correspondence between reference polyline (made from the lanelet map) and target polyline (from OSM)
type Match struct {
	Reference []*Segment
	Target    []*Curve
}

// UpdateReferenceLanelet replaces oldID with newID at position index of the direction list.
// Replacement starts at segment segmentIdx and continues through following segments while they still reference oldID at that position
func (match *Match) UpdateReferenceLanelet(direction DirectionType, index int, oldID, newID LaneletID, segmentIdx int) error {
	if segmentIdx < 0 || segmentIdx >= len(match.Reference) {
		return fmt.Errorf("segment index %d is out of range [0, %d)", segmentIdx, len(match.Reference))
	}
	ids := match.Reference[segmentIdx].lanelets(direction)
	if index < 0 || index >= len(*ids) || (*ids)[index] != oldID {
		return fmt.Errorf("segment %d doesn't reference lanelet %d at %s position %d", segmentIdx, oldID, direction, index)
	}
	for i := segmentIdx; i < len(match.Reference); i++ {
		ids := match.Reference[i].lanelets(direction)
		if index >= len(*ids) || (*ids)[index] != oldID {
			break
		}
		(*ids)[index] = newID
	}
	return nil
}

// RemoveReferenceLanelet removes lanelet from every segment of reference polyline
func (match *Match) RemoveReferenceLanelet(id LaneletID) {
	for _, seg := range match.Reference {
		for _, direction := range directions {
			ids := seg.lanelets(direction)
			filtered := (*ids)[:0]
			for _, llID := range *ids {
				if llID != id {
					filtered = append(filtered, llID)
				}
			}
			*ids = filtered
		}
	}
}

// SameDirection returns true if both polylines run in the same direction: angle between end-to-end vectors is less than 90 degrees
func (match *Match) SameDirection() bool {
	if len(match.Reference) == 0 || len(match.Target) == 0 {
		return false
	}
	refFirst, refLast := match.Reference[0].Curve, match.Reference[len(match.Reference)-1].Curve
	tgtFirst, tgtLast := match.Target[0], match.Target[len(match.Target)-1]
	if refFirst.Len() == 0 || refLast.Len() == 0 || tgtFirst.Len() == 0 || tgtLast.Len() == 0 {
		return false
	}
	refLine := orb.LineString{refFirst.Front().Coord.XY(), refLast.Back().Coord.XY()}
	tgtLine := orb.LineString{tgtFirst.Front().Coord.XY(), tgtLast.Back().Coord.XY()}
	return math.Abs(angleBetweenLines(refLine, tgtLine)) < math.Pi/2
}
