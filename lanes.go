package osmfusion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// LanesTarget returns number of lanelets expected for OSM lanes value and shoulder value
func LanesTarget(lanes int, shoulder string) int {
	if _, ok := shoulderOneSide[shoulder]; ok {
		return lanes + 1
	}
	if _, ok := shoulderBothSides[shoulder]; ok {
		return lanes + 2
	}
	return lanes
}

// parseLaneCount parses leading integer of the value, e.g. "2" or "2;3"
func parseLaneCount(val string) (int, error) {
	s := strings.TrimSpace(val)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("no leading digits in '%s'", val)
	}
	return strconv.Atoi(s[:end])
}

// LaneValidator compares number of adjacent lanelets with OSM lanes (and shoulder) values.
// It colors lanelets and collects lanelets to be deleted. State is accumulated across matches of a single pass
type LaneValidator struct {
	m      *Map
	geom   GeometryPort
	logger zerolog.Logger

	colored map[LaneletID]struct{}
	deleted map[LaneletID]struct{}

	Colors      []ColorAssignment
	Deleted     []LaneletID
	Diagnostics []error
}

// NewLaneValidator returns validator with empty state
func NewLaneValidator(m *Map, geom GeometryPort, logger zerolog.Logger) *LaneValidator {
	return &LaneValidator{
		m:           m,
		geom:        geom,
		logger:      logger,
		colored:     make(map[LaneletID]struct{}),
		deleted:     make(map[LaneletID]struct{}),
		Colors:      []ColorAssignment{},
		Deleted:     []LaneletID{},
		Diagnostics: []error{},
	}
}

// Check colors lanelets of the match and detects wrong lanelets for segments with more lanelets than OSM lanes.
// Change points are expected in reference polyline order, values in target polyline order
func (v *LaneValidator) Check(matchIdx int, match *Match, lanes, shoulder TagChanges) error {
	if len(lanes.Values) == 0 || len(shoulder.Values) == 0 {
		return nil
	}
	// Both keys share the merged points: each point moves value of the key(s) it belongs to
	merged := alongReference(match, MergePoints(lanes.Points, shoulder.Points), v.geom)
	indChange := segmentIndices(match, merged, v.geom)
	valLanes := orientedValues(match, lanes.Values)
	valShoulder := orientedValues(match, shoulder.Values)
	valLanesMerged := make([]string, 0, len(merged)+1)
	valShoulderMerged := make([]string, 0, len(merged)+1)
	valLanesMerged = append(valLanesMerged, valLanes[0])
	valShoulderMerged = append(valShoulderMerged, valShoulder[0])
	countLanes, countShoulder := 0, 0
	for _, pt := range merged {
		if containsPoint(lanes.Points, pt) {
			countLanes++
		}
		if containsPoint(shoulder.Points, pt) {
			countShoulder++
		}
		valLanesMerged = append(valLanesMerged, valLanes[countLanes])
		valShoulderMerged = append(valShoulderMerged, valShoulder[countShoulder])
	}

	for ind, seg := range match.Reference {
		valLane := activeValue(ind, indChange, valLanesMerged)
		valSh := activeValue(ind, indChange, valShoulderMerged)
		present := seg.LanesCount()

		color := COLOR_NO_DATA
		target := 0
		hasData := false
		if valLane != "" {
			lanesOSM, err := parseLaneCount(valLane)
			if err != nil {
				v.Diagnostics = append(v.Diagnostics, &LaneCountError{Match: matchIdx, Segment: ind, Value: valLane})
				v.logger.Warn().Int("match", matchIdx).Int("segment", ind).Str("lanes", valLane).Msg("Can't parse lanes value, segment has no data")
			} else {
				hasData = true
				target = LanesTarget(lanesOSM, valSh)
				if present == target {
					color = COLOR_MATCH
				} else {
					color = COLOR_MISMATCH
				}
			}
		}
		err := v.colorSegment(seg, color)
		if err != nil {
			return err
		}
		if !hasData {
			continue
		}
		for present > target {
			found, err := v.pruneOne(match, seg)
			if err != nil {
				return err
			}
			if !found {
				diag := &AmbiguousPruningError{Match: matchIdx, Segment: ind, Present: present, Target: target}
				v.Diagnostics = append(v.Diagnostics, diag)
				v.logger.Warn().Int("match", matchIdx).Int("segment", ind).Int("present", present).Int("target", target).Msg("Couldn't identify wrong lanelets clearly, skipping segment")
				break
			}
			present--
		}
	}
	return nil
}

// colorSegment assigns color to lanelets of the segment which have not been colored yet
func (v *LaneValidator) colorSegment(seg *Segment, color ColorClass) error {
	for _, direction := range directions {
		for _, id := range seg.Lanelets(direction) {
			if _, ok := v.colored[id]; ok {
				continue
			}
			if _, err := v.m.Lanelet(id); err != nil {
				return err
			}
			v.colored[id] = struct{}{}
			v.Colors = append(v.Colors, ColorAssignment{Lanelet: id, Color: color})
		}
	}
	return nil
}

// pruneOne finds lanelet of the segment which has neither predecessor nor successor in the map.
// If found, lanelet is marked as deleted and removed from the match
func (v *LaneValidator) pruneOne(match *Match, seg *Segment) (bool, error) {
	for _, id := range seg.AllLanelets() {
		ll, err := v.m.Lanelet(id)
		if err != nil {
			return false, err
		}
		if v.isOrphan(ll) {
			if _, ok := v.deleted[id]; !ok {
				v.deleted[id] = struct{}{}
				v.Deleted = append(v.Deleted, id)
			}
			match.RemoveReferenceLanelet(id)
			v.logger.Debug().Int64("lanelet", int64(id)).Msg("Lanelet marked as deleted")
			return true, nil
		}
	}
	return false, nil
}

func (v *LaneValidator) isOrphan(ll *Lanelet) bool {
	for _, other := range v.m.Lanelets() {
		if other.ID == ll.ID {
			continue
		}
		if v.geom.Follows(other, ll) || v.geom.Follows(ll, other) {
			return false
		}
	}
	return true
}
