package osmfusion

// activeValue returns value active at reference segment ind: the last value whose change index is not greater than ind
func activeValue(ind int, indChange []int, values []string) string {
	val := values[0]
	for j := range indChange {
		if ind >= indChange[j] {
			val = values[j+1]
		}
	}
	return val
}

// orientedValues returns values in order of reference polyline. Returns new slice
func orientedValues(match *Match, values []string) []string {
	oriented := make([]string, len(values))
	copy(oriented, values)
	if !match.SameDirection() {
		for i, j := 0, len(oriented)-1; i < j; i, j = i+1, j-1 {
			oriented[i], oriented[j] = oriented[j], oriented[i]
		}
	}
	return oriented
}

// TransferAttribute sets key of every lanelet represented by reference segments to the value active at the segment.
// indChange holds reference segment indices of change points, values has len(indChange) + 1 items.
// A lanelet referenced by several segments is written once: the first segment wins
func TransferAttribute(m *Map, match *Match, key string, indChange []int, values []string) error {
	if len(values) == 0 {
		return nil
	}
	vals := orientedValues(match, values)
	written := make(map[LaneletID]struct{})
	for ind, seg := range match.Reference {
		val := activeValue(ind, indChange, vals)
		err := setSegmentValue(m, seg, key, val, written)
		if err != nil {
			return err
		}
	}
	return nil
}

// SetTypeLocation derives lanelet 'subtype' and 'location' from OSM highway values using given classes.
// Unknown highway values produce empty subtype and location
func SetTypeLocation(m *Map, match *Match, indChange []int, values []string, classes map[string]LaneletClass) error {
	if len(values) == 0 {
		return nil
	}
	vals := orientedValues(match, values)
	writtenSubtype := make(map[LaneletID]struct{})
	writtenLocation := make(map[LaneletID]struct{})
	for ind, seg := range match.Reference {
		class := classes[activeValue(ind, indChange, vals)]
		err := setSegmentValue(m, seg, "subtype", class.Subtype, writtenSubtype)
		if err != nil {
			return err
		}
		err = setSegmentValue(m, seg, "location", class.Location, writtenLocation)
		if err != nil {
			return err
		}
	}
	return nil
}

// setSegmentValue writes value to every lanelet of the segment in both directions, skipping already written ones
func setSegmentValue(m *Map, seg *Segment, key, val string, written map[LaneletID]struct{}) error {
	for _, direction := range directions {
		for _, id := range seg.Lanelets(direction) {
			if _, ok := written[id]; ok {
				continue
			}
			ll, err := m.Lanelet(id)
			if err != nil {
				return err
			}
			ll.Attributes[key] = val
			written[id] = struct{}{}
		}
	}
	return nil
}
