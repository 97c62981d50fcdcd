package osmfusion

// TagChanges holds points where value of a single key changes along target polyline.
// Len(Values) == Len(Points) + 1: Values[0] is the initial value and Values[i+1] becomes active at Points[i]
type TagChanges struct {
	Key    string
	Points []*Point
	Values []string
}

// DetectTagChanges scans target polyline segments for each key independently.
// Absent attribute is treated as empty value, so appearance/disappearance of the key is a change as well.
// Segments without points cover no geometry: their values are ignored
func DetectTagChanges(target []*Curve, keys []string) []TagChanges {
	segments := make([]*Curve, 0, len(target))
	for _, seg := range target {
		if seg.Len() != 0 {
			segments = append(segments, seg)
		}
	}
	changes := make([]TagChanges, 0, len(keys))
	for _, key := range keys {
		tc := TagChanges{
			Key:    key,
			Points: []*Point{},
		}
		val := ""
		if len(segments) != 0 {
			val = segments[0].Attributes.Get(key)
		}
		tc.Values = []string{val}
		for i := 1; i < len(segments); i++ {
			seg := segments[i]
			segVal := seg.Attributes.Get(key)
			if segVal == val {
				continue
			}
			tc.Points = append(tc.Points, seg.Front())
			val = segVal
			tc.Values = append(tc.Values, val)
		}
		changes = append(changes, tc)
	}
	return changes
}
