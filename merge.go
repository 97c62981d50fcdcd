package osmfusion

// MergePoints unions several lists of points into the single one.
// Each distinct point (by identity) appears once, in order of its first appearance
func MergePoints(lists ...[]*Point) []*Point {
	seen := make(map[PointID]struct{})
	merged := []*Point{}
	for _, list := range lists {
		for _, pt := range list {
			if _, ok := seen[pt.ID]; ok {
				continue
			}
			seen[pt.ID] = struct{}{}
			merged = append(merged, pt)
		}
	}
	return merged
}

// changePoints returns points of every change set
func changePoints(changes []TagChanges) [][]*Point {
	pts := make([][]*Point, len(changes))
	for i := range changes {
		pts[i] = changes[i].Points
	}
	return pts
}

// containsPoint checks if point (by identity) is in the list
func containsPoint(pts []*Point, pt *Point) bool {
	for _, p := range pts {
		if p.Same(pt) {
			return true
		}
	}
	return false
}
