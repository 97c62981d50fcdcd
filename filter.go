package osmfusion

// FilterMap returns new map holding every lanelet of the given map except deleted ones.
// Areas, regulatory elements and polygons are kept as is. Points and curves are shared with the source map
func FilterMap(m *Map, deleted []LaneletID) *Map {
	skip := make(map[LaneletID]struct{}, len(deleted))
	for _, id := range deleted {
		skip[id] = struct{}{}
	}
	filtered := NewMap()
	for _, ll := range m.Lanelets() {
		if _, ok := skip[ll.ID]; ok {
			continue
		}
		filtered.AddLanelet(ll)
	}
	for _, area := range m.Areas() {
		filtered.AddArea(area)
	}
	for _, regElem := range m.RegulatoryElements() {
		filtered.AddRegulatoryElement(regElem)
	}
	for _, poly := range m.Polygons() {
		filtered.AddPolygon(poly)
	}
	for _, curve := range m.StandaloneCurves() {
		filtered.AddCurve(curve)
	}
	for _, pt := range m.StandalonePoints() {
		filtered.AddPoint(pt)
	}
	filtered.reserveID(m.maxID)
	return filtered
}
