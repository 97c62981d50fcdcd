package osmfusion

import (
	"fmt"
	"os"
	"sort"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

const (
	roleReference = "reference"
	roleTarget    = "target"
)

type matchPart struct {
	index int
	curve *Curve
	fwd   []LaneletID
	bwd   []LaneletID
}

// ReadMatches reads matches from GeoJSON feature collection. Every feature is a LineString with properties:
//	'match' - index of the match the feature belongs to
//	'role' - 'reference' (segment of the lanelet map polyline) or 'target' (OSM way segment)
//	'index' - order of the feature within polyline
//	'forward' and 'backward' - lanelet IDs represented by reference segment
//	'tags' - OSM tags of target segment
// If geographic is true coordinates are treated as WGS84 and projected to EPSG:3857.
// Points and curves get fresh IDs of the map
func ReadMatches(fname string, m *Map, geographic bool) ([]*Match, error) {
	fc, err := readFeatureCollection(fname)
	if err != nil {
		return nil, err
	}
	matches, err := featuresToMatches(fc, m, geographic)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't prepare matches from '%s'", fname)
	}
	return matches, nil
}

// ReadPolyline reads LineString features of GeoJSON file and joins them (in order of appearance) into single curve
func ReadPolyline(fname string, m *Map, geographic bool) (*Curve, error) {
	fc, err := readFeatureCollection(fname)
	if err != nil {
		return nil, err
	}
	pts := []*Point{}
	for i, feature := range fc.Features {
		if feature.Geometry == nil || !feature.Geometry.IsLineString() {
			return nil, fmt.Errorf("feature %d of '%s' is not a LineString", i, fname)
		}
		for j, xy := range feature.Geometry.LineString {
			// Skip joint point which is shared with previous feature
			if i > 0 && j == 0 && len(pts) > 0 {
				c := geojsonCoord(xy, geographic)
				if c.Distance(pts[len(pts)-1].Coord) == 0 {
					continue
				}
			}
			pts = append(pts, newGeoJSONPoint(m, xy, geographic))
		}
	}
	return NewCurve(CurveID(m.NewID()), pts), nil
}

func readFeatureCollection(fname string) (*geojson.FeatureCollection, error) {
	b, err := os.ReadFile(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read file")
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't parse GeoJSON '%s'", fname)
	}
	return fc, nil
}

func featuresToMatches(fc *geojson.FeatureCollection, m *Map, geographic bool) ([]*Match, error) {
	references := make(map[int][]matchPart)
	targets := make(map[int][]matchPart)
	for i, feature := range fc.Features {
		if feature.Geometry == nil || !feature.Geometry.IsLineString() {
			return nil, fmt.Errorf("feature %d is not a LineString", i)
		}
		matchIdx, err := feature.PropertyInt("match")
		if err != nil {
			return nil, errors.Wrapf(err, "Feature %d", i)
		}
		index, err := feature.PropertyInt("index")
		if err != nil {
			return nil, errors.Wrapf(err, "Feature %d", i)
		}
		role, err := feature.PropertyString("role")
		if err != nil {
			return nil, errors.Wrapf(err, "Feature %d", i)
		}
		pts := make([]*Point, len(feature.Geometry.LineString))
		for j, xy := range feature.Geometry.LineString {
			pts[j] = newGeoJSONPoint(m, xy, geographic)
		}
		part := matchPart{index: index, curve: NewCurve(CurveID(m.NewID()), pts)}
		switch role {
		case roleReference:
			part.fwd, err = laneletIDsProperty(feature, "forward")
			if err != nil {
				return nil, errors.Wrapf(err, "Feature %d", i)
			}
			part.bwd, err = laneletIDsProperty(feature, "backward")
			if err != nil {
				return nil, errors.Wrapf(err, "Feature %d", i)
			}
			references[matchIdx] = append(references[matchIdx], part)
		case roleTarget:
			part.curve.Attributes = tagsProperty(feature)
			targets[matchIdx] = append(targets[matchIdx], part)
		default:
			return nil, fmt.Errorf("feature %d has unknown role '%s'", i, role)
		}
	}

	indices := make([]int, 0, len(references))
	for idx := range references {
		indices = append(indices, idx)
	}
	for idx := range targets {
		if _, ok := references[idx]; !ok {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)
	matches := make([]*Match, 0, len(indices))
	for _, idx := range indices {
		refParts := references[idx]
		tgtParts := targets[idx]
		sort.SliceStable(refParts, func(i, j int) bool { return refParts[i].index < refParts[j].index })
		sort.SliceStable(tgtParts, func(i, j int) bool { return tgtParts[i].index < tgtParts[j].index })
		match := &Match{
			Reference: make([]*Segment, len(refParts)),
			Target:    make([]*Curve, len(tgtParts)),
		}
		for i, part := range refParts {
			match.Reference[i] = &Segment{Curve: part.curve, Forward: part.fwd, Backward: part.bwd}
		}
		for i, part := range tgtParts {
			match.Target[i] = part.curve
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func geojsonCoord(xy []float64, geographic bool) Coord {
	c := Coord{X: xy[0], Y: xy[1]}
	if len(xy) > 2 {
		c.Z = xy[2]
	}
	if geographic {
		c.X, c.Y = epsg4326To3857(xy[0], xy[1])
	}
	return c
}

func newGeoJSONPoint(m *Map, xy []float64, geographic bool) *Point {
	c := geojsonCoord(xy, geographic)
	return NewPoint(PointID(m.NewID()), c.X, c.Y, c.Z)
}

// laneletIDsProperty parses array of IDs. Absent property means no lanelets
func laneletIDsProperty(feature *geojson.Feature, key string) ([]LaneletID, error) {
	raw, ok := feature.Properties[key]
	if !ok || raw == nil {
		return []LaneletID{}, nil
	}
	arr, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("property '%s' must be an array", key)
	}
	ids := make([]LaneletID, len(arr))
	for i, v := range arr {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("property '%s' must contain numbers only", key)
		}
		ids[i] = LaneletID(f)
	}
	return ids, nil
}

// tagsProperty converts 'tags' object to attributes. Non-string values are formatted
func tagsProperty(feature *geojson.Feature) Attributes {
	attrs := make(Attributes)
	raw, ok := feature.Properties["tags"].(map[string]interface{})
	if !ok {
		return attrs
	}
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			attrs[k] = val
		case nil:
			continue
		default:
			attrs[k] = fmt.Sprint(val)
		}
	}
	return attrs
}
