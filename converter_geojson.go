package osmfusion

import (
	"os"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

func ringToGeoJSON(ring orb.Ring) [][]float64 {
	pts := make([][]float64, len(ring))
	for i, pt := range ring {
		pts[i] = []float64{pt.Lon(), pt.Lat()}
	}
	return pts
}

// PrepareGeoJSONPolygon returns GeoJSON geometry of lanelet outline
func PrepareGeoJSONPolygon(ll *Lanelet) *geojson.Geometry {
	poly := laneletPolygon(ll)
	rings := make([][][]float64, len(poly))
	for i, ring := range poly {
		rings[i] = ringToGeoJSON(ring)
	}
	return geojson.NewPolygonGeometry(rings)
}

// LaneletsToGeoJSON prepares feature collection of lanelets touched by conflation: every colored or deleted lanelet.
// Properties are lanelet attributes plus 'id', 'color', 'color_code', 'color_hex' and 'deleted'
func LaneletsToGeoJSON(m *Map, colors []ColorAssignment, deleted []LaneletID) (*geojson.FeatureCollection, error) {
	deletedSet := make(map[LaneletID]struct{}, len(deleted))
	for _, id := range deleted {
		deletedSet[id] = struct{}{}
	}
	fc := geojson.NewFeatureCollection()
	addFeature := func(id LaneletID, color *ColorClass) error {
		ll, err := m.Lanelet(id)
		if err != nil {
			return err
		}
		feature := geojson.NewFeature(PrepareGeoJSONPolygon(ll))
		for _, key := range ll.Attributes.Keys() {
			feature.SetProperty(key, ll.Attributes[key])
		}
		feature.SetProperty("id", int64(ll.ID))
		if color != nil {
			feature.SetProperty("color", color.String())
			feature.SetProperty("color_code", color.Code())
			feature.SetProperty("color_hex", color.Hex())
		}
		_, isDeleted := deletedSet[ll.ID]
		feature.SetProperty("deleted", isDeleted)
		fc.AddFeature(feature)
		return nil
	}
	colored := make(map[LaneletID]struct{}, len(colors))
	for i := range colors {
		colored[colors[i].Lanelet] = struct{}{}
		err := addFeature(colors[i].Lanelet, &colors[i].Color)
		if err != nil {
			return nil, err
		}
	}
	for _, id := range deleted {
		if _, ok := colored[id]; ok {
			continue
		}
		err := addFeature(id, nil)
		if err != nil {
			return nil, err
		}
	}
	return fc, nil
}

// ExportGeoJSON writes conflation result to GeoJSON file. Map must be the conflated one (not filtered), so deleted lanelets could be shown
func ExportGeoJSON(m *Map, res *Result, fname string) error {
	fc, err := LaneletsToGeoJSON(m, res.Colors, res.Deleted)
	if err != nil {
		return errors.Wrap(err, "Can't prepare features")
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't marshal features")
	}
	err = os.WriteFile(fname, b, 0644)
	if err != nil {
		return errors.Wrap(err, "Can't write file")
	}
	return nil
}
