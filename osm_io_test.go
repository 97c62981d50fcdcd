package osmfusion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLaneletMap = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="48.1000" lon="11.5000" version="1" visible="true">
    <tag k="ele" v="520.5"/>
    <tag k="local_x" v="0.0"/>
    <tag k="local_y" v="0.0"/>
  </node>
  <node id="2" lat="48.1000" lon="11.5010" version="1" visible="true"/>
  <node id="3" lat="48.1001" lon="11.5000" version="1" visible="true"/>
  <node id="4" lat="48.1001" lon="11.5010" version="1" visible="true"/>
  <node id="5" lat="48.1002" lon="11.5005" version="1" visible="true">
    <tag k="type" v="traffic_sign"/>
  </node>
  <node id="6" lat="48.1003" lon="11.5005" version="1" visible="true"/>
  <node id="7" lat="48.1003" lon="11.5006" version="1" visible="true"/>
  <node id="8" lat="48.1004" lon="11.5006" version="1" visible="true"/>
  <node id="9" lat="48.1005" lon="11.5000" version="1" visible="true"/>
  <way id="10" version="1" visible="true">
    <nd ref="1"/>
    <nd ref="2"/>
    <tag k="type" v="line_thin"/>
    <tag k="subtype" v="solid"/>
  </way>
  <way id="11" version="1" visible="true">
    <nd ref="3"/>
    <nd ref="4"/>
    <tag k="type" v="line_thin"/>
  </way>
  <way id="12" version="1" visible="true">
    <nd ref="6"/>
    <nd ref="7"/>
    <nd ref="8"/>
    <tag k="area" v="yes"/>
  </way>
  <relation id="20" version="1" visible="true">
    <member type="way" ref="11" role="left"/>
    <member type="way" ref="10" role="right"/>
    <tag k="type" v="lanelet"/>
    <tag k="subtype" v="road"/>
  </relation>
  <relation id="21" version="1" visible="true">
    <member type="node" ref="5" role="refers"/>
    <member type="relation" ref="20" role="yield"/>
    <tag k="type" v="regulatory_element"/>
    <tag k="subtype" v="traffic_sign"/>
  </relation>
</osm>
`

func writeSample(t *testing.T) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "map.osm")
	require.NoError(t, os.WriteFile(fname, []byte(sampleLaneletMap), 0644))
	return fname
}

func TestReadLaneletMap(t *testing.T) {
	m, err := ReadLaneletMap(writeSample(t))
	require.NoError(t, err)

	require.Len(t, m.Lanelets(), 1)
	ll, err := m.Lanelet(20)
	require.NoError(t, err)
	assert.Equal(t, CurveID(11), ll.Left.ID)
	assert.Equal(t, CurveID(10), ll.Right.ID)
	assert.Equal(t, "road", ll.Attributes["subtype"])
	assert.Equal(t, "solid", ll.Right.Attributes["subtype"])

	first := ll.Right.Front()
	assert.Equal(t, PointID(1), first.ID)
	assert.InDelta(t, 520.5, first.Coord.Z, 1e-9)
	assert.NotContains(t, first.Attributes, "ele")
	x, y := epsg4326To3857(11.5, 48.1)
	assert.InDelta(t, x, first.Coord.X, 1e-6)
	assert.InDelta(t, y, first.Coord.Y, 1e-6)

	require.Len(t, m.RegulatoryElements(), 1)
	regElem := m.RegulatoryElements()[0]
	require.Len(t, regElem.Members, 2)
	assert.Equal(t, PointID(5), regElem.Members[0].Point.ID)
	assert.Equal(t, &RelationRef{Type: RELATION_LANELET, ID: 20}, regElem.Members[1].Relation)
	assert.Equal(t, "yield", regElem.Members[1].Role)

	require.Len(t, m.Polygons(), 1)
	assert.Equal(t, PolygonID(12), m.Polygons()[0].ID)
	require.Len(t, m.StandalonePoints(), 1)
	assert.Equal(t, PointID(9), m.StandalonePoints()[0].ID)
	assert.Len(t, m.Points(), 9)

	// Fresh identities never clash with the loaded ones
	assert.Greater(t, m.NewID(), int64(21))

	ll2, err := m.FindLaneletByBounds(ll.Left, ll.Right)
	require.NoError(t, err)
	assert.Same(t, ll, ll2)
	_, err = m.FindLaneletByBounds(ll.Right, ll.Left)
	assert.ErrorIs(t, err, ErrLaneletNotFound)
}

func TestRemoveGeneratedTags(t *testing.T) {
	m, err := ReadLaneletMap(writeSample(t))
	require.NoError(t, err)
	RemoveGeneratedTags(m)
	for _, pt := range m.Points() {
		assert.NotContains(t, pt.Attributes, "local_x")
		assert.NotContains(t, pt.Attributes, "local_y")
		assert.NotContains(t, pt.Attributes, "mgrs_code")
	}
	ll, err := m.Lanelet(20)
	require.NoError(t, err)
	assert.Empty(t, ll.Right.Front().Attributes)
}

func TestWriteLaneletMapRoundTrip(t *testing.T) {
	m, err := ReadLaneletMap(writeSample(t))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.osm")
	require.NoError(t, WriteLaneletMap(m, out))

	back, err := ReadLaneletMap(out)
	require.NoError(t, err)
	require.Len(t, back.Lanelets(), 1)
	ll := back.Lanelets()[0]
	assert.Equal(t, LaneletID(20), ll.ID)
	assert.Equal(t, "road", ll.Attributes["subtype"])
	assert.Equal(t, "lanelet", ll.Attributes["type"])
	assert.InDelta(t, 520.5, ll.Right.Front().Coord.Z, 1e-9)
	orig, err := m.Lanelet(20)
	require.NoError(t, err)
	assert.InDelta(t, orig.Left.Back().Coord.X, ll.Left.Back().Coord.X, 1e-3)
	assert.InDelta(t, orig.Left.Back().Coord.Y, ll.Left.Back().Coord.Y, 1e-3)
	assert.Len(t, back.RegulatoryElements(), 1)
	assert.Len(t, back.Polygons(), 1)
	assert.Len(t, back.Points(), 9)
}

func TestWriteFilteredMapDropsMembers(t *testing.T) {
	m, err := ReadLaneletMap(writeSample(t))
	require.NoError(t, err)
	data := MapToOSM(FilterMap(m, []LaneletID{20}))
	assert.Empty(t, data.Relations[0].Members[1:])
	assert.Len(t, data.Relations, 1)
}

func TestUnsupportedFormat(t *testing.T) {
	m := NewMap()
	err := WriteLaneletMap(m, filepath.Join(t.TempDir(), "out.osm.pbf"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	fname := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, os.WriteFile(fname, []byte("{}"), 0644))
	_, err = ReadLaneletMap(fname)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

// Two-way road: eastbound lanelets 20, 21 and westbound lanelets 30, 31 share the centre ways 10 and 11.
// All ways are stored from west to east
const sampleTwoWayMap = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="48.1000" lon="11.5000" version="1" visible="true"/>
  <node id="2" lat="48.1000" lon="11.5010" version="1" visible="true"/>
  <node id="3" lat="48.1000" lon="11.5020" version="1" visible="true"/>
  <node id="4" lat="48.0999" lon="11.5000" version="1" visible="true"/>
  <node id="5" lat="48.0999" lon="11.5010" version="1" visible="true"/>
  <node id="6" lat="48.0999" lon="11.5020" version="1" visible="true"/>
  <node id="7" lat="48.1001" lon="11.5000" version="1" visible="true"/>
  <node id="8" lat="48.1001" lon="11.5010" version="1" visible="true"/>
  <node id="9" lat="48.1001" lon="11.5020" version="1" visible="true"/>
  <node id="17" lat="48.09995" lon="11.5000" version="1" visible="true"/>
  <node id="18" lat="48.09995" lon="11.5010" version="1" visible="true"/>
  <node id="50" lat="48.0998" lon="11.5010" version="1" visible="true">
    <tag k="type" v="traffic_sign"/>
  </node>
  <node id="63" lat="48.1010" lon="11.5000" version="1" visible="true"/>
  <node id="64" lat="48.1010" lon="11.5005" version="1" visible="true"/>
  <node id="65" lat="48.1012" lon="11.5005" version="1" visible="true"/>
  <way id="10" version="1" visible="true"><nd ref="1"/><nd ref="2"/></way>
  <way id="11" version="1" visible="true"><nd ref="2"/><nd ref="3"/></way>
  <way id="12" version="1" visible="true"><nd ref="4"/><nd ref="5"/></way>
  <way id="13" version="1" visible="true"><nd ref="5"/><nd ref="6"/></way>
  <way id="14" version="1" visible="true"><nd ref="7"/><nd ref="8"/></way>
  <way id="15" version="1" visible="true"><nd ref="8"/><nd ref="9"/></way>
  <way id="16" version="1" visible="true"><nd ref="17"/><nd ref="18"/></way>
  <way id="62" version="1" visible="true"><nd ref="63"/><nd ref="64"/><nd ref="65"/><nd ref="63"/></way>
  <relation id="20" version="1" visible="true">
    <member type="way" ref="10" role="left"/>
    <member type="way" ref="12" role="right"/>
    <member type="way" ref="16" role="centerline"/>
    <member type="relation" ref="40" role="regulatory_element"/>
    <tag k="type" v="lanelet"/>
  </relation>
  <relation id="21" version="1" visible="true">
    <member type="way" ref="11" role="left"/>
    <member type="way" ref="13" role="right"/>
    <tag k="type" v="lanelet"/>
  </relation>
  <relation id="30" version="1" visible="true">
    <member type="way" ref="11" role="left"/>
    <member type="way" ref="15" role="right"/>
    <tag k="type" v="lanelet"/>
  </relation>
  <relation id="31" version="1" visible="true">
    <member type="way" ref="10" role="left"/>
    <member type="way" ref="14" role="right"/>
    <tag k="type" v="lanelet"/>
  </relation>
  <relation id="40" version="1" visible="true">
    <member type="node" ref="50" role="refers"/>
    <tag k="type" v="regulatory_element"/>
    <tag k="subtype" v="traffic_sign"/>
  </relation>
  <relation id="41" version="1" visible="true">
    <member type="relation" ref="60" role="refers"/>
    <member type="relation" ref="40" role="cancels"/>
    <tag k="type" v="regulatory_element"/>
    <tag k="subtype" v="speed_limit"/>
  </relation>
  <relation id="60" version="1" visible="true">
    <member type="way" ref="62" role="outer"/>
    <tag k="type" v="multipolygon"/>
    <tag k="subtype" v="parking"/>
  </relation>
</osm>
`

func readTwoWayMap(t *testing.T) *Map {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "two_way.osm")
	require.NoError(t, os.WriteFile(fname, []byte(sampleTwoWayMap), 0644))
	m, err := ReadLaneletMap(fname)
	require.NoError(t, err)
	return m
}

func mustLanelet(t *testing.T, m *Map, id LaneletID) *Lanelet {
	t.Helper()
	ll, err := m.Lanelet(id)
	require.NoError(t, err)
	return ll
}

func TestReadOppositeLanelets(t *testing.T) {
	m := readTwoWayMap(t)
	east1, east2 := mustLanelet(t, m, 20), mustLanelet(t, m, 21)
	west1, west2 := mustLanelet(t, m, 30), mustLanelet(t, m, 31)

	assert.False(t, east1.LeftInverted || east1.RightInverted)
	assert.True(t, west1.LeftInverted && west1.RightInverted)
	// Shared ways are not reordered
	assert.Equal(t, PointID(2), west1.Left.Front().ID)
	assert.Equal(t, PointID(3), west1.LeftBound().Front().ID)

	geom := PlanarGeometry{}
	assert.True(t, geom.Follows(east1, east2))
	assert.True(t, geom.Follows(west1, west2))
	assert.False(t, geom.Follows(west2, west1))

	centerline := west1.Centerline()
	assert.Greater(t, centerline[0].X, centerline[len(centerline)-1].X)
}

func TestReadLaneletRegulatoryLinks(t *testing.T) {
	m := readTwoWayMap(t)
	ll := mustLanelet(t, m, 20)
	assert.Equal(t, []RegulatoryElementID{40}, ll.RegulatoryElements)
	require.NotNil(t, ll.Center)
	assert.Equal(t, CurveID(16), ll.Center.ID)
	assert.Equal(t, ll.Center.Coords(), ll.Centerline())

	require.Len(t, m.RegulatoryElements(), 2)
	var speedLimit *RegulatoryElement
	for _, regElem := range m.RegulatoryElements() {
		if regElem.ID == 41 {
			speedLimit = regElem
		}
	}
	require.NotNil(t, speedLimit)
	require.Len(t, speedLimit.Members, 2)
	assert.Equal(t, &RelationRef{Type: RELATION_AREA, ID: 60}, speedLimit.Members[0].Relation)
	assert.Equal(t, &RelationRef{Type: RELATION_REGULATORY_ELEMENT, ID: 40}, speedLimit.Members[1].Relation)
}

func TestWriteKeepsRegulatoryLinks(t *testing.T) {
	m := readTwoWayMap(t)
	out := filepath.Join(t.TempDir(), "out.osm")
	require.NoError(t, WriteLaneletMap(m, out))
	back, err := ReadLaneletMap(out)
	require.NoError(t, err)

	ll := mustLanelet(t, back, 20)
	assert.Equal(t, []RegulatoryElementID{40}, ll.RegulatoryElements)
	require.NotNil(t, ll.Center)
	assert.Equal(t, CurveID(16), ll.Center.ID)
	assert.True(t, mustLanelet(t, back, 30).LeftInverted)

	data := MapToOSM(back)
	for _, rel := range data.Relations {
		if rel.ID != 41 {
			continue
		}
		require.Len(t, rel.Members, 2)
		assert.Equal(t, int64(60), rel.Members[0].Ref)
		assert.Equal(t, int64(40), rel.Members[1].Ref)
	}

	// Links to deleted lanelets are dropped, traffic rules of the remaining ones stay
	filtered := MapToOSM(FilterMap(back, []LaneletID{21}))
	for _, rel := range filtered.Relations {
		if rel.ID == 20 {
			assert.Contains(t, rel.Members, osm.Member{Type: osm.TypeRelation, Ref: 40, Role: "regulatory_element"})
		}
	}
}
