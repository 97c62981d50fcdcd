package osmfusion

type AreaID int64
type RegulatoryElementID int64
type PolygonID int64

// Area is a surface bounded by outer curves
type Area struct {
	ID         AreaID
	Outer      []*Curve
	Inner      []*Curve
	Attributes Attributes
}

// RelationType is a kind of relation-based map element
type RelationType uint16

const (
	RELATION_LANELET = RelationType(iota + 1)
	RELATION_AREA
	RELATION_REGULATORY_ELEMENT
)

func (iotaIdx RelationType) String() string {
	return [...]string{"lanelet", "multipolygon", "regulatory_element"}[iotaIdx-1]
}

var (
	relationTypes = map[string]RelationType{
		"lanelet":            RELATION_LANELET,
		"multipolygon":       RELATION_AREA,
		"regulatory_element": RELATION_REGULATORY_ELEMENT,
	}
)

// RelationRef references lanelet, area or regulatory element by identity
type RelationRef struct {
	Type RelationType
	ID   int64
}

// RegulatoryMember is a parameter of regulatory element. Exactly one of Point, Curve and Relation is set
type RegulatoryMember struct {
	Role     string
	Point    *Point
	Curve    *Curve
	Relation *RelationRef
}

// RegulatoryElement is a traffic rule. Members map roles to referenced points, curves and relations
type RegulatoryElement struct {
	ID         RegulatoryElementID
	Attributes Attributes
	Members    []RegulatoryMember
}

// Polygon is a closed curve which is not a part of lanelet or area
type Polygon struct {
	ID         PolygonID
	Points     []*Point
	Attributes Attributes
}

// Map is a lane-level map. It is append-only: removal is expressed by producing a filtered copy (see FilterMap)
type Map struct {
	lanelets      []*Lanelet
	laneletsIndex map[LaneletID]*Lanelet
	areas         []*Area
	regElements   []*RegulatoryElement
	polygons      []*Polygon
	points        []*Point
	curves        []*Curve
	maxID         int64
}

// NewMap returns empty map
func NewMap() *Map {
	return &Map{
		lanelets:      make([]*Lanelet, 0),
		laneletsIndex: make(map[LaneletID]*Lanelet),
		areas:         make([]*Area, 0),
		regElements:   make([]*RegulatoryElement, 0),
		polygons:      make([]*Polygon, 0),
		points:        make([]*Point, 0),
		curves:        make([]*Curve, 0),
	}
}

// NewID allocates fresh identity. Points, curves and lanelets share the same ID space
func (m *Map) NewID() int64 {
	m.maxID++
	return m.maxID
}

// reserveID makes sure that further NewID calls never return given ID
func (m *Map) reserveID(id int64) {
	if id > m.maxID {
		m.maxID = id
	}
}

func (m *Map) reserveCurve(curve *Curve) {
	if curve == nil {
		return
	}
	m.reserveID(int64(curve.ID))
	for _, pt := range curve.Points {
		m.reserveID(int64(pt.ID))
	}
}

// AddLanelet adds lanelet to the map. Adding the same ID twice is no-op
func (m *Map) AddLanelet(ll *Lanelet) {
	if _, ok := m.laneletsIndex[ll.ID]; ok {
		return
	}
	m.reserveID(int64(ll.ID))
	m.reserveCurve(ll.Left)
	m.reserveCurve(ll.Right)
	m.reserveCurve(ll.Center)
	m.lanelets = append(m.lanelets, ll)
	m.laneletsIndex[ll.ID] = ll
}

// AddArea adds area to the map
func (m *Map) AddArea(area *Area) {
	m.reserveID(int64(area.ID))
	for _, curve := range area.Outer {
		m.reserveCurve(curve)
	}
	for _, curve := range area.Inner {
		m.reserveCurve(curve)
	}
	m.areas = append(m.areas, area)
}

// AddRegulatoryElement adds regulatory element to the map
func (m *Map) AddRegulatoryElement(regElem *RegulatoryElement) {
	m.reserveID(int64(regElem.ID))
	for _, member := range regElem.Members {
		m.reserveCurve(member.Curve)
		if member.Point != nil {
			m.reserveID(int64(member.Point.ID))
		}
	}
	m.regElements = append(m.regElements, regElem)
}

// AddPolygon adds polygon to the map
func (m *Map) AddPolygon(poly *Polygon) {
	m.reserveID(int64(poly.ID))
	for _, pt := range poly.Points {
		m.reserveID(int64(pt.ID))
	}
	m.polygons = append(m.polygons, poly)
}

// AddPoint adds point which is not referenced by any other map element
func (m *Map) AddPoint(pt *Point) {
	m.reserveID(int64(pt.ID))
	m.points = append(m.points, pt)
}

// AddCurve adds curve which is not referenced by any other map element
func (m *Map) AddCurve(curve *Curve) {
	m.reserveCurve(curve)
	m.curves = append(m.curves, curve)
}

// HasRelation returns true if the map holds element referenced by ref
func (m *Map) HasRelation(ref RelationRef) bool {
	switch ref.Type {
	case RELATION_LANELET:
		_, ok := m.laneletsIndex[LaneletID(ref.ID)]
		return ok
	case RELATION_AREA:
		for _, area := range m.areas {
			if int64(area.ID) == ref.ID {
				return true
			}
		}
	case RELATION_REGULATORY_ELEMENT:
		for _, regElem := range m.regElements {
			if int64(regElem.ID) == ref.ID {
				return true
			}
		}
	}
	return false
}

// Lanelet returns lanelet by its ID
func (m *Map) Lanelet(id LaneletID) (*Lanelet, error) {
	ll, ok := m.laneletsIndex[id]
	if !ok {
		return nil, &LaneletNotFoundError{ID: id}
	}
	return ll, nil
}

// FindLaneletByBounds returns lanelet which is bounded by given curves (identity check)
func (m *Map) FindLaneletByBounds(left, right *Curve) (*Lanelet, error) {
	for _, ll := range m.lanelets {
		if ll.Left.ID == left.ID && ll.Right.ID == right.ID {
			return ll, nil
		}
	}
	return nil, &LaneletNotFoundError{ID: -1, Left: left.ID, Right: right.ID}
}

// Lanelets returns lanelets in order of insertion
func (m *Map) Lanelets() []*Lanelet {
	return m.lanelets
}

// Areas returns areas in order of insertion
func (m *Map) Areas() []*Area {
	return m.areas
}

// RegulatoryElements returns regulatory elements in order of insertion
func (m *Map) RegulatoryElements() []*RegulatoryElement {
	return m.regElements
}

// StandalonePoints returns points added by AddPoint
func (m *Map) StandalonePoints() []*Point {
	return m.points
}

// StandaloneCurves returns curves added by AddCurve
func (m *Map) StandaloneCurves() []*Curve {
	return m.curves
}

// Polygons returns polygons in order of insertion
func (m *Map) Polygons() []*Polygon {
	return m.polygons
}

// Curves returns every distinct curve reachable through map layers
func (m *Map) Curves() []*Curve {
	seen := make(map[CurveID]struct{})
	curves := []*Curve{}
	add := func(curve *Curve) {
		if curve == nil {
			return
		}
		if _, ok := seen[curve.ID]; ok {
			return
		}
		seen[curve.ID] = struct{}{}
		curves = append(curves, curve)
	}
	for _, ll := range m.lanelets {
		add(ll.Left)
		add(ll.Right)
		add(ll.Center)
	}
	for _, area := range m.areas {
		for _, curve := range area.Outer {
			add(curve)
		}
		for _, curve := range area.Inner {
			add(curve)
		}
	}
	for _, regElem := range m.regElements {
		for _, member := range regElem.Members {
			add(member.Curve)
		}
	}
	for _, curve := range m.curves {
		add(curve)
	}
	return curves
}

// Points returns every distinct point reachable through map layers
func (m *Map) Points() []*Point {
	seen := make(map[PointID]struct{})
	pts := []*Point{}
	add := func(pt *Point) {
		if _, ok := seen[pt.ID]; ok {
			return
		}
		seen[pt.ID] = struct{}{}
		pts = append(pts, pt)
	}
	for _, curve := range m.Curves() {
		for _, pt := range curve.Points {
			add(pt)
		}
	}
	for _, regElem := range m.regElements {
		for _, member := range regElem.Members {
			if member.Point != nil {
				add(member.Point)
			}
		}
	}
	for _, poly := range m.polygons {
		for _, pt := range poly.Points {
			add(pt)
		}
	}
	for _, pt := range m.points {
		add(pt)
	}
	return pts
}
