package osmfusion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// newScanner guesses file extension and prepares correct scanner
func newScanner(filename string, file *os.File) (OSMScanner, error) {
	switch osmExtension(filename) {
	case ".osm", ".xml":
		return osmxml.New(context.Background(), file), nil
	case ".pbf", ".osm.pbf":
		return osmpbf.New(context.Background(), file, 4), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "extension '%s' of file '%s'", filepath.Ext(filename), filename)
	}
}

func osmExtension(filename string) string {
	if strings.HasSuffix(filename, ".osm.pbf") {
		return ".osm.pbf"
	}
	return filepath.Ext(filename)
}

// OSMDataRaw holds OSM entities of lanelet map file in order of appearance
type OSMDataRaw struct {
	nodes     map[osm.NodeID]*osm.Node
	nodesList []osm.NodeID
	ways      map[osm.WayID]*osm.Way
	waysList  []osm.WayID
	relations []*osm.Relation
}

func readOSM(filename string) (*OSMDataRaw, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open file")
	}
	defer file.Close()

	scanner, err := newScanner(filename, file)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	data := &OSMDataRaw{
		nodes:     make(map[osm.NodeID]*osm.Node),
		nodesList: []osm.NodeID{},
		ways:      make(map[osm.WayID]*osm.Way),
		waysList:  []osm.WayID{},
		relations: []*osm.Relation{},
	}
	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			data.nodes[obj.ID] = obj
			data.nodesList = append(data.nodesList, obj.ID)
		case *osm.Way:
			data.ways[obj.ID] = obj
			data.waysList = append(data.waysList, obj.ID)
		case *osm.Relation:
			data.relations = append(data.relations, obj)
		}
	}
	if scanner.Err() != nil {
		return nil, errors.Wrap(scanner.Err(), "Scanner error")
	}
	return data, nil
}

// ReadLaneletMap reads lanelet map from OSM file (XML or PBF).
// Coordinates are projected to EPSG:3857, 'ele' tag becomes Z coordinate
func ReadLaneletMap(filename string) (*Map, error) {
	data, err := readOSM(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read OSM data from '%s'", filename)
	}
	m, err := data.buildMap()
	if err != nil {
		return nil, errors.Wrap(err, "Can't build lanelet map")
	}
	return m, nil
}

type mapBuilder struct {
	data      *OSMDataRaw
	m         *Map
	points    map[osm.NodeID]*Point
	curves    map[osm.WayID]*Curve
	usedNodes map[osm.NodeID]struct{}
	usedWays  map[osm.WayID]struct{}
	relTypes  map[osm.RelationID]RelationType
}

func (data *OSMDataRaw) buildMap() (*Map, error) {
	b := &mapBuilder{
		data:      data,
		m:         NewMap(),
		points:    make(map[osm.NodeID]*Point, len(data.nodes)),
		curves:    make(map[osm.WayID]*Curve, len(data.ways)),
		usedNodes: make(map[osm.NodeID]struct{}),
		usedWays:  make(map[osm.WayID]struct{}),
		relTypes:  make(map[osm.RelationID]RelationType, len(data.relations)),
	}
	for _, id := range data.nodesList {
		b.points[id] = nodeToPoint(data.nodes[id])
	}
	for _, rel := range data.relations {
		if relType, ok := relationTypes[rel.Tags.Find("type")]; ok {
			b.relTypes[rel.ID] = relType
		}
	}
	for _, rel := range data.relations {
		var err error
		switch b.relTypes[rel.ID] {
		case RELATION_LANELET:
			err = b.addLanelet(rel)
		case RELATION_AREA:
			err = b.addArea(rel)
		case RELATION_REGULATORY_ELEMENT:
			err = b.addRegulatoryElement(rel)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "Relation %d", rel.ID)
		}
	}
	for _, id := range data.waysList {
		if _, ok := b.usedWays[id]; ok {
			continue
		}
		curve, err := b.curve(id)
		if err != nil {
			return nil, err
		}
		if data.ways[id].Tags.Find("area") == "yes" {
			b.m.AddPolygon(&Polygon{ID: PolygonID(curve.ID), Points: curve.Points, Attributes: curve.Attributes})
			continue
		}
		b.m.AddCurve(curve)
	}
	for _, id := range data.nodesList {
		if _, ok := b.usedNodes[id]; !ok {
			b.m.AddPoint(b.points[id])
		}
	}
	return b.m, nil
}

func nodeToPoint(node *osm.Node) *Point {
	pt := pointToEuclidean(node.Point())
	z := 0.0
	attrs := make(Attributes, len(node.Tags))
	for _, tag := range node.Tags {
		if tag.Key == "ele" {
			if ele, err := strconv.ParseFloat(tag.Value, 64); err == nil {
				z = ele
				continue
			}
		}
		attrs[tag.Key] = tag.Value
	}
	return &Point{ID: PointID(node.ID), Coord: Coord{X: pt.X(), Y: pt.Y(), Z: z}, Attributes: attrs}
}

func tagsToAttributes(tags osm.Tags) Attributes {
	attrs := make(Attributes, len(tags))
	for _, tag := range tags {
		attrs[tag.Key] = tag.Value
	}
	return attrs
}

func (b *mapBuilder) point(id osm.NodeID) (*Point, error) {
	pt, ok := b.points[id]
	if !ok {
		return nil, fmt.Errorf("Missing node with id: %d", id)
	}
	b.usedNodes[id] = struct{}{}
	return pt, nil
}

func (b *mapBuilder) curve(id osm.WayID) (*Curve, error) {
	if curve, ok := b.curves[id]; ok {
		return curve, nil
	}
	way, ok := b.data.ways[id]
	if !ok {
		return nil, fmt.Errorf("Missing way with id: %d", id)
	}
	pts := make([]*Point, 0, len(way.Nodes))
	for _, wayNode := range way.Nodes {
		pt, err := b.point(wayNode.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "Way %d", id)
		}
		pts = append(pts, pt)
	}
	curve := NewCurve(CurveID(id), pts)
	curve.Attributes = tagsToAttributes(way.Tags)
	b.curves[id] = curve
	b.usedWays[id] = struct{}{}
	return curve, nil
}

func (b *mapBuilder) relation(id osm.RelationID) (*RelationRef, error) {
	relType, ok := b.relTypes[id]
	if !ok {
		return nil, fmt.Errorf("Missing relation with id: %d", id)
	}
	return &RelationRef{Type: relType, ID: int64(id)}, nil
}

func (b *mapBuilder) addLanelet(rel *osm.Relation) error {
	var left, right, center *Curve
	regElems := []RegulatoryElementID{}
	for _, member := range rel.Members {
		var err error
		switch {
		case member.Type == osm.TypeWay && member.Role == "left":
			left, err = b.curve(osm.WayID(member.Ref))
		case member.Type == osm.TypeWay && member.Role == "right":
			right, err = b.curve(osm.WayID(member.Ref))
		case member.Type == osm.TypeWay && member.Role == "centerline":
			center, err = b.curve(osm.WayID(member.Ref))
		case member.Type == osm.TypeRelation && member.Role == "regulatory_element":
			var ref *RelationRef
			ref, err = b.relation(osm.RelationID(member.Ref))
			if err == nil && ref.Type != RELATION_REGULATORY_ELEMENT {
				err = fmt.Errorf("relation %d is referenced as regulatory element, but it is %s", member.Ref, ref.Type)
			}
			if err == nil {
				regElems = append(regElems, RegulatoryElementID(member.Ref))
			}
		}
		if err != nil {
			return err
		}
	}
	if left == nil || right == nil {
		return fmt.Errorf("lanelet must have both left and right bounds")
	}
	ll := NewLanelet(LaneletID(rel.ID), left, right, tagsToAttributes(rel.Tags))
	ll.Center = center
	ll.RegulatoryElements = regElems
	ll.orientBounds()
	b.m.AddLanelet(ll)
	return nil
}

func (b *mapBuilder) addArea(rel *osm.Relation) error {
	area := &Area{ID: AreaID(rel.ID), Outer: []*Curve{}, Inner: []*Curve{}, Attributes: tagsToAttributes(rel.Tags)}
	for _, member := range rel.Members {
		if member.Type != osm.TypeWay {
			continue
		}
		curve, err := b.curve(osm.WayID(member.Ref))
		if err != nil {
			return err
		}
		switch member.Role {
		case "inner":
			area.Inner = append(area.Inner, curve)
		default:
			area.Outer = append(area.Outer, curve)
		}
	}
	b.m.AddArea(area)
	return nil
}

func (b *mapBuilder) addRegulatoryElement(rel *osm.Relation) error {
	regElem := &RegulatoryElement{ID: RegulatoryElementID(rel.ID), Attributes: tagsToAttributes(rel.Tags), Members: []RegulatoryMember{}}
	for _, member := range rel.Members {
		rm := RegulatoryMember{Role: member.Role}
		switch member.Type {
		case osm.TypeNode:
			pt, err := b.point(osm.NodeID(member.Ref))
			if err != nil {
				return err
			}
			rm.Point = pt
		case osm.TypeWay:
			curve, err := b.curve(osm.WayID(member.Ref))
			if err != nil {
				return err
			}
			rm.Curve = curve
		case osm.TypeRelation:
			ref, err := b.relation(osm.RelationID(member.Ref))
			if err != nil {
				return err
			}
			rm.Relation = ref
		default:
			continue
		}
		regElem.Members = append(regElem.Members, rm)
	}
	b.m.AddRegulatoryElement(regElem)
	return nil
}
