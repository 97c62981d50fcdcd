package osmfusion

import (
	"encoding/xml"
	"os"
	"sort"
	"strconv"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

const (
	osmGenerator = "osmfusion"
)

// WriteLaneletMap writes lanelet map to OSM XML file. Coordinates are converted back from EPSG:3857 to WGS84
func WriteLaneletMap(m *Map, filename string) error {
	switch osmExtension(filename) {
	case ".osm", ".xml":
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "can't write '%s'", filename)
	}
	data := MapToOSM(m)
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()
	_, err = file.WriteString(xml.Header)
	if err != nil {
		return errors.Wrap(err, "Can't write XML header")
	}
	enc := xml.NewEncoder(file)
	enc.Indent("", "  ")
	err = enc.Encode(data)
	if err != nil {
		return errors.Wrap(err, "Can't encode OSM data")
	}
	return nil
}

func attributesToTags(attrs Attributes) osm.Tags {
	tags := make(osm.Tags, 0, len(attrs))
	for _, key := range attrs.Keys() {
		tags = append(tags, osm.Tag{Key: key, Value: attrs[key]})
	}
	return tags
}

// MapToOSM converts lanelet map to OSM entities. Relations which reference elements absent in the map lose those members
func MapToOSM(m *Map) *osm.OSM {
	data := &osm.OSM{
		Version:   "0.6",
		Generator: osmGenerator,
	}
	for _, pt := range m.Points() {
		lon, lat := epsg3857To4326(pt.Coord.X, pt.Coord.Y)
		tags := attributesToTags(pt.Attributes)
		if pt.Coord.Z != 0 {
			tags = append(tags, osm.Tag{Key: "ele", Value: strconv.FormatFloat(pt.Coord.Z, 'f', -1, 64)})
		}
		data.Nodes = append(data.Nodes, &osm.Node{
			ID:      osm.NodeID(pt.ID),
			Lat:     lat,
			Lon:     lon,
			Visible: true,
			Version: 1,
			Tags:    tags,
		})
	}
	for _, curve := range m.Curves() {
		data.Ways = append(data.Ways, &osm.Way{
			ID:      osm.WayID(curve.ID),
			Visible: true,
			Version: 1,
			Nodes:   pointsToWayNodes(curve.Points),
			Tags:    attributesToTags(curve.Attributes),
		})
	}
	for _, poly := range m.Polygons() {
		data.Ways = append(data.Ways, &osm.Way{
			ID:      osm.WayID(poly.ID),
			Visible: true,
			Version: 1,
			Nodes:   pointsToWayNodes(poly.Points),
			Tags:    attributesToTags(poly.Attributes),
		})
	}
	for _, ll := range m.Lanelets() {
		members := osm.Members{
			{Type: osm.TypeWay, Ref: int64(ll.Left.ID), Role: "left"},
			{Type: osm.TypeWay, Ref: int64(ll.Right.ID), Role: "right"},
		}
		if ll.Center != nil {
			members = append(members, osm.Member{Type: osm.TypeWay, Ref: int64(ll.Center.ID), Role: "centerline"})
		}
		for _, id := range ll.RegulatoryElements {
			if !m.HasRelation(RelationRef{Type: RELATION_REGULATORY_ELEMENT, ID: int64(id)}) {
				continue
			}
			members = append(members, osm.Member{Type: osm.TypeRelation, Ref: int64(id), Role: "regulatory_element"})
		}
		attrs := ll.Attributes.Clone()
		attrs["type"] = RELATION_LANELET.String()
		data.Relations = append(data.Relations, &osm.Relation{
			ID:      osm.RelationID(ll.ID),
			Visible: true,
			Version: 1,
			Members: members,
			Tags:    attributesToTags(attrs),
		})
	}
	for _, area := range m.Areas() {
		members := make(osm.Members, 0, len(area.Outer)+len(area.Inner))
		for _, curve := range area.Outer {
			members = append(members, osm.Member{Type: osm.TypeWay, Ref: int64(curve.ID), Role: "outer"})
		}
		for _, curve := range area.Inner {
			members = append(members, osm.Member{Type: osm.TypeWay, Ref: int64(curve.ID), Role: "inner"})
		}
		attrs := area.Attributes.Clone()
		attrs["type"] = RELATION_AREA.String()
		data.Relations = append(data.Relations, &osm.Relation{
			ID:      osm.RelationID(area.ID),
			Visible: true,
			Version: 1,
			Members: members,
			Tags:    attributesToTags(attrs),
		})
	}
	for _, regElem := range m.RegulatoryElements() {
		members := make(osm.Members, 0, len(regElem.Members))
		for _, member := range regElem.Members {
			switch {
			case member.Point != nil:
				members = append(members, osm.Member{Type: osm.TypeNode, Ref: int64(member.Point.ID), Role: member.Role})
			case member.Curve != nil:
				members = append(members, osm.Member{Type: osm.TypeWay, Ref: int64(member.Curve.ID), Role: member.Role})
			case member.Relation != nil:
				if !m.HasRelation(*member.Relation) {
					continue
				}
				members = append(members, osm.Member{Type: osm.TypeRelation, Ref: member.Relation.ID, Role: member.Role})
			}
		}
		attrs := regElem.Attributes.Clone()
		attrs["type"] = RELATION_REGULATORY_ELEMENT.String()
		data.Relations = append(data.Relations, &osm.Relation{
			ID:      osm.RelationID(regElem.ID),
			Visible: true,
			Version: 1,
			Members: members,
			Tags:    attributesToTags(attrs),
		})
	}
	sort.Slice(data.Nodes, func(i, j int) bool { return data.Nodes[i].ID < data.Nodes[j].ID })
	sort.Slice(data.Ways, func(i, j int) bool { return data.Ways[i].ID < data.Ways[j].ID })
	sort.Slice(data.Relations, func(i, j int) bool { return data.Relations[i].ID < data.Relations[j].ID })
	return data
}

func pointsToWayNodes(pts []*Point) osm.WayNodes {
	nodes := make(osm.WayNodes, len(pts))
	for i, pt := range pts {
		nodes[i] = osm.WayNode{ID: osm.NodeID(pt.ID)}
	}
	return nodes
}
