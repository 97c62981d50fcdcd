package osmfusion

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/LdDl/ch"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

// RoutingGraph is a lanelet successor graph: every lanelet is a vertex,
// edge A->B exists if B directly follows A and weighs as A's centerline length
type RoutingGraph struct {
	Graph      *ch.Graph
	Edges      int
	Isolated   []LaneletID
	contracted bool
}

// BuildRoutingGraph prepares routing graph of the map. If contract is true contraction hierarchies are prepared as well
func BuildRoutingGraph(m *Map, geom GeometryPort, contract bool) (*RoutingGraph, error) {
	graph := ch.Graph{}
	lanelets := m.Lanelets()
	for _, ll := range lanelets {
		err := graph.CreateVertex(int64(ll.ID))
		if err != nil {
			return nil, errors.Wrapf(err, "Can not create vertex for lanelet %d", ll.ID)
		}
	}
	connected := make(map[LaneletID]struct{}, len(lanelets))
	edges := 0
	for _, prev := range lanelets {
		cost := planar.Length(coordsToLineString(prev.Centerline()))
		for _, next := range lanelets {
			if prev.ID == next.ID || !geom.Follows(prev, next) {
				continue
			}
			err := graph.AddEdge(int64(prev.ID), int64(next.ID), cost)
			if err != nil {
				return nil, errors.Wrapf(err, "Can not wrap lanelets %d and %d as Edge", prev.ID, next.ID)
			}
			connected[prev.ID] = struct{}{}
			connected[next.ID] = struct{}{}
			edges++
		}
	}
	isolated := []LaneletID{}
	for _, ll := range lanelets {
		if _, ok := connected[ll.ID]; !ok {
			isolated = append(isolated, ll.ID)
		}
	}
	if contract {
		graph.PrepareContractionHierarchies()
	}
	return &RoutingGraph{
		Graph:      &graph,
		Edges:      edges,
		Isolated:   isolated,
		contracted: contract,
	}, nil
}

// ShortestPath returns route between two lanelets. Contraction hierarchies must be prepared
func (rg *RoutingGraph) ShortestPath(from, to LaneletID) (float64, []LaneletID, error) {
	if !rg.contracted {
		return -1, nil, fmt.Errorf("contraction hierarchies have not been prepared")
	}
	cost, path := rg.Graph.ShortestPath(int64(from), int64(to))
	if len(path) == 0 {
		return -1, nil, fmt.Errorf("no path between lanelets %d and %d", from, to)
	}
	ids := make([]LaneletID, len(path))
	for i, v := range path {
		ids[i] = LaneletID(v)
	}
	return cost, ids, nil
}

// ExportToCSV writes vertices of the graph with lanelet centerlines. Shortcuts are written to '<fname>_shortcuts.csv' if graph is contracted
func (rg *RoutingGraph) ExportToCSV(m *Map, fname string) error {
	fnameParts := strings.Split(fname, ".csv")
	fnameVertices := fnameParts[0] + "_vertices.csv"
	fnameShortcuts := fnameParts[0] + "_shortcuts.csv"

	file, err := os.Create(fnameVertices)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()
	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"lanelet_id", "order_pos", "importance", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	vertices := rg.Graph.Vertices
	for i := 0; i < len(vertices); i++ {
		ll, err := m.Lanelet(LaneletID(vertices[i].Label))
		if err != nil {
			return errors.Wrap(err, "Can't find lanelet of vertex")
		}
		err = writer.Write([]string{
			fmt.Sprintf("%d", vertices[i].Label),
			fmt.Sprintf("%d", vertices[i].OrderPos()),
			fmt.Sprintf("%d", vertices[i].Importance()),
			wkt.MarshalString(lineToSpherical(coordsToLineString(ll.Centerline()))),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write vertex")
		}
	}
	if rg.contracted {
		err = rg.Graph.ExportShortcutsToFile(fnameShortcuts)
		if err != nil {
			return errors.Wrap(err, "Can't export shortcuts")
		}
	}
	return nil
}
