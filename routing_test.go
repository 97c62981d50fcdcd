package osmfusion

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRoutingGraph(t *testing.T) {
	m := NewMap()
	a := newStraightLanelet(m, 0, 10, 0)
	b := newFollowingLanelet(m, a, 20)
	c := newFollowingLanelet(m, b, 35)
	isolated := newStraightLanelet(m, 0, 10, 10)

	rg, err := BuildRoutingGraph(m, PlanarGeometry{}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, rg.Edges)
	assert.Equal(t, []LaneletID{isolated.ID}, rg.Isolated)

	cost, path, err := rg.ShortestPath(a.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []LaneletID{a.ID, b.ID, c.ID}, path)
	assert.InDelta(t, 20, cost, 1e-9)

	_, _, err = rg.ShortestPath(c.ID, a.ID)
	assert.Error(t, err)

	fname := filepath.Join(t.TempDir(), "routing.csv")
	require.NoError(t, rg.ExportToCSV(m, fname))
	file, err := os.Open(filepath.Join(filepath.Dir(fname), "routing_vertices.csv"))
	require.NoError(t, err)
	defer file.Close()
	reader := csv.NewReader(file)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 5)
	assert.Equal(t, []string{"lanelet_id", "order_pos", "importance", "geom"}, records[0])
}

func TestShortestPathNotContracted(t *testing.T) {
	m := NewMap()
	a := newStraightLanelet(m, 0, 10, 0)
	rg, err := BuildRoutingGraph(m, PlanarGeometry{}, false)
	require.NoError(t, err)
	_, _, err = rg.ShortestPath(a.ID, a.ID)
	assert.Error(t, err)
}
