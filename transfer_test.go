package osmfusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLanesMatch creates match of n reference segments along X axis, every segment has its own forward lanelet
func newLanesMatch(m *Map, n int, reversedTarget bool) (*Match, []*Lanelet) {
	xs := make([]float64, n+1)
	for i := range xs {
		xs[i] = float64(i * 10)
	}
	reference := newReference(m, xs...)
	lanelets := make([]*Lanelet, n)
	for i := range reference {
		lanelets[i] = newStraightLanelet(m, xs[i], xs[i+1], 0)
		reference[i].Forward = []LaneletID{lanelets[i].ID}
	}
	txs := []float64{xs[0], xs[n]}
	if reversedTarget {
		txs = []float64{xs[n], xs[0]}
	}
	return &Match{Reference: reference, Target: newTarget(m, txs, []Attributes{{}})}, lanelets
}

func TestActiveValue(t *testing.T) {
	values := []string{"a", "b", "c"}
	indChange := []int{2, 5}
	expected := []string{"a", "a", "b", "b", "b", "c", "c"}
	for ind, val := range expected {
		assert.Equal(t, val, activeValue(ind, indChange, values), "segment %d", ind)
	}
}

func TestTransferAttributeDirectionSymmetry(t *testing.T) {
	m := NewMap()
	sameMatch, sameLanelets := newLanesMatch(m, 7, false)
	oppositeMatch, oppositeLanelets := newLanesMatch(m, 7, true)
	require.True(t, sameMatch.SameDirection())
	require.False(t, oppositeMatch.SameDirection())

	indChange := []int{2, 5}
	require.NoError(t, TransferAttribute(m, oppositeMatch, "speed_limit", indChange, []string{"a", "b", "c"}))
	require.NoError(t, TransferAttribute(m, sameMatch, "speed_limit", indChange, []string{"c", "b", "a"}))

	expected := []string{"c", "c", "b", "b", "b", "a", "a"}
	for i := range expected {
		assert.Equal(t, expected[i], sameLanelets[i].Attributes["speed_limit"], "segment %d", i)
		assert.Equal(t, sameLanelets[i].Attributes["speed_limit"], oppositeLanelets[i].Attributes["speed_limit"], "segment %d", i)
	}
}

func TestTransferAttributeFirstSegmentWins(t *testing.T) {
	m := NewMap()
	ll := newStraightLanelet(m, 0, 20, 0)
	reference := newReference(m, 0, 10, 20)
	for _, seg := range reference {
		seg.Forward = []LaneletID{ll.ID}
	}
	match := &Match{Reference: reference, Target: newTarget(m, []float64{0, 20}, []Attributes{{}})}
	require.NoError(t, TransferAttribute(m, match, "road_name", []int{1}, []string{"first", "second"}))
	assert.Equal(t, "first", ll.Attributes["road_name"])
}

func TestTransferAttributeMissingLanelet(t *testing.T) {
	m := NewMap()
	match, _ := newLanesMatch(m, 2, false)
	match.Reference[1].Forward = append(match.Reference[1].Forward, 424242)
	err := TransferAttribute(m, match, "road_name", []int{}, []string{"x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLaneletNotFound)
}

func TestSetTypeLocation(t *testing.T) {
	m := NewMap()
	match, lanelets := newLanesMatch(m, 4, false)
	values := []string{"motorway", "living_street", "unknown", "busway"}
	require.NoError(t, SetTypeLocation(m, match, []int{1, 2, 3}, values, DefaultRules().Classes))

	expected := []LaneletClass{
		{"highway", "nonurban"},
		{"play_street", ""},
		{"", ""},
		{"bus_lane", "urban"},
	}
	for i, class := range expected {
		assert.Equal(t, class.Subtype, lanelets[i].Attributes["subtype"], "segment %d", i)
		assert.Equal(t, class.Location, lanelets[i].Attributes["location"], "segment %d", i)
	}
}
