package osmfusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateReferenceLanelet(t *testing.T) {
	match := &Match{
		Reference: []*Segment{
			{Forward: []LaneletID{1, 2}, Backward: []LaneletID{5}},
			{Forward: []LaneletID{1, 2}, Backward: []LaneletID{5}},
			{Forward: []LaneletID{1, 2}, Backward: []LaneletID{6}},
			{Forward: []LaneletID{3, 2}, Backward: []LaneletID{6}},
		},
	}
	err := match.UpdateReferenceLanelet(DIRECTION_FORWARD, 0, 1, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, []LaneletID{1, 2}, match.Reference[0].Forward)
	assert.Equal(t, []LaneletID{9, 2}, match.Reference[1].Forward)
	assert.Equal(t, []LaneletID{9, 2}, match.Reference[2].Forward)
	assert.Equal(t, []LaneletID{3, 2}, match.Reference[3].Forward)
	assert.Equal(t, []LaneletID{5}, match.Reference[1].Backward)

	err = match.UpdateReferenceLanelet(DIRECTION_BACKWARD, 0, 5, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, []LaneletID{7}, match.Reference[0].Backward)
	assert.Equal(t, []LaneletID{7}, match.Reference[1].Backward)
	assert.Equal(t, []LaneletID{6}, match.Reference[2].Backward)

	assert.Error(t, match.UpdateReferenceLanelet(DIRECTION_FORWARD, 0, 1, 9, 4))
	assert.Error(t, match.UpdateReferenceLanelet(DIRECTION_FORWARD, 5, 1, 9, 0))
	assert.Error(t, match.UpdateReferenceLanelet(DIRECTION_FORWARD, 0, 42, 9, 0))
}

func TestRemoveReferenceLanelet(t *testing.T) {
	match := &Match{
		Reference: []*Segment{
			{Forward: []LaneletID{1, 2}, Backward: []LaneletID{2}},
			{Forward: []LaneletID{2, 3}, Backward: []LaneletID{}},
		},
	}
	match.RemoveReferenceLanelet(2)
	assert.Equal(t, []LaneletID{1}, match.Reference[0].Forward)
	assert.Empty(t, match.Reference[0].Backward)
	assert.Equal(t, []LaneletID{3}, match.Reference[1].Forward)
	assert.Equal(t, 1, match.Reference[1].LanesCount())
}

func TestSegmentAllLanelets(t *testing.T) {
	seg := &Segment{Forward: []LaneletID{1, 2}, Backward: []LaneletID{3}}
	assert.Equal(t, []LaneletID{3, 1, 2}, seg.AllLanelets())
	assert.Equal(t, 3, seg.LanesCount())
	assert.Equal(t, []LaneletID{3}, seg.Lanelets(DIRECTION_BACKWARD))
}

func TestSameDirection(t *testing.T) {
	m := NewMap()
	reference := newReference(m, 0, 10, 20)
	same := &Match{Reference: reference, Target: newTarget(m, []float64{0, 20}, []Attributes{{}})}
	assert.True(t, same.SameDirection())

	opposite := &Match{Reference: reference, Target: newTarget(m, []float64{20, 10, 0}, []Attributes{{}, {}})}
	assert.False(t, opposite.SameDirection())

	empty := &Match{Reference: reference}
	assert.False(t, empty.SameDirection())
}
