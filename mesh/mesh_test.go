package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two quads sharing an edge:
//
//	4---5---6
//	|   |   |
//	1---2---3
func twoQuadMesh(t *testing.T) *CounterpartMesh {
	t.Helper()
	m, err := NewCounterpartMesh(
		[]float64{
			0, 0, 0, 1, 0, 0, 2, 0, 0,
			0, 1, 0, 1, 1, 0, 2, 1, 0,
		},
		[]int{1, 2, 3, 4, 5, 6},
		[]int{4, 4},
		[]int{1, 2, 5, 4, 2, 3, 6, 5},
	)
	require.NoError(t, err)
	return m
}

func TestMeshTables(t *testing.T) {
	m := twoQuadMesh(t)
	assert.Equal(t, 6, m.NumNodes())
	assert.Equal(t, 2, m.NumElements())
	assert.Equal(t, []int{1, 2, 5, 4}, m.ElemNodes(0))
	assert.Equal(t, []int{2, 3, 6, 5}, m.ElemNodes(1))

	i, err := m.NodeIndex(5)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{1, 1, 0}, m.NodeCoord(i))
	_, err = m.NodeIndex(99)
	assert.Error(t, err)

	j, _ := m.NodeIndex(2)
	assert.ElementsMatch(t, []int{0, 1}, m.ElemsOfNode(j))
	k, _ := m.NodeIndex(1)
	assert.Equal(t, []int{0}, m.ElemsOfNode(k))
}

func TestMeshValidation(t *testing.T) {
	_, err := NewCounterpartMesh([]float64{0, 0}, []int{1}, nil, nil)
	assert.Error(t, err)

	_, err = NewCounterpartMesh(
		[]float64{0, 0, 0, 1, 0, 0, 0, 1, 0},
		[]int{1, 2, 3},
		[]int{5},
		[]int{1, 2, 3, 1, 2},
	)
	assert.Error(t, err)

	_, err = NewCounterpartMesh(
		[]float64{0, 0, 0, 1, 0, 0, 0, 1, 0},
		[]int{1, 2, 3},
		[]int{3},
		[]int{1, 2, 7},
	)
	assert.Error(t, err)
}
