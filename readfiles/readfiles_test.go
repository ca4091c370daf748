package readfiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const geometryYAML = `
Patches:
  - ID: 1
    UDegree: 1
    VDegree: 1
    UKnots: [0, 0, 1, 1]
    VKnots: [0, 0, 1, 1]
    ControlPoints:
      - [0, 0, 0, 1, 0]
      - [1, 0, 0, 1, 1]
      - [0, 1, 0, 1, 2]
      - [1, 1, 0, 1, 3]
    TrimmingLoops:
      - [[0, 0], [1, 0], [1, 1], [0, 1]]
  - ID: 2
    UDegree: 1
    VDegree: 1
    UKnots: [0, 0, 1, 1]
    VKnots: [0, 0, 1, 1]
    ControlPoints:
      - [1, 0, 0, 1, 2]
      - [2, 0, 0, 1, 4]
      - [1, 1, 0, 1, 3]
      - [2, 1, 0, 1, 5]
ContinuityConditions:
  - MasterPatch: 1
    SlavePatch: 2
    MasterFrom: [1, 0]
    MasterTo: [1, 1]
    SlaveFrom: [0, 0]
    SlaveTo: [0, 1]
`

func TestParseGeometry(t *testing.T) {
	col, err := ParseGeometry([]byte(geometryYAML))
	require.NoError(t, err)
	require.Equal(t, 2, len(col.Patches))
	assert.Equal(t, 6, col.NumDofs())
	assert.True(t, col.Patches[0].IsTrimmed())
	assert.False(t, col.Patches[1].IsTrimmed())
	require.Equal(t, 1, len(col.Conditions))
	// Patch IDs in the file become collection indices
	assert.Equal(t, 0, col.Conditions[0].MasterPatch)
	assert.Equal(t, 1, col.Conditions[0].SlavePatch)

	// Linear patch interpolates its corner control points
	pos := col.Patches[1].EvaluatePoint(0.5, 0.5)
	assert.InDelta(t, 1.5, pos[0], 1.e-12)
	assert.InDelta(t, 0.5, pos[1], 1.e-12)
}

func TestParseGeometryBadControlPoint(t *testing.T) {
	bad := `
Patches:
  - ID: 1
    UDegree: 1
    VDegree: 1
    UKnots: [0, 0, 1, 1]
    VKnots: [0, 0, 1, 1]
    ControlPoints:
      - [0, 0, 0, 1]
`
	_, err := ParseGeometry([]byte(bad))
	assert.Error(t, err)
}

func TestParseGeometryEmpty(t *testing.T) {
	_, err := ParseGeometry([]byte("Patches: []"))
	assert.Error(t, err)
}

const meshYAML = `
Nodes:
  - [1, 0, 0, 0]
  - [2, 1, 0, 0]
  - [3, 1, 1, 0]
  - [4, 0, 1, 0]
  - [5, 2, 0, 0]
Elements:
  - [1, 2, 3, 4]
  - [2, 5, 3]
`

func TestParseMesh(t *testing.T) {
	m, err := ParseMesh([]byte(meshYAML))
	require.NoError(t, err)
	assert.Equal(t, 5, m.NumNodes())
	assert.Equal(t, 2, m.NumElements())
	assert.Equal(t, []int{1, 2, 3, 4}, m.ElemNodes(0))
	assert.Equal(t, []int{2, 5, 3}, m.ElemNodes(1))
	i, err := m.NodeIndex(5)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{2, 0, 0}, m.NodeCoord(i))
}

func TestParseMeshBadElement(t *testing.T) {
	bad := `
Nodes:
  - [1, 0, 0, 0]
  - [2, 1, 0, 0]
Elements:
  - [1, 2]
`
	_, err := ParseMesh([]byte(bad))
	assert.Error(t, err)
}
