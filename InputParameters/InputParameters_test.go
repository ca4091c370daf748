package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/structmech/gomortar/mortar"
)

func TestParse(t *testing.T) {
	data := `
Title: "Plate coupling"
GeometryFile: plate_geometry.yaml
MeshFile: plate_mesh.yaml
Direction: FEToIGA
MaxProjectionDistance: 0.05
GaussPointsTriangle: 7
AutoPenalty: false
DispPenalty: 1000.
EnforceDirichlet: true
ConstrainedDofs: [0, 1, 2]
`
	mp := &MappingParameters{}
	require.NoError(t, mp.Parse([]byte(data)))
	assert.Equal(t, "Plate coupling", mp.Title)
	assert.Equal(t, "plate_geometry.yaml", mp.GeometryFile)

	p, err := mp.MortarParams()
	require.NoError(t, err)
	assert.Equal(t, mortar.FEToIGA, p.Direction)
	assert.Equal(t, 0.05, p.MaxProjectionDistance)
	assert.Equal(t, 7, p.NumGPTriangle)
	assert.False(t, p.AutoPenalty)
	assert.Equal(t, 1000., p.DispPenalty)
	assert.Equal(t, []int{0, 1, 2}, p.ConstrainedDofs)
	// Unset options keep defaults
	assert.Equal(t, mortar.DefaultParams().NewtonTol, p.NewtonTol)
}

func TestParseBadDirection(t *testing.T) {
	mp := &MappingParameters{Direction: "sideways"}
	_, err := mp.MortarParams()
	assert.Error(t, err)
}
