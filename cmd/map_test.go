package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGeometry = `
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
`

const testMesh = `
Nodes:
  - [1, 0, 0, 0]
  - [2, 1, 0, 0]
  - [3, 1, 1, 0]
  - [4, 0, 1, 0]
Elements:
  - [1, 2, 3, 4]
`

func TestRunMap(t *testing.T) {
	var (
		dir      = t.TempDir()
		geomFile = filepath.Join(dir, "geometry.yaml")
		meshFile = filepath.Join(dir, "mesh.yaml")
		inFile   = filepath.Join(dir, "input.yaml")
		fldFile  = filepath.Join(dir, "field.yaml")
		outFile  = filepath.Join(dir, "out.yaml")
	)
	require.NoError(t, os.WriteFile(geomFile, []byte(testGeometry), 0644))
	require.NoError(t, os.WriteFile(meshFile, []byte(testMesh), 0644))
	input := `
Title: "Unit square"
GeometryFile: ` + geomFile + `
MeshFile: ` + meshFile + `
`
	require.NoError(t, os.WriteFile(inFile, []byte(input), 0644))
	// Linear field equal to the x coordinate at each control point
	require.NoError(t, os.WriteFile(fldFile, []byte("Values: [0, 1, 0, 1]"), 0644))

	mr := &MapRun{InputFile: inFile, FieldFile: fldFile, OutputFile: outFile}
	mp := processMapInput(mr)
	assert.Equal(t, "Unit square", mp.Title)
	RunMap(mr, mp)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	ff := &FieldFile{}
	require.NoError(t, yaml.Unmarshal(data, ff))
	require.Equal(t, 4, len(ff.Values))
	// Mesh nodes 1..4 sit at x = 0, 1, 1, 0
	for i, want := range []float64{0, 1, 1, 0} {
		assert.InDelta(t, want, ff.Values[i], 1.e-9)
	}
}

func TestProcessMapInputBadYAML(t *testing.T) {
	dir := t.TempDir()
	inFile := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(inFile, []byte("Title: [unclosed"), 0644))
	mr := &MapRun{InputFile: inFile}
	assert.Panics(t, func() { processMapInput(mr) })
}
