package readfiles

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"

	"github.com/structmech/gomortar/mesh"
)

// MeshSpec is the YAML description of the counterpart mesh. Nodes are listed
// as [id, x, y, z], elements as node id lists of length 3 or 4.
type MeshSpec struct {
	Nodes    [][]float64 `yaml:"Nodes"`
	Elements [][]int     `yaml:"Elements"`
}

// ReadMeshFile loads a counterpart mesh from a YAML mesh file.
func ReadMeshFile(path string) (*mesh.CounterpartMesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseMesh(data)
}

// ParseMesh builds the counterpart mesh from YAML bytes.
func ParseMesh(data []byte) (*mesh.CounterpartMesh, error) {
	var spec MeshSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	if len(spec.Nodes) == 0 {
		return nil, fmt.Errorf("mesh file contains no nodes")
	}
	var (
		coords = make([]float64, 0, 3*len(spec.Nodes))
		ids    = make([]int, 0, len(spec.Nodes))
		nnpe   = make([]int, 0, len(spec.Elements))
		table  = make([]int, 0, 4*len(spec.Elements))
	)
	for i, nd := range spec.Nodes {
		if len(nd) != 4 {
			return nil, fmt.Errorf("node %d: want [id x y z], got %d entries", i, len(nd))
		}
		ids = append(ids, int(nd[0]))
		coords = append(coords, nd[1], nd[2], nd[3])
	}
	for e, el := range spec.Elements {
		if len(el) != 3 && len(el) != 4 {
			return nil, fmt.Errorf("element %d has %d nodes, only 3 or 4 supported", e, len(el))
		}
		nnpe = append(nnpe, len(el))
		table = append(table, el...)
	}
	return mesh.NewCounterpartMesh(coords, ids, nnpe, table)
}
