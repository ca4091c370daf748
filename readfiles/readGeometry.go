package readfiles

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"

	"github.com/structmech/gomortar/nurbs"
	"github.com/structmech/gomortar/patch"
)

// PatchSpec is the YAML description of one trimmed surface patch. Control
// points are listed v-major (the v index varies slowest), each as
// [x, y, z, w, dofIndex].
type PatchSpec struct {
	ID            int           `yaml:"ID"`
	UDegree       int           `yaml:"UDegree"`
	VDegree       int           `yaml:"VDegree"`
	UKnots        []float64     `yaml:"UKnots"`
	VKnots        []float64     `yaml:"VKnots"`
	ControlPoints [][]float64   `yaml:"ControlPoints"`
	TrimmingLoops [][][]float64 `yaml:"TrimmingLoops"`
}

// ContinuitySpec is the YAML description of one weak patch interface.
type ContinuitySpec struct {
	MasterPatch int       `yaml:"MasterPatch"`
	SlavePatch  int       `yaml:"SlavePatch"`
	MasterFrom  []float64 `yaml:"MasterFrom"`
	MasterTo    []float64 `yaml:"MasterTo"`
	SlaveFrom   []float64 `yaml:"SlaveFrom"`
	SlaveTo     []float64 `yaml:"SlaveTo"`
}

// GeometrySpec is the root of a geometry file.
type GeometrySpec struct {
	Patches              []PatchSpec      `yaml:"Patches"`
	ContinuityConditions []ContinuitySpec `yaml:"ContinuityConditions"`
}

// ReadGeometryFile loads a patch collection from a YAML geometry file.
func ReadGeometryFile(path string) (*patch.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseGeometry(data)
}

// ParseGeometry builds the patch collection from YAML bytes.
func ParseGeometry(data []byte) (*patch.Collection, error) {
	var spec GeometrySpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	if len(spec.Patches) == 0 {
		return nil, fmt.Errorf("geometry file contains no patches")
	}
	var (
		patches = make([]*patch.Patch, 0, len(spec.Patches))
		byID    = make(map[int]int, len(spec.Patches))
	)
	for pi, ps := range spec.Patches {
		if _, dup := byID[ps.ID]; dup {
			return nil, fmt.Errorf("duplicate patch ID %d", ps.ID)
		}
		byID[ps.ID] = pi
		net := make([]patch.ControlPoint, 0, len(ps.ControlPoints))
		for i, cp := range ps.ControlPoints {
			if len(cp) != 5 {
				return nil, fmt.Errorf("patch %d control point %d: want [x y z w dof], got %d entries", ps.ID, i, len(cp))
			}
			net = append(net, patch.ControlPoint{
				X: cp[0], Y: cp[1], Z: cp[2], W: cp[3], DofIndex: int(cp[4]),
			})
		}
		loops := make([]patch.TrimmingLoop, 0, len(ps.TrimmingLoops))
		for li, lp := range ps.TrimmingLoops {
			loop := patch.TrimmingLoop{Vertices: make([][2]float64, 0, len(lp))}
			for vi, v := range lp {
				if len(v) != 2 {
					return nil, fmt.Errorf("patch %d loop %d vertex %d: want [u v]", ps.ID, li, vi)
				}
				loop.Vertices = append(loop.Vertices, [2]float64{v[0], v[1]})
			}
			loops = append(loops, loop)
		}
		p, err := patch.NewPatch(ps.ID, ps.UDegree, nurbs.KnotVector(ps.UKnots),
			ps.VDegree, nurbs.KnotVector(ps.VKnots), net, loops)
		if err != nil {
			return nil, err
		}
		patches = append(patches, p)
	}
	conditions := make([]patch.ContinuityCondition, 0, len(spec.ContinuityConditions))
	for i, cs := range spec.ContinuityConditions {
		if len(cs.MasterFrom) != 2 || len(cs.MasterTo) != 2 || len(cs.SlaveFrom) != 2 || len(cs.SlaveTo) != 2 {
			return nil, fmt.Errorf("continuity condition %d: segment endpoints must be [u v] pairs", i)
		}
		// Conditions reference patches by ID in the file, by index internally
		master, ok := byID[cs.MasterPatch]
		if !ok {
			return nil, fmt.Errorf("continuity condition %d references unknown patch ID %d", i, cs.MasterPatch)
		}
		slave, ok := byID[cs.SlavePatch]
		if !ok {
			return nil, fmt.Errorf("continuity condition %d references unknown patch ID %d", i, cs.SlavePatch)
		}
		conditions = append(conditions, patch.ContinuityCondition{
			MasterPatch: master,
			SlavePatch:  slave,
			MasterFrom:  [2]float64{cs.MasterFrom[0], cs.MasterFrom[1]},
			MasterTo:    [2]float64{cs.MasterTo[0], cs.MasterTo[1]},
			SlaveFrom:   [2]float64{cs.SlaveFrom[0], cs.SlaveFrom[1]},
			SlaveTo:     [2]float64{cs.SlaveTo[0], cs.SlaveTo[1]},
		})
	}
	return patch.NewCollection(patches, conditions)
}
