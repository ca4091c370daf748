package mortar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/structmech/gomortar/mesh"
	"github.com/structmech/gomortar/nurbs"
	"github.com/structmech/gomortar/patch"
)

// flatPatch builds a degree-2 patch over [0,1]^2 shifted by offsetX, control
// points at the Greville abscissae so the surface is the identity map.
func flatPatch(t *testing.T, id int, offsetX float64, dofOffset int, loops []patch.TrimmingLoop) *patch.Patch {
	t.Helper()
	var (
		kv = nurbs.KnotVector{0, 0, 0, 1. / 3., 2. / 3., 1, 1, 1}
		p  = 2
	)
	net := make([]patch.ControlPoint, 0, 25)
	for j := 0; j < 5; j++ {
		for i := 0; i < 5; i++ {
			net = append(net, patch.ControlPoint{
				X:        offsetX + kv.GrevilleAbscissa(p, i),
				Y:        kv.GrevilleAbscissa(p, j),
				W:        1,
				DofIndex: dofOffset + j*5 + i,
			})
		}
	}
	pp, err := patch.NewPatch(id, p, kv, p, kv, net, loops)
	require.NoError(t, err)
	return pp
}

// grid3x3Mesh is a 2x2 linear-quad mesh over [0,1]^2.
func grid3x3Mesh(t *testing.T) *mesh.CounterpartMesh {
	t.Helper()
	var (
		coords []float64
		ids    []int
	)
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			coords = append(coords, 0.5*float64(i), 0.5*float64(j), 0)
			ids = append(ids, j*3+i+1)
		}
	}
	m, err := mesh.NewCounterpartMesh(coords, ids,
		[]int{4, 4, 4, 4},
		[]int{
			1, 2, 5, 4,
			2, 3, 6, 5,
			4, 5, 8, 7,
			5, 6, 9, 8,
		})
	require.NoError(t, err)
	return m
}

func unitSquareLoop() []patch.TrimmingLoop {
	return []patch.TrimmingLoop{{Vertices: [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}}}
}

func buildScenario(t *testing.T, params Params) *CouplingOperator {
	t.Helper()
	c, err := patch.NewCollection([]*patch.Patch{flatPatch(t, 0, 0, 0, unitSquareLoop())}, nil)
	require.NoError(t, err)
	m, err := NewMapper(c, grid3x3Mesh(t), params)
	require.NoError(t, err)
	op, err := m.BuildCouplingMatrices()
	require.NoError(t, err)
	return op
}

func TestConsistentMappingUniformField(t *testing.T) {
	op := buildScenario(t, DefaultParams())
	assert.Equal(t, 9, op.NumTargetDofs())
	assert.Equal(t, 25, op.NumSourceDofs())

	source := make([]float64, 25)
	for i := range source {
		source[i] = 3
	}
	out, err := op.ConsistentMapping(source)
	require.NoError(t, err)
	require.Equal(t, 9, len(out))
	for i, v := range out {
		assert.InDelta(t, 3, v, 1.e-6, "target dof %d", i)
	}
}

func TestConservativeMappingPreservesTotal(t *testing.T) {
	op := buildScenario(t, DefaultParams())
	load := make([]float64, 9)
	var total float64
	for i := range load {
		load[i] = float64(i) + 0.5
		total += load[i]
	}
	out, err := op.ConservativeMapping(load)
	require.NoError(t, err)
	var sum float64
	for _, v := range out {
		sum += v
	}
	assert.InDelta(t, total, sum, 1.e-8)
}

func TestRepeatMappingBitIdentical(t *testing.T) {
	op := buildScenario(t, DefaultParams())
	source := make([]float64, 25)
	for i := range source {
		source[i] = float64(i%7) * 0.3
	}
	a, err := op.ConsistentMapping(source)
	require.NoError(t, err)
	b, err := op.ConsistentMapping(source)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCnnTotalMassEqualsArea(t *testing.T) {
	op := buildScenario(t, DefaultParams())
	var sum float64
	op.cnn.M.DoNonZero(func(_, _ int, v float64) {
		sum += v
	})
	// Sum over all mass matrix entries is the integral of 1 over the patch
	assert.InDelta(t, 1, sum, 1.e-9)
}

func TestFEToIGADirection(t *testing.T) {
	params := DefaultParams()
	params.Direction = FEToIGA
	op := buildScenario(t, params)
	assert.Equal(t, 25, op.NumTargetDofs())
	assert.Equal(t, 9, op.NumSourceDofs())

	source := make([]float64, 9)
	for i := range source {
		source[i] = 3
	}
	out, err := op.ConsistentMapping(source)
	require.NoError(t, err)
	for i, v := range out {
		assert.InDelta(t, 3, v, 1.e-6, "control point dof %d", i)
	}
}

func TestTrimmedPatchWithHole(t *testing.T) {
	loops := []patch.TrimmingLoop{
		{Vertices: [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}},
		// Hole, clockwise
		{Vertices: [][2]float64{{0.3, 0.3}, {0.3, 0.7}, {0.7, 0.7}, {0.7, 0.3}}},
	}
	c, err := patch.NewCollection([]*patch.Patch{flatPatch(t, 0, 0, 0, loops)}, nil)
	require.NoError(t, err)
	m, err := NewMapper(c, grid3x3Mesh(t), DefaultParams())
	require.NoError(t, err)
	op, err := m.BuildCouplingMatrices()
	require.NoError(t, err)

	var sum float64
	op.cnn.M.DoNonZero(func(_, _ int, v float64) {
		sum += v
	})
	// The hole removes 0.16 of the unit area
	assert.InDelta(t, 0.84, sum, 1.e-6)

	source := make([]float64, 25)
	for i := range source {
		source[i] = 3
	}
	out, err := op.ConsistentMapping(source)
	require.NoError(t, err)
	for i, v := range out {
		assert.InDelta(t, 3, v, 1.e-6, "target dof %d", i)
	}
}

func TestProjectionFailsOutsideAllBoxes(t *testing.T) {
	c, err := patch.NewCollection([]*patch.Patch{flatPatch(t, 0, 0, 0, nil)}, nil)
	require.NoError(t, err)
	msh, err := mesh.NewCounterpartMesh(
		[]float64{
			0, 0, 0, 1, 0, 0, 1, 1, 0,
			5, 5, 5,
		},
		[]int{1, 2, 3, 99},
		[]int{3, 3},
		[]int{1, 2, 3, 2, 3, 99},
	)
	require.NoError(t, err)
	m, err := NewMapper(c, msh, DefaultParams())
	require.NoError(t, err)
	_, err = m.BuildCouplingMatrices()
	require.Error(t, err)
	var pe *ProjectionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 99, pe.NodeID)
}

func TestOverhangingMeshForceProjection(t *testing.T) {
	// Mesh extends past the patch; the overhanging nodes are resolved by the
	// forced grid search of pass 2, and the overlap integrates to the
	// intersection area.
	var (
		coords []float64
		ids    []int
	)
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			coords = append(coords, 0.6*float64(i), 0.6*float64(j), 0)
			ids = append(ids, j*3+i+1)
		}
	}
	msh, err := mesh.NewCounterpartMesh(coords, ids,
		[]int{4, 4, 4, 4},
		[]int{
			1, 2, 5, 4,
			2, 3, 6, 5,
			4, 5, 8, 7,
			5, 6, 9, 8,
		})
	require.NoError(t, err)
	c, err := patch.NewCollection([]*patch.Patch{flatPatch(t, 0, 0, 0, nil)}, nil)
	require.NoError(t, err)
	params := DefaultParams()
	params.MaxProjectionDistance = 0.3
	m, err := NewMapper(c, msh, params)
	require.NoError(t, err)
	op, err := m.BuildCouplingMatrices()
	require.NoError(t, err)

	source := make([]float64, 25)
	for i := range source {
		source[i] = 3
	}
	out, err := op.ConsistentMapping(source)
	require.NoError(t, err)
	for i, v := range out {
		assert.InDelta(t, 3, v, 1.e-5, "target dof %d", i)
	}
}

func TestDirichletElimination(t *testing.T) {
	params := DefaultParams()
	params.EnforceDirichlet = true
	params.ConstrainedDofs = []int{0}
	op := buildScenario(t, params)

	source := make([]float64, 25)
	for i := range source {
		source[i] = 3
	}
	out, err := op.ConsistentMapping(source)
	require.NoError(t, err)
	assert.InDelta(t, 0, out[0], 1.e-12)
	for i := 1; i < len(out); i++ {
		assert.InDelta(t, 3, out[i], 1.e-6)
	}
}

func TestContinuityPenaltyKeepsConstants(t *testing.T) {
	// Two patches stitched weakly along x=1 with disjoint dof ranges; the
	// displacement penalty has zero row sums, so constants map exactly.
	left := flatPatch(t, 0, 0, 0, nil)
	right := flatPatch(t, 1, 1, 25, nil)
	cond := []patch.ContinuityCondition{{
		MasterPatch: 0, SlavePatch: 1,
		MasterFrom: [2]float64{1, 0}, MasterTo: [2]float64{1, 1},
		SlaveFrom: [2]float64{0, 0}, SlaveTo: [2]float64{0, 1},
	}}
	c, err := patch.NewCollection([]*patch.Patch{left, right}, cond)
	require.NoError(t, err)

	msh, err := mesh.NewCounterpartMesh(
		[]float64{
			0, 0, 0, 1, 0, 0, 2, 0, 0,
			0, 1, 0, 1, 1, 0, 2, 1, 0,
		},
		[]int{1, 2, 3, 4, 5, 6},
		[]int{4, 4},
		[]int{1, 2, 5, 4, 2, 3, 6, 5},
	)
	require.NoError(t, err)

	params := DefaultParams()
	params.Direction = FEToIGA
	params.EnforceRotPenalty = true
	m, err := NewMapper(c, msh, params)
	require.NoError(t, err)
	op, err := m.BuildCouplingMatrices()
	require.NoError(t, err)

	source := make([]float64, 6)
	for i := range source {
		source[i] = 3
	}
	out, err := op.ConsistentMapping(source)
	require.NoError(t, err)
	for i, v := range out {
		assert.InDelta(t, 3, v, 1.e-6, "control point dof %d", i)
	}
}

func TestBoundaryPolygonReconstruction(t *testing.T) {
	c, err := patch.NewCollection([]*patch.Patch{flatPatch(t, 0, 0, 0, nil)}, nil)
	require.NoError(t, err)
	msh, err := mesh.NewCounterpartMesh(
		[]float64{
			0.6, 0.2, 0, 1.2, 0.2, 0,
			1.2, 0.8, 0, 0.6, 0.8, 0,
		},
		[]int{1, 2, 3, 4},
		[]int{4},
		[]int{1, 2, 3, 4},
	)
	require.NoError(t, err)
	m, err := NewMapper(c, msh, DefaultParams())
	require.NoError(t, err)

	recs := &projectionRecords{perNode: make([]map[int]nodeRecord, 4)}
	recs.put(0, 0, nodeRecord{U: 0.6, V: 0.2})
	recs.put(3, 0, nodeRecord{U: 0.6, V: 0.8})
	nodes := m.elemLocalNodes(0)
	pg, err := m.buildElementPolygon(0, 0, nodes, recs)
	require.NoError(t, err)
	require.Equal(t, 4, len(pg))
	assert.InDelta(t, 1.2, pg[1].X, 1.e-5)
	assert.InDelta(t, 0.2, pg[1].Y, 1.e-5)
	assert.InDelta(t, 1.2, pg[2].X, 1.e-5)
	assert.InDelta(t, 0.8, pg[2].Y, 1.e-5)
}

func TestEdgeOnlyContactSkipped(t *testing.T) {
	// Element touching the patch along a single edge has a degenerate
	// overlap and is skipped without error.
	c, err := patch.NewCollection([]*patch.Patch{flatPatch(t, 0, 0, 0, nil)}, nil)
	require.NoError(t, err)
	msh, err := mesh.NewCounterpartMesh(
		[]float64{
			1, 0.2, 0, 2, 0.2, 0,
			2, 0.8, 0, 1, 0.8, 0,
		},
		[]int{1, 2, 3, 4},
		[]int{4},
		[]int{1, 2, 3, 4},
	)
	require.NoError(t, err)
	m, err := NewMapper(c, msh, DefaultParams())
	require.NoError(t, err)

	recs := &projectionRecords{perNode: make([]map[int]nodeRecord, 4)}
	recs.put(0, 0, nodeRecord{U: 1, V: 0.2})
	recs.put(3, 0, nodeRecord{U: 1, V: 0.8})
	nodes := m.elemLocalNodes(0)
	pg, err := m.buildElementPolygon(0, 0, nodes, recs)
	require.NoError(t, err)
	assert.Nil(t, pg)
}

func TestMultiPatchSeam(t *testing.T) {
	// Two patches side by side sharing the x=1 seam; the seam control point
	// column shares dof indices.
	left := flatPatch(t, 0, 0, 0, nil)
	right := flatPatch(t, 1, 1, 20, nil)
	// Rewire the right patch's first control point column onto the left
	// patch's last column dofs
	for j := 0; j < 5; j++ {
		right.Net[j*5].DofIndex = j*5 + 4
	}
	// Compact the remaining right-patch dofs into a contiguous range
	for j := 0; j < 5; j++ {
		for i := 1; i < 5; i++ {
			right.Net[j*5+i].DofIndex = 25 + j*4 + i - 1
		}
	}
	c, err := patch.NewCollection([]*patch.Patch{left, right}, nil)
	require.NoError(t, err)
	assert.Equal(t, 45, c.NumDofs())

	// 2x1 element mesh spanning both patches
	msh, err := mesh.NewCounterpartMesh(
		[]float64{
			0, 0, 0, 1, 0, 0, 2, 0, 0,
			0, 1, 0, 1, 1, 0, 2, 1, 0,
		},
		[]int{1, 2, 3, 4, 5, 6},
		[]int{4, 4},
		[]int{1, 2, 5, 4, 2, 3, 6, 5},
	)
	require.NoError(t, err)
	m, err := NewMapper(c, msh, DefaultParams())
	require.NoError(t, err)
	op, err := m.BuildCouplingMatrices()
	require.NoError(t, err)

	source := make([]float64, 45)
	for i := range source {
		source[i] = 3
	}
	out, err := op.ConsistentMapping(source)
	require.NoError(t, err)
	for i, v := range out {
		assert.InDelta(t, 3, v, 1.e-6, "node dof %d", i)
	}

	var sum float64
	op.cnn.M.DoNonZero(func(_, _ int, v float64) {
		sum += v
	})
	assert.InDelta(t, 2, sum, 1.e-8)
}
