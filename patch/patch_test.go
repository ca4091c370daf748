package patch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/structmech/gomortar/nurbs"
	"github.com/structmech/gomortar/utils"
)

// newFlatPatch builds a degree-2 patch over the unit square with a 5x5
// control net placed at the Greville abscissae. Linear precision then makes
// the surface the identity map S(u,v) = (u,v,0).
func newFlatPatch(t *testing.T) *Patch {
	t.Helper()
	var (
		kv = nurbs.KnotVector{0, 0, 0, 1. / 3., 2. / 3., 1, 1, 1}
		p  = 2
	)
	net := make([]ControlPoint, 0, 25)
	for j := 0; j < 5; j++ {
		for i := 0; i < 5; i++ {
			net = append(net, ControlPoint{
				X:        kv.GrevilleAbscissa(p, i),
				Y:        kv.GrevilleAbscissa(p, j),
				W:        1,
				DofIndex: j*5 + i,
			})
		}
	}
	pp, err := NewPatch(0, p, kv, p, kv, net, nil)
	require.NoError(t, err)
	return pp
}

func TestFlatPatchEvaluation(t *testing.T) {
	p := newFlatPatch(t)
	for _, uv := range [][2]float64{{0, 0}, {0.2, 0.7}, {0.5, 0.5}, {1, 1}} {
		pos := p.EvaluatePoint(uv[0], uv[1])
		assert.InDelta(t, uv[0], pos[0], 1.e-12)
		assert.InDelta(t, uv[1], pos[1], 1.e-12)
		assert.InDelta(t, 0, pos[2], 1.e-12)
	}
	_, g1, g2 := p.EvaluateWithBaseVectors(0.3, 0.6)
	assert.InDelta(t, 1, g1[0], 1.e-12)
	assert.InDelta(t, 0, g1[1], 1.e-12)
	assert.InDelta(t, 0, g2[0], 1.e-12)
	assert.InDelta(t, 1, g2[1], 1.e-12)
}

func TestGrevilleProximity(t *testing.T) {
	p := newFlatPatch(t)
	var (
		uKnots = p.Basis.UKnots()
		vKnots = p.Basis.VKnots()
		deg, _ = p.Basis.Degrees()
		nu, _  = p.Basis.NumBasis()
	)
	for j := 0; j < 5; j++ {
		for i := 0; i < 5; i++ {
			var (
				gu = uKnots.GrevilleAbscissa(deg, i)
				gv = vKnots.GrevilleAbscissa(deg, j)
				cp = p.Net[j*nu+i]
			)
			pos := p.EvaluatePoint(gu, gv)
			d := utils.PointDistance(pos[:], []float64{cp.X, cp.Y, cp.Z})
			assert.True(t, d < 0.1, "control point (%d,%d): distance %v", i, j, d)
		}
	}
}

func TestProjectPointRoundTrip(t *testing.T) {
	p := newFlatPatch(t)
	prm := NewtonParams{MaxIter: 20, Tol: 1.e-9}
	for _, uv := range [][2]float64{{0.3, 0.4}, {0.71, 0.12}, {0.5, 0.5}} {
		pos := p.EvaluatePoint(uv[0], uv[1])
		res := p.ProjectPoint(pos, 0.5, 0.5, prm)
		assert.True(t, res.Converged)
		assert.InDelta(t, uv[0], res.U, 1.e-6)
		assert.InDelta(t, uv[1], res.V, 1.e-6)
		assert.True(t, res.Distance < 1.e-6)
	}
}

func TestProjectPointOffSurface(t *testing.T) {
	p := newFlatPatch(t)
	prm := NewtonParams{MaxIter: 20, Tol: 1.e-9}
	res := p.ProjectPoint([3]float64{0.4, 0.6, 0.5}, 0.5, 0.5, prm)
	assert.True(t, res.Converged)
	assert.InDelta(t, 0.4, res.U, 1.e-6)
	assert.InDelta(t, 0.6, res.V, 1.e-6)
	assert.InDelta(t, 0.5, res.Distance, 1.e-6)
}

func TestGridInitialGuess(t *testing.T) {
	p := newFlatPatch(t)
	u, v := p.GridInitialGuess([3]float64{0.26, 0.74, 0}, 11)
	assert.InDelta(t, 0.3, u, 0.11)
	assert.InDelta(t, 0.7, v, 0.11)
}

func TestForceProject(t *testing.T) {
	p := newFlatPatch(t)
	res := p.ForceProject([3]float64{0.8, 0.1, 0.02}, 50, NewtonParams{MaxIter: 20, Tol: 1.e-9})
	assert.InDelta(t, 0.8, res.U, 1.e-4)
	assert.InDelta(t, 0.1, res.V, 1.e-4)
}

func TestBoundingBoxMembership(t *testing.T) {
	p := newFlatPatch(t)
	box := p.Box()
	assert.True(t, box.ContainsExpanded([3]float64{0.5, 0.5, 0}, 0))
	assert.True(t, box.ContainsExpanded([3]float64{1.05, 0.5, 0}, 0.1))
	assert.False(t, box.ContainsExpanded([3]float64{2, 0.5, 0}, 0.1))
}

func TestProjectLineOnBoundary(t *testing.T) {
	p := newFlatPatch(t)
	prm := BoundaryParams{
		Newton:           NewtonParams{MaxIter: 40, Tol: 1.e-9},
		BisectionMaxIter: 100,
		BisectionTol:     1.e-9,
	}
	// Segment from inside the patch to beyond the u=1 edge, at y=0.5
	var (
		P1 = [3]float64{0.5, 0.5, 0}
		P2 = [3]float64{1.5, 0.5, 0}
	)
	res := p.ProjectLineOnBoundary(P1, P2, 0.5, 0.5, prm)
	require.True(t, res.Converged)
	assert.InDelta(t, 1, res.U, 1.e-6)
	assert.InDelta(t, 0.5, res.V, 1.e-6)
	assert.InDelta(t, 0.5, res.Div, 1.e-6)
	assert.True(t, res.Distance < 1.e-6)
}

func TestProjectLineOnBoundaryOblique(t *testing.T) {
	p := newFlatPatch(t)
	prm := BoundaryParams{
		Newton:           NewtonParams{MaxIter: 40, Tol: 1.e-9},
		BisectionMaxIter: 100,
		BisectionTol:     1.e-9,
	}
	// Crosses the v=0 edge at x=0.6
	var (
		P1 = [3]float64{0.4, 0.4, 0}
		P2 = [3]float64{0.8, -0.4, 0}
	)
	res := p.ProjectLineOnBoundary(P1, P2, 0.4, 0.4, prm)
	require.True(t, res.Converged)
	assert.InDelta(t, 0.6, res.U, 1.e-5)
	assert.InDelta(t, 0, res.V, 1.e-5)
	assert.InDelta(t, 0.5, res.Div, 1.e-5)
}

func TestCollection(t *testing.T) {
	p := newFlatPatch(t)
	c, err := NewCollection([]*Patch{p}, nil)
	require.NoError(t, err)
	assert.Equal(t, 25, c.NumDofs())
	assert.Equal(t, []int{0}, c.CandidatePatches([3]float64{0.5, 0.5, 0.05}, 0.1))
	assert.Empty(t, c.CandidatePatches([3]float64{5, 5, 5}, 0.1))
}

func TestCollectionBadDofs(t *testing.T) {
	var (
		kv  = nurbs.KnotVector{0, 0, 1, 1}
		net = []ControlPoint{
			{X: 0, W: 1, DofIndex: 0}, {X: 1, W: 1, DofIndex: 2},
			{Y: 1, W: 1, DofIndex: 3}, {X: 1, Y: 1, W: 1, DofIndex: 4},
		}
	)
	p, err := NewPatch(0, 1, kv, 1, kv, net, nil)
	require.NoError(t, err)
	_, err = NewCollection([]*Patch{p}, nil)
	assert.Error(t, err)
}

func TestClampIntoDomain(t *testing.T) {
	p := newFlatPatch(t)
	u, v := -0.1, 1.2
	p.ClampIntoDomain(&u, &v)
	assert.Equal(t, 0., u)
	assert.Equal(t, 1., v)
	assert.False(t, math.Signbit(u))
}
