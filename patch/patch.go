package patch

import (
	"fmt"
	"math"

	"github.com/structmech/gomortar/nurbs"
)

// ControlPoint is one weighted point of a patch's control net with its global
// degree of freedom index.
type ControlPoint struct {
	X, Y, Z  float64
	W        float64
	DofIndex int
}

// TrimmingLoop is a closed polyline in (u,v) parameter space. Outer loops run
// counter-clockwise, holes clockwise (positive fill convention).
type TrimmingLoop struct {
	Vertices [][2]float64
}

// Patch is one trimmed parametric surface. It is read-only after
// construction.
type Patch struct {
	ID    int
	Basis nurbs.SurfaceBasis
	// Net is indexed vIdx*nu + uIdx, matching the basis ordering.
	Net   []ControlPoint
	Loops []TrimmingLoop

	box BoundingBox
}

// NewPatch builds a patch over the given control net. Nets with unit weights
// get the plain B-spline basis, anything else the rational one.
func NewPatch(id, pDegree int, uKnots nurbs.KnotVector, qDegree int, vKnots nurbs.KnotVector,
	net []ControlPoint, loops []TrimmingLoop) (p *Patch, err error) {
	var (
		basis    nurbs.SurfaceBasis
		rational bool
	)
	for _, cp := range net {
		if cp.W != 1 {
			rational = true
			break
		}
	}
	if rational {
		weights := make([]float64, len(net))
		for i, cp := range net {
			weights[i] = cp.W
		}
		basis, err = nurbs.NewNurbsBasis2D(pDegree, uKnots, qDegree, vKnots, weights)
	} else {
		basis, err = nurbs.NewBSplineBasis2D(pDegree, uKnots, qDegree, vKnots)
	}
	if err != nil {
		return
	}
	nu, nv := basis.NumBasis()
	if len(net) != nu*nv {
		err = fmt.Errorf("patch %d: control net size %d does not match basis %dx%d", id, len(net), nu, nv)
		return
	}
	p = &Patch{ID: id, Basis: basis, Net: net, Loops: loops}
	p.box = controlNetBox(net)
	return
}

// IsTrimmed reports whether the patch carries trimming loops beyond the
// rectangular domain.
func (p *Patch) IsTrimmed() bool { return len(p.Loops) > 0 }

// Domain returns the parametric bounds [u0,u1] x [v0,v1].
func (p *Patch) Domain() (u0, u1, v0, v1 float64) {
	u0, u1 = p.Basis.UKnots().First(), p.Basis.UKnots().Last()
	v0, v1 = p.Basis.VKnots().First(), p.Basis.VKnots().Last()
	return
}

// ClampIntoDomain pulls (u,v) into the parametric bounds.
func (p *Patch) ClampIntoDomain(u, v *float64) {
	p.Basis.UKnots().Clamp(u, nurbs.KnotTol)
	p.Basis.VKnots().Clamp(v, nurbs.KnotTol)
}

// EvaluatePoint computes the Cartesian surface point at (u,v).
func (p *Patch) EvaluatePoint(u, v float64) (pos [3]float64) {
	var (
		su, sv = p.Basis.FindSpan(u, v)
		N      = p.Basis.Evaluate(su, sv, u, v)
		idx    = p.Basis.LocalNetIndices(su, sv)
	)
	for i, id := range idx {
		cp := p.Net[id]
		pos[0] += N[i] * cp.X
		pos[1] += N[i] * cp.Y
		pos[2] += N[i] * cp.Z
	}
	return
}

// EvaluateWithBaseVectors computes the surface point and the two tangent base
// vectors G1 = dS/du, G2 = dS/dv at (u,v).
func (p *Patch) EvaluateWithBaseVectors(u, v float64) (pos, g1, g2 [3]float64) {
	var (
		su, sv = p.Basis.FindSpan(u, v)
		d      = p.Basis.EvaluateWithDerivatives(su, sv, u, v, 1)
		idx    = p.Basis.LocalNetIndices(su, sv)
		N      = d.At(0, 0)
		Nu     = d.At(1, 0)
		Nv     = d.At(0, 1)
	)
	for i, id := range idx {
		cp := p.Net[id]
		pos[0] += N[i] * cp.X
		pos[1] += N[i] * cp.Y
		pos[2] += N[i] * cp.Z
		g1[0] += Nu[i] * cp.X
		g1[1] += Nu[i] * cp.Y
		g1[2] += Nu[i] * cp.Z
		g2[0] += Nv[i] * cp.X
		g2[1] += Nv[i] * cp.Y
		g2[2] += Nv[i] * cp.Z
	}
	return
}

// BaseVectorsAtSpan evaluates point and tangents with the containing knot
// spans already known, as during span-tagged fragment integration.
func (p *Patch) BaseVectorsAtSpan(spanU, spanV int, u, v float64) (pos, g1, g2 [3]float64) {
	var (
		d   = p.Basis.EvaluateWithDerivatives(spanU, spanV, u, v, 1)
		idx = p.Basis.LocalNetIndices(spanU, spanV)
		N   = d.At(0, 0)
		Nu  = d.At(1, 0)
		Nv  = d.At(0, 1)
	)
	for i, id := range idx {
		cp := p.Net[id]
		pos[0] += N[i] * cp.X
		pos[1] += N[i] * cp.Y
		pos[2] += N[i] * cp.Z
		g1[0] += Nu[i] * cp.X
		g1[1] += Nu[i] * cp.Y
		g1[2] += Nu[i] * cp.Z
		g2[0] += Nv[i] * cp.X
		g2[1] += Nv[i] * cp.Y
		g2[2] += Nv[i] * cp.Z
	}
	return
}

// evaluateSecondOrder computes the surface point, tangents and second
// derivatives needed by the projection Jacobian.
func (p *Patch) evaluateSecondOrder(u, v float64) (pos, g1, g2, g11, g12, g22 [3]float64) {
	var (
		su, sv = p.Basis.FindSpan(u, v)
		d      = p.Basis.EvaluateWithDerivatives(su, sv, u, v, 2)
		idx    = p.Basis.LocalNetIndices(su, sv)
	)
	accumulate := func(vals []float64, out *[3]float64) {
		for i, id := range idx {
			cp := p.Net[id]
			out[0] += vals[i] * cp.X
			out[1] += vals[i] * cp.Y
			out[2] += vals[i] * cp.Z
		}
	}
	accumulate(d.At(0, 0), &pos)
	accumulate(d.At(1, 0), &g1)
	accumulate(d.At(0, 1), &g2)
	accumulate(d.At(2, 0), &g11)
	accumulate(d.At(1, 1), &g12)
	accumulate(d.At(0, 2), &g22)
	return
}

// BoundingBox is the axis-aligned box of a control net. The convex hull
// property guarantees the surface lies inside it.
type BoundingBox struct {
	Min, Max [3]float64
}

func controlNetBox(net []ControlPoint) (b BoundingBox) {
	for i := range b.Min {
		b.Min[i] = math.Inf(1)
		b.Max[i] = math.Inf(-1)
	}
	for _, cp := range net {
		pt := [3]float64{cp.X, cp.Y, cp.Z}
		for i := range pt {
			b.Min[i] = math.Min(b.Min[i], pt[i])
			b.Max[i] = math.Max(b.Max[i], pt[i])
		}
	}
	return
}

// Box returns the control net bounding box.
func (p *Patch) Box() BoundingBox { return p.box }

// ContainsExpanded reports whether pt lies inside the box expanded by tol in
// every direction. Used to prune projection candidates cheaply.
func (b BoundingBox) ContainsExpanded(pt [3]float64, tol float64) bool {
	for i := range pt {
		if pt[i] < b.Min[i]-tol || pt[i] > b.Max[i]+tol {
			return false
		}
	}
	return true
}
