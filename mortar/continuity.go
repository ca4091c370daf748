package mortar

import (
	"fmt"
	"math"

	"github.com/structmech/gomortar/patch"
	"github.com/structmech/gomortar/quadrature"
	"github.com/structmech/gomortar/utils"
)

// curveGaussData holds the precomputed Gauss point evaluations of one side
// of a continuity condition.
type curveGaussData struct {
	dofs   [][]int
	vals   [][]float64
	nvals  [][]float64 // cross-curve directional derivative values
	jac    []float64   // physical curve length scale per point
	coords [][3]float64
}

// applyContinuityPenalties adds the weak displacement (and optionally
// rotation) coupling terms along every shared patch interface into Cnn.
// Only meaningful when the control points own the target side.
func (m *Mapper) applyContinuityPenalties(op *CouplingOperator) {
	x, w, err := quadrature.GaussLegendre1D(m.params.NumGPContinuity)
	if err != nil {
		panic(err)
	}
	for ci, cc := range m.collection.Conditions {
		var (
			master = m.sampleCurve(m.collection.Patches[cc.MasterPatch], cc.MasterFrom, cc.MasterTo, x)
			slave  = m.sampleCurve(m.collection.Patches[cc.SlavePatch], cc.SlaveFrom, cc.SlaveTo, x)
		)
		alphaPrim, alphaSec := m.penaltyFactors(master)
		fmt.Printf("continuity condition %d: displacement penalty %.3g, rotation penalty %.3g\n",
			ci, alphaPrim, alphaSec)
		for g := range x {
			// Gauss weight on [-1,1] maps to the curve with half-length
			// absorbed in the jacobian
			measure := 0.5 * w[g] * master.jac[g]
			addJumpPenalty(op.Cnn, master.dofs[g], master.vals[g], slave.dofs[g], slave.vals[g],
				alphaPrim*measure)
			if m.params.EnforceRotPenalty {
				addJumpPenalty(op.Cnn, master.dofs[g], master.nvals[g], slave.dofs[g], slave.nvals[g],
					alphaSec*measure)
			}
		}
	}
}

// sampleCurve evaluates one patch's basis along the parametric segment at
// the mapped Gauss locations.
func (m *Mapper) sampleCurve(p *patch.Patch, from, to [2]float64, x []float64) (d curveGaussData) {
	var (
		n  = len(x)
		du = to[0] - from[0]
		dv = to[1] - from[1]
	)
	d = curveGaussData{
		dofs:   make([][]int, n),
		vals:   make([][]float64, n),
		nvals:  make([][]float64, n),
		jac:    make([]float64, n),
		coords: make([][3]float64, n),
	}
	for g, xg := range x {
		var (
			t = 0.5 * (xg + 1)
			u = from[0] + t*du
			v = from[1] + t*dv
		)
		p.ClampIntoDomain(&u, &v)
		var (
			su, sv = p.Basis.FindSpan(u, v)
			der    = p.Basis.EvaluateWithDerivatives(su, sv, u, v, 1)
			idx    = p.Basis.LocalNetIndices(su, sv)
			N      = der.At(0, 0)
			Nu     = der.At(1, 0)
			Nv     = der.At(0, 1)
		)
		dofs := make([]int, len(idx))
		for i, id := range idx {
			dofs[i] = p.Net[id].DofIndex
		}
		pos, g1, g2 := p.BaseVectorsAtSpan(su, sv, u, v)
		// Physical tangent along the curve and its in-plane normal
		tan := [3]float64{
			g1[0]*du + g2[0]*dv,
			g1[1]*du + g2[1]*dv,
			g1[2]*du + g2[2]*dv,
		}
		d.jac[g] = utils.Norm(tan[:])
		// Parametric normal direction (-dv, du), normalized
		nn := math.Hypot(du, dv)
		var nu, nv2 float64
		if nn > 0 {
			nu, nv2 = -dv/nn, du/nn
		}
		nvals := make([]float64, len(N))
		for i := range N {
			nvals[i] = Nu[i]*nu + Nv[i]*nv2
		}
		vals := make([]float64, len(N))
		copy(vals, N)
		d.dofs[g] = dofs
		d.vals[g] = vals
		d.nvals[g] = nvals
		d.coords[g] = pos
	}
	return
}

// penaltyFactors returns the displacement and rotation penalties, either the
// configured values or the automatic ones derived from the smallest Gauss
// point spacing along the master curve.
func (m *Mapper) penaltyFactors(master curveGaussData) (alphaPrim, alphaSec float64) {
	if !m.params.AutoPenalty {
		return m.params.DispPenalty, m.params.RotPenalty
	}
	minSpacing := math.Inf(1)
	for g := 1; g < len(master.coords); g++ {
		d := utils.PointDistance(master.coords[g][:], master.coords[g-1][:])
		if d > 0 && d < minSpacing {
			minSpacing = d
		}
	}
	if math.IsInf(minSpacing, 1) {
		minSpacing = 1
	}
	alphaPrim = 1 / minSpacing
	alphaSec = 1 / math.Sqrt(minSpacing)
	return
}

// addJumpPenalty accumulates alpha * (phi_m - phi_s)(phi_m - phi_s)^T over
// the combined dof set.
func addJumpPenalty(cnn utils.DOK, mDofs []int, mVals []float64, sDofs []int, sVals []float64, alpha float64) {
	if alpha == 0 {
		return
	}
	var (
		dofs = make([]int, 0, len(mDofs)+len(sDofs))
		vals = make([]float64, 0, len(mVals)+len(sVals))
	)
	dofs = append(dofs, mDofs...)
	vals = append(vals, mVals...)
	for i, d := range sDofs {
		dofs = append(dofs, d)
		vals = append(vals, -sVals[i])
	}
	for i := range dofs {
		for j := range dofs {
			cnn.Accumulate(dofs[i], dofs[j], alpha*vals[i]*vals[j])
		}
	}
}
