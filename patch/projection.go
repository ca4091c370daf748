package patch

import (
	"math"

	"github.com/structmech/gomortar/utils"
)

// NewtonParams controls the iterative point projection.
type NewtonParams struct {
	MaxIter int
	Tol     float64
}

// ProjectionResult carries the outcome of a point projection. Converged means
// the orthogonality conditions were met; ResidualConverged means the iterate
// stopped moving (typically clamped at the domain boundary) without meeting
// them. U,V are always clamped into the patch domain.
type ProjectionResult struct {
	U, V              float64
	Distance          float64
	Converged         bool
	ResidualConverged bool
}

// ProjectPoint refines an initial guess (u0,v0) towards the closest-point
// projection of P by Newton-Raphson on the orthogonality conditions
// (S(u,v)-P) . G1 = 0, (S(u,v)-P) . G2 = 0.
func (p *Patch) ProjectPoint(P [3]float64, u0, v0 float64, prm NewtonParams) (res ProjectionResult) {
	var (
		u, v = u0, v0
	)
	p.ClampIntoDomain(&u, &v)
	for iter := 0; iter < prm.MaxIter; iter++ {
		pos, g1, g2, g11, g12, g22 := p.evaluateSecondOrder(u, v)
		r := [3]float64{pos[0] - P[0], pos[1] - P[1], pos[2] - P[2]}
		var (
			dist = utils.Norm(r[:])
			f1   = utils.Dot(r[:], g1[:])
			f2   = utils.Dot(r[:], g2[:])
			n1   = utils.Norm(g1[:])
			n2   = utils.Norm(g2[:])
		)
		res.U, res.V, res.Distance = u, v, dist
		if dist < prm.Tol {
			res.Converged = true
			return
		}
		// Orthogonality test on direction cosines, scale-independent
		if math.Abs(f1) < prm.Tol*dist*n1 && math.Abs(f2) < prm.Tol*dist*n2 {
			res.Converged = true
			return
		}
		var (
			j11 = utils.Dot(g1[:], g1[:]) + utils.Dot(r[:], g11[:])
			j12 = utils.Dot(g1[:], g2[:]) + utils.Dot(r[:], g12[:])
			j22 = utils.Dot(g2[:], g2[:]) + utils.Dot(r[:], g22[:])
		)
		du, dv, ok := utils.Solve2x2(j11, j12, j12, j22, f1, f2, 1.e-14)
		if !ok {
			return
		}
		u -= du
		v -= dv
		p.ClampIntoDomain(&u, &v)
		if math.Abs(u-res.U) < prm.Tol*1.e-2 && math.Abs(v-res.V) < prm.Tol*1.e-2 {
			res.U, res.V = u, v
			res.ResidualConverged = true
			return
		}
	}
	return
}

// GridInitialGuess samples the patch on an n x n parameter grid and returns
// the sample closest to P.
func (p *Patch) GridInitialGuess(P [3]float64, n int) (u, v float64) {
	if n < 2 {
		n = 2
	}
	var (
		u0, u1, v0, v1 = p.Domain()
		best           = math.Inf(1)
	)
	for j := 0; j < n; j++ {
		vj := v0 + (v1-v0)*float64(j)/float64(n-1)
		for i := 0; i < n; i++ {
			ui := u0 + (u1-u0)*float64(i)/float64(n-1)
			pos := p.EvaluatePoint(ui, vj)
			d := utils.PointDistance(pos[:], P[:])
			if d < best {
				best, u, v = d, ui, vj
			}
		}
	}
	return
}

// ForceProject performs a dense grid-search projection without any
// convergence requirement, then polishes the winner with a few Newton steps.
// Used as the last resort of the second projection pass.
func (p *Patch) ForceProject(P [3]float64, n int, prm NewtonParams) (res ProjectionResult) {
	u, v := p.GridInitialGuess(P, n)
	res = p.ProjectPoint(P, u, v, prm)
	if !res.Converged && !res.ResidualConverged {
		// Keep the grid winner when Newton wandered off
		pos := p.EvaluatePoint(u, v)
		d := utils.PointDistance(pos[:], P[:])
		if d < res.Distance {
			res.U, res.V, res.Distance = u, v, d
		}
	}
	return
}
