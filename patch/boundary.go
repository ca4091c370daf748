package patch

import (
	"math"

	"github.com/structmech/gomortar/utils"
)

// BoundaryParams controls the line-on-boundary projection: Newton-Raphson
// first, bisection as the convergence-guaranteed fallback.
type BoundaryParams struct {
	Newton           NewtonParams
	BisectionMaxIter int
	BisectionTol     float64
}

// BoundaryResult is the intersection of a physical segment with the patch
// boundary. Div is the fraction of the P1->P2 segment lying inside the patch,
// Distance the gap between the boundary point and the segment.
type BoundaryResult struct {
	U, V      float64
	Div       float64
	Distance  float64
	Converged bool
}

// boundaryEdge parametrizes one of the four domain edges by a single scalar.
type boundaryEdge struct {
	fixedU bool // curve runs in v at fixed u, otherwise in u at fixed v
	fixed  float64
	t0, t1 float64
}

func (p *Patch) domainEdges() [4]boundaryEdge {
	u0, u1, v0, v1 := p.Domain()
	return [4]boundaryEdge{
		{fixedU: false, fixed: v0, t0: u0, t1: u1},
		{fixedU: false, fixed: v1, t0: u0, t1: u1},
		{fixedU: true, fixed: u0, t0: v0, t1: v1},
		{fixedU: true, fixed: u1, t0: v0, t1: v1},
	}
}

func (e boundaryEdge) uv(t float64) (u, v float64) {
	if e.fixedU {
		return e.fixed, t
	}
	return t, e.fixed
}

// curveDerivs evaluates the boundary curve point and its first and second
// derivatives with respect to the edge parameter.
func (p *Patch) curveDerivs(e boundaryEdge, t float64) (c, c1, c2 [3]float64) {
	u, v := e.uv(t)
	pos, g1, g2, g11, _, g22 := p.evaluateSecondOrder(u, v)
	c = pos
	if e.fixedU {
		c1, c2 = g2, g22
	} else {
		c1, c2 = g1, g11
	}
	return
}

// ProjectLineOnBoundary finds where the segment P1->P2 leaves the patch
// through its domain boundary. P1 is assumed projectable at (uIn,vIn). The
// four domain edges are tried by Newton-Raphson on the curve parameter and
// the segment fraction; when none converges, bisection on the segment
// fraction brackets the boundary crossing.
func (p *Patch) ProjectLineOnBoundary(P1, P2 [3]float64, uIn, vIn float64, prm BoundaryParams) (res BoundaryResult) {
	res.Distance = math.Inf(1)
	D := [3]float64{P2[0] - P1[0], P2[1] - P1[1], P2[2] - P1[2]}
	for _, e := range p.domainEdges() {
		var t float64
		if e.fixedU {
			t = vIn
		} else {
			t = uIn
		}
		er := p.projectEdgeNewton(e, P1, D, t, prm.Newton)
		if er.Converged && er.Distance < res.Distance {
			res = er
		}
	}
	if res.Converged && res.Div > prm.BisectionTol {
		return
	}
	return p.projectBoundaryBisection(P1, P2, uIn, vIn, prm)
}

func (p *Patch) projectEdgeNewton(e boundaryEdge, P1, D [3]float64, t0 float64, prm NewtonParams) (res BoundaryResult) {
	var (
		t   = math.Min(math.Max(t0, e.t0), e.t1)
		lam = 0.5
		dd  = utils.Dot(D[:], D[:])
	)
	if dd == 0 {
		return
	}
	for iter := 0; iter < prm.MaxIter; iter++ {
		c, c1, c2 := p.curveDerivs(e, t)
		r := [3]float64{
			c[0] - P1[0] - lam*D[0],
			c[1] - P1[1] - lam*D[1],
			c[2] - P1[2] - lam*D[2],
		}
		var (
			f1 = utils.Dot(r[:], c1[:])
			f2 = -utils.Dot(r[:], D[:])
		)
		res.U, res.V = e.uv(t)
		res.Div = lam
		res.Distance = utils.Norm(r[:])
		scale := utils.Norm(c1[:])*math.Sqrt(dd) + dd
		if math.Abs(f1)+math.Abs(f2) < prm.Tol*math.Max(scale, 1) {
			res.Converged = lam > 0 && lam <= 1+prm.Tol
			return
		}
		var (
			j11 = utils.Dot(c1[:], c1[:]) + utils.Dot(r[:], c2[:])
			j12 = -utils.Dot(c1[:], D[:])
			j22 = dd
		)
		dt, dl, ok := utils.Solve2x2(j11, j12, j12, j22, f1, f2, 1.e-14)
		if !ok {
			return
		}
		t -= dt
		lam -= dl
		t = math.Min(math.Max(t, e.t0), e.t1)
		lam = math.Min(math.Max(lam, 0), 1)
	}
	return
}

// projectBoundaryBisection brackets the segment fraction at which interior
// projection stops converging. P1 projects, P2 does not; the limit point lies
// on the patch boundary.
func (p *Patch) projectBoundaryBisection(P1, P2 [3]float64, uIn, vIn float64, prm BoundaryParams) (res BoundaryResult) {
	var (
		lamIn, lamOut = 0.0, 1.0
		u, v          = uIn, vIn
	)
	for iter := 0; iter < prm.BisectionMaxIter && lamOut-lamIn > prm.BisectionTol; iter++ {
		mid := 0.5 * (lamIn + lamOut)
		Pm := [3]float64{
			P1[0] + mid*(P2[0]-P1[0]),
			P1[1] + mid*(P2[1]-P1[1]),
			P1[2] + mid*(P2[2]-P1[2]),
		}
		pr := p.ProjectPoint(Pm, u, v, prm.Newton)
		if pr.Converged {
			lamIn = mid
			u, v = pr.U, pr.V
			res.Distance = pr.Distance
		} else {
			lamOut = mid
		}
	}
	if lamIn == 0 {
		return
	}
	// Snap the limit point onto the nearest domain edge
	u0, u1, v0, v1 := p.Domain()
	du := math.Min(u-u0, u1-u)
	dv := math.Min(v-v0, v1-v)
	if du < dv {
		if u-u0 < u1-u {
			u = u0
		} else {
			u = u1
		}
	} else {
		if v-v0 < v1-v {
			v = v0
		} else {
			v = v1
		}
	}
	res.U, res.V = u, v
	res.Div = lamIn
	res.Converged = true
	return
}
