package nurbs

import (
	"fmt"

	"github.com/structmech/gomortar/utils"
)

// Derivs holds the non-zero surface basis functions and their partial
// derivatives up to a total order. Local functions are ordered u-fastest:
// function j*(p+1)+i couples u-basis i with v-basis j.
type Derivs struct {
	Order    int
	NumFuncs int
	vals     [][]float64
}

func newDerivs(order, numFuncs int) (d Derivs) {
	d = Derivs{
		Order:    order,
		NumFuncs: numFuncs,
		vals:     make([][]float64, (order+1)*(order+1)),
	}
	for k := 0; k <= order; k++ {
		for l := 0; l <= order-k; l++ {
			d.vals[k*(order+1)+l] = make([]float64, numFuncs)
		}
	}
	return
}

// At returns the values of the (du,dv) partial derivative for all local
// functions; du+dv must not exceed Order.
func (d Derivs) At(du, dv int) []float64 {
	if du+dv > d.Order {
		panic(fmt.Errorf("derivative order (%d,%d) exceeds computed order %d", du, dv, d.Order))
	}
	return d.vals[du*(d.Order+1)+dv]
}

// SurfaceBasis is the capability interface shared by the plain B-spline and
// rational variants of the tensor-product surface basis.
type SurfaceBasis interface {
	Degrees() (p, q int)
	NumBasis() (nu, nv int)
	UKnots() KnotVector
	VKnots() KnotVector
	FindSpan(u, v float64) (spanU, spanV int)
	// LocalNetIndices maps local function ordering to control net indices
	// (vIdx*nu + uIdx) for the given spans.
	LocalNetIndices(spanU, spanV int) []int
	Evaluate(spanU, spanV int, u, v float64) []float64
	EvaluateWithDerivatives(spanU, spanV int, u, v float64, order int) Derivs
}

// BSplineBasis2D is the tensor product of two univariate B-spline bases.
type BSplineBasis2D struct {
	U, V Basis1D
}

func NewBSplineBasis2D(pDegree int, uKnots KnotVector, qDegree int, vKnots KnotVector) (b BSplineBasis2D, err error) {
	if b.U, err = NewBasis1D(pDegree, uKnots); err != nil {
		return
	}
	b.V, err = NewBasis1D(qDegree, vKnots)
	return
}

func (b BSplineBasis2D) Degrees() (p, q int)  { return b.U.P, b.V.P }
func (b BSplineBasis2D) NumBasis() (nu, nv int) {
	return b.U.NumBasis(), b.V.NumBasis()
}
func (b BSplineBasis2D) UKnots() KnotVector { return b.U.Knots }
func (b BSplineBasis2D) VKnots() KnotVector { return b.V.Knots }

func (b BSplineBasis2D) FindSpan(u, v float64) (spanU, spanV int) {
	spanU = b.U.FindSpan(u)
	spanV = b.V.FindSpan(v)
	return
}

func (b BSplineBasis2D) LocalNetIndices(spanU, spanV int) (idx []int) {
	var (
		p, q  = b.Degrees()
		nu, _ = b.NumBasis()
	)
	idx = make([]int, (p+1)*(q+1))
	var counter int
	for j := 0; j <= q; j++ {
		for i := 0; i <= p; i++ {
			uIdx := spanU - p + i
			vIdx := spanV - q + j
			idx[counter] = vIdx*nu + uIdx
			counter++
		}
	}
	return
}

func (b BSplineBasis2D) Evaluate(spanU, spanV int, u, v float64) (N []float64) {
	var (
		p, q = b.Degrees()
		Nu   = b.U.BasisFuns(spanU, u)
		Nv   = b.V.BasisFuns(spanV, v)
	)
	N = make([]float64, (p+1)*(q+1))
	var counter int
	for j := 0; j <= q; j++ {
		for i := 0; i <= p; i++ {
			N[counter] = Nu[i] * Nv[j]
			counter++
		}
	}
	return
}

func (b BSplineBasis2D) EvaluateWithDerivatives(spanU, spanV int, u, v float64, order int) (d Derivs) {
	var (
		p, q = b.Degrees()
		dU   = b.U.DersBasisFuns(spanU, u, order)
		dV   = b.V.DersBasisFuns(spanV, v, order)
	)
	d = newDerivs(order, (p+1)*(q+1))
	for k := 0; k <= order; k++ {
		for l := 0; l <= order-k; l++ {
			vals := d.At(k, l)
			ku, lv := k, l
			if ku > p {
				ku = -1 // derivative beyond degree is zero
			}
			if lv > q {
				lv = -1
			}
			var counter int
			for j := 0; j <= q; j++ {
				for i := 0; i <= p; i++ {
					if ku < 0 || lv < 0 {
						vals[counter] = 0
					} else {
						vals[counter] = dU[ku][i] * dV[lv][j]
					}
					counter++
				}
			}
		}
	}
	return
}

// NurbsBasis2D is the rational variant: every tensor-product function is
// weighted and normalized by the denominator function W(u,v).
type NurbsBasis2D struct {
	BSplineBasis2D
	// Weights of the control net, indexed vIdx*nu + uIdx.
	Weights []float64
}

func NewNurbsBasis2D(pDegree int, uKnots KnotVector, qDegree int, vKnots KnotVector, weights []float64) (b NurbsBasis2D, err error) {
	var bs BSplineBasis2D
	if bs, err = NewBSplineBasis2D(pDegree, uKnots, qDegree, vKnots); err != nil {
		return
	}
	nu, nv := bs.NumBasis()
	if len(weights) != nu*nv {
		err = fmt.Errorf("control point weights (%d) do not match basis size %dx%d", len(weights), nu, nv)
		return
	}
	b = NurbsBasis2D{BSplineBasis2D: bs, Weights: weights}
	return
}

func (b NurbsBasis2D) localWeights(spanU, spanV int) (w []float64) {
	idx := b.LocalNetIndices(spanU, spanV)
	w = make([]float64, len(idx))
	for i, id := range idx {
		w[i] = b.Weights[id]
	}
	return
}

func (b NurbsBasis2D) Evaluate(spanU, spanV int, u, v float64) (R []float64) {
	var (
		w   = b.localWeights(spanU, spanV)
		sum float64
	)
	R = b.BSplineBasis2D.Evaluate(spanU, spanV, u, v)
	for i := range R {
		R[i] *= w[i]
		sum += R[i]
	}
	if sum == 0 {
		panic("degenerate NURBS denominator function")
	}
	for i := range R {
		R[i] /= sum
	}
	return
}

// EvaluateWithDerivatives computes the rational basis functions and their
// derivatives by the quotient (Leibniz) rule applied to the weighted
// B-spline numerator and the denominator function W(u,v). Reference: Piegl &
// Tiller, The NURBS Book, eq. 4.20 extended to surfaces.
func (b NurbsBasis2D) EvaluateWithDerivatives(spanU, spanV int, u, v float64, order int) (d Derivs) {
	var (
		w  = b.localWeights(spanU, spanV)
		bs = b.BSplineBasis2D.EvaluateWithDerivatives(spanU, spanV, u, v, order)
		n  = bs.NumFuncs
		// wders[k][l] is the (k,l) partial of the denominator function
		wders = make([][]float64, order+1)
	)
	for k := 0; k <= order; k++ {
		wders[k] = make([]float64, order+1)
		for l := 0; l <= order-k; l++ {
			vals := bs.At(k, l)
			for i := 0; i < n; i++ {
				wders[k][l] += vals[i] * w[i]
			}
		}
	}
	if wders[0][0] == 0 {
		panic("degenerate NURBS denominator function")
	}

	d = newDerivs(order, n)
	for k := 0; k <= order; k++ {
		for l := 0; l <= order-k; l++ {
			numer := bs.At(k, l)
			out := d.At(k, l)
			for fn := 0; fn < n; fn++ {
				val := numer[fn] * w[fn]
				for i := 1; i <= k; i++ {
					val -= utils.Binomial(k, i) * wders[i][0] * d.At(k-i, l)[fn]
				}
				for j := 1; j <= l; j++ {
					val -= utils.Binomial(l, j) * wders[0][j] * d.At(k, l-j)[fn]
				}
				for i := 1; i <= k; i++ {
					var v2 float64
					for j := 1; j <= l; j++ {
						v2 += utils.Binomial(l, j) * wders[i][j] * d.At(k-i, l-j)[fn]
					}
					val -= utils.Binomial(k, i) * v2
				}
				out[fn] = val / wders[0][0]
			}
		}
	}
	return
}
