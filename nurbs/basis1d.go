package nurbs

// Basis1D is a univariate B-spline basis of a fixed degree over a knot
// vector.
type Basis1D struct {
	P     int
	Knots KnotVector
}

func NewBasis1D(degree int, knots KnotVector) (b Basis1D, err error) {
	if err = knots.Validate(degree); err != nil {
		return
	}
	b = Basis1D{P: degree, Knots: knots}
	return
}

func (b Basis1D) NumBasis() int { return b.Knots.NumBasis(b.P) }

func (b Basis1D) FindSpan(u float64) int { return b.Knots.FindSpan(b.P, u) }

// BasisFuns evaluates the P+1 non-zero basis functions at u inside the given
// span (The NURBS Book, algorithm A2.2).
func (b Basis1D) BasisFuns(span int, u float64) (N []float64) {
	var (
		p     = b.P
		kv    = b.Knots
		left  = make([]float64, p+1)
		right = make([]float64, p+1)
	)
	N = make([]float64, p+1)
	N[0] = 1
	for j := 1; j <= p; j++ {
		left[j] = u - kv[span+1-j]
		right[j] = kv[span+j] - u
		var saved float64
		for r := 0; r < j; r++ {
			temp := N[r] / (right[r+1] + left[j-r])
			N[r] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		N[j] = saved
	}
	return
}

// DersBasisFuns evaluates the non-zero basis functions and their derivatives
// up to order n at u inside the given span (The NURBS Book, algorithm A2.3).
// The result is indexed ders[k][j] for the k-th derivative of local function
// j.
func (b Basis1D) DersBasisFuns(span int, u float64, n int) (ders [][]float64) {
	var (
		p     = b.P
		kv    = b.Knots
		left  = make([]float64, p+1)
		right = make([]float64, p+1)
		ndu   = make([][]float64, p+1)
		a     = [2][]float64{make([]float64, p+1), make([]float64, p+1)}
	)
	if n > p {
		n = p // higher derivatives are identically zero, handled below
	}
	for i := range ndu {
		ndu[i] = make([]float64, p+1)
	}
	ndu[0][0] = 1
	for j := 1; j <= p; j++ {
		left[j] = u - kv[span+1-j]
		right[j] = kv[span+j] - u
		var saved float64
		for r := 0; r < j; r++ {
			// Lower triangle: knot differences
			ndu[j][r] = right[r+1] + left[j-r]
			temp := ndu[r][j-1] / ndu[j][r]
			// Upper triangle: basis function values
			ndu[r][j] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		ndu[j][j] = saved
	}

	ders = make([][]float64, n+1)
	for k := range ders {
		ders[k] = make([]float64, p+1)
	}
	for j := 0; j <= p; j++ {
		ders[0][j] = ndu[j][p]
	}
	for r := 0; r <= p; r++ {
		s1, s2 := 0, 1
		a[0][0] = 1
		for k := 1; k <= n; k++ {
			var d float64
			rk, pk := r-k, p-k
			if r >= k {
				a[s2][0] = a[s1][0] / ndu[pk+1][rk]
				d = a[s2][0] * ndu[rk][pk]
			}
			j1 := 1
			if rk < -1 {
				j1 = -rk
			}
			j2 := k - 1
			if r-1 > pk {
				j2 = p - r
			}
			for j := j1; j <= j2; j++ {
				a[s2][j] = (a[s1][j] - a[s1][j-1]) / ndu[pk+1][rk+j]
				d += a[s2][j] * ndu[rk+j][pk]
			}
			if r <= pk {
				a[s2][k] = -a[s1][k-1] / ndu[pk+1][r]
				d += a[s2][k] * ndu[r][pk]
			}
			ders[k][r] = d
			s1, s2 = s2, s1
		}
	}
	// Multiply through by the correct factors p!/(p-k)!
	fac := float64(p)
	for k := 1; k <= n; k++ {
		for j := 0; j <= p; j++ {
			ders[k][j] *= fac
		}
		fac *= float64(p - k)
	}
	return
}
