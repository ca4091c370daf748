package utils

import "math"

func POW(x float64, n int) (r float64) {
	r = 1
	if n < 0 {
		x = 1 / x
		n = -n
	}
	for i := 0; i < n; i++ {
		r *= x
	}
	return
}

func Dot(a, b []float64) (d float64) {
	for i := range a {
		d += a[i] * b[i]
	}
	return
}

func Cross(a, b []float64) (c [3]float64) {
	c[0] = a[1]*b[2] - a[2]*b[1]
	c[1] = a[2]*b[0] - a[0]*b[2]
	c[2] = a[0]*b[1] - a[1]*b[0]
	return
}

func Norm(a []float64) float64 {
	return math.Sqrt(Dot(a, a))
}

func PointDistance(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}

// AreaTriangle is the area of the triangle spanned by vectors u and v.
func AreaTriangle(ux, uy, uz, vx, vy, vz float64) float64 {
	c := Cross([]float64{ux, uy, uz}, []float64{vx, vy, vz})
	return 0.5 * Norm(c[:])
}

// Solve2x2 solves [a b; c d]*x = rhs, returning ok=false for a near-singular
// system.
func Solve2x2(a, b, c, d, rhs0, rhs1, tol float64) (x0, x1 float64, ok bool) {
	det := a*d - b*c
	if math.Abs(det) < tol {
		return 0, 0, false
	}
	x0 = (rhs0*d - rhs1*b) / det
	x1 = (rhs1*a - rhs0*c) / det
	ok = true
	return
}

// Binomial is the binomial coefficient C(n,k) as a float64.
func Binomial(n, k int) (b float64) {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	b = 1
	for i := 0; i < k; i++ {
		b = b * float64(n-i) / float64(i+1)
	}
	return
}
