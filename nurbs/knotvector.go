package nurbs

import (
	"fmt"
	"math"
)

// KnotTol is the tolerance for accepting a parameter just outside the knot
// vector bounds as interior.
const KnotTol = 1.e-9

// KnotVector is a non-decreasing sequence of parameter breakpoints.
type KnotVector []float64

func (kv KnotVector) First() float64 { return kv[0] }
func (kv KnotVector) Last() float64  { return kv[len(kv)-1] }

// NumBasis is the number of basis functions supported by the vector for the
// given polynomial degree.
func (kv KnotVector) NumBasis(degree int) int {
	return len(kv) - degree - 1
}

// Validate checks monotonicity and the minimum length for the degree.
func (kv KnotVector) Validate(degree int) error {
	if len(kv) < 2*(degree+1) {
		return fmt.Errorf("knot vector of length %d too short for degree %d", len(kv), degree)
	}
	for i := 1; i < len(kv); i++ {
		if kv[i] < kv[i-1] {
			return fmt.Errorf("knot vector not non-decreasing at index %d", i)
		}
	}
	return nil
}

// Clamp pulls u into the knot vector bounds. It reports whether u was inside
// or within tol of the bounds.
func (kv KnotVector) Clamp(u *float64, tol float64) bool {
	var (
		lo = kv.First()
		hi = kv.Last()
	)
	if *u < lo {
		inside := lo-*u < tol
		*u = lo
		return inside
	}
	if *u > hi {
		inside := *u-hi < tol
		*u = hi
		return inside
	}
	return true
}

// FindSpan locates the knot span index containing u by binary search
// (The NURBS Book, algorithm A2.1). u must lie inside the domain within
// KnotTol; anything else is a defect in the caller, which is expected to
// clamp first.
func (kv KnotVector) FindSpan(degree int, u float64) int {
	var (
		n = kv.NumBasis(degree) - 1
	)
	if u < kv.First()-KnotTol || u > kv.Last()+KnotTol {
		panic(fmt.Errorf("parameter %v outside knot vector domain [%v,%v]", u, kv.First(), kv.Last()))
	}
	if u >= kv[n+1] {
		return n
	}
	if u <= kv[degree] {
		return degree
	}
	low, high := degree, n+1
	mid := (low + high) / 2
	for u < kv[mid] || u >= kv[mid+1] {
		if u < kv[mid] {
			high = mid
		} else {
			low = mid
		}
		mid = (low + high) / 2
	}
	return mid
}

// GrevilleAbscissa is the parameter of peak influence of basis function i,
// the mean of knots i+1..i+degree.
func (kv KnotVector) GrevilleAbscissa(degree, i int) (g float64) {
	for k := i + 1; k <= i+degree; k++ {
		g += kv[k]
	}
	g /= float64(degree)
	// Guard against roundoff pushing the abscissa outside the domain
	g = math.Min(math.Max(g, kv.First()), kv.Last())
	return
}
