package utils

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Triplet is a single (row, col, value) contribution destined for a sparse
// operator. Workers collect triplets independently and merge them at
// finalization so that assembly is deterministic up to summation order.
type Triplet struct {
	Row, Col int
	Val      float64
}

type DOK struct {
	M *sparse.DOK
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{sparse.NewDOK(nr, nc)}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

// Accumulate adds val into entry (i,j).
func (m DOK) Accumulate(i, j int, val float64) {
	m.M.Set(i, j, m.M.At(i, j)+val)
}

func (m DOK) AccumulateTriplets(trips []Triplet) {
	for _, t := range trips {
		m.Accumulate(t.Row, t.Col, t.Val)
	}
}

func (m DOK) Set(i, j int, val float64) { m.M.Set(i, j, val) }

// ZeroRow removes all stored entries of row i. DOK offers no per-row
// traversal, so the full entry set is scanned.
func (m DOK) ZeroRow(i int) {
	var cols []int
	m.M.DoNonZero(func(r, j int, _ float64) {
		if r == i {
			cols = append(cols, j)
		}
	})
	for _, j := range cols {
		m.M.Set(i, j, 0)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{m.M.ToCSR()}
}

type CSR struct {
	M *sparse.CSR
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix       { return m.M.T() }

// MulVec computes y = M*x without materializing a dense matrix.
func (m CSR) MulVec(x Vector) (y Vector) {
	var (
		nr, _ = m.Dims()
	)
	y = NewVector(nr)
	yd, xd := y.DataP(), x.DataP()
	m.M.DoNonZero(func(i, j int, v float64) {
		yd[i] += v * xd[j]
	})
	return
}

// MulTransVec computes y = Mᵀ*x.
func (m CSR) MulTransVec(x Vector) (y Vector) {
	var (
		_, nc = m.Dims()
	)
	y = NewVector(nc)
	yd, xd := y.DataP(), x.DataP()
	m.M.DoNonZero(func(i, j int, v float64) {
		yd[j] += v * xd[i]
	})
	return
}

// RowSum is the sum over all stored entries of row i.
func (m CSR) RowSum(i int) (s float64) {
	m.M.DoRowNonZero(i, func(_, _ int, v float64) {
		s += v
	})
	return
}

// EmptyRows lists row indices with no stored entries above tol in magnitude.
func (m CSR) EmptyRows(tol float64) (rows []int) {
	var (
		nr, _ = m.Dims()
	)
	nnz := make([]int, nr)
	m.M.DoNonZero(func(i, _ int, v float64) {
		if v > tol || v < -tol {
			nnz[i]++
		}
	})
	for i, n := range nnz {
		if n == 0 {
			rows = append(rows, i)
		}
	}
	return
}

// Dense expands the sparse matrix for factorization.
func (m CSR) Dense() (R Matrix) {
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nr, nc)
	m.M.DoNonZero(func(i, j int, v float64) {
		R.M.Set(i, j, v)
	})
	return
}
