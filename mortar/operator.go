package mortar

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/structmech/gomortar/utils"
)

// consistencyTol bounds the deviation from unity tolerated by the
// partition-of-unity self-check.
const consistencyTol = 1.e-6

// CouplingOperator holds the assembled mortar operators: the square
// target-side matrix Cnn and the rectangular cross matrix Cnr. After
// finalize it is factorized exactly once and reused for every transfer.
type CouplingOperator struct {
	Cnn utils.DOK
	Cnr utils.DOK

	nTarget, nSource int

	cnn, cnr   utils.CSR
	chol       mat.Cholesky
	lu         mat.LU
	useLU      bool
	factorized bool
	uncovered  []int
}

func newCouplingOperator(nTarget, nSource int) *CouplingOperator {
	return &CouplingOperator{
		Cnn:     utils.NewDOK(nTarget, nTarget),
		Cnr:     utils.NewDOK(nTarget, nSource),
		nTarget: nTarget,
		nSource: nSource,
	}
}

func (op *CouplingOperator) NumTargetDofs() int { return op.nTarget }
func (op *CouplingOperator) NumSourceDofs() int { return op.nSource }

// UncoveredTargetDofs lists target dofs that received no contribution; their
// mapped value is pinned to zero by an identity diagonal.
func (op *CouplingOperator) UncoveredTargetDofs() []int { return op.uncovered }

// eliminateDirichlet clears the rows and columns of constrained target dofs
// and pins them with a unit diagonal, so the mapped value there is zero.
func (op *CouplingOperator) eliminateDirichlet(dofs []int) {
	for _, d := range dofs {
		if d < 0 || d >= op.nTarget {
			continue
		}
		op.Cnn.ZeroRow(d)
		for i := 0; i < op.nTarget; i++ {
			if op.Cnn.At(i, d) != 0 {
				op.Cnn.Set(i, d, 0)
			}
		}
		op.Cnn.Set(d, d, 1)
		op.Cnr.ZeroRow(d)
	}
}

// finalize freezes the operators, factorizes Cnn and runs the
// partition-of-unity self-check with diagonal correction.
func (op *CouplingOperator) finalize() (err error) {
	op.cnr = op.Cnr.ToCSR()
	// Pin empty rows so the factorization stays regular; such target dofs
	// map to zero.
	probe := op.Cnn.ToCSR()
	op.uncovered = probe.EmptyRows(0)
	for _, i := range op.uncovered {
		op.Cnn.Set(i, i, 1)
	}
	op.cnn = op.Cnn.ToCSR()
	if err = op.factorize(); err != nil {
		return
	}

	out := op.applyConsistent(onesVector(op.nSource))
	var corrected int
	data := out.DataP()
	for i := 0; i < op.nTarget; i++ {
		if data[i] != 0 && math.Abs(data[i]-1) > consistencyTol {
			rs := op.cnr.RowSum(i)
			if math.Abs(rs) <= consistencyTol {
				// A vanishing source row sum would pin a singular diagonal;
				// the row cannot be corrected.
				return &ConsistencyError{Norm: data[i]}
			}
			op.Cnn.ZeroRow(i)
			op.Cnn.Set(i, i, rs)
			corrected++
		}
	}
	if corrected == 0 {
		return nil
	}
	fmt.Printf("consistency check: corrected %d rows\n", corrected)
	op.cnn = op.Cnn.ToCSR()
	if err = op.factorize(); err != nil {
		return
	}
	out = op.applyConsistent(onesVector(op.nSource))
	var (
		sum   float64
		count int
	)
	for _, v := range out.DataP() {
		if v != 0 {
			sum += v * v
			count++
		}
	}
	if count == 0 {
		return &ConsistencyError{Norm: 0}
	}
	norm := math.Sqrt(sum / float64(count))
	if math.Abs(norm-1) > consistencyTol {
		return &ConsistencyError{Norm: norm}
	}
	return nil
}

// factorize prefers Cholesky (Cnn is built symmetric); rows pinned by the
// consistency correction can break symmetry, then LU takes over.
func (op *CouplingOperator) factorize() error {
	var (
		dense = op.cnn.Dense()
		sym   = mat.NewSymDense(op.nTarget, nil)
		isSym = true
	)
	for i := 0; i < op.nTarget && isSym; i++ {
		for j := i; j < op.nTarget; j++ {
			a, b := dense.At(i, j), dense.At(j, i)
			if a != b {
				isSym = false
				break
			}
			sym.SetSym(i, j, a)
		}
	}
	op.useLU = true
	if isSym && op.chol.Factorize(sym) {
		op.useLU = false
		op.factorized = true
		return nil
	}
	op.lu.Factorize(dense.M)
	op.factorized = true
	return nil
}

func onesVector(n int) utils.Vector {
	return utils.NewVector(n).Set(1)
}

func (op *CouplingOperator) solve(rhs utils.Vector, trans bool) utils.Vector {
	x := utils.NewVector(op.nTarget)
	if op.useLU {
		if err := op.lu.SolveVecTo(x.V, trans, rhs.V); err != nil {
			panic(err)
		}
		return x
	}
	if err := op.chol.SolveVecTo(x.V, rhs.V); err != nil {
		panic(err)
	}
	return x
}

func (op *CouplingOperator) applyConsistent(source utils.Vector) utils.Vector {
	return op.solve(op.cnr.MulVec(source), false)
}

// ConsistentMapping transfers a field value array from the source to the
// target side by solving Cnn*x = Cnr*source.
func (op *CouplingOperator) ConsistentMapping(source []float64) ([]float64, error) {
	if !op.factorized {
		return nil, &ConfigurationError{Reason: "operator not finalized"}
	}
	if len(source) != op.nSource {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("source field length %d, want %d", len(source), op.nSource),
		}
	}
	out := op.applyConsistent(utils.NewVector(op.nSource, source))
	return out.DataP(), nil
}

// ConservativeMapping transfers a dual (flux/load) field from the target to
// the source side by the transpose operator, preserving the total conserved
// quantity by virtual-work duality.
func (op *CouplingOperator) ConservativeMapping(targetDual []float64) ([]float64, error) {
	if !op.factorized {
		return nil, &ConfigurationError{Reason: "operator not finalized"}
	}
	if len(targetDual) != op.nTarget {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("target dual field length %d, want %d", len(targetDual), op.nTarget),
		}
	}
	y := op.solve(utils.NewVector(op.nTarget, targetDual), true)
	out := op.cnr.MulTransVec(y)
	return out.DataP(), nil
}
