package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

type Vector struct {
	V *mat.VecDense
}

func NewVector(n int, dataO ...[]float64) (R Vector) {
	var v *mat.VecDense
	if len(dataO) != 0 {
		if len(dataO[0]) != n {
			err := fmt.Errorf("mismatch in allocation: NewVector n = %v, len(data[0]) = %v", n, len(dataO[0]))
			panic(err)
		}
		v = mat.NewVecDense(n, dataO[0])
	} else {
		v = mat.NewVecDense(n, make([]float64, n))
	}
	R = Vector{v}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (v Vector) Dims() (r, c int)         { return v.V.Dims() }
func (v Vector) At(i, j int) float64      { return v.V.At(i, j) }
func (v Vector) T() mat.Matrix            { return v.V.T() }
func (v Vector) AtVec(i int) float64      { return v.V.AtVec(i) }
func (v Vector) RawVector() blas64.Vector { return v.V.RawVector() }
func (v Vector) Len() int                 { return v.V.Len() }
func (v Vector) DataP() []float64         { return v.V.RawVector().Data }

func (v Vector) Copy() (R Vector) {
	R = NewVector(v.Len())
	copy(R.DataP(), v.DataP())
	return
}

func (v Vector) Set(val float64) Vector {
	data := v.DataP()
	for i := range data {
		data[i] = val
	}
	return v
}

func (v Vector) SetVec(i int, val float64) Vector {
	v.V.SetVec(i, val)
	return v
}

func (v Vector) Scale(a float64) Vector {
	v.V.ScaleVec(a, v.V)
	return v
}

func (v Vector) Add(a Vector) Vector {
	v.V.AddVec(v.V, a.V)
	return v
}

func (v Vector) Subtract(a Vector) Vector {
	v.V.SubVec(v.V, a.V)
	return v
}

func (v Vector) Sum() (s float64) {
	for _, val := range v.DataP() {
		s += val
	}
	return
}

func (v Vector) Min() (min float64) {
	min = math.MaxFloat64
	for _, val := range v.DataP() {
		if val < min {
			min = val
		}
	}
	return
}

func (v Vector) Max() (max float64) {
	max = -math.MaxFloat64
	for _, val := range v.DataP() {
		if val > max {
			max = val
		}
	}
	return
}

// Norm2 is the Euclidean norm of the vector.
func (v Vector) Norm2() (n float64) {
	for _, val := range v.DataP() {
		n += val * val
	}
	n = math.Sqrt(n)
	return
}

func (v Vector) Apply(f func(float64) float64) Vector {
	data := v.DataP()
	for i, val := range data {
		data[i] = f(val)
	}
	return v
}
