package quadrature

import (
	"fmt"

	"gonum.org/v1/gonum/integrate/quad"
)

// Rule is a fixed set of quadrature points with weights. Triangle rules live
// on the parent triangle (0,0)-(1,0)-(0,1) with the 1/2 reference area folded
// into the weights; quad rules on [-1,1]^2.
type Rule struct {
	Points  [][2]float64
	Weights []float64
}

// Symmetric Gauss rules for the parent triangle. Point groups are the usual
// barycentric permutation orbits.
var triangleRules = map[int]struct {
	groups []struct {
		a, w float64
	}
	centroid float64 // weight, 0 when absent
	orbit6   []struct {
		a, b, w float64
	}
}{
	1:  {centroid: 1},
	3:  {groups: []struct{ a, w float64 }{{1. / 6., 1. / 3.}}},
	4:  {groups: []struct{ a, w float64 }{{0.2, 25. / 48.}}, centroid: -27. / 48.},
	6: {groups: []struct{ a, w float64 }{
		{0.445948490915965, 0.223381589678011},
		{0.091576213509771, 0.109951743655322},
	}},
	7: {groups: []struct{ a, w float64 }{
		{0.470142064105115, 0.132394152788506},
		{0.101286507323456, 0.125939180544827},
	}, centroid: 0.225},
	12: {groups: []struct{ a, w float64 }{
		{0.249286745170910, 0.116786275726379},
		{0.063089014491502, 0.050844906370207},
	}, orbit6: []struct{ a, b, w float64 }{
		{0.310352451033785, 0.053145049844816, 0.082851075618374},
	}},
}

// NewTriangleRule returns the symmetric rule with the given point count
// (1, 3, 4, 6, 7 or 12).
func NewTriangleRule(numPoints int) (r Rule, err error) {
	spec, ok := triangleRules[numPoints]
	if !ok {
		err = fmt.Errorf("no symmetric triangle rule with %d points", numPoints)
		return
	}
	add := func(x, y, w float64) {
		r.Points = append(r.Points, [2]float64{x, y})
		r.Weights = append(r.Weights, 0.5*w)
	}
	if spec.centroid != 0 {
		add(1./3., 1./3., spec.centroid)
	}
	for _, g := range spec.groups {
		add(g.a, g.a, g.w)
		add(1-2*g.a, g.a, g.w)
		add(g.a, 1-2*g.a, g.w)
	}
	for _, g := range spec.orbit6 {
		c := 1 - g.a - g.b
		add(g.a, g.b, g.w)
		add(g.b, g.a, g.w)
		add(g.a, c, g.w)
		add(c, g.a, g.w)
		add(g.b, c, g.w)
		add(c, g.b, g.w)
	}
	return
}

// GaussLegendre1D returns the n-point Gauss-Legendre nodes and weights on
// [-1,1].
func GaussLegendre1D(n int) (x, w []float64, err error) {
	if n < 1 {
		err = fmt.Errorf("1D rule needs at least 1 point, got %d", n)
		return
	}
	x = make([]float64, n)
	w = make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)
	return
}

// NewQuadRule builds the tensor product Gauss-Legendre rule with n points per
// direction on [-1,1]^2.
func NewQuadRule(nPerDirection int) (r Rule, err error) {
	if nPerDirection < 1 {
		err = fmt.Errorf("quad rule needs at least 1 point per direction, got %d", nPerDirection)
		return
	}
	var (
		x = make([]float64, nPerDirection)
		w = make([]float64, nPerDirection)
	)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)
	for j := 0; j < nPerDirection; j++ {
		for i := 0; i < nPerDirection; i++ {
			r.Points = append(r.Points, [2]float64{x[i], x[j]})
			r.Weights = append(r.Weights, w[i]*w[j])
		}
	}
	return
}
