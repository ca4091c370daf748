package quadrature

import (
	"math"

	"github.com/structmech/gomortar/utils"
)

// ShapeFuncsTriangle evaluates the linear shape functions on the parent
// triangle (0,0)-(1,0)-(0,1).
func ShapeFuncsTriangle(xi, eta float64) [3]float64 {
	return [3]float64{1 - xi - eta, xi, eta}
}

// ShapeFuncsQuad evaluates the bilinear shape functions on [-1,1]^2 in
// counter-clockwise corner order.
func ShapeFuncsQuad(xi, eta float64) [4]float64 {
	return [4]float64{
		0.25 * (1 - xi) * (1 - eta),
		0.25 * (1 + xi) * (1 - eta),
		0.25 * (1 + xi) * (1 + eta),
		0.25 * (1 - xi) * (1 + eta),
	}
}

// MapTriangle maps parent-triangle coordinates to the triangle with the given
// vertices.
func MapTriangle(v [3][2]float64, xi, eta float64) (p [2]float64) {
	N := ShapeFuncsTriangle(xi, eta)
	for i := 0; i < 3; i++ {
		p[0] += N[i] * v[i][0]
		p[1] += N[i] * v[i][1]
	}
	return
}

// MapQuad maps [-1,1]^2 coordinates to the quad with the given vertices.
func MapQuad(v [4][2]float64, xi, eta float64) (p [2]float64) {
	N := ShapeFuncsQuad(xi, eta)
	for i := 0; i < 4; i++ {
		p[0] += N[i] * v[i][0]
		p[1] += N[i] * v[i][1]
	}
	return
}

// JacobianTriangle is the constant area scale of the parent-to-vertex map,
// twice the triangle area.
func JacobianTriangle(v [3][2]float64) float64 {
	return math.Abs((v[1][0]-v[0][0])*(v[2][1]-v[0][1]) - (v[2][0]-v[0][0])*(v[1][1]-v[0][1]))
}

// JacobianQuad is the local area scale of the bilinear map at (xi,eta).
func JacobianQuad(v [4][2]float64, xi, eta float64) float64 {
	var (
		dNdXi  = [4]float64{-0.25 * (1 - eta), 0.25 * (1 - eta), 0.25 * (1 + eta), -0.25 * (1 + eta)}
		dNdEta = [4]float64{-0.25 * (1 - xi), -0.25 * (1 + xi), 0.25 * (1 + xi), 0.25 * (1 - xi)}
		j      [2][2]float64
	)
	for i := 0; i < 4; i++ {
		j[0][0] += dNdXi[i] * v[i][0]
		j[0][1] += dNdXi[i] * v[i][1]
		j[1][0] += dNdEta[i] * v[i][0]
		j[1][1] += dNdEta[i] * v[i][1]
	}
	return math.Abs(j[0][0]*j[1][1] - j[0][1]*j[1][0])
}

// LocalCoordsTriangle inverts the affine map of a triangle, returning parent
// coordinates of p. ok is false for a degenerate triangle.
func LocalCoordsTriangle(v [3][2]float64, p [2]float64) (xi, eta float64, ok bool) {
	return invertLinear(
		v[1][0]-v[0][0], v[2][0]-v[0][0],
		v[1][1]-v[0][1], v[2][1]-v[0][1],
		p[0]-v[0][0], p[1]-v[0][1])
}

func invertLinear(a, b, c, d, r0, r1 float64) (x0, x1 float64, ok bool) {
	return utils.Solve2x2(a, b, c, d, r0, r1, 1.e-14)
}

// LocalCoordsQuad inverts the bilinear map of a quad by Newton iteration,
// returning [-1,1]^2 coordinates of p. ok is false when the iteration fails
// to converge or the quad is degenerate at the iterate.
func LocalCoordsQuad(v [4][2]float64, p [2]float64, tol float64, maxIter int) (xi, eta float64, ok bool) {
	for iter := 0; iter < maxIter; iter++ {
		q := MapQuad(v, xi, eta)
		var (
			rx = q[0] - p[0]
			ry = q[1] - p[1]
		)
		if math.Abs(rx) < tol && math.Abs(ry) < tol {
			ok = true
			return
		}
		var (
			dNdXi  = [4]float64{-0.25 * (1 - eta), 0.25 * (1 - eta), 0.25 * (1 + eta), -0.25 * (1 + eta)}
			dNdEta = [4]float64{-0.25 * (1 - xi), -0.25 * (1 + xi), 0.25 * (1 + xi), 0.25 * (1 - xi)}
			j      [2][2]float64
		)
		for i := 0; i < 4; i++ {
			j[0][0] += dNdXi[i] * v[i][0]
			j[1][0] += dNdXi[i] * v[i][1]
			j[0][1] += dNdEta[i] * v[i][0]
			j[1][1] += dNdEta[i] * v[i][1]
		}
		dXi, dEta, solved := utils.Solve2x2(j[0][0], j[0][1], j[1][0], j[1][1], rx, ry, 1.e-14)
		if !solved {
			return
		}
		xi -= dXi
		eta -= dEta
	}
	return
}
