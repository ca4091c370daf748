package geometry2D

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"
)

// Rect is an axis-aligned clipping window.
type Rect struct {
	U0, V0, U1, V1 float64
}

func (r Rect) Contains(p Point, tol float64) bool {
	return p.X >= r.U0-tol && p.X <= r.U1+tol && p.Y >= r.V0-tol && p.Y <= r.V1+tol
}

// ClipRect clips a polygon against an axis-aligned rectangle by
// Sutherland-Hodgman, one half-plane per side. The subject may have any
// orientation; the result keeps it.
func ClipRect(pg Polygon, r Rect) Polygon {
	clip := func(in Polygon, inside func(Point) bool, cross func(a, b Point) Point) (out Polygon) {
		n := len(in)
		for i := 0; i < n; i++ {
			var (
				a = in[i]
				b = in[(i+1)%n]
			)
			switch {
			case inside(a) && inside(b):
				out = append(out, b)
			case inside(a) && !inside(b):
				out = append(out, cross(a, b))
			case !inside(a) && inside(b):
				out = append(out, cross(a, b), b)
			}
		}
		return
	}
	lerpU := func(a, b Point, u float64) Point {
		t := (u - a.X) / (b.X - a.X)
		return Point{u, a.Y + t*(b.Y-a.Y)}
	}
	lerpV := func(a, b Point, v float64) Point {
		t := (v - a.Y) / (b.Y - a.Y)
		return Point{a.X + t*(b.X-a.X), v}
	}
	pg = clip(pg, func(p Point) bool { return p.X >= r.U0 },
		func(a, b Point) Point { return lerpU(a, b, r.U0) })
	pg = clip(pg, func(p Point) bool { return p.X <= r.U1 },
		func(a, b Point) Point { return lerpU(a, b, r.U1) })
	pg = clip(pg, func(p Point) bool { return p.Y >= r.V0 },
		func(a, b Point) Point { return lerpV(a, b, r.V0) })
	pg = clip(pg, func(p Point) bool { return p.Y <= r.V1 },
		func(a, b Point) Point { return lerpV(a, b, r.V1) })
	return pg
}

// ClipLoops intersects a polygon with the region enclosed by a set of
// trimming loops, outer loops counter-clockwise and holes clockwise, and
// returns the surviving sub-polygons. Built on the Martinez boolean clipper:
// the subject is intersected with the outer loops, then each hole loop is
// subtracted. A hole swallowed whole by a fragment would need a
// contour-in-contour result, so in that case the subject is split through
// the hole and reclipped; every returned polygon is simple.
func ClipLoops(pg Polygon, loops []Polygon) (out []Polygon) {
	var outers, holes polyclip.Polygon
	for _, lp := range loops {
		if lp.IsCCW() {
			outers = append(outers, toContour(lp))
		} else {
			holes = append(holes, toContour(lp))
		}
	}
	region := polyclip.Polygon{toContour(pg)}
	if len(outers) > 0 {
		region = region.Construct(polyclip.INTERSECTION, outers)
	}
	if len(region) > 0 && len(holes) > 0 {
		region = region.Construct(polyclip.DIFFERENCE, holes)
	}
	polys := make([]Polygon, 0, len(region))
	for _, c := range region {
		sub := fromContour(c)
		if len(sub) >= 3 {
			polys = append(polys, sub)
		}
	}
	if _, inner, nested := findNested(polys); nested {
		// Cut vertically through the contained hole so each side sees it on
		// its boundary, then reclip both halves
		var (
			hb = polys[inner].Bounds()
			cx = 0.5 * (hb.U0 + hb.U1)
			r  = pg.Bounds()
		)
		out = append(out, ClipLoops(ClipRect(pg, Rect{r.U0, r.V0, cx, r.V1}), loops)...)
		out = append(out, ClipLoops(ClipRect(pg, Rect{cx, r.V0, r.U1, r.V1}), loops)...)
		return
	}
	return polys
}

// findNested reports a contour lying strictly inside another, which marks an
// unexpressed hole in the boolean result.
func findNested(polys []Polygon) (outer, inner int, nested bool) {
	for i, pi := range polys {
		for j, pj := range polys {
			if i == j {
				continue
			}
			if pj.Area() < pi.Area() && pi.Contains(pj[0]) {
				return i, j, true
			}
		}
	}
	return
}

func toContour(pg Polygon) (c polyclip.Contour) {
	c = make(polyclip.Contour, len(pg))
	for i, p := range pg {
		c[i] = polyclip.Point{X: p.X, Y: p.Y}
	}
	return
}

func fromContour(c polyclip.Contour) (pg Polygon) {
	pg = make(Polygon, len(c))
	for i, p := range c {
		pg[i] = Point{p.X, p.Y}
	}
	return
}

// earTol rejects collinear ears and zero-area output triangles.
const earTol = 1.e-12

// Triangulate splits a simple polygon into triangles by ear clipping, which
// also handles the non-convex fragments the hole clipper can produce.
func Triangulate(pg Polygon) (tris []Polygon) {
	if len(pg) < 3 {
		return
	}
	work := make(Polygon, len(pg))
	copy(work, pg)
	if !work.IsCCW() {
		work.Reverse()
	}
	appendTri := func(a, b, c Point) {
		tri := Polygon{a, b, c}
		if tri.Area() > earTol {
			tris = append(tris, tri)
		}
	}
	idx := make([]int, len(work))
	for i := range idx {
		idx[i] = i
	}
	for len(idx) > 3 {
		clipped := false
		for k := 0; k < len(idx); k++ {
			var (
				ia = idx[(k+len(idx)-1)%len(idx)]
				ib = idx[k]
				ic = idx[(k+1)%len(idx)]
				a  = work[ia]
				b  = work[ib]
				c  = work[ic]
			)
			if isLeft(a, b, c) <= earTol {
				continue // reflex or collinear corner, not an ear
			}
			ear := Polygon{a, b, c}
			blocked := false
			for _, other := range idx {
				if other == ia || other == ib || other == ic {
					continue
				}
				// A vertex on the ear boundary blocks too, otherwise the
				// remainder degenerates
				if ear.Contains(work[other]) || onBoundary(ear, work[other], earTol) {
					blocked = true
					break
				}
			}
			if blocked {
				continue
			}
			tris = append(tris, ear)
			idx = append(idx[:k], idx[k+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// Degenerate remainder, fall back to a fan
			for k := 1; k+1 < len(idx); k++ {
				appendTri(work[idx[0]], work[idx[k]], work[idx[k+1]])
			}
			return
		}
	}
	appendTri(work[idx[0]], work[idx[1]], work[idx[2]])
	return
}

// onBoundary reports whether p lies within tol of any edge of the polygon.
func onBoundary(pg Polygon, p Point, tol float64) bool {
	n := len(pg)
	for i := 0; i < n; i++ {
		var (
			a  = pg[i]
			b  = pg[(i+1)%n]
			dx = b.X - a.X
			dy = b.Y - a.Y
			l2 = dx*dx + dy*dy
		)
		if l2 == 0 {
			continue
		}
		t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		if math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy)) <= tol {
			return true
		}
	}
	return false
}

// Centroid of the vertex set.
func (pg Polygon) Centroid() (c Point) {
	for _, p := range pg {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(pg))
	c.X /= n
	c.Y /= n
	return
}

// Bounds returns the axis-aligned bounds of the polygon.
func (pg Polygon) Bounds() (r Rect) {
	r = Rect{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, p := range pg {
		r.U0 = math.Min(r.U0, p.X)
		r.V0 = math.Min(r.V0, p.Y)
		r.U1 = math.Max(r.U1, p.X)
		r.V1 = math.Max(r.V1, p.Y)
	}
	return
}
