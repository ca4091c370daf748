package geometry2D

import "math"

// Point is a location in (u,v) parameter space.
type Point struct {
	X, Y float64
}

// Polygon is an ordered vertex list. Positive area means counter-clockwise.
type Polygon []Point

// SignedArea by the shoelace formula.
func (pg Polygon) SignedArea() (a float64) {
	n := len(pg)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a += pg[i].X*pg[j].Y - pg[j].X*pg[i].Y
	}
	a *= 0.5
	return
}

// Area is the absolute enclosed area.
func (pg Polygon) Area() float64 { return math.Abs(pg.SignedArea()) }

// IsCCW reports counter-clockwise orientation.
func (pg Polygon) IsCCW() bool { return pg.SignedArea() > 0 }

// Reverse flips the orientation in place.
func (pg Polygon) Reverse() {
	for i, j := 0, len(pg)-1; i < j; i, j = i+1, j-1 {
		pg[i], pg[j] = pg[j], pg[i]
	}
}

// Clean merges consecutive vertices closer than tol and drops collinear
// runs, returning the cleaned polygon. Anything reduced below 3 vertices
// comes back as-is truncated; callers treat <3 vertices as degenerate.
func (pg Polygon) Clean(tol float64) (out Polygon) {
	n := len(pg)
	if n == 0 {
		return
	}
	out = make(Polygon, 0, n)
	for i := 0; i < n; i++ {
		p := pg[i]
		if len(out) > 0 {
			q := out[len(out)-1]
			if math.Hypot(p.X-q.X, p.Y-q.Y) < tol {
				continue
			}
		}
		out = append(out, p)
	}
	// Closing vertex duplicating the first
	for len(out) > 1 {
		p, q := out[0], out[len(out)-1]
		if math.Hypot(p.X-q.X, p.Y-q.Y) >= tol {
			break
		}
		out = out[:len(out)-1]
	}
	if len(out) < 3 {
		return
	}
	// Drop vertices collinear with their neighbors
	kept := make(Polygon, 0, len(out))
	m := len(out)
	for i := 0; i < m; i++ {
		var (
			a = out[(i+m-1)%m]
			b = out[i]
			c = out[(i+1)%m]
		)
		cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
		if math.Abs(cross) > tol*tol {
			kept = append(kept, b)
		}
	}
	if len(kept) >= 3 {
		out = kept
	}
	return
}

// Contains tests point membership by the winding number, robust for
// non-convex polygons. Boundary points count as inside.
func (pg Polygon) Contains(p Point) bool {
	var winding int
	n := len(pg)
	for i := 0; i < n; i++ {
		var (
			a = pg[i]
			b = pg[(i+1)%n]
		)
		if a.Y <= p.Y {
			if b.Y > p.Y && isLeft(a, b, p) > 0 {
				winding++
			}
		} else {
			if b.Y <= p.Y && isLeft(a, b, p) < 0 {
				winding--
			}
		}
	}
	return winding != 0
}

func isLeft(a, b, p Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (p.X-a.X)*(b.Y-a.Y)
}

// SegmentIntersection intersects the infinite lines through a1-a2 and b1-b2.
// ok is false for (near-)parallel lines. s and t are the line parameters of
// the intersection on each segment's span.
func SegmentIntersection(a1, a2, b1, b2 Point) (p Point, s, t float64, ok bool) {
	var (
		dax = a2.X - a1.X
		day = a2.Y - a1.Y
		dbx = b2.X - b1.X
		dby = b2.Y - b1.Y
	)
	den := dax*dby - day*dbx
	if math.Abs(den) < 1.e-14 {
		return
	}
	s = ((b1.X-a1.X)*dby - (b1.Y-a1.Y)*dbx) / den
	t = ((b1.X-a1.X)*day - (b1.Y-a1.Y)*dax) / den
	p = Point{a1.X + s*dax, a1.Y + s*day}
	ok = true
	return
}
