package geometry2D

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquare() Polygon {
	return Polygon{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
}

func TestSignedArea(t *testing.T) {
	sq := unitSquare()
	assert.InDelta(t, 1, sq.SignedArea(), 1.e-12)
	assert.True(t, sq.IsCCW())
	sq.Reverse()
	assert.InDelta(t, -1, sq.SignedArea(), 1.e-12)
}

func TestClean(t *testing.T) {
	pg := Polygon{{0, 0}, {0, 0}, {1, 0}, {1, 1.e-9}, {1, 1}, {0.5, 1}, {0, 1}, {0, 1.e-10}}
	out := pg.Clean(1.e-6)
	// Duplicates merged, collinear midpoint dropped
	assert.Equal(t, 4, len(out))
	assert.InDelta(t, 1, out.Area(), 1.e-6)
}

func TestContains(t *testing.T) {
	sq := unitSquare()
	assert.True(t, sq.Contains(Point{0.5, 0.5}))
	assert.False(t, sq.Contains(Point{1.5, 0.5}))
	// Non-convex
	ell := Polygon{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}}
	assert.True(t, ell.Contains(Point{0.5, 1.5}))
	assert.False(t, ell.Contains(Point{1.5, 1.5}))
}

func TestSegmentIntersection(t *testing.T) {
	p, s, u, ok := SegmentIntersection(Point{0, 0}, Point{1, 1}, Point{1, 0}, Point{0, 1})
	require.True(t, ok)
	assert.InDelta(t, 0.5, p.X, 1.e-12)
	assert.InDelta(t, 0.5, p.Y, 1.e-12)
	assert.InDelta(t, 0.5, s, 1.e-12)
	assert.InDelta(t, 0.5, u, 1.e-12)

	_, _, _, ok = SegmentIntersection(Point{0, 0}, Point{1, 0}, Point{0, 1}, Point{1, 1})
	assert.False(t, ok)
}

func TestClipRectIdentity(t *testing.T) {
	// Polygon fully inside the window comes back unchanged
	pg := Polygon{{0.2, 0.2}, {0.8, 0.3}, {0.6, 0.8}}
	out := ClipRect(pg, Rect{0, 0, 1, 1})
	assert.InDelta(t, pg.Area(), out.Area(), 1.e-12)
	assert.Equal(t, 3, len(out))
}

func TestClipRectEmpty(t *testing.T) {
	pg := Polygon{{2, 2}, {3, 2}, {3, 3}}
	out := ClipRect(pg, Rect{0, 0, 1, 1})
	assert.Empty(t, out)
}

func TestClipRectPartial(t *testing.T) {
	pg := Polygon{{-0.5, 0.25}, {0.5, 0.25}, {0.5, 0.75}, {-0.5, 0.75}}
	out := ClipRect(pg, Rect{0, 0, 1, 1})
	assert.InDelta(t, 0.25, out.Area(), 1.e-12)
}

func TestClipRectAreaPartition(t *testing.T) {
	// Clipping against a 2x2 tiling of windows partitions the area exactly
	pg := Polygon{{0.1, 0.2}, {0.9, 0.1}, {0.8, 0.9}, {0.2, 0.8}}
	var sum float64
	for _, r := range []Rect{
		{0, 0, 0.5, 0.5}, {0.5, 0, 1, 0.5}, {0, 0.5, 0.5, 1}, {0.5, 0.5, 1, 1},
	} {
		sum += ClipRect(pg, r).Area()
	}
	assert.InDelta(t, pg.Area(), sum, 1.e-12)
}

func TestClipRectPreservesOrientation(t *testing.T) {
	pg := Polygon{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	out := ClipRect(pg, Rect{0, 0, 1, 1})
	assert.False(t, out.IsCCW())
	assert.InDelta(t, 1, out.Area(), 1.e-12)
}

func TestClipLoops(t *testing.T) {
	var (
		pg    = unitSquare()
		outer = Polygon{{-1, -1}, {2, -1}, {2, 2}, {-1, 2}}
		hole  = Polygon{{0.25, 0.25}, {0.25, 0.75}, {0.75, 0.75}, {0.75, 0.25}} // clockwise
	)
	out := ClipLoops(pg, []Polygon{outer, hole})
	var area float64
	for _, sub := range out {
		area += sub.Area()
	}
	assert.InDelta(t, 0.75, area, 1.e-9)
	// The hole sits fully inside the subject: it must subtract, and the
	// fragments must come back simple, none nested in another
	require.True(t, len(out) >= 2)
	for i, a := range out {
		assert.True(t, a.Area() > 0)
		for j, b := range out {
			if i == j {
				continue
			}
			assert.False(t, a.Contains(b[0]))
		}
	}
}

func TestClipLoopsHoleOnBoundary(t *testing.T) {
	// Hole straddling the subject boundary, no nesting involved
	var (
		pg    = unitSquare()
		outer = Polygon{{-1, -1}, {2, -1}, {2, 2}, {-1, 2}}
		hole  = Polygon{{0.75, 0.25}, {0.75, 0.75}, {1.25, 0.75}, {1.25, 0.25}} // clockwise
	)
	out := ClipLoops(pg, []Polygon{outer, hole})
	var area float64
	for _, sub := range out {
		area += sub.Area()
	}
	assert.InDelta(t, 0.875, area, 1.e-9)
}

func TestClipLoopsDisjoint(t *testing.T) {
	pg := unitSquare()
	far := Polygon{{5, 5}, {6, 5}, {6, 6}, {5, 6}}
	assert.Empty(t, ClipLoops(pg, []Polygon{far}))
}

func TestTriangulate(t *testing.T) {
	pg := Polygon{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {-0.5, 0.5}}
	tris := Triangulate(pg)
	require.Equal(t, 3, len(tris))
	var sum float64
	for _, tri := range tris {
		sum += tri.Area()
	}
	assert.InDelta(t, pg.Area(), sum, 1.e-12)
}

func TestTriangulateNonConvex(t *testing.T) {
	// L-shape, as produced by clipping a span window against a hole corner
	ell := Polygon{{0, 0}, {1, 0}, {1, 0.5}, {0.5, 0.5}, {0.5, 1}, {0, 1}}
	tris := Triangulate(ell)
	require.Equal(t, 4, len(tris))
	var sum float64
	for _, tri := range tris {
		sum += tri.Area()
		assert.True(t, tri.Area() > 0)
	}
	assert.InDelta(t, 0.75, sum, 1.e-12)

	// Orientation does not matter
	ell.Reverse()
	tris = Triangulate(ell)
	sum = 0
	for _, tri := range tris {
		sum += tri.Area()
		assert.True(t, tri.Area() > 0)
	}
	assert.InDelta(t, 0.75, sum, 1.e-12)
}

func TestTriangulateCollinearVertex(t *testing.T) {
	// Midpoint of the bottom edge is a vertex; no degenerate triangles
	pg := Polygon{{0, 0}, {0.5, 0}, {1, 0}, {1, 1}, {0, 1}}
	tris := Triangulate(pg)
	var sum float64
	for _, tri := range tris {
		assert.True(t, tri.Area() > 0)
		sum += tri.Area()
	}
	assert.InDelta(t, 1, sum, 1.e-12)
}
