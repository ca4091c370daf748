package mortar

import (
	"fmt"

	"github.com/structmech/gomortar/geometry2D"
	"github.com/structmech/gomortar/patch"
)

// vertexMergeTol cleans raw element polygons; knotSpanTol guards the span
// clipper against zero-width fragments.
const (
	vertexMergeTol   = 1.e-6
	fragmentCleanTol = 1.e-8
	knotSpanTol      = 1.e-9
)

// classifyElement reports how many corners of element e carry a record for
// the patch. Full coverage yields the polygon directly; partial coverage
// needs boundary reconstruction.
func (m *Mapper) classifyElement(nodes []int, patchIdx int, recs *projectionRecords) (inside int) {
	for _, n := range nodes {
		if _, ok := recs.record(n, patchIdx); ok {
			inside++
		}
	}
	return
}

// buildElementPolygon reconstructs the parametric polygon of element e on the
// given patch, in element corner order. For split elements, outside corners
// are recovered by boundary projection along the crossing edges, extrapolated
// through the boundary hit; when both neighbors of an outside corner are
// inside, the two extrapolation lines are intersected to pin the corner.
// A nil polygon with nil error means the pair was skipped (trimmed patch or
// degenerate edge-only contact).
func (m *Mapper) buildElementPolygon(e int, patchIdx int, nodes []int, recs *projectionRecords) (geometry2D.Polygon, error) {
	var (
		p      = m.collection.Patches[patchIdx]
		n      = len(nodes)
		inside = m.classifyElement(nodes, patchIdx, recs)
	)
	if inside == n {
		pg := make(geometry2D.Polygon, n)
		for k, node := range nodes {
			rec, _ := recs.record(node, patchIdx)
			pg[k] = geometry2D.Point{X: rec.U, Y: rec.V}
		}
		return pg, nil
	}
	return m.buildBoundaryPolygon(e, p, patchIdx, nodes, recs)
}

func (m *Mapper) buildBoundaryPolygon(e int, p *patch.Patch, patchIdx int, nodes []int, recs *projectionRecords) (geometry2D.Polygon, error) {
	var (
		n      = len(nodes)
		inside = m.classifyElement(nodes, patchIdx, recs)
		prm    = patch.BoundaryParams{
			Newton:           patch.NewtonParams{MaxIter: m.params.BoundaryNewtonMaxIter, Tol: m.params.BoundaryNewtonTol},
			BisectionMaxIter: m.params.BisectionMaxIter,
			BisectionTol:     m.params.BisectionTol,
		}
		pg   = make(geometry2D.Polygon, n)
		fail = func() (geometry2D.Polygon, error) {
			if inside < 3 {
				// Contact along a single edge or corner; the overlap is
				// degenerate and there is nothing to integrate.
				return nil, nil
			}
			if p.IsTrimmed() {
				fmt.Printf("warning: skipping element %d on trimmed patch %d: boundary reconstruction failed\n", e, patchIdx)
				return nil, nil
			}
			return nil, &BoundaryReconstructionError{Element: e, Patch: patchIdx}
		}
	)
	// extrapolate walks from an inside corner through the boundary hit of
	// the edge towards the outside corner.
	extrapolate := func(insideNode, outsideNode int) (geometry2D.Point, bool) {
		rec, ok := recs.record(insideNode, patchIdx)
		if !ok {
			return geometry2D.Point{}, false
		}
		var (
			P1 = m.mesh.NodeCoord(insideNode)
			P2 = m.mesh.NodeCoord(outsideNode)
		)
		br := p.ProjectLineOnBoundary(P1, P2, rec.U, rec.V, prm)
		if !br.Converged || br.Div <= m.params.BisectionTol {
			return geometry2D.Point{}, false
		}
		return geometry2D.Point{
			X: rec.U + (br.U-rec.U)/br.Div,
			Y: rec.V + (br.V-rec.V)/br.Div,
		}, true
	}

	for k, node := range nodes {
		if rec, ok := recs.record(node, patchIdx); ok {
			pg[k] = geometry2D.Point{X: rec.U, Y: rec.V}
			continue
		}
		var (
			prev = nodes[(k+n-1)%n]
			next = nodes[(k+1)%n]
			cand []geometry2D.Point
			rays [][2]geometry2D.Point
		)
		for _, nb := range []int{prev, next} {
			if rec, ok := recs.record(nb, patchIdx); ok {
				if pt, ok2 := extrapolate(nb, node); ok2 {
					cand = append(cand, pt)
					rays = append(rays, [2]geometry2D.Point{{X: rec.U, Y: rec.V}, pt})
				}
			}
		}
		switch len(cand) {
		case 2:
			// Corner sits where the two extrapolation lines cross
			if ip, _, _, ok := geometry2D.SegmentIntersection(rays[0][0], rays[0][1], rays[1][0], rays[1][1]); ok {
				pg[k] = ip
			} else {
				pg[k] = geometry2D.Point{X: 0.5 * (cand[0].X + cand[1].X), Y: 0.5 * (cand[0].Y + cand[1].Y)}
			}
		case 1:
			pg[k] = cand[0]
		default:
			// Rescue scan: try the remaining inside corners of the element
			var found bool
			for _, other := range nodes {
				if other == node {
					continue
				}
				if _, ok := recs.record(other, patchIdx); !ok {
					continue
				}
				if pt, ok := extrapolate(other, node); ok {
					pg[k] = pt
					found = true
					break
				}
			}
			if !found {
				return fail()
			}
		}
	}
	// Edge-only contact echoes the inside records back through the boundary
	// hits, leaving fewer than three distinct corners; nothing to integrate.
	if len(pg.Clean(vertexMergeTol)) < 3 {
		return nil, nil
	}
	return pg, nil
}
