package mortar

import (
	"fmt"
	"sync"

	"github.com/structmech/gomortar/geometry2D"
	"github.com/structmech/gomortar/patch"
	"github.com/structmech/gomortar/quadrature"
	"github.com/structmech/gomortar/utils"
)

// gpSample is one integrated Gauss point, kept only when the diagnostic
// stream is enabled.
type gpSample struct {
	Elem, Patch  int
	U, V         float64
	Xi, Eta      float64
	Weight       float64
	Measure      float64
	TargetDofs   []int
	TargetValues []float64
}

// taggedPolygon is an integrated fragment kept for the VTK dump.
type taggedPolygon struct {
	Patch   int
	Polygon geometry2D.Polygon
}

// elemResult is one element's contribution, collected per worker and merged
// at finalize.
type elemResult struct {
	elem     int
	cnn, cnr []utils.Triplet
	area     float64
	polys    []taggedPolygon
	gps      []gpSample
	err      error
}

// assemble integrates every element/patch overlap into the coupling
// operators. Elements are processed concurrently; each worker emits triplets
// merged sequentially, so only summation order is non-deterministic.
func (m *Mapper) assemble(recs *projectionRecords, op *CouplingOperator) error {
	var (
		numElems = m.mesh.NumElements()
		jobs     = make(chan int, numElems)
		results  = make(chan elemResult, numElems)
		wg       sync.WaitGroup
	)
	for w := 0; w < m.params.NumWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range jobs {
				results <- m.integrateElement(e, recs)
			}
		}()
	}
	for e := 0; e < numElems; e++ {
		jobs <- e
	}
	close(jobs)
	wg.Wait()
	close(results)

	var (
		totalArea float64
		uncovered []int
		polys     []taggedPolygon
		gps       []gpSample
	)
	for res := range results {
		if res.err != nil {
			return res.err
		}
		op.Cnn.AccumulateTriplets(res.cnn)
		op.Cnr.AccumulateTriplets(res.cnr)
		totalArea += res.area
		if res.area == 0 {
			uncovered = append(uncovered, res.elem)
		}
		polys = append(polys, res.polys...)
		gps = append(gps, res.gps...)
	}
	if totalArea == 0 {
		return &AssemblyError{Reason: "no element produced any integrated overlap"}
	}
	if len(uncovered) > 0 {
		fmt.Printf("warning: %d elements produced no integrated overlap: %v\n", len(uncovered), uncovered)
	}
	fmt.Printf("assembly: integrated physical area %.6g over %d elements\n", totalArea, numElems)
	if m.params.GaussPointCSV != "" {
		if err := writeGaussPointCSV(m.params.GaussPointCSV, gps); err != nil {
			fmt.Printf("warning: gauss point stream: %v\n", err)
		}
	}
	if m.params.PolygonVTK != "" {
		if err := m.writePolygonVTK(m.params.PolygonVTK, polys); err != nil {
			fmt.Printf("warning: polygon dump: %v\n", err)
		}
	}
	return nil
}

// integrateElement runs the clipping pipeline and quadrature for one element
// against every patch it overlaps.
func (m *Mapper) integrateElement(e int, recs *projectionRecords) (res elemResult) {
	res.elem = e
	nodes := m.elemLocalNodes(e)
	patchSet := make(map[int]bool)
	for _, n := range nodes {
		for pi := range recs.perNode[n] {
			patchSet[pi] = true
		}
	}
	for pi := range patchSet {
		if err := m.integrateElementOnPatch(e, pi, nodes, recs, &res); err != nil {
			res.err = err
			return
		}
	}
	return
}

func (m *Mapper) integrateElementOnPatch(e, pi int, nodes []int, recs *projectionRecords, res *elemResult) error {
	var (
		p = m.collection.Patches[pi]
	)
	elemPoly, err := m.buildElementPolygon(e, pi, nodes, recs)
	if err != nil {
		return err
	}
	if elemPoly == nil {
		return nil // skipped pair, trimmed or degenerate contact
	}
	u0, u1, v0, v1 := p.Domain()
	clipped := geometry2D.ClipRect(elemPoly, geometry2D.Rect{U0: u0, V0: v0, U1: u1, V1: v1})
	clipped = clipped.Clean(vertexMergeTol)
	if len(clipped) < 3 {
		return nil
	}
	subs := []geometry2D.Polygon{clipped}
	if p.IsTrimmed() {
		loops := make([]geometry2D.Polygon, len(p.Loops))
		for i, lp := range p.Loops {
			loops[i] = make(geometry2D.Polygon, len(lp.Vertices))
			for j, vtx := range lp.Vertices {
				loops[i][j] = geometry2D.Point{X: vtx[0], Y: vtx[1]}
			}
		}
		subs = geometry2D.ClipLoops(clipped, loops)
	}
	for _, sub := range subs {
		m.clipByKnotSpans(e, pi, p, sub, elemPoly, nodes, res)
	}
	return nil
}

// clipByKnotSpans splits a sub-polygon along the tensor-product knot grid so
// every fragment lies in a single span, then integrates the fragments.
func (m *Mapper) clipByKnotSpans(e, pi int, p *patch.Patch, sub geometry2D.Polygon, elemPoly geometry2D.Polygon, nodes []int, res *elemResult) {
	var (
		bounds   = sub.Bounds()
		uKnots   = p.Basis.UKnots()
		vKnots   = p.Basis.VKnots()
		pDeg, qD = p.Basis.Degrees()
		nu, nv   = p.Basis.NumBasis()
	)
	for sv := qD; sv < nv; sv++ {
		if vKnots[sv+1]-vKnots[sv] < knotSpanTol {
			continue
		}
		if vKnots[sv+1] < bounds.V0 || vKnots[sv] > bounds.V1 {
			continue
		}
		for su := pDeg; su < nu; su++ {
			if uKnots[su+1]-uKnots[su] < knotSpanTol {
				continue
			}
			if uKnots[su+1] < bounds.U0 || uKnots[su] > bounds.U1 {
				continue
			}
			frag := geometry2D.ClipRect(sub, geometry2D.Rect{
				U0: uKnots[su], V0: vKnots[sv], U1: uKnots[su+1], V1: vKnots[sv+1],
			})
			frag = frag.Clean(fragmentCleanTol)
			if len(frag) < 3 {
				continue
			}
			pieces := []geometry2D.Polygon{frag}
			if len(frag) > 4 {
				pieces = geometry2D.Triangulate(frag)
			}
			for _, piece := range pieces {
				m.integrateFragment(e, pi, p, piece, elemPoly, nodes, su, sv, res)
			}
		}
	}
}

// integrateFragment maps one span-tagged fragment into the element's
// canonical coordinates and accumulates the quadrature contributions.
func (m *Mapper) integrateFragment(e, pi int, p *patch.Patch, frag, elemPoly geometry2D.Polygon, nodes []int, spanU, spanV int, res *elemResult) {
	canon, ok := m.canonicalFragment(frag, elemPoly, len(nodes))
	if !ok {
		return
	}
	var (
		isTri = len(frag) == 3
		rule  = m.quadRule
	)
	if isTri {
		rule = m.triRule
	}
	var (
		igaIdx  = p.Basis.LocalNetIndices(spanU, spanV)
		igaDofs = make([]int, len(igaIdx))
	)
	for i, id := range igaIdx {
		igaDofs[i] = p.Net[id].DofIndex
	}
	logged := m.params.GaussPointCSV != ""
	for g, gp := range rule.Points {
		var (
			uv, cpt  [2]float64
			fragJac  float64
		)
		if isTri {
			tv := [3][2]float64{{frag[0].X, frag[0].Y}, {frag[1].X, frag[1].Y}, {frag[2].X, frag[2].Y}}
			cv := [3][2]float64{canon[0], canon[1], canon[2]}
			uv = quadrature.MapTriangle(tv, gp[0], gp[1])
			cpt = quadrature.MapTriangle(cv, gp[0], gp[1])
			fragJac = quadrature.JacobianTriangle(tv)
		} else {
			tv := [4][2]float64{{frag[0].X, frag[0].Y}, {frag[1].X, frag[1].Y}, {frag[2].X, frag[2].Y}, {frag[3].X, frag[3].Y}}
			cv := [4][2]float64{canon[0], canon[1], canon[2], canon[3]}
			uv = quadrature.MapQuad(tv, gp[0], gp[1])
			cpt = quadrature.MapQuad(cv, gp[0], gp[1])
			fragJac = quadrature.JacobianQuad(tv, gp[0], gp[1])
		}
		// Clamp roundoff drift back into the span
		clampInto(&uv[0], p.Basis.UKnots()[spanU], p.Basis.UKnots()[spanU+1])
		clampInto(&uv[1], p.Basis.VKnots()[spanV], p.Basis.VKnots()[spanV+1])

		var feVals []float64
		if len(nodes) == 3 {
			s := quadrature.ShapeFuncsTriangle(cpt[0], cpt[1])
			feVals = s[:]
		} else {
			s := quadrature.ShapeFuncsQuad(cpt[0], cpt[1])
			feVals = s[:]
		}
		igaVals := p.Basis.Evaluate(spanU, spanV, uv[0], uv[1])
		_, g1, g2 := p.BaseVectorsAtSpan(spanU, spanV, uv[0], uv[1])
		surfJac := 2 * utils.AreaTriangle(g1[0], g1[1], g1[2], g2[0], g2[1], g2[2])
		measure := rule.Weights[g] * fragJac * surfJac
		if measure == 0 {
			continue
		}

		var tVals, sVals []float64
		var tDofs, sDofs []int
		if m.params.Direction == IGAToFE {
			tVals, tDofs = feVals, nodes
			sVals, sDofs = igaVals, igaDofs
		} else {
			tVals, tDofs = igaVals, igaDofs
			sVals, sDofs = feVals, nodes
		}
		for i := range tVals {
			for j := i; j < len(tVals); j++ {
				val := tVals[i] * tVals[j] * measure
				res.cnn = append(res.cnn, utils.Triplet{Row: tDofs[i], Col: tDofs[j], Val: val})
				if i != j {
					res.cnn = append(res.cnn, utils.Triplet{Row: tDofs[j], Col: tDofs[i], Val: val})
				}
			}
			for j := range sVals {
				res.cnr = append(res.cnr, utils.Triplet{
					Row: tDofs[i], Col: sDofs[j], Val: tVals[i] * sVals[j] * measure,
				})
			}
		}
		res.area += measure
		if logged {
			res.gps = append(res.gps, gpSample{
				Elem: e, Patch: pi,
				U: uv[0], V: uv[1], Xi: cpt[0], Eta: cpt[1],
				Weight: rule.Weights[g], Measure: measure,
				TargetDofs: tDofs, TargetValues: tVals,
			})
		}
	}
	if m.params.PolygonVTK != "" {
		res.polys = append(res.polys, taggedPolygon{Patch: pi, Polygon: frag})
	}
}

// canonicalFragment maps fragment vertices into the element's reference
// coordinates through the inverse of the projected element polygon.
func (m *Mapper) canonicalFragment(frag, elemPoly geometry2D.Polygon, elemNodes int) (canon [][2]float64, ok bool) {
	canon = make([][2]float64, len(frag))
	if elemNodes == 3 {
		tv := [3][2]float64{
			{elemPoly[0].X, elemPoly[0].Y},
			{elemPoly[1].X, elemPoly[1].Y},
			{elemPoly[2].X, elemPoly[2].Y},
		}
		for i, v := range frag {
			xi, eta, solved := quadrature.LocalCoordsTriangle(tv, [2]float64{v.X, v.Y})
			if !solved {
				return nil, false
			}
			canon[i] = [2]float64{xi, eta}
		}
	} else {
		qv := [4][2]float64{
			{elemPoly[0].X, elemPoly[0].Y},
			{elemPoly[1].X, elemPoly[1].Y},
			{elemPoly[2].X, elemPoly[2].Y},
			{elemPoly[3].X, elemPoly[3].Y},
		}
		for i, v := range frag {
			xi, eta, solved := quadrature.LocalCoordsQuad(qv, [2]float64{v.X, v.Y}, 1.e-12, 20)
			if !solved {
				return nil, false
			}
			canon[i] = [2]float64{xi, eta}
		}
	}
	ok = true
	return
}

func clampInto(x *float64, lo, hi float64) {
	if *x < lo {
		*x = lo
	}
	if *x > hi {
		*x = hi
	}
}
