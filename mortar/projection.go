package mortar

import (
	"fmt"
	"math"
	"sort"

	"github.com/structmech/gomortar/patch"
)

// nodeRecord is one accepted projection of a mesh node onto a patch.
type nodeRecord struct {
	U, V     float64
	Distance float64
}

// projectionRecords maps every mesh node to its accepted (patch, parametric
// coordinate) correspondences. Seam nodes may carry several records.
type projectionRecords struct {
	perNode []map[int]nodeRecord
}

func (r *projectionRecords) record(node, patchIdx int) (nodeRecord, bool) {
	rec, ok := r.perNode[node][patchIdx]
	return rec, ok
}

func (r *projectionRecords) put(node, patchIdx int, rec nodeRecord) {
	if r.perNode[node] == nil {
		r.perNode[node] = make(map[int]nodeRecord)
	}
	r.perNode[node][patchIdx] = rec
}

// prune keeps the minimum-distance record of a node plus any others inside
// the multi-patch tolerance band, and logs a diagnostic when more than one
// survives.
func (r *projectionRecords) prune(node, nodeID int, band float64) {
	recs := r.perNode[node]
	if len(recs) < 2 {
		return
	}
	dmin := math.Inf(1)
	for _, rec := range recs {
		dmin = math.Min(dmin, rec.Distance)
	}
	for pi, rec := range recs {
		if rec.Distance > dmin+band {
			delete(recs, pi)
		}
	}
	if len(recs) > 1 {
		fmt.Printf("node %d retained on %d patches:", nodeID, len(recs))
		for pi, rec := range recs {
			fmt.Printf(" (patch %d, distance %.3e)", pi, rec.Distance)
		}
		fmt.Println()
	}
}

// projectNodes runs the two-pass projection stage of the build.
func (m *Mapper) projectNodes() (recs *projectionRecords, err error) {
	var (
		msh        = m.mesh
		numNodes   = msh.NumNodes()
		candidates = make([][]int, numNodes)
		attempted  = make([]map[int]bool, numNodes)
		prm        = patch.NewtonParams{MaxIter: m.params.NewtonMaxIter, Tol: m.params.NewtonTol}
	)
	recs = &projectionRecords{perNode: make([]map[int]nodeRecord, numNodes)}
	for i := 0; i < numNodes; i++ {
		candidates[i] = m.collection.CandidatePatches(msh.NodeCoord(i), m.params.MaxProjectionDistance)
		if len(candidates[i]) == 0 {
			return nil, &ProjectionError{
				NodeID: msh.NodeIDs[i],
				Coords: msh.NodeCoord(i),
				Reason: "outside every patch's expanded bounding box",
			}
		}
		attempted[i] = make(map[int]bool)
	}

	// Pass 1: element sweep so freshly projected siblings seed their
	// neighbors' initial guesses.
	for e := 0; e < msh.NumElements(); e++ {
		nodes := m.elemLocalNodes(e)
		for _, pi := range m.elemCandidatePatches(nodes, candidates) {
			var (
				p         = m.collection.Patches[pi]
				guess     nodeRecord
				haveGuess bool
			)
			for _, n := range nodes {
				if rec, ok := recs.record(n, pi); ok {
					guess, haveGuess = rec, true
				}
			}
			for _, n := range nodes {
				if _, done := recs.record(n, pi); done || attempted[n][pi] {
					continue
				}
				if !containsInt(candidates[n], pi) {
					continue
				}
				attempted[n][pi] = true
				var (
					coord  = msh.NodeCoord(n)
					u0, v0 float64
				)
				if haveGuess {
					u0, v0 = guess.U, guess.V
				} else {
					u0, v0 = p.GridInitialGuess(coord, m.params.NumRefinementSamples)
				}
				res := p.ProjectPoint(coord, u0, v0, prm)
				if res.Converged && res.Distance <= m.params.MaxProjectionDistance {
					rec := nodeRecord{U: res.U, V: res.V, Distance: res.Distance}
					recs.put(n, pi, rec)
					guess, haveGuess = rec, true
				}
			}
		}
	}
	var resolved int
	for i := 0; i < numNodes; i++ {
		if len(recs.perNode[i]) > 0 {
			recs.prune(i, msh.NodeIDs[i], m.params.MaxDistanceForMultiPatches)
			resolved++
		}
	}
	fmt.Printf("projection pass 1: %d/%d nodes resolved\n", resolved, numNodes)
	if resolved == numNodes {
		return
	}

	// Pass 2: relaxed tolerance from fresh grid guesses, then forced dense
	// grid search for anything left.
	relaxed := patch.NewtonParams{MaxIter: prm.MaxIter, Tol: prm.Tol * 10}
	for i := 0; i < numNodes; i++ {
		if len(recs.perNode[i]) > 0 {
			continue
		}
		coord := msh.NodeCoord(i)
		for _, pi := range candidates[i] {
			p := m.collection.Patches[pi]
			u0, v0 := p.GridInitialGuess(coord, m.params.NumRefinementSamples)
			res := p.ProjectPoint(coord, u0, v0, relaxed)
			if res.Converged && res.Distance <= m.params.MaxProjectionDistance {
				recs.put(i, pi, nodeRecord{U: res.U, V: res.V, Distance: res.Distance})
			}
		}
		if len(recs.perNode[i]) == 0 {
			var (
				best   patch.ProjectionResult
				bestPi = -1
			)
			best.Distance = math.Inf(1)
			for _, pi := range candidates[i] {
				res := m.collection.Patches[pi].ForceProject(coord, 200, relaxed)
				if res.Distance < best.Distance {
					best, bestPi = res, pi
				}
			}
			if bestPi < 0 || best.Distance > m.params.MaxProjectionDistance {
				return nil, &ProjectionError{
					NodeID: msh.NodeIDs[i],
					Coords: coord,
					Reason: "unresolved after relaxed and forced projection passes",
				}
			}
			fmt.Printf("node %d force-projected onto patch %d at distance %.3e\n",
				msh.NodeIDs[i], bestPi, best.Distance)
			recs.put(i, bestPi, nodeRecord{U: best.U, V: best.V, Distance: best.Distance})
		}
		recs.prune(i, msh.NodeIDs[i], m.params.MaxDistanceForMultiPatches)
	}
	return
}

// elemLocalNodes resolves an element's connectivity to local node indices.
func (m *Mapper) elemLocalNodes(e int) (nodes []int) {
	ids := m.mesh.ElemNodes(e)
	nodes = make([]int, len(ids))
	for k, id := range ids {
		i, err := m.mesh.NodeIndex(id)
		if err != nil {
			panic(err) // connectivity validated at ingestion
		}
		nodes[k] = i
	}
	return
}

// elemCandidatePatches is the union of the candidate patches of the
// element's nodes, in ascending order.
func (m *Mapper) elemCandidatePatches(nodes []int, candidates [][]int) (out []int) {
	seen := make(map[int]bool)
	for _, n := range nodes {
		for _, pi := range candidates[n] {
			if !seen[pi] {
				seen[pi] = true
				out = append(out, pi)
			}
		}
	}
	sort.Ints(out)
	return
}

func containsInt(s []int, x int) bool {
	for _, v := range s {
		if v == x {
			return true
		}
	}
	return false
}
