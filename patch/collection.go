package patch

import "fmt"

// ContinuityCondition stitches two patches weakly along a shared boundary
// curve. The curve is given per patch as a parametric segment; physical
// coincidence of the two segments is the modeler's responsibility.
type ContinuityCondition struct {
	MasterPatch, SlavePatch int
	// Segment endpoints in each patch's (u,v) space.
	MasterFrom, MasterTo [2]float64
	SlaveFrom, SlaveTo   [2]float64
}

// Collection owns the patches of one parametric surface side together with
// the weak continuity conditions between them. Downstream stages refer to
// patches by index.
type Collection struct {
	Patches    []*Patch
	Conditions []ContinuityCondition

	numDofs int
}

// NewCollection validates dof indexing and condition references. Control
// point dof indices must form a contiguous range starting at zero across the
// whole collection (shared seam control points may repeat an index).
func NewCollection(patches []*Patch, conditions []ContinuityCondition) (c *Collection, err error) {
	var maxDof = -1
	seen := make(map[int]bool)
	for _, p := range patches {
		for _, cp := range p.Net {
			if cp.DofIndex < 0 {
				err = fmt.Errorf("patch %d: negative dof index %d", p.ID, cp.DofIndex)
				return
			}
			seen[cp.DofIndex] = true
			if cp.DofIndex > maxDof {
				maxDof = cp.DofIndex
			}
		}
	}
	if len(seen) != maxDof+1 {
		err = fmt.Errorf("control point dof indices not contiguous: %d distinct, max %d", len(seen), maxDof)
		return
	}
	for i, cc := range conditions {
		if cc.MasterPatch < 0 || cc.MasterPatch >= len(patches) ||
			cc.SlavePatch < 0 || cc.SlavePatch >= len(patches) {
			err = fmt.Errorf("continuity condition %d references patch out of range", i)
			return
		}
	}
	c = &Collection{Patches: patches, Conditions: conditions, numDofs: maxDof + 1}
	return
}

// NumDofs is the total number of control point degrees of freedom.
func (c *Collection) NumDofs() int { return c.numDofs }

// CandidatePatches returns the indices of patches whose expanded bounding box
// contains pt.
func (c *Collection) CandidatePatches(pt [3]float64, tol float64) (idx []int) {
	for i, p := range c.Patches {
		if p.Box().ContainsExpanded(pt, tol) {
			idx = append(idx, i)
		}
	}
	return
}
