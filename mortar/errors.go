package mortar

import "fmt"

// ConfigurationError reports inconsistent inputs detected before any
// geometric work. Always fatal.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// ProjectionError reports a mesh node that no patch could resolve after both
// projection passes. Fatal: no valid geometric mapping exists.
type ProjectionError struct {
	NodeID int
	Coords [3]float64
	Reason string
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("projection of node %d at (%g, %g, %g) failed: %s",
		e.NodeID, e.Coords[0], e.Coords[1], e.Coords[2], e.Reason)
}

// BoundaryReconstructionError reports an element/patch pair whose boundary
// polygon could not be reconstructed on an untrimmed patch, which indicates a
// defect rather than a geometry limitation. On trimmed patches the pair is
// skipped with a warning instead.
type BoundaryReconstructionError struct {
	Element int
	Patch   int
}

func (e *BoundaryReconstructionError) Error() string {
	return fmt.Sprintf("boundary reconstruction of element %d on untrimmed patch %d failed", e.Element, e.Patch)
}

// ConsistencyError reports a coupling operator that still violates the
// partition-of-unity check after diagonal correction. The operator is judged
// invalid.
type ConsistencyError struct {
	Norm float64
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency check failed after correction: unity norm %g", e.Norm)
}

// AssemblyError reports that no element produced any integrated overlap.
type AssemblyError struct {
	Reason string
}

func (e *AssemblyError) Error() string {
	return "assembly error: " + e.Reason
}
