package mortar

import "runtime"

// Direction selects which side receives the mapped field. The target side
// owns the square operator Cnn; the source side feeds the cross operator Cnr.
type Direction int

const (
	// IGAToFE maps control point fields onto mesh nodes.
	IGAToFE Direction = iota
	// FEToIGA maps mesh node fields onto control points.
	FEToIGA
)

// Params collects every tuning knob of the mapping build. Zero values are
// replaced by the documented defaults in Validate.
type Params struct {
	Direction Direction

	// Projection stage
	MaxProjectionDistance      float64
	NumRefinementSamples       int
	MaxDistanceForMultiPatches float64

	// Newton-Raphson point projection
	NewtonMaxIter int
	NewtonTol     float64

	// Boundary projection
	BoundaryNewtonMaxIter int
	BoundaryNewtonTol     float64
	BisectionMaxIter      int
	BisectionTol          float64

	// Quadrature
	NumGPTriangle   int
	NumGPQuadPerDir int

	// Weak patch continuity
	NumGPContinuity   int
	AutoPenalty       bool
	DispPenalty       float64
	RotPenalty        float64
	EnforceRotPenalty bool

	// Dirichlet conditioning
	EnforceDirichlet bool
	ConstrainedDofs  []int

	// Assembly concurrency
	NumWorkers int

	// Diagnostics
	GaussPointCSV  string
	PolygonVTK     string
	ProjectedNodes string
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		Direction:                  IGAToFE,
		MaxProjectionDistance:      0.1,
		NumRefinementSamples:       10,
		MaxDistanceForMultiPatches: 1.e-3,
		NewtonMaxIter:              20,
		NewtonTol:                  1.e-6,
		BoundaryNewtonMaxIter:      40,
		BoundaryNewtonTol:          1.e-6,
		BisectionMaxIter:           100,
		BisectionTol:               1.e-9,
		NumGPTriangle:              12,
		NumGPQuadPerDir:            5,
		NumGPContinuity:            10,
		AutoPenalty:                true,
		NumWorkers:                 runtime.NumCPU(),
	}
}

// Validate fills unset fields with defaults and rejects nonsense values.
func (p *Params) Validate() error {
	d := DefaultParams()
	if p.MaxProjectionDistance <= 0 {
		p.MaxProjectionDistance = d.MaxProjectionDistance
	}
	if p.NumRefinementSamples < 2 {
		p.NumRefinementSamples = d.NumRefinementSamples
	}
	if p.MaxDistanceForMultiPatches <= 0 {
		p.MaxDistanceForMultiPatches = d.MaxDistanceForMultiPatches
	}
	if p.NewtonMaxIter <= 0 {
		p.NewtonMaxIter = d.NewtonMaxIter
	}
	if p.NewtonTol <= 0 {
		p.NewtonTol = d.NewtonTol
	}
	if p.BoundaryNewtonMaxIter <= 0 {
		p.BoundaryNewtonMaxIter = d.BoundaryNewtonMaxIter
	}
	if p.BoundaryNewtonTol <= 0 {
		p.BoundaryNewtonTol = d.BoundaryNewtonTol
	}
	if p.BisectionMaxIter <= 0 {
		p.BisectionMaxIter = d.BisectionMaxIter
	}
	if p.BisectionTol <= 0 {
		p.BisectionTol = d.BisectionTol
	}
	if p.NumGPTriangle <= 0 {
		p.NumGPTriangle = d.NumGPTriangle
	}
	if p.NumGPQuadPerDir <= 0 {
		p.NumGPQuadPerDir = d.NumGPQuadPerDir
	}
	if p.NumGPContinuity <= 0 {
		p.NumGPContinuity = d.NumGPContinuity
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = d.NumWorkers
	}
	if p.EnforceDirichlet && len(p.ConstrainedDofs) == 0 {
		return &ConfigurationError{Reason: "Dirichlet enforcement requested with no constrained dofs"}
	}
	if !p.AutoPenalty && p.DispPenalty < 0 {
		return &ConfigurationError{Reason: "negative displacement penalty"}
	}
	return nil
}
