package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/structmech/gomortar/mortar"
)

// Parameters obtained from the YAML input file
type MappingParameters struct {
	Title                      string  `yaml:"Title"`
	GeometryFile               string  `yaml:"GeometryFile"`
	MeshFile                   string  `yaml:"MeshFile"`
	Direction                  string  `yaml:"Direction"` // IGAToFE or FEToIGA
	MaxProjectionDistance      float64 `yaml:"MaxProjectionDistance"`
	NumRefinementSamples       int     `yaml:"NumRefinementSamples"`
	MaxDistanceForMultiPatches float64 `yaml:"MaxDistanceForMultiPatches"`
	NewtonMaxIter              int     `yaml:"NewtonMaxIter"`
	NewtonTol                  float64 `yaml:"NewtonTol"`
	BoundaryNewtonMaxIter      int     `yaml:"BoundaryNewtonMaxIter"`
	BoundaryNewtonTol          float64 `yaml:"BoundaryNewtonTol"`
	BisectionMaxIter           int     `yaml:"BisectionMaxIter"`
	BisectionTol               float64 `yaml:"BisectionTol"`
	GaussPointsTriangle        int     `yaml:"GaussPointsTriangle"`
	GaussPointsQuadPerDir      int     `yaml:"GaussPointsQuadPerDir"`
	GaussPointsContinuity      int     `yaml:"GaussPointsContinuity"`
	AutoPenalty                *bool   `yaml:"AutoPenalty"`
	DispPenalty                float64 `yaml:"DispPenalty"`
	RotPenalty                 float64 `yaml:"RotPenalty"`
	EnforceRotPenalty          bool    `yaml:"EnforceRotPenalty"`
	EnforceDirichlet           bool    `yaml:"EnforceDirichlet"`
	ConstrainedDofs            []int   `yaml:"ConstrainedDofs"`
	NumWorkers                 int     `yaml:"NumWorkers"`
	GaussPointCSV              string  `yaml:"GaussPointCSV"`
	PolygonVTK                 string  `yaml:"PolygonVTK"`
	ProjectedNodes             string  `yaml:"ProjectedNodes"`
}

func (mp *MappingParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, mp)
}

func (mp *MappingParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", mp.Title)
	fmt.Printf("[%s]\t\t= GeometryFile\n", mp.GeometryFile)
	fmt.Printf("[%s]\t\t= MeshFile\n", mp.MeshFile)
	fmt.Printf("[%s]\t\t= Direction\n", mp.Direction)
	fmt.Printf("%8.5g\t\t= MaxProjectionDistance\n", mp.MaxProjectionDistance)
	fmt.Printf("[%d]\t\t\t= NumRefinementSamples\n", mp.NumRefinementSamples)
	fmt.Printf("%8.5g\t\t= MaxDistanceForMultiPatches\n", mp.MaxDistanceForMultiPatches)
	fmt.Printf("[%d]\t\t\t= GaussPointsTriangle\n", mp.GaussPointsTriangle)
	fmt.Printf("[%d]\t\t\t= GaussPointsQuadPerDir\n", mp.GaussPointsQuadPerDir)
	fmt.Printf("[%t]\t\t= EnforceDirichlet\n", mp.EnforceDirichlet)
}

// MortarParams translates the file values into the engine parameter set,
// leaving defaults in place for anything unset.
func (mp *MappingParameters) MortarParams() (p mortar.Params, err error) {
	p = mortar.DefaultParams()
	switch mp.Direction {
	case "", "IGAToFE":
		p.Direction = mortar.IGAToFE
	case "FEToIGA":
		p.Direction = mortar.FEToIGA
	default:
		err = fmt.Errorf("unknown mapping direction %q", mp.Direction)
		return
	}
	if mp.MaxProjectionDistance > 0 {
		p.MaxProjectionDistance = mp.MaxProjectionDistance
	}
	if mp.NumRefinementSamples > 0 {
		p.NumRefinementSamples = mp.NumRefinementSamples
	}
	if mp.MaxDistanceForMultiPatches > 0 {
		p.MaxDistanceForMultiPatches = mp.MaxDistanceForMultiPatches
	}
	if mp.NewtonMaxIter > 0 {
		p.NewtonMaxIter = mp.NewtonMaxIter
	}
	if mp.NewtonTol > 0 {
		p.NewtonTol = mp.NewtonTol
	}
	if mp.BoundaryNewtonMaxIter > 0 {
		p.BoundaryNewtonMaxIter = mp.BoundaryNewtonMaxIter
	}
	if mp.BoundaryNewtonTol > 0 {
		p.BoundaryNewtonTol = mp.BoundaryNewtonTol
	}
	if mp.BisectionMaxIter > 0 {
		p.BisectionMaxIter = mp.BisectionMaxIter
	}
	if mp.BisectionTol > 0 {
		p.BisectionTol = mp.BisectionTol
	}
	if mp.GaussPointsTriangle > 0 {
		p.NumGPTriangle = mp.GaussPointsTriangle
	}
	if mp.GaussPointsQuadPerDir > 0 {
		p.NumGPQuadPerDir = mp.GaussPointsQuadPerDir
	}
	if mp.GaussPointsContinuity > 0 {
		p.NumGPContinuity = mp.GaussPointsContinuity
	}
	if mp.AutoPenalty != nil {
		p.AutoPenalty = *mp.AutoPenalty
	}
	p.DispPenalty = mp.DispPenalty
	p.RotPenalty = mp.RotPenalty
	p.EnforceRotPenalty = mp.EnforceRotPenalty
	p.EnforceDirichlet = mp.EnforceDirichlet
	p.ConstrainedDofs = mp.ConstrainedDofs
	if mp.NumWorkers > 0 {
		p.NumWorkers = mp.NumWorkers
	}
	p.GaussPointCSV = mp.GaussPointCSV
	p.PolygonVTK = mp.PolygonVTK
	p.ProjectedNodes = mp.ProjectedNodes
	return
}
