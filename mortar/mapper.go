package mortar

import (
	"fmt"

	"github.com/structmech/gomortar/mesh"
	"github.com/structmech/gomortar/patch"
	"github.com/structmech/gomortar/quadrature"
)

// Mapper builds the coupling operators between a patch collection and a
// counterpart mesh. Geometry is referenced, never copied; the mapper is
// single-use, one BuildCouplingMatrices per instance.
type Mapper struct {
	collection *patch.Collection
	mesh       *mesh.CounterpartMesh
	params     Params

	triRule, quadRule quadrature.Rule
}

// NewMapper validates parameters and prepares the fixed quadrature rules.
func NewMapper(c *patch.Collection, msh *mesh.CounterpartMesh, params Params) (m *Mapper, err error) {
	if err = params.Validate(); err != nil {
		return
	}
	if c == nil || len(c.Patches) == 0 {
		err = &ConfigurationError{Reason: "empty patch collection"}
		return
	}
	if msh == nil || msh.NumElements() == 0 {
		err = &ConfigurationError{Reason: "empty counterpart mesh"}
		return
	}
	m = &Mapper{collection: c, mesh: msh, params: params}
	if m.triRule, err = quadrature.NewTriangleRule(params.NumGPTriangle); err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}
	if m.quadRule, err = quadrature.NewQuadRule(params.NumGPQuadPerDir); err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}
	return
}

// numTargetDofs and numSourceDofs follow the mapping direction: the target
// side owns Cnn.
func (m *Mapper) numTargetDofs() int {
	if m.params.Direction == IGAToFE {
		return m.mesh.NumNodes()
	}
	return m.collection.NumDofs()
}

func (m *Mapper) numSourceDofs() int {
	if m.params.Direction == IGAToFE {
		return m.collection.NumDofs()
	}
	return m.mesh.NumNodes()
}

// BuildCouplingMatrices runs the full pipeline: projection, clipping and
// integration, optional weak patch continuity, conditioning, factorization
// and the partition-of-unity self-check.
func (m *Mapper) BuildCouplingMatrices() (op *CouplingOperator, err error) {
	recs, err := m.projectNodes()
	if err != nil {
		return
	}
	if m.params.ProjectedNodes != "" {
		if werr := m.writeProjectedNodes(m.params.ProjectedNodes, recs); werr != nil {
			fmt.Printf("warning: projected node report: %v\n", werr)
		}
	}
	op = newCouplingOperator(m.numTargetDofs(), m.numSourceDofs())
	if err = m.assemble(recs, op); err != nil {
		return nil, err
	}
	if m.params.Direction == FEToIGA && len(m.collection.Conditions) > 0 {
		m.applyContinuityPenalties(op)
	}
	if m.params.EnforceDirichlet {
		op.eliminateDirichlet(m.params.ConstrainedDofs)
	}
	if err = op.finalize(); err != nil {
		return nil, err
	}
	return
}
