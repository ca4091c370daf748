package mesh

import "fmt"

// CounterpartMesh is the discrete element side of the mapping: flat node
// coordinates, mixed triangle/quad connectivity and the lookup tables built
// once at ingestion. Read-only afterwards.
type CounterpartMesh struct {
	// NodeCoords is the flat [3*numNodes] coordinate array.
	NodeCoords []float64
	// NodeIDs are the external node identifiers, parallel to NodeCoords.
	NodeIDs []int
	// NumNodesPerElem holds 3 or 4 per element.
	NumNodesPerElem []int
	// ElemTable is the flat connectivity in external node ids.
	ElemTable []int

	nodeIndex   map[int]int
	elemOffsets []int
	nodeToElems [][]int
}

// NewCounterpartMesh validates the connectivity and builds the direct node
// table and the node-to-element adjacency.
func NewCounterpartMesh(nodeCoords []float64, nodeIDs []int, numNodesPerElem, elemTable []int) (m *CounterpartMesh, err error) {
	if len(nodeCoords) != 3*len(nodeIDs) {
		err = fmt.Errorf("node coordinate array length %d does not match %d node ids", len(nodeCoords), len(nodeIDs))
		return
	}
	m = &CounterpartMesh{
		NodeCoords:      nodeCoords,
		NodeIDs:         nodeIDs,
		NumNodesPerElem: numNodesPerElem,
		ElemTable:       elemTable,
		nodeIndex:       make(map[int]int, len(nodeIDs)),
	}
	for i, id := range nodeIDs {
		if _, dup := m.nodeIndex[id]; dup {
			return nil, fmt.Errorf("duplicate node id %d", id)
		}
		m.nodeIndex[id] = i
	}
	m.elemOffsets = make([]int, len(numNodesPerElem)+1)
	for e, n := range numNodesPerElem {
		if n != 3 && n != 4 {
			return nil, fmt.Errorf("element %d has %d nodes, only 3 or 4 supported", e, n)
		}
		m.elemOffsets[e+1] = m.elemOffsets[e] + n
	}
	if m.elemOffsets[len(numNodesPerElem)] != len(elemTable) {
		return nil, fmt.Errorf("connectivity length %d does not match per-element node counts", len(elemTable))
	}
	m.nodeToElems = make([][]int, len(nodeIDs))
	for e := range numNodesPerElem {
		for _, id := range m.ElemNodes(e) {
			i, ok := m.nodeIndex[id]
			if !ok {
				return nil, fmt.Errorf("element %d references unknown node id %d", e, id)
			}
			m.nodeToElems[i] = append(m.nodeToElems[i], e)
		}
	}
	return
}

func (m *CounterpartMesh) NumNodes() int    { return len(m.NodeIDs) }
func (m *CounterpartMesh) NumElements() int { return len(m.NumNodesPerElem) }

// NodeIndex resolves an external node id to its local index.
func (m *CounterpartMesh) NodeIndex(id int) (int, error) {
	i, ok := m.nodeIndex[id]
	if !ok {
		return 0, fmt.Errorf("unknown node id %d", id)
	}
	return i, nil
}

// ElemNodes returns the external node ids of element e.
func (m *CounterpartMesh) ElemNodes(e int) []int {
	return m.ElemTable[m.elemOffsets[e]:m.elemOffsets[e+1]]
}

// NodeCoord returns the Cartesian position of local node i.
func (m *CounterpartMesh) NodeCoord(i int) [3]float64 {
	return [3]float64{m.NodeCoords[3*i], m.NodeCoords[3*i+1], m.NodeCoords[3*i+2]}
}

// ElemsOfNode returns the elements adjacent to local node i.
func (m *CounterpartMesh) ElemsOfNode(i int) []int { return m.nodeToElems[i] }
