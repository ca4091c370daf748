package mortar

import (
	"fmt"
	"os"
)

// writeGaussPointCSV streams the integrated Gauss points for external
// inspection: one line per point with its location, weight and the target
// shape function values.
func writeGaussPointCSV(path string, gps []gpSample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	fmt.Fprintln(f, "elem,patch,u,v,xi,eta,weight,measure,targetDofs,targetValues")
	for _, gp := range gps {
		fmt.Fprintf(f, "%d,%d,%.16g,%.16g,%.16g,%.16g,%.16g,%.16g,", gp.Elem, gp.Patch,
			gp.U, gp.V, gp.Xi, gp.Eta, gp.Weight, gp.Measure)
		for i, d := range gp.TargetDofs {
			if i > 0 {
				fmt.Fprint(f, ";")
			}
			fmt.Fprintf(f, "%d", d)
		}
		fmt.Fprint(f, ",")
		for i, v := range gp.TargetValues {
			if i > 0 {
				fmt.Fprint(f, ";")
			}
			fmt.Fprintf(f, "%.16g", v)
		}
		fmt.Fprintln(f)
	}
	return nil
}

// writePolygonVTK dumps the integrated parametric fragments mapped back to
// Cartesian space as VTK polydata.
func (m *Mapper) writePolygonVTK(path string, polys []taggedPolygon) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var numPoints, cellSize int
	for _, tp := range polys {
		numPoints += len(tp.Polygon)
		cellSize += len(tp.Polygon) + 1
	}
	fmt.Fprintln(f, "# vtk DataFile Version 2.0")
	fmt.Fprintln(f, "integrated mortar fragments")
	fmt.Fprintln(f, "ASCII")
	fmt.Fprintln(f, "DATASET POLYDATA")
	fmt.Fprintf(f, "POINTS %d double\n", numPoints)
	for _, tp := range polys {
		p := m.collection.Patches[tp.Patch]
		for _, vtx := range tp.Polygon {
			pos := p.EvaluatePoint(vtx.X, vtx.Y)
			fmt.Fprintf(f, "%.16g %.16g %.16g\n", pos[0], pos[1], pos[2])
		}
	}
	fmt.Fprintf(f, "POLYGONS %d %d\n", len(polys), cellSize)
	var offset int
	for _, tp := range polys {
		fmt.Fprintf(f, "%d", len(tp.Polygon))
		for i := range tp.Polygon {
			fmt.Fprintf(f, " %d", offset+i)
		}
		fmt.Fprintln(f)
		offset += len(tp.Polygon)
	}
	fmt.Fprintf(f, "CELL_DATA %d\n", len(polys))
	fmt.Fprintln(f, "SCALARS patch int 1")
	fmt.Fprintln(f, "LOOKUP_TABLE default")
	for _, tp := range polys {
		fmt.Fprintf(f, "%d\n", tp.Patch)
	}
	return nil
}

// writeProjectedNodes reports every node's accepted projections.
func (m *Mapper) writeProjectedNodes(path string, recs *projectionRecords) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	fmt.Fprintln(f, "nodeID,patch,u,v,distance")
	for i, perPatch := range recs.perNode {
		for pi, rec := range perPatch {
			fmt.Fprintf(f, "%d,%d,%.16g,%.16g,%.16g\n", m.mesh.NodeIDs[i], pi, rec.U, rec.V, rec.Distance)
		}
	}
	return nil
}
