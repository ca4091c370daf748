/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/ghodss/yaml"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/structmech/gomortar/InputParameters"
	"github.com/structmech/gomortar/mortar"
	"github.com/structmech/gomortar/readfiles"
)

type MapRun struct {
	InputFile    string
	FieldFile    string
	OutputFile   string
	Conservative bool
	Profile      bool
}

// FieldFile carries the source-side field values, one per source dof.
type FieldFile struct {
	Values []float64 `yaml:"Values"`
}

// MapCmd represents the map command
var MapCmd = &cobra.Command{
	Use:   "map",
	Short: "Build the coupling matrices and map a field between the two sides",
	Long: `Build the coupling matrices for the patches and mesh named in the
input file, then map the field file's values across the interface. The
consistent mapping carries primary fields (displacements), the conservative
mapping carries dual fields (forces).`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			mr  = &MapRun{}
		)
		fmt.Println("map called")
		if mr.InputFile, err = cmd.Flags().GetString("inputFile"); err != nil {
			panic(err)
		}
		mr.FieldFile, _ = cmd.Flags().GetString("fieldFile")
		mr.OutputFile, _ = cmd.Flags().GetString("outputFile")
		mr.Conservative, _ = cmd.Flags().GetBool("conservative")
		mr.Profile, _ = cmd.Flags().GetBool("profile")
		mp := processMapInput(mr)
		RunMap(mr, mp)
	},
}

func processMapInput(mr *MapRun) (mp *InputParameters.MappingParameters) {
	if len(mr.InputFile) == 0 {
		fmt.Printf("error: must supply an input parameters file (-I, --inputFile) in YAML format\n")
		exampleFile := `
########################################
Title: "Plate coupling"
GeometryFile: plate_geometry.yaml
MeshFile: plate_mesh.yaml
Direction: IGAToFE # Can be "FEToIGA"
MaxProjectionDistance: 0.1
GaussPointsTriangle: 12
GaussPointsQuadPerDir: 5
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	data, err := os.ReadFile(mr.InputFile)
	if err != nil {
		panic(err)
	}
	mp = &InputParameters.MappingParameters{}
	if err = mp.Parse(data); err != nil {
		panic(err)
	}
	mp.Print()
	return
}

func init() {
	rootCmd.AddCommand(MapCmd)
	MapCmd.Flags().StringP("inputFile", "I", "", "YAML file naming the geometry and mesh files plus mapping parameters")
	MapCmd.Flags().StringP("fieldFile", "f", "", "YAML file with the source field values, one per source dof")
	MapCmd.Flags().StringP("outputFile", "o", "", "write mapped values here in YAML, default stdout")
	MapCmd.Flags().BoolP("conservative", "c", false, "use the conservative (transpose) mapping for dual fields")
	MapCmd.Flags().BoolP("profile", "p", false, "generate a runtime profile of the mapping")
}

func RunMap(mr *MapRun, mp *InputParameters.MappingParameters) {
	if mr.Profile {
		defer profile.Start().Stop()
	}
	params, err := mp.MortarParams()
	if err != nil {
		panic(err)
	}
	col, err := readfiles.ReadGeometryFile(mp.GeometryFile)
	if err != nil {
		panic(err)
	}
	msh, err := readfiles.ReadMeshFile(mp.MeshFile)
	if err != nil {
		panic(err)
	}
	fmt.Printf("read %d patches, %d control point dofs, %d mesh nodes, %d elements\n",
		len(col.Patches), col.NumDofs(), msh.NumNodes(), msh.NumElements())

	mapper, err := mortar.NewMapper(col, msh, params)
	if err != nil {
		panic(err)
	}
	start := time.Now()
	op, err := mapper.BuildCouplingMatrices()
	if err != nil {
		panic(err)
	}
	fmt.Printf("coupling matrices built in %v, %d target dofs, %d source dofs\n",
		time.Since(start), op.NumTargetDofs(), op.NumSourceDofs())
	if len(mr.FieldFile) == 0 {
		return
	}

	data, err := os.ReadFile(mr.FieldFile)
	if err != nil {
		panic(err)
	}
	ff := &FieldFile{}
	if err = yaml.Unmarshal(data, ff); err != nil {
		panic(err)
	}
	var out []float64
	if mr.Conservative {
		out, err = op.ConservativeMapping(ff.Values)
	} else {
		out, err = op.ConsistentMapping(ff.Values)
	}
	if err != nil {
		panic(err)
	}
	res, err := yaml.Marshal(&FieldFile{Values: out})
	if err != nil {
		panic(err)
	}
	if len(mr.OutputFile) == 0 {
		fmt.Printf("%s", string(res))
		return
	}
	if err = os.WriteFile(mr.OutputFile, res, 0644); err != nil {
		panic(err)
	}
	fmt.Printf("mapped field written to %s\n", mr.OutputFile)
}
