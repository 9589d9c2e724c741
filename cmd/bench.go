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
	"math"
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/juantresde/feterms/params"
	"github.com/juantresde/feterms/terms"
	"github.com/juantresde/feterms/utils"
)

type BenchModel struct {
	CaseFile   string
	Profile    bool
	ProfileDir string
}

// benchCmd represents the bench command
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Time the term evaluators over a synthetic cell batch",
	Long: `Builds a synthetic batch of cells from a YAML case file (or the
built-in default case) and times the Laplace / diffusion matrix evaluators,
optionally in parallel across cells and under a CPU profile.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			bm  = &BenchModel{}
		)
		if bm.CaseFile, err = cmd.Flags().GetString("caseFile"); err != nil {
			panic(err)
		}
		bm.Profile, _ = cmd.Flags().GetBool("profile")
		bm.ProfileDir, _ = cmd.Flags().GetString("profileDir")

		bp := params.DefaultBenchParameters()
		if len(bm.CaseFile) != 0 {
			data, err := os.ReadFile(bm.CaseFile)
			if err != nil {
				fmt.Printf("error: %s\n", err.Error())
				os.Exit(1)
			}
			if err = bp.Parse(data); err != nil {
				fmt.Printf("error parsing case file: %s\n", err.Error())
				os.Exit(1)
			}
		}
		bp.Print()

		if bm.Profile {
			dir := bm.ProfileDir
			if len(dir) == 0 {
				home, err := homedir.Dir()
				if err != nil {
					fmt.Printf("error: %s\n", err.Error())
					os.Exit(1)
				}
				dir = filepath.Join(home, ".feterms")
			}
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(dir)).Stop()
		}
		if err = RunBench(bp); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().StringP("caseFile", "I", "", "YAML benchmark case file")
	benchCmd.Flags().Bool("profile", false, "write a CPU profile while benchmarking")
	benchCmd.Flags().String("profileDir", "", "profile output directory (default ~/.feterms)")
}

// RunBench times the matrix-mode evaluators over a synthetic batch built
// from bp. Cells are split across bp.Parallelism workers via Windows onto
// the shared output and geometry Fields.
func RunBench(bp *params.BenchParameters) error {
	var (
		nEP, nQP, dim = bp.NodesPerElement, bp.QuadraturePoints, bp.Dimension
		vg            = syntheticVolume(bp.NumCells, nQP, dim, nEP)
		out           = utils.NewField(bp.NumCells, 1, nEP, nEP)
	)
	run := func(label string, eval func(o *utils.Field, w *terms.VolumeGeometry) error) error {
		var best time.Duration
		for rep := 0; rep < bp.Repeats; rep++ {
			start := time.Now()
			err := terms.ParallelCells(bp.NumCells, bp.Parallelism, func(lo, hi int) error {
				w := &terms.VolumeGeometry{
					BfGM: vg.BfGM.Window(lo, hi),
					Det:  vg.Det.Window(lo, hi),
				}
				return eval(out.Window(lo, hi), w)
			})
			if err != nil {
				return err
			}
			elapsed := time.Since(start)
			if best == 0 || elapsed < best {
				best = elapsed
			}
		}
		rate := float64(bp.NumCells) / best.Seconds()
		fmt.Printf("%-16s best of %d: %12v  %12.0f cells/s\n",
			label, bp.Repeats, best, rate)
		return nil
	}

	if bp.Anisotropic {
		mtxD := utils.NewField(1, 1, dim, dim)
		d := mtxD.Cell(0).Lev(0)
		for i := 0; i < dim; i++ {
			d[i*dim+i] = bp.Conductivity
		}
		return run("DiffusionMatrix", func(o *utils.Field, w *terms.VolumeGeometry) error {
			return terms.DiffusionMatrix(o, mtxD, w)
		})
	}
	coef := utils.NewFieldData(1, 1, 1, 1, []float64{bp.Conductivity})
	return run("LaplaceMatrix", func(o *utils.Field, w *terms.VolumeGeometry) error {
		return terms.LaplaceMatrix(o, coef, w)
	})
}

// syntheticVolume fabricates smooth, nonsingular per-cell quadrature data;
// the values are meaningless physically, the shapes and cost are what the
// benchmark needs.
func syntheticVolume(nCell, nQP, dim, nEP int) *terms.VolumeGeometry {
	vg := &terms.VolumeGeometry{
		BfGM: utils.NewField(nCell, nQP, dim, nEP),
		Det:  utils.NewField(nCell, nQP, 1, 1),
	}
	for i := range vg.BfGM.Data {
		vg.BfGM.Data[i] = math.Sin(float64(i)*0.7) + 1.5
	}
	for i := range vg.Det.Data {
		vg.Det.Data[i] = 1.0 / float64(nQP)
	}
	return vg
}
