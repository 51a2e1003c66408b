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
	"io/ioutil"
	"os"

	"github.com/spf13/cobra"

	"github.com/vortexlab/vortexfd/InputParameters"
	"github.com/vortexlab/vortexfd/model_problems/Vorticity2D"
	"github.com/vortexlab/vortexfd/render"
)

type RunModel struct {
	ICFile     string
	Preset     string
	N          int
	Verbose    bool
	Plot       bool
	PlotPrefix string
}

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Evolve a single vortex simulation from a YAML deck or preset",
	Long:  `Evolve a single vortex simulation from a YAML deck or preset`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			m   = &RunModel{}
		)
		if m.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		if m.Preset, err = cmd.Flags().GetString("preset"); err != nil {
			panic(err)
		}
		m.N, _ = cmd.Flags().GetInt("resolution")
		m.Verbose, _ = cmd.Flags().GetBool("verbose")
		m.Plot, _ = cmd.Flags().GetBool("plot")
		m.PlotPrefix, _ = cmd.Flags().GetString("plotPrefix")
		ip := processSimInput(m.ICFile, m.Preset)
		RunSingle(m, ip)
	},
}

// processSimInput loads the simulation deck from a preset name or a
// YAML file, exiting with usage help when neither is supplied.
func processSimInput(icFile, preset string) (ip *InputParameters.SimParameters) {
	var (
		err error
	)
	if len(preset) != 0 {
		if ip, err = InputParameters.Preset(preset); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		return
	}
	if len(icFile) == 0 {
		err := fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) or a preset (-p, --preset)")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Lamb-Oseen pair"
Nu: 1.e-4
Dt: 1.e-3
FinalTime: 10.
Lx: 10.
Ly: 10.
N: 128
BCType: Periodic # Can be "Dirichlet"
InitType: DoubleVortex # Can be "LambOseen", "Gaussian", "StretchedGaussian", "TaylorGreen"
Gamma: 1.
CoreRadius: 0.5
Separation: 2.
SnapshotTimes: [0., 5., 10.]
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		fmt.Printf("Available presets: %v\n", InputParameters.PresetNames())
		os.Exit(1)
	}
	var data []byte
	if data, err = ioutil.ReadFile(icFile); err != nil {
		panic(err)
	}
	ip = &InputParameters.SimParameters{}
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	return
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Nu\n\t- InitType\n\t- FinalTime")
	RunCmd.Flags().StringP("preset", "p", "", "named preset configuration instead of a deck file")
	RunCmd.Flags().IntP("resolution", "N", 0, "override the deck's grid resolution")
	RunCmd.Flags().BoolP("verbose", "v", false, "log progress during time stepping")
	RunCmd.Flags().BoolP("plot", "g", false, "save a PNG heatmap per snapshot")
	RunCmd.Flags().StringP("plotPrefix", "o", "omega", "filename prefix for snapshot heatmaps")
}

func RunSingle(m *RunModel, ip *InputParameters.SimParameters) {
	var (
		err error
		N   = ip.N
	)
	if m.N != 0 {
		N = m.N
	}
	ip.Print()
	c, err := Vorticity2D.NewVorticity2D(N, ip)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	c.Verbose = m.Verbose
	snaps, sum, err := c.Solve()
	if err != nil {
		fmt.Printf("run failed: %s\n", err.Error())
	}
	fmt.Printf("%10s %8s %14s %14s %14s %14s\n",
		"Time", "Step", "Max|w|", "Mean|w|", "Enstrophy", "Energy")
	for _, s := range snaps {
		fmt.Printf("%10.4f %8d %14.6e %14.6e %14.6e %14.6e\n",
			s.Time, s.Step, s.Metrics.MaxVorticity, s.Metrics.MeanVorticity,
			s.Metrics.Enstrophy, s.Metrics.KineticEnergy)
	}
	fmt.Printf("N = %d, %d steps to t=%8.4f in %v, %d Poisson iterations\n",
		sum.N, sum.Steps, sum.FinalTime, sum.WallTime, sum.PoissonIterations)
	if m.Plot {
		if perr := render.SaveSnapshots(snaps, ip.Title, m.PlotPrefix); perr != nil {
			fmt.Printf("error saving heatmaps: %s\n", perr.Error())
		}
	}
	if err != nil {
		os.Exit(1)
	}
}
