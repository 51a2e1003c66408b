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
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"

	"github.com/guptarohit/asciigraph"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/vortexlab/vortexfd/InputParameters"
	"github.com/vortexlab/vortexfd/convergence"
	"github.com/vortexlab/vortexfd/model_problems/Vorticity2D"
	"github.com/vortexlab/vortexfd/render"
)

type ConvergeModel struct {
	ICFile    string
	Preset    string
	TraceFile string
	PlotFile  string
	FinalFile string
	Chart     bool
	Profile   bool
}

// ConvergeCmd represents the converge command
var ConvergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Search for the coarsest grid resolution meeting the metric tolerance",
	Long: `Search for the coarsest grid resolution meeting the metric tolerance.

The study runs the simulation at increasing resolutions, fits the
observed convergence order and predicts the passing resolution by
Richardson extrapolation, falling back to geometric bracketing and
bisection when the fit is degenerate. Interrupt with Ctrl-C to stop
after the current run.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			m   = &ConvergeModel{}
		)
		if m.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		if m.Preset, err = cmd.Flags().GetString("preset"); err != nil {
			panic(err)
		}
		m.TraceFile, _ = cmd.Flags().GetString("trace")
		m.PlotFile, _ = cmd.Flags().GetString("plot")
		m.FinalFile, _ = cmd.Flags().GetString("final")
		m.Chart, _ = cmd.Flags().GetBool("chart")
		m.Profile, _ = cmd.Flags().GetBool("profile")
		ip := processSimInput(m.ICFile, m.Preset)
		RunConverge(m, ip)
	},
}

func init() {
	rootCmd.AddCommand(ConvergeCmd)
	ConvergeCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Tolerance\n\t- Metric\n\t- NMin, NMax")
	ConvergeCmd.Flags().StringP("preset", "p", "", "named preset configuration instead of a deck file")
	ConvergeCmd.Flags().StringP("trace", "t", "", "CSV file to write the study trace to")
	ConvergeCmd.Flags().StringP("plot", "g", "", "PNG file for a log-log discrepancy plot of the trace")
	ConvergeCmd.Flags().StringP("final", "f", "", "PNG file for a heatmap of one final run at the converged resolution")
	ConvergeCmd.Flags().BoolP("chart", "c", false, "draw an ASCII chart of the discrepancy trace")
	ConvergeCmd.Flags().Bool("profile", false, "write a CPU profile of the study")
}

func RunConverge(m *ConvergeModel, ip *InputParameters.SimParameters) {
	if m.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}
	ip.Print()

	// Ctrl-C stops the study after the run in flight
	var cancelled int32
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	go func() {
		<-sig
		atomic.StoreInt32(&cancelled, 1)
		fmt.Printf("\ninterrupt received, stopping after the current run\n")
	}()

	ctl, err := convergence.NewController(
		func(N int) (float64, error) {
			return Vorticity2D.RunMetric(ip, N)
		},
		convergence.Options{
			Tolerance:     ip.Tolerance,
			NMin:          ip.NMin,
			NMax:          ip.NMax,
			SafetyMargin:  ip.SafetyMargin,
			MaxJumpFactor: ip.MaxJumpFactor,
			Cancel:        func() bool { return atomic.LoadInt32(&cancelled) == 1 },
			Progress: func(p convergence.Progress) {
				fmt.Printf("[%-16s] N = %5d, metric = %14.6e, discrepancy = %10.3e, elapsed = %v\n",
					p.Phase, p.N, p.Metric, p.Discrepancy, p.Elapsed)
			},
		})
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	rep := ctl.Run()

	fmt.Printf("Status = %s after %d runs\n", rep.Status, len(rep.Trace))
	if rep.OrderValid {
		fmt.Printf("Observed convergence order = %6.3f\n", rep.Order)
	}
	if rep.Status == convergence.StatusConverged {
		fmt.Printf("Converged resolution N* = %d\n", rep.NStar)
	} else {
		fmt.Printf("Best observation: N = %d, metric = %14.6e, discrepancy = %10.3e\n",
			rep.Best.N, rep.Best.Metric, rep.Best.Discrepancy)
	}
	for _, n := range rep.Notes {
		fmt.Printf("note: %s\n", n)
	}
	if m.Chart {
		chartTrace(rep)
	}
	if len(m.TraceFile) != 0 {
		if err = writeTrace(rep, m.TraceFile); err != nil {
			fmt.Printf("error writing trace: %s\n", err.Error())
		}
	}
	if len(m.PlotFile) != 0 {
		if err = render.SaveTracePlot(rep, ip.Title, m.PlotFile); err != nil {
			fmt.Printf("error plotting trace: %s\n", err.Error())
		}
	}
	if len(m.FinalFile) != 0 && rep.Status == convergence.StatusConverged {
		if err = saveFinalState(ip, rep.NStar, m.FinalFile); err != nil {
			fmt.Printf("error rendering final state: %s\n", err.Error())
		}
	}
	if rep.Status == convergence.StatusFailed {
		os.Exit(1)
	}
}

// saveFinalState reruns the kernel once at the converged resolution and
// renders the final vorticity field.
func saveFinalState(ip *InputParameters.SimParameters, nStar int, filename string) error {
	c, err := Vorticity2D.NewVorticity2D(nStar, ip)
	if err != nil {
		return err
	}
	snaps, _, err := c.Solve()
	if err != nil {
		return err
	}
	final := snaps[len(snaps)-1]
	title := fmt.Sprintf("%s (N=%d, t=%.3f)", ip.Title, nStar, final.Time)
	return render.SaveHeatmap(final.Omega, title, filename)
}

// chartTrace draws log10 of the per-run discrepancies.
func chartTrace(rep convergence.Report) {
	var data []float64
	for _, ob := range rep.Trace {
		if ob.Failed || ob.Discrepancy <= 0 || math.IsInf(ob.Discrepancy, 0) {
			continue
		}
		data = append(data, math.Log10(ob.Discrepancy))
	}
	if len(data) < 2 {
		return
	}
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Caption("log10(discrepancy) per run")))
}

// writeTrace dumps the study trace as CSV, one row per kernel run.
func writeTrace(rep convergence.Report, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err = w.Write([]string{"phase", "N", "metric", "discrepancy", "failed", "note"}); err != nil {
		return err
	}
	for _, ob := range rep.Trace {
		rec := []string{
			ob.Phase.String(),
			strconv.Itoa(ob.N),
			strconv.FormatFloat(ob.Metric, 'e', 10, 64),
			strconv.FormatFloat(ob.Discrepancy, 'e', 10, 64),
			strconv.FormatBool(ob.Failed),
			ob.Note,
		}
		if err = w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
