package render

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/vortexlab/vortexfd/convergence"
	"github.com/vortexlab/vortexfd/model_problems/Vorticity2D"
)

// fieldGrid adapts a vorticity field to plotter.GridXYZ. The matrix is
// stored with rows along y, so Z transposes the (column, row) request.
type fieldGrid struct {
	f Vorticity2D.Field
}

func (fg fieldGrid) Dims() (c, r int)   { return fg.f.G.Nx, fg.f.G.Ny }
func (fg fieldGrid) Z(c, r int) float64 { return fg.f.At(r, c) }
func (fg fieldGrid) X(c int) float64    { return fg.f.G.X(c) }
func (fg fieldGrid) Y(r int) float64    { return fg.f.G.Y(r) }

// SaveHeatmap writes the field as a PNG heatmap. The output format is
// chosen from the filename extension, so .png is expected.
func SaveHeatmap(f Vorticity2D.Field, title, filename string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	hm := plotter.NewHeatMap(fieldGrid{f}, palette.Heat(255, 1))
	p.Add(hm)
	if err := p.Save(6*vg.Inch, 6*vg.Inch, filename); err != nil {
		return fmt.Errorf("saving heatmap %s: %w", filename, err)
	}
	return nil
}

// SaveSnapshots writes one heatmap per snapshot, named
// <prefix>_NNN.png in emission order.
func SaveSnapshots(snaps []Vorticity2D.Snapshot, title, prefix string) error {
	for i, s := range snaps {
		name := fmt.Sprintf("%s_%03d.png", prefix, i)
		t := fmt.Sprintf("%s (t=%.3f)", title, s.Time)
		if err := SaveHeatmap(s.Omega, t, name); err != nil {
			return err
		}
	}
	return nil
}

// SaveTracePlot writes the convergence study trace as a log-log
// discrepancy-vs-resolution PNG. Failed and zero-discrepancy entries
// are skipped since they have no place on a log scale.
func SaveTracePlot(rep convergence.Report, title, filename string) error {
	var pts plotter.XYs
	for _, ob := range rep.Trace {
		if ob.Failed || ob.Discrepancy <= 0 || math.IsInf(ob.Discrepancy, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(ob.N), Y: ob.Discrepancy})
	}
	if len(pts) == 0 {
		return fmt.Errorf("trace has no plottable observations")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "N"
	p.Y.Label.Text = "discrepancy"
	p.X.Scale = plot.LogScale{}
	p.Y.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	line, scatter, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("building trace plot: %w", err)
	}
	p.Add(line, scatter)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("saving trace plot %s: %w", filename, err)
	}
	return nil
}
