package convergence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vortexlab/vortexfd/InputParameters"
	"github.com/vortexlab/vortexfd/model_problems/Vorticity2D"
)

// TestStudyWithKernel drives the controller with the real solver on a
// short Taylor-Green run, the cheapest configuration with a smooth
// resolution dependence of the enstrophy.
func TestStudyWithKernel(t *testing.T) {
	ip := &InputParameters.SimParameters{
		Title:     "e2e study",
		InitType:  "TaylorGreen",
		Metric:    "Enstrophy",
		Nu:        1.e-2,
		Dt:        1.e-3,
		FinalTime: 0.1,
		Tolerance: 1.e-2,
		NMin:      8,
		NMax:      64,
	}
	ip.ApplyDefaults()
	ctl, err := NewController(
		func(N int) (float64, error) {
			return Vorticity2D.RunMetric(ip, N)
		},
		Options{
			Tolerance: ip.Tolerance,
			NMin:      ip.NMin,
			NMax:      ip.NMax,
		})
	assert.NoError(t, err)
	rep := ctl.Run()
	assert.Equal(t, StatusConverged, rep.Status)
	assert.True(t, rep.NStar >= 8 && rep.NStar <= 64)
	assert.True(t, len(rep.Trace) >= 3)
	for _, ob := range rep.Trace {
		assert.False(t, ob.Failed)
		assert.Equal(t, 0, ob.N%2)
		assert.True(t, ob.N >= 8 && ob.N <= 64)
		assert.True(t, ob.Metric > 0)
	}
}
