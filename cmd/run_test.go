package cmd

import (
	"testing"

	"github.com/magiconair/properties/assert"

	"github.com/vortexlab/vortexfd/InputParameters"
)

func TestRunDeck(t *testing.T) {
	var (
		err error
	)
	fileInput := []byte(`
Title: Test Case
Nu: 1.e-3
Dt: 1.e-3
FinalTime: 4.
InitType: DoubleVortex # Can be LambOseen, Gaussian, StretchedGaussian, TaylorGreen
BCType: Periodic
N: 64
Gamma: 2.
Separation: 3.
SnapshotTimes: [0., 2., 4.]
`)
	var input InputParameters.SimParameters
	if err = input.Parse(fileInput); err != nil {
		panic(err)
	}
	assert.Equal(t, input.Gamma, 2.)
	assert.Equal(t, input.Separation, 3.)
	assert.Equal(t, input.SnapshotTimes, []float64{0., 2., 4.})
	input.Print()
	assert.Equal(t, input.FinalTime, 4.)
	// defaults fill the fields the deck leaves out
	assert.Equal(t, input.BCType, "Periodic")
	assert.Equal(t, input.Metric, "MaxVorticity")
	assert.Equal(t, input.NMin, 64)
}

func TestPresetSelection(t *testing.T) {
	ip, err := InputParameters.Preset("Quick Test")
	if err != nil {
		panic(err)
	}
	assert.Equal(t, ip.N, 64)
	assert.Equal(t, ip.FinalTime, 1.)
	assert.Equal(t, ip.InitType, "LambOseen")
	_, err = InputParameters.Preset("No Such Preset")
	if err == nil {
		t.Errorf("expected an error for an unknown preset")
	}
}
