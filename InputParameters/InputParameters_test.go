package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDefaults(t *testing.T) {
	{ // an empty deck is fully defaulted
		ip := &SimParameters{}
		assert.NoError(t, ip.Parse([]byte("")))
		assert.Equal(t, 10., ip.Lx)
		assert.Equal(t, 10., ip.Ly)
		assert.Equal(t, 128, ip.N)
		assert.Equal(t, 1.e-4, ip.Nu)
		assert.Equal(t, "Periodic", ip.BCType)
		assert.Equal(t, "LambOseen", ip.InitType)
		assert.Equal(t, "MaxVorticity", ip.Metric)
		assert.Equal(t, 64, ip.NMin)
		assert.Equal(t, 512, ip.NMax)
		assert.Equal(t, 1.e6, ip.BlowupThreshold)
		assert.Equal(t, 0.8, ip.SafetyMargin)
	}
	{ // deck values survive defaulting
		ip := &SimParameters{}
		deck := []byte(`
Title: override check
Nu: 5.e-3
N: 96
Metric: Enstrophy
Tolerance: 1.e-4
`)
		assert.NoError(t, ip.Parse(deck))
		assert.Equal(t, "override check", ip.Title)
		assert.Equal(t, 5.e-3, ip.Nu)
		assert.Equal(t, 96, ip.N)
		assert.Equal(t, "Enstrophy", ip.Metric)
		assert.Equal(t, 1.e-4, ip.Tolerance)
		// untouched fields still default
		assert.Equal(t, 10., ip.FinalTime)
	}
	{ // malformed YAML is rejected
		ip := &SimParameters{}
		assert.Error(t, ip.Parse([]byte("Nu: [not a number")))
	}
}

func TestCFLAdvisory(t *testing.T) {
	ip := &SimParameters{}
	ip.ApplyDefaults()
	adv64, diff64 := ip.CFLAdvisory(64)
	adv128, diff128 := ip.CFLAdvisory(128)
	assert.True(t, adv64 > 0 && diff64 > 0)
	// halving the grid spacing doubles the advective number and
	// quadruples the diffusive one
	assert.InDelta(t, 2., adv128/adv64, 1.e-12)
	assert.InDelta(t, 4., diff128/diff64, 1.e-12)
}

func TestPresets(t *testing.T) {
	names := PresetNames()
	assert.Equal(t, []string{"Convergence Study", "High Resolution", "Quick Test", "Standard"}, names)
	for _, name := range names {
		ip, err := Preset(name)
		assert.NoError(t, err)
		assert.Equal(t, name, ip.Title)
		// presets come back fully defaulted and runnable
		assert.True(t, ip.N > 0)
		assert.True(t, ip.Dt > 0)
		assert.True(t, ip.FinalTime > 0)
		assert.NotEmpty(t, ip.BCType)
	}
	{ // presets are copies, mutating one does not leak into the next
		a, _ := Preset("Quick Test")
		a.N = 9999
		b, _ := Preset("Quick Test")
		assert.Equal(t, 64, b.N)
	}
	_, err := Preset("Ludicrous Resolution")
	assert.Error(t, err)
}
