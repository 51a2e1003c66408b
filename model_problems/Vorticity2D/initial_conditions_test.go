package Vorticity2D

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLambOseenCirculation(t *testing.T) {
	// the integral of the vorticity recovers the circulation when the
	// core is well inside the domain
	g, err := NewGrid(128, 128, 20, 20, BC_Periodic)
	assert.NoError(t, err)
	w := InitialVorticity(g, IC_LambOseen,
		ICCoefficients{Gamma: 1.5, CoreRadius: 0.5},
		[][2]float64{{0, 0}})
	var sum float64
	for _, v := range w.Data() {
		sum += v
	}
	assert.InDelta(t, 1.5, sum*g.Dx*g.Dy, 1.e-8)
}

func TestDoubleVortexAntisymmetry(t *testing.T) {
	// equal and opposite cores cancel in circulation
	g, err := NewGrid(128, 128, 20, 20, BC_Periodic)
	assert.NoError(t, err)
	w := InitialVorticity(g, IC_DoubleVortex,
		ICCoefficients{Gamma: 1, CoreRadius: 0.5, Separation: 2},
		[][2]float64{{0, 0}})
	var sum float64
	for _, v := range w.Data() {
		sum += v
	}
	assert.InDelta(t, 0., sum*g.Dx*g.Dy, 1.e-10)
	assert.True(t, w.MaxAbs() > 0)
}

func TestTaylorGreenZeroMean(t *testing.T) {
	g := periodicGrid(t, 32)
	w := InitialVorticity(g, IC_TaylorGreen,
		ICCoefficients{Gamma: 1, CoreRadius: 1},
		[][2]float64{{0, 0}})
	var sum float64
	for _, v := range w.Data() {
		sum += v
	}
	assert.True(t, math.Abs(sum) < 1.e-10)
	assert.InDelta(t, 1., w.MaxAbs(), 0.05)
}

func TestStretchedGaussianAspect(t *testing.T) {
	// the core decays slower along y for Aspect > 1
	g, err := NewGrid(128, 128, 20, 20, BC_Periodic)
	assert.NoError(t, err)
	w := InitialVorticity(g, IC_StretchedGaussian,
		ICCoefficients{Gamma: 1, CoreRadius: 0.5, Aspect: 2},
		[][2]float64{{0, 0}})
	d := w.Data()
	at := func(x, y float64) float64 {
		i := int(math.Round((x + g.Lx/2) / g.Dx))
		j := int(math.Round((y + g.Ly/2) / g.Dy))
		return d[j*g.Nx+i]
	}
	assert.True(t, at(0, 1) > at(1, 0))
}

func TestDisperseVortices(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	{ // a single vortex sits at the origin whatever the pattern
		pos := DisperseVortices(1, Pattern_Random, 10, 10, 1, rng)
		assert.Equal(t, [][2]float64{{0, 0}}, pos)
	}
	{ // circular placement puts every center on the quarter-radius circle
		pos := DisperseVortices(6, Pattern_Circular, 10, 10, 0, rng)
		assert.Equal(t, 6, len(pos))
		for _, p := range pos {
			assert.InDelta(t, 2.5, math.Hypot(p[0], p[1]), 1.e-12)
		}
	}
	{ // grid placement yields the requested count
		pos := DisperseVortices(5, Pattern_Grid, 10, 10, 0, rng)
		assert.Equal(t, 5, len(pos))
	}
	{ // random placement honors the minimum separation and the seed
		rngA := rand.New(rand.NewSource(7))
		posA := DisperseVortices(4, Pattern_Random, 10, 10, 1.5, rngA)
		assert.Equal(t, 4, len(posA))
		for i := range posA {
			for j := i + 1; j < len(posA); j++ {
				assert.True(t, math.Hypot(posA[i][0]-posA[j][0], posA[i][1]-posA[j][1]) >= 1.5)
			}
		}
		rngB := rand.New(rand.NewSource(7))
		posB := DisperseVortices(4, Pattern_Random, 10, 10, 1.5, rngB)
		assert.Equal(t, posA, posB)
	}
}

func TestTypeParsing(t *testing.T) {
	{ // labels are case and whitespace tolerant
		ic, err := NewICType(" lamb-oseen ")
		assert.NoError(t, err)
		assert.Equal(t, IC_LambOseen, ic)
		bc, err := NewBCType("PERIODIC")
		assert.NoError(t, err)
		assert.Equal(t, BC_Periodic, bc)
		p, err := NewPatternType("Circular")
		assert.NoError(t, err)
		assert.Equal(t, Pattern_Circular, p)
	}
	{ // unknown labels fail loudly
		_, err := NewICType("vortexsheet")
		assert.Error(t, err)
		_, err = NewBCType("neumann")
		assert.Error(t, err)
		_, err = NewPatternType("spiral")
		assert.Error(t, err)
	}
}

func TestDirichletZeroBoundary(t *testing.T) {
	g, err := NewGrid(17, 17, 10, 10, BC_Dirichlet)
	assert.NoError(t, err)
	w := InitialVorticity(g, IC_Gaussian,
		ICCoefficients{Gamma: 1, CoreRadius: 2},
		[][2]float64{{0, 0}})
	d := w.Data()
	for i := 0; i < g.Nx; i++ {
		assert.Equal(t, 0., d[i])
		assert.Equal(t, 0., d[(g.Ny-1)*g.Nx+i])
	}
	for j := 0; j < g.Ny; j++ {
		assert.Equal(t, 0., d[j*g.Nx])
		assert.Equal(t, 0., d[j*g.Nx+g.Nx-1])
	}
}
