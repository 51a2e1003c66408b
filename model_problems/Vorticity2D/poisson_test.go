package Vorticity2D

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpectralPoisson(t *testing.T) {
	{ // single-mode right hand side recovers the analytic streamfunction
		g := periodicGrid(t, 64)
		omega := NewField(g)
		fill(omega, func(x, y float64) float64 { return 2. * math.Sin(x) * math.Sin(y) })
		s := NewPoissonSolver(g, 1.e-10, 1000)
		psi, stats, err := s.Solve(omega)
		assert.NoError(t, err)
		assert.Equal(t, 1, stats.Iterations)
		assert.True(t, stats.Residual < 1.e-10)
		ref := NewField(g)
		fill(ref, func(x, y float64) float64 { return math.Sin(x) * math.Sin(y) })
		// the discrete eigenvalue differs from the continuum by O(h^2)
		assert.True(t, psi.Copy().Subtract(ref.Matrix).MaxAbs() < 1.e-2)
	}
	{ // solutions are mean-free (zero mode pinned)
		g := periodicGrid(t, 32)
		omega := NewField(g)
		fill(omega, func(x, y float64) float64 { return math.Cos(2.*x) + math.Sin(y) })
		psi, _, err := NewPoissonSolver(g, 1.e-10, 1000).Solve(omega)
		assert.NoError(t, err)
		var sum float64
		for _, v := range psi.Data() {
			sum += v
		}
		assert.True(t, math.Abs(sum)/float64(len(psi.Data())) < 1.e-12)
	}
	{ // nonzero-mean vorticity is handled by projecting out the background
		g := periodicGrid(t, 32)
		omega := NewField(g)
		fill(omega, func(x, y float64) float64 { return 1. + math.Sin(x) })
		_, stats, err := NewPoissonSolver(g, 1.e-10, 1000).Solve(omega)
		assert.NoError(t, err)
		assert.True(t, stats.Residual < 1.e-10)
	}
	{ // repeated solves are bit identical
		g := periodicGrid(t, 32)
		omega := NewField(g)
		fill(omega, func(x, y float64) float64 { return math.Sin(3.*x) * math.Cos(y) })
		s := NewPoissonSolver(g, 1.e-10, 1000)
		psi1, _, err := s.Solve(omega)
		assert.NoError(t, err)
		psi2, _, err := s.Solve(omega)
		assert.NoError(t, err)
		assert.Equal(t, psi1.Data(), psi2.Data())
	}
}

func TestCGPoisson(t *testing.T) {
	var (
		L = math.Pi
	)
	g, err := NewGrid(33, 33, L, L, BC_Dirichlet)
	assert.NoError(t, err)
	// manufactured solution vanishing on the boundary:
	// psi = sin(pi (x+L/2)/L) sin(pi (y+L/2)/L), omega = -Lap psi
	psiFn := func(x, y float64) float64 {
		return math.Sin(math.Pi*(x+L/2)/L) * math.Sin(math.Pi*(y+L/2)/L)
	}
	lam := 2. * (math.Pi / L) * (math.Pi / L)
	omega := NewField(g)
	fill(omega, func(x, y float64) float64 { return lam * psiFn(x, y) })
	zeroBoundary(omega)

	{ // the solve meets the discretization error of the 5-point stencil
		s := NewPoissonSolver(g, 1.e-12, 10000)
		psi, stats, err := s.Solve(omega)
		assert.NoError(t, err)
		assert.False(t, stats.Relaxed)
		assert.True(t, stats.Iterations > 0)
		ref := NewField(g)
		fill(ref, psiFn)
		zeroBoundary(ref)
		assert.True(t, psi.Copy().Subtract(ref.Matrix).MaxAbs() < 5.e-3)
	}
	{ // an exhausted iteration budget is a typed failure
		s := NewPoissonSolver(g, 1.e-14, 2)
		_, stats, err := s.Solve(omega)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrPoissonSolveFailure))
		assert.True(t, stats.Relaxed)
	}
	{ // zero vorticity short-circuits to the zero streamfunction
		s := NewPoissonSolver(g, 1.e-12, 100)
		psi, stats, err := s.Solve(NewField(g))
		assert.NoError(t, err)
		assert.Equal(t, 0, stats.Iterations)
		assert.Equal(t, 0., psi.MaxAbs())
	}
}
