package Vorticity2D

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func periodicGrid(t *testing.T, N int) *Grid {
	g, err := NewGrid(N, N, 2.*math.Pi, 2.*math.Pi, BC_Periodic)
	assert.NoError(t, err)
	return g
}

func fill(f Field, fn func(x, y float64) float64) {
	var (
		g = f.G
		d = f.Data()
	)
	for j := 0; j < g.Ny; j++ {
		for i := 0; i < g.Nx; i++ {
			d[j*g.Nx+i] = fn(g.X(i), g.Y(j))
		}
	}
}

func TestJacobianConservation(t *testing.T) {
	// the three-permutation average conserves the discrete sums of J,
	// omega*J and psi*J on a periodic grid
	g := periodicGrid(t, 64)
	psi := NewField(g)
	omega := NewField(g)
	fill(psi, func(x, y float64) float64 {
		return math.Sin(x)*math.Cos(2.*y) + 0.5*math.Cos(x)
	})
	fill(omega, func(x, y float64) float64 {
		return math.Cos(2.*x)*math.Sin(y) + 0.3*math.Sin(x+y)
	})
	var (
		J    = Jacobian(psi, omega)
		jd   = J.Data()
		wd   = omega.Data()
		pd   = psi.Data()
		sJ   float64
		sWJ  float64
		sPJ  float64
		norm float64
	)
	for k, v := range jd {
		sJ += v
		sWJ += wd[k] * v
		sPJ += pd[k] * v
		norm += math.Abs(v)
	}
	assert.True(t, math.Abs(sJ)/norm < 1.e-12)
	assert.True(t, math.Abs(sWJ)/norm < 1.e-12)
	assert.True(t, math.Abs(sPJ)/norm < 1.e-12)
}

func TestJacobianAccuracy(t *testing.T) {
	// J(sin x sin y, cos x cos y) = sin^2 x cos^2 y - cos^2 x sin^2 y
	exact := func(x, y float64) float64 {
		sx, cx := math.Sincos(x)
		sy, cy := math.Sincos(y)
		return sx*sx*cy*cy - cx*cx*sy*sy
	}
	errAt := func(N int) float64 {
		g := periodicGrid(t, N)
		psi := NewField(g)
		omega := NewField(g)
		fill(psi, func(x, y float64) float64 { return math.Sin(x) * math.Sin(y) })
		fill(omega, func(x, y float64) float64 { return math.Cos(x) * math.Cos(y) })
		ref := NewField(g)
		fill(ref, exact)
		return Jacobian(psi, omega).Subtract(ref.Matrix).MaxAbs()
	}
	e1, e2 := errAt(32), errAt(64)
	p := math.Log2(e1 / e2)
	assert.True(t, p > 1.7 && p < 2.3, "observed order %.3f", p)
}

func TestLaplacianAccuracy(t *testing.T) {
	// Lap(sin x sin y) = -2 sin x sin y
	errAt := func(N int) float64 {
		g := periodicGrid(t, N)
		f := NewField(g)
		fill(f, func(x, y float64) float64 { return math.Sin(x) * math.Sin(y) })
		ref := NewField(g)
		fill(ref, func(x, y float64) float64 { return -2. * math.Sin(x) * math.Sin(y) })
		return Laplacian(f).Subtract(ref.Matrix).MaxAbs()
	}
	e1, e2 := errAt(32), errAt(64)
	p := math.Log2(e1 / e2)
	assert.True(t, p > 1.7 && p < 2.3, "observed order %.3f", p)
}

func TestVelocity(t *testing.T) {
	// psi = sin x: u = dpsi/dy = 0, v = -dpsi/dx = -cos x
	g := periodicGrid(t, 64)
	psi := NewField(g)
	fill(psi, func(x, y float64) float64 { return math.Sin(x) })
	u, v := Velocity(psi)
	assert.True(t, u.MaxAbs() < 1.e-12)
	ref := NewField(g)
	fill(ref, func(x, y float64) float64 { return -math.Cos(x) })
	h := g.Dx
	assert.True(t, v.Subtract(ref.Matrix).MaxAbs() < h*h)
}

func TestJacobianDirichletBoundary(t *testing.T) {
	// boundary rows stay zero on a Dirichlet grid
	g, err := NewGrid(33, 33, 10, 10, BC_Dirichlet)
	assert.NoError(t, err)
	psi := NewField(g)
	omega := NewField(g)
	fill(psi, func(x, y float64) float64 { return x * y })
	fill(omega, func(x, y float64) float64 { return x + y })
	J := Jacobian(psi, omega)
	d := J.Data()
	for i := 0; i < g.Nx; i++ {
		assert.Equal(t, 0., d[i])
		assert.Equal(t, 0., d[(g.Ny-1)*g.Nx+i])
	}
	for j := 0; j < g.Ny; j++ {
		assert.Equal(t, 0., d[j*g.Nx])
		assert.Equal(t, 0., d[j*g.Nx+g.Nx-1])
	}
}

func TestGridValidation(t *testing.T) {
	_, err := NewGrid(1, 8, 10, 10, BC_Periodic)
	assert.Error(t, err)
	_, err = NewGrid(8, 8, 0, 10, BC_Periodic)
	assert.Error(t, err)
	{ // periodic grids exclude the duplicate boundary point
		g, err := NewGrid(10, 10, 10, 10, BC_Periodic)
		assert.NoError(t, err)
		assert.Equal(t, 1., g.Dx)
	}
	{ // Dirichlet grids include both boundaries
		g, err := NewGrid(11, 11, 10, 10, BC_Dirichlet)
		assert.NoError(t, err)
		assert.Equal(t, 1., g.Dx)
		assert.Equal(t, -5., g.X(0))
		assert.Equal(t, 5., g.X(10))
	}
}
