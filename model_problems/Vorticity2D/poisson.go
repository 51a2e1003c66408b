package Vorticity2D

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// PoissonStats carries solver diagnostics for every solve.
type PoissonStats struct {
	Iterations int
	Residual   float64
	Relaxed    bool // solution accepted under the relaxed retry tolerance
}

// PoissonSolver solves the discrete equation Lap(psi) = -omega on the
// grid it was constructed for.
type PoissonSolver interface {
	Solve(omega Field) (psi Field, stats PoissonStats, err error)
}

// NewPoissonSolver picks the solve strategy from the grid's boundary
// condition: an exact spectral inversion of the 5-point Laplacian for
// periodic grids, conjugate gradients on a sparse CSR operator for
// Dirichlet grids.
func NewPoissonSolver(g *Grid, resTol float64, maxIter int) PoissonSolver {
	if g.BC == BC_Periodic {
		return newSpectralSolver(g)
	}
	return newCGSolver(g, resTol, maxIter)
}

// spectralSolver inverts the exact eigenvalues of the discrete 5-point
// Laplacian in Fourier space. Periodic compatibility requires a
// zero-mean right hand side; the uniform background vorticity is
// projected out (zero mode pinned).
type spectralSolver struct {
	g        *Grid
	fftX     *fourier.CmplxFFT
	fftY     *fourier.CmplxFFT
	invLam   []float64 // 1/(lamX+lamY), zero mode -> 0
	work     []complex128
	row, rcf []complex128
	col, ccf []complex128
}

func newSpectralSolver(g *Grid) *spectralSolver {
	s := &spectralSolver{
		g:      g,
		fftX:   fourier.NewCmplxFFT(g.Nx),
		fftY:   fourier.NewCmplxFFT(g.Ny),
		invLam: make([]float64, g.Nx*g.Ny),
		work:   make([]complex128, g.Nx*g.Ny),
		row:    make([]complex128, g.Nx),
		rcf:    make([]complex128, g.Nx),
		col:    make([]complex128, g.Ny),
		ccf:    make([]complex128, g.Ny),
	}
	lamX := make([]float64, g.Nx)
	lamY := make([]float64, g.Ny)
	for i := range lamX {
		lamX[i] = (2. - 2.*math.Cos(2.*math.Pi*float64(i)/float64(g.Nx))) / (g.Dx * g.Dx)
	}
	for j := range lamY {
		lamY[j] = (2. - 2.*math.Cos(2.*math.Pi*float64(j)/float64(g.Ny))) / (g.Dy * g.Dy)
	}
	for j := 0; j < g.Ny; j++ {
		for i := 0; i < g.Nx; i++ {
			if lam := lamX[i] + lamY[j]; lam > 0 {
				s.invLam[j*g.Nx+i] = 1. / lam
			}
		}
	}
	return s
}

func (s *spectralSolver) Solve(omega Field) (psi Field, stats PoissonStats, err error) {
	var (
		g  = s.g
		Nx = g.Nx
		Ny = g.Ny
		w  = omega.Data()
	)
	if omega.G != g {
		panic(fmt.Errorf("field solved on a different grid than the solver was built for"))
	}
	for k, v := range w {
		s.work[k] = complex(v, 0)
	}
	// forward transform, rows then columns
	for j := 0; j < Ny; j++ {
		copy(s.row, s.work[j*Nx:(j+1)*Nx])
		s.fftX.Coefficients(s.rcf, s.row)
		copy(s.work[j*Nx:(j+1)*Nx], s.rcf)
	}
	for i := 0; i < Nx; i++ {
		for j := 0; j < Ny; j++ {
			s.col[j] = s.work[j*Nx+i]
		}
		s.fftY.Coefficients(s.ccf, s.col)
		for j := 0; j < Ny; j++ {
			s.work[j*Nx+i] = s.ccf[j]
		}
	}
	// psi_hat = omega_hat / (lamX+lamY); zero mode pinned to zero
	for k := range s.work {
		s.work[k] *= complex(s.invLam[k], 0)
	}
	// inverse transform, columns then rows, with 1/(Nx*Ny) scaling
	for i := 0; i < Nx; i++ {
		for j := 0; j < Ny; j++ {
			s.col[j] = s.work[j*Nx+i]
		}
		s.fftY.Sequence(s.ccf, s.col)
		for j := 0; j < Ny; j++ {
			s.work[j*Nx+i] = s.ccf[j]
		}
	}
	psi = NewField(g)
	p := psi.Data()
	scale := 1. / float64(Nx*Ny)
	for j := 0; j < Ny; j++ {
		copy(s.row, s.work[j*Nx:(j+1)*Nx])
		s.fftX.Sequence(s.rcf, s.row)
		for i := 0; i < Nx; i++ {
			p[j*Nx+i] = real(s.rcf[i]) * scale
		}
	}
	stats = PoissonStats{Iterations: 1, Residual: s.residual(psi, omega)}
	return
}

// residual is max |Lap(psi) + (omega - mean(omega))|.
func (s *spectralSolver) residual(psi, omega Field) float64 {
	var (
		lap  = Laplacian(psi)
		w    = omega.Data()
		mean = floats.Sum(w) / float64(len(w))
	)
	return lap.Copy().Add(omega.Copy().AddScalar(-mean)).MaxAbs()
}

// cgSolver runs conjugate gradients on A = -Lap with psi = 0 boundary,
// assembled once as a CSR matrix over the interior unknowns.
type cgSolver struct {
	g       *Grid
	A       *sparse.CSR
	resTol  float64
	maxIter int
	nx, ny  int // interior dimensions
}

func newCGSolver(g *Grid, resTol float64, maxIter int) *cgSolver {
	var (
		nx = g.Nx - 2
		ny = g.Ny - 2
		n  = nx * ny
		ax = 1. / (g.Dx * g.Dx)
		ay = 1. / (g.Dy * g.Dy)
	)
	dok := sparse.NewDOK(n, n)
	idx := func(i, j int) int { return j*nx + i }
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			k := idx(i, j)
			dok.Set(k, k, 2.*ax+2.*ay)
			if i > 0 {
				dok.Set(k, idx(i-1, j), -ax)
			}
			if i < nx-1 {
				dok.Set(k, idx(i+1, j), -ax)
			}
			if j > 0 {
				dok.Set(k, idx(i, j-1), -ay)
			}
			if j < ny-1 {
				dok.Set(k, idx(i, j+1), -ay)
			}
		}
	}
	return &cgSolver{
		g:       g,
		A:       dok.ToCSR(),
		resTol:  resTol,
		maxIter: maxIter,
		nx:      nx,
		ny:      ny,
	}
}

func (s *cgSolver) matVec(x, y []float64) {
	for i := range y {
		y[i] = 0
	}
	s.A.DoNonZero(func(i, j int, v float64) {
		y[i] += v * x[j]
	})
}

func (s *cgSolver) Solve(omega Field) (psi Field, stats PoissonStats, err error) {
	var (
		g = s.g
		n = s.nx * s.ny
		b = make([]float64, n)
		x = make([]float64, n)
		r = make([]float64, n)
		p = make([]float64, n)
		q = make([]float64, n)
		w = omega.Data()
	)
	if omega.G != g {
		panic(fmt.Errorf("field solved on a different grid than the solver was built for"))
	}
	for j := 0; j < s.ny; j++ {
		for i := 0; i < s.nx; i++ {
			b[j*s.nx+i] = w[(j+1)*g.Nx+i+1]
		}
	}
	bNorm := floats.Norm(b, 2)
	if bNorm == 0 {
		// zero vorticity, zero streamfunction
		psi = NewField(g)
		stats = PoissonStats{Iterations: 0, Residual: 0}
		return
	}
	copy(r, b)
	copy(p, r)
	rho := floats.Dot(r, r)
	var (
		iter    int
		relres  = math.Sqrt(rho) / bNorm
		target  = s.resTol
		relaxed bool
	)
	for iter = 0; iter < 2*s.maxIter && relres > target; iter++ {
		if iter == s.maxIter {
			// bounded retry: accept a 10x relaxed residual rather than
			// failing outright
			target *= 10
			relaxed = true
			if relres <= target {
				break
			}
		}
		s.matVec(p, q)
		alpha := rho / floats.Dot(p, q)
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, q)
		rhoNew := floats.Dot(r, r)
		beta := rhoNew / rho
		for i := range p {
			p[i] = r[i] + beta*p[i]
		}
		rho = rhoNew
		relres = math.Sqrt(rho) / bNorm
	}
	stats = PoissonStats{Iterations: iter, Residual: relres, Relaxed: relaxed}
	if relres > target {
		err = fmt.Errorf("%w: residual %.3e after %d iterations (tolerance %.3e)",
			ErrPoissonSolveFailure, relres, iter, s.resTol)
		return
	}
	psi = NewField(g)
	pd := psi.Data()
	for j := 0; j < s.ny; j++ {
		for i := 0; i < s.nx; i++ {
			pd[(j+1)*g.Nx+i+1] = x[j*s.nx+i]
		}
	}
	return
}
