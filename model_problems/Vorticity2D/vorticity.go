package Vorticity2D

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/vortexlab/vortexfd/InputParameters"
)

/*
Vorticity-streamfunction formulation of the 2D incompressible
Navier-Stokes equations:

	d(omega)/dt + J(psi, omega) = nu Lap(omega)
	Lap(psi) = -omega

Advection uses the Arakawa Jacobian, the elliptic solve is spectral or
CG depending on the boundary condition, and time integration is the
3-stage third-order SSP Runge-Kutta scheme in Shu-Osher form:

	w1 = w + dt L(w)
	w2 = 3/4 w + 1/4 (w1 + dt L(w1))
	w  = 1/3 w + 2/3 (w2 + dt L(w2))

Each stage pays one Poisson solve for psi.
*/

type Vorticity2D struct {
	Grid   *Grid
	Omega  Field
	Solver PoissonSolver

	Nu, Dt, FinalTime float64
	BlowupThreshold   float64
	Metric            MetricType
	SnapshotTimes     []float64
	LogFrequency      int
	Verbose           bool

	// solver effort accumulated over the run
	poissonIters int
	lastStats    PoissonStats
}

// Snapshot is the field state at one output time, immutable once
// emitted.
type Snapshot struct {
	Time    float64
	Step    int
	Omega   Field
	Metrics Metrics
}

// RunSummary is the final-state record of one kernel run.
type RunSummary struct {
	N                 int
	Steps             int
	FinalTime         float64
	Metric            float64 // designated metric at the final state
	Metrics           Metrics
	WallTime          time.Duration
	PoissonIterations int
	PoissonResidual   float64
}

// NewVorticity2D builds the kernel at resolution N (square grid) from
// an input deck. The deck is read-only; every run owns its grid and
// fields.
func NewVorticity2D(N int, ip *InputParameters.SimParameters) (*Vorticity2D, error) {
	bc, err := NewBCType(ip.BCType)
	if err != nil {
		return nil, err
	}
	ic, err := NewICType(ip.InitType)
	if err != nil {
		return nil, err
	}
	pattern, err := NewPatternType(ip.Pattern)
	if err != nil {
		return nil, err
	}
	metric, err := NewMetricType(ip.Metric)
	if err != nil {
		return nil, err
	}
	g, err := NewGrid(N, N, ip.Lx, ip.Ly, bc)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(ip.RandomSeed))
	positions := DisperseVortices(ip.NVortices, pattern, ip.Lx, ip.Ly, ip.MinSeparation, rng)
	coeffs := ICCoefficients{
		Gamma:      ip.Gamma,
		CoreRadius: ip.CoreRadius,
		Aspect:     ip.Aspect,
		Separation: ip.Separation,
	}
	c := &Vorticity2D{
		Grid:            g,
		Omega:           InitialVorticity(g, ic, coeffs, positions),
		Solver:          NewPoissonSolver(g, ip.PoissonTol, ip.PoissonMaxIter),
		Nu:              ip.Nu,
		Dt:              ip.Dt,
		FinalTime:       ip.FinalTime,
		BlowupThreshold: ip.BlowupThreshold,
		Metric:          metric,
		SnapshotTimes:   ip.SnapshotTimes,
		LogFrequency:    ip.LogFrequency,
	}
	return c, nil
}

// rhs evaluates L(w) = -J(psi, w) + nu Lap(w), solving for psi first.
func (c *Vorticity2D) rhs(w Field) (rhs Field, err error) {
	psi, stats, err := c.Solver.Solve(w)
	c.poissonIters += stats.Iterations
	c.lastStats = stats
	if err != nil {
		return
	}
	rhs = Jacobian(psi, w)
	rhs.Scale(-1)
	if c.Nu != 0 {
		rhs.Add(Laplacian(w).Scale(c.Nu))
	}
	return
}

// step advances Omega by one SSP-RK3 step.
func (c *Vorticity2D) step(dt float64) error {
	w := c.Omega
	k1, err := c.rhs(w)
	if err != nil {
		return err
	}
	w1 := w.CopyField()
	w1.Add(k1.Scale(dt))

	k2, err := c.rhs(w1)
	if err != nil {
		return err
	}
	w2 := w.CopyField()
	w2.Scale(3. / 4.)
	w2.Add(w1.Copy().Scale(1. / 4.))
	w2.Add(k2.Scale(dt / 4.))

	k3, err := c.rhs(w2)
	if err != nil {
		return err
	}
	wn := w.CopyField()
	wn.Scale(1. / 3.)
	wn.Add(w2.Copy().Scale(2. / 3.))
	wn.Add(k3.Scale(2. * dt / 3.))

	c.Omega = wn
	return nil
}

// Solve runs the full time evolution, emitting a Snapshot at each
// requested output time (nearest-step selection) plus the final state.
// On failure the partial snapshot sequence is returned together with
// the typed error.
func (c *Vorticity2D) Solve() (snaps []Snapshot, sum RunSummary, err error) {
	var (
		start  = time.Now()
		Ns     = math.Ceil(c.FinalTime / c.Dt)
		dt     = c.FinalTime / Ns
		Nsteps = int(Ns)
	)
	sum.N = c.Grid.Nx
	// nearest-step selection for the requested output times
	snapAt := make(map[int]bool)
	for _, t := range c.SnapshotTimes {
		s := int(math.Round(t / dt))
		if s < 0 {
			s = 0
		}
		if s > Nsteps {
			s = Nsteps
		}
		snapAt[s] = true
	}
	snapAt[Nsteps] = true // final state always emitted

	emit := func(step int) error {
		psi, stats, serr := c.Solver.Solve(c.Omega)
		c.poissonIters += stats.Iterations
		c.lastStats = stats
		if serr != nil {
			return serr
		}
		m, merr := ComputeMetrics(c.Omega, psi)
		if merr != nil {
			return merr
		}
		snaps = append(snaps, Snapshot{
			Time:    float64(step) * dt,
			Step:    step,
			Omega:   c.Omega.CopyField(),
			Metrics: m,
		})
		return nil
	}

	if snapAt[0] {
		if err = emit(0); err != nil {
			err = fmt.Errorf("snapshot at step 0: %w", err)
			c.fillSummary(&sum, 0, 0, start)
			return
		}
	}
	for tstep := 1; tstep <= Nsteps; tstep++ {
		if err = c.step(dt); err != nil {
			err = fmt.Errorf("step %d (t=%8.4f): %w", tstep, float64(tstep)*dt, err)
			c.fillSummary(&sum, tstep, float64(tstep)*dt, start)
			return
		}
		if maxW := c.Omega.MaxAbs(); math.IsNaN(maxW) || maxW > c.BlowupThreshold {
			err = fmt.Errorf("step %d (t=%8.4f): max|omega| = %8.4g: %w",
				tstep, float64(tstep)*dt, maxW, ErrInstabilityDetected)
			c.fillSummary(&sum, tstep, float64(tstep)*dt, start)
			return
		}
		if snapAt[tstep] {
			if err = emit(tstep); err != nil {
				err = fmt.Errorf("snapshot at step %d: %w", tstep, err)
				c.fillSummary(&sum, tstep, float64(tstep)*dt, start)
				return
			}
		}
		if c.Verbose && c.LogFrequency > 0 && tstep%c.LogFrequency == 0 {
			fmt.Printf("Time = %8.4f, step %d of %d, max|omega| = %8.5f\n",
				float64(tstep)*dt, tstep, Nsteps, c.Omega.MaxAbs())
		}
	}
	c.fillSummary(&sum, Nsteps, c.FinalTime, start)
	if len(snaps) > 0 {
		sum.Metrics = snaps[len(snaps)-1].Metrics
		sum.Metric = sum.Metrics.Value(c.Metric)
	}
	return
}

func (c *Vorticity2D) fillSummary(sum *RunSummary, steps int, t float64, start time.Time) {
	sum.Steps = steps
	sum.FinalTime = t
	sum.WallTime = time.Since(start)
	sum.PoissonIterations = c.poissonIters
	sum.PoissonResidual = c.lastStats.Residual
}

// RunMetric builds and runs the kernel at resolution N, returning the
// designated metric of the final state. This is the unit of work the
// convergence controller schedules.
func RunMetric(ip *InputParameters.SimParameters, N int) (float64, error) {
	c, err := NewVorticity2D(N, ip)
	if err != nil {
		return 0, err
	}
	_, sum, err := c.Solve()
	if err != nil {
		return 0, err
	}
	return sum.Metric, nil
}
