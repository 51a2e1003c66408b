package convergence

import (
	"errors"
	"fmt"
	"math"
	"time"
)

/*
Adaptive grid-convergence search.

The controller schedules kernel runs at a sequence of mesh resolutions
and decides, after each run, whether the designated metric has
converged to the requested tolerance. The search has four phases:

	InitialPair      two coarse runs at NMin and ratio*NMin
	Richardson       a third run fixes the empirical order p; the
	                 fitted power law predicts the resolution N* whose
	                 extrapolated error meets SafetyMargin*tolerance
	Bracketing       geometric doubling until a passing resolution is
	                 found (fallback when the fit is degenerate or the
	                 prediction misses)
	BinaryRefinement bisection of the bracket down to adjacent even
	                 resolutions

Convergence decisions compare a discrepancy, not the raw metric: the
deviation from the Richardson-extrapolated continuum value when a fit
exists, the successive-resolution change otherwise (re-anchored to the
fine bracket metric once one is found). Kernel failures mark the tested
resolution failed-to-evaluate and force the fallback path; they are
never fed into the order fit.
*/

type Phase uint8

const (
	InitialPair Phase = iota
	Richardson
	Bracketing
	BinaryRefinement
)

func (p Phase) String() string {
	switch p {
	case InitialPair:
		return "InitialPair"
	case Richardson:
		return "Richardson"
	case Bracketing:
		return "Bracketing"
	case BinaryRefinement:
		return "BinaryRefinement"
	}
	return "Unknown"
}

type Status uint8

const (
	StatusConverged Status = iota
	StatusHalted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "Converged"
	case StatusHalted:
		return "Halted"
	case StatusFailed:
		return "Failed"
	}
	return "Unknown"
}

// ErrBracketNotFound reports that geometric refinement reached NMax
// without meeting the tolerance. It appears in Report.Notes; the study
// itself terminates with StatusFailed rather than returning an error.
var ErrBracketNotFound = errors.New("bracket not found: tolerance not met at maximum resolution")

// Runner executes one kernel run at resolution N and returns the
// designated scalar metric of the final state. A run is an atomic unit
// of work: cancellation is only polled between runs.
type Runner func(N int) (float64, error)

// Observation is one entry of the study trace.
type Observation struct {
	N           int
	Metric      float64
	Discrepancy float64
	Phase       Phase
	Failed      bool
	Note        string
}

// Progress is handed to the optional progress sink after every kernel
// run. Purely observational.
type Progress struct {
	N           int
	Metric      float64
	Discrepancy float64
	Phase       Phase
	Elapsed     time.Duration
}

// Report is the terminal record of one convergence study. It is always
// produced, whatever the outcome.
type Report struct {
	Trace      []Observation
	NStar      int
	Order      float64
	OrderValid bool
	Status     Status
	Notes      []string
	Best       Observation
}

type Options struct {
	Tolerance       float64
	NMin, NMax      int
	RefinementRatio int     // resolution ratio of the initial runs (default 2)
	SafetyMargin    float64 // Richardson target = margin * tolerance (default 0.8)
	MaxJumpFactor   float64 // cap on the predicted resolution jump (default 4)
	MinOrder        float64 // below this the fit is degenerate (default 0.1)
	MaxBisections   int     // bisection budget (default 40)
	Cancel          func() bool
	Progress        func(Progress)
}

func (o *Options) applyDefaults() {
	if o.RefinementRatio == 0 {
		o.RefinementRatio = 2
	}
	if o.SafetyMargin == 0 {
		o.SafetyMargin = 0.8
	}
	if o.MaxJumpFactor == 0 {
		o.MaxJumpFactor = 4
	}
	if o.MinOrder == 0 {
		o.MinOrder = 0.1
	}
	if o.MaxBisections == 0 {
		o.MaxBisections = 40
	}
}

type Controller struct {
	run   Runner
	opt   Options
	trace []*Observation
	notes []string
	start time.Time

	// reference value the discrepancy is measured against, once fixed
	ref    float64
	hasRef bool

	order      float64
	orderValid bool
	halted     bool
}

func NewController(run Runner, opt Options) (*Controller, error) {
	if run == nil {
		return nil, fmt.Errorf("nil runner")
	}
	opt.applyDefaults()
	if opt.Tolerance <= 0 {
		return nil, fmt.Errorf("tolerance must be positive, got %g", opt.Tolerance)
	}
	if opt.NMin < 4 {
		return nil, fmt.Errorf("NMin must be >= 4, got %d", opt.NMin)
	}
	opt.NMin = roundEven(float64(opt.NMin))
	opt.NMax = roundEven(float64(opt.NMax))
	if opt.NMax < opt.NMin*opt.RefinementRatio {
		return nil, fmt.Errorf("NMax (%d) must be at least RefinementRatio*NMin (%d)",
			opt.NMax, opt.NMin*opt.RefinementRatio)
	}
	return &Controller{run: run, opt: opt}, nil
}

// roundEven maps a requested resolution onto the allowed discrete set
// (positive even integers, as required by the periodic spectral solve).
func roundEven(x float64) int {
	n := int(math.Round(x / 2.))
	if n < 1 {
		n = 1
	}
	return 2 * n
}

func (c *Controller) clampN(n int) int {
	if n < c.opt.NMin {
		n = c.opt.NMin
	}
	if n > c.opt.NMax {
		n = c.opt.NMax
	}
	return n
}

func (c *Controller) note(format string, args ...interface{}) {
	c.notes = append(c.notes, fmt.Sprintf(format, args...))
}

// evaluate runs the kernel at N, records the observation and invokes
// the progress sink. A nil return means the study was halted by the
// caller's cancellation signal before the run started.
func (c *Controller) evaluate(N int, phase Phase) *Observation {
	if c.opt.Cancel != nil && c.opt.Cancel() {
		c.halted = true
		return nil
	}
	ob := &Observation{N: N, Phase: phase, Discrepancy: math.Inf(1)}
	m, err := c.run(N)
	switch {
	case err != nil:
		ob.Failed = true
		ob.Note = err.Error()
		c.note("N=%d failed to evaluate: %v", N, err)
	case math.IsNaN(m) || math.IsInf(m, 0):
		ob.Failed = true
		ob.Note = "non-finite metric"
		c.note("N=%d returned a non-finite metric", N)
	default:
		ob.Metric = m
	}
	c.trace = append(c.trace, ob)
	return ob
}

// progress notifies the optional sink; invoked exactly once per kernel
// run, after the discrepancy (when computable) has been filled in.
func (c *Controller) progress(ob *Observation) {
	if c.opt.Progress != nil {
		c.opt.Progress(Progress{
			N:           ob.N,
			Metric:      ob.Metric,
			Discrepancy: ob.Discrepancy,
			Phase:       ob.Phase,
			Elapsed:     time.Since(c.start),
		})
	}
}

func (c *Controller) setDiscrepancy(ob *Observation, d float64) {
	ob.Discrepancy = d
}

// lastGoodMetric is the most recent successfully evaluated metric.
func (c *Controller) lastGoodMetric() (float64, bool) {
	for i := len(c.trace) - 1; i >= 0; i-- {
		if !c.trace[i].Failed {
			return c.trace[i].Metric, true
		}
	}
	return 0, false
}

func (c *Controller) maxTestedN() int {
	n := 0
	for _, ob := range c.trace {
		if ob.N > n {
			n = ob.N
		}
	}
	return n
}

// Run executes the study to a terminal Report. It never returns an
// error: failures are folded into the report status and notes.
func (c *Controller) Run() Report {
	c.start = time.Now()

	// InitialPair
	N0 := c.opt.NMin
	N1 := c.clampN(N0 * c.opt.RefinementRatio)
	ob0 := c.evaluate(N0, InitialPair)
	if ob0 == nil {
		return c.report(StatusHalted, 0)
	}
	c.progress(ob0)
	ob1 := c.evaluate(N1, InitialPair)
	if ob1 == nil {
		return c.report(StatusHalted, 0)
	}
	c.progress(ob1)

	// Richardson: third run fixes the order, then one predicted run
	if !ob0.Failed && !ob1.Failed {
		if done, rep := c.richardson(ob0, ob1); done {
			return rep
		}
	} else {
		c.note("initial pair incomplete, skipping order estimation")
	}

	// Bracketing
	NHi, done, rep := c.bracket()
	if done {
		return rep
	}

	// BinaryRefinement
	return c.refine(NHi)
}

// richardson performs the order fit and the predicted run. It returns
// done=true when the study terminates inside this phase (converged or
// halted); otherwise the controller falls through to bracketing.
func (c *Controller) richardson(ob0, ob1 *Observation) (bool, Report) {
	var (
		r   = float64(c.opt.RefinementRatio)
		tol = c.opt.Tolerance
		N2  = ob1.N * c.opt.RefinementRatio
	)
	if N2 > c.opt.NMax {
		c.note("no room for a third resolution below NMax, skipping order estimation")
		return false, Report{}
	}
	ob2 := c.evaluate(N2, Richardson)
	if ob2 == nil {
		return true, c.report(StatusHalted, 0)
	}
	if ob2.Failed {
		c.progress(ob2)
		return false, Report{}
	}
	d01 := math.Abs(ob1.Metric - ob0.Metric)
	d12 := math.Abs(ob2.Metric - ob1.Metric)
	if d01 == 0 || d12 == 0 {
		c.progress(ob2)
		c.note("identical consecutive metrics, convergence order undefined, falling back to bracketing")
		return false, Report{}
	}
	p := math.Log(d01/d12) / math.Log(r)
	if math.IsNaN(p) || math.IsInf(p, 0) || math.Abs(p) < c.opt.MinOrder {
		c.progress(ob2)
		c.note("degenerate convergence order p=%.3g, falling back to bracketing", p)
		return false, Report{}
	}
	c.order = p
	c.orderValid = true
	rp := math.Pow(r, p)
	mExact := ob2.Metric + (ob2.Metric-ob1.Metric)/(rp-1)
	c.ref = mExact
	c.hasRef = true
	c.setDiscrepancy(ob0, math.Abs(ob0.Metric-mExact))
	c.setDiscrepancy(ob1, math.Abs(ob1.Metric-mExact))
	c.setDiscrepancy(ob2, math.Abs(ob2.Metric-mExact))
	c.progress(ob2)

	// error model e(N) = |C| N^-p, anchored at the finest observation
	C := math.Abs(ob2.Metric-mExact) * math.Pow(float64(N2), p)
	target := c.opt.SafetyMargin * tol
	nStar := math.Pow(C/target, 1./p)
	if jumpCap := c.opt.MaxJumpFactor * float64(N2); nStar > jumpCap {
		c.note("predicted N*=%.0f exceeds jump cap, clamped to %.0f", nStar, jumpCap)
		nStar = jumpCap
	}
	Np := c.clampN(roundEven(nStar))
	if Np == N2 {
		// prediction landed on the already-tested resolution
		if ob2.Discrepancy <= tol {
			return true, c.report(StatusConverged, N2)
		}
		return false, Report{}
	}
	obS := c.evaluate(Np, Richardson)
	if obS == nil {
		return true, c.report(StatusHalted, 0)
	}
	if !obS.Failed {
		c.setDiscrepancy(obS, math.Abs(obS.Metric-mExact))
	}
	c.progress(obS)
	if !obS.Failed && obS.Discrepancy <= tol {
		return true, c.report(StatusConverged, c.smallestPassing())
	}
	return false, Report{}
}

// bracket doubles the resolution geometrically until a passing one is
// found. Returns the passing resolution NHi, or a terminal report when
// the study ends here (halt or bracket failure).
func (c *Controller) bracket() (NHi int, done bool, rep Report) {
	var (
		r      = c.opt.RefinementRatio
		tol    = c.opt.Tolerance
		last   = c.maxTestedN()
		atNMax = last >= c.opt.NMax
	)
	// a passing observation may already exist from the Richardson phase
	if c.hasRef {
		for _, ob := range c.trace {
			if !ob.Failed && ob.Discrepancy <= tol {
				return ob.N, false, Report{}
			}
		}
	}
	for !atNMax {
		N := last * r
		if N >= c.opt.NMax {
			N = c.opt.NMax
			atNMax = true
		}
		ob := c.evaluate(N, Bracketing)
		if ob == nil {
			return 0, true, c.report(StatusHalted, 0)
		}
		if !ob.Failed {
			if c.hasRef {
				c.setDiscrepancy(ob, math.Abs(ob.Metric-c.ref))
			} else if prev, ok := c.prevGoodMetric(ob); ok {
				c.setDiscrepancy(ob, math.Abs(ob.Metric-prev))
			}
			c.progress(ob)
			if ob.Discrepancy <= tol {
				if !c.hasRef {
					// anchor refinement against the fine bracket metric
					c.ref = ob.Metric
					c.hasRef = true
				}
				return N, false, Report{}
			}
		} else {
			c.progress(ob)
		}
		last = N
	}
	c.note("%v (NMax=%d)", ErrBracketNotFound, c.opt.NMax)
	return 0, true, c.report(StatusFailed, 0)
}

// prevGoodMetric is the metric of the latest successful observation
// before ob in the trace.
func (c *Controller) prevGoodMetric(ob *Observation) (float64, bool) {
	for i := len(c.trace) - 1; i >= 0; i-- {
		if c.trace[i] == ob {
			for j := i - 1; j >= 0; j-- {
				if !c.trace[j].Failed {
					return c.trace[j].Metric, true
				}
			}
			return 0, false
		}
	}
	return 0, false
}

// refine bisects (NLo, NHi] down to adjacent even resolutions.
func (c *Controller) refine(NHi int) Report {
	var (
		tol = c.opt.Tolerance
		NLo = c.opt.NMin
	)
	// tightest failing resolution below NHi seen so far
	for _, ob := range c.trace {
		if ob.N < NHi && ob.N > NLo && (ob.Failed || ob.Discrepancy > tol) {
			NLo = ob.N
		}
	}
	for iter := 0; iter < c.opt.MaxBisections && NHi-NLo > 2; iter++ {
		mid := roundEven(float64(NLo+NHi) / 2.)
		if mid <= NLo || mid >= NHi {
			break
		}
		ob := c.evaluate(mid, BinaryRefinement)
		if ob == nil {
			return c.report(StatusHalted, 0)
		}
		if !ob.Failed {
			c.setDiscrepancy(ob, math.Abs(ob.Metric-c.ref))
		}
		c.progress(ob)
		if !ob.Failed && ob.Discrepancy <= tol {
			NHi = mid
		} else {
			NLo = mid
		}
	}
	return c.report(StatusConverged, NHi)
}

// smallestPassing is the smallest successfully evaluated resolution
// within tolerance.
func (c *Controller) smallestPassing() int {
	nStar := 0
	for _, ob := range c.trace {
		if !ob.Failed && ob.Discrepancy <= c.opt.Tolerance {
			if nStar == 0 || ob.N < nStar {
				nStar = ob.N
			}
		}
	}
	return nStar
}

func (c *Controller) report(status Status, nStar int) Report {
	trace := make([]Observation, len(c.trace))
	for i, ob := range c.trace {
		trace[i] = *ob
	}
	rep := Report{
		Trace:      trace,
		NStar:      nStar,
		Order:      c.order,
		OrderValid: c.orderValid,
		Status:     status,
		Notes:      c.notes,
	}
	best := Observation{Discrepancy: math.Inf(1)}
	for _, ob := range trace {
		if !ob.Failed && ob.Discrepancy < best.Discrepancy {
			best = ob
		}
	}
	if best.N == 0 {
		// no finite discrepancy: fall back to the finest successful run
		for i := len(trace) - 1; i >= 0; i-- {
			if !trace[i].Failed {
				best = trace[i]
				break
			}
		}
	}
	rep.Best = best
	return rep
}
