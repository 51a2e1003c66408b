package Vorticity2D

import "errors"

// Failure taxonomy surfaced by the kernel. Callers classify with
// errors.Is; the convergence controller maps each of these to a
// failed-to-evaluate resolution rather than aborting the study.
var (
	// ErrPoissonSolveFailure: the elliptic solve missed its residual
	// tolerance within the iteration budget, including one bounded
	// retry at 10x relaxed tolerance.
	ErrPoissonSolveFailure = errors.New("poisson solve failure: residual tolerance not reached within iteration budget")

	// ErrInstabilityDetected: vorticity exceeded the blow-up threshold
	// or went non-finite during time stepping.
	ErrInstabilityDetected = errors.New("instability detected: vorticity exceeded blow-up threshold")

	// ErrInvalidMetric: a diagnostic reduced to NaN or Inf.
	ErrInvalidMetric = errors.New("invalid metric: non-finite diagnostic value")
)
