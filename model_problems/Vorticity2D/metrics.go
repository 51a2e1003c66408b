package Vorticity2D

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

type MetricType uint8

const (
	Metric_MaxVorticity MetricType = iota
	Metric_MeanVorticity
	Metric_Enstrophy
	Metric_KineticEnergy
)

var metricNames = map[string]MetricType{
	"maxvorticity":  Metric_MaxVorticity,
	"meanvorticity": Metric_MeanVorticity,
	"enstrophy":     Metric_Enstrophy,
	"kineticenergy": Metric_KineticEnergy,
}

func NewMetricType(label string) (MetricType, error) {
	m, ok := metricNames[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return 0, fmt.Errorf("unknown metric type %q", label)
	}
	return m, nil
}

func (m MetricType) String() string {
	switch m {
	case Metric_MaxVorticity:
		return "MaxVorticity"
	case Metric_MeanVorticity:
		return "MeanVorticity"
	case Metric_Enstrophy:
		return "Enstrophy"
	case Metric_KineticEnergy:
		return "KineticEnergy"
	}
	return "Unknown"
}

// Metrics are the scalar diagnostics of one field snapshot. Enstrophy
// is (1/2) Int omega^2 dA, kinetic energy the equivalent (1/2) Int
// psi*omega dA (integration by parts of (1/2) Int |u|^2 dA).
type Metrics struct {
	MaxVorticity  float64
	MeanVorticity float64
	Enstrophy     float64
	KineticEnergy float64
}

func (m Metrics) Value(mt MetricType) float64 {
	switch mt {
	case Metric_MaxVorticity:
		return m.MaxVorticity
	case Metric_MeanVorticity:
		return m.MeanVorticity
	case Metric_Enstrophy:
		return m.Enstrophy
	case Metric_KineticEnergy:
		return m.KineticEnergy
	}
	return math.NaN()
}

// ComputeMetrics classifies every diagnostic explicitly: a NaN or Inf
// anywhere yields ErrInvalidMetric instead of propagating silently.
func ComputeMetrics(omega, psi Field) (Metrics, error) {
	mustSameGrid(omega, psi)
	var (
		g  = omega.G
		w  = omega.Data()
		p  = psi.Data()
		dA = g.Dx * g.Dy
		m  Metrics
	)
	m.MaxVorticity = omega.MaxAbs()
	var sumAbs, sumSq, sumPW float64
	for k, v := range w {
		sumAbs += math.Abs(v)
		sumSq += v * v
		sumPW += p[k] * v
	}
	m.MeanVorticity = sumAbs / float64(len(w))
	m.Enstrophy = 0.5 * sumSq * dA
	m.KineticEnergy = 0.5 * sumPW * dA
	for _, v := range []float64{m.MaxVorticity, m.MeanVorticity, m.Enstrophy, m.KineticEnergy} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return m, fmt.Errorf("%w: %+v", ErrInvalidMetric, m)
		}
	}
	return m, nil
}

// EnstrophyOf is the standalone enstrophy reduction used by
// conservation checks.
func EnstrophyOf(omega Field) float64 {
	w := omega.Data()
	return 0.5 * floats.Dot(w, w) * omega.G.Dx * omega.G.Dy
}
