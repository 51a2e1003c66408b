package Vorticity2D

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

type ICType uint8

const (
	IC_LambOseen ICType = iota
	IC_Gaussian
	IC_StretchedGaussian
	IC_DoubleVortex
	IC_TaylorGreen
)

var icNames = map[string]ICType{
	"lamboseen":         IC_LambOseen,
	"lamb-oseen":        IC_LambOseen,
	"gaussian":          IC_Gaussian,
	"stretchedgaussian": IC_StretchedGaussian,
	"doublevortex":      IC_DoubleVortex,
	"taylorgreen":       IC_TaylorGreen,
	"taylor-green":      IC_TaylorGreen,
}

func NewICType(label string) (ICType, error) {
	ic, ok := icNames[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return 0, fmt.Errorf("unknown initial condition type %q", label)
	}
	return ic, nil
}

func (ic ICType) String() string {
	switch ic {
	case IC_LambOseen:
		return "LambOseen"
	case IC_Gaussian:
		return "Gaussian"
	case IC_StretchedGaussian:
		return "StretchedGaussian"
	case IC_DoubleVortex:
		return "DoubleVortex"
	case IC_TaylorGreen:
		return "TaylorGreen"
	}
	return "Unknown"
}

// ICCoefficients parameterize every variant; unused fields are ignored
// by variants that do not need them.
type ICCoefficients struct {
	Gamma      float64 // circulation (amplitude for TaylorGreen)
	CoreRadius float64
	Aspect     float64 // y/x core ratio for StretchedGaussian
	Separation float64 // spacing for DoubleVortex
}

// vortexFunc evaluates the vorticity contribution of a single vortex
// centered at (x0, y0).
type vortexFunc func(x, y, x0, y0 float64) float64

func icVariant(ic ICType, c ICCoefficients, g *Grid) vortexFunc {
	switch ic {
	case IC_LambOseen:
		a2 := c.CoreRadius * c.CoreRadius
		amp := c.Gamma / (math.Pi * a2)
		return func(x, y, x0, y0 float64) float64 {
			r2 := (x-x0)*(x-x0) + (y-y0)*(y-y0)
			return amp * math.Exp(-r2/a2)
		}
	case IC_Gaussian:
		s2 := c.CoreRadius * c.CoreRadius
		amp := c.Gamma / (2. * math.Pi * s2)
		return func(x, y, x0, y0 float64) float64 {
			r2 := (x-x0)*(x-x0) + (y-y0)*(y-y0)
			return amp * math.Exp(-r2/(2.*s2))
		}
	case IC_StretchedGaussian:
		sx := c.CoreRadius
		sy := c.CoreRadius * c.Aspect
		amp := c.Gamma / (2. * math.Pi * sx * sy)
		return func(x, y, x0, y0 float64) float64 {
			ex := (x - x0) * (x - x0) / (2. * sx * sx)
			ey := (y - y0) * (y - y0) / (2. * sy * sy)
			return amp * math.Exp(-(ex + ey))
		}
	case IC_DoubleVortex:
		single := icVariant(IC_LambOseen, c, g)
		h := 0.5 * c.Separation
		return func(x, y, x0, y0 float64) float64 {
			return single(x, y, x0-h, y0) - single(x, y, x0+h, y0)
		}
	case IC_TaylorGreen:
		kx := 2. * math.Pi / g.Lx
		ky := 2. * math.Pi / g.Ly
		return func(x, y, x0, y0 float64) float64 {
			return c.Gamma * math.Sin(kx*(x-x0)) * math.Sin(ky*(y-y0))
		}
	}
	panic(fmt.Errorf("unhandled initial condition type %d", ic))
}

type PatternType uint8

const (
	Pattern_Single PatternType = iota
	Pattern_Circular
	Pattern_Grid
	Pattern_Random
)

var patternNames = map[string]PatternType{
	"single":   Pattern_Single,
	"circular": Pattern_Circular,
	"grid":     Pattern_Grid,
	"random":   Pattern_Random,
}

func NewPatternType(label string) (PatternType, error) {
	p, ok := patternNames[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return 0, fmt.Errorf("unknown vortex pattern %q", label)
	}
	return p, nil
}

// DisperseVortices places n vortex centers in the domain following the
// requested pattern. Random placement retries until minDist separation
// is met, giving up with a warning after a bounded attempt count.
func DisperseVortices(n int, pattern PatternType, Lx, Ly, minDist float64, rng *rand.Rand) [][2]float64 {
	if n < 1 {
		n = 1
	}
	if n == 1 || pattern == Pattern_Single {
		return [][2]float64{{0, 0}}
	}
	switch pattern {
	case Pattern_Circular:
		radius := math.Min(Lx, Ly) / 4.
		pos := make([][2]float64, n)
		for i := 0; i < n; i++ {
			theta := 2. * math.Pi * float64(i) / float64(n)
			pos[i] = [2]float64{radius * math.Cos(theta), radius * math.Sin(theta)}
		}
		return pos
	case Pattern_Grid:
		nCols := int(math.Ceil(math.Sqrt(float64(n))))
		nRows := int(math.Ceil(float64(n) / float64(nCols)))
		spacingX := Lx / float64(nCols+1)
		spacingY := Ly / float64(nRows+1)
		pos := make([][2]float64, 0, n)
		for i := 0; i < nRows && len(pos) < n; i++ {
			for j := 0; j < nCols && len(pos) < n; j++ {
				pos = append(pos, [2]float64{
					float64(j+1)*spacingX - Lx/2,
					float64(i+1)*spacingY - Ly/2,
				})
			}
		}
		return pos
	case Pattern_Random:
		if minDist == 0 {
			minDist = math.Max(Lx, Ly) / 10.
		}
		const maxAttempts = 10000
		pos := make([][2]float64, 0, n)
		for i := 0; i < n; i++ {
			placed := false
			for attempts := 0; attempts < maxAttempts; attempts++ {
				x := (rng.Float64() - 0.5) * Lx * 0.9
				y := (rng.Float64() - 0.5) * Ly * 0.9
				valid := true
				for _, p := range pos {
					if math.Hypot(p[0]-x, p[1]-y) < minDist {
						valid = false
						break
					}
				}
				if valid {
					pos = append(pos, [2]float64{x, y})
					placed = true
					break
				}
			}
			if !placed {
				fmt.Printf("Warning: could not place all %d vortices with minimum separation %g\n", n, minDist)
				break
			}
		}
		return pos
	}
	return DisperseVortices(n, Pattern_Grid, Lx, Ly, minDist, rng)
}

// InitialVorticity superposes the chosen variant at each vortex center.
func InitialVorticity(g *Grid, ic ICType, c ICCoefficients, positions [][2]float64) Field {
	var (
		w    = NewField(g)
		data = w.Data()
		f    = icVariant(ic, c, g)
	)
	for iy := 0; iy < g.Ny; iy++ {
		y := g.Y(iy)
		for ix := 0; ix < g.Nx; ix++ {
			x := g.X(ix)
			var sum float64
			for _, p := range positions {
				sum += f(x, y, p[0], p[1])
			}
			data[iy*g.Nx+ix] = sum
		}
	}
	if g.BC == BC_Dirichlet {
		zeroBoundary(w)
	}
	return w
}

func zeroBoundary(f Field) {
	var (
		g    = f.G
		data = f.Data()
	)
	for ix := 0; ix < g.Nx; ix++ {
		data[ix] = 0
		data[(g.Ny-1)*g.Nx+ix] = 0
	}
	for iy := 0; iy < g.Ny; iy++ {
		data[iy*g.Nx] = 0
		data[iy*g.Nx+g.Nx-1] = 0
	}
}
