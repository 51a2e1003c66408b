package InputParameters

import (
	"fmt"
	"math"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file. The struct is treated
// as immutable once a run begins; ApplyDefaults fills unset fields.
type SimParameters struct {
	Title           string    `yaml:"Title"`
	Nu              float64   `yaml:"Nu"`        // kinematic viscosity
	Dt              float64   `yaml:"Dt"`        // time step
	FinalTime       float64   `yaml:"FinalTime"` // simulation horizon
	Lx              float64   `yaml:"Lx"`
	Ly              float64   `yaml:"Ly"`
	N               int       `yaml:"N"`        // grid resolution for single runs
	BCType          string    `yaml:"BCType"`   // Periodic | Dirichlet
	InitType        string    `yaml:"InitType"` // LambOseen | Gaussian | StretchedGaussian | DoubleVortex | TaylorGreen
	Gamma           float64   `yaml:"Gamma"`    // circulation / amplitude
	CoreRadius      float64   `yaml:"CoreRadius"`
	Aspect          float64   `yaml:"Aspect"`     // stretched Gaussian y/x ratio
	Separation      float64   `yaml:"Separation"` // double vortex spacing
	Pattern         string    `yaml:"Pattern"`    // Single | Circular | Grid | Random
	NVortices       int       `yaml:"NVortices"`
	MinSeparation   float64   `yaml:"MinSeparation"` // for Random pattern
	RandomSeed      int64     `yaml:"RandomSeed"`
	SnapshotTimes   []float64 `yaml:"SnapshotTimes"`
	Metric          string    `yaml:"Metric"` // MaxVorticity | MeanVorticity | Enstrophy | KineticEnergy
	Tolerance       float64   `yaml:"Tolerance"`
	NMin            int       `yaml:"NMin"`
	NMax            int       `yaml:"NMax"`
	BlowupThreshold float64   `yaml:"BlowupThreshold"`
	PoissonTol      float64   `yaml:"PoissonTol"`
	PoissonMaxIter  int       `yaml:"PoissonMaxIter"`
	SafetyMargin    float64   `yaml:"SafetyMargin"`  // Richardson target = margin * tolerance
	MaxJumpFactor   float64   `yaml:"MaxJumpFactor"` // cap on predicted resolution jump
	LogFrequency    int       `yaml:"LogFrequency"`
}

func (ip *SimParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	ip.ApplyDefaults()
	return nil
}

// ApplyDefaults fills zero-valued fields with the standard study
// configuration (10x10 domain, Lamb-Oseen vortex, nu=1e-4).
func (ip *SimParameters) ApplyDefaults() {
	if ip.Title == "" {
		ip.Title = "untitled"
	}
	if ip.Nu == 0 {
		ip.Nu = 1.e-4
	}
	if ip.Dt == 0 {
		ip.Dt = 1.e-3
	}
	if ip.FinalTime == 0 {
		ip.FinalTime = 10.
	}
	if ip.Lx == 0 {
		ip.Lx = 10.
	}
	if ip.Ly == 0 {
		ip.Ly = 10.
	}
	if ip.N == 0 {
		ip.N = 128
	}
	if ip.BCType == "" {
		ip.BCType = "Periodic"
	}
	if ip.InitType == "" {
		ip.InitType = "LambOseen"
	}
	if ip.Gamma == 0 {
		ip.Gamma = 1.
	}
	if ip.CoreRadius == 0 {
		ip.CoreRadius = 1.
	}
	if ip.Aspect == 0 {
		ip.Aspect = 2.
	}
	if ip.Separation == 0 {
		ip.Separation = 2.
	}
	if ip.Pattern == "" {
		ip.Pattern = "Single"
	}
	if ip.NVortices == 0 {
		ip.NVortices = 1
	}
	if ip.MinSeparation == 0 {
		ip.MinSeparation = math.Max(ip.Lx, ip.Ly) / 10.
	}
	if ip.RandomSeed == 0 {
		ip.RandomSeed = 1
	}
	if ip.Metric == "" {
		ip.Metric = "MaxVorticity"
	}
	if ip.Tolerance == 0 {
		ip.Tolerance = 1.e-2
	}
	if ip.NMin == 0 {
		ip.NMin = 64
	}
	if ip.NMax == 0 {
		ip.NMax = 512
	}
	if ip.BlowupThreshold == 0 {
		ip.BlowupThreshold = 1.e6
	}
	if ip.PoissonTol == 0 {
		ip.PoissonTol = 1.e-10
	}
	if ip.PoissonMaxIter == 0 {
		ip.PoissonMaxIter = 10000
	}
	if ip.SafetyMargin == 0 {
		ip.SafetyMargin = 0.8
	}
	if ip.MaxJumpFactor == 0 {
		ip.MaxJumpFactor = 4.
	}
	if ip.LogFrequency == 0 {
		ip.LogFrequency = 100
	}
}

// CFLAdvisory reports the advective and diffusive stability numbers for
// resolution N. Advisory only: the kernel does not refuse to run, it
// detects blow-up instead.
func (ip *SimParameters) CFLAdvisory(N int) (adv, diff float64) {
	var (
		dx = ip.Lx / float64(N)
		dy = ip.Ly / float64(N)
		// characteristic velocity of a single vortex core
		u = ip.Gamma / (2. * math.Pi * ip.CoreRadius)
	)
	adv = u * ip.Dt * (1./dx + 1./dy)
	diff = 2. * ip.Nu * ip.Dt * (1./(dx*dx) + 1./(dy*dy))
	return
}

func (ip *SimParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.2e\t\t= Nu\n", ip.Nu)
	fmt.Printf("%8.2e\t\t= Dt\n", ip.Dt)
	fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
	fmt.Printf("%8.5f x %8.5f\t= Lx x Ly\n", ip.Lx, ip.Ly)
	fmt.Printf("[%s]\t\t\t= BCType\n", ip.BCType)
	fmt.Printf("[%s]\t\t= InitType\n", ip.InitType)
	fmt.Printf("[%s]\t\t= Pattern (%d vortices)\n", ip.Pattern, ip.NVortices)
	fmt.Printf("[%s]\t\t= Metric\n", ip.Metric)
	fmt.Printf("%8.2e\t\t= Tolerance\n", ip.Tolerance)
	fmt.Printf("[%d, %d]\t\t= NMin, NMax\n", ip.NMin, ip.NMax)
	adv, diff := ip.CFLAdvisory(ip.N)
	fmt.Printf("%8.5f / %8.5f\t= advective / diffusive CFL at N=%d\n", adv, diff, ip.N)
}

// Presets recovered from the original research tool's configuration
// manager.
var presets = map[string]SimParameters{
	"Quick Test": {
		Title:     "Quick Test",
		InitType:  "LambOseen",
		Pattern:   "Single",
		N:         64,
		FinalTime: 1.,
	},
	"Standard": {
		Title:     "Standard",
		InitType:  "LambOseen",
		Pattern:   "Grid",
		NVortices: 4,
		N:         128,
		FinalTime: 10.,
	},
	"High Resolution": {
		Title:     "High Resolution",
		InitType:  "LambOseen",
		Pattern:   "Circular",
		NVortices: 6,
		N:         256,
		FinalTime: 10.,
	},
	"Convergence Study": {
		Title:     "Convergence Study",
		InitType:  "TaylorGreen",
		Pattern:   "Single",
		N:         128,
		FinalTime: 1.,
		Dt:        1.e-4,
	},
}

func Preset(name string) (*SimParameters, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q, available: %v", name, PresetNames())
	}
	p.ApplyDefaults()
	return &p, nil
}

func PresetNames() (names []string) {
	for k := range presets {
		names = append(names, k)
	}
	sort.Strings(names)
	return
}
