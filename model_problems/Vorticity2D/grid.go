package Vorticity2D

import (
	"fmt"
	"strings"

	"github.com/vortexlab/vortexfd/utils"
)

type BCType uint8

const (
	BC_Periodic BCType = iota
	BC_Dirichlet
)

var bcNames = map[string]BCType{
	"periodic":  BC_Periodic,
	"dirichlet": BC_Dirichlet,
}

func NewBCType(label string) (BCType, error) {
	bc, ok := bcNames[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return 0, fmt.Errorf("unknown boundary condition type %q", label)
	}
	return bc, nil
}

func (bc BCType) String() string {
	switch bc {
	case BC_Periodic:
		return "Periodic"
	case BC_Dirichlet:
		return "Dirichlet"
	}
	return "Unknown"
}

// Grid is the immutable discretization of the rectangular domain
// [-Lx/2,Lx/2] x [-Ly/2,Ly/2]. Periodic grids exclude the duplicate
// right/top boundary point, Dirichlet grids include both boundaries.
type Grid struct {
	Nx, Ny int
	Lx, Ly float64
	Dx, Dy float64
	BC     BCType
}

func NewGrid(Nx, Ny int, Lx, Ly float64, bc BCType) (*Grid, error) {
	if Nx < 2 || Ny < 2 {
		return nil, fmt.Errorf("grid dimensions must be >= 2 in each axis, got %dx%d", Nx, Ny)
	}
	if Lx <= 0 || Ly <= 0 {
		return nil, fmt.Errorf("domain extents must be positive, got %g x %g", Lx, Ly)
	}
	g := &Grid{Nx: Nx, Ny: Ny, Lx: Lx, Ly: Ly, BC: bc}
	switch bc {
	case BC_Periodic:
		g.Dx, g.Dy = Lx/float64(Nx), Ly/float64(Ny)
	case BC_Dirichlet:
		g.Dx, g.Dy = Lx/float64(Nx-1), Ly/float64(Ny-1)
	default:
		return nil, fmt.Errorf("unknown boundary condition type %d", bc)
	}
	return g, nil
}

func (g *Grid) X(ix int) float64 { return -0.5*g.Lx + float64(ix)*g.Dx }
func (g *Grid) Y(iy int) float64 { return -0.5*g.Ly + float64(iy)*g.Dy }

// Field is a scalar quantity discretized on a Grid. A Field is only
// valid together with the grid it was built on; combining fields from
// different grids panics.
type Field struct {
	G *Grid
	utils.Matrix
}

func NewField(g *Grid) Field {
	return Field{G: g, Matrix: utils.NewMatrix(g.Ny, g.Nx)}
}

func (f Field) CopyField() Field {
	return Field{G: f.G, Matrix: f.Matrix.Copy()}
}

func mustSameGrid(a, b Field) {
	if a.G != b.G {
		panic(fmt.Errorf("field grid mismatch: %dx%d vs %dx%d",
			a.G.Nx, a.G.Ny, b.G.Nx, b.G.Ny))
	}
}
