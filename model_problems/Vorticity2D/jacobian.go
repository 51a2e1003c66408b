package Vorticity2D

/*
Arakawa's second-order Jacobian for the advection term

	J(psi, omega) = d(psi)/dx d(omega)/dy - d(psi)/dy d(omega)/dx

is the average of the three index permutations J1 (++), J2 (+x) and
J3 (x+). The average is what gives the scheme its defining property:
on a periodic grid the discrete sums of J, omega*J and psi*J all vanish
to round-off, so mean vorticity, enstrophy and kinetic energy are
conserved by the advection operator.
*/

// Jacobian computes J(psi, omega) on the shared grid. Pure function:
// neither input is modified. On Dirichlet grids the boundary rows are
// zero (psi = omega = 0 there).
func Jacobian(psi, omega Field) Field {
	mustSameGrid(psi, omega)
	var (
		g     = psi.G
		Nx    = g.Nx
		Ny    = g.Ny
		p     = psi.Data()
		w     = omega.Data()
		out   = NewField(g)
		o     = out.Data()
		coef  = 1. / (12. * g.Dx * g.Dy)
		wrap  = g.BC == BC_Periodic
		lo    = 0
		hiX   = Nx
		hiY   = Ny
		xm, xp, ym, yp func(int) int
	)
	if wrap {
		xm = func(i int) int { return (i - 1 + Nx) % Nx }
		xp = func(i int) int { return (i + 1) % Nx }
		ym = func(j int) int { return (j - 1 + Ny) % Ny }
		yp = func(j int) int { return (j + 1) % Ny }
	} else {
		lo, hiX, hiY = 1, Nx-1, Ny-1
		xm = func(i int) int { return i - 1 }
		xp = func(i int) int { return i + 1 }
		ym = func(j int) int { return j - 1 }
		yp = func(j int) int { return j + 1 }
	}
	for j := lo; j < hiY; j++ {
		jm, jp := ym(j), yp(j)
		for i := lo; i < hiX; i++ {
			im, ip := xm(i), xp(i)
			var (
				pE, pW = p[j*Nx+ip], p[j*Nx+im]
				pN, pS = p[jp*Nx+i], p[jm*Nx+i]
				pNE    = p[jp*Nx+ip]
				pNW    = p[jp*Nx+im]
				pSE    = p[jm*Nx+ip]
				pSW    = p[jm*Nx+im]
				wE, wW = w[j*Nx+ip], w[j*Nx+im]
				wN, wS = w[jp*Nx+i], w[jm*Nx+i]
				wNE    = w[jp*Nx+ip]
				wNW    = w[jp*Nx+im]
				wSE    = w[jm*Nx+ip]
				wSW    = w[jm*Nx+im]
			)
			j1 := (pE-pW)*(wN-wS) - (pN-pS)*(wE-wW)
			j2 := pE*(wNE-wSE) - pW*(wNW-wSW) - pN*(wNE-wNW) + pS*(wSE-wSW)
			j3 := pNE*(wN-wE) - pSW*(wW-wS) - pNW*(wN-wW) + pSE*(wE-wS)
			o[j*Nx+i] = coef * (j1 + j2 + j3)
		}
	}
	return out
}

// Laplacian applies the 5-point stencil. Boundary rows are zero on
// Dirichlet grids.
func Laplacian(f Field) Field {
	var (
		g    = f.G
		Nx   = g.Nx
		Ny   = g.Ny
		d    = f.Data()
		out  = NewField(g)
		o    = out.Data()
		rdx2 = 1. / (g.Dx * g.Dx)
		rdy2 = 1. / (g.Dy * g.Dy)
	)
	if g.BC == BC_Periodic {
		for j := 0; j < Ny; j++ {
			jm, jp := (j-1+Ny)%Ny, (j+1)%Ny
			for i := 0; i < Nx; i++ {
				im, ip := (i-1+Nx)%Nx, (i+1)%Nx
				o[j*Nx+i] = (d[j*Nx+ip]-2*d[j*Nx+i]+d[j*Nx+im])*rdx2 +
					(d[jp*Nx+i]-2*d[j*Nx+i]+d[jm*Nx+i])*rdy2
			}
		}
		return out
	}
	for j := 1; j < Ny-1; j++ {
		for i := 1; i < Nx-1; i++ {
			o[j*Nx+i] = (d[j*Nx+i+1]-2*d[j*Nx+i]+d[j*Nx+i-1])*rdx2 +
				(d[(j+1)*Nx+i]-2*d[j*Nx+i]+d[(j-1)*Nx+i])*rdy2
		}
	}
	return out
}

// Velocity recovers (u, v) = (d(psi)/dy, -d(psi)/dx) by central
// differences.
func Velocity(psi Field) (u, v Field) {
	var (
		g  = psi.G
		Nx = g.Nx
		Ny = g.Ny
		p  = psi.Data()
	)
	u, v = NewField(g), NewField(g)
	ud, vd := u.Data(), v.Data()
	if g.BC == BC_Periodic {
		for j := 0; j < Ny; j++ {
			jm, jp := (j-1+Ny)%Ny, (j+1)%Ny
			for i := 0; i < Nx; i++ {
				im, ip := (i-1+Nx)%Nx, (i+1)%Nx
				ud[j*Nx+i] = (p[jp*Nx+i] - p[jm*Nx+i]) / (2 * g.Dy)
				vd[j*Nx+i] = -(p[j*Nx+ip] - p[j*Nx+im]) / (2 * g.Dx)
			}
		}
		return
	}
	for j := 1; j < Ny-1; j++ {
		for i := 1; i < Nx-1; i++ {
			ud[j*Nx+i] = (p[(j+1)*Nx+i] - p[(j-1)*Nx+i]) / (2 * g.Dy)
			vd[j*Nx+i] = -(p[j*Nx+i+1] - p[j*Nx+i-1]) / (2 * g.Dx)
		}
	}
	return
}
