package elements

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/constants"
)

// None does nothing. It is the zero element of a lattice.
type None struct {
	Thin
}

func (*None) Name() string                               { return KindNone.String() }
func (*None) Kind() Kind                                 { return KindNone }
func (*None) PushParticle(*beam.Particle, *beam.RefPart) {}
func (*None) sealed()                                    {}

// Multipole is a thin complex multipole kick of order M (1 dipole,
// 2 quadrupole, 3 sextupole, ...) with integrated normal and skew
// strengths Kn, Ks.
type Multipole struct {
	Thin
	M      int
	Kn, Ks float64

	factorial float64
}

func NewMultipole(m int, kn, ks float64) (*Multipole, error) {
	if m < 1 {
		return nil, fmt.Errorf("%w: Multipole order must be >= 1, got %d", ErrInvalidParameter, m)
	}
	if err := checkFinite(KindMultipole, param{"k_normal", kn}, param{"k_skew", ks}); err != nil {
		return nil, err
	}
	mp := &Multipole{M: m, Kn: kn, Ks: ks}
	mp.factorial = factorial(m - 1)
	return mp, nil
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

func (*Multipole) Name() string { return KindMultipole.String() }
func (*Multipole) Kind() Kind   { return KindMultipole }
func (*Multipole) sealed()      {}

func (m *Multipole) PushParticle(p *beam.Particle, _ *beam.RefPart) {
	f := m.factorial
	if f == 0 {
		f = factorial(m.M - 1)
	}
	zeta := complex(p.X, p.Y)
	kick := complex(m.Kn, m.Ks)
	for i := 1; i < m.M; i++ {
		kick *= zeta
	}
	p.Px -= real(kick) / f
	p.Py += imag(kick) / f
}

// NonlinearLens is the thin Danilov-Nagaitsev lens with integrated
// strength Knll [m] and singularities at distance Cnll [m] from the axis.
type NonlinearLens struct {
	Thin
	Knll, Cnll float64
}

func NewNonlinearLens(knll, cnll float64) (*NonlinearLens, error) {
	if err := checkFinite(KindNonlinearLens, param{"knll", knll}, param{"cnll", cnll}); err != nil {
		return nil, err
	}
	if cnll == 0 {
		return nil, fmt.Errorf("%w: NonlinearLens cnll must be nonzero", ErrInvalidParameter)
	}
	return &NonlinearLens{Knll: knll, Cnll: cnll}, nil
}

func (*NonlinearLens) Name() string { return KindNonlinearLens.String() }
func (*NonlinearLens) Kind() Kind   { return KindNonlinearLens }
func (*NonlinearLens) sealed()      {}

func (n *NonlinearLens) PushParticle(p *beam.Particle, _ *beam.RefPart) {
	zeta := complex(p.X, p.Y) / complex(n.Cnll, 0)

	croot := cmplx.Sqrt(1 - zeta*zeta)
	carcsin := -1i * cmplx.Log(1i*zeta+croot)

	dF := zeta/(croot*croot) + carcsin/(croot*croot*croot)

	kick := -n.Knll / n.Cnll
	p.Px += kick * real(dF)
	p.Py -= kick * imag(dF)
}

// PRot is an exact rotation of the reference frame at a pole face. PhiIn
// and PhiOut are stored in radians; NewPRot takes degrees.
type PRot struct {
	Thin
	PhiIn, PhiOut float64
}

func NewPRot(phiInDeg, phiOutDeg float64) (*PRot, error) {
	if err := checkFinite(KindPRot, param{"phi_in", phiInDeg}, param{"phi_out", phiOutDeg}); err != nil {
		return nil, err
	}
	return &PRot{PhiIn: phiInDeg * constants.Degree, PhiOut: phiOutDeg * constants.Degree}, nil
}

func (*PRot) Name() string { return KindPRot.String() }
func (*PRot) Kind() Kind   { return KindPRot }
func (*PRot) sealed()      {}

func (r *PRot) PushParticle(p *beam.Particle, ref *beam.RefPart) {
	beta := ref.Beta()
	theta := r.PhiOut - r.PhiIn
	sinIn, cosIn := math.Sin(r.PhiIn), math.Cos(r.PhiIn)
	c, s := math.Cos(theta), math.Sin(theta)

	x, px, py, pt := p.X, p.Px, p.Py, p.Pt

	pz := math.Sqrt(1 - 2*pt/beta + pt*pt - py*py - (px+sinIn)*(px+sinIn))
	pzf := pz*c - (px+sinIn)*s

	p.X = x * pz / pzf
	p.Px = px*c + (pz-cosIn)*s
	p.Y += py * x * s / pzf
	p.T -= (pt - 1/beta) * x * s / pzf
}

// DipEdge is the thin focusing of a dipole edge with pole-face angle Psi
// [rad], bend radius Rc [m], gap G [m] and fringe field integral K2.
type DipEdge struct {
	Thin
	Psi, Rc, G, K2 float64
}

func NewDipEdge(psi, rc, g, k2 float64) (*DipEdge, error) {
	err := checkFinite(KindDipEdge, param{"psi", psi}, param{"rc", rc}, param{"g", g}, param{"K2", k2})
	if err != nil {
		return nil, err
	}
	if rc == 0 {
		return nil, fmt.Errorf("%w: DipEdge rc must be nonzero", ErrInvalidParameter)
	}
	return &DipEdge{Psi: psi, Rc: rc, G: g, K2: k2}, nil
}

func (*DipEdge) Name() string { return KindDipEdge.String() }
func (*DipEdge) Kind() Kind   { return KindDipEdge }
func (*DipEdge) sealed()      {}

func (d *DipEdge) PushParticle(p *beam.Particle, _ *beam.RefPart) {
	tanPsi := math.Tan(d.Psi)
	sinPsi, cosPsi := math.Sin(d.Psi), math.Cos(d.Psi)
	vf := (1 + sinPsi*sinPsi) / (cosPsi * cosPsi * cosPsi)

	r21 := tanPsi / d.Rc
	r43 := d.K2*d.G*vf/(d.Rc*d.Rc) - tanPsi/d.Rc

	p.Px += r21 * p.X
	p.Py += r43 * p.Y
}

// ShortRF is a thin linear buncher with normalized voltage V and RF
// wavenumber K [1/m].
type ShortRF struct {
	Thin
	V, K float64
}

func NewShortRF(v, k float64) (*ShortRF, error) {
	if err := checkFinite(KindShortRF, param{"V", v}, param{"k", k}); err != nil {
		return nil, err
	}
	return &ShortRF{V: v, K: k}, nil
}

func (*ShortRF) Name() string { return KindShortRF.String() }
func (*ShortRF) Kind() Kind   { return KindShortRF }
func (*ShortRF) sealed()      {}

func (r *ShortRF) PushParticle(p *beam.Particle, _ *beam.RefPart) {
	p.Pt -= r.V * r.K * p.T
}
