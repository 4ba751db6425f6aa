package elements

import (
	"fmt"
	"math"

	"github.com/san-kum/beamsim/internal/beam"
)

// Unit selects how a magnet strength is given.
type Unit int

const (
	// UnitMADX strengths are normalized: gradient over rigidity [1/m^2].
	UnitMADX Unit = 0
	// UnitMaryLie strengths are field gradients [T/m], divided by the
	// reference rigidity when the map is applied.
	UnitMaryLie Unit = 1
)

func checkUnit(kind Kind, u Unit) error {
	if u != UnitMADX && u != UnitMaryLie {
		return fmt.Errorf("%w: %s unit must be 0 or 1, got %d", ErrInvalidParameter, kind, u)
	}
	return nil
}

func normalized(k float64, u Unit, ref *beam.RefPart) float64 {
	if u == UnitMaryLie {
		return k / ref.RigidityTm()
	}
	return k
}

// Quad is a linear quadrupole. K > 0 focuses horizontally.
type Quad struct {
	Thick
	K    float64
	Unit Unit
}

func NewQuad(ds, k float64, unit Unit, nslice int) (*Quad, error) {
	t, err := newThick(KindQuad, ds, nslice)
	if err != nil {
		return nil, err
	}
	if err := checkFinite(KindQuad, param{"k", k}); err != nil {
		return nil, err
	}
	if err := checkUnit(KindQuad, unit); err != nil {
		return nil, err
	}
	return &Quad{Thick: t, K: k, Unit: unit}, nil
}

func (*Quad) Name() string { return KindQuad.String() }
func (*Quad) Kind() Kind   { return KindQuad }
func (*Quad) sealed()      {}

func (q *Quad) PushParticle(p *beam.Particle, ref *beam.RefPart) {
	ds := q.SliceDs()
	k := normalized(q.K, q.Unit, ref)
	bg := ref.BetaGamma()
	omega := math.Sqrt(math.Abs(k))

	x, px, y, py := p.X, p.Px, p.Y, p.Py

	switch {
	case k > 0:
		c, s := math.Cos(omega*ds), math.Sin(omega*ds)
		ch, sh := math.Cosh(omega*ds), math.Sinh(omega*ds)
		p.X = c*x + s/omega*px
		p.Px = -omega*s*x + c*px
		p.Y = ch*y + sh/omega*py
		p.Py = omega*sh*y + ch*py
	case k < 0:
		c, s := math.Cos(omega*ds), math.Sin(omega*ds)
		ch, sh := math.Cosh(omega*ds), math.Sinh(omega*ds)
		p.X = ch*x + sh/omega*px
		p.Px = omega*sh*x + ch*px
		p.Y = c*y + s/omega*py
		p.Py = -omega*s*y + c*py
	default:
		p.X += ds * px
		p.Y += ds * py
	}

	p.T += ds / (bg * bg) * p.Pt
}

// ChrQuad is a quadrupole expanded to second order in the transverse
// variables with the exact pt dependence kept.
type ChrQuad struct {
	Thick
	K    float64
	Unit Unit
}

func NewChrQuad(ds, k float64, unit Unit, nslice int) (*ChrQuad, error) {
	t, err := newThick(KindChrQuad, ds, nslice)
	if err != nil {
		return nil, err
	}
	if err := checkFinite(KindChrQuad, param{"k", k}); err != nil {
		return nil, err
	}
	if err := checkUnit(KindChrQuad, unit); err != nil {
		return nil, err
	}
	return &ChrQuad{Thick: t, K: k, Unit: unit}, nil
}

func (*ChrQuad) Name() string { return KindChrQuad.String() }
func (*ChrQuad) Kind() Kind   { return KindChrQuad }
func (*ChrQuad) sealed()      {}

func (q *ChrQuad) PushParticle(p *beam.Particle, ref *beam.RefPart) {
	ds := q.SliceDs()
	beta := ref.Beta()
	g := normalized(q.K, q.Unit, ref)

	if g == 0 {
		chrDrift(p, ds, beta)
		return
	}

	x, y, t := p.X, p.Y, p.T
	px, py, pt := p.Px, p.Py, p.Pt

	delta1 := math.Sqrt(1 - 2*pt/beta + pt*pt)
	delta := delta1 - 1
	omega := math.Sqrt(math.Abs(g) / delta1)
	w := omega * delta1

	c, s := math.Cos(omega*ds), math.Sin(omega*ds)
	ch, sh := math.Cosh(omega*ds), math.Sinh(omega*ds)

	// (q1, p1) is the focusing plane, (q2, p2) the defocusing one.
	q1, p1, q2, p2 := x, px, y, py
	if g > 0 {
		p.X = c*x + s/w*px
		p.Px = -w*s*x + c*px
		p.Y = ch*y + sh/w*py
		p.Py = w*sh*y + ch*py
	} else {
		p.X = ch*x + sh/w*px
		p.Px = w*sh*x + ch*px
		p.Y = c*y + s/w*py
		p.Py = -w*s*y + c*py
		q1, p1, q2, p2 = y, py, x, px
	}

	t0 := t - (pt+delta/beta)*ds/delta1

	w2 := w * w
	term1 := -(p2*p2 + q2*q2*w2) * math.Sinh(2*omega*ds)
	term2 := -(p1*p1 - q1*q1*w2) * math.Sin(2*omega*ds)
	term3 := -2 * q2 * p2 * w * math.Cosh(2*omega*ds)
	term4 := -2 * q1 * p1 * w * math.Cos(2*omega*ds)
	term5 := 2 * omega * (q1*p1*delta1 + q2*p2*delta1 -
		(p1*p1+p2*p2)*ds - (q1*q1-q2*q2)*w2*ds)

	p.T = t0 + (-1+beta*pt)/(8*beta*delta1*delta1*delta1*omega)*
		(term1+term2+term3+term4+term5)
}
