package elements

import (
	"fmt"
	"math"

	"github.com/san-kum/beamsim/internal/beam"
)

// Sbend is a linear sector bend with radius of curvature Rc [m]. The
// reference particle follows the arc; particle coordinates stay in the
// rotating frame.
type Sbend struct {
	Thick
	Rc float64
}

func NewSbend(ds, rc float64, nslice int) (*Sbend, error) {
	t, err := newThick(KindSbend, ds, nslice)
	if err != nil {
		return nil, err
	}
	if err := checkFinite(KindSbend, param{"rc", rc}); err != nil {
		return nil, err
	}
	if rc == 0 {
		return nil, fmt.Errorf("%w: Sbend rc must be nonzero", ErrInvalidParameter)
	}
	return &Sbend{Thick: t, Rc: rc}, nil
}

func (*Sbend) Name() string { return KindSbend.String() }
func (*Sbend) Kind() Kind   { return KindSbend }
func (*Sbend) sealed()      {}

func (b *Sbend) PushParticle(p *beam.Particle, ref *beam.RefPart) {
	ds := b.SliceDs()
	rc := b.Rc
	beta := ref.Beta()
	theta := ds / rc
	c, s := math.Cos(theta), math.Sin(theta)

	x, px, t, pt := p.X, p.Px, p.T, p.Pt

	p.X = c*x + rc*s*px - rc/beta*(1-c)*pt
	p.Px = -s/rc*x + c*px - s/beta*pt
	p.Y += ds * p.Py
	p.T = t + s/beta*x + rc/beta*(1-c)*px + rc*(s/(beta*beta)-theta)*pt
}

// PushReference moves the reference particle along the arc, rotating its
// momentum in the x-z plane.
func (b *Sbend) PushReference(ref *beam.RefPart) {
	ds := b.SliceDs()
	theta := ds / b.Rc
	bField := math.Sqrt(ref.Pt*ref.Pt-1) / b.Rc
	c, s := math.Cos(theta), math.Sin(theta)

	px, pz := ref.Px, ref.Pz
	ref.Px = px*c - pz*s
	ref.Pz = pz*c + px*s

	ref.X += (ref.Pz - pz) / bField
	ref.Y += theta / bField * ref.Py
	ref.Z -= (ref.Px - px) / bField
	ref.T -= theta / bField * ref.Pt

	ref.S += ds
}
