package elements

import (
	"math"

	"github.com/san-kum/beamsim/internal/beam"
)

// Drift is a field-free straight section, linearized in all six
// coordinates.
type Drift struct {
	Thick
}

func NewDrift(ds float64, nslice int) (*Drift, error) {
	t, err := newThick(KindDrift, ds, nslice)
	if err != nil {
		return nil, err
	}
	return &Drift{Thick: t}, nil
}

func (*Drift) Name() string { return KindDrift.String() }
func (*Drift) Kind() Kind   { return KindDrift }
func (*Drift) sealed()      {}

func (d *Drift) PushParticle(p *beam.Particle, ref *beam.RefPart) {
	ds := d.SliceDs()
	bg := ref.BetaGamma()

	p.X += ds * p.Px
	p.Y += ds * p.Py
	p.T += ds / (bg * bg) * p.Pt
}

// ChrDrift is a drift with the exact pt dependence kept and the transverse
// momenta expanded to second order.
type ChrDrift struct {
	Thick
}

func NewChrDrift(ds float64, nslice int) (*ChrDrift, error) {
	t, err := newThick(KindChrDrift, ds, nslice)
	if err != nil {
		return nil, err
	}
	return &ChrDrift{Thick: t}, nil
}

func (*ChrDrift) Name() string { return KindChrDrift.String() }
func (*ChrDrift) Kind() Kind   { return KindChrDrift }
func (*ChrDrift) sealed()      {}

func (d *ChrDrift) PushParticle(p *beam.Particle, ref *beam.RefPart) {
	chrDrift(p, d.SliceDs(), ref.Beta())
}

func chrDrift(p *beam.Particle, ds, beta float64) {
	pt := p.Pt
	delta1 := math.Sqrt(1 - 2*pt/beta + pt*pt)
	delta := delta1 - 1
	p2 := p.Px*p.Px + p.Py*p.Py

	p.X += ds * p.Px / delta1
	p.Y += ds * p.Py / delta1
	p.T -= (pt + delta/beta + p2*(pt-1/beta)/(2*delta1*delta1)) * ds / delta1
}

// ExactDrift solves the drift without any paraxial expansion.
type ExactDrift struct {
	Thick
}

func NewExactDrift(ds float64, nslice int) (*ExactDrift, error) {
	t, err := newThick(KindExactDrift, ds, nslice)
	if err != nil {
		return nil, err
	}
	return &ExactDrift{Thick: t}, nil
}

func (*ExactDrift) Name() string { return KindExactDrift.String() }
func (*ExactDrift) Kind() Kind   { return KindExactDrift }
func (*ExactDrift) sealed()      {}

func (d *ExactDrift) PushParticle(p *beam.Particle, ref *beam.RefPart) {
	ds := d.SliceDs()
	beta := ref.Beta()
	pt := p.Pt
	pz := math.Sqrt(1 - 2*pt/beta + pt*pt - p.Px*p.Px - p.Py*p.Py)

	p.X += ds * p.Px / pz
	p.Y += ds * p.Py / pz
	p.T -= ds * (1/beta + (pt-1/beta)/pz)
}
