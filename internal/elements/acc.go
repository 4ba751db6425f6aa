package elements

import (
	"math"

	"github.com/san-kum/beamsim/internal/beam"
)

// ChrAcc is a region of uniform longitudinal electric field. Ez is the
// normalized field qE/(mc^2) [1/m], the gain in gamma per meter. The map is
// exact in all coordinates.
type ChrAcc struct {
	Thick
	Ez float64
}

func NewChrAcc(ds, ez float64, nslice int) (*ChrAcc, error) {
	t, err := newThick(KindChrAcc, ds, nslice)
	if err != nil {
		return nil, err
	}
	if err := checkFinite(KindChrAcc, param{"ez", ez}); err != nil {
		return nil, err
	}
	return &ChrAcc{Thick: t, Ez: ez}, nil
}

func (*ChrAcc) Name() string { return KindChrAcc.String() }
func (*ChrAcc) Kind() Kind   { return KindChrAcc }
func (*ChrAcc) sealed()      {}

// PushReference accelerates the reference particle through one slice.
func (a *ChrAcc) PushReference(ref *beam.RefPart) {
	ds := a.SliceDs()
	if a.Ez == 0 {
		ref.StraightStep(ds)
		return
	}

	pzIn := math.Sqrt(ref.Pt*ref.Pt - 1)
	ref.Pt -= a.Ez * ds
	pzOut := math.Sqrt(ref.Pt*ref.Pt - 1)

	ref.Pz = pzOut
	ref.Z += ds
	ref.T += (pzOut - pzIn) / a.Ez
	ref.S += ds
}

// PushParticle expects ref to be at the exit of the slice, which is where
// the driver leaves it after PushReference.
func (a *ChrAcc) PushParticle(p *beam.Particle, ref *beam.RefPart) {
	ds := a.SliceDs()
	ez := a.Ez
	if ez == 0 {
		chrDrift(p, ds, ref.Beta())
		return
	}

	gamma1 := -ref.Pt
	gamma0 := gamma1 - ez*ds
	bg0 := math.Sqrt(gamma0*gamma0 - 1)
	bg1 := math.Sqrt(gamma1*gamma1 - 1)

	// Absolute momenta in units of mc. The field changes only the
	// longitudinal part, so Px, Py and the energy offset are conserved.
	mx := p.Px * bg0
	my := p.Py * bg0
	a2 := 1 + mx*mx + my*my
	g0 := gamma0 - p.Pt*bg0
	g1 := g0 + ez*ds
	mz0 := math.Sqrt(g0*g0 - a2)
	mz1 := math.Sqrt(g1*g1 - a2)

	arc := math.Log((g1+mz1)/(g0+mz0)) / ez
	p.X += mx * arc
	p.Y += my * arc
	p.T += ((mz1 - mz0) - (bg1 - bg0)) / ez

	p.Px = mx / bg1
	p.Py = my / bg1
	p.Pt = p.Pt * bg0 / bg1
}
