package elements

import (
	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/compute"
)

// Programmable runs user callbacks in place of a built-in map. With Ds == 0
// it is thin.
//
// Beam, when set, replaces the particle loop and sees the whole container.
// Otherwise Particle is called for every particle, in parallel only if
// ThreadSafe is set. Reference, when set, replaces the straight reference
// push and receives the slice length.
type Programmable struct {
	Thick
	Label      string
	ThreadSafe bool

	Particle  func(p *beam.Particle, ref *beam.RefPart)
	Reference func(ref *beam.RefPart, sliceDs float64)
	Beam      func(c beam.Container, step int)
}

func (p *Programmable) Name() string {
	if p.Label == "" {
		return KindProgrammable.String()
	}
	return p.Label
}

func (*Programmable) Kind() Kind { return KindProgrammable }
func (*Programmable) sealed()    {}

func (p *Programmable) Traits() Traits {
	if p.Ds == 0 {
		return Traits{Slices: 1}
	}
	return p.Thick.Traits()
}

func (p *Programmable) PushReference(ref *beam.RefPart) {
	switch {
	case p.Reference != nil:
		p.Reference(ref, p.SliceDs())
	case p.Ds != 0:
		ref.StraightStep(p.SliceDs())
	}
}

func (p *Programmable) PushParticle(part *beam.Particle, ref *beam.RefPart) {
	if p.Particle != nil {
		p.Particle(part, ref)
	}
}

func (p *Programmable) push(c beam.Container, b compute.Backend, step int) {
	switch {
	case p.Beam != nil:
		p.Beam(c, step)
	case p.Particle == nil:
	case p.ThreadSafe:
		pushParticles(p, c.Slice(), c.RefParticle(), b)
	default:
		ps := c.Slice()
		ref := c.RefParticle()
		for i := range ps {
			p.Particle(&ps[i], ref)
		}
	}
}
