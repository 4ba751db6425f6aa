package elements

import (
	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/compute"
)

type particleMap interface {
	PushParticle(p *beam.Particle, ref *beam.RefPart)
}

// pushParticles is instantiated once per element type, so the map call in
// the inner loop is static.
func pushParticles[T particleMap](m T, ps []beam.Particle, ref *beam.RefPart, b compute.Backend) {
	b.ParallelFor(len(ps), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			m.PushParticle(&ps[i], ref)
		}
	})
}

// Push applies one slice of el to every particle in c. The reference
// particle must already have been pushed through the same slice. step is
// the driver's global slice counter, used by monitors.
func Push(el Element, c beam.Container, b compute.Backend, step int) {
	ref := c.RefParticle()
	ps := c.Slice()

	switch e := el.(type) {
	case *None:
	case *Drift:
		pushParticles(e, ps, ref, b)
	case *ChrDrift:
		pushParticles(e, ps, ref, b)
	case *ExactDrift:
		pushParticles(e, ps, ref, b)
	case *Quad:
		pushParticles(e, ps, ref, b)
	case *ChrQuad:
		pushParticles(e, ps, ref, b)
	case *ConstF:
		pushParticles(e, ps, ref, b)
	case *Multipole:
		pushParticles(e, ps, ref, b)
	case *NonlinearLens:
		pushParticles(e, ps, ref, b)
	case *PRot:
		pushParticles(e, ps, ref, b)
	case *DipEdge:
		pushParticles(e, ps, ref, b)
	case *Sbend:
		pushParticles(e, ps, ref, b)
	case *ShortRF:
		pushParticles(e, ps, ref, b)
	case *ChrAcc:
		pushParticles(e, ps, ref, b)
	case *Sol:
		pushParticles(e, ps, ref, b)
	case *SoftSolenoid:
		pushParticles(e, ps, ref, b)
	case *SoftQuadrupole:
		pushParticles(e, ps, ref, b)
	case *RFCavity:
		pushParticles(e, ps, ref, b)
	case *Programmable:
		e.push(c, b, step)
	case *BeamMonitor:
		e.Observe(c, step)
	}
}

// PushReference advances the reference particle through one slice of el.
func PushReference(el Element, ref *beam.RefPart) {
	el.PushReference(ref)
}

// Finalize releases the resources of elements whose traits report
// NeedsFinalize. It is a no-op for every other element.
func Finalize(el Element) error {
	if m, ok := el.(*BeamMonitor); ok {
		return m.Finalize()
	}
	return nil
}

// Apply pushes the reference particle and the beam through every slice of
// el, starting a new element at the current s.
func Apply(el Element, c beam.Container, b compute.Backend) {
	ref := c.RefParticle()
	ref.SEdge = ref.S
	for slice := 0; slice < el.Traits().Slices; slice++ {
		PushReference(el, ref)
		Push(el, c, b, slice)
	}
}
