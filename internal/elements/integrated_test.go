package elements_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/compute"
	"github.com/san-kum/beamsim/internal/elements"
	"github.com/san-kum/beamsim/internal/integrators"
)

// track runs one particle through el with the reference taken from ref and
// returns the final particle and reference.
func track(el elements.Element, ref beam.RefPart, p beam.Particle) (beam.Particle, beam.RefPart) {
	ens := beam.NewEnsemble(ref, 1)
	ens.Particles[0] = p
	elements.Apply(el, ens, compute.NewSerialBackend())
	return ens.Particles[0], ens.Ref
}

var _ = Describe("integrated elements", func() {
	var ref beam.RefPart

	BeforeEach(func() {
		ref = positron(250)
	})

	It("reduces a flat soft solenoid to the hard-edge one", func() {
		soft := must(elements.NewSoftSolenoid(0.5, 1.2, elements.FlatProfile(), elements.UnitMADX, 200, 1))
		hard := must(elements.NewSol(0.5, 1.2, elements.UnitMADX, 1))

		got, exit := track(soft, ref, offAxis())
		want, _ := track(hard, ref, offAxis())

		expectClose(got, want, 1e-9)
		Expect(exit.S).To(BeNumerically("~", 0.5, 1e-14))
		Expect(exit.Z).To(BeNumerically("~", 0.5, 1e-14))
		Expect(exit.Map.Symplectic(1e-12)).To(BeTrue())
	})

	DescribeTable("reduces a flat soft quadrupole to the hard-edge one",
		func(k float64, method integrators.Method, steps int, tol float64) {
			soft := must(elements.NewSoftQuadrupole(0.3, k, elements.FlatProfile(), elements.UnitMADX, method, steps, 1))
			hard := must(elements.NewQuad(0.3, k, elements.UnitMADX, 1))

			got, exit := track(soft, ref, offAxis())
			want, _ := track(hard, ref, offAxis())

			expectClose(got, want, tol)
			Expect(exit.Map.Symplectic(1e-12)).To(BeTrue())
		},
		Entry("focusing, symp2", 4.0, integrators.MethodSymp2, 200, 1e-8),
		Entry("defocusing, symp2", -4.0, integrators.MethodSymp2, 200, 1e-8),
		Entry("focusing, symp4", 4.0, integrators.MethodSymp4, 20, 1e-9),
		Entry("defocusing, symp4", -4.0, integrators.MethodSymp4, 20, 1e-9),
	)

	It("keeps the soft solenoid map symplectic with a bell profile over many slices", func() {
		sol := must(elements.NewSoftSolenoid(0.8, 2.5, elements.BellProfile(), elements.UnitMaryLie, 25, 4))
		ens := beam.NewEnsemble(ref, 1)
		ens.Particles[0] = offAxis()

		backend := compute.NewSerialBackend()
		ens.Ref.SEdge = ens.Ref.S
		for range 4 {
			elements.PushReference(sol, &ens.Ref)
			Expect(ens.Ref.Map.Symplectic(1e-12)).To(BeTrue())
			elements.Push(sol, ens, backend, 0)
		}
		Expect(ens.Ref.S).To(BeNumerically("~", 0.8, 1e-14))
		Expect(ens.Ref.Gamma()).To(Equal(ref.Gamma()))
	})

	It("gains the integrated field on crest at zero frequency", func() {
		rf := must(elements.NewRFCavity(1.0, 2.0, 0, 0, elements.BellProfile(), 10, 1))
		gamma0 := ref.Gamma()

		_, exit := track(rf, ref, offAxis())

		Expect(exit.Gamma()).To(BeNumerically("~", gamma0+1.0, 1e-10))
		Expect(exit.Pz).To(BeNumerically("~", exit.BetaGamma(), 1e-9))
		Expect(exit.S).To(BeNumerically("~", 1.0, 1e-14))
	})

	It("shrinks phase space volume by the momentum ratio cubed", func() {
		rf := must(elements.NewRFCavity(0.5, 10, 1.3e9, -20, elements.BellProfile(), 20, 1))
		bg0 := ref.BetaGamma()

		_, exit := track(rf, ref, offAxis())

		ratio := math.Pow(bg0/exit.BetaGamma(), 3)
		Expect(exit.Map.Det()).To(BeNumerically("~", ratio, 1e-12))
	})

	It("decelerates off crest by the cosine of the phase", func() {
		on := must(elements.NewRFCavity(1.0, 2.0, 0, 0, elements.FlatProfile(), 10, 1))
		off := must(elements.NewRFCavity(1.0, 2.0, 0, 180, elements.FlatProfile(), 10, 1))

		_, a := track(on, ref, offAxis())
		_, b := track(off, ref, offAxis())

		Expect(a.Gamma() - ref.Gamma()).To(BeNumerically("~", 2.0, 1e-10))
		Expect(b.Gamma() - ref.Gamma()).To(BeNumerically("~", -2.0, 1e-10))
	})

	It("rejects integrated elements without length or steps", func() {
		_, err := elements.NewSoftSolenoid(0, 1, elements.BellProfile(), elements.UnitMADX, 10, 1)
		Expect(err).To(MatchError(elements.ErrInvalidParameter))

		_, err = elements.NewSoftQuadrupole(1, 1, elements.BellProfile(), elements.UnitMADX, integrators.MethodSymp2, 0, 1)
		Expect(err).To(MatchError(elements.ErrInvalidParameter))

		_, err = elements.NewRFCavity(1, 1, 1e9, 0, elements.FieldProfile{}, 10, 1)
		Expect(err).To(MatchError(elements.ErrInvalidParameter))
	})
})
