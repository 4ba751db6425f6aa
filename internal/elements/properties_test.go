package elements_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/compute"
	"github.com/san-kum/beamsim/internal/constants"
	"github.com/san-kum/beamsim/internal/elements"
)

func positron(kineticMeV float64) beam.RefPart {
	ref := beam.NewRefPart()
	ref.SetChargeQe(1).SetMassMeV(constants.ElectronMassMeV).SetEnergyMeV(kineticMeV)
	return ref
}

func offAxis() beam.Particle {
	return beam.Particle{ID: 1, X: 1e-3, Px: -2e-4, Y: -5e-4, Py: 3e-4, T: 2e-4, Pt: 1e-3}
}

func expectClose(got, want beam.Particle, tol float64) {
	GinkgoHelper()
	g, w := got.Vector(), want.Vector()
	for i := range g {
		Expect(g[i]).To(BeNumerically("~", w[i], tol), "coordinate %d", i)
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

var _ = Describe("element maps", func() {
	var ref beam.RefPart

	BeforeEach(func() {
		ref = positron(250)
	})

	It("leaves the beam and the reference untouched for None", func() {
		before := ref
		p := offAxis()
		el := &elements.None{}
		el.PushReference(&ref)
		el.PushParticle(&p, &ref)
		Expect(p).To(Equal(offAxis()))
		Expect(ref).To(Equal(before))
	})

	It("advances s by exactly the length of a drift", func() {
		ens := beam.NewEnsemble(ref, 3)
		for i := range ens.Particles {
			ens.Particles[i].Px = 1e-3 * float64(i)
			ens.Particles[i].Pt = -2e-3
		}
		d := must(elements.NewDrift(1.0, 4))
		elements.Apply(d, ens, compute.NewSerialBackend())

		Expect(ens.Ref.S).To(Equal(1.0))
		for i, p := range ens.Slice() {
			Expect(p.Px).To(Equal(1e-3 * float64(i)))
			Expect(p.Pt).To(Equal(-2e-3))
			Expect(p.X).To(BeNumerically("~", 1e-3*float64(i), 1e-15))
		}
	})

	DescribeTable("thick maps run backwards with negative length",
		func(forward, backward elements.Element) {
			p := offAxis()
			forward.PushParticle(&p, &ref)
			Expect(p).NotTo(Equal(offAxis()))
			backward.PushParticle(&p, &ref)
			expectClose(p, offAxis(), 1e-12)
		},
		Entry("Drift", &elements.Drift{Thick: elements.Thick{Ds: 0.7, NSlice: 1}},
			&elements.Drift{Thick: elements.Thick{Ds: -0.7, NSlice: 1}}),
		Entry("ChrDrift", &elements.ChrDrift{Thick: elements.Thick{Ds: 0.7, NSlice: 1}},
			&elements.ChrDrift{Thick: elements.Thick{Ds: -0.7, NSlice: 1}}),
		Entry("ExactDrift", &elements.ExactDrift{Thick: elements.Thick{Ds: 0.7, NSlice: 1}},
			&elements.ExactDrift{Thick: elements.Thick{Ds: -0.7, NSlice: 1}}),
		Entry("Quad focusing", &elements.Quad{Thick: elements.Thick{Ds: 0.3, NSlice: 1}, K: 4},
			&elements.Quad{Thick: elements.Thick{Ds: -0.3, NSlice: 1}, K: 4}),
		Entry("Quad defocusing", &elements.Quad{Thick: elements.Thick{Ds: 0.3, NSlice: 1}, K: -4},
			&elements.Quad{Thick: elements.Thick{Ds: -0.3, NSlice: 1}, K: -4}),
		Entry("ChrQuad", &elements.ChrQuad{Thick: elements.Thick{Ds: 0.2, NSlice: 1}, K: 6.67},
			&elements.ChrQuad{Thick: elements.Thick{Ds: -0.2, NSlice: 1}, K: 6.67}),
		Entry("ChrQuad MaryLie", &elements.ChrQuad{Thick: elements.Thick{Ds: 0.2, NSlice: 1}, K: -2, Unit: elements.UnitMaryLie},
			&elements.ChrQuad{Thick: elements.Thick{Ds: -0.2, NSlice: 1}, K: -2, Unit: elements.UnitMaryLie}),
		Entry("ConstF", &elements.ConstF{Thick: elements.Thick{Ds: 0.5, NSlice: 1}, Kx: 1, Ky: 2, Kt: 0.5},
			&elements.ConstF{Thick: elements.Thick{Ds: -0.5, NSlice: 1}, Kx: 1, Ky: 2, Kt: 0.5}),
		Entry("Sol", &elements.Sol{Thick: elements.Thick{Ds: 0.5, NSlice: 1}, Ks: 1.2},
			&elements.Sol{Thick: elements.Thick{Ds: -0.5, NSlice: 1}, Ks: 1.2}),
		Entry("Sbend", &elements.Sbend{Thick: elements.Thick{Ds: 0.5, NSlice: 1}, Rc: 3},
			&elements.Sbend{Thick: elements.Thick{Ds: -0.5, NSlice: 1}, Rc: 3}),
	)

	DescribeTable("thin kicks are undone by their inverse",
		func(forward, backward elements.Element) {
			p := offAxis()
			forward.PushParticle(&p, &ref)
			Expect(p).NotTo(Equal(offAxis()))
			backward.PushParticle(&p, &ref)
			expectClose(p, offAxis(), 1e-14)
		},
		Entry("Multipole", must(elements.NewMultipole(3, 120, -40)), must(elements.NewMultipole(3, -120, 40))),
		Entry("NonlinearLens", must(elements.NewNonlinearLens(2e-4, 1e-2)), must(elements.NewNonlinearLens(-2e-4, 1e-2))),
		Entry("PRot", must(elements.NewPRot(-5, 12)), must(elements.NewPRot(12, -5))),
		Entry("DipEdge", must(elements.NewDipEdge(0.2, 2, 0.05, 0.5)), must(elements.NewDipEdge(-0.2, 2, -0.05, 0.5))),
		Entry("ShortRF", must(elements.NewShortRF(0.3, 12)), must(elements.NewShortRF(-0.3, 12))),
	)

	It("mirrors ChrQuad focusing and defocusing under x <-> y", func() {
		f := must(elements.NewChrQuad(0.25, 5, elements.UnitMADX, 1))
		d := must(elements.NewChrQuad(0.25, -5, elements.UnitMADX, 1))

		p := offAxis()
		q := beam.Particle{X: p.Y, Px: p.Py, Y: p.X, Py: p.Px, T: p.T, Pt: p.Pt}
		f.PushParticle(&p, &ref)
		d.PushParticle(&q, &ref)

		Expect(q.X).To(BeNumerically("~", p.Y, 1e-15))
		Expect(q.Px).To(BeNumerically("~", p.Py, 1e-15))
		Expect(q.Y).To(BeNumerically("~", p.X, 1e-15))
		Expect(q.Py).To(BeNumerically("~", p.Px, 1e-15))
		Expect(q.T).To(BeNumerically("~", p.T, 1e-15))
		Expect(q.Pt).To(Equal(p.Pt))
	})

	It("reduces ChrQuad with zero gradient to ChrDrift", func() {
		q := must(elements.NewChrQuad(0.4, 0, elements.UnitMADX, 1))
		d := must(elements.NewChrDrift(0.4, 1))
		p1, p2 := offAxis(), offAxis()
		q.PushParticle(&p1, &ref)
		d.PushParticle(&p2, &ref)
		Expect(p1).To(Equal(p2))
	})

	It("agrees between the drift variants near the axis", func() {
		lin := must(elements.NewDrift(1, 1))
		chr := must(elements.NewChrDrift(1, 1))
		exact := must(elements.NewExactDrift(1, 1))

		p := beam.Particle{X: 1e-4, Px: 1e-6, Py: -1e-6, Pt: 1e-7}
		a, b, c := p, p, p
		lin.PushParticle(&a, &ref)
		chr.PushParticle(&b, &ref)
		exact.PushParticle(&c, &ref)
		expectClose(b, a, 1e-11)
		expectClose(c, b, 1e-11)
	})

	It("bends the reference orbit on a circle", func() {
		b := must(elements.NewSbend(1.0, 2.0, 5))
		for range 5 {
			b.PushReference(&ref)
		}
		theta := 0.5
		Expect(ref.S).To(BeNumerically("~", 1.0, 1e-14))
		Expect(ref.Z).To(BeNumerically("~", 2*math.Sin(theta), 1e-12))
		Expect(ref.X).To(BeNumerically("~", -2*(1-math.Cos(theta)), 1e-12))
		Expect(ref.Px*ref.Px + ref.Pz*ref.Pz).To(BeNumerically("~", ref.Pt*ref.Pt-1, 1e-6))
	})

	It("accelerates the reference and shrinks the normalized momenta in ChrAcc", func() {
		acc := must(elements.NewChrAcc(1.8, 10871.950994502130424, 1))
		gamma0 := ref.Gamma()
		bg0 := ref.BetaGamma()

		ens := beam.NewEnsemble(ref, 1)
		ens.Particles[0] = beam.Particle{Px: 1e-4}
		elements.Apply(acc, ens, compute.NewSerialBackend())

		Expect(ens.Ref.Gamma()).To(BeNumerically("~", gamma0+1.8*10871.950994502130424, 1e-6))
		Expect(ens.Ref.Pz).To(BeNumerically("~", ens.Ref.BetaGamma(), 1e-9))
		Expect(ens.Particles[0].Px).To(BeNumerically("~", 1e-4*bg0/ens.Ref.BetaGamma(), 1e-16))
		Expect(ens.Particles[0].X).To(BeNumerically(">", 0))
		Expect(ens.Particles[0].Pt).To(Equal(0.0))
	})
})
