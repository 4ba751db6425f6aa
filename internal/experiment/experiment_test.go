package experiment_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/config"
	"github.com/san-kum/beamsim/internal/constants"
	"github.com/san-kum/beamsim/internal/elements"
	"github.com/san-kum/beamsim/internal/experiment"
	"github.com/san-kum/beamsim/internal/lattice"
)

type countingRecorder struct {
	passes  int
	flushes int
}

func (r *countingRecorder) Record(string, int, beam.RefPart, []beam.Particle) error {
	r.passes++
	return nil
}

func (r *countingRecorder) Flush() error {
	r.flushes++
	return nil
}

var _ = Describe("Experiment", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = config.GetPreset("positron_channel")
		cfg.Periods = 2
		cfg.Beam.Particles = 200
		cfg.Backend = "serial"
	})

	It("accelerates the reference through every ChrAcc", func() {
		exp := experiment.New(cfg)
		Expect(exp.Setup(nil, nil)).To(Succeed())
		gamma0 := exp.Beam().Ref.Gamma()

		result, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		gain := 2 * 1.8 * cfg.Lattice[7].Ez
		final := result.Final()
		Expect(final.Gamma - gamma0).To(BeNumerically("~", gain, 1e-6*gain))
		Expect(final.S).To(BeNumerically("~", 6.0, 1e-12))
		Expect(final.N).To(Equal(200))
		Expect(result.Periods).To(Equal(2))
		Expect(result.Centroids.X).To(HaveLen(2))

		m := experiment.Metrics(result)
		Expect(m["gamma_gain"]).To(BeNumerically("~", gain, 1e-6*gain))
		Expect(m["transmission"]).To(Equal(1.0))
		Expect(m).NotTo(HaveKey("tune_x"))
	})

	It("estimates tunes once there are enough periods", func() {
		cfg = config.GetPreset("fodo")
		cfg.Periods = 16
		cfg.Beam.Particles = 50
		exp := experiment.New(cfg)
		Expect(exp.Setup(nil, nil)).To(Succeed())
		result, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		m := experiment.Metrics(result)
		Expect(m).To(HaveKey("tune_x"))
		Expect(m["tune_x"]).To(And(BeNumerically(">=", 0), BeNumerically("<=", 0.5)))
	})

	It("records the shared monitor through one sink", func() {
		sinks := map[string]*countingRecorder{}
		sink := func(name string) elements.Recorder {
			r := &countingRecorder{}
			sinks[name] = r
			return r
		}

		exp := experiment.New(cfg)
		Expect(exp.Setup(sink, nil)).To(Succeed())
		_, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(sinks).To(HaveLen(1))
		Expect(sinks).To(HaveKey("monitor"))
		Expect(sinks["monitor"].passes).To(Equal(4))
		Expect(sinks["monitor"].flushes).To(Equal(1))
	})

	It("samples the same beam for the same seed", func() {
		a := experiment.New(cfg)
		b := experiment.New(cfg.Clone())
		Expect(a.Setup(nil, nil)).To(Succeed())
		Expect(b.Setup(nil, nil)).To(Succeed())
		Expect(a.Beam().Particles).To(Equal(b.Beam().Particles))

		cfg.Seed++
		c := experiment.New(cfg)
		Expect(c.Setup(nil, nil)).To(Succeed())
		Expect(c.Beam().Particles).NotTo(Equal(a.Beam().Particles))
	})

	It("fails to run before setup", func() {
		_, err := experiment.New(cfg).Run(context.Background())
		Expect(errors.Is(err, experiment.ErrNotSetup)).To(BeTrue())
	})

	DescribeTable("rejects bad configurations",
		func(mutate func(*config.Config), target error) {
			mutate(cfg)
			err := experiment.New(cfg).Setup(nil, nil)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, target)).To(BeTrue(), err.Error())
		},
		Entry("unknown backend", func(c *config.Config) { c.Backend = "gpu" }, config.ErrInvalidConfig),
		Entry("unknown distribution", func(c *config.Config) { c.Beam.Distribution = "waterbag" }, config.ErrInvalidConfig),
		Entry("unknown element", func(c *config.Config) { c.Lattice[1].Type = "Wiggler" }, lattice.ErrUnknownElement),
		Entry("bad element parameter", func(c *config.Config) { c.Lattice[2].NSlice = -1 }, elements.ErrInvalidParameter),
		Entry("no periods", func(c *config.Config) { c.Periods = 0 }, config.ErrInvalidConfig),
	)

	It("builds the reference particle from the beam section", func() {
		ref := experiment.Reference(config.BeamConfig{MassMeV: constants.ProtonMassMeV, ChargeQe: 1, KineticMeV: 250})
		Expect(ref.MassMeV()).To(BeNumerically("~", constants.ProtonMassMeV, 1e-9))
		Expect(ref.EnergyMeV()).To(BeNumerically("~", 250, 1e-9))
		Expect(ref.ChargeQe()).To(Equal(1.0))
	})
})
