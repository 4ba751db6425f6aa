package distribution

import (
	"math/rand/v2"

	"github.com/san-kum/beamsim/internal/beam"
)

// NewEngine returns the deterministic PCG stream used by Generate.
func NewEngine(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Fill samples d into every particle of ps in order. IDs are left alone.
func Fill(d Distribution, ps []beam.Particle, rng Engine) {
	for i := range ps {
		p := &ps[i]
		p.X, p.Y, p.T, p.Px, p.Py, p.Pt = d.Sample(rng)
	}
}

// Generate returns an ensemble of n particles around ref sampled from d.
// The same seed always gives the same beam.
func Generate(d Distribution, ref beam.RefPart, n int, seed uint64) *beam.Ensemble {
	ens := beam.NewEnsemble(ref, n)
	Fill(d, ens.Particles, NewEngine(seed))
	return ens
}
