package beam

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Container is the particle storage the tracking driver pushes through a
// lattice. Implementations own the particle memory; elements see it only
// through Slice.
type Container interface {
	RefParticle() *RefPart
	SetRefParticle(ref RefPart)

	Len() int
	Slice() []Particle

	MinAndMaxPositions() (min, max [3]float64)
	MeanAndStdPositions() (mean, std [3]float64)

	// Redistribute is called after every element. Distributed containers
	// move particles between owners here.
	Redistribute()
}

// Ensemble is an in-memory Container.
type Ensemble struct {
	Ref       RefPart
	Particles []Particle

	lost int
}

// NewEnsemble returns an ensemble of n particles on the reference orbit.
func NewEnsemble(ref RefPart, n int) *Ensemble {
	ps := make([]Particle, n)
	for i := range ps {
		ps[i].ID = uint64(i + 1)
	}
	return &Ensemble{Ref: ref, Particles: ps}
}

func (e *Ensemble) RefParticle() *RefPart      { return &e.Ref }
func (e *Ensemble) SetRefParticle(ref RefPart) { e.Ref = ref }
func (e *Ensemble) Len() int                   { return len(e.Particles) }
func (e *Ensemble) Slice() []Particle          { return e.Particles }

// Lost returns the number of particles dropped by Redistribute so far.
func (e *Ensemble) Lost() int { return e.lost }

// Redistribute drops particles with non-finite coordinates, keeping the
// order of the survivors.
func (e *Ensemble) Redistribute() {
	kept := e.Particles[:0]
	for _, p := range e.Particles {
		if p.IsValid() {
			kept = append(kept, p)
		}
	}
	e.lost += len(e.Particles) - len(kept)
	e.Particles = kept
}

// MinAndMaxPositions returns the extent of the beam in x, y and t. An empty
// ensemble reports zeros.
func (e *Ensemble) MinAndMaxPositions() (lo, hi [3]float64) {
	if len(e.Particles) == 0 {
		return lo, hi
	}
	for k := range lo {
		lo[k] = math.Inf(1)
		hi[k] = math.Inf(-1)
	}
	for i := range e.Particles {
		p := &e.Particles[i]
		for k, v := range [3]float64{p.X, p.Y, p.T} {
			lo[k] = math.Min(lo[k], v)
			hi[k] = math.Max(hi[k], v)
		}
	}
	return lo, hi
}

// MeanAndStdPositions returns the population mean and standard deviation
// of x, y and t.
func (e *Ensemble) MeanAndStdPositions() (mean, std [3]float64) {
	n := len(e.Particles)
	if n == 0 {
		return mean, std
	}
	buf := make([]float64, n)
	for k := 0; k < 3; k++ {
		for i := range e.Particles {
			p := &e.Particles[i]
			switch k {
			case 0:
				buf[i] = p.X
			case 1:
				buf[i] = p.Y
			default:
				buf[i] = p.T
			}
		}
		mean[k], std[k] = stat.PopMeanStdDev(buf, nil)
	}
	return mean, std
}

// Clone returns a deep copy of the ensemble.
func (e *Ensemble) Clone() *Ensemble {
	ps := make([]Particle, len(e.Particles))
	copy(ps, e.Particles)
	return &Ensemble{Ref: e.Ref, Particles: ps, lost: e.lost}
}
