// Package diagnostics reduces a beam to its moments and Twiss parameters,
// estimates betatron tunes from turn-by-turn data and draws phase-space
// portraits.
package diagnostics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/beamsim/internal/beam"
)

// Plane holds the first and second moments of one (q, p) pair.
type Plane struct {
	Mean      float64 `json:"mean"`
	MeanP     float64 `json:"mean_p"`
	Sigma     float64 `json:"sigma"`
	SigmaP    float64 `json:"sigma_p"`
	Emittance float64 `json:"emittance"`
	Alpha     float64 `json:"alpha"`
	Beta      float64 `json:"beta"`
}

// Reduced is a snapshot of the beam at one position.
type Reduced struct {
	S     float64    `json:"s"`
	Gamma float64    `json:"gamma"`
	N     int        `json:"n"`
	X     Plane      `json:"x"`
	Y     Plane      `json:"y"`
	T     Plane      `json:"t"`
	Min   [3]float64 `json:"min"`
	Max   [3]float64 `json:"max"`
}

// Compute reduces the beam in c. Second moments need at least two
// particles and are zero otherwise.
func Compute(c beam.Container) Reduced {
	ref := c.RefParticle()
	ps := c.Slice()

	r := Reduced{S: ref.S, Gamma: ref.Gamma(), N: len(ps)}
	r.Min, r.Max = c.MinAndMaxPositions()
	if len(ps) == 0 {
		return r
	}

	cols := make([][]float64, 6)
	for i := range cols {
		cols[i] = make([]float64, len(ps))
	}
	for i := range ps {
		v := ps[i].Vector()
		for j := range v {
			cols[j][i] = v[j]
		}
	}

	r.X = plane(cols[beam.IX], cols[beam.IPx])
	r.Y = plane(cols[beam.IY], cols[beam.IPy])
	r.T = plane(cols[beam.IT], cols[beam.IPt])
	return r
}

func plane(q, p []float64) Plane {
	var pl Plane
	if len(q) < 2 {
		pl.Mean = q[0]
		pl.MeanP = p[0]
		return pl
	}

	var varQ, varP float64
	pl.Mean, varQ = stat.MeanVariance(q, nil)
	pl.MeanP, varP = stat.MeanVariance(p, nil)
	cov := stat.Covariance(q, p, nil)

	pl.Sigma = math.Sqrt(varQ)
	pl.SigmaP = math.Sqrt(varP)
	pl.Emittance = math.Sqrt(math.Max(0, varQ*varP-cov*cov))
	if pl.Emittance > 0 {
		pl.Alpha = -cov / pl.Emittance
		pl.Beta = varQ / pl.Emittance
	}
	return pl
}
