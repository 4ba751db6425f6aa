// Package distribution samples initial 6D phase-space coordinates.
//
// Every sampler draws a fixed number of uniform variates per particle from
// an Engine, so a deterministic engine gives a reproducible beam. Samplers
// hold no mutable state and may be shared between goroutines as long as
// each goroutine has its own Engine.
package distribution

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidMoments      = errors.New("distribution: invalid moments")
	ErrUnknownDistribution = errors.New("distribution: unknown distribution")
)

// Engine produces uniform variates in [0, 1). *rand.Rand satisfies it.
type Engine interface {
	Float64() float64
}

// Distribution is implemented only by the samplers in this package.
type Distribution interface {
	Name() string
	// Draws is the number of Float64 calls made by one Sample.
	Draws() int
	Sample(rng Engine) (x, y, t, px, py, pt float64)

	sealed()
}

// Moments are the target second moments. For zero correlation the sigmas
// are the RMS values of the sampled coordinates; a correlation Mu scales
// the RMS size by 1/sqrt(1-Mu^2).
type Moments struct {
	SigmaX  float64 `yaml:"sigma_x" toml:"sigma_x" json:"sigma_x"`
	SigmaY  float64 `yaml:"sigma_y" toml:"sigma_y" json:"sigma_y"`
	SigmaT  float64 `yaml:"sigma_t" toml:"sigma_t" json:"sigma_t"`
	SigmaPx float64 `yaml:"sigma_px" toml:"sigma_px" json:"sigma_px"`
	SigmaPy float64 `yaml:"sigma_py" toml:"sigma_py" json:"sigma_py"`
	SigmaPt float64 `yaml:"sigma_pt" toml:"sigma_pt" json:"sigma_pt"`
	MuXPx   float64 `yaml:"mu_xpx" toml:"mu_xpx" json:"mu_xpx"`
	MuYPy   float64 `yaml:"mu_ypy" toml:"mu_ypy" json:"mu_ypy"`
	MuTPt   float64 `yaml:"mu_tpt" toml:"mu_tpt" json:"mu_tpt"`
}

// Validate checks that the sigmas are finite and non-negative and that
// every correlation lies in (-1, 1).
func (m Moments) Validate() error {
	sigmas := []struct {
		name string
		v    float64
	}{
		{"sigma_x", m.SigmaX}, {"sigma_y", m.SigmaY}, {"sigma_t", m.SigmaT},
		{"sigma_px", m.SigmaPx}, {"sigma_py", m.SigmaPy}, {"sigma_pt", m.SigmaPt},
	}
	for _, s := range sigmas {
		if math.IsNaN(s.v) || math.IsInf(s.v, 0) || s.v < 0 {
			return fmt.Errorf("%w: %s = %v", ErrInvalidMoments, s.name, s.v)
		}
	}
	for _, mu := range []float64{m.MuXPx, m.MuYPy, m.MuTPt} {
		if !(math.Abs(mu) < 1) {
			return fmt.Errorf("%w: correlation %v outside (-1, 1)", ErrInvalidMoments, mu)
		}
	}
	return nil
}

// correlate maps unit-covariance coordinates onto the target moments.
func (m Moments) correlate(x, y, t, px, py, pt float64) (float64, float64, float64, float64, float64, float64) {
	x, px = pair(x, px, m.SigmaX, m.SigmaPx, m.MuXPx)
	y, py = pair(y, py, m.SigmaY, m.SigmaPy, m.MuYPy)
	t, pt = pair(t, pt, m.SigmaT, m.SigmaPt, m.MuTPt)
	return x, y, t, px, py, pt
}

func pair(q, p, sigQ, sigP, mu float64) (float64, float64) {
	root := math.Sqrt(1 - mu*mu)
	return sigQ * q / root, sigP * (-mu*q/root + p)
}

// boxMuller turns two uniform variates into two independent standard
// normals.
func boxMuller(u1, u2 float64) (float64, float64) {
	r := math.Sqrt(-2 * math.Log(1-u1))
	s, c := math.Sincos(2 * math.Pi * u2)
	return r * c, r * s
}

// New returns the distribution called name ("none", "kurth4d", "triangle"
// or "gaussian").
func New(name string, m Moments) (Distribution, error) {
	switch name {
	case "none", "None":
		return None{}, nil
	case "kurth4d", "Kurth4D":
		return checked(NewKurth4D(m))
	case "triangle", "Triangle":
		return checked(NewTriangle(m))
	case "gaussian", "Gaussian":
		return checked(NewGaussian(m))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDistribution, name)
}

func checked[T Distribution](d T, err error) (Distribution, error) {
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Names lists the distributions accepted by New.
func Names() []string {
	return []string{"none", "kurth4d", "triangle", "gaussian"}
}
