package distribution

import "math"

// None leaves every coordinate at zero and draws nothing.
type None struct{}

func (None) Name() string { return "none" }
func (None) Draws() int   { return 0 }
func (None) sealed()      {}

func (None) Sample(Engine) (x, y, t, px, py, pt float64) {
	return 0, 0, 0, 0, 0, 0
}

// Kurth4D is a 4D Kurth equilibrium in (x, y, px, py), uniform in t and
// Gaussian in pt. It draws 7 variates per particle.
type Kurth4D struct {
	Moments
}

func NewKurth4D(m Moments) (Kurth4D, error) {
	if err := m.Validate(); err != nil {
		return Kurth4D{}, err
	}
	return Kurth4D{Moments: m}, nil
}

func (Kurth4D) Name() string { return "kurth4d" }
func (Kurth4D) Draws() int   { return 7 }
func (Kurth4D) sealed()      {}

func (k Kurth4D) Sample(rng Engine) (x, y, t, px, py, pt float64) {
	// Uniform in the unit disk.
	v := rng.Float64()
	phi := 2 * math.Pi * rng.Float64()
	r := math.Sqrt(v)
	sinPhi, cosPhi := math.Sincos(phi)
	x = r * cosPhi
	y = r * sinPhi

	lz := r * (2*rng.Float64() - 1)
	alpha := math.Pi * rng.Float64()

	var pr, pphi float64
	if r > 0 {
		pphi = lz / r
		pmax := math.Sqrt(math.Max(0, 1-pphi*pphi-r*r+lz*lz))
		pr = pmax * math.Cos(alpha)
	}
	px = pr*cosPhi - pphi*sinPhi
	py = pr*sinPhi + pphi*cosPhi

	t = 2 * (rng.Float64() - 0.5)
	pt, _ = boxMuller(rng.Float64(), rng.Float64())

	// Unit covariance.
	x *= 2
	y *= 2
	px *= 2
	py *= 2
	t *= math.Sqrt(3)

	return k.correlate(x, y, t, px, py, pt)
}

// Triangle is a ramped triangular current profile in t, a uniformly filled
// 4D ball transversely and Gaussian in pt. It draws 8 variates per
// particle.
type Triangle struct {
	Moments
}

func NewTriangle(m Moments) (Triangle, error) {
	if err := m.Validate(); err != nil {
		return Triangle{}, err
	}
	return Triangle{Moments: m}, nil
}

func (Triangle) Name() string { return "triangle" }
func (Triangle) Draws() int   { return 8 }
func (Triangle) sealed()      {}

func (tr Triangle) Sample(rng Engine) (x, y, t, px, py, pt float64) {
	t = math.Sqrt2 * (2 - 3*math.Sqrt(rng.Float64()))

	g1, g2 := boxMuller(rng.Float64(), rng.Float64())
	g3, g4 := boxMuller(rng.Float64(), rng.Float64())
	pt, _ = boxMuller(rng.Float64(), rng.Float64())

	// A direction on the unit 3-sphere, scaled into a ball of unit
	// variance per coordinate.
	norm := math.Sqrt(g1*g1 + g2*g2 + g3*g3 + g4*g4)
	const dim = 4
	radius := math.Sqrt(dim+2) * math.Pow(rng.Float64(), 1.0/dim) / norm

	x = g1 * radius
	y = g2 * radius
	px = g3 * radius
	py = g4 * radius

	return tr.correlate(x, y, t, px, py, pt)
}

// Gaussian is an uncorrelated unit normal in all six coordinates before
// the correlation transform. It draws 6 variates per particle.
type Gaussian struct {
	Moments
}

func NewGaussian(m Moments) (Gaussian, error) {
	if err := m.Validate(); err != nil {
		return Gaussian{}, err
	}
	return Gaussian{Moments: m}, nil
}

func (Gaussian) Name() string { return "gaussian" }
func (Gaussian) Draws() int   { return 6 }
func (Gaussian) sealed()      {}

func (g Gaussian) Sample(rng Engine) (x, y, t, px, py, pt float64) {
	x, px = boxMuller(rng.Float64(), rng.Float64())
	y, py = boxMuller(rng.Float64(), rng.Float64())
	t, pt = boxMuller(rng.Float64(), rng.Float64())
	return g.correlate(x, y, t, px, py, pt)
}
