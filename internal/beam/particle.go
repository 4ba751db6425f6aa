package beam

import "math"

// Particle is one macro particle. Coordinates are offsets from the
// reference particle; the zero value sits on the reference orbit.
type Particle struct {
	ID uint64

	X float64 // horizontal offset [m]
	Y float64 // vertical offset [m]
	T float64 // time-of-flight offset times c [m]

	Px float64 // horizontal momentum, normalized to the reference momentum
	Py float64 // vertical momentum, normalized to the reference momentum
	Pt float64 // energy deviation, normalized to the reference momentum times c
}

// Vector returns the phase-space coordinates in (x, px, y, py, t, pt) order.
func (p *Particle) Vector() [6]float64 {
	return [6]float64{p.X, p.Px, p.Y, p.Py, p.T, p.Pt}
}

// SetVector assigns coordinates given in (x, px, y, py, t, pt) order.
func (p *Particle) SetVector(v [6]float64) {
	p.X, p.Px, p.Y, p.Py, p.T, p.Pt = v[0], v[1], v[2], v[3], v[4], v[5]
}

// IsValid reports whether every coordinate is finite.
func (p *Particle) IsValid() bool {
	for _, v := range p.Vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
