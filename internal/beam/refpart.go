package beam

import (
	"math"

	"github.com/san-kum/beamsim/internal/constants"
)

// RefPart is the reference particle. There is exactly one per simulation;
// the tracking driver owns it and only reference maps write to it.
type RefPart struct {
	S  float64 // integrated orbit path length [m]
	X  float64 // horizontal position [m]
	Y  float64 // vertical position [m]
	Z  float64 // longitudinal position [m]
	T  float64 // clock time * c [m]
	Px float64 // momentum in x, normalized to proper velocity
	Py float64 // momentum in y, normalized to proper velocity
	Pz float64 // momentum in z, normalized to proper velocity
	Pt float64 // energy, normalized by rest energy (Pt = -gamma)

	Mass   float64 // rest mass [kg]
	Charge float64 // charge [C]

	// SEdge is the value of S at the entrance of the current element.
	SEdge float64

	// Map is the linear map of the current slice. Integrated elements
	// rebuild it in their reference push and apply it to the particles.
	Map LinearMap
}

// NewRefPart returns a reference particle at rest at the origin with an
// identity linear map.
func NewRefPart() RefPart {
	return RefPart{Map: Identity()}
}

// Gamma returns the relativistic gamma.
func (r *RefPart) Gamma() float64 {
	return -r.Pt
}

// Beta returns the relativistic beta. It is NaN for gamma < 1 and zero for
// gamma == 1; callers keep the reference particle moving.
func (r *RefPart) Beta() float64 {
	g := -r.Pt
	return math.Sqrt(1.0 - 1.0/(g*g))
}

// BetaGamma returns beta*gamma, the reference momentum in units of mc.
func (r *RefPart) BetaGamma() float64 {
	g := -r.Pt
	return math.Sqrt(g*g - 1.0)
}

// MassMeV returns the rest mass in MeV/c^2.
func (r *RefPart) MassMeV() float64 {
	return r.Mass / constants.MeVInvC2
}

// SetMassMeV sets the rest mass in MeV/c^2. If the particle already carries
// an energy, Pt and Pz are rescaled so the kinetic energy is unchanged.
func (r *RefPart) SetMassMeV(massE float64) *RefPart {
	Assert(massE != 0, "SetMassMeV: mass cannot be zero")

	rescale := r.Pt != 0 && r.Mass != 0
	kinetic := 0.0
	if rescale {
		kinetic = r.EnergyMeV()
	}

	r.Mass = massE * constants.MeVInvC2

	if rescale {
		r.Pt = -kinetic/massE - 1.0
		r.Pz = math.Sqrt(r.Pt*r.Pt - 1.0)
	}
	return r
}

// EnergyMeV returns the kinetic energy in MeV.
func (r *RefPart) EnergyMeV() float64 {
	return r.MassMeV() * (-r.Pt - 1.0)
}

// SetEnergyMeV sets the kinetic energy in MeV. The particle is put on axis
// with all of its momentum along z, so the mass must be set first.
func (r *RefPart) SetEnergyMeV(energy float64) *RefPart {
	Assert(r.Mass != 0, "SetEnergyMeV: set mass first")

	r.Px = 0
	r.Py = 0
	r.Pt = -energy/r.MassMeV() - 1.0
	r.Pz = math.Sqrt(r.Pt*r.Pt - 1.0)
	return r
}

// RigidityTm returns the magnetic rigidity Brho in T*m.
//
// The momentum is divided by the elementary charge, not by Charge, so the
// result is the rigidity per unit charge and always positive.
func (r *RefPart) RigidityTm() float64 {
	g := -r.Pt
	bg := math.Sqrt(g*g - 1.0)
	return r.Mass * bg * constants.C / constants.Qe
}

// ChargeQe returns the charge in multiples of the elementary charge.
func (r *RefPart) ChargeQe() float64 {
	return r.Charge / constants.Qe
}

// SetChargeQe sets the charge in multiples of the elementary charge.
func (r *RefPart) SetChargeQe(q float64) *RefPart {
	r.Charge = q * constants.Qe
	return r
}

// QmQeeV returns the charge to mass ratio.
func (r *RefPart) QmQeeV() float64 {
	return r.Charge / r.Mass
}

// Validate reports whether the reference particle can drive a tracking
// pass. It is meant for the driver, before any element is applied.
func (r *RefPart) Validate() error {
	for _, v := range [...]float64{r.S, r.X, r.Y, r.Z, r.T, r.Px, r.Py, r.Pz, r.Pt} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidState
		}
	}
	if r.Mass == 0 {
		return ErrZeroMass
	}
	if -r.Pt <= 1 {
		return ErrNotRelativistic
	}
	return nil
}

// StraightStep advances the reference particle by ds through a field-free
// straight section.
func (r *RefPart) StraightStep(ds float64) {
	step := ds / math.Sqrt(r.Pt*r.Pt-1.0)

	r.X += step * r.Px
	r.Y += step * r.Py
	r.Z += step * r.Pz
	r.T -= step * r.Pt

	r.S += ds
}
