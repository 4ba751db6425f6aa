// Package constants holds the SI constants used to convert between the
// physical units of the input deck and the normalized beam units.
package constants

import "math"

const (
	// C is the speed of light [m/s].
	C = 299792458.0
	// Qe is the elementary charge [C].
	Qe = 1.602176634e-19
	// MeVInvC2 is one MeV/c^2 expressed in kg.
	MeVInvC2 = 1.0e6 * Qe / (C * C)
)

// Rest masses [MeV/c^2].
const (
	ElectronMassMeV = 0.51099895000
	ProtonMassMeV   = 938.27208816
	AmuMeV          = 931.49410242
)

// Degree converts degrees to radians.
const Degree = math.Pi / 180.0
