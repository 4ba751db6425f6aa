package elements

import (
	"fmt"
	"math"

	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/constants"
	"github.com/san-kum/beamsim/internal/integrators"
)

// Integrated elements have z-dependent fields. Their reference push
// integrates the reference particle through the slice with a symplectic
// composition and accumulates the linear map of the slice in ref.Map; the
// particle push applies that map.

func newIntegrated(kind Kind, ds float64, nslice, mapsteps int, profile FieldProfile) (Thick, error) {
	t, err := newThick(kind, ds, nslice)
	if err != nil {
		return Thick{}, err
	}
	if ds <= 0 {
		return Thick{}, fmt.Errorf("%w: %s ds must be positive, got %v", ErrInvalidParameter, kind, ds)
	}
	if mapsteps < 1 {
		return Thick{}, fmt.Errorf("%w: %s mapsteps must be >= 1, got %d", ErrInvalidParameter, kind, mapsteps)
	}
	return t, profile.validate(kind)
}

// sliceBounds resets the slice map and returns the integration range of the
// current slice, measured from the element entrance.
func sliceBounds(t Thick, ref *beam.RefPart) (zin, zout float64) {
	ref.Map.SetIdentity()
	zin = ref.S - ref.SEdge
	return zin, zin + t.SliceDs()
}

// refDrift is the field-free piece shared by every integrated element.
func refDrift(tau float64, ref *beam.RefPart, zeval float64) float64 {
	bg := math.Sqrt(ref.Pt*ref.Pt - 1)
	step := tau / bg

	ref.X += step * ref.Px
	ref.Y += step * ref.Py
	ref.Z += step * ref.Pz
	ref.T -= step * ref.Pt
	ref.S += tau

	ref.Map.AddRow(beam.IX, beam.IPx, tau)
	ref.Map.AddRow(beam.IY, beam.IPy, tau)
	ref.Map.AddRow(beam.IT, beam.IPt, tau/(bg*bg))

	return zeval + tau
}

// SoftSolenoid is a solenoid with a soft-edge longitudinal field
// Bscale*Profile(z), integrated with the split3 scheme in MapSteps steps
// per slice.
type SoftSolenoid struct {
	Thick
	Bscale   float64
	Unit     Unit
	Profile  FieldProfile
	MapSteps int
}

func NewSoftSolenoid(ds, bscale float64, profile FieldProfile, unit Unit, mapsteps, nslice int) (*SoftSolenoid, error) {
	t, err := newIntegrated(KindSoftSolenoid, ds, nslice, mapsteps, profile)
	if err != nil {
		return nil, err
	}
	if err := checkFinite(KindSoftSolenoid, param{"bscale", bscale}); err != nil {
		return nil, err
	}
	if err := checkUnit(KindSoftSolenoid, unit); err != nil {
		return nil, err
	}
	return &SoftSolenoid{Thick: t, Bscale: bscale, Unit: unit, Profile: profile, MapSteps: mapsteps}, nil
}

func (*SoftSolenoid) Name() string { return KindSoftSolenoid.String() }
func (*SoftSolenoid) Kind() Kind   { return KindSoftSolenoid }
func (*SoftSolenoid) sealed()      {}

func (s *SoftSolenoid) PushReference(ref *beam.RefPart) {
	zin, zout := sliceBounds(s.Thick, ref)
	integrators.Symp2Split3(ref, zin, zout, s.MapSteps, s)
}

func (*SoftSolenoid) PushParticle(p *beam.Particle, ref *beam.RefPart) {
	ref.Map.Apply(p)
}

// alpha is half the normalized field at z, the Larmor wavenumber.
func (s *SoftSolenoid) alpha(z float64, ref *beam.RefPart) float64 {
	f, _ := s.Profile.Eval(z, s.Ds)
	return normalized(s.Bscale*f, s.Unit, ref) / 2
}

func (s *SoftSolenoid) Map1(tau float64, ref *beam.RefPart, zeval float64) float64 {
	return refDrift(tau, ref, zeval)
}

// Map2 rotates the transverse plane by the Larmor angle.
func (s *SoftSolenoid) Map2(tau float64, ref *beam.RefPart, zeval float64) float64 {
	theta := s.alpha(zeval, ref) * tau
	c, sn := math.Cos(theta), math.Sin(theta)
	ref.Map.RotateRows(beam.IX, beam.IY, c, sn)
	ref.Map.RotateRows(beam.IPx, beam.IPy, c, sn)
	return zeval
}

// Map3 is the focusing kick in the Larmor frame.
func (s *SoftSolenoid) Map3(tau float64, ref *beam.RefPart, zeval float64) float64 {
	a := s.alpha(zeval, ref)
	ref.Map.AddRow(beam.IPx, beam.IX, -a*a*tau)
	ref.Map.AddRow(beam.IPy, beam.IY, -a*a*tau)
	return zeval
}

// SoftQuadrupole is a quadrupole with a soft-edge gradient
// Gscale*Profile(z).
type SoftQuadrupole struct {
	Thick
	Gscale   float64
	Unit     Unit
	Profile  FieldProfile
	MapSteps int
	Method   integrators.Method
}

func NewSoftQuadrupole(ds, gscale float64, profile FieldProfile, unit Unit, method integrators.Method, mapsteps, nslice int) (*SoftQuadrupole, error) {
	t, err := newIntegrated(KindSoftQuadrupole, ds, nslice, mapsteps, profile)
	if err != nil {
		return nil, err
	}
	if err := checkFinite(KindSoftQuadrupole, param{"gscale", gscale}); err != nil {
		return nil, err
	}
	if err := checkUnit(KindSoftQuadrupole, unit); err != nil {
		return nil, err
	}
	return &SoftQuadrupole{
		Thick:    t,
		Gscale:   gscale,
		Unit:     unit,
		Profile:  profile,
		MapSteps: mapsteps,
		Method:   method,
	}, nil
}

func (*SoftQuadrupole) Name() string { return KindSoftQuadrupole.String() }
func (*SoftQuadrupole) Kind() Kind   { return KindSoftQuadrupole }
func (*SoftQuadrupole) sealed()      {}

func (q *SoftQuadrupole) PushReference(ref *beam.RefPart) {
	zin, zout := sliceBounds(q.Thick, ref)
	integrators.Integrate(q.Method, ref, zin, zout, q.MapSteps, q)
}

func (*SoftQuadrupole) PushParticle(p *beam.Particle, ref *beam.RefPart) {
	ref.Map.Apply(p)
}

func (q *SoftQuadrupole) Map1(tau float64, ref *beam.RefPart, zeval float64) float64 {
	return refDrift(tau, ref, zeval)
}

// Map2 is the quadrupole kick at zeval.
func (q *SoftQuadrupole) Map2(tau float64, ref *beam.RefPart, zeval float64) float64 {
	f, _ := q.Profile.Eval(zeval, q.Ds)
	g := normalized(q.Gscale*f, q.Unit, ref)
	ref.Map.AddRow(beam.IPx, beam.IX, -g*tau)
	ref.Map.AddRow(beam.IPy, beam.IY, g*tau)
	return zeval
}

// RFCavity is a standing-wave cavity with on-axis field
// Escale*Profile(z)*cos(k*t + Phase). Escale is normalized to qE/(mc^2)
// [1/m]; the phase is referenced to the absolute reference time and is
// given in degrees, with zero on crest.
type RFCavity struct {
	Thick
	Escale   float64
	Freq     float64 // [Hz]
	Phase    float64 // [deg]
	Profile  FieldProfile
	MapSteps int
}

func NewRFCavity(ds, escale, freq, phase float64, profile FieldProfile, mapsteps, nslice int) (*RFCavity, error) {
	t, err := newIntegrated(KindRFCavity, ds, nslice, mapsteps, profile)
	if err != nil {
		return nil, err
	}
	err = checkFinite(KindRFCavity, param{"escale", escale}, param{"freq", freq}, param{"phase", phase})
	if err != nil {
		return nil, err
	}
	return &RFCavity{
		Thick:    t,
		Escale:   escale,
		Freq:     freq,
		Phase:    phase,
		Profile:  profile,
		MapSteps: mapsteps,
	}, nil
}

func (*RFCavity) Name() string { return KindRFCavity.String() }
func (*RFCavity) Kind() Kind   { return KindRFCavity }
func (*RFCavity) sealed()      {}

func (r *RFCavity) PushReference(ref *beam.RefPart) {
	zin, zout := sliceBounds(r.Thick, ref)
	integrators.Symp2Split3(ref, zin, zout, r.MapSteps, r)
}

func (*RFCavity) PushParticle(p *beam.Particle, ref *beam.RefPart) {
	ref.Map.Apply(p)
}

func (r *RFCavity) wavenumber() float64 {
	return 2 * math.Pi * r.Freq / constants.C
}

// field returns the field amplitude, its z derivative and the RF phase
// seen by the reference particle.
func (r *RFCavity) field(z float64, ref *beam.RefPart) (e, de, psi float64) {
	f, df := r.Profile.Eval(z, r.Ds)
	psi = r.wavenumber()*ref.T + r.Phase*constants.Degree
	return r.Escale * f, r.Escale * df, psi
}

func (r *RFCavity) Map1(tau float64, ref *beam.RefPart, zeval float64) float64 {
	return refDrift(tau, ref, zeval)
}

// Map2 is the energy kick. The particle momenta are normalized to the
// reference momentum, so they shrink by bgIn/bgOut as the reference gains
// energy.
func (r *RFCavity) Map2(tau float64, ref *beam.RefPart, zeval float64) float64 {
	e, _, psi := r.field(zeval, ref)
	k := r.wavenumber()

	bgIn := math.Sqrt(ref.Pt*ref.Pt - 1)
	ref.Pt -= tau * e * math.Cos(psi)
	bgOut := math.Sqrt(ref.Pt*ref.Pt - 1)
	ref.Pz = bgOut

	scale := bgIn / bgOut
	ref.Map.ScaleRow(beam.IPx, scale)
	ref.Map.ScaleRow(beam.IPy, scale)
	ref.Map.ScaleRow(beam.IPt, scale)
	ref.Map.AddRow(beam.IPt, beam.IT, tau*e*k*math.Sin(psi)/bgOut)
	return zeval
}

// Map3 is the transverse RF focusing from the radial electric and
// azimuthal magnetic fields near the axis.
func (r *RFCavity) Map3(tau float64, ref *beam.RefPart, zeval float64) float64 {
	e, de, psi := r.field(zeval, ref)
	k := r.wavenumber()
	beta := ref.Beta()
	bg := ref.BetaGamma()

	kappa := (de*math.Cos(psi) - beta*k*e*math.Sin(psi)) / (2 * beta * bg)
	ref.Map.AddRow(beam.IPx, beam.IX, -kappa*tau)
	ref.Map.AddRow(beam.IPy, beam.IY, -kappa*tau)
	return zeval
}
