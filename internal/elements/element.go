package elements

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/beamsim/internal/beam"
)

// ErrInvalidParameter is returned by constructors for out-of-range or
// non-finite element parameters.
var ErrInvalidParameter = errors.New("elements: invalid element parameter")

// Kind identifies an element type. The set is closed.
type Kind int

const (
	KindNone Kind = iota
	KindDrift
	KindChrDrift
	KindExactDrift
	KindQuad
	KindChrQuad
	KindConstF
	KindMultipole
	KindNonlinearLens
	KindPRot
	KindDipEdge
	KindSbend
	KindShortRF
	KindChrAcc
	KindSol
	KindSoftSolenoid
	KindSoftQuadrupole
	KindRFCavity
	KindProgrammable
	KindBeamMonitor

	numKinds
)

var kindNames = [numKinds]string{
	KindNone:           "None",
	KindDrift:          "Drift",
	KindChrDrift:       "ChrDrift",
	KindExactDrift:     "ExactDrift",
	KindQuad:           "Quad",
	KindChrQuad:        "ChrQuad",
	KindConstF:         "ConstF",
	KindMultipole:      "Multipole",
	KindNonlinearLens:  "NonlinearLens",
	KindPRot:           "PRot",
	KindDipEdge:        "DipEdge",
	KindSbend:          "Sbend",
	KindShortRF:        "ShortRF",
	KindChrAcc:         "ChrAcc",
	KindSol:            "Sol",
	KindSoftSolenoid:   "SoftSolenoid",
	KindSoftQuadrupole: "SoftQuadrupole",
	KindRFCavity:       "RFCavity",
	KindProgrammable:   "Programmable",
	KindBeamMonitor:    "BeamMonitor",
}

func (k Kind) String() string {
	if k >= 0 && k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Traits describes how the driver steps an element.
type Traits struct {
	Thick         bool
	Length        float64
	Slices        int
	NeedsFinalize bool
}

// Element is implemented only by the types in this package.
//
// PushReference advances the reference particle through one slice.
// PushParticle applies the particle map of one slice; it reads ref but
// never writes to it and is safe to call concurrently for different
// particles.
type Element interface {
	Name() string
	Kind() Kind
	Traits() Traits
	PushReference(ref *beam.RefPart)
	PushParticle(p *beam.Particle, ref *beam.RefPart)

	sealed()
}

// Thick is embedded by elements with a length. The particle and reference
// maps act on one slice of length Ds/NSlice.
type Thick struct {
	Ds     float64 // segment length [m]
	NSlice int     // number of slices
}

func (t Thick) slices() int {
	if t.NSlice < 1 {
		return 1
	}
	return t.NSlice
}

// SliceDs returns the length of one slice.
func (t Thick) SliceDs() float64 {
	return t.Ds / float64(t.slices())
}

func (t Thick) Traits() Traits {
	return Traits{Thick: true, Length: t.Ds, Slices: t.slices()}
}

// PushReference moves the reference particle along a straight slice.
func (t Thick) PushReference(ref *beam.RefPart) {
	ref.StraightStep(t.SliceDs())
}

// Thin is embedded by zero-length kicks.
type Thin struct{}

func (Thin) Traits() Traits                { return Traits{Slices: 1} }
func (Thin) PushReference(_ *beam.RefPart) {}

// KindInfo is static metadata about one element kind.
type KindInfo struct {
	Kind          Kind
	Name          string
	Thick         bool
	NeedsFinalize bool
}

// Kinds lists every element kind in registry order.
func Kinds() []KindInfo {
	out := make([]KindInfo, 0, numKinds)
	for k := KindNone; k < numKinds; k++ {
		info := KindInfo{Kind: k, Name: k.String()}
		switch k {
		case KindNone, KindMultipole, KindNonlinearLens, KindPRot,
			KindDipEdge, KindShortRF, KindBeamMonitor:
		default:
			info.Thick = true
		}
		info.NeedsFinalize = k == KindBeamMonitor
		out = append(out, info)
	}
	return out
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

type param struct {
	name  string
	value float64
}

func checkFinite(kind Kind, params ...param) error {
	for _, p := range params {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%w: %s %s = %v", ErrInvalidParameter, kind, p.name, p.value)
		}
	}
	return nil
}

func checkSlices(kind Kind, nslice int) error {
	if nslice < 1 {
		return fmt.Errorf("%w: %s nslice must be >= 1, got %d", ErrInvalidParameter, kind, nslice)
	}
	return nil
}

func newThick(kind Kind, ds float64, nslice int) (Thick, error) {
	if err := checkFinite(kind, param{"ds", ds}); err != nil {
		return Thick{}, err
	}
	if err := checkSlices(kind, nslice); err != nil {
		return Thick{}, err
	}
	return Thick{Ds: ds, NSlice: nslice}, nil
}

// sinOver returns sin(k*s)/k, or s when k is zero.
func sinOver(k, s float64) float64 {
	if k == 0 {
		return s
	}
	return math.Sin(k*s) / k
}
