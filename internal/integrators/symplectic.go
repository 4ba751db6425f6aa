package integrators

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/beamsim/internal/beam"
)

// TwoMap is an element whose reference motion splits into two exactly
// solvable pieces. Each map advances the reference particle by tau and
// returns the updated longitudinal coordinate.
type TwoMap interface {
	Map1(tau float64, ref *beam.RefPart, zeval float64) float64
	Map2(tau float64, ref *beam.RefPart, zeval float64) float64
}

// ThreeMap is a TwoMap with a third piece for split3 composition.
type ThreeMap interface {
	TwoMap
	Map3(tau float64, ref *beam.RefPart, zeval float64) float64
}

// Symp2 integrates from zin to zout in nsteps second-order steps:
// map1(h/2) map2(h) map1(h/2). It returns the final zeval.
func Symp2[T TwoMap](ref *beam.RefPart, zin, zout float64, nsteps int, e T) float64 {
	dz := (zout - zin) / float64(nsteps)
	tau1 := dz / 2
	tau2 := dz

	zeval := zin
	for j := 0; j < nsteps; j++ {
		zeval = e.Map1(tau1, ref, zeval)
		zeval = e.Map2(tau2, ref, zeval)
		zeval = e.Map1(tau1, ref, zeval)
	}
	return zeval
}

// Symp2Split3 is the second-order scheme for three-way splittings:
// map1(h/2) map2(h/2) map3(h) map2(h/2) map1(h/2).
func Symp2Split3[T ThreeMap](ref *beam.RefPart, zin, zout float64, nsteps int, e T) float64 {
	dz := (zout - zin) / float64(nsteps)
	tau1 := dz / 2
	tau2 := dz / 2
	tau3 := dz

	zeval := zin
	for j := 0; j < nsteps; j++ {
		zeval = e.Map1(tau1, ref, zeval)
		zeval = e.Map2(tau2, ref, zeval)
		zeval = e.Map3(tau3, ref, zeval)
		zeval = e.Map2(tau2, ref, zeval)
		zeval = e.Map1(tau1, ref, zeval)
	}
	return zeval
}

// yoshidaAlpha is 1 - 2^(1/3).
var yoshidaAlpha = 1 - math.Cbrt(2)

// Symp4 is the fourth-order Yoshida triple jump built from Symp2 stages.
func Symp4[T TwoMap](ref *beam.RefPart, zin, zout float64, nsteps int, e T) float64 {
	dz := (zout - zin) / float64(nsteps)
	alpha := yoshidaAlpha
	tau2 := dz / (1 + alpha)
	tau1 := tau2 / 2
	tau3 := alpha * tau1
	tau4 := (alpha - 1) * tau2

	zeval := zin
	for j := 0; j < nsteps; j++ {
		zeval = e.Map1(tau1, ref, zeval)
		zeval = e.Map2(tau2, ref, zeval)
		zeval = e.Map1(tau3, ref, zeval)
		zeval = e.Map2(tau4, ref, zeval)
		zeval = e.Map1(tau3, ref, zeval)
		zeval = e.Map2(tau2, ref, zeval)
		zeval = e.Map1(tau1, ref, zeval)
	}
	return zeval
}

// Method selects a composition scheme for two-map elements.
type Method int

const (
	MethodSymp2 Method = iota
	MethodSymp4
)

var ErrUnknownMethod = errors.New("integrators: unknown integration method")

func (m Method) String() string {
	switch m {
	case MethodSymp2:
		return "symp2"
	case MethodSymp4:
		return "symp4"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod maps "symp2" or "symp4" to a Method. The empty string
// selects symp2.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "", "symp2", "2":
		return MethodSymp2, nil
	case "symp4", "4":
		return MethodSymp4, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// Integrate runs the scheme selected by m.
func Integrate[T TwoMap](m Method, ref *beam.RefPart, zin, zout float64, nsteps int, e T) float64 {
	if m == MethodSymp4 {
		return Symp4(ref, zin, zout, nsteps, e)
	}
	return Symp2(ref, zin, zout, nsteps, e)
}
