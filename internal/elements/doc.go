// Package elements is the closed set of beamline elements and their maps.
//
// Every element has a reference map, which moves the reference particle
// through one slice, and a particle map, which moves each particle relative
// to it. The driver calls them in that order for every slice:
//
//	ref.SEdge = ref.S
//	for i := 0; i < el.Traits().Slices; i++ {
//		elements.PushReference(el, ref)
//		elements.Push(el, beam, backend, step)
//	}
//
// # Maps
//
// Thin elements (Multipole, NonlinearLens, PRot, DipEdge, ShortRF) are kicks
// that leave the reference particle alone. Straight thick elements share a
// straight reference push; Sbend bends the reference orbit and ChrAcc
// accelerates it. SoftSolenoid, SoftQuadrupole and RFCavity integrate their
// z-dependent fields with the schemes in package integrators and hand the
// resulting linear map to the particles through ref.Map.
//
// # Errors
//
// Maps never fail. Constructors reject bad parameters with errors wrapping
// [ErrInvalidParameter].
package elements
