// Package beam defines the state that flows through a beamline:
//
//   - [RefPart]: the reference particle that defines the moving frame
//   - [Particle]: one macro particle, stored as offsets from the reference
//   - [Ensemble]: an in-memory particle container implementing [Container]
//   - [LinearMap]: a 6x6 transfer matrix in (x, px, y, py, t, pt) order
//
// # Units
//
// Positions are in meters, t is the time-of-flight offset times c.
// Transverse momenta are normalized to the reference momentum and pt is the
// energy deviation normalized to the reference momentum times c. For the
// reference particle itself pt is -gamma, so every kinematic quantity is
// derived from Pt.
//
// # Assertions
//
// Preconditions on the hot path are checked with [Assert], which only
// panics in binaries built with the debug tag:
//
//	go test -tags debug ./...
package beam
