// Package viz draws beams in the terminal.
//
// [Model] follows a tracking run live through [Feed]: a Braille phase-space
// scatter of the sampled particles next to the reduced moments, a sigma
// history chart and emittance sparklines. [Menu] picks a lattice and run
// length before handing over to the live view.
//
// # Key Bindings
//
//	Space - Pause/Resume tracking
//	P     - Cycle phase-space plane
//	T     - Cycle color themes
//	Q     - Quit
package viz
