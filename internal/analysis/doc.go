// Package analysis follows single particles turn by turn.
//
// A [Section] is a stroboscopic Poincaré section taken at the end of every
// lattice period. Attached to a tracker as an observer it records the
// phase-space coordinates of chosen particles, which can then be drawn as a
// portrait:
//
//	sec := analysis.NewSection(len(lattice), beam.IX, beam.IPx, 1, 2, 3)
//	tracker.AddObserver(sec)
//	tracker.Run(ctx, ens, sim.Config{Periods: 1000})
//	fmt.Println(sec.ASCII(72, 24))
//
// Regular orbits trace closed curves; chaotic ones fill an area.
package analysis
