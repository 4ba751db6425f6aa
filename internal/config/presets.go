package config

import (
	"slices"

	"github.com/san-kum/beamsim/internal/distribution"
	"github.com/san-kum/beamsim/internal/elements"
)

func fodoCell(quad string, k float64) []ElementConfig {
	drift := "Drift"
	if quad == "ChrQuad" {
		drift = "ChrDrift"
	}
	return []ElementConfig{
		{Type: "BeamMonitor", Name: "monitor"},
		{Type: drift, Ds: 0.25, NSlice: 4},
		{Type: quad, Ds: 1.0, K: k, NSlice: 4},
		{Type: drift, Ds: 0.5, NSlice: 4},
		{Type: quad, Ds: 1.0, K: -k, NSlice: 4},
		{Type: drift, Ds: 0.25, NSlice: 4},
		{Type: "BeamMonitor", Name: "monitor"},
	}
}

var fodoMoments = distribution.Moments{
	SigmaX: 2.2951017632e-3, SigmaY: 1.3084093142e-3, SigmaT: 1e-3,
	SigmaPx: 1.598353425e-3, SigmaPy: 2.803697378e-3, SigmaPt: 2e-3,
	MuXPx: 0.933345606203060, MuYPy: -0.933345606203060,
}

var Presets = map[string]*Config{
	"fodo": {
		Name: "fodo",
		Beam: BeamConfig{
			Species: "electron", KineticMeV: 2000, Particles: 10000,
			Distribution: "gaussian", Moments: fodoMoments,
		},
		Lattice: fodoCell("Quad", 1.0),
		Periods: 1,
		Seed:    DefaultSeed,
	},
	"chr_fodo": {
		Name: "chr_fodo",
		Beam: BeamConfig{
			Species: "electron", KineticMeV: 2000, Particles: 10000,
			Distribution: "kurth4d", Moments: fodoMoments,
		},
		Lattice: fodoCell("ChrQuad", 1.0),
		Periods: 1,
		Seed:    DefaultSeed,
	},
	"positron_channel": {
		Name: "positron_channel",
		Beam: BeamConfig{
			Species: "positron", KineticMeV: 10.0e3, Particles: 10000,
			Distribution: "triangle",
			Moments: distribution.Moments{
				SigmaX: 5.054566450e-6, SigmaY: 5.054566450e-6, SigmaT: 8.43732950e-7,
				SigmaPx: 1.01091329e-7, SigmaPy: 1.01091329e-7, SigmaPt: 1.0e-2,
				MuTPt: 0.995037190209989,
			},
		},
		Lattice: []ElementConfig{
			{Type: "BeamMonitor", Name: "monitor"},
			{Type: "ChrQuad", Ds: 0.1, K: -6.674941, Units: 1, NSlice: 1},
			{Type: "ChrDrift", Ds: 0.3, NSlice: 1},
			{Type: "ChrQuad", Ds: 0.2, K: 6.674941, Units: 1, NSlice: 1},
			{Type: "ChrDrift", Ds: 0.3, NSlice: 1},
			{Type: "ChrQuad", Ds: 0.1, K: -6.674941, Units: 1, NSlice: 1},
			{Type: "ChrDrift", Ds: 0.1, NSlice: 1},
			{Type: "ChrAcc", Ds: 1.8, Ez: 10871.950994502130424, Bz: 1.0e-12, NSlice: 1},
			{Type: "ChrDrift", Ds: 0.1, NSlice: 1},
			{Type: "BeamMonitor", Name: "monitor"},
		},
		Periods: 250,
		Seed:    DefaultSeed,
	},
	"solenoid_channel": {
		Name: "solenoid_channel",
		Beam: BeamConfig{
			Species: "proton", KineticMeV: 250, Particles: 10000,
			Distribution: "gaussian",
			Moments: distribution.Moments{
				SigmaX: 1e-3, SigmaY: 1e-3, SigmaT: 1e-3,
				SigmaPx: 1e-3, SigmaPy: 1e-3, SigmaPt: 1e-3,
			},
		},
		Lattice: []ElementConfig{
			{Type: "BeamMonitor", Name: "monitor"},
			{Type: "Drift", Ds: 0.5, NSlice: 2},
			{Type: "SoftSolenoid", Ds: 1.0, Bscale: 1.0, Units: 1, MapSteps: 50, NSlice: 4, Profile: &elements.FieldProfile{Cos: []float64{1, 0.5}}},
			{Type: "Drift", Ds: 0.5, NSlice: 2},
			{Type: "Sol", Ds: 1.0, Ks: 0.8, NSlice: 4},
			{Type: "BeamMonitor", Name: "monitor"},
		},
		Periods: 10,
		Seed:    DefaultSeed,
	},
	"rf_linac": {
		Name: "rf_linac",
		Beam: BeamConfig{
			Species: "electron", KineticMeV: 250, Particles: 10000,
			Distribution: "gaussian",
			Moments: distribution.Moments{
				SigmaX: 3.9e-4, SigmaY: 3.9e-4, SigmaT: 1e-3,
				SigmaPx: 2.6e-4, SigmaPy: 2.6e-4, SigmaPt: 2e-3,
			},
		},
		Lattice: []ElementConfig{
			{Type: "BeamMonitor", Name: "monitor"},
			{Type: "SoftQuadrupole", Ds: 0.2, Gscale: 2.0, MapSteps: 20, Method: "symp4", NSlice: 2},
			{Type: "Drift", Ds: 0.1, NSlice: 1},
			{Type: "RFCavity", Ds: 1.31, Escale: 62.0, Freq: 1.3e9, Phase: 0, MapSteps: 100, NSlice: 4},
			{Type: "Drift", Ds: 0.1, NSlice: 1},
			{Type: "SoftQuadrupole", Ds: 0.2, Gscale: -2.0, MapSteps: 20, Method: "symp4", NSlice: 2},
			{Type: "BeamMonitor", Name: "monitor"},
		},
		Periods: 5,
		Seed:    DefaultSeed,
	},
	"nonlinear_ring": {
		Name: "nonlinear_ring",
		Beam: BeamConfig{
			Species: "proton", KineticMeV: 2.5, Particles: 10000,
			Distribution: "gaussian",
			Moments: distribution.Moments{
				SigmaX: 1e-3, SigmaY: 1e-3, SigmaT: 1e-3,
				SigmaPx: 1e-3, SigmaPy: 1e-3, SigmaPt: 1e-4,
			},
		},
		Lattice: []ElementConfig{
			{Type: "BeamMonitor", Name: "monitor"},
			{Type: "NonlinearLens", Knll: 4e-6, Cnll: 0.01},
			{Type: "ConstF", Ds: 1.8, Kx: 1.0, Ky: 1.0, Kt: 1e-4, NSlice: 4},
			{Type: "Multipole", Multipole: 3, KNormal: 0.2},
			{Type: "DipEdge", Psi: 0.0, Rc: 10, G: 0.05, K2: 0.5},
			{Type: "Sbend", Ds: 0.5, Rc: 10, NSlice: 2},
			{Type: "DipEdge", Psi: 0.0, Rc: 10, G: 0.05, K2: 0.5},
			{Type: "PRot", PhiIn: 0, PhiOut: -1.4323944878},
			{Type: "ShortRF", V: 0.01, K: 15},
			{Type: "PRot", PhiIn: -1.4323944878, PhiOut: 0},
			{Type: "ExactDrift", Ds: 0.2, NSlice: 1},
			{Type: "BeamMonitor", Name: "monitor"},
		},
		Periods: 100,
		Seed:    DefaultSeed,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
