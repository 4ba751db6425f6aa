package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/beamsim/internal/constants"
	"github.com/san-kum/beamsim/internal/distribution"
	"github.com/san-kum/beamsim/internal/elements"
)

const (
	DefaultParticles  = 10000
	DefaultPeriods    = 1
	DefaultKineticMeV = 2000.0
	DefaultSeed       = 1
)

var (
	ErrInvalidConfig = errors.New("config: invalid configuration")
	ErrUnknownFormat = errors.New("config: unknown file format")
)

type Config struct {
	Name             string          `yaml:"name" toml:"name"`
	Beam             BeamConfig      `yaml:"beam" toml:"beam"`
	Lattice          []ElementConfig `yaml:"lattice" toml:"lattice"`
	Periods          int             `yaml:"periods" toml:"periods"`
	Backend          string          `yaml:"backend,omitempty" toml:"backend,omitempty"`
	Seed             uint64          `yaml:"seed" toml:"seed"`
	SliceDiagnostics bool            `yaml:"slice_diagnostics,omitempty" toml:"slice_diagnostics,omitempty"`
	OutputDir        string          `yaml:"output_dir,omitempty" toml:"output_dir,omitempty"`
}

// BeamConfig describes the reference particle and the initial bunch.
type BeamConfig struct {
	Species      string               `yaml:"species,omitempty" toml:"species,omitempty"`
	MassMeV      float64              `yaml:"mass_mev,omitempty" toml:"mass_mev,omitempty"`
	ChargeQe     float64              `yaml:"charge_qe,omitempty" toml:"charge_qe,omitempty"`
	KineticMeV   float64              `yaml:"kinetic_mev" toml:"kinetic_mev"`
	Particles    int                  `yaml:"particles" toml:"particles"`
	Distribution string               `yaml:"distribution" toml:"distribution"`
	Moments      distribution.Moments `yaml:"moments" toml:"moments"`
}

// ElementConfig is one lattice entry. Type selects the element; only the
// fields that element uses are read. Bz is accepted for ChrAcc and
// ignored.
type ElementConfig struct {
	Type   string  `yaml:"type" toml:"type"`
	Name   string  `yaml:"name,omitempty" toml:"name,omitempty"`
	Ds     float64 `yaml:"ds,omitempty" toml:"ds,omitempty"`
	NSlice int     `yaml:"nslice,omitempty" toml:"nslice,omitempty"`

	K      float64 `yaml:"k,omitempty" toml:"k,omitempty"`
	Ks     float64 `yaml:"ks,omitempty" toml:"ks,omitempty"`
	Kx     float64 `yaml:"kx,omitempty" toml:"kx,omitempty"`
	Ky     float64 `yaml:"ky,omitempty" toml:"ky,omitempty"`
	Kt     float64 `yaml:"kt,omitempty" toml:"kt,omitempty"`
	Units  int     `yaml:"units,omitempty" toml:"units,omitempty"`
	Rc     float64 `yaml:"rc,omitempty" toml:"rc,omitempty"`
	Ez     float64 `yaml:"ez,omitempty" toml:"ez,omitempty"`
	Bz     float64 `yaml:"bz,omitempty" toml:"bz,omitempty"`
	Psi    float64 `yaml:"psi,omitempty" toml:"psi,omitempty"`
	G      float64 `yaml:"g,omitempty" toml:"g,omitempty"`
	K2     float64 `yaml:"k2,omitempty" toml:"k2,omitempty"`
	V      float64 `yaml:"v,omitempty" toml:"v,omitempty"`
	PhiIn  float64 `yaml:"phi_in,omitempty" toml:"phi_in,omitempty"`
	PhiOut float64 `yaml:"phi_out,omitempty" toml:"phi_out,omitempty"`
	Knll   float64 `yaml:"knll,omitempty" toml:"knll,omitempty"`
	Cnll   float64 `yaml:"cnll,omitempty" toml:"cnll,omitempty"`

	Multipole int     `yaml:"multipole,omitempty" toml:"multipole,omitempty"`
	KNormal   float64 `yaml:"k_normal,omitempty" toml:"k_normal,omitempty"`
	KSkew     float64 `yaml:"k_skew,omitempty" toml:"k_skew,omitempty"`

	Bscale   float64                `yaml:"bscale,omitempty" toml:"bscale,omitempty"`
	Gscale   float64                `yaml:"gscale,omitempty" toml:"gscale,omitempty"`
	Escale   float64                `yaml:"escale,omitempty" toml:"escale,omitempty"`
	Freq     float64                `yaml:"freq,omitempty" toml:"freq,omitempty"`
	Phase    float64                `yaml:"phase,omitempty" toml:"phase,omitempty"`
	MapSteps int                    `yaml:"mapsteps,omitempty" toml:"mapsteps,omitempty"`
	Method   string                 `yaml:"method,omitempty" toml:"method,omitempty"`
	Profile  *elements.FieldProfile `yaml:"profile,omitempty" toml:"profile,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "drift",
		Beam: BeamConfig{
			Species:      "proton",
			KineticMeV:   DefaultKineticMeV,
			Particles:    DefaultParticles,
			Distribution: "gaussian",
			Moments: distribution.Moments{
				SigmaX: 1e-3, SigmaY: 1e-3, SigmaT: 1e-3,
				SigmaPx: 1e-4, SigmaPy: 1e-4, SigmaPt: 1e-4,
			},
		},
		Lattice: []ElementConfig{{Type: "Drift", Ds: 1.0, NSlice: 1}},
		Periods: DefaultPeriods,
		Seed:    DefaultSeed,
	}
}

// Species returns the rest mass [MeV] and charge [qe] of a named species.
func Species(name string) (massMeV, chargeQe float64, ok bool) {
	switch strings.ToLower(name) {
	case "electron":
		return constants.ElectronMassMeV, -1, true
	case "positron":
		return constants.ElectronMassMeV, 1, true
	case "proton":
		return constants.ProtonMassMeV, 1, true
	case "antiproton":
		return constants.ProtonMassMeV, -1, true
	}
	return 0, 0, false
}

// ResolveSpecies fills MassMeV and ChargeQe from Species when they are not
// given explicitly.
func (b *BeamConfig) ResolveSpecies() error {
	if b.Species != "" {
		m, q, ok := Species(b.Species)
		if !ok {
			return fmt.Errorf("%w: unknown species %q", ErrInvalidConfig, b.Species)
		}
		if b.MassMeV == 0 {
			b.MassMeV = m
		}
		if b.ChargeQe == 0 {
			b.ChargeQe = q
		}
	}
	return nil
}

// Validate checks the fields that do not depend on the element registry.
func (c *Config) Validate() error {
	if err := c.Beam.ResolveSpecies(); err != nil {
		return err
	}
	switch {
	case c.Beam.MassMeV <= 0:
		return fmt.Errorf("%w: beam mass must be positive, got %v MeV", ErrInvalidConfig, c.Beam.MassMeV)
	case c.Beam.KineticMeV <= 0:
		return fmt.Errorf("%w: kinetic energy must be positive, got %v MeV", ErrInvalidConfig, c.Beam.KineticMeV)
	case c.Beam.Particles < 0:
		return fmt.Errorf("%w: particle count must not be negative", ErrInvalidConfig)
	case c.Periods < 1:
		return fmt.Errorf("%w: periods must be >= 1, got %d", ErrInvalidConfig, c.Periods)
	case len(c.Lattice) == 0:
		return fmt.Errorf("%w: empty lattice", ErrInvalidConfig)
	}
	for i, el := range c.Lattice {
		if el.Type == "" {
			return fmt.Errorf("%w: lattice[%d] has no type", ErrInvalidConfig, i)
		}
	}
	if err := c.Beam.Moments.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Lattice = make([]ElementConfig, len(c.Lattice))
	for i, el := range c.Lattice {
		if el.Profile != nil {
			p := elements.FieldProfile{
				Cos: append([]float64(nil), el.Profile.Cos...),
				Sin: append([]float64(nil), el.Profile.Sin...),
			}
			el.Profile = &p
		}
		out.Lattice[i] = el
	}
	return &out
}

type format int

const (
	formatYAML format = iota
	formatTOML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".toml":
		return formatTOML, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads a YAML or TOML lattice file, chosen by extension. Fields
// missing from the file keep their DefaultConfig values, except the
// lattice, which the file replaces.
func Load(path string) (*Config, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.Lattice = nil
	switch f {
	case formatTOML:
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch f {
	case formatTOML:
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
			return err
		}
		data = []byte(sb.String())
	default:
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Param returns a pointer to the float field named by its file key, such
// as "k" or "phi_in".
func (e *ElementConfig) Param(key string) (*float64, error) {
	fields := map[string]*float64{
		"ds": &e.Ds, "k": &e.K, "ks": &e.Ks, "kx": &e.Kx, "ky": &e.Ky, "kt": &e.Kt,
		"rc": &e.Rc, "ez": &e.Ez, "bz": &e.Bz, "psi": &e.Psi, "g": &e.G, "k2": &e.K2,
		"v": &e.V, "phi_in": &e.PhiIn, "phi_out": &e.PhiOut, "knll": &e.Knll, "cnll": &e.Cnll,
		"k_normal": &e.KNormal, "k_skew": &e.KSkew, "bscale": &e.Bscale, "gscale": &e.Gscale,
		"escale": &e.Escale, "freq": &e.Freq, "phase": &e.Phase,
	}
	p, ok := fields[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no parameter %q", ErrInvalidConfig, e.Type, key)
	}
	return p, nil
}
