// Package lattice turns lattice-file entries into elements.
package lattice

import (
	"errors"
	"fmt"
	"slices"

	"github.com/san-kum/beamsim/internal/config"
	"github.com/san-kum/beamsim/internal/elements"
	"github.com/san-kum/beamsim/internal/integrators"
)

var ErrUnknownElement = errors.New("lattice: unknown element type")

// Constructor builds one element from its lattice entry.
type Constructor func(cfg config.ElementConfig) (elements.Element, error)

type Registry struct {
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}

	r.Register("None", func(config.ElementConfig) (elements.Element, error) {
		return &elements.None{}, nil
	})
	r.Register("Drift", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewDrift(c.Ds, nslice(c))
	})
	r.Register("ChrDrift", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewChrDrift(c.Ds, nslice(c))
	})
	r.Register("ExactDrift", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewExactDrift(c.Ds, nslice(c))
	})
	r.Register("Quad", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewQuad(c.Ds, c.K, elements.Unit(c.Units), nslice(c))
	})
	r.Register("ChrQuad", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewChrQuad(c.Ds, c.K, elements.Unit(c.Units), nslice(c))
	})
	r.Register("ConstF", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewConstF(c.Ds, c.Kx, c.Ky, c.Kt, nslice(c))
	})
	r.Register("Multipole", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewMultipole(c.Multipole, c.KNormal, c.KSkew)
	})
	r.Register("NonlinearLens", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewNonlinearLens(c.Knll, c.Cnll)
	})
	r.Register("PRot", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewPRot(c.PhiIn, c.PhiOut)
	})
	r.Register("DipEdge", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewDipEdge(c.Psi, c.Rc, c.G, c.K2)
	})
	r.Register("Sbend", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewSbend(c.Ds, c.Rc, nslice(c))
	})
	r.Register("ShortRF", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewShortRF(c.V, c.K)
	})
	r.Register("ChrAcc", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewChrAcc(c.Ds, c.Ez, nslice(c))
	})
	r.Register("Sol", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewSol(c.Ds, c.Ks, elements.Unit(c.Units), nslice(c))
	})
	r.Register("SoftSolenoid", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewSoftSolenoid(c.Ds, c.Bscale, profile(c), elements.Unit(c.Units), mapSteps(c), nslice(c))
	})
	r.Register("SoftQuadrupole", func(c config.ElementConfig) (elements.Element, error) {
		m, err := integrators.ParseMethod(c.Method)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", elements.ErrInvalidParameter, err)
		}
		return elements.NewSoftQuadrupole(c.Ds, c.Gscale, profile(c), elements.Unit(c.Units), m, mapSteps(c), nslice(c))
	})
	r.Register("RFCavity", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewRFCavity(c.Ds, c.Escale, c.Freq, c.Phase, profile(c), mapSteps(c), nslice(c))
	})
	r.Register("BeamMonitor", func(c config.ElementConfig) (elements.Element, error) {
		return elements.NewBeamMonitor(c.Name, nil), nil
	})

	return r
}

// Register adds or replaces the constructor for a type name.
func (r *Registry) Register(name string, fn Constructor) {
	r.constructors[name] = fn
}

// New builds a single element.
func (r *Registry) New(cfg config.ElementConfig) (elements.Element, error) {
	fn, ok := r.constructors[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownElement, cfg.Type)
	}
	return fn(cfg)
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func nslice(c config.ElementConfig) int {
	if c.NSlice == 0 {
		return 1
	}
	return c.NSlice
}

func mapSteps(c config.ElementConfig) int {
	if c.MapSteps == 0 {
		return 1
	}
	return c.MapSteps
}

func profile(c config.ElementConfig) elements.FieldProfile {
	if c.Profile == nil {
		return elements.BellProfile()
	}
	return *c.Profile
}
