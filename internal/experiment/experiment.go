// Package experiment wires a lattice file into a ready-to-run tracker.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/compute"
	"github.com/san-kum/beamsim/internal/config"
	"github.com/san-kum/beamsim/internal/diagnostics"
	"github.com/san-kum/beamsim/internal/distribution"
	"github.com/san-kum/beamsim/internal/lattice"
	"github.com/san-kum/beamsim/internal/metrics"
	"github.com/san-kum/beamsim/internal/sim"
)

var ErrNotSetup = errors.New("experiment: not set up")

type Experiment struct {
	cfg      *config.Config
	registry *lattice.Registry
	tracker  *sim.Tracker
	beam     *beam.Ensemble
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg, registry: lattice.NewRegistry()}
}

// Reference returns the reference particle described by the beam section.
func Reference(b config.BeamConfig) beam.RefPart {
	ref := beam.NewRefPart()
	ref.SetChargeQe(b.ChargeQe).SetMassMeV(b.MassMeV).SetEnergyMeV(b.KineticMeV)
	return ref
}

// Setup validates the configuration, builds the lattice and samples the
// initial beam. sink may be nil.
func (e *Experiment) Setup(sink lattice.SinkFunc, logger *slog.Logger) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	dist, err := distribution.New(e.cfg.Beam.Distribution, e.cfg.Beam.Moments)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	backend := compute.ByName(e.cfg.Backend)
	if backend == nil {
		return fmt.Errorf("%w: unknown backend %q", config.ErrInvalidConfig, e.cfg.Backend)
	}
	els, err := e.registry.Build(e.cfg.Lattice, sink)
	if err != nil {
		return err
	}

	e.beam = distribution.Generate(dist, Reference(e.cfg.Beam), e.cfg.Beam.Particles, e.cfg.Seed)
	e.tracker = &sim.Tracker{Lattice: els, Backend: backend, Logger: logger}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.tracker == nil {
		return nil, ErrNotSetup
	}
	return e.tracker.Run(ctx, e.beam, sim.Config{
		Periods:          e.cfg.Periods,
		SliceDiagnostics: e.cfg.SliceDiagnostics,
	})
}

// Tracker returns the underlying tracker for adding observers.
func (e *Experiment) Tracker() *sim.Tracker { return e.tracker }

// Beam returns the tracked ensemble.
func (e *Experiment) Beam() *beam.Ensemble { return e.beam }

func (e *Experiment) Config() *config.Config { return e.cfg }

// Metrics evaluates the default figures of merit over the moment history
// and adds tune_x and tune_y when the run has enough periods for a
// spectrum.
func Metrics(result *sim.Result) map[string]float64 {
	out := metrics.Evaluate(result.History, metrics.Defaults()...)
	for k, data := range map[string][]float64{"tune_x": result.Centroids.X, "tune_y": result.Centroids.Y} {
		if q, err := diagnostics.Tune(data); err == nil {
			out[k] = q
		}
	}
	return out
}
