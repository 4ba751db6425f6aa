package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/compute"
	"github.com/san-kum/beamsim/internal/diagnostics"
	"github.com/san-kum/beamsim/internal/elements"
)

// Tracker pushes a beam through a lattice. Backend defaults to the active
// compute backend and Logger to slog.Default.
type Tracker struct {
	Lattice     []elements.Element
	Backend     compute.Backend
	SpaceCharge SpaceCharge
	Logger      *slog.Logger

	observers []Observer
}

func New(lattice []elements.Element) *Tracker {
	return &Tracker{Lattice: lattice}
}

func (t *Tracker) AddObserver(o Observer) { t.observers = append(t.observers, o) }

// Run tracks c through cfg.Periods repetitions of the lattice. Each element
// starts at the current s; every slice pushes the reference particle, then
// the beam, then applies space charge on thick slices. The container is
// redistributed after every element and the context is checked between
// elements. Elements that need finalizing are finalized once, at the end,
// even when the run is canceled.
func (t *Tracker) Run(ctx context.Context, c beam.Container, cfg Config) (*Result, error) {
	if err := t.validate(c, cfg); err != nil {
		return nil, err
	}

	backend := t.Backend
	if backend == nil {
		backend = compute.GetBackend()
	}
	log := t.Logger
	if log == nil {
		log = slog.Default().With("component", "tracker")
	}

	result := &Result{
		History: make([]diagnostics.Reduced, 0, cfg.Periods*len(t.Lattice)+1),
	}
	result.History = append(result.History, diagnostics.Compute(c))

	ref := c.RefParticle()
	step := 0
	var runErr error

track:
	for period := 0; period < cfg.Periods; period++ {
		for i, el := range t.Lattice {
			select {
			case <-ctx.Done():
				runErr = &TrackingError{Period: period, Element: i, Name: el.Name(), S: ref.S, Wrapped: ctx.Err()}
				break track
			default:
			}

			traits := el.Traits()
			ref.SEdge = ref.S
			for slice := 0; slice < traits.Slices; slice++ {
				elements.PushReference(el, ref)
				elements.Push(el, c, backend, step)
				if traits.Thick && t.SpaceCharge != nil {
					t.SpaceCharge.Kick(c, traits.Length/float64(traits.Slices))
				}
				step++
				if cfg.SliceDiagnostics && traits.Thick && slice < traits.Slices-1 {
					result.History = append(result.History, diagnostics.Compute(c))
				}
			}
			c.Redistribute()

			result.History = append(result.History, diagnostics.Compute(c))
			for _, o := range t.observers {
				o.OnElement(period, i, el, c)
			}
			log.Debug("element done", "period", period, "element", i, "name", el.Name(), "s", ref.S, "particles", c.Len())
		}

		mean, _ := c.MeanAndStdPositions()
		result.Centroids.X = append(result.Centroids.X, mean[0])
		result.Centroids.Y = append(result.Centroids.Y, mean[1])
		result.Centroids.T = append(result.Centroids.T, mean[2])
		result.Periods++
		log.Info("period done", "period", period, "s", ref.S, "gamma", ref.Gamma(), "particles", c.Len())
	}

	result.Steps = step
	if e, ok := c.(interface{ Lost() int }); ok {
		result.Lost = e.Lost()
	}

	if err := t.finalize(ref, result.Periods); err != nil {
		runErr = errors.Join(runErr, err)
	}
	return result, runErr
}

func (t *Tracker) validate(c beam.Container, cfg Config) error {
	if c == nil {
		return fmt.Errorf("%w: no beam", ErrInvalidConfig)
	}
	if cfg.Periods < 1 {
		return fmt.Errorf("%w: periods must be >= 1, got %d", ErrInvalidConfig, cfg.Periods)
	}
	if len(t.Lattice) == 0 {
		return fmt.Errorf("%w: empty lattice", ErrInvalidConfig)
	}
	if err := c.RefParticle().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// finalize calls Finalize once per distinct element, in lattice order.
func (t *Tracker) finalize(ref *beam.RefPart, periods int) error {
	seen := make(map[elements.Element]bool)
	var errs []error
	for i, el := range t.Lattice {
		if !el.Traits().NeedsFinalize || seen[el] {
			continue
		}
		seen[el] = true
		if err := elements.Finalize(el); err != nil {
			errs = append(errs, &TrackingError{Period: periods, Element: i, Name: el.Name(), S: ref.S, Wrapped: err})
		}
	}
	return errors.Join(errs...)
}
