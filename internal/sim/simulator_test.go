package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/compute"
	"github.com/san-kum/beamsim/internal/constants"
	"github.com/san-kum/beamsim/internal/elements"
)

func proton(kineticMeV float64) beam.RefPart {
	ref := beam.NewRefPart()
	ref.SetChargeQe(1).SetMassMeV(constants.ProtonMassMeV).SetEnergyMeV(kineticMeV)
	return ref
}

func testBeam(n int) *beam.Ensemble {
	ens := beam.NewEnsemble(proton(1000), n)
	for i := range ens.Particles {
		f := float64(i+1) / float64(n)
		ens.Particles[i].X = 1e-3 * f
		ens.Particles[i].Px = -2e-4 * f
		ens.Particles[i].Y = -5e-4 * f
		ens.Particles[i].Py = 1e-4 * f
		ens.Particles[i].Pt = 1e-3 * f
	}
	return ens
}

func mustElement[T elements.Element](el T, err error) elements.Element {
	if err != nil {
		panic(err)
	}
	return el
}

type countingRecorder struct {
	steps   []int
	flushes int
	err     error
}

func (r *countingRecorder) Record(_ string, step int, _ beam.RefPart, _ []beam.Particle) error {
	r.steps = append(r.steps, step)
	return nil
}

func (r *countingRecorder) Flush() error {
	r.flushes++
	return r.err
}

type countingSpaceCharge struct {
	calls int
	ds    []float64
}

func (s *countingSpaceCharge) Kick(_ beam.Container, ds float64) {
	s.calls++
	s.ds = append(s.ds, ds)
}

func TestTrackerDrift(t *testing.T) {
	ens := testBeam(5)
	before := ens.Clone()

	tr := New([]elements.Element{mustElement(elements.NewDrift(1.0, 3))})
	tr.Backend = compute.NewSerialBackend()
	result, err := tr.Run(context.Background(), ens, Config{Periods: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if ens.Ref.S != 1.0 {
		t.Errorf("expected s = 1, got %v", ens.Ref.S)
	}
	if ens.Ref.SEdge != 0 {
		t.Errorf("expected element entrance at 0, got %v", ens.Ref.SEdge)
	}
	for i := range ens.Particles {
		p, q := ens.Particles[i], before.Particles[i]
		if p.Px != q.Px || p.Py != q.Py || p.Pt != q.Pt {
			t.Errorf("particle %d: momenta changed", i)
		}
		if math.Abs(p.X-(q.X+q.Px)) > 1e-15 {
			t.Errorf("particle %d: x = %v, want %v", i, p.X, q.X+q.Px)
		}
	}

	if len(result.History) != 2 {
		t.Errorf("expected 2 history entries, got %d", len(result.History))
	}
	if result.Steps != 3 {
		t.Errorf("expected 3 steps, got %d", result.Steps)
	}
	if result.Final().S != 1.0 {
		t.Errorf("expected final s = 1, got %v", result.Final().S)
	}
}

func TestTrackerDrift2GeVProtons(t *testing.T) {
	ref := beam.NewRefPart()
	ref.SetChargeQe(1).SetMassMeV(constants.ProtonMassMeV).SetEnergyMeV(2000)
	ens := beam.NewEnsemble(ref, 4)
	for i := range ens.Particles {
		f := float64(i + 1)
		ens.Particles[i].X = 1e-3 * f
		ens.Particles[i].Px = 3e-4 * f
		ens.Particles[i].Y = -2e-3 * f
		ens.Particles[i].Py = -1e-4 * f
		ens.Particles[i].Pt = 5e-4 * f
	}
	before := ens.Clone()

	tr := New([]elements.Element{mustElement(elements.NewDrift(1.0, 1))})
	tr.Backend = compute.NewSerialBackend()
	if _, err := tr.Run(context.Background(), ens, Config{Periods: 1}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if ens.Ref.S != before.Ref.S+1.0 {
		t.Errorf("s = %v, want %v", ens.Ref.S, before.Ref.S+1.0)
	}
	if ens.Ref.Pt != before.Ref.Pt {
		t.Errorf("reference pt changed: %v -> %v", before.Ref.Pt, ens.Ref.Pt)
	}
	for i := range ens.Particles {
		p, q := ens.Particles[i], before.Particles[i]
		if p.Px != q.Px || p.Py != q.Py || p.Pt != q.Pt {
			t.Errorf("particle %d: momenta changed from %+v to %+v", i, q, p)
		}
	}
}

func TestTrackerPeriods(t *testing.T) {
	ens := testBeam(10)
	lattice := []elements.Element{
		mustElement(elements.NewQuad(0.2, 2.0, elements.UnitMADX, 2)),
		mustElement(elements.NewDrift(0.8, 1)),
		mustElement(elements.NewMultipole(3, 0.5, 0)),
	}

	tr := New(lattice)
	result, err := tr.Run(context.Background(), ens, Config{Periods: 4})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Periods != 4 {
		t.Errorf("expected 4 periods, got %d", result.Periods)
	}
	if result.Steps != 4*4 {
		t.Errorf("expected 16 steps, got %d", result.Steps)
	}
	if len(result.History) != 1+4*3 {
		t.Errorf("expected 13 history entries, got %d", len(result.History))
	}
	if len(result.Centroids.X) != 4 || len(result.Centroids.Y) != 4 || len(result.Centroids.T) != 4 {
		t.Errorf("expected one centroid per period, got %d", len(result.Centroids.X))
	}
	if math.Abs(ens.Ref.S-4.0) > 1e-12 {
		t.Errorf("expected s = 4, got %v", ens.Ref.S)
	}
	mean, _ := ens.MeanAndStdPositions()
	if result.Centroids.X[3] != mean[0] {
		t.Errorf("last centroid %v, want %v", result.Centroids.X[3], mean[0])
	}
}

func TestTrackerSliceDiagnostics(t *testing.T) {
	lattice := []elements.Element{
		mustElement(elements.NewDrift(1.0, 4)),
		mustElement(elements.NewMultipole(2, 0.1, 0)),
	}
	result, err := New(lattice).Run(context.Background(), testBeam(3), Config{Periods: 1, SliceDiagnostics: true})
	if err != nil {
		t.Fatal(err)
	}
	// initial + three interior slices + two element exits
	if len(result.History) != 6 {
		t.Fatalf("expected 6 history entries, got %d", len(result.History))
	}
	for i, want := range []float64{0, 0.25, 0.5, 0.75, 1, 1} {
		if math.Abs(result.History[i].S-want) > 1e-15 {
			t.Errorf("history[%d].S = %v, want %v", i, result.History[i].S, want)
		}
	}
}

func TestTrackerSpaceChargeOnThickSlices(t *testing.T) {
	sc := &countingSpaceCharge{}
	tr := New([]elements.Element{
		mustElement(elements.NewDrift(1.0, 4)),
		mustElement(elements.NewShortRF(0.1, 2)),
		mustElement(elements.NewChrDrift(0.5, 1)),
	})
	tr.SpaceCharge = sc

	if _, err := tr.Run(context.Background(), testBeam(2), Config{Periods: 2}); err != nil {
		t.Fatal(err)
	}
	if sc.calls != 2*5 {
		t.Errorf("expected 10 kicks, got %d", sc.calls)
	}
	if sc.ds[0] != 0.25 || sc.ds[4] != 0.5 {
		t.Errorf("unexpected slice lengths %v", sc.ds)
	}
}

func TestTrackerFinalizesSharedMonitorOnce(t *testing.T) {
	rec := &countingRecorder{}
	mon := elements.NewBeamMonitor("monitor", rec)
	lattice := []elements.Element{
		mon,
		mustElement(elements.NewDrift(0.5, 2)),
		mon,
	}

	_, err := New(lattice).Run(context.Background(), testBeam(4), Config{Periods: 3})
	if err != nil {
		t.Fatal(err)
	}
	if rec.flushes != 1 {
		t.Errorf("expected one flush, got %d", rec.flushes)
	}
	if mon.Passes() != 6 {
		t.Errorf("expected 6 passes, got %d", mon.Passes())
	}
	want := []int{0, 3, 4, 7, 8, 11}
	if len(rec.steps) != len(want) {
		t.Fatalf("expected steps %v, got %v", want, rec.steps)
	}
	for i := range want {
		if rec.steps[i] != want[i] {
			t.Errorf("expected steps %v, got %v", want, rec.steps)
			break
		}
	}
}

func TestTrackerFinalizeError(t *testing.T) {
	flushErr := errors.New("disk full")
	rec := &countingRecorder{err: flushErr}
	lattice := []elements.Element{
		mustElement(elements.NewDrift(0.5, 1)),
		elements.NewBeamMonitor("exit", rec),
	}

	result, err := New(lattice).Run(context.Background(), testBeam(2), Config{Periods: 1})
	if result == nil {
		t.Fatal("expected a result alongside the error")
	}
	if !errors.Is(err, flushErr) {
		t.Fatalf("expected flush error, got %v", err)
	}
	var te *TrackingError
	if !errors.As(err, &te) {
		t.Fatalf("expected TrackingError, got %T", err)
	}
	if te.Name != "exit" || te.Element != 1 {
		t.Errorf("unexpected position %+v", te)
	}
}

func TestTrackerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &countingRecorder{}
	lattice := []elements.Element{
		mustElement(elements.NewDrift(1.0, 1)),
		elements.NewBeamMonitor("m", rec),
	}
	ens := testBeam(2)
	result, err := New(lattice).Run(ctx, ens, Config{Periods: 10})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var te *TrackingError
	if !errors.As(err, &te) || te.Period != 0 || te.Element != 0 {
		t.Errorf("unexpected tracking error %v", err)
	}
	if result.Periods != 0 || ens.Ref.S != 0 {
		t.Errorf("expected no tracking after cancel")
	}
	if rec.flushes != 1 {
		t.Errorf("expected monitors finalized after cancel, got %d flushes", rec.flushes)
	}
}

func TestTrackerCancelMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := New([]elements.Element{mustElement(elements.NewDrift(1.0, 1))})
	tr.AddObserver(ObserverFunc(func(period, _ int, _ elements.Element, _ beam.Container) {
		if period == 2 {
			cancel()
		}
	}))

	ens := testBeam(1)
	result, err := tr.Run(ctx, ens, Config{Periods: 100})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.Periods != 3 || ens.Ref.S != 3 {
		t.Errorf("expected 3 periods, got %d at s=%v", result.Periods, ens.Ref.S)
	}
}

func TestTrackerDropsLostParticles(t *testing.T) {
	kill := &elements.Programmable{
		Label: "aperture",
		Particle: func(p *beam.Particle, _ *beam.RefPart) {
			if math.Abs(p.X) > 5e-4 {
				p.X = math.NaN()
			}
		},
	}
	ens := testBeam(10)
	result, err := New([]elements.Element{kill}).Run(context.Background(), ens, Config{Periods: 1})
	if err != nil {
		t.Fatal(err)
	}
	if result.Lost != 5 || ens.Len() != 5 {
		t.Errorf("expected 5 lost and 5 kept, got %d and %d", result.Lost, ens.Len())
	}
	if result.Final().N != 5 {
		t.Errorf("expected diagnostics on the survivors, got N=%d", result.Final().N)
	}
}

func TestTrackerValidation(t *testing.T) {
	drift := []elements.Element{mustElement(elements.NewDrift(1.0, 1))}

	tests := []struct {
		name    string
		lattice []elements.Element
		beam    beam.Container
		periods int
		wrapped error
	}{
		{"no beam", drift, nil, 1, nil},
		{"zero periods", drift, testBeam(1), 0, nil},
		{"empty lattice", nil, testBeam(1), 1, nil},
		{"zero mass", drift, beam.NewEnsemble(beam.NewRefPart(), 1), 1, beam.ErrZeroMass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.lattice).Run(context.Background(), tt.beam, Config{Periods: tt.periods})
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if tt.wrapped != nil && !errors.Is(err, tt.wrapped) {
				t.Errorf("expected %v, got %v", tt.wrapped, err)
			}
		})
	}
}

func TestTrackingErrorMessage(t *testing.T) {
	err := &TrackingError{Period: 2, Element: 5, Name: "ChrQuad", S: 1.5, Wrapped: errors.New("boom")}
	want := "period 2, element 5 (ChrQuad) at s=1.5 m: boom"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
