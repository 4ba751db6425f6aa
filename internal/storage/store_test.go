package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/config"
	"github.com/san-kum/beamsim/internal/constants"
	"github.com/san-kum/beamsim/internal/elements"
	"github.com/san-kum/beamsim/internal/sim"
)

func trackedRun(t *testing.T, st *Store) (*Run, *config.Config, *sim.Result) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Name = "test"
	cfg.Seed = 42
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	run, err := st.Create(cfg.Name)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	ref := beam.NewRefPart()
	ref.SetChargeQe(1).SetMassMeV(constants.ProtonMassMeV).SetEnergyMeV(500)
	ens := beam.NewEnsemble(ref, 3)
	for i := range ens.Particles {
		ens.Particles[i].X = 1e-3 * float64(i)
		ens.Particles[i].Px = 1e-4
	}

	drift, err := elements.NewDrift(0.5, 2)
	if err != nil {
		t.Fatal(err)
	}
	mon := elements.NewBeamMonitor("screen", run.Sink("screen"))
	tr := sim.New([]elements.Element{mon, drift, mon})

	result, err := tr.Run(context.Background(), ens, sim.Config{Periods: 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if err := run.Save(cfg, result, map[string]float64{"tune_x": 0.25}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	return run, cfg, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	run, cfg, result := trackedRun(t, st)

	if run.ID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(run.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "test" {
		t.Errorf("expected name 'test', got '%s'", meta.Name)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Periods != 2 || meta.Steps != result.Steps {
		t.Errorf("unexpected periods/steps %d/%d", meta.Periods, meta.Steps)
	}
	if meta.Metrics["tune_x"] != 0.25 {
		t.Errorf("expected tune_x 0.25, got %f", meta.Metrics["tune_x"])
	}
	if !reflect.DeepEqual(meta.Monitors, []string{"screen"}) {
		t.Errorf("unexpected monitors %v", meta.Monitors)
	}
	if !reflect.DeepEqual(meta.Final, result.Final()) {
		t.Errorf("final moments differ:\n%+v\n%+v", meta.Final, result.Final())
	}

	history, err := st.LoadHistory(run.ID)
	if err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	if !reflect.DeepEqual(history, result.History) {
		t.Errorf("history does not round trip")
	}

	centroids, err := st.LoadCentroids(run.ID)
	if err != nil {
		t.Fatalf("load centroids failed: %v", err)
	}
	if !reflect.DeepEqual(centroids, result.Centroids) {
		t.Errorf("centroids do not round trip: %+v vs %+v", centroids, result.Centroids)
	}

	deck, err := st.LoadLattice(run.ID)
	if err != nil {
		t.Fatalf("load lattice failed: %v", err)
	}
	if !reflect.DeepEqual(deck, cfg) {
		t.Errorf("lattice deck does not round trip")
	}
}

func TestStoreMonitorDump(t *testing.T) {
	st := New(t.TempDir())
	run, _, _ := trackedRun(t, st)

	snaps, err := st.LoadMonitor(run.ID, "screen")
	if err != nil {
		t.Fatalf("load monitor failed: %v", err)
	}
	if len(snaps) != 4 {
		t.Fatalf("expected 4 passes, got %d", len(snaps))
	}
	wantSteps := []int{0, 3, 4, 7}
	wantS := []float64{0, 0.5, 0.5, 1.0}
	for i, snap := range snaps {
		if snap.Step != wantSteps[i] {
			t.Errorf("pass %d: step %d, want %d", i, snap.Step, wantSteps[i])
		}
		if snap.S != wantS[i] {
			t.Errorf("pass %d: s %v, want %v", i, snap.S, wantS[i])
		}
		if len(snap.Particles) != 3 {
			t.Errorf("pass %d: %d particles", i, len(snap.Particles))
		}
	}
	if snaps[0].Particles[2].ID != 3 || snaps[0].Particles[2].X != 2e-3 {
		t.Errorf("unexpected particle %+v", snaps[0].Particles[2])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	first, _, _ := trackedRun(t, st)
	second, _, _ := trackedRun(t, st)
	if first.ID == second.ID {
		t.Fatal("expected distinct run ids")
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	st := New(t.TempDir())
	run, _, _ := trackedRun(t, st)

	for _, name := range []string{"metadata.json", "history.csv", "centroids.csv", "lattice.yaml", "monitor_screen.csv"} {
		if _, err := os.Stat(filepath.Join(run.Dir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	run, _, result := trackedRun(t, st)

	data, err := st.Export(run.ID)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, data); err != nil {
		t.Fatalf("export json failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back ExportData
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(back.History) != len(result.History) || back.Run.ID != run.ID {
		t.Errorf("unexpected export %+v", back.Run)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, data); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), raw) {
		t.Error("file and writer exports differ")
	}
}

func TestMonitorFileName(t *testing.T) {
	tests := map[string]string{
		"screen":     "monitor_screen.csv",
		"../etc/bpm": "monitor____etc_bpm.csv",
		"bpm 1":      "monitor_bpm_1.csv",
	}
	for in, want := range tests {
		if got := monitorFile(in); got != want {
			t.Errorf("monitorFile(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHistoryColumn(t *testing.T) {
	st := New(t.TempDir())
	run, _, result := trackedRun(t, st)

	history, err := st.LoadHistory(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	s, err := HistoryColumn(history, "s")
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != len(result.History) || s[len(s)-1] != 1.0 {
		t.Errorf("unexpected s column %v", s)
	}

	sigma, err := HistoryColumn(history, "x_sigma")
	if err != nil {
		t.Fatal(err)
	}
	if sigma[0] != result.History[0].X.Sigma {
		t.Errorf("x_sigma %v, want %v", sigma[0], result.History[0].X.Sigma)
	}

	if _, err := HistoryColumn(history, "z_sigma"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}
