// Package storage keeps tracking runs on disk. Each run is a directory
// holding metadata.json, history.csv, centroids.csv, the lattice deck and
// one CSV dump per beam monitor.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/san-kum/beamsim/internal/config"
	"github.com/san-kum/beamsim/internal/diagnostics"
	"github.com/san-kum/beamsim/internal/elements"
	"github.com/san-kum/beamsim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	historyFile   = "history.csv"
	centroidsFile = "centroids.csv"
	latticeFile   = "lattice.yaml"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Timestamp    time.Time           `json:"timestamp"`
	Seed         uint64              `json:"seed"`
	Species      string              `json:"species"`
	MassMeV      float64             `json:"mass_mev"`
	ChargeQe     float64             `json:"charge_qe"`
	KineticMeV   float64             `json:"kinetic_mev"`
	Distribution string              `json:"distribution"`
	Particles    int                 `json:"particles"`
	Periods      int                 `json:"periods"`
	Elements     int                 `json:"elements"`
	Backend      string              `json:"backend"`
	Steps        int                 `json:"steps"`
	Lost         int                 `json:"lost"`
	Monitors     []string            `json:"monitors,omitempty"`
	Final        diagnostics.Reduced `json:"final"`
	Metrics      map[string]float64  `json:"metrics,omitempty"`
}

// Run is an open run directory. Its Sink method hands out monitor
// recorders; Save writes the summary files once tracking is done.
type Run struct {
	ID  string
	Dir string

	mu       sync.Mutex
	monitors map[string]*MonitorWriter
}

// Create makes a new run directory named after the lattice.
func (s *Store) Create(name string) (*Run, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	base := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	id := base
	for i := 1; ; i++ {
		err := os.Mkdir(filepath.Join(s.baseDir, id), 0755)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
		id = fmt.Sprintf("%s-%d", base, i)
	}
	return &Run{ID: id, Dir: filepath.Join(s.baseDir, id), monitors: make(map[string]*MonitorWriter)}, nil
}

// Sink returns the recorder for the named monitor, creating it on first
// use. It has the signature of lattice.SinkFunc.
func (r *Run) Sink(name string) elements.Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.monitors[name]; ok {
		return w
	}
	w := NewMonitorWriter(filepath.Join(r.Dir, monitorFile(name)))
	r.monitors[name] = w
	return w
}

// Save writes the run summary. metrics may be nil.
func (r *Run) Save(cfg *config.Config, result *sim.Result, metrics map[string]float64) error {
	r.mu.Lock()
	monitors := make([]string, 0, len(r.monitors))
	for name := range r.monitors {
		monitors = append(monitors, name)
	}
	r.mu.Unlock()
	slices.Sort(monitors)

	meta := RunMetadata{
		ID:           r.ID,
		Name:         cfg.Name,
		Timestamp:    time.Now(),
		Seed:         cfg.Seed,
		Species:      cfg.Beam.Species,
		MassMeV:      cfg.Beam.MassMeV,
		ChargeQe:     cfg.Beam.ChargeQe,
		KineticMeV:   cfg.Beam.KineticMeV,
		Distribution: cfg.Beam.Distribution,
		Particles:    cfg.Beam.Particles,
		Periods:      result.Periods,
		Elements:     len(cfg.Lattice),
		Backend:      cfg.Backend,
		Steps:        result.Steps,
		Lost:         result.Lost,
		Monitors:     monitors,
		Final:        result.Final(),
		Metrics:      metrics,
	}

	if err := writeJSON(filepath.Join(r.Dir, metadataFile), meta); err != nil {
		return err
	}
	if err := writeHistory(filepath.Join(r.Dir, historyFile), result.History); err != nil {
		return err
	}
	if err := writeCentroids(filepath.Join(r.Dir, centroidsFile), result.Centroids); err != nil {
		return err
	}
	return config.Save(filepath.Join(r.Dir, latticeFile), cfg)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadLattice returns the lattice deck the run was made with.
func (s *Store) LoadLattice(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, latticeFile))
}

func (s *Store) LoadCentroids(runID string) (sim.Centroids, error) {
	var c sim.Centroids
	records, err := readCSV(filepath.Join(s.baseDir, runID, centroidsFile))
	if err != nil {
		return c, err
	}
	for _, rec := range records {
		v, err := parseRow(rec, 4)
		if err != nil {
			return c, err
		}
		c.X = append(c.X, v[1])
		c.Y = append(c.Y, v[2])
		c.T = append(c.T, v[3])
	}
	return c, nil
}

func writeCentroids(path string, c sim.Centroids) error {
	return writeCSV(path, []string{"period", "x", "y", "t"}, len(c.X), func(i int) []float64 {
		return []float64{float64(i), c.X[i], c.Y[i], c.T[i]}
	})
}

func writeCSV(path string, header []string, n int, row func(i int) []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for i := 0; i < n; i++ {
		for j, v := range row(i) {
			rec[j] = formatFloat(v)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// readCSV returns the records of a CSV file without its header line.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

func parseRow(rec []string, want int) ([]float64, error) {
	if len(rec) != want {
		return nil, fmt.Errorf("storage: expected %d columns, got %d", want, len(rec))
	}
	v := make([]float64, len(rec))
	for i, s := range rec {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("storage: column %d: %w", i, err)
		}
		v[i] = f
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
