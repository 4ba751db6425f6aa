package storage

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/san-kum/beamsim/internal/beam"
)

var monitorHeader = []string{"step", "s", "gamma", "id", "x", "px", "y", "py", "t", "pt"}

func monitorFile(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	return "monitor_" + safe + ".csv"
}

// MonitorWriter dumps every particle of every monitor pass as one CSV row.
// The file is opened on the first Record and closed by Flush; a Record
// after Flush appends to it.
type MonitorWriter struct {
	path string

	mu      sync.Mutex
	f       *os.File
	w       *csv.Writer
	started bool
}

func NewMonitorWriter(path string) *MonitorWriter {
	return &MonitorWriter{path: path}
}

func (m *MonitorWriter) open() error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if m.started {
		flags = os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(m.path, flags, 0644)
	if err != nil {
		return err
	}
	m.f = f
	m.w = csv.NewWriter(f)
	if !m.started {
		m.started = true
		return m.w.Write(monitorHeader)
	}
	return nil
}

func (m *MonitorWriter) Record(_ string, step int, ref beam.RefPart, particles []beam.Particle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.w == nil {
		if err := m.open(); err != nil {
			return err
		}
	}

	prefix := []string{strconv.Itoa(step), formatFloat(ref.S), formatFloat(ref.Gamma())}
	rec := make([]string, len(monitorHeader))
	copy(rec, prefix)
	for i := range particles {
		p := &particles[i]
		rec[3] = strconv.FormatUint(p.ID, 10)
		for j, v := range p.Vector() {
			rec[4+j] = formatFloat(v)
		}
		if err := m.w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func (m *MonitorWriter) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.w == nil {
		return nil
	}
	m.w.Flush()
	err := errors.Join(m.w.Error(), m.f.Close())
	m.f, m.w = nil, nil
	return err
}

// Snapshot is the beam at one monitor pass.
type Snapshot struct {
	Step      int
	S         float64
	Gamma     float64
	Particles []beam.Particle
}

// LoadMonitor returns the passes recorded by the named monitor in step
// order.
func (s *Store) LoadMonitor(runID, name string) ([]Snapshot, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, monitorFile(name)))
	if err != nil {
		return nil, err
	}

	var snaps []Snapshot
	for _, rec := range records {
		v, err := parseRow(rec, len(monitorHeader))
		if err != nil {
			return nil, err
		}
		step := int(v[0])
		if len(snaps) == 0 || snaps[len(snaps)-1].Step != step {
			snaps = append(snaps, Snapshot{Step: step, S: v[1], Gamma: v[2]})
		}
		last := &snaps[len(snaps)-1]
		var p beam.Particle
		p.ID = uint64(v[3])
		p.SetVector([6]float64{v[4], v[5], v[6], v[7], v[8], v[9]})
		last.Particles = append(last.Particles, p)
	}
	return snaps, nil
}
