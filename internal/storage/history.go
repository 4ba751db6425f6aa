package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/san-kum/beamsim/internal/diagnostics"
)

var ErrUnknownField = errors.New("storage: unknown history field")

var planeColumns = []string{"mean", "mean_p", "sigma", "sigma_p", "emittance", "alpha", "beta", "min", "max"}

func historyHeader() []string {
	h := []string{"s", "gamma", "n"}
	for _, plane := range []string{"x", "y", "t"} {
		for _, col := range planeColumns {
			h = append(h, plane+"_"+col)
		}
	}
	return h
}

func historyRow(r diagnostics.Reduced) []float64 {
	row := []float64{r.S, r.Gamma, float64(r.N)}
	for k, p := range []diagnostics.Plane{r.X, r.Y, r.T} {
		row = append(row, p.Mean, p.MeanP, p.Sigma, p.SigmaP, p.Emittance, p.Alpha, p.Beta, r.Min[k], r.Max[k])
	}
	return row
}

func parseHistoryRow(v []float64) diagnostics.Reduced {
	r := diagnostics.Reduced{S: v[0], Gamma: v[1], N: int(v[2])}
	planes := []*diagnostics.Plane{&r.X, &r.Y, &r.T}
	for k, p := range planes {
		c := v[3+k*len(planeColumns):]
		*p = diagnostics.Plane{
			Mean:      c[0],
			MeanP:     c[1],
			Sigma:     c[2],
			SigmaP:    c[3],
			Emittance: c[4],
			Alpha:     c[5],
			Beta:      c[6],
		}
		r.Min[k], r.Max[k] = c[7], c[8]
	}
	return r
}

func writeHistory(path string, history []diagnostics.Reduced) error {
	return writeCSV(path, historyHeader(), len(history), func(i int) []float64 {
		return historyRow(history[i])
	})
}

// LoadHistory returns the beam moments recorded along the lattice.
func (s *Store) LoadHistory(runID string) ([]diagnostics.Reduced, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, historyFile))
	if err != nil {
		return nil, err
	}

	width := len(historyHeader())
	history := make([]diagnostics.Reduced, 0, len(records))
	for _, rec := range records {
		v, err := parseRow(rec, width)
		if err != nil {
			return nil, err
		}
		history = append(history, parseHistoryRow(v))
	}
	return history, nil
}

// HistoryColumns lists the fields accepted by HistoryColumn.
func HistoryColumns() []string {
	return historyHeader()
}

// HistoryColumn extracts one field, such as "x_sigma", from history.
func HistoryColumn(history []diagnostics.Reduced, field string) ([]float64, error) {
	idx := slices.Index(historyHeader(), field)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	out := make([]float64, len(history))
	for i, r := range history {
		out[i] = historyRow(r)[idx]
	}
	return out, nil
}
