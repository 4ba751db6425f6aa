package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/beamsim/internal/diagnostics"
	"github.com/san-kum/beamsim/internal/sim"
)

type ExportData struct {
	Run       RunMetadata           `json:"run"`
	History   []diagnostics.Reduced `json:"history"`
	Centroids sim.Centroids         `json:"centroids"`
}

// Export collects everything stored for a run except the monitor dumps.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	history, err := s.LoadHistory(runID)
	if err != nil {
		return nil, err
	}
	centroids, err := s.LoadCentroids(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Run: *meta, History: history, Centroids: centroids}, nil
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, data)
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
