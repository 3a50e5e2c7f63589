// Package storage persists collapse runs on disk: one directory per run with
// metadata.json and series.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/collapse/internal/collapse"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
)

var seriesHeader = []string{"t", "r_min", "M_bh", "M_bh_Msun", "mdot_bh"}

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
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Timestamp time.Time           `json:"timestamp"`
	Params    collapse.Params     `json:"params"`
	Steps     int                 `json:"steps"`
	Elapsed   time.Duration       `json:"elapsed_ns"`
	Events    []collapse.Trapping `json:"events,omitempty"`
	Metrics   map[string]float64  `json:"metrics"`
}

// Save writes a run and returns its id.
func (s *Store) Save(name string, p collapse.Params, elapsed time.Duration, series *collapse.Series) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: now,
		Params:    p,
		Steps:     series.Len(),
		Elapsed:   elapsed,
		Events:    series.Events,
		Metrics:   series.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, seriesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, series); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteCSV writes the series columns with a header row.
func WriteCSV(w io.Writer, series *collapse.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(seriesHeader); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i := 0; i < series.Len(); i++ {
		row := []string{
			format(series.T[i]),
			format(series.RMin[i]),
			format(series.MBH[i]),
			format(series.MBHMsun[i]),
			format(series.Mdot[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// List returns every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
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

// LoadSeries reads the stored series back. Metrics and events come from
// the run metadata.
func (s *Store) LoadSeries(runID string) (*collapse.Series, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(seriesHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	series := collapse.NewSeries(len(records))
	for i, record := range records {
		if i == 0 {
			continue
		}
		var vals [5]float64
		for j := range vals {
			vals[j], err = strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", seriesFile, i+1, err)
			}
		}
		series.Append(collapse.Snapshot{
			Step:            i - 1,
			Time:            vals[0],
			MinRadius:       vals[1],
			RemnantMass:     vals[2],
			RemnantMassMsun: vals[3],
			AccretionRate:   vals[4],
		})
	}

	series.Events = meta.Events
	if meta.Metrics != nil {
		series.Metrics = meta.Metrics
	}
	return series, nil
}

// CSVPath returns where the series of a run lives.
func (s *Store) CSVPath(runID string) string {
	return filepath.Join(s.baseDir, runID, seriesFile)
}
