package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/simplot/internal/series"
)

// Store persists observed runs as directories under baseDir, each holding
// metadata.json and samples.csv.
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
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Variables []string  `json:"variables"`
	Timestamp time.Time `json:"timestamp"`
	Steps     int       `json:"steps"`
}

// Save writes a run directory for the accumulated samples and returns the
// run id.
func (s *Store) Save(title string, samples *series.Set) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Title:     title,
		Variables: samples.Names(),
		Timestamp: time.Now(),
		Steps:     samples.Len(),
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := append([]string{"time"}, samples.Names()...)
	if err := w.Write(header); err != nil {
		return "", err
	}

	full := samples.Window(0)
	for i, t := range full.Times {
		row := []string{strconv.FormatInt(t, 10)}
		for _, name := range samples.Names() {
			row = append(row, strconv.FormatFloat(full.Values[name][i], 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
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

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSeries rebuilds the sample set of a stored run.
func (s *Store) LoadSeries(runID string) (*series.Set, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: run %s has no sample header", runID)
	}

	names := records[0][1:]
	set := series.NewSet(names)

	for _, record := range records[1:] {
		if len(record) != len(names)+1 {
			return nil, fmt.Errorf("storage: run %s has a malformed sample row", runID)
		}
		t, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, err
		}
		values := make([]float64, len(names))
		for i, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		if err := set.Append(t, values); err != nil {
			return nil, err
		}
	}

	return set, nil
}
