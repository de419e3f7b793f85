// Package storage persists simulation runs: one directory per run holding
// metadata.json and a trajectories.csv with one row per particle per
// checkpoint.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Eisbrenner/parcels/internal/particle"
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
	ID             string    `json:"id"`
	Flow           string    `json:"flow"`
	Kernel         string    `json:"kernel"`
	Timestamp      time.Time `json:"timestamp"`
	Dt             float64   `json:"dt"`
	Runtime        float64   `json:"runtime"`
	OutputInterval float64   `json:"output_interval"`
	NumParticles   int       `json:"num_particles"`
}

// Begin opens a run directory and returns a writer that streams checkpoint
// rows into it. The metadata is written on Close so the record reflects the
// finished run.
func (s *Store) Begin(meta RunMetadata) (*RunWriter, error) {
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Flow, time.Now().Unix())
	}
	meta.Timestamp = time.Now()
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(filepath.Join(runDir, "trajectories.csv"))
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "id", "lon", "lat", "depth", "state"}); err != nil {
		f.Close()
		return nil, err
	}
	return &RunWriter{store: s, meta: meta, file: f, csv: w}, nil
}

// RunWriter streams ensemble checkpoints to disk. It satisfies the
// execution loop's output contract.
type RunWriter struct {
	store *Store
	meta  RunMetadata
	file  *os.File
	csv   *csv.Writer
}

func (w *RunWriter) ID() string { return w.meta.ID }

func (w *RunWriter) Write(t float64, ps []*particle.Particle) error {
	for _, p := range ps {
		row := []string{
			strconv.FormatFloat(t, 'f', 6, 64),
			strconv.Itoa(p.ID),
			strconv.FormatFloat(p.Lon, 'f', 6, 64),
			strconv.FormatFloat(p.Lat, 'f', 6, 64),
			strconv.FormatFloat(p.Depth, 'f', 6, 64),
			p.State.String(),
		}
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	w.csv.Flush()
	return w.csv.Error()
}

// Close flushes the trajectory file and writes the run metadata.
func (w *RunWriter) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return err
	}
	if err := w.file.Close(); err != nil {
		return err
	}
	metaPath := filepath.Join(w.store.baseDir, w.meta.ID, "metadata.json")
	f, err := os.Create(metaPath)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(w.meta)
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
		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// TrajectoryPoint is one particle observation read back from a run.
type TrajectoryPoint struct {
	Time  float64
	Lon   float64
	Lat   float64
	Depth float64
	State string
}

// LoadTrajectories reads a run back as per-particle time series keyed by
// particle ID.
func (s *Store) LoadTrajectories(runID string) (map[int][]TrajectoryPoint, error) {
	csvPath := filepath.Join(s.baseDir, runID, "trajectories.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	trajs := make(map[int][]TrajectoryPoint)
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 6 {
			continue
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			continue
		}
		id, err := strconv.Atoi(rec[1])
		if err != nil {
			continue
		}
		lon, _ := strconv.ParseFloat(rec[2], 64)
		lat, _ := strconv.ParseFloat(rec[3], 64)
		depth, _ := strconv.ParseFloat(rec[4], 64)
		trajs[id] = append(trajs[id], TrajectoryPoint{Time: t, Lon: lon, Lat: lat, Depth: depth, State: rec[5]})
	}
	return trajs, nil
}
