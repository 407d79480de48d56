package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/pysic/internal/config"
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/md"
)

const (
	metadataFile   = "metadata.json"
	energiesFile   = "energies.csv"
	trajectoryFile = "trajectory.xyz"
	configFile     = "config.yaml"
)

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	StepsTaken  int                `json:"steps_taken"`
	Integrator  string             `json:"integrator"`
	Atoms       int                `json:"atoms"`
	Frames      int                `json:"frames"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Run is what Save persists. Atoms supplies symbols and the cell for the
// trajectory; the states come from Result.
type Run struct {
	Config *config.Config
	Atoms  *geometry.Atoms
	Result *md.Result
}

func newRunID(name string) string {
	return fmt.Sprintf("%s_%d_%s", name, time.Now().Unix(), uuid.NewString()[:8])
}

func (s *Store) Save(run Run) (string, error) {
	if run.Config == nil || run.Atoms == nil || run.Result == nil {
		return "", fmt.Errorf("run needs a config, atoms and a result")
	}
	cfg, res := run.Config, run.Result
	runID := newRunID(cfg.Name)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        cfg.Name,
		Timestamp:   time.Now(),
		Seed:        cfg.Structure.Seed,
		Dt:          cfg.MD.Dt,
		Steps:       cfg.MD.Steps,
		StepsTaken:  res.StepsTaken,
		Integrator:  cfg.MD.Integrator,
		Atoms:       run.Atoms.Len(),
		Frames:      len(res.States),
		EnergyDrift: res.EnergyDrift,
		Metrics:     res.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	if err := writeEnergies(filepath.Join(runDir, energiesFile), res); err != nil {
		return "", err
	}
	if err := writeTrajectoryFile(filepath.Join(runDir, trajectoryFile), run.Atoms, res); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeEnergies(path string, res *md.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time_fs", "energy_ev"}); err != nil {
		return err
	}
	for i, e := range res.Energies {
		row := []string{
			strconv.FormatFloat(res.Times[i], 'f', 6, 64),
			strconv.FormatFloat(e, 'g', 12, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeTrajectoryFile(path string, atoms *geometry.Atoms, res *md.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteTrajectory(f, atoms, res.States, res.Times)
}

// List returns all runs, newest first. Directories without readable
// metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
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

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// LoadEnergies returns the sampled times (fs) and total energies (eV).
func (s *Store) LoadEnergies(runID string) ([]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, energiesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	energies := make([]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", energiesFile, i+2, err)
		}
		e, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", energiesFile, i+2, err)
		}
		times = append(times, t)
		energies = append(energies, e)
	}

	return times, energies, nil
}

func (s *Store) LoadTrajectory(runID string) ([]Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadTrajectory(file)
}
