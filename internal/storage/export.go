package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/pysic/internal/md"
)

type ExportData struct {
	Name        string             `json:"name"`
	Integrator  string             `json:"integrator"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	Symbols     []string           `json:"symbols"`
	Times       []float64          `json:"times"`
	Energies    []float64          `json:"energies"`
	States      [][]float64        `json:"states"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

func NewExportData(meta RunMetadata, symbols []string, result *md.Result) ExportData {
	data := ExportData{
		Name:        meta.Name,
		Integrator:  meta.Integrator,
		Dt:          meta.Dt,
		Steps:       result.StepsTaken,
		Symbols:     symbols,
		Times:       result.Times,
		Energies:    result.Energies,
		States:      make([][]float64, len(result.States)),
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	return data
}

func ExportJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, data ExportData) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return ExportJSON(file, data)
}

// Export rebuilds the export document of a stored run from its files.
func (s *Store) Export(runID string) (ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return ExportData{}, err
	}
	frames, err := s.LoadTrajectory(runID)
	if err != nil {
		return ExportData{}, err
	}
	_, energies, err := s.LoadEnergies(runID)
	if err != nil {
		return ExportData{}, err
	}

	res := &md.Result{
		Energies:    energies,
		EnergyDrift: meta.EnergyDrift,
		Metrics:     meta.Metrics,
		StepsTaken:  meta.StepsTaken,
	}
	var symbols []string
	for _, f := range frames {
		symbols = f.Symbols
		res.Times = append(res.Times, f.Time)
		res.States = append(res.States, FrameState(f))
	}
	return NewExportData(*meta, symbols, res), nil
}

// FrameState packs a frame back into an md state.
func FrameState(f Frame) md.State {
	n := len(f.Positions)
	x := make(md.State, 6*n)
	for i := 0; i < n; i++ {
		copy(x[3*i:3*i+3], f.Positions[i][:])
		copy(x[3*n+3*i:3*n+3*i+3], f.Velocities[i][:])
	}
	return x
}
