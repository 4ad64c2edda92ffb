package response

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// Hit is one particle striking a detector, expressed in the frame the
// external photon simulator expects: impact position in cm from the plate
// center, energy in eV, momentum components in eV/c.
type Hit struct {
	Species model.Species
	Energy  float64
	LocalX  float64
	LocalY  float64
	PX      float64
	PY      float64
	PZ      float64
}

// PhotonYielder produces the scintillation photon arrival times a single
// particle causes at the PMT cathode. An empty result without error is a
// normal outcome: a gamma can pass through the plate without interacting.
type PhotonYielder interface {
	PhotonTimes(ctx context.Context, hit Hit) ([]float64, error)
}

const (
	skiboxRunDir     = "RUN_1"
	skiboxOutputFile = "outpSD.csv"
	skiboxRunCount   = "1"
	skiboxDepth      = "-99889"
)

var skiboxSpeciesNames = map[model.Species]string{
	model.Gamma:     "gamma",
	model.Positron:  "e+",
	model.Electron:  "e-",
	model.MuonPlus:  "mu+",
	model.MuonMinus: "mu-",
}

// SkiboxYielder runs the external GEANT detector simulation binary once per
// particle and reads back the photon arrival times it writes. The binary
// leaves its output in a run directory under dir, which is removed after
// every call.
type SkiboxYielder struct {
	binary string
	dir    string
}

func NewSkiboxYielder(binary string, dir string) *SkiboxYielder {
	return &SkiboxYielder{binary: binary, dir: dir}
}

func (y *SkiboxYielder) PhotonTimes(ctx context.Context, hit Hit) ([]float64, error) {
	name, ok := skiboxSpeciesNames[hit.Species]
	if !ok {
		return nil, fmt.Errorf("no simulator particle name for species %d", hit.Species)
	}
	defer os.RemoveAll(filepath.Join(y.dir, skiboxRunDir))

	cmd := exec.CommandContext(
		ctx,
		y.binary,
		skiboxRunCount,
		name,
		formatArg(hit.Energy),
		formatArg(hit.LocalX),
		formatArg(hit.LocalY),
		skiboxDepth,
		formatArg(hit.PX),
		formatArg(hit.PY),
		formatArg(hit.PZ),
	)
	cmd.Dir = y.dir
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSimulationUnavailable, err)
	}
	return readPhotonTimes(filepath.Join(y.dir, skiboxRunDir, skiboxOutputFile))
}

// readPhotonTimes parses the arrival time column of the simulator output,
// skipping the header row.
func readPhotonTimes(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSimulationUnavailable, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSimulationUnavailable, err)
	}

	var times []float64
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSimulationUnavailable, err)
		}
		times = append(times, t)
	}
	return times, nil
}

func formatArg(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

var (
	// ErrSimulationUnavailable marks a failed external photon simulation.
	// Callers count the particle as undetected rather than failing the
	// trial.
	ErrSimulationUnavailable = errors.New("photon simulation unavailable")
)
