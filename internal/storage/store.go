package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/dragsim/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

var trajectoryHeader = []string{"time", "velocity", "error_pct", "force"}

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

// RunInfo describes how a run was configured.
type RunInfo struct {
	Label           string
	Controller      string
	Mass            float64
	InitialVelocity float64
	DragCoefficient float64
}

type RunMetadata struct {
	ID              string             `json:"id"`
	Label           string             `json:"label"`
	Controller      string             `json:"controller"`
	Timestamp       time.Time          `json:"timestamp"`
	Mass            float64            `json:"mass"`
	InitialVelocity float64            `json:"initial_velocity"`
	DragCoefficient float64            `json:"drag_coefficient"`
	TargetVelocity  float64            `json:"target_velocity"`
	ErrorThreshold  float64            `json:"error_threshold"`
	Dt              float64            `json:"dt"`
	Duration        float64            `json:"duration"`
	Steps           int                `json:"steps"`
	SettlingTime    float64            `json:"settling_time"`
	Metrics         map[string]float64 `json:"metrics"`
}

// Trajectory is the per-sample data of a stored run.
type Trajectory struct {
	Times      []float64
	Velocities []float64
	ErrorPct   []float64
	Forces     []float64
}

// Save writes the run's metadata and trajectory under a new run ID of the
// form <label>_<8 hex chars>. Non-finite metric values are not persisted.
func (s *Store) Save(info RunInfo, res sim.Result) (string, error) {
	runID := newRunID(info.Label)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:              runID,
		Label:           info.Label,
		Controller:      info.Controller,
		Timestamp:       time.Now(),
		Mass:            info.Mass,
		InitialVelocity: info.InitialVelocity,
		DragCoefficient: info.DragCoefficient,
		TargetVelocity:  res.TargetVelocity,
		ErrorThreshold:  res.ErrorThreshold,
		Dt:              res.Dt,
		Duration:        res.Duration,
		Steps:           res.Steps,
		SettlingTime:    res.SettlingTime,
		Metrics:         finiteMetrics(res.Metrics),
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), res); err != nil {
		return "", err
	}
	return runID, nil
}

func newRunID(label string) string {
	label = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '-'
	}, strings.TrimSpace(label))
	if label == "" {
		label = "run"
	}
	return fmt.Sprintf("%s_%s", label, uuid.NewString()[:8])
}

func finiteMetrics(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
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

func writeTrajectory(path string, res sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(trajectoryHeader); err != nil {
		return err
	}
	for i := range res.Times {
		row := []string{
			formatFloat(res.Times[i]),
			formatFloat(at(res.Velocities, i)),
			formatFloat(at(res.Errors, i)),
			formatFloat(at(res.Forces, i)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func at(xs []float64, i int) float64 {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns the metadata of every stored run, oldest first. A missing
// data directory yields an empty list.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (*Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(trajectoryHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s trajectory: %w", runID, err)
	}

	tr := &Trajectory{}
	if len(records) < 2 {
		return tr, nil
	}

	n := len(records) - 1
	tr.Times = make([]float64, 0, n)
	tr.Velocities = make([]float64, 0, n)
	tr.ErrorPct = make([]float64, 0, n)
	tr.Forces = make([]float64, 0, n)

	for i, record := range records[1:] {
		var vals [4]float64
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s trajectory row %d: %w", runID, i+1, err)
			}
			vals[j] = v
		}
		tr.Times = append(tr.Times, vals[0])
		tr.Velocities = append(tr.Velocities, vals[1])
		tr.ErrorPct = append(tr.ErrorPct, vals[2])
		tr.Forces = append(tr.Forces, vals[3])
	}
	return tr, nil
}

// Result rebuilds a simulation result from stored data.
func (s *Store) Result(runID string) (sim.Result, *RunMetadata, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return sim.Result{}, nil, err
	}
	tr, err := s.LoadTrajectory(runID)
	if err != nil {
		return sim.Result{}, nil, err
	}
	return sim.Result{
		Times:          tr.Times,
		Velocities:     tr.Velocities,
		Errors:         tr.ErrorPct,
		Forces:         tr.Forces,
		TargetVelocity: meta.TargetVelocity,
		ErrorThreshold: meta.ErrorThreshold,
		Dt:             meta.Dt,
		Duration:       meta.Duration,
		SettlingTime:   meta.SettlingTime,
		Metrics:        meta.Metrics,
		Steps:          len(tr.Times),
	}, meta, nil
}

// ExportCSV copies a run's trajectory file to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
