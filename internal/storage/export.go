package storage

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
)

type ExportData struct {
	RunMetadata
	Times      jsonFloats `json:"times"`
	Velocities jsonFloats `json:"velocities"`
	ErrorPct   jsonFloats `json:"error_pct"`
	Forces     jsonFloats `json:"forces"`
}

// jsonFloats encodes non-finite values as null.
type jsonFloats []float64

func (f jsonFloats) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	buf := make([]byte, 0, len(f)*8+2)
	buf = append(buf, '[')
	for i, v := range f {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf = append(buf, "null"...)
			continue
		}
		buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
	}
	return append(buf, ']'), nil
}

// ExportJSON writes a run's metadata and trajectory as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	tr, err := s.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Times:       tr.Times,
		Velocities:  tr.Velocities,
		ErrorPct:    tr.ErrorPct,
		Forces:      tr.Forces,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
