package geometry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CalibrationCell marks one ordinary cell as also serving as a calibration
// cell, surfaced under negative (U, V) coordinates (calibrationCells.csv:
// HDM,cellu,cellv,U,V,isCal).
type CalibrationCell struct {
	Source CellKey
	U, V   int
}

// LoadCalibrationCells reads a calibrationCells.csv-shaped table.
func LoadCalibrationCells(r io.Reader) ([]CalibrationCell, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("geometry: reading calibration cells: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	out := make([]CalibrationCell, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 5 {
			continue
		}
		key, err := parseCellKey(rec[0], rec[1], rec[2])
		if err != nil {
			return nil, err
		}
		u, err := strconv.Atoi(rec[3])
		if err != nil {
			return nil, fmt.Errorf("geometry: parsing calibration U: %w", err)
		}
		v, err := strconv.Atoi(rec[4])
		if err != nil {
			return nil, fmt.Errorf("geometry: parsing calibration V: %w", err)
		}
		out = append(out, CalibrationCell{Source: key, U: u, V: v})
	}
	return out, nil
}

// WithCalibrationCells returns a new Map with calibration duplicates
// merged in: for every cell entry that also names a calibration cell, its
// channel assignment is additionally reachable under the calibration
// (U, V) coordinates.
func (m *Map) WithCalibrationCells(cells []CalibrationCell) *Map {
	merged := make(map[CellKey]ChannelAssignment, len(m.assignments)+len(cells))
	for k, v := range m.assignments {
		merged[k] = v
	}
	for _, c := range cells {
		if a, ok := m.assignments[c.Source]; ok {
			calKey := CellKey{HDM: c.Source.HDM, CellU: c.U, CellV: c.V}
			merged[calKey] = a
		}
	}
	return &Map{assignments: merged}
}
