// Package geometry loads the wafer/cell to e-link channel mapping tables
// that decide which physics channel number (CH0..CH36) a given silicon
// cell's data lands on. It does not read detector ntuples directly — that
// step stays upstream, in whatever tool produced the CSV tables this
// package consumes — it only resolves the fixed geometry once those
// tables are on disk.
package geometry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CellKey identifies one silicon cell within a wafer half.
type CellKey struct {
	HDM   bool // high-density module, vs low-density
	CellU int
	CellV int
}

// ChannelAssignment is where one cell's data is routed.
type ChannelAssignment struct {
	ELink       int
	LinkChannel int
}

// Map resolves CellKey to ChannelAssignment, loaded from an
// eLinkInputMapFull.csv-shaped table (columns: HDM,cellu,cellv,eLink,linkChannel).
type Map struct {
	assignments map[CellKey]ChannelAssignment
}

// LoadMap reads an e-link mapping table.
func LoadMap(r io.Reader) (*Map, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("geometry: reading map: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("geometry: map has no data rows")
	}

	m := &Map{assignments: make(map[CellKey]ChannelAssignment, len(records)-1)}
	for _, rec := range records[1:] {
		if len(rec) < 5 {
			continue
		}
		key, err := parseCellKey(rec[0], rec[1], rec[2])
		if err != nil {
			return nil, err
		}
		eLink, err := strconv.Atoi(rec[3])
		if err != nil {
			return nil, fmt.Errorf("geometry: parsing eLink: %w", err)
		}
		linkChannel, err := strconv.Atoi(rec[4])
		if err != nil {
			return nil, fmt.Errorf("geometry: parsing linkChannel: %w", err)
		}
		m.assignments[key] = ChannelAssignment{ELink: eLink, LinkChannel: linkChannel}
	}
	return m, nil
}

// Lookup returns the channel assignment for key, and whether it was found.
func (m *Map) Lookup(key CellKey) (ChannelAssignment, bool) {
	a, ok := m.assignments[key]
	return a, ok
}

func parseCellKey(hdmField, uField, vField string) (CellKey, error) {
	hdm, err := strconv.ParseBool(hdmField)
	if err != nil {
		return CellKey{}, fmt.Errorf("geometry: parsing HDM: %w", err)
	}
	u, err := strconv.Atoi(uField)
	if err != nil {
		return CellKey{}, fmt.Errorf("geometry: parsing cellu: %w", err)
	}
	v, err := strconv.Atoi(vField)
	if err != nil {
		return CellKey{}, fmt.Errorf("geometry: parsing cellv: %w", err)
	}
	return CellKey{HDM: hdm, CellU: u, CellV: v}, nil
}
