package physics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/user-none/rocemu/geometry"
	"github.com/user-none/rocemu/roc"
)

// PerLinkTable is a roc.PayloadSource built from raw per-cell hits
// (entry, HDM, cellu, cellv, data), resolved to (eLink, linkChannel)
// through a geometry.Map — the Go-native equivalent of
// getElinkInputDataFromMC.py's merge against eLinkInputMapFull.csv,
// rather than assuming the table already arrives pre-sorted into
// per-link CH0..CH36 columns the way physics.Table does.
type PerLinkTable struct {
	// events[entry][eLink][linkChannel] = formatted 32-bit word.
	events map[int]map[int][37]roc.Word
	order  []int // entries in first-seen order, for cycling fallback
}

// LoadCellTable reads a CSV of raw cell hits (columns: entry,HDM,cellu,
// cellv,data) and resolves each row's e-link/channel slot through geo.
// Rows whose cell isn't in geo are dropped with an error collected in
// the returned slice rather than aborting the load.
func LoadCellTable(r io.Reader, geo *geometry.Map) (*PerLinkTable, []error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	records, err := cr.ReadAll()
	if err != nil {
		return nil, []error{fmt.Errorf("physics: reading cell table: %w", err)}
	}
	if len(records) < 2 {
		return nil, []error{fmt.Errorf("physics: cell table has no data rows")}
	}

	t := &PerLinkTable{events: make(map[int]map[int][37]roc.Word)}
	var warnings []error

	for _, rec := range records[1:] {
		if len(rec) < 5 {
			continue
		}
		entry, err := strconv.Atoi(rec[0])
		if err != nil {
			warnings = append(warnings, fmt.Errorf("physics: skipping row with bad entry %q: %w", rec[0], err))
			continue
		}
		hdm, err := strconv.ParseBool(rec[1])
		if err != nil {
			warnings = append(warnings, fmt.Errorf("physics: skipping row with bad HDM %q: %w", rec[1], err))
			continue
		}
		cellu, err := strconv.Atoi(rec[2])
		if err != nil {
			warnings = append(warnings, fmt.Errorf("physics: skipping row with bad cellu %q: %w", rec[2], err))
			continue
		}
		cellv, err := strconv.Atoi(rec[3])
		if err != nil {
			warnings = append(warnings, fmt.Errorf("physics: skipping row with bad cellv %q: %w", rec[3], err))
			continue
		}
		data, err := strconv.ParseUint(rec[4], 10, 32)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("physics: skipping row with bad data %q: %w", rec[4], err))
			continue
		}

		assignment, ok := geo.Lookup(geometry.CellKey{HDM: hdm, CellU: cellu, CellV: cellv})
		if !ok {
			warnings = append(warnings, fmt.Errorf("physics: no geometry mapping for cell (HDM=%t,u=%d,v=%d)", hdm, cellu, cellv))
			continue
		}
		if assignment.LinkChannel < 0 || assignment.LinkChannel >= 37 {
			warnings = append(warnings, fmt.Errorf("physics: linkChannel %d out of range", assignment.LinkChannel))
			continue
		}

		perLink, ok := t.events[entry]
		if !ok {
			perLink = make(map[int][37]roc.Word)
			t.order = append(t.order, entry)
		}
		row := perLink[assignment.ELink]
		row[assignment.LinkChannel] = roc.Word(data)
		perLink[assignment.ELink] = row
		t.events[entry] = perLink
	}

	if len(t.events) == 0 {
		return nil, append(warnings, fmt.Errorf("physics: no rows resolved to a geometry mapping"))
	}
	return t, warnings
}

// LookupWord implements roc.PayloadSource, cycling through the loaded
// entries in first-seen order when eventIndex exceeds what was recorded.
func (t *PerLinkTable) LookupWord(eventIndex int, link roc.LinkID, channel roc.ChannelName) roc.Word {
	if !channel.IsChannel() || len(t.order) == 0 {
		return 0
	}
	entry := t.order[eventIndex%len(t.order)]
	perLink, ok := t.events[entry]
	if !ok {
		return 0
	}
	row, ok := perLink[int(link)]
	if !ok {
		return 0
	}
	n := int(channel) - int(roc.Channel(0))
	if n < 0 || n >= len(row) {
		return 0
	}
	return row[n]
}
