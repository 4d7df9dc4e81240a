// Package physics loads channel payload data from on-disk tables — plain
// CSV or CSV packed inside an archive — and exposes it through the same
// roc.PayloadSource interface the core already drives.
package physics

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/user-none/rocemu/roc"
)

// errNoRows is returned when a table has no usable data rows.
var errNoRows = fmt.Errorf("physics: table has no data rows")

// row is one decoded line of the table: 37 channel words for one source
// event on one link, indexed the same way roc.ChannelName - wordCHBase
// would index.
type row [37]roc.Word

// eventBank is one simulated event's data across all twelve e-links, read
// from NELinks consecutive CSV rows (link 0 first).
type eventBank [roc.NELinks]row

// Table is a roc.PayloadSource backed by a decoded CSV table keyed by
// (eventIndex, linkId), selecting an eventBank per source event either by
// cycling through the table in order or by drawing uniformly at random
// with a fixed seed. All rows are parsed once at load; an LRU cache keyed
// by eventIndex holds each event's assigned bank for repeated lookups.
type Table struct {
	banks   []eventBank
	cycle   bool
	randSrc *rand.Rand
	assign  map[int]int // eventIndex -> bank index, latched on first lookup

	// explicit, when non-nil, maps a source event's rank-of-arrival (0, 1,
	// 2, ...) directly to a bank index, overriding cycle/random selection —
	// physics.eventNumbers[] from the configuration surface.
	explicit []int
	rank     map[int]int // eventIndex -> rank, in order first seen

	cache *lru.Cache[int, eventBank]
}

// tableRandomSeed is fixed for reproducibility across runs, independent of
// randomL1ASeed so enabling/disabling random L1A placement never perturbs
// which physics rows get drawn.
const tableRandomSeed = 17

// LoadTable decodes a CSV table from r, keyed by (eventNumber, linkId): one
// header line (ignored) followed by data lines of a link id field plus 37
// numeric channel fields. Every NELinks consecutive rows (link 0 first)
// form one event's eventBank; a trailing partial group is dropped. cycle
// selects bank-cycling assignment; when false, banks are drawn uniformly
// at random.
func LoadTable(r io.Reader, cycle bool) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("physics: reading csv: %w", err)
	}
	if len(records) < 2 {
		return nil, errNoRows
	}

	rows := make([]row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 1+37 {
			continue
		}
		var rr row
		for i := 0; i < 37; i++ {
			v, err := strconv.ParseUint(rec[1+i], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("physics: parsing field %d: %w", i, err)
			}
			rr[i] = roc.Word(v)
		}
		rows = append(rows, rr)
	}
	if len(rows) == 0 {
		return nil, errNoRows
	}

	banks := make([]eventBank, 0, len(rows)/roc.NELinks)
	for i := 0; i+roc.NELinks <= len(rows); i += roc.NELinks {
		var b eventBank
		copy(b[:], rows[i:i+roc.NELinks])
		banks = append(banks, b)
	}
	if len(banks) == 0 {
		return nil, fmt.Errorf("physics: table has %d rows, fewer than NELinks=%d", len(rows), roc.NELinks)
	}

	cache, err := lru.New[int, eventBank](256)
	if err != nil {
		return nil, fmt.Errorf("physics: creating cache: %w", err)
	}

	return &Table{
		banks:   banks,
		cycle:   cycle,
		randSrc: rand.New(rand.NewSource(tableRandomSeed)),
		assign:  make(map[int]int),
		rank:    make(map[int]int),
		cache:   cache,
	}, nil
}

// WithEventNumbers overrides bank selection with an explicit sequence: the
// k-th distinct source event to be looked up is assigned explicit[k],
// modulo the sequence length, ignoring cycle/random selection entirely.
// Numbers with no bank in the table are dropped without a warning; if none
// remain, cycle/random selection stays in effect.
func (t *Table) WithEventNumbers(explicit []int) *Table {
	kept := make([]int, 0, len(explicit))
	for _, n := range explicit {
		if n >= 0 && n < len(t.banks) {
			kept = append(kept, n)
		}
	}
	t.explicit = kept
	return t
}

// bankFor returns the eventBank assigned to eventIndex, latching the
// assignment (explicit sequence, cycle position, or random draw) the
// first time it's seen.
func (t *Table) bankFor(eventIndex int) eventBank {
	if cached, ok := t.cache.Get(eventIndex); ok {
		return cached
	}

	idx, ok := t.assign[eventIndex]
	if !ok {
		switch {
		case len(t.explicit) > 0:
			r, seen := t.rank[eventIndex]
			if !seen {
				r = len(t.rank)
				t.rank[eventIndex] = r
			}
			idx = t.explicit[r%len(t.explicit)] % len(t.banks)
		case t.cycle:
			idx = eventIndex % len(t.banks)
		default:
			idx = t.randSrc.Intn(len(t.banks))
		}
		t.assign[eventIndex] = idx
	}

	b := t.banks[idx]
	t.cache.Add(eventIndex, b)
	return b
}

// LookupWord implements roc.PayloadSource, keyed by (eventIndex, linkId):
// each link reads its own row out of the event's bank.
func (t *Table) LookupWord(eventIndex int, link roc.LinkID, channel roc.ChannelName) roc.Word {
	if !channel.IsChannel() {
		return 0
	}
	if link < 0 || int(link) >= roc.NELinks {
		return 0
	}
	r := t.bankFor(eventIndex)[link]
	n := int(channel) - int(roc.Channel(0))
	if n < 0 || n >= len(r) {
		return 0
	}
	return r[n]
}
