// Package config loads the command-line configuration surface and turns
// it into the roc/physics types the emulator core and payload sources
// need, applying the ConfigInvalid fallback-to-defaults policy throughout:
// malformed input is reported on stderr and replaced with a documented
// default rather than aborting the run.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/user-none/rocemu/roc"
)

// PayloadMode selects which PayloadSource implementation a Config wires up.
type PayloadMode string

const (
	PayloadZero        PayloadMode = "zero"
	PayloadSynthetic   PayloadMode = "synthetic"
	PayloadPhysics     PayloadMode = "physics"
	PayloadPhysicsCell PayloadMode = "physics-cells"
)

// Config is the fully-resolved configuration surface, ready to build a
// roc.RunConfig once a PayloadSource has been constructed for whichever
// PayloadMode was selected.
type Config struct {
	N       int
	BXStart uint32
	Delay   int

	BCR        bool
	MissingBCR bool
	ExtraBCR   bool

	ECR   bool
	ECRBX []int

	OCR   bool
	OCRBX []int

	EBR   bool
	EBRBX []int

	LinkResetROCDBX  []int
	LinkResetECONDBX []int

	L1ABX      []int
	L1AStart   int
	L1AProgram []roc.L1AProgramEntry

	HamErrRate float64

	PayloadMode        PayloadMode
	PhysicsTable       string
	PhysicsTableShards []string
	PhysicsCycle       bool
	EventNumbers       []int

	GeometryMap      string
	CalibrationCells string
	CellTable        string

	// Invalid collects every ConfigInvalid condition encountered while
	// parsing, each already resolved to its documented default.
	Invalid []string

	OutPath string
	Debug   bool
}

// defaults mirror the documented fallback values; every ConfigInvalid
// path resolves to one of these rather than aborting.
const (
	defaultN       = 1000
	defaultDelay   = 7
	defaultL1AFreq = 53
)

// Parse builds a Config from command-line flags using flag.String,
// flag.Bool, and FlagSet.Parse.
func Parse(args []string) *Config {
	fs := flag.NewFlagSet("rocemu", flag.ExitOnError)

	n := fs.Int("n", defaultN, "nominal stream length in BX")
	bxStart := fs.Uint("bx-start", 0, "first CLK_N value")
	delay := fs.Int("delay", defaultDelay, "BX latency from L1A to readout start")

	bcr := fs.Bool("bcr", false, "enable periodic BCR")
	missingBCR := fs.Bool("missing-bcr", false, "suppress the first periodic BCR")
	extraBCR := fs.Bool("extra-bcr", false, "inject one extra BCR at BX 2000")

	ecrBX := fs.String("ecr-bx", "", "comma-separated BXs at which to schedule an ECR")
	ocrBX := fs.String("ocr-bx", "", "comma-separated BXs at which to schedule an OCR")
	ebrBX := fs.String("ebr-bx", "", "comma-separated BXs at which to schedule an EBR")

	linkResetROCDBX := fs.String("link-reset-rocd-bx", "", "comma-separated BXs for LinkResetROCD")
	linkResetECONDBX := fs.String("link-reset-econd-bx", "", "comma-separated BXs for LinkResetECOND")

	l1aBX := fs.String("l1a-bx", "", "comma-separated explicit L1A BXs")
	l1aProgram := fs.String("l1a-program", "", "semicolon-separated sequence:count:freq triples (sequence: fixed|random)")
	l1aStart := fs.Int("l1a-start", 0, "first BX eligible for random L1A placement")

	hamErrRate := fs.Float64("ham-err-rate", 0, "probability of header Hamming-bit injection")

	payloadMode := fs.String("payload-mode", "zero", "payload source: zero, synthetic, physics, or physics-cells")
	physicsTable := fs.String("physics-table", "", "path to a physics payload CSV table (or archive containing one)")
	physicsTableShards := fs.String("physics-table-shards", "", "comma-separated paths loaded concurrently and round-robined as one payload source, instead of -physics-table")
	physicsCycle := fs.Bool("physics-cycle", true, "cycle through physics table rows in order, instead of drawing at random")
	eventNumbers := fs.String("physics-event-numbers", "", "comma-separated explicit event-index sequence")

	geometryMap := fs.String("geometry-map", "", "path to an eLink input map CSV (HDM,cellu,cellv,eLink,linkChannel), required for payload-mode physics-cells")
	calibrationCells := fs.String("calibration-cells", "", "path to a calibration-cells CSV, merged into -geometry-map as negative-coordinate aliases")
	cellTable := fs.String("cell-table", "", "path to a raw per-cell hit CSV (entry,HDM,cellu,cellv,data), required for payload-mode physics-cells")

	outPath := fs.String("out", "", "output CSV path (default: stdout)")
	debug := fs.Bool("debug", false, "dump the resolved configuration to stderr")

	fs.Parse(args)

	cfg := &Config{
		N:                *n,
		OutPath:          *outPath,
		Debug:            *debug,
		BXStart:          uint32(*bxStart),
		Delay:            *delay,
		BCR:              *bcr,
		MissingBCR:       *missingBCR,
		ExtraBCR:         *extraBCR,
		L1AStart:         *l1aStart,
		HamErrRate:       *hamErrRate,
		PayloadMode:      PayloadMode(*payloadMode),
		PhysicsTable:     *physicsTable,
		PhysicsCycle:     *physicsCycle,
		GeometryMap:      *geometryMap,
		CalibrationCells: *calibrationCells,
		CellTable:        *cellTable,
	}

	cfg.ECRBX = cfg.parseIntList("ecr-bx", *ecrBX)
	cfg.ECR = len(cfg.ECRBX) > 0
	cfg.OCRBX = cfg.parseIntList("ocr-bx", *ocrBX)
	cfg.OCR = len(cfg.OCRBX) > 0
	cfg.EBRBX = cfg.parseIntList("ebr-bx", *ebrBX)
	cfg.EBR = len(cfg.EBRBX) > 0
	cfg.LinkResetROCDBX = cfg.parseIntList("link-reset-rocd-bx", *linkResetROCDBX)
	cfg.LinkResetECONDBX = cfg.parseIntList("link-reset-econd-bx", *linkResetECONDBX)
	cfg.EventNumbers = cfg.parseIntList("physics-event-numbers", *eventNumbers)
	cfg.PhysicsTableShards = parseStringList(*physicsTableShards)

	if *l1aBX != "" {
		cfg.L1ABX = cfg.parseIntList("l1a-bx", *l1aBX)
	} else if *l1aProgram != "" {
		cfg.L1AProgram = cfg.parseL1AProgram(*l1aProgram)
	}

	switch cfg.PayloadMode {
	case PayloadZero, PayloadSynthetic, PayloadPhysics, PayloadPhysicsCell:
	default:
		cfg.invalid(fmt.Sprintf("unrecognized payload-mode %q, falling back to zero", *payloadMode))
		cfg.PayloadMode = PayloadZero
	}
	if cfg.PayloadMode == PayloadPhysics && cfg.PhysicsTable == "" && len(cfg.PhysicsTableShards) == 0 {
		cfg.invalid("payload-mode physics requires -physics-table or -physics-table-shards; falling back to zero")
		cfg.PayloadMode = PayloadZero
	}
	if cfg.PayloadMode == PayloadPhysicsCell && (cfg.GeometryMap == "" || cfg.CellTable == "") {
		cfg.invalid("payload-mode physics-cells requires -geometry-map and -cell-table; falling back to zero")
		cfg.PayloadMode = PayloadZero
	}

	return cfg
}

func (c *Config) invalid(msg string) {
	c.Invalid = append(c.Invalid, msg)
	fmt.Fprintf(os.Stderr, "rocemu: config: %s\n", msg)
}

// parseStringList splits a comma-separated list of paths, trimming
// whitespace and dropping empty fields.
func parseStringList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []string
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		out = append(out, field)
	}
	return out
}

// parseIntList parses a comma-separated list of BXs, dropping (and
// reporting) any field that doesn't parse rather than aborting the run —
// the ConfigInvalid policy for malformed coordinates.
func (c *Config) parseIntList(flagName, raw string) []int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []int
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.Atoi(field)
		if err != nil {
			c.invalid(fmt.Sprintf("-%s: skipping unparseable value %q", flagName, field))
			continue
		}
		out = append(out, v)
	}
	return out
}

// parseL1AProgram parses "fixed:10:53;random:0:100"-shaped program
// strings into roc.L1AProgramEntry values, skipping malformed entries.
func (c *Config) parseL1AProgram(raw string) []roc.L1AProgramEntry {
	var out []roc.L1AProgramEntry
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Split(entry, ":")
		if len(fields) != 3 {
			c.invalid(fmt.Sprintf("-l1a-program: skipping malformed entry %q", entry))
			continue
		}
		var kind roc.L1ASequenceKind
		switch strings.ToLower(strings.TrimSpace(fields[0])) {
		case "fixed":
			kind = roc.L1AFixed
		case "random":
			kind = roc.L1ARandom
		default:
			c.invalid(fmt.Sprintf("-l1a-program: unknown sequence %q, defaulting to fixed", fields[0]))
			kind = roc.L1AFixed
		}
		count, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			c.invalid(fmt.Sprintf("-l1a-program: unparseable count in %q, defaulting to 0", entry))
			count = 0
		}
		freq, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			c.invalid(fmt.Sprintf("-l1a-program: unparseable freq in %q, defaulting to %d", entry, defaultL1AFreq))
			freq = defaultL1AFreq
		}
		out = append(out, roc.L1AProgramEntry{Sequence: kind, Count: count, Freq: freq})
	}
	return out
}

// SchedulerConfig builds the roc.SchedulerConfig this Config describes.
func (c *Config) SchedulerConfig() roc.SchedulerConfig {
	return roc.SchedulerConfig{
		N:                c.N,
		BCR:              c.BCR,
		MissingBCR:       c.MissingBCR,
		ExtraBCR:         c.ExtraBCR,
		ECR:              c.ECR,
		ECRBX:            c.ECRBX,
		OCR:              c.OCR,
		OCRBX:            c.OCRBX,
		EBR:              c.EBR,
		EBRBX:            c.EBRBX,
		LinkResetROCDBX:  c.LinkResetROCDBX,
		LinkResetECONDBX: c.LinkResetECONDBX,
		L1ABX:            c.L1ABX,
		L1AStart:         c.L1AStart,
		L1AProgram:       c.L1AProgram,
	}
}
