// Command rocemu drives the ROC/ECON-D timing core end to end: parse the
// configuration surface, build a payload source, run the core, and write
// the trace CSV to stdout or a file.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/user-none/rocemu/config"
	"github.com/user-none/rocemu/geometry"
	"github.com/user-none/rocemu/internal/runsummary"
	"github.com/user-none/rocemu/physics"
	"github.com/user-none/rocemu/roc"
	"github.com/user-none/rocemu/trace"
)

func main() {
	cfg := config.Parse(os.Args[1:])

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	payload, err := buildPayloadSource(cfg)
	if err != nil {
		log.Fatalf("rocemu: building payload source: %v", err)
	}

	if cfg.Debug {
		spew.Fdump(os.Stderr, cfg)
	}

	emu := roc.NewEmulator(roc.RunConfig{
		Scheduler:     cfg.SchedulerConfig(),
		BXStart:       cfg.BXStart,
		Delay:         cfg.Delay,
		HamErrEnabled: cfg.HamErrRate > 0,
		HamErrRate:    cfg.HamErrRate,
		Payload:       payload,
	})

	logger.Info("starting run", "n", cfg.N, "delay", cfg.Delay, "payloadMode", cfg.PayloadMode)
	rows := emu.Run()
	logger.Info("run complete", "rows", len(rows))

	out := os.Stdout
	if cfg.OutPath != "" {
		f, err := os.Create(cfg.OutPath)
		if err != nil {
			log.Fatalf("rocemu: creating output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	if err := trace.Write(out, runsummary.Lines(cfg), rows); err != nil {
		log.Fatalf("rocemu: writing trace: %v", err)
	}
}

// buildPayloadSource resolves cfg.PayloadMode into a roc.PayloadSource,
// loading and decoding a physics table (archive-aware) when requested.
func buildPayloadSource(cfg *config.Config) (roc.PayloadSource, error) {
	switch cfg.PayloadMode {
	case config.PayloadSynthetic:
		return roc.NewSyntheticSource(), nil
	case config.PayloadPhysics:
		if len(cfg.PhysicsTableShards) > 0 {
			tables, err := physics.LoadShards(cfg.PhysicsTableShards, cfg.PhysicsCycle)
			if err != nil {
				return nil, err
			}
			return physics.NewShardedTable(tables), nil
		}
		r, err := physics.OpenTableFile(cfg.PhysicsTable)
		if err != nil {
			return nil, err
		}
		if rc, ok := r.(interface{ Close() error }); ok {
			defer rc.Close()
		}
		table, err := physics.LoadTable(r, cfg.PhysicsCycle)
		if err != nil {
			return nil, err
		}
		if len(cfg.EventNumbers) > 0 {
			table = table.WithEventNumbers(cfg.EventNumbers)
		}
		return table, nil
	case config.PayloadPhysicsCell:
		return buildPerLinkSource(cfg)
	default:
		return roc.ZeroSource{}, nil
	}
}

// buildPerLinkSource loads an e-link geometry map (with optional
// calibration-cell aliases) and resolves a raw per-cell hit table
// against it, producing a per-link roc.PayloadSource.
func buildPerLinkSource(cfg *config.Config) (roc.PayloadSource, error) {
	mapFile, err := os.Open(cfg.GeometryMap)
	if err != nil {
		return nil, fmt.Errorf("opening geometry map: %w", err)
	}
	defer mapFile.Close()

	geoMap, err := geometry.LoadMap(mapFile)
	if err != nil {
		return nil, err
	}

	if cfg.CalibrationCells != "" {
		calFile, err := os.Open(cfg.CalibrationCells)
		if err != nil {
			return nil, fmt.Errorf("opening calibration cells: %w", err)
		}
		cells, err := geometry.LoadCalibrationCells(calFile)
		calFile.Close()
		if err != nil {
			return nil, err
		}
		geoMap = geoMap.WithCalibrationCells(cells)
	}

	cellFile, err := os.Open(cfg.CellTable)
	if err != nil {
		return nil, fmt.Errorf("opening cell table: %w", err)
	}
	defer cellFile.Close()

	table, warnings := physics.LoadCellTable(cellFile, geoMap)
	for _, w := range warnings {
		slog.Warn("cell table row skipped", "err", w)
	}
	if table == nil {
		return nil, fmt.Errorf("loading cell table: %w", warnings[len(warnings)-1])
	}
	return table, nil
}

