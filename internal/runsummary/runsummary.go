// Package runsummary renders the human-readable comment header written
// atop every trace CSV, describing the run parameters that produced it.
package runsummary

import (
	"fmt"
	"strings"

	"github.com/user-none/rocemu/config"
	"github.com/user-none/rocemu/roc"
)

// Lines renders one "key=value" line (several pairs space-separated where
// they belong together) per notable run parameter, in the order a reader
// would want to scan them; trace.Write adds the "# " comment prefix.
func Lines(cfg *config.Config) []string {
	var lines []string
	lines = append(lines, fmt.Sprintf("N=%d", cfg.N))
	lines = append(lines, fmt.Sprintf("bxStart=%d delay=%d", cfg.BXStart, cfg.Delay))
	lines = append(lines, fmt.Sprintf("idleWord=%s idleWordBC0=%s", roc.IdleWord, roc.IdleWordBC0))
	lines = append(lines, fmt.Sprintf("fastCmdInternalLatency=%d", roc.FastCmdInternalLatency))

	if cfg.BCR {
		lines = append(lines, fmt.Sprintf("bcr=true missingBCR=%t extraBCR=%t", cfg.MissingBCR, cfg.ExtraBCR))
	}
	if cfg.ECR {
		lines = append(lines, fmt.Sprintf("ecrBX=%s", formatIntList(cfg.ECRBX)))
	}
	if cfg.OCR {
		lines = append(lines, fmt.Sprintf("ocrBX=%s", formatIntList(cfg.OCRBX)))
	}
	if cfg.EBR {
		lines = append(lines, fmt.Sprintf("ebrBX=%s", formatIntList(cfg.EBRBX)))
	}
	if len(cfg.LinkResetROCDBX) > 0 {
		lines = append(lines, fmt.Sprintf("linkResetROCDBX=%s", formatIntList(cfg.LinkResetROCDBX)))
	}
	if len(cfg.LinkResetECONDBX) > 0 {
		lines = append(lines, fmt.Sprintf("linkResetECONDBX=%s", formatIntList(cfg.LinkResetECONDBX)))
	}
	if len(cfg.L1ABX) > 0 {
		lines = append(lines, fmt.Sprintf("L1ABX=%s", formatIntList(cfg.L1ABX)))
	} else if len(cfg.L1AProgram) > 0 {
		lines = append(lines, fmt.Sprintf("L1AProgram entries=%d L1AStart=%d", len(cfg.L1AProgram), cfg.L1AStart))
	}
	if cfg.HamErrRate > 0 {
		lines = append(lines, fmt.Sprintf("hamErrRate=%g", cfg.HamErrRate))
	}
	lines = append(lines, fmt.Sprintf("payloadMode=%s", cfg.PayloadMode))

	for _, msg := range cfg.Invalid {
		lines = append(lines, fmt.Sprintf("CONFIG WARNING: %s", msg))
	}

	return lines
}

func formatIntList(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ",")
}
