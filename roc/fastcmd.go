package roc

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// L1ASequenceKind selects how a single L1A program entry places its BXs.
type L1ASequenceKind int

const (
	L1AFixed L1ASequenceKind = iota
	L1ARandom
)

// L1AProgramEntry is one (sequence, count, freq) tuple of an L1A program.
type L1AProgramEntry struct {
	Sequence L1ASequenceKind
	Count    int
	Freq     int
}

// SchedulerConfig configures the fast-command scheduler.
type SchedulerConfig struct {
	N int

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

	// L1A placement: either an explicit list of BXs, or a program of
	// (sequence, count, freq) tuples. L1ABX takes precedence if non-nil.
	L1ABX     []int
	L1AStart  int
	L1AProgram []L1AProgramEntry
}

// randomL1ASeed is fixed so random L1A placement is reproducible across runs.
const randomL1ASeed = 6

// Schedule is the output of the fast-command scheduler: the per-BX display
// command plus the independent set of BXs at which an L1A was accepted.
// L1A coexists with whatever reset command is displayed at its BX: the
// trigger always fires, but a BX already carrying a reset command keeps
// showing that command rather than being overwritten.
type Schedule struct {
	Commands []FastCommand
	L1ABXs   []int
}

// BuildSchedule computes the length-N FastCommand vector, applying each
// placement rule in order so later rules overwrite earlier ones on the
// same BX (except L1A, which coexists with other commands).
func BuildSchedule(cfg SchedulerConfig) Schedule {
	cmds := make([]FastCommand, cfg.N)
	for i := range cmds {
		cmds[i] = CmdIdle
	}

	// 1. BCR placement.
	if cfg.BCR {
		var bcrBXs []int
		for i := 0; i < cfg.N; i++ {
			if i%OrbitLast == OrbitBCR {
				bcrBXs = append(bcrBXs, i)
			}
		}
		if cfg.ExtraBCR {
			bcrBXs = append(bcrBXs, 2000)
		}
		if cfg.MissingBCR && len(bcrBXs) > 0 {
			bcrBXs = bcrBXs[1:]
		}
		for _, bx := range bcrBXs {
			if bx >= 0 && bx < cfg.N {
				cmds[bx] = CmdBCR
			}
		}
	}

	// 2. LinkResets.
	for _, bx := range cfg.LinkResetROCDBX {
		if bx >= 0 && bx < cfg.N {
			cmds[bx] = CmdLinkResetROCD
		}
	}
	for _, bx := range cfg.LinkResetECONDBX {
		if bx >= 0 && bx < cfg.N {
			cmds[bx] = CmdLinkResetECOND
		}
	}

	// 3. ECR / OCR / BCR_OCR.
	if cfg.ECR {
		for _, bx := range cfg.ECRBX {
			if bx >= 0 && bx < cfg.N {
				cmds[bx] = CmdECR
			}
		}
	}
	if cfg.OCR {
		for _, bx := range cfg.OCRBX {
			if bx < 0 || bx >= cfg.N {
				continue
			}
			if cmds[bx] == CmdBCR {
				cmds[bx] = CmdBCROCR
			} else {
				cmds[bx] = CmdOCR
			}
		}
	}

	// 4. L1A placement. L1A is recorded independently of the display
	// command: it overwrites an Idle slot but never a reset, matching the
	// "coexists with other data" rule — the trigger fires regardless.
	l1aBXs := scheduleL1As(cfg)
	l1aSet := make(map[int]bool, len(l1aBXs))
	for _, bx := range l1aBXs {
		l1aSet[bx] = true
		if cmds[bx] == CmdIdle {
			cmds[bx] = CmdL1A
		}
	}

	// 5. EBR placement: no-op within 3 BX after an L1A.
	if cfg.EBR {
		for _, bx := range cfg.EBRBX {
			if bx < 0 || bx >= cfg.N {
				continue
			}
			if withinThreeAfterL1A(bx, l1aSet) {
				continue
			}
			cmds[bx] = CmdEBR
		}
	}

	return Schedule{Commands: cmds, L1ABXs: l1aBXs}
}

func withinThreeAfterL1A(bx int, l1aSet map[int]bool) bool {
	for d := 1; d <= 3; d++ {
		if l1aSet[bx-d] {
			return true
		}
	}
	return false
}

func scheduleL1As(cfg SchedulerConfig) []int {
	if cfg.L1ABX != nil {
		out := make([]int, 0, len(cfg.L1ABX))
		for _, bx := range cfg.L1ABX {
			if bx >= 0 && bx < cfg.N {
				out = append(out, bx)
			}
		}
		sort.Ints(out)
		return out
	}

	var all []int
	counter := 0
	for _, entry := range cfg.L1AProgram {
		freq := entry.Freq
		if freq <= 0 {
			freq = 53
		}
		switch entry.Sequence {
		case L1AFixed:
			count := entry.Count
			if count < 0 {
				count = cfg.N
			}
			for k := counter + 1; k <= counter+count; k++ {
				bx := k * freq
				if bx < cfg.N {
					all = append(all, bx)
				}
			}
			counter += count
		case L1ARandom:
			lambda := float64(cfg.N-cfg.L1AStart) / float64(freq)
			if lambda < 0 {
				lambda = 0
			}
			src := rand.NewSource(randomL1ASeed)
			pois := distuv.Poisson{Lambda: lambda, Src: src}
			n := int(pois.Rand())
			all = append(all, sampleWithoutReplacement(cfg.L1AStart, cfg.N, n, src)...)
		}
	}
	sort.Ints(all)
	return all
}

// sampleWithoutReplacement draws n distinct integers from [lo, hi) using a
// partial Fisher-Yates shuffle driven by src, matching the reproducibility
// of numpy.random.choice(replace=False) under a fixed seed.
func sampleWithoutReplacement(lo, hi, n int, src rand.Source) []int {
	if hi <= lo {
		return nil
	}
	pool := make([]int, hi-lo)
	for i := range pool {
		pool[i] = lo + i
	}
	if n > len(pool) {
		n = len(pool)
	}
	r := rand.New(src)
	for i := 0; i < n; i++ {
		j := i + r.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	out := append([]int(nil), pool[:n]...)
	sort.Ints(out)
	return out
}
