package roc

import (
	"math/rand"
	"testing"
)

func TestBuildSchedule_NoCommands(t *testing.T) {
	sched := BuildSchedule(SchedulerConfig{N: 100})
	for i, c := range sched.Commands {
		if c != CmdIdle {
			t.Errorf("BX %d: expected idle, got %s", i, c)
		}
	}
	if len(sched.L1ABXs) != 0 {
		t.Errorf("expected no L1As, got %v", sched.L1ABXs)
	}
}

func TestBuildSchedule_BCR(t *testing.T) {
	sched := BuildSchedule(SchedulerConfig{N: OrbitLast + 10, BCR: true})
	if sched.Commands[OrbitBCR] != CmdBCR {
		t.Errorf("expected BCR at %d, got %s", OrbitBCR, sched.Commands[OrbitBCR])
	}
}

func TestBuildSchedule_MissingBCR(t *testing.T) {
	sched := BuildSchedule(SchedulerConfig{N: OrbitLast + 10, BCR: true, MissingBCR: true})
	if sched.Commands[OrbitBCR] == CmdBCR {
		t.Errorf("expected first BCR suppressed")
	}
}

func TestBuildSchedule_ExtraBCR(t *testing.T) {
	sched := BuildSchedule(SchedulerConfig{N: 2500, BCR: true, ExtraBCR: true})
	if sched.Commands[2000] != CmdBCR {
		t.Errorf("expected extra BCR at 2000, got %s", sched.Commands[2000])
	}
}

func TestBuildSchedule_ECR(t *testing.T) {
	sched := BuildSchedule(SchedulerConfig{N: 100, ECR: true, ECRBX: []int{42}})
	if sched.Commands[42] != CmdECR {
		t.Errorf("expected ECR at 42, got %s", sched.Commands[42])
	}
}

func TestBuildSchedule_OCR_Alone(t *testing.T) {
	sched := BuildSchedule(SchedulerConfig{N: 100, OCR: true, OCRBX: []int{10}})
	if sched.Commands[10] != CmdOCR {
		t.Errorf("expected OCR at 10, got %s", sched.Commands[10])
	}
}

func TestBuildSchedule_OCR_WithBCR_BecomesBCROCR(t *testing.T) {
	sched := BuildSchedule(SchedulerConfig{N: OrbitLast + 10, BCR: true, OCR: true, OCRBX: []int{OrbitBCR}})
	if sched.Commands[OrbitBCR] != CmdBCROCR {
		t.Errorf("expected BCR_OCR at %d, got %s", OrbitBCR, sched.Commands[OrbitBCR])
	}
}

func TestBuildSchedule_L1AExplicit_OverwritesIdleOnly(t *testing.T) {
	sched := BuildSchedule(SchedulerConfig{
		N: 100, ECR: true, ECRBX: []int{50}, L1ABX: []int{50, 60},
	})
	if sched.Commands[50] != CmdECR {
		t.Errorf("expected ECR preserved at 50, got %s", sched.Commands[50])
	}
	if sched.Commands[60] != CmdL1A {
		t.Errorf("expected L1A shown at 60, got %s", sched.Commands[60])
	}
	if len(sched.L1ABXs) != 2 || sched.L1ABXs[0] != 50 || sched.L1ABXs[1] != 60 {
		t.Errorf("expected L1A triggers at [50 60], got %v", sched.L1ABXs)
	}
}

func TestBuildSchedule_EBR_SuppressedNearL1A(t *testing.T) {
	sched := BuildSchedule(SchedulerConfig{
		N: 100, L1ABX: []int{50}, EBR: true, EBRBX: []int{51, 52, 53, 60},
	})
	for _, bx := range []int{51, 52, 53} {
		if sched.Commands[bx] == CmdEBR {
			t.Errorf("expected EBR suppressed within 3 BX of L1A at %d", bx)
		}
	}
	if sched.Commands[60] != CmdEBR {
		t.Errorf("expected EBR to apply at 60, got %s", sched.Commands[60])
	}
}

func TestSampleWithoutReplacement_Deterministic(t *testing.T) {
	a := sampleWithoutReplacement(0, 1000, 20, rand.NewSource(randomL1ASeed))
	b := sampleWithoutReplacement(0, 1000, 20, rand.NewSource(randomL1ASeed))
	if len(a) != len(b) {
		t.Fatalf("length mismatch")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("index %d: %d vs %d", i, a[i], b[i])
		}
	}
	seen := make(map[int]bool)
	for _, v := range a {
		if seen[v] {
			t.Errorf("duplicate value %d in sample", v)
		}
		seen[v] = true
	}
}
