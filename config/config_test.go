package config

import "testing"

func TestParse_Defaults(t *testing.T) {
	cfg := Parse(nil)
	if cfg.N != defaultN {
		t.Errorf("N: expected %d, got %d", defaultN, cfg.N)
	}
	if cfg.Delay != defaultDelay {
		t.Errorf("Delay: expected %d, got %d", defaultDelay, cfg.Delay)
	}
	if cfg.PayloadMode != PayloadZero {
		t.Errorf("PayloadMode: expected zero, got %s", cfg.PayloadMode)
	}
}

func TestParse_IntList(t *testing.T) {
	cfg := Parse([]string{"-ecr-bx", "10,20,30"})
	want := []int{10, 20, 30}
	if len(cfg.ECRBX) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.ECRBX)
	}
	for i := range want {
		if cfg.ECRBX[i] != want[i] {
			t.Errorf("index %d: expected %d, got %d", i, want[i], cfg.ECRBX[i])
		}
	}
	if !cfg.ECR {
		t.Errorf("expected ECR true when ecrBX is non-empty")
	}
}

func TestParse_IntList_SkipsUnparseable(t *testing.T) {
	cfg := Parse([]string{"-ecr-bx", "10,garbage,30"})
	want := []int{10, 30}
	if len(cfg.ECRBX) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.ECRBX)
	}
	if len(cfg.Invalid) == 0 {
		t.Errorf("expected an Invalid entry recorded for the bad field")
	}
}

func TestParse_InvalidPayloadModeFallsBackToZero(t *testing.T) {
	cfg := Parse([]string{"-payload-mode", "bogus"})
	if cfg.PayloadMode != PayloadZero {
		t.Errorf("expected fallback to zero, got %s", cfg.PayloadMode)
	}
	if len(cfg.Invalid) == 0 {
		t.Errorf("expected an Invalid entry recorded")
	}
}

func TestParse_PhysicsWithoutTableFallsBackToZero(t *testing.T) {
	cfg := Parse([]string{"-payload-mode", "physics"})
	if cfg.PayloadMode != PayloadZero {
		t.Errorf("expected fallback to zero when no physics-table given, got %s", cfg.PayloadMode)
	}
}

func TestParse_L1AProgram(t *testing.T) {
	cfg := Parse([]string{"-l1a-program", "fixed:10:53;random:0:100"})
	if len(cfg.L1AProgram) != 2 {
		t.Fatalf("expected 2 program entries, got %d", len(cfg.L1AProgram))
	}
	if cfg.L1AProgram[0].Count != 10 || cfg.L1AProgram[0].Freq != 53 {
		t.Errorf("unexpected first entry: %+v", cfg.L1AProgram[0])
	}
}

func TestParse_L1ABXTakesPrecedenceOverProgram(t *testing.T) {
	cfg := Parse([]string{"-l1a-bx", "5,10", "-l1a-program", "fixed:10:53"})
	if len(cfg.L1ABX) != 2 {
		t.Errorf("expected explicit L1ABX to be used, got %v", cfg.L1ABX)
	}
	if len(cfg.L1AProgram) != 0 {
		t.Errorf("expected program to be ignored when L1ABX is set")
	}
}
