package roc

import "testing"

// No resets, no L1A -> all idle, with the BC0 idle marker at CLK 0.
func TestEmulator_AllIdle(t *testing.T) {
	e := NewEmulator(RunConfig{Scheduler: SchedulerConfig{N: 100}})
	rows := e.Run()
	if len(rows) != 100 {
		t.Fatalf("expected 100 rows, got %d", len(rows))
	}
	for l := 0; l < NELinks; l++ {
		if rows[0].Links[l] != IdleWordBC0 {
			t.Errorf("link %d at CLK 0: expected BC0 idle, got %s", l, rows[0].Links[l])
		}
	}
	for i := 1; i < 100; i++ {
		for l := 0; l < NELinks; l++ {
			if rows[i].Links[l] != IdleWord {
				t.Errorf("row %d link %d: expected idle, got %s", i, l, rows[i].Links[l])
			}
		}
	}
}

// A single L1A produces a 41-word readout starting delay BX later, with
// the header's bx/event/orbit fields reflecting what was captured at
// acceptance.
func TestEmulator_SingleL1A(t *testing.T) {
	e := NewEmulator(RunConfig{
		Scheduler: SchedulerConfig{N: 200, L1ABX: []int{50}},
		Delay:     7,
	})
	rows := e.Run()

	startBX := 57
	hdr := uint32(rows[startBX].Links[0])
	gotBX := (hdr >> 16) & 0xFFF
	gotEvent := (hdr >> 10) & 0x3F
	gotOrbit := (hdr >> 7) & 0x7
	if gotBX != 50 {
		t.Errorf("header bx: expected 50, got %d", gotBX)
	}
	if gotEvent != 1 {
		t.Errorf("header event: expected 1, got %d", gotEvent)
	}
	if gotOrbit != 0 {
		t.Errorf("header orbit: expected 0, got %d", gotOrbit)
	}

	for i := 0; i < startBX; i++ {
		for l := 0; l < NELinks; l++ {
			if rows[i].Links[l] != IdleWord && i != 0 {
				t.Errorf("row %d link %d: expected idle before readout, got %s", i, l, rows[i].Links[l])
			}
		}
	}

	endBX := startBX + NWords - 1
	if Word(uint32(rows[endBX].Links[0])) != IdleWord {
		t.Errorf("expected IDLE word at packet end %d, got %s", endBX, rows[endBX].Links[0])
	}
}

// Two L1As close together queue back-to-back without overlapping.
func TestEmulator_BackToBackQueueing(t *testing.T) {
	e := NewEmulator(RunConfig{
		Scheduler: SchedulerConfig{N: 300, L1ABX: []int{50, 55}},
		Delay:     7,
	})
	rows := e.Run()

	firstStart := 57
	secondStart := firstStart + NWords
	hdr2 := uint32(rows[secondStart].Links[0])
	gotEvent2 := (hdr2 >> 10) & 0x3F
	if gotEvent2 != 2 {
		t.Errorf("second header event: expected 2, got %d", gotEvent2)
	}
}

// With periodic BCR enabled and a run longer than OrbitBCR, a BCR command
// appears in the output's fast-command channel.
func TestEmulator_BCR(t *testing.T) {
	e := NewEmulator(RunConfig{
		Scheduler: SchedulerConfig{N: OrbitLast + 10, BCR: true, ECR: false},
	})
	rows := e.Run()
	found := false
	for _, r := range rows {
		if r.Command == CmdBCR {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a BCR command to appear in the (rotated) command stream")
	}
}

// ECR resets the event counter, so the next accepted L1A after an ECR
// gets event=1 again even if prior events already advanced it.
func TestEmulator_ECRResetsEventCounter(t *testing.T) {
	e := NewEmulator(RunConfig{
		Scheduler: SchedulerConfig{
			N:     500,
			ECR:   true,
			ECRBX: []int{100},
			L1ABX: []int{10, 200},
		},
		Delay: 7,
	})
	rows := e.Run()

	// Second L1A (at 200) is accepted after the ECR at 100, so its readout
	// header event field should read 1.
	secondStart := 207
	hdr := uint32(rows[secondStart].Links[0])
	gotEvent := (hdr >> 10) & 0x3F
	if gotEvent != 1 {
		t.Errorf("expected event counter reset to 1 after ECR, got %d", gotEvent)
	}
}

// LinkResetROCD forces idle on every link for 400 BX, postponing (not
// abandoning) the packet that was mid-emission when the reset landed: it
// must resume from its frozen WordCursor once the idle window ends and
// still run to completion.
func TestEmulator_LinkResetROCD(t *testing.T) {
	e := NewEmulator(RunConfig{
		Scheduler: SchedulerConfig{
			N:               600,
			L1ABX:           []int{10},
			LinkResetROCDBX: []int{20},
		},
		Delay: 7,
	})
	rows := e.Run()

	// The L1A at 10 starts a readout at 17; by BX 20 three words (HDR, CM,
	// CH0) have been emitted, leaving WordCursor at 3 when the link reset
	// forces idle from 20 through 419 regardless.
	for i := 20; i < 20+linkResetIdleDuration; i++ {
		for l := 0; l < NELinks; l++ {
			if rows[i].Links[l] != IdleWord {
				t.Errorf("row %d link %d: expected idle during link reset, got %s", i, l, rows[i].Links[l])
			}
		}
	}

	// Emission must resume at BX 420 with the word that was next in line
	// (WordCursor=3, i.e. CH1) rather than staying stuck forever.
	resumeBX := 20 + linkResetIdleDuration
	if rows[resumeBX].Links[0] == IdleWord {
		t.Errorf("row %d: expected the postponed packet to resume, got idle", resumeBX)
	}

	// The packet needs NWords-3 further words (cursor 3..40) to complete,
	// so it finishes at resumeBX + (NWords-3) - 1 with its IDLE slot; the
	// CRC word is emitted one BX before that.
	finishBX := resumeBX + (NWords - 3) - 1
	crcBX := finishBX - 1
	if rows[crcBX].Links[0] == IdleWord {
		t.Errorf("row %d: expected the final CRC word, got idle", crcBX)
	}
	if e.queue.Len() != 0 {
		t.Errorf("expected the postponed packet to fully drain the queue, got %d entries remaining", e.queue.Len())
	}
}

func TestEmulator_FastCommandRotation(t *testing.T) {
	e := NewEmulator(RunConfig{
		Scheduler: SchedulerConfig{N: 100, ECR: true, ECRBX: []int{10}},
	})
	rows := e.Run()
	// original ECR at index 10 should appear, after rotation, at index
	// (10 - FastCmdInternalLatency + n) % n i.e. rows[k] = original[k+7].
	if rows[3].Command != CmdECR {
		t.Errorf("expected rotated ECR at row 3, got %s", rows[3].Command)
	}
}
