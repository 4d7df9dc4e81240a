package roc

// RunConfig gathers everything the core needs to produce one run's output
// stream.
type RunConfig struct {
	Scheduler SchedulerConfig
	BXStart   uint32
	Delay     int // default 7, L1A-to-readout-start latency

	HamErrEnabled bool
	HamErrRate    float64

	Payload PayloadSource
}

// Emulator is the single-threaded, deterministic ROC/ECON-D core: one
// instance owns all of its own state, so two runs never share data.
type Emulator struct {
	cfg RunConfig

	clock   *Clock
	queue   *Queue
	payload PayloadSource
	em      emitter

	eventCounter         uint8 // 6-bit, wraps at 64; starts at 1 on power-on and after ECR
	linkResetIdleCounter int
}

// NewEmulator constructs an Emulator ready to Run.
func NewEmulator(cfg RunConfig) *Emulator {
	if cfg.Delay == 0 {
		cfg.Delay = 7
	}
	payload := cfg.Payload
	if payload == nil {
		payload = ZeroSource{}
	}
	return &Emulator{
		cfg:          cfg,
		clock:        NewClock(cfg.BXStart),
		queue:        NewQueue(cfg.Delay),
		payload:      payload,
		eventCounter: 1,
	}
}

// Run drives the core loop: one iteration per global BX, from bxStart
// through max(N, lastPendingEvent.EndBX+1), then applies the
// fast-command latency rotation before returning the rows.
func (e *Emulator) Run() []Row {
	schedule := BuildSchedule(e.cfg.Scheduler)
	l1aSet := make(map[int]bool, len(schedule.L1ABXs))
	for _, bx := range schedule.L1ABXs {
		l1aSet[bx] = true
	}

	totalLen := e.cfg.Scheduler.N
	rows := make([]Row, 0, totalLen)

	for i := 0; i < totalLen; i++ {
		cmd := CmdIdle
		if i < len(schedule.Commands) {
			cmd = schedule.Commands[i]
		}

		if i == 0 {
			e.clock.ApplyReset(cmd)
		} else {
			e.clock.Advance(cmd)
		}
		capturedBX := e.clock.BX()
		capturedOrbit := e.clock.Orbit()

		switch cmd {
		case CmdECR:
			e.eventCounter = 1
		case CmdEBR:
			e.queue.ApplyEBR(e.currentWordCursor())
			e.eventCounter = 1
		case CmdLinkResetROCD:
			e.linkResetIdleCounter = linkResetIdleDuration
		}

		if l1aSet[i] {
			ev := e.queue.AcceptL1A(GlobalBX(i), capturedBX, capturedOrbit)
			if int(ev.EndBX)+1 > totalLen {
				totalLen = int(ev.EndBX) + 1
			}
		}

		row := Row{CLK: GlobalBX(e.cfg.BXStart) + GlobalBX(i), ResetB: true, SoftResetB: true, Command: cmd}
		e.emitWords(GlobalBX(i), &row)
		rows = append(rows, row)
	}

	rotateFastCommands(rows)
	return rows
}

// currentWordCursor reports the in-flight packet's cursor, or 0 if the
// queue is empty.
func (e *Emulator) currentWordCursor() int {
	if head := e.queue.Head(); head != nil {
		return head.WordCursor
	}
	return 0
}

// emitWords fills in row.Links for global BX i.
func (e *Emulator) emitWords(i GlobalBX, row *Row) {
	if e.linkResetIdleCounter > 0 {
		idle := idleWordFor(e.clock.BX())
		for l := 0; l < NELinks; l++ {
			row.Links[l] = idle
		}
		e.linkResetIdleCounter--
		return
	}

	head := e.queue.Head()
	if head != nil && i >= head.StartBX {
		kind := packetLayout[head.WordCursor]
		for l := 0; l < NELinks; l++ {
			row.Links[l] = e.em.resolve(kind, LinkID(l), head, e.eventCounter, e.payload, e.cfg.HamErrEnabled, e.cfg.HamErrRate)
		}
		head.WordCursor++
		if head.WordCursor == NWords {
			e.queue.PopHead()
			e.eventCounter = (e.eventCounter + 1) % 64
		}
		return
	}

	idle := idleWordFor(e.clock.BX())
	for l := 0; l < NELinks; l++ {
		row.Links[l] = idle
	}
}

// rotateFastCommands applies the FASTCMD_INTERNAL_LATENCY=7 left rotation
// to the fast-command channel only: position k of the output equals the
// original command scheduled at k+7 mod len.
func rotateFastCommands(rows []Row) {
	n := len(rows)
	if n == 0 {
		return
	}
	original := make([]FastCommand, n)
	for i, r := range rows {
		original[i] = r.Command
	}
	for k := range rows {
		rows[k].Command = original[(k+FastCmdInternalLatency)%n]
	}
}
