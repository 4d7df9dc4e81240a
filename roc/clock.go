package roc

// Clock tracks the running (bx, orbit) pair, advanced one tick per BX and
// overridden by BCR/OCR/BCR_OCR resets before word emission at that BX.
type Clock struct {
	bx    uint16
	orbit uint16
}

// NewClock returns a clock starting at bx=bxStart, orbit=0.
func NewClock(bxStart uint32) *Clock {
	return &Clock{bx: uint16(bxStart % OrbitLast)}
}

// BX returns the current bunch counter.
func (c *Clock) BX() uint16 { return c.bx }

// Orbit returns the current orbit counter.
func (c *Clock) Orbit() uint16 { return c.orbit }

// Advance applies the default increment, then any reset override carried
// by cmd. Resets are applied in place of (not in addition to) the default
// increment's bx/orbit change.
func (c *Clock) Advance(cmd FastCommand) {
	c.bx++
	if c.bx >= OrbitLast {
		c.bx = 0
		c.orbit++
	}
	c.ApplyReset(cmd)
}

// ApplyReset applies only the reset override carried by cmd, without the
// default increment; used for the first BX of a run, which sits at bxStart.
func (c *Clock) ApplyReset(cmd FastCommand) {
	switch cmd {
	case CmdBCR:
		c.bx = OrbitBCR
	case CmdOCR:
		c.orbit = 0
	case CmdBCROCR:
		c.bx = OrbitBCR
		c.orbit = 0
	}
}
