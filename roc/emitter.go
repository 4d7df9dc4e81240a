package roc

// linkResetIdleDuration is the number of BX a LinkResetROCD suppresses
// queue consumption, forcing idle words on every link.
const linkResetIdleDuration = 400

// emitter carries the per-link CRC history and resolves one word per link
// per BX. It holds no state beyond what's needed to compute the CRC word,
// everything else (clock values, counters) is passed in per call.
type emitter struct {
	history [NELinks][NWords - 2]Word // HDR, CM, CH0..CH36 for the in-flight packet
}

// resolve maps one packetLayout slot, on one link, to a concrete Word: a
// tagged-union resolution (Literal | Header | CommonMode | CRC |
// IdleSentinel) done inline at emit time rather than threading string
// tokens through the pipeline.
func (em *emitter) resolve(kind ChannelName, link LinkID, ev *PendingEvent, eventCounter uint8, payload PayloadSource, hamErrEnabled bool, hamErrRate float64) Word {
	switch {
	case kind == WordHDR:
		h := headerFields{bx: ev.CapturedBX, event: eventCounter % 64, orbit: uint8(ev.CapturedOrbit % 8)}
		w := buildHeaderWord(h, hamErrEnabled, hamErrRate)
		em.history[link][ev.WordCursor] = w
		return w
	case kind == WordCM:
		h := headerFields{bx: ev.CapturedBX, event: eventCounter % 64, orbit: uint8(ev.CapturedOrbit % 8)}
		w := buildCMWord(h)
		em.history[link][ev.WordCursor] = w
		return w
	case kind == WordCRC:
		return crcForLink(em.history[link][:])
	case kind == WordIDLE:
		return IdleWord
	case kind.IsChannel():
		w := payload.LookupWord(ev.SourceEventIndex, link, kind)
		em.history[link][ev.WordCursor] = w
		return w
	default:
		return 0
	}
}

// idleWordFor returns the idle pattern for the given current bx value,
// marking BC0 specially.
func idleWordFor(bx uint16) Word {
	if bx == 0 {
		return IdleWordBC0
	}
	return IdleWord
}
