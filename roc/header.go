package roc

import "math/rand"

// headerFields are the bit-packed contents of one HDR word, before the
// hamming bits and trailing nibble are resolved.
type headerFields struct {
	bx    uint16 // 12 bits, capturedBX
	event uint8  // 6 bits
	orbit uint8  // 3 bits
}

// packBase packs the header's leading nibble, bx, event and orbit fields,
// leaving the hamming and trailing nibble zeroed. This partial word is
// what seeds the header-derived PRNG: it is fixed for a given
// (capturedBX, eventCounter, capturedOrbit) triple regardless of whether
// hamming injection is enabled, so enabling it never perturbs the CM draw.
func (h headerFields) packBase() uint32 {
	var w uint32
	w |= 0xF << 28
	w |= uint32(h.bx&0xFFF) << 16
	w |= uint32(h.event&0x3F) << 10
	w |= uint32(h.orbit&0x7) << 7
	return w
}

// cmSalt and hammingSalt separate the two header-derived draw streams so
// enabling/disabling hamming injection never changes the CM values, and
// vice versa, even though both seed from the same header bits.
const (
	cmSalt      = 0x9E3779B9
	hammingSalt = 0x85EBCA6B
)

func headerPRNG(base uint32, salt uint32) *rand.Rand {
	return rand.New(rand.NewSource(int64(base) ^ int64(salt)))
}

// buildHeaderWord constructs the HDR word: 1111 | bx(12) | event(6) |
// orbit(3) | hamming(3) | 0101. hamming is 3 zero bits unless fault
// injection is enabled, in which case a deterministic PRNG seeded from
// the header's high-order bits decides, with probability hamErrRate, to
// replace them with a uniformly chosen nonzero value in [1,7].
func buildHeaderWord(h headerFields, hamErrEnabled bool, hamErrRate float64) Word {
	base := h.packBase()

	var hamming uint32
	if hamErrEnabled {
		prng := headerPRNG(base, hammingSalt)
		if prng.Float64() < hamErrRate {
			hamming = uint32(1 + prng.Intn(7))
		}
	}

	word := base | (hamming&0x7)<<4 | 0x5
	return Word(word)
}

// buildCMWord constructs the CM word: 00 | 0000000000 | cm0(10) | cm1(10).
// cm0, cm1 = cmScale + U0, cmScale + U1, with cmScale = (R0 mod 16) << 6
// and R0, U0, U1 drawn in order from a PRNG seeded deterministically from
// the owning packet's header bits, so CM is reproducible from the header
// alone.
func buildCMWord(h headerFields) Word {
	base := h.packBase()
	prng := headerPRNG(base, cmSalt)

	r0 := prng.Intn(16)
	u0 := prng.Intn(64)
	u1 := prng.Intn(64)

	cmScale := uint32(r0) << 6
	cm0 := (cmScale + uint32(u0)) & 0x3FF
	cm1 := (cmScale + uint32(u1)) & 0x3FF

	word := (cm0 << 10) | cm1
	return Word(word)
}
