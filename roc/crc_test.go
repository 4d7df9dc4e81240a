package roc

import "testing"

func TestCRC32NonReflected_Zero(t *testing.T) {
	// CRC of an all-zero message under init=0 is 0.
	data := make([]byte, 4*39)
	if got := crc32NonReflected(data); got != 0 {
		t.Errorf("expected 0, got %08X", got)
	}
}

func TestCRC32NonReflected_Deterministic(t *testing.T) {
	words := make([]Word, 39)
	for i := range words {
		words[i] = Word(i * 7)
	}
	a := crcForLink(words)
	b := crcForLink(words)
	if a != b {
		t.Errorf("CRC not deterministic: %08X vs %08X", a, b)
	}
}

func TestCRC32NonReflected_SensitiveToInput(t *testing.T) {
	a := make([]Word, 39)
	b := make([]Word, 39)
	b[10] = 1
	if crcForLink(a) == crcForLink(b) {
		t.Errorf("expected different CRCs for different inputs")
	}
}

func TestWordsToBytes_BigEndian(t *testing.T) {
	got := wordsToBytes([]Word{0x01020304})
	want := []byte{0x01, 0x02, 0x03, 0x04}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d: got %02X want %02X", i, got[i], want[i])
		}
	}
}
