package OB

import "testing"

func TestReadWriteCodePointASCII(t *testing.T) {
	data := []byte("hello")
	pos := 0
	for _, want := range data {
		cp, next := ReadCodePoint(data, pos)
		if cp != CodePoint(want) {
			t.Fatalf("ReadCodePoint at %d = %d, want %d", pos, cp, want)
		}
		if next != pos+1 {
			t.Fatalf("ReadCodePoint at %d advanced to %d, want %d", pos, next, pos+1)
		}
		pos = next
	}
}

func TestReadCodePointMultiByteLeader(t *testing.T) {
	// 0xE0 declares a 3-byte UTF-8 sequence.
	data := []byte{0xE0, 0x01, 0x02, 0xFF}
	cp, next := ReadCodePoint(data, 0)
	if next != 3 {
		t.Fatalf("ReadCodePoint consumed %d bytes, want 3", next)
	}
	want := CodePoint(0xE0) | CodePoint(0x01)<<8 | CodePoint(0x02)<<16
	if cp != want {
		t.Fatalf("ReadCodePoint = %#x, want %#x", cp, want)
	}
}

func TestReadCodePointClampsToRemaining(t *testing.T) {
	// A 4-byte leader with only 2 bytes left must not read out of bounds.
	data := []byte{0xF0, 0x01}
	cp, next := ReadCodePoint(data, 0)
	if next != 2 {
		t.Fatalf("ReadCodePoint consumed %d bytes, want 2 (clamped)", next)
	}
	want := CodePoint(0xF0) | CodePoint(0x01)<<8
	if cp != want {
		t.Fatalf("ReadCodePoint = %#x, want %#x", cp, want)
	}
}

func TestWriteCodePointRoundTrip(t *testing.T) {
	// WriteCodePoint picks its byte count from the value's magnitude, and
	// that only agrees with ReadCodePoint's leading-byte-length inference
	// for code points that actually came from real UTF-8-shaped byte runs
	// (continuation bytes are always >= 0x80, so they are never the zero
	// high byte that would shorten the magnitude-based length). Build the
	// round-trip cases by reading genuine 1/2/3/4-byte sequences rather
	// than picking arbitrary hex constants.
	sequences := [][]byte{
		{0x41},                   // 'A', 1 byte
		{0xC2, 0xA9},             // U+00A9, 2 bytes
		{0xE2, 0x82, 0xAC},       // U+20AC, 3 bytes
		{0xF0, 0x9F, 0x98, 0x80}, // U+1F600, 4 bytes
	}
	for _, seq := range sequences {
		cp, readLen := ReadCodePoint(seq, 0)
		if readLen != len(seq) {
			t.Fatalf("ReadCodePoint(%x) consumed %d bytes, want %d", seq, readLen, len(seq))
		}
		buf := make([]byte, 8)
		next, ok := WriteCodePoint(cp, buf, 0)
		if !ok {
			t.Fatalf("WriteCodePoint(%#x) failed", cp)
		}
		got, readNext := ReadCodePoint(buf[:next], 0)
		if readNext != next {
			t.Fatalf("round trip length mismatch for %#x: wrote %d, read %d", cp, next, readNext)
		}
		if got != cp {
			t.Fatalf("round trip mismatch: wrote %#x, read back %#x", cp, got)
		}
	}
}

func TestWriteCodePointInsufficientSpace(t *testing.T) {
	buf := make([]byte, 1)
	_, ok := WriteCodePoint(CodePoint(0x1234), buf, 0)
	if ok {
		t.Fatal("expected WriteCodePoint to fail when the value needs more room than is left")
	}
}

func TestSentinelsDistinct(t *testing.T) {
	if CodePointBegin == CodePointEnd {
		t.Fatal("CodePointBegin and CodePointEnd must be distinct")
	}
}

// A leading byte of 0xFF never declares a multi-byte sequence (it falls
// through utf8LeadingByteLength's default case), so ReadCodePoint can
// never assemble a raw 4-byte run of 0xFF into CodePointBegin from real
// input.
func TestReadCodePointNeverProducesBeginSentinelFromInput(t *testing.T) {
	data := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	cp, next := ReadCodePoint(data, 0)
	if cp == CodePointBegin {
		t.Fatalf("ReadCodePoint produced the BEGIN sentinel from real input bytes")
	}
	if next != 1 {
		t.Fatalf("ReadCodePoint consumed %d bytes for a 0xFF leading byte, want 1", next)
	}
}
