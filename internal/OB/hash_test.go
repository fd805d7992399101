package OB

import "testing"

func TestHashDeterministic(t *testing.T) {
	a := Hash(uint64(1), "hello", []byte{1, 2, 3})
	b := Hash(uint64(1), "hello", []byte{1, 2, 3})
	if a != b {
		t.Fatalf("Hash is not deterministic: %d != %d", a, b)
	}
}

func TestHashSensitiveToOrder(t *testing.T) {
	a := Hash(uint64(1), uint64(2))
	b := Hash(uint64(2), uint64(1))
	if a == b {
		t.Fatalf("Hash(1,2) == Hash(2,1): chunk order should matter")
	}
}

func TestHashSensitiveToLengthPrefix(t *testing.T) {
	// "ab" + "c" and "a" + "bc" must not collide despite equal concatenation,
	// since chunks are length-prefixed independently.
	a := Hash("ab", "c")
	b := Hash("a", "bc")
	if a == b {
		t.Fatalf("Hash(\"ab\",\"c\") collided with Hash(\"a\",\"bc\"): length prefixing broken")
	}
}

func TestHash128HalvesDifferAndLowHalfMatchesHash64(t *testing.T) {
	lo, hi := Hash128(uint64(7))
	if lo == hi {
		t.Fatalf("Hash128 low and high halves coincided: lo=%d hi=%d (unlikely for a correct implementation)", lo, hi)
	}
	single := Hash(uint64(7))
	if single != lo {
		t.Fatalf("Hash128 low half %d != Hash 64-bit digest %d for the same input", lo, single)
	}
}

func TestHashUnsupportedTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Update to panic on an unsupported chunk type")
		}
	}()
	NewHasher().Update(struct{}{})
}
