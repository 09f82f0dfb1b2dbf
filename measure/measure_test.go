package measure

import (
	"math"
	"testing"
)

func TestRegistryAddAndReset(t *testing.T) {
	r := NewRegistry()
	r.Add("a", 10)
	r.Add("a", 5)
	r.Add("b", 1)
	r.Add("b", -7) // ignored

	snap := r.SnapshotAndReset()
	if snap["a"] != 15 || snap["b"] != 1 {
		t.Fatalf("snapshot = %v", snap)
	}
	if again := r.SnapshotAndReset(); len(again) != 0 {
		t.Fatalf("registry not cleared: %v", again)
	}
}

func TestBitEntropy(t *testing.T) {
	if got := BitEntropy(nil); got != 0 {
		t.Fatalf("empty entropy = %v", got)
	}
	// All-zero and all-one byte streams carry no bit entropy.
	if got := BitEntropy([]uint64{0, 0, 0}); got != 0 {
		t.Fatalf("zero entropy = %v", got)
	}
	if got := BitEntropy([]uint64{0xFF, 0xFF}); got != 0 {
		t.Fatalf("ones entropy = %v", got)
	}
	// Half the bits set: one bit per symbol.
	if got := BitEntropy([]uint64{0x0F, 0xF0}); math.Abs(got-1) > 1e-12 {
		t.Fatalf("balanced entropy = %v, want 1", got)
	}
}
