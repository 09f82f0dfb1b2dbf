package dntl

import (
	"errors"
	"testing"
)

func TestForwardInverseSigned(t *testing.T) {
	for _, n := range []int{8, 64} {
		eng, err := NewEngine(257, 3, n, SignedCentered)
		if err != nil {
			t.Fatalf("engine n=%d: %v", n, err)
		}
		coeffs := make([]uint64, n)
		for i := range coeffs {
			coeffs[i] = uint64((i*31 + 7) % 257)
		}
		in := NewCoeffPoly(coeffs)
		rep, err := eng.Forward(in)
		if err != nil {
			t.Fatalf("forward: %v", err)
		}
		if rep.Domain() != DomainNTT {
			t.Fatalf("forward domain = %s", rep.Domain())
		}
		back, err := eng.Inverse(rep)
		if err != nil {
			t.Fatalf("inverse: %v", err)
		}
		if !back.Equal(in) {
			t.Fatalf("n=%d: round trip mismatch\n in: %v\nout: %v", n, in.Coeffs(), back.Coeffs())
		}
	}
}

func TestForwardInverseNatural(t *testing.T) {
	for _, n := range []int{8, 64} {
		eng, err := NewEngine(257, 3, n, NaturalShifted)
		if err != nil {
			t.Fatalf("engine n=%d: %v", n, err)
		}
		coeffs := make([]uint64, n)
		for i := range coeffs {
			// Representatives in [1, 256]: non-zero residues round-trip
			// to themselves.
			coeffs[i] = uint64((i*13)%256) + 1
		}
		in := NewCoeffPoly(coeffs)
		rep, err := eng.Forward(in)
		if err != nil {
			t.Fatalf("forward: %v", err)
		}
		for i, c := range rep.Coeffs() {
			if c == 0 || c > 257 {
				t.Fatalf("n=%d: transform coeff %d = %d outside [1, 257]", n, i, c)
			}
		}
		back, err := eng.Inverse(rep)
		if err != nil {
			t.Fatalf("inverse: %v", err)
		}
		if !back.Equal(in) {
			t.Fatalf("n=%d: round trip mismatch\n in: %v\nout: %v", n, in.Coeffs(), back.Coeffs())
		}
	}
}

func TestNaturalSentinelRoundTrip(t *testing.T) {
	eng, err := NewEngine(257, 3, 8, NaturalShifted)
	if err != nil {
		t.Fatal(err)
	}
	// The sentinel 257 stands for the residue zero and must come back as
	// 257, never 0.
	in := NewCoeffPoly([]uint64{257, 1, 2, 3, 4, 5, 6, 7})
	rep, err := eng.Forward(in)
	if err != nil {
		t.Fatal(err)
	}
	back, err := eng.Inverse(rep)
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range back.Coeffs() {
		if c == 0 {
			t.Fatalf("coeff %d decoded to raw zero", i)
		}
	}
	if !back.Equal(in) {
		t.Fatalf("round trip mismatch: %v -> %v", in.Coeffs(), back.Coeffs())
	}
}

func TestTransformDomainChecks(t *testing.T) {
	eng, err := NewEngine(257, 3, 8, SignedCentered)
	if err != nil {
		t.Fatal(err)
	}
	ntt := NewNTTPoly(make([]uint64, 8))
	if _, err := eng.Forward(ntt); !errors.Is(err, ErrDomainMismatch) {
		t.Fatalf("Forward on transform-domain input: err = %v", err)
	}
	coeff := NewCoeffPoly(make([]uint64, 8))
	if _, err := eng.Inverse(coeff); !errors.Is(err, ErrDomainMismatch) {
		t.Fatalf("Inverse on coefficient-domain input: err = %v", err)
	}
}

func TestPointwiseZeroRemap(t *testing.T) {
	a := NewNTTPoly([]uint64{0, 5, 100})
	b := NewNTTPoly([]uint64{9, 0, 200})
	prod, err := PointwiseMul(a, b, 257)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint64{257, 257, mulMod(100, 200, 257)}
	for i, c := range prod.Coeffs() {
		if c != want[i] {
			t.Fatalf("mul coeff %d = %d, want %d", i, c, want[i])
		}
	}

	// 100 + 157 = 257 = 0 mod q, remapped to the sentinel.
	sum, err := PointwiseAdd(NewNTTPoly([]uint64{100}), NewNTTPoly([]uint64{157}), 257)
	if err != nil {
		t.Fatal(err)
	}
	if got := sum.Coeffs()[0]; got != 257 {
		t.Fatalf("add coeff = %d, want 257", got)
	}
}

func TestPointwiseMismatch(t *testing.T) {
	a := NewNTTPoly([]uint64{1, 2})
	b := NewCoeffPoly([]uint64{1, 2})
	if _, err := PointwiseMul(a, b, 257); !errors.Is(err, ErrDomainMismatch) {
		t.Fatalf("cross-domain mul: err = %v", err)
	}
	if _, err := PointwiseAdd(a, NewNTTPoly([]uint64{1}), 257); err == nil {
		t.Fatal("length-mismatch add succeeded")
	}
}

func TestForwardIsLinearTransform(t *testing.T) {
	eng, err := NewEngine(257, 3, 8, SignedCentered)
	if err != nil {
		t.Fatal(err)
	}
	// Delta at position 0 transforms to the all-ones vector.
	delta := make([]uint64, 8)
	delta[0] = 1
	rep, err := eng.Forward(NewCoeffPoly(delta))
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range rep.Coeffs() {
		if c != 1 {
			t.Fatalf("F(delta)[%d] = %d, want 1", i, c)
		}
	}
}
