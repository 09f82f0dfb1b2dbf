package dntl

import "testing"

func TestPresetsValidate(t *testing.T) {
	makers := []func() (*ParameterSet, error){
		PresetSigned64, PresetSigned64Seed24, PresetSigned128,
		PresetNatural64, PresetNatural128, PresetNatural256,
	}
	seen := map[string]bool{}
	for _, mk := range makers {
		ps, err := mk()
		if err != nil {
			t.Fatalf("preset: %v", err)
		}
		if seen[ps.Name] {
			t.Fatalf("duplicate preset name %q", ps.Name)
		}
		seen[ps.Name] = true
		if ps.AVec != ps.N-2 {
			t.Fatalf("%s: AVec = %d, want %d", ps.Name, ps.AVec, ps.N-2)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	base, err := PresetNatural64()
	if err != nil {
		t.Fatal(err)
	}

	bad := *base
	bad.N = 63
	if err := bad.Validate(); err == nil {
		t.Fatal("non-power-of-two N accepted")
	}

	bad = *base
	bad.SeedSize = 20
	if err := bad.Validate(); err == nil {
		t.Fatal("seed size 20 accepted")
	}

	bad = *base
	bad.AVec = 60
	if err := bad.Validate(); err == nil {
		t.Fatal("AVec != N-2 accepted")
	}

	bad = *base
	bad.Q = 255
	if err := bad.Validate(); err == nil {
		t.Fatal("Q-1 not divisible by N accepted")
	}
}

func TestCandidateResidueNatural(t *testing.T) {
	ps, err := PresetNatural64()
	if err != nil {
		t.Fatal(err)
	}
	if got := ps.candidateCount(); got != 257 {
		t.Fatalf("candidate count = %d, want 257", got)
	}
	if got := ps.candidateResidue(0); got != 1 {
		t.Fatalf("residue(0) = %d, want 1", got)
	}
	if got := ps.candidateResidue(255); got != 256 {
		t.Fatalf("residue(255) = %d, want 256", got)
	}
	// The top index maps to the sentinel and folds onto 1.
	if got := ps.candidateResidue(256); got != 1 {
		t.Fatalf("residue(256) = %d, want 1", got)
	}
}

func TestCandidateResidueSigned(t *testing.T) {
	ps, err := PresetSigned64()
	if err != nil {
		t.Fatal(err)
	}
	if got := ps.candidateCount(); got != 254 {
		t.Fatalf("candidate count = %d, want 254", got)
	}
	// Indices 0..126 cover -127..-1 as 130..256, indices 127..253 cover
	// 1..127.
	if got := ps.candidateResidue(0); got != 130 {
		t.Fatalf("residue(0) = %d, want 130", got)
	}
	if got := ps.candidateResidue(126); got != 256 {
		t.Fatalf("residue(126) = %d, want 256", got)
	}
	if got := ps.candidateResidue(127); got != 1 {
		t.Fatalf("residue(127) = %d, want 1", got)
	}
	if got := ps.candidateResidue(253); got != 127 {
		t.Fatalf("residue(253) = %d, want 127", got)
	}
	// Zero is never a candidate.
	for idx := uint64(0); idx < ps.candidateCount(); idx++ {
		if ps.candidateResidue(idx)%ps.Q == 0 {
			t.Fatalf("index %d maps to residue zero", idx)
		}
	}
}

func TestViolatesZeroAvoidance(t *testing.T) {
	signed, err := PresetSigned64()
	if err != nil {
		t.Fatal(err)
	}
	if !signed.violatesZeroAvoidance(NewNTTPoly([]uint64{5, 0, 9})) {
		t.Fatal("signed: raw zero not flagged")
	}
	if signed.violatesZeroAvoidance(NewNTTPoly([]uint64{1, 256, 130})) {
		t.Fatal("signed: non-zero vector flagged")
	}

	natural, err := PresetNatural64()
	if err != nil {
		t.Fatal(err)
	}
	if !natural.violatesZeroAvoidance(NewNTTPoly([]uint64{5, 257, 9})) {
		t.Fatal("natural: sentinel not flagged")
	}
	if natural.violatesZeroAvoidance(NewNTTPoly([]uint64{1, 256, 130})) {
		t.Fatal("natural: in-range vector flagged")
	}
}

func TestConventionString(t *testing.T) {
	if SignedCentered.String() != "signed" || NaturalShifted.String() != "natural" {
		t.Fatal("convention names changed")
	}
}
