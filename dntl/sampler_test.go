package dntl

import (
	"bytes"
	"testing"
)

func testEngine(t *testing.T, ps *ParameterSet) *Engine {
	t.Helper()
	eng, err := NewEngine(ps.Q, ps.R, ps.N, ps.Convention)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return eng
}

func TestSampleBasisDeterministic(t *testing.T) {
	for _, mk := range []func() (*ParameterSet, error){PresetSigned64, PresetNatural64} {
		ps, err := mk()
		if err != nil {
			t.Fatal(err)
		}
		eng := testEngine(t, ps)
		seed := bytes.Repeat([]byte{0x42}, ps.SeedSize)

		b1, err := SampleBasis(ps, eng, seed)
		if err != nil {
			t.Fatalf("%s: sample: %v", ps.Name, err)
		}
		b2, err := SampleBasis(ps, eng, seed)
		if err != nil {
			t.Fatalf("%s: resample: %v", ps.Name, err)
		}
		if len(b1.Layers) != len(b2.Layers) {
			t.Fatalf("%s: layer counts differ", ps.Name)
		}
		for u := range b1.Layers {
			if len(b1.Layers[u]) != len(b2.Layers[u]) {
				t.Fatalf("%s: layer %d sizes differ", ps.Name, u)
			}
			for i := range b1.Layers[u] {
				if !b1.Layers[u][i].Equal(b2.Layers[u][i]) {
					t.Fatalf("%s: layer %d vector %d differs between equal seeds", ps.Name, u, i)
				}
			}
		}
	}
}

func TestSampleBasisSeedSeparation(t *testing.T) {
	ps, err := PresetNatural64()
	if err != nil {
		t.Fatal(err)
	}
	eng := testEngine(t, ps)

	b1, err := SampleBasis(ps, eng, bytes.Repeat([]byte{1}, ps.SeedSize))
	if err != nil {
		t.Fatal(err)
	}
	b2, err := SampleBasis(ps, eng, bytes.Repeat([]byte{2}, ps.SeedSize))
	if err != nil {
		t.Fatal(err)
	}
	if b1.Layers[0][0].Equal(b2.Layers[0][0]) {
		t.Fatal("distinct seeds produced an identical first vector")
	}
}

func TestSampleBasisShape(t *testing.T) {
	for _, mk := range []func() (*ParameterSet, error){PresetSigned64, PresetNatural64, PresetNatural128} {
		ps, err := mk()
		if err != nil {
			t.Fatal(err)
		}
		eng := testEngine(t, ps)
		basis, err := SampleBasis(ps, eng, make([]byte, ps.SeedSize))
		if err != nil {
			t.Fatalf("%s: %v", ps.Name, err)
		}
		if len(basis.Layers) != ps.K {
			t.Fatalf("%s: %d layers, want %d", ps.Name, len(basis.Layers), ps.K)
		}
		if got := len(basis.Layers[0]); got != ps.N {
			t.Fatalf("%s: core layer has %d vectors, want %d", ps.Name, got, ps.N)
		}
		for u := 1; u < ps.K; u++ {
			if got := len(basis.Layers[u]); got != ps.AVec {
				t.Fatalf("%s: layer %d has %d vectors, want %d", ps.Name, u, got, ps.AVec)
			}
		}
	}
}

func TestSampleBasisVectorsAvoidZero(t *testing.T) {
	for _, mk := range []func() (*ParameterSet, error){PresetSigned64, PresetNatural64} {
		ps, err := mk()
		if err != nil {
			t.Fatal(err)
		}
		eng := testEngine(t, ps)
		basis, err := SampleBasis(ps, eng, bytes.Repeat([]byte{7}, ps.SeedSize))
		if err != nil {
			t.Fatal(err)
		}
		for u, layer := range basis.Layers {
			for i, v := range layer {
				if v.Domain() != DomainNTT {
					t.Fatalf("%s: layer %d vector %d in %s domain", ps.Name, u, i, v.Domain())
				}
				if v.Len() != ps.N {
					t.Fatalf("%s: layer %d vector %d length %d", ps.Name, u, i, v.Len())
				}
				if ps.violatesZeroAvoidance(v) {
					t.Fatalf("%s: layer %d vector %d hits the exclusion zone", ps.Name, u, i)
				}
			}
		}
	}
}

func TestSampleBasisAccumulatorInvariant(t *testing.T) {
	ps, err := PresetSigned64()
	if err != nil {
		t.Fatal(err)
	}
	eng := testEngine(t, ps)
	basis, err := SampleBasis(ps, eng, bytes.Repeat([]byte{9}, ps.SeedSize))
	if err != nil {
		t.Fatal(err)
	}
	// The running product of each layer's pairs must stay out of the
	// exclusion zone at every prefix.
	for u, layer := range basis.Layers {
		var acc Poly
		have := false
		for i := 0; i+1 < len(layer); i += 2 {
			prod, err := PointwiseMul(layer[i], layer[i+1], ps.Q)
			if err != nil {
				t.Fatal(err)
			}
			if have {
				if prod, err = PointwiseMul(acc, prod, ps.Q); err != nil {
					t.Fatal(err)
				}
			}
			if ps.violatesZeroAvoidance(prod) {
				t.Fatalf("layer %d: accumulator in exclusion zone after pair %d", u, i/2)
			}
			acc, have = prod, true
		}
	}
}
