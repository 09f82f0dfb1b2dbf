package dntl

import (
	"errors"
	"fmt"
	"math"
)

// Convention selects the residue convention of a parameter set and its
// transform engines.
type Convention uint8

const (
	// SignedCentered keeps residues in [0, q) and forbids transform
	// coordinates whose centered value lies in [-X, X].
	SignedCentered Convention = iota + 1
	// NaturalShifted keeps residues in [1, q]; the representative q stands
	// for the residue zero and is the forbidden sentinel.
	NaturalShifted
)

func (c Convention) String() string {
	switch c {
	case SignedCentered:
		return "signed"
	case NaturalShifted:
		return "natural"
	default:
		return "invalid"
	}
}

// ParameterSet is the immutable configuration of one scheme instance.
type ParameterSet struct {
	Name       string
	Convention Convention

	// K is the layer count of a structured basis; layer 0 holds N/2 vector
	// pairs, layers 1..K-1 hold AVec/2 pairs each.
	K    int
	N    int
	AVec int

	// Primary transform modulus/root and the second-stage pair.
	Q  uint64
	R  uint64
	Q2 uint64
	R2 uint64

	// X is the zero-avoidance half-width of the signed-centered exclusion
	// zone; the natural-shifted convention ignores it and forbids the
	// sentinel Q instead.
	X uint64

	SeedSize int

	// Secret key distribution.
	AllowedValues []int64
	MaxNorm       float64
	// MaxMappedNorm bounds the shifted copy x - MappedShift; zero disables
	// the check (signed-centered sets).
	MaxMappedNorm float64
	MappedShift   int64
	Sigma         float64
}

// Validate checks the structural invariants of a parameter set.
func (p *ParameterSet) Validate() error {
	if p.N <= 0 || p.N&(p.N-1) != 0 {
		return fmt.Errorf("params %q: N=%d is not a power of two", p.Name, p.N)
	}
	if p.Q < 3 || (p.Q-1)%uint64(p.N) != 0 {
		return fmt.Errorf("params %q: Q-1 must be divisible by N=%d", p.Name, p.N)
	}
	if (p.Q2-1)%uint64(p.N) != 0 {
		return fmt.Errorf("params %q: Q2-1 must be divisible by N=%d", p.Name, p.N)
	}
	if p.K < 1 {
		return fmt.Errorf("params %q: K=%d", p.Name, p.K)
	}
	if p.AVec != p.N-2 || p.AVec%2 != 0 {
		return fmt.Errorf("params %q: AVec=%d, want N-2 even", p.Name, p.AVec)
	}
	switch p.SeedSize {
	case 16, 24, 32:
	default:
		return fmt.Errorf("params %q: seed size %d not in {16,24,32}", p.Name, p.SeedSize)
	}
	if len(p.AllowedValues) == 0 {
		return errors.New("params: empty allowed value set")
	}
	if p.MaxNorm <= 0 {
		return errors.New("params: max norm must be positive")
	}
	switch p.Convention {
	case SignedCentered, NaturalShifted:
	default:
		return errors.New("params: invalid convention")
	}
	return nil
}

// candidateCount returns the size of the uniform candidate range basis
// vectors are drawn from.
func (p *ParameterSet) candidateCount() uint64 {
	if p.Convention == NaturalShifted {
		// [1, Q] inclusive, with the sentinel Q folded back onto 1.
		return p.Q
	}
	// [-(Q-1)/2 .. -1] and [1 .. (Q-1)/2], zero excluded.
	return p.Q - 3
}

// candidateResidue maps a uniform index in [0, candidateCount) to a residue
// in the convention's representative range.
func (p *ParameterSet) candidateResidue(idx uint64) uint64 {
	if p.Convention == NaturalShifted {
		v := idx + 1
		if v == p.Q {
			// Q stands for the residue zero; fold it onto 1.
			return 1
		}
		return v
	}
	half := (p.Q - 3) / 2
	if idx < half {
		// -half .. -1 embedded as Q-half .. Q-1.
		return p.Q - half + idx
	}
	return idx - half + 1
}

// violatesZeroAvoidance reports whether any coordinate of a transform-domain
// vector falls in the forbidden zone: centered absolute value <= X for the
// signed-centered convention, or the sentinel Q for the natural-shifted one.
func (p *ParameterSet) violatesZeroAvoidance(v Poly) bool {
	for _, c := range v.Coeffs() {
		if p.Convention == NaturalShifted {
			if c >= p.Q {
				return true
			}
			continue
		}
		cc := c % p.Q
		abs := cc
		if cc > p.Q/2 {
			abs = p.Q - cc
		}
		if abs <= p.X {
			return true
		}
	}
	return false
}

// PresetSigned64 returns the baseline signed-centered set: N=64, K=3,
// 16-byte seeds, secrets over +-1..6 with L2 bound 16.
func PresetSigned64() (*ParameterSet, error) {
	p := &ParameterSet{
		Name:          "signed-64-s16",
		Convention:    SignedCentered,
		K:             3,
		N:             64,
		AVec:          62,
		Q:             257,
		R:             3,
		Q2:            257,
		R2:            5,
		X:             0,
		SeedSize:      16,
		AllowedValues: []int64{-6, -5, -4, -3, -2, -1, 1, 2, 3, 4, 5, 6},
		MaxNorm:       16,
		Sigma:         2,
	}
	return p, p.Validate()
}

// PresetSigned64Seed24 matches PresetSigned64 with 24-byte transcript seeds.
func PresetSigned64Seed24() (*ParameterSet, error) {
	p, err := PresetSigned64()
	if err != nil {
		return nil, err
	}
	p.Name = "signed-64-s24"
	p.SeedSize = 24
	return p, p.Validate()
}

// PresetSigned128 returns the large signed-centered set: N=128, 32-byte
// seeds, L2 bound 16*sqrt(2).
func PresetSigned128() (*ParameterSet, error) {
	p := &ParameterSet{
		Name:          "signed-128-s32",
		Convention:    SignedCentered,
		K:             3,
		N:             128,
		AVec:          126,
		Q:             257,
		R:             3,
		Q2:            257,
		R2:            5,
		X:             0,
		SeedSize:      32,
		AllowedValues: []int64{-6, -5, -4, -3, -2, -1, 1, 2, 3, 4, 5, 6},
		MaxNorm:       22.627416998,
		Sigma:         2,
	}
	return p, p.Validate()
}

// PresetNatural64 returns the baseline natural-shifted set: N=64, K=2,
// 16-byte seeds, secrets over 1..5 with the mapped-norm constraint
// ||x-3|| <= sqrt(N).
func PresetNatural64() (*ParameterSet, error) {
	p := &ParameterSet{
		Name:          "natural-64-s16",
		Convention:    NaturalShifted,
		K:             2,
		N:             64,
		AVec:          62,
		Q:             257,
		R:             3,
		Q2:            257,
		R2:            5,
		X:             0,
		SeedSize:      16,
		AllowedValues: []int64{1, 2, 3, 4, 5},
		MaxNorm:       24,
		MaxMappedNorm: math.Sqrt(64),
		MappedShift:   3,
		Sigma:         1.3,
	}
	return p, p.Validate()
}

// PresetNatural128 returns the mid natural-shifted set: N=128, K=2,
// 24-byte seeds.
func PresetNatural128() (*ParameterSet, error) {
	p := &ParameterSet{
		Name:          "natural-128-s24",
		Convention:    NaturalShifted,
		K:             2,
		N:             128,
		AVec:          126,
		Q:             257,
		R:             3,
		Q2:            257,
		R2:            5,
		X:             0,
		SeedSize:      24,
		AllowedValues: []int64{1, 2, 3, 4, 5},
		MaxNorm:       48,
		MaxMappedNorm: math.Sqrt(128),
		MappedShift:   3,
		Sigma:         1.3,
	}
	return p, p.Validate()
}

// PresetNatural256 returns the large natural-shifted set: N=256, K=3,
// 32-byte seeds.
func PresetNatural256() (*ParameterSet, error) {
	p := &ParameterSet{
		Name:          "natural-256-s32",
		Convention:    NaturalShifted,
		K:             3,
		N:             256,
		AVec:          254,
		Q:             257,
		R:             3,
		Q2:            257,
		R2:            5,
		X:             0,
		SeedSize:      32,
		AllowedValues: []int64{1, 2, 3, 4, 5},
		MaxNorm:       100,
		MaxMappedNorm: math.Sqrt(256),
		MappedShift:   3,
		Sigma:         1,
	}
	return p, p.Validate()
}
