package dntl

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/tuneinsight/lattigo/v4/utils"
)

const (
	// maxVectorTrials bounds the per-vector accept/reject loop. The
	// exclusion zone is narrow relative to the modulus, so the expected
	// trial count is low; the bound only gives a defined failure mode.
	maxVectorTrials = 1024
	// maxPairTrials bounds the accumulator accept/reject loop per pair.
	maxPairTrials = 256
)

// Basis is a structured multi-layer matrix of transform-domain vectors.
// Layer 0 holds N/2 accepted pairs ("core"), layers 1..K-1 hold AVec/2
// pairs each ("sVP"). A Basis is derived deterministically from a seed and
// never mutated afterwards.
type Basis struct {
	Layers [][]Poly
}

// SampleBasis expands seed into a Basis for the given parameter set, using
// eng (the primary-modulus engine) to validate every draw. The expansion is
// driven by a keyed PRNG instance seeded once from seed, so equal seeds
// yield equal bases and no generator state is shared across calls.
func SampleBasis(ps *ParameterSet, eng *Engine, seed []byte) (*Basis, error) {
	prng, err := utils.NewKeyedPRNG(seed)
	if err != nil {
		return nil, fmt.Errorf("sample basis: keyed prng: %w", err)
	}

	withAcc := ps.Convention == SignedCentered
	layers := make([][]Poly, 0, ps.K)

	core, err := sampleLayer(ps, eng, prng, ps.N/2, withAcc)
	if err != nil {
		return nil, fmt.Errorf("core layer: %w", err)
	}
	layers = append(layers, core)

	for u := 1; u < ps.K; u++ {
		layer, err := sampleLayer(ps, eng, prng, ps.AVec/2, withAcc)
		if err != nil {
			return nil, fmt.Errorf("sVP layer %d: %w", u, err)
		}
		layers = append(layers, layer)
	}
	return &Basis{Layers: layers}, nil
}

// sampleLayer draws pairs accepted pairs of validated transform-domain
// vectors. When withAcc is set, a running pointwise product of the accepted
// pairs is maintained and a pair is rejected whenever the accumulator lands
// in the exclusion zone; the accumulator starts fresh for every layer.
func sampleLayer(ps *ParameterSet, eng *Engine, prng io.Reader, pairs int, withAcc bool) ([]Poly, error) {
	vecs := make([]Poly, 0, pairs*2)
	var acc Poly
	haveAcc := false

	for i := 0; i < pairs; i++ {
		accepted := false
		for trial := 0; trial < maxPairTrials; trial++ {
			v1, err := drawVector(ps, eng, prng)
			if err != nil {
				return nil, err
			}
			v2, err := drawVector(ps, eng, prng)
			if err != nil {
				return nil, err
			}
			if withAcc {
				prod, err := PointwiseMul(v1, v2, ps.Q)
				if err != nil {
					return nil, err
				}
				if haveAcc {
					if prod, err = PointwiseMul(acc, prod, ps.Q); err != nil {
						return nil, err
					}
				}
				if ps.violatesZeroAvoidance(prod) {
					continue
				}
				acc, haveAcc = prod, true
			}
			vecs = append(vecs, v1, v2)
			accepted = true
			break
		}
		if !accepted {
			return nil, fmt.Errorf("pair %d: %w", i, ErrSamplingExhausted)
		}
	}
	return vecs, nil
}

// drawVector samples coefficient vectors uniformly from the candidate range
// until the forward transform of one avoids the exclusion zone, and returns
// that transform-domain vector.
func drawVector(ps *ParameterSet, eng *Engine, prng io.Reader) (Poly, error) {
	var buf [8]byte
	coeffs := make([]uint64, ps.N)
	for trial := 0; trial < maxVectorTrials; trial++ {
		for i := range coeffs {
			idx, err := uniformIndex(prng, buf[:], ps.candidateCount())
			if err != nil {
				return Poly{}, fmt.Errorf("draw vector: %w", err)
			}
			coeffs[i] = ps.candidateResidue(idx)
		}
		rep, err := eng.Forward(NewCoeffPoly(coeffs))
		if err != nil {
			return Poly{}, err
		}
		if !ps.violatesZeroAvoidance(rep) {
			return rep, nil
		}
	}
	return Poly{}, fmt.Errorf("vector draw: %w", ErrSamplingExhausted)
}

// uniformIndex draws a uniform value in [0, bound) from prng, rejecting
// words above the largest multiple of bound to avoid modulo bias.
func uniformIndex(prng io.Reader, buf []byte, bound uint64) (uint64, error) {
	threshold := (math.MaxUint64 / bound) * bound
	for {
		if _, err := io.ReadFull(prng, buf); err != nil {
			return 0, fmt.Errorf("prng read: %w", err)
		}
		word := binary.LittleEndian.Uint64(buf)
		if word < threshold {
			return word % bound, nil
		}
	}
}
