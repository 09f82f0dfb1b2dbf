package dntl

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// SchemeOpts bounds the retry loops of key generation and signing. Zero
// fields fall back to defaults.
type SchemeOpts struct {
	// MaxFoldTrialsPerSecret is the number of public-key folding attempts
	// allowed before the secret key is resampled.
	MaxFoldTrialsPerSecret int
	// MaxSecretResamples caps how many fresh secrets key generation may
	// try before reporting ErrKeyGenExhausted.
	MaxSecretResamples int
	// MaxSecretTrials caps the norm-bound accept/reject loop of one
	// secret draw.
	MaxSecretTrials int
	// MaxSignTrials caps the transcript retries of one signing call.
	MaxSignTrials int
}

func (o *SchemeOpts) applyDefaults() {
	if o.MaxFoldTrialsPerSecret == 0 {
		o.MaxFoldTrialsPerSecret = 5
	}
	if o.MaxSecretResamples == 0 {
		o.MaxSecretResamples = 64
	}
	if o.MaxSecretTrials == 0 {
		o.MaxSecretTrials = 10000
	}
	if o.MaxSignTrials == 0 {
		o.MaxSignTrials = 128
	}
}

// Scheme binds a parameter set to its two transform engines, the transcript
// XOF and a randomness source. Every key generation, signing or verification
// call builds its own basis and polynomial values, so one Scheme value may
// be shared across goroutines.
type Scheme struct {
	params *ParameterSet
	eng    *Engine
	eng2   *Engine
	xof    XOF
	rand   io.Reader
	opts   SchemeOpts
}

// NewScheme builds a Scheme with crypto/rand randomness, a SHAKE-256 XOF of
// the set's seed size and default retry bounds.
func NewScheme(ps *ParameterSet) (*Scheme, error) {
	return NewSchemeWithOpts(ps, SchemeOpts{}, crand.Reader)
}

// NewSchemeWithOpts is NewScheme with explicit retry bounds and randomness
// source (rng may be nil for crypto/rand).
func NewSchemeWithOpts(ps *ParameterSet, opts SchemeOpts, rng io.Reader) (*Scheme, error) {
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	eng, err := NewEngine(ps.Q, ps.R, ps.N, ps.Convention)
	if err != nil {
		return nil, fmt.Errorf("primary engine: %w", err)
	}
	eng2, err := NewEngine(ps.Q2, ps.R2, ps.N, ps.Convention)
	if err != nil {
		return nil, fmt.Errorf("second-stage engine: %w", err)
	}
	if rng == nil {
		rng = crand.Reader
	}
	opts.applyDefaults()
	return &Scheme{
		params: ps,
		eng:    eng,
		eng2:   eng2,
		xof:    NewShake256XOF(ps.SeedSize),
		rand:   rng,
		opts:   opts,
	}, nil
}

// Params returns the immutable parameter set of the scheme.
func (s *Scheme) Params() *ParameterSet { return s.params }

// KeyPair holds one generated key: the small secret vector, the published
// folded public key and the committed basis seed PK_C.
type KeyPair struct {
	Secret []int64
	Public Poly
	PKC    []byte
}

// Signature is the output of one signing call: the folded vector and the
// Fiat-Shamir commitment seed u that lets a verifier rebuild the same
// per-signature basis.
type Signature struct {
	Sig Poly
	U   []byte
}

// GenerateKeyPair samples a norm-bounded secret and folds it through a
// freshly committed basis until the folded value avoids the forbidden
// sentinel. After MaxFoldTrialsPerSecret consecutive folding failures the
// secret itself is resampled; the escalation is capped by
// MaxSecretResamples.
func (s *Scheme) GenerateKeyPair() (*KeyPair, error) {
	secret, err := s.sampleSecret()
	if err != nil {
		return nil, err
	}

	for resample := 0; resample < s.opts.MaxSecretResamples; resample++ {
		for trial := 0; trial < s.opts.MaxFoldTrialsPerSecret; trial++ {
			r1, err := s.randomBytes()
			if err != nil {
				return nil, err
			}
			r2, err := s.randomBytes()
			if err != nil {
				return nil, err
			}
			r3, err := s.randomBytes()
			if err != nil {
				return nil, err
			}
			u := s.xof.Expand(r1, r2)
			pkc := s.xof.Expand(u, r3)

			basis, err := SampleBasis(s.params, s.eng, pkc)
			if err != nil {
				return nil, err
			}
			pk, err := s.fold(s.injectSecret(secret), basis)
			if err != nil {
				return nil, err
			}
			if s.params.violatesZeroAvoidance(pk) {
				continue
			}
			return &KeyPair{Secret: secret, Public: pk, PKC: pkc}, nil
		}
		if secret, err = s.sampleSecret(); err != nil {
			return nil, err
		}
	}
	return nil, ErrKeyGenExhausted
}

// Sign derives a fresh per-signature basis from the transcript
// u = XOF(r1 || PK_C || pk), SC = XOF(u || m || pk) and folds the secret
// through it, retrying with fresh r1 until the folded value avoids the
// forbidden sentinel.
func (s *Scheme) Sign(msg []byte, kp *KeyPair) (*Signature, error) {
	if len(kp.Secret) != s.params.N {
		return nil, fmt.Errorf("sign: secret length %d, want %d", len(kp.Secret), s.params.N)
	}
	pkBytes := transcriptBytes(kp.Public)

	for trial := 0; trial < s.opts.MaxSignTrials; trial++ {
		r1, err := s.randomBytes()
		if err != nil {
			return nil, err
		}
		u := s.xof.Expand(r1, kp.PKC, pkBytes)
		sc := s.xof.Expand(u, msg, pkBytes)

		basis, err := SampleBasis(s.params, s.eng, sc)
		if err != nil {
			return nil, err
		}
		sig, err := s.fold(s.injectSecret(kp.Secret), basis)
		if err != nil {
			return nil, err
		}
		if s.params.violatesZeroAvoidance(sig) {
			continue
		}
		return &Signature{Sig: sig, U: u}, nil
	}
	return nil, ErrSignExhausted
}

// Verify recomputes SC from (u, msg, pk), rebuilds the per-signature basis
// and the key-generation basis, folds pk through the former and sig through
// the latter, and accepts iff the two folded vectors agree element-wise.
// A mismatch is an ordinary false result, not an error.
func (s *Scheme) Verify(msg, pkc []byte, pk Poly, sig *Signature) (bool, error) {
	if sig == nil || pk.Len() != s.params.N || sig.Sig.Len() != s.params.N {
		return false, nil
	}
	pkBytes := transcriptBytes(pk)
	sc := s.xof.Expand(sig.U, msg, pkBytes)

	sigBasis, err := SampleBasis(s.params, s.eng, sc)
	if err != nil {
		return false, err
	}
	pkBasis, err := SampleBasis(s.params, s.eng, pkc)
	if err != nil {
		return false, err
	}

	lhs, err := s.fold(pk, sigBasis)
	if err != nil {
		return false, err
	}
	rhs, err := s.fold(sig.Sig, pkBasis)
	if err != nil {
		return false, err
	}
	return lhs.Equal(rhs), nil
}

// fold pushes v through every layer of basis: pointwise-multiply by each
// layer vector under Q, return to the coefficient domain, hop into the
// second-stage transform domain, triple the value by two additions (the
// pointwise-add zero convention rules out a shift), and re-enter the
// primary transform domain for the next layer.
func (s *Scheme) fold(v Poly, basis *Basis) (Poly, error) {
	var err error
	for _, layer := range basis.Layers {
		for _, vec := range layer {
			if v, err = PointwiseMul(v, vec, s.params.Q); err != nil {
				return Poly{}, err
			}
		}
		if v, err = s.eng.Inverse(v); err != nil {
			return Poly{}, err
		}
		if v, err = s.eng2.Forward(v); err != nil {
			return Poly{}, err
		}
		dbl, err := PointwiseAdd(v, v, s.params.Q2)
		if err != nil {
			return Poly{}, err
		}
		if dbl, err = PointwiseAdd(dbl, v, s.params.Q2); err != nil {
			return Poly{}, err
		}
		if v, err = s.eng2.Inverse(dbl); err != nil {
			return Poly{}, err
		}
		if v, err = s.eng.Forward(v); err != nil {
			return Poly{}, err
		}
	}
	return v, nil
}

// injectSecret embeds the secret directly into the transform domain
// (direct injection keeps the norm from exploding through a forward
// transform).
func (s *Scheme) injectSecret(secret []int64) Poly {
	coeffs := make([]uint64, len(secret))
	q := int64(s.params.Q)
	for i, v := range secret {
		r := v % q
		if r < 0 {
			r += q
		}
		coeffs[i] = uint64(r)
	}
	return NewNTTPoly(coeffs)
}

// sampleSecret draws allowed-value coordinates from the discrete Gaussian
// selector until the L2 norm bound (and, when configured, the mapped-copy
// bound) is met.
func (s *Scheme) sampleSecret() ([]int64, error) {
	for trial := 0; trial < s.opts.MaxSecretTrials; trial++ {
		x := make([]int64, s.params.N)
		for i := range x {
			v, err := gaussianSelect(s.rand, s.params.Sigma, s.params.AllowedValues)
			if err != nil {
				return nil, err
			}
			x[i] = v
		}
		if l2Norm(x) > s.params.MaxNorm {
			continue
		}
		if s.params.MaxMappedNorm > 0 {
			mapped := make([]int64, len(x))
			for i, v := range x {
				mapped[i] = v - s.params.MappedShift
			}
			if l2Norm(mapped) > s.params.MaxMappedNorm {
				continue
			}
		}
		return x, nil
	}
	return nil, fmt.Errorf("secret sampling: %w", ErrKeyGenExhausted)
}

func (s *Scheme) randomBytes() ([]byte, error) {
	b := make([]byte, s.params.SeedSize)
	if _, err := io.ReadFull(s.rand, b); err != nil {
		return nil, fmt.Errorf("random bytes: %w", err)
	}
	return b, nil
}

// secretMu is the centre of the Gaussian selector; the allowed-value set of
// each parameter set is laid out around it.
const secretMu = 3

// gaussianSelect draws one Gaussian value (mean secretMu, deviation sigma)
// via Box-Muller over rng and returns the closest member of allowed.
func gaussianSelect(rng io.Reader, sigma float64, allowed []int64) (int64, error) {
	var buf [16]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return 0, fmt.Errorf("gaussian select: %w", err)
	}
	w1 := binary.LittleEndian.Uint64(buf[:8])
	w2 := binary.LittleEndian.Uint64(buf[8:])
	u1 := (float64(w1>>11) + 0.5) / (1 << 53)
	u2 := float64(w2>>11) / (1 << 53)
	g := secretMu + sigma*math.Sqrt(-2*math.Log(u1))*math.Cos(2*math.Pi*u2)

	best := allowed[0]
	bestDist := math.Abs(float64(best) - g)
	for _, v := range allowed[1:] {
		if d := math.Abs(float64(v) - g); d < bestDist {
			best, bestDist = v, d
		}
	}
	return best, nil
}

// transcriptBytes serialises a polynomial for transcript hashing: eight
// little-endian bytes per coefficient.
func transcriptBytes(p Poly) []byte {
	out := make([]byte, 8*p.Len())
	for i, c := range p.Coeffs() {
		binary.LittleEndian.PutUint64(out[8*i:], c)
	}
	return out
}
