package dntl

import (
	"fmt"
	"math/bits"
	"sync"
)

// Constants bundles every transform constant derived for a prime modulus q
// and a power-of-two transform size N: the generator, the negacyclic root
// psi with omega = psi^2, the modular inverse of N, the Barrett constant
// floor(2^64/q), the per-stage twiddle tables and the psi power tables used
// by the domain-shift steps of a negacyclic transform.
type Constants struct {
	Q       uint64
	N       int
	G       uint64
	Psi     uint64
	Omega   uint64
	NInv    uint64
	Barrett uint64

	TwiddlesFwd []uint64
	TwiddlesInv []uint64

	PsiPowers    []uint64
	PsiInvPowers []uint64
}

var (
	constCacheMu sync.Mutex
	constCache   = map[[2]uint64]*Constants{}
)

// Derive computes (and memoizes) the full constant set for the pair (q, n).
// Derivation is deterministic and side-effect free, so cached values are
// shared between callers.
func Derive(q uint64, n int) (*Constants, error) {
	key := [2]uint64{q, uint64(n)}
	constCacheMu.Lock()
	cached := constCache[key]
	constCacheMu.Unlock()
	if cached != nil {
		return cached, nil
	}

	c, err := derive(q, n)
	if err != nil {
		return nil, err
	}

	constCacheMu.Lock()
	constCache[key] = c
	constCacheMu.Unlock()
	return c, nil
}

func derive(q uint64, n int) (*Constants, error) {
	if n <= 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: N=%d is not a power of two", ErrConstantDerivation, n)
	}
	un := uint64(n)
	if (q-1)%(2*un) != 0 {
		return nil, fmt.Errorf("%w: q-1 not divisible by 2N=%d", ErrConstantDerivation, 2*n)
	}

	g, err := FindPrimitiveRoot(q)
	if err != nil {
		return nil, err
	}

	// psi is a primitive 2N-th root of unity with psi^N = -1, so that
	// omega = psi^2 is a primitive N-th root.
	psi := ModPow(g, (q-1)/(2*un), q)
	if got := ModPow(psi, un, q); got != q-1 {
		return nil, fmt.Errorf("%w: psi^N = %d, want %d", ErrConstantDerivation, got, q-1)
	}
	if got := ModPow(psi, 2*un, q); got != 1 {
		return nil, fmt.Errorf("%w: psi^2N = %d, want 1", ErrConstantDerivation, got)
	}
	omega := mulMod(psi, psi, q)

	nInv, err := ModInv(un, q)
	if err != nil {
		return nil, err
	}
	omegaInv, err := ModInv(omega, q)
	if err != nil {
		return nil, err
	}
	psiInv, err := ModInv(psi, q)
	if err != nil {
		return nil, err
	}

	stages := bits.Len(uint(n)) - 1
	c := &Constants{
		Q:            q,
		N:            n,
		G:            g,
		Psi:          psi,
		Omega:        omega,
		NInv:         nInv,
		Barrett:      ^uint64(0) / q, // floor(2^64 / q) for odd prime q
		TwiddlesFwd:  make([]uint64, stages),
		TwiddlesInv:  make([]uint64, stages),
		PsiPowers:    make([]uint64, n),
		PsiInvPowers: make([]uint64, n),
	}
	for stage := 0; stage < stages; stage++ {
		c.TwiddlesFwd[stage] = ModPow(omega, un>>(stage+1), q)
		c.TwiddlesInv[stage] = ModPow(omegaInv, un>>(stage+1), q)
	}
	for i := 0; i < n; i++ {
		c.PsiPowers[i] = ModPow(psi, uint64(i), q)
		c.PsiInvPowers[i] = ModPow(psiInv, uint64(i), q)
	}
	return c, nil
}

// Reduce returns x mod q using the precomputed Barrett constant.
func (c *Constants) Reduce(x uint64) uint64 {
	hi, _ := bits.Mul64(x, c.Barrett)
	r := x - hi*c.Q
	for r >= c.Q {
		r -= c.Q
	}
	return r
}
