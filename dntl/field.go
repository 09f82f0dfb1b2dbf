package dntl

import (
	"fmt"
	"math/bits"
)

// mulMod returns a*b mod q without overflowing on moduli wider than 32 bits.
func mulMod(a, b, q uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi%q, lo, q)
	return rem
}

// ModPow returns base^exp mod q by square and multiply.
func ModPow(base, exp, q uint64) uint64 {
	res := uint64(1 % q)
	base %= q
	for exp > 0 {
		if exp&1 == 1 {
			res = mulMod(res, base, q)
		}
		base = mulMod(base, base, q)
		exp >>= 1
	}
	return res
}

// ModInv returns a^-1 mod m via the extended Euclidean algorithm.
// It fails with ErrNoModularInverse when gcd(a, m) != 1.
func ModInv(a, m uint64) (uint64, error) {
	if m == 0 {
		return 0, fmt.Errorf("%w: modulus is zero", ErrNoModularInverse)
	}
	r0, r1 := int64(a%m), int64(m)
	x0, x1 := int64(1), int64(0)
	for r1 != 0 {
		q := r0 / r1
		r0, r1 = r1, r0-q*r1
		x0, x1 = x1, x0-q*x1
	}
	if r0 != 1 {
		return 0, fmt.Errorf("%w: gcd(%d, %d) = %d", ErrNoModularInverse, a, m, r0)
	}
	x0 %= int64(m)
	if x0 < 0 {
		x0 += int64(m)
	}
	return uint64(x0), nil
}

// trialPrimes is the fixed small-prime set used to factor q-1. Any residual
// cofactor after trial division is treated as a single large prime factor.
var trialPrimes = []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31}

// FindPrimitiveRoot returns the smallest generator of the multiplicative
// group modulo the prime q.
func FindPrimitiveRoot(q uint64) (uint64, error) {
	qm1 := q - 1
	var factors []uint64
	rest := qm1
	for _, p := range trialPrimes {
		if rest%p == 0 {
			factors = append(factors, p)
			for rest%p == 0 {
				rest /= p
			}
		}
	}
	if rest > 1 {
		factors = append(factors, rest)
	}
	for g := uint64(2); g < q; g++ {
		primitive := true
		for _, p := range factors {
			if ModPow(g, qm1/p, q) == 1 {
				primitive = false
				break
			}
		}
		if primitive {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%w: q=%d", ErrNoPrimitiveRoot, q)
}

// TonelliShanks returns a square root of n modulo the odd prime p.
// The second return value is false when n is a quadratic non-residue.
func TonelliShanks(n, p uint64) (uint64, bool) {
	n %= p
	if ModPow(n, (p-1)/2, p) != 1 {
		return 0, false
	}

	// Write p-1 = q * 2^s with q odd.
	q := p - 1
	s := uint64(0)
	for q%2 == 0 {
		q /= 2
		s++
	}

	// Find a quadratic non-residue z.
	z := uint64(2)
	for ModPow(z, (p-1)/2, p) != p-1 {
		z++
	}

	m := s
	c := ModPow(z, q, p)
	t := ModPow(n, q, p)
	r := ModPow(n, (q+1)/2, p)

	for {
		if t == 0 {
			return 0, true
		}
		if t == 1 {
			return r, true
		}
		// Least i with t^(2^i) == 1.
		i := uint64(1)
		tmp := mulMod(t, t, p)
		for tmp != 1 {
			tmp = mulMod(tmp, tmp, p)
			i++
		}
		b := ModPow(c, uint64(1)<<(m-i-1), p)
		m = i
		c = mulMod(b, b, p)
		t = mulMod(t, c, p)
		r = mulMod(r, b, p)
	}
}
