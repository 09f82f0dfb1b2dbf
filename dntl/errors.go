package dntl

import "errors"

var (
	// ErrNoPrimitiveRoot is returned when the candidate generator search
	// for a prime modulus is exhausted without finding a primitive root.
	ErrNoPrimitiveRoot = errors.New("dntl: no primitive root found")

	// ErrNoModularInverse is returned when gcd(a, m) != 1.
	ErrNoModularInverse = errors.New("dntl: no modular inverse")

	// ErrConstantDerivation covers failed psi/omega power checks and a
	// group order not divisible by the transform size.
	ErrConstantDerivation = errors.New("dntl: constant derivation failed")

	// ErrDomainMismatch is returned when a polynomial is fed to an
	// operation expecting the other representation domain.
	ErrDomainMismatch = errors.New("dntl: polynomial domain mismatch")

	// ErrSamplingExhausted is returned when a basis accept/reject loop
	// exceeds its trial bound.
	ErrSamplingExhausted = errors.New("dntl: basis sampling exhausted")

	// ErrKeyGenExhausted is returned when public-key folding keeps
	// hitting the forbidden sentinel beyond the secret-resample budget.
	ErrKeyGenExhausted = errors.New("dntl: key generation retries exhausted")

	// ErrSignExhausted is the signing-path analogue of ErrKeyGenExhausted.
	ErrSignExhausted = errors.New("dntl: signing retries exhausted")
)
