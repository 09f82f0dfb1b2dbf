// Package dntl implements the DNTL-DSA experimental lattice signature
// scheme: small-modulus number-theoretic transforms over two residue
// conventions, deterministic ISIS basis expansion with rejection, and
// the key generation / signing / verification protocol built on them.
//
// All protocol paths return typed errors; rejection-sampling loops are
// bounded and report exhaustion instead of spinning. A Scheme value is
// safe for concurrent use since every call derives its own basis and
// polynomial values.
package dntl
