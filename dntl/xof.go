package dntl

import (
	"fmt"

	"golang.org/x/crypto/sha3"
)

// XOF models the extendable-output function behind every transcript
// derivation (u, PK_C, SC). One fixed output length per parameter set.
type XOF interface {
	Expand(parts ...[]byte) []byte
}

// Shake256XOF is a SHAKE-256 backed implementation of XOF with a fixed
// output length.
type Shake256XOF struct {
	outLen int
}

// NewShake256XOF returns a SHAKE-256 XOF that emits outLen bytes on every
// squeeze.
func NewShake256XOF(outLen int) Shake256XOF {
	if outLen <= 0 {
		panic("NewShake256XOF: outLen must be > 0")
	}
	return Shake256XOF{outLen: outLen}
}

// Expand absorbs the concatenation of parts and squeezes outLen bytes.
func (s Shake256XOF) Expand(parts ...[]byte) []byte {
	h := sha3.NewShake256()
	for _, p := range parts {
		if _, err := h.Write(p); err != nil {
			panic(fmt.Errorf("Shake256XOF: write payload: %w", err))
		}
	}
	out := make([]byte, s.outLen)
	if _, err := h.Read(out); err != nil {
		panic(fmt.Errorf("Shake256XOF: read output: %w", err))
	}
	return out
}
