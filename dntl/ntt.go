package dntl

import "fmt"

// Engine performs the forward and inverse iterative Cooley-Tukey transform
// of a fixed size n over a fixed modulus q, in one of the two residue
// conventions. The root-of-unity tables are built once at construction.
type Engine struct {
	n    int
	q    uint64
	conv Convention

	roots    []uint64
	invRoots []uint64
	nInv     uint64
}

// NewEngine builds a transform engine for size n over modulus q, where root
// generates the multiplicative group of q. n must be a power of two dividing
// q-1.
func NewEngine(q, root uint64, n int, conv Convention) (*Engine, error) {
	if n <= 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: transform size %d is not a power of two", ErrConstantDerivation, n)
	}
	un := uint64(n)
	if q < 3 || (q-1)%un != 0 {
		return nil, fmt.Errorf("%w: q-1 not divisible by n=%d", ErrConstantDerivation, n)
	}
	switch conv {
	case SignedCentered, NaturalShifted:
	default:
		return nil, fmt.Errorf("%w: unknown convention", ErrConstantDerivation)
	}

	nInv, err := ModInv(un, q)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		n:        n,
		q:        q,
		conv:     conv,
		roots:    make([]uint64, n),
		invRoots: make([]uint64, n),
		nInv:     nInv,
	}
	fwd := ModPow(root, (q-1)/un, q)
	inv := ModPow(root, q-1-(q-1)/un, q)
	e.roots[0], e.invRoots[0] = 1, 1
	for i := 1; i < n; i++ {
		e.roots[i] = mulMod(e.roots[i-1], fwd, q)
		e.invRoots[i] = mulMod(e.invRoots[i-1], inv, q)
	}
	return e, nil
}

// N returns the transform size.
func (e *Engine) N() int { return e.n }

// Q returns the modulus.
func (e *Engine) Q() uint64 { return e.q }

// Convention returns the residue convention of the engine.
func (e *Engine) Convention() Convention { return e.conv }

// Forward transforms a coefficient-domain polynomial into the transform
// domain. The input is not modified.
func (e *Engine) Forward(p Poly) (Poly, error) {
	if p.Domain() != DomainCoeff {
		return Poly{}, fmt.Errorf("forward: %w: got %s", ErrDomainMismatch, p.Domain())
	}
	a, err := e.transform(p.Coeffs(), e.roots)
	if err != nil {
		return Poly{}, err
	}
	return NewNTTPoly(a), nil
}

// Inverse transforms a transform-domain polynomial back to the coefficient
// domain, scaling by n^-1. The input is not modified.
func (e *Engine) Inverse(p Poly) (Poly, error) {
	if p.Domain() != DomainNTT {
		return Poly{}, fmt.Errorf("inverse: %w: got %s", ErrDomainMismatch, p.Domain())
	}
	a, err := e.transform(p.Coeffs(), e.invRoots)
	if err != nil {
		return Poly{}, err
	}
	for i, v := range a {
		v = mulMod(v, e.nInv, e.q)
		if v == 0 && e.conv == NaturalShifted {
			v = e.q
		}
		a[i] = v
	}
	return NewCoeffPoly(a), nil
}

// transform runs the bit-reversal pass and the iterative butterfly stages
// over a copy of src, using the supplied root table. Under the
// natural-shifted convention every butterfly output that would be zero is
// remapped to q inline.
func (e *Engine) transform(src, roots []uint64) ([]uint64, error) {
	n := e.n
	if len(src) != n {
		return nil, fmt.Errorf("transform: length %d, want %d", len(src), n)
	}
	a := make([]uint64, n)
	copy(a, src)
	bitReverse(a)

	natural := e.conv == NaturalShifted
	for length := 2; length <= n; length <<= 1 {
		half := length >> 1
		step := n / length
		for i := 0; i < n; i += length {
			for j := 0; j < half; j++ {
				u := a[i+j]
				v := mulMod(a[i+j+half], roots[step*j], e.q)
				s := (u + v) % e.q
				d := (u + e.q - v) % e.q
				if natural {
					if s == 0 {
						s = e.q
					}
					if d == 0 {
						d = e.q
					}
				}
				a[i+j] = s
				a[i+j+half] = d
			}
		}
	}
	return a, nil
}

func bitReverse(a []uint64) {
	n := len(a)
	j := 0
	for i := 1; i < n; i++ {
		bit := n >> 1
		for j >= bit {
			j -= bit
			bit >>= 1
		}
		j += bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}
}

// PointwiseMul multiplies two same-domain vectors elementwise modulo q,
// remapping any zero result to q. This is the non-zero-divisor convention
// used throughout the protocol.
func PointwiseMul(a, b Poly, q uint64) (Poly, error) {
	if a.Domain() != b.Domain() {
		return Poly{}, fmt.Errorf("pointwise mul: %w", ErrDomainMismatch)
	}
	if a.Len() != b.Len() {
		return Poly{}, fmt.Errorf("pointwise mul: lengths %d and %d", a.Len(), b.Len())
	}
	av, bv := a.Coeffs(), b.Coeffs()
	out := make([]uint64, len(av))
	for i := range av {
		v := mulMod(av[i], bv[i], q)
		if v == 0 {
			v = q
		}
		out[i] = v
	}
	return Poly{dom: a.Domain(), coeffs: out}, nil
}

// PointwiseAdd adds two same-domain vectors elementwise modulo q, remapping
// any zero result to q.
func PointwiseAdd(a, b Poly, q uint64) (Poly, error) {
	if a.Domain() != b.Domain() {
		return Poly{}, fmt.Errorf("pointwise add: %w", ErrDomainMismatch)
	}
	if a.Len() != b.Len() {
		return Poly{}, fmt.Errorf("pointwise add: lengths %d and %d", a.Len(), b.Len())
	}
	av, bv := a.Coeffs(), b.Coeffs()
	out := make([]uint64, len(av))
	for i := range av {
		v := (av[i]%q + bv[i]%q) % q
		if v == 0 {
			v = q
		}
		out[i] = v
	}
	return Poly{dom: a.Domain(), coeffs: out}, nil
}
