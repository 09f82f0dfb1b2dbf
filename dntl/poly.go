package dntl

import "math"

// Domain tags the representation of a polynomial. Coefficient-domain and
// transform-domain vectors are never implicitly convertible: every hop
// between the two goes through an Engine transform (or an explicit
// injection for values the protocol treats as already transformed).
type Domain uint8

const (
	// DomainCoeff marks a coefficient-domain vector.
	DomainCoeff Domain = iota + 1
	// DomainNTT marks a transform-domain vector.
	DomainNTT
)

func (d Domain) String() string {
	switch d {
	case DomainCoeff:
		return "coeff"
	case DomainNTT:
		return "ntt"
	default:
		return "invalid"
	}
}

// Poly is an ordered sequence of residues tagged with its domain.
// Residue conventions follow the owning parameter set: [0, q) for the
// signed-centered convention, [1, q] for the natural-shifted one.
type Poly struct {
	dom    Domain
	coeffs []uint64
}

// NewCoeffPoly wraps coeffs as a coefficient-domain polynomial.
// The slice is not copied.
func NewCoeffPoly(coeffs []uint64) Poly {
	return Poly{dom: DomainCoeff, coeffs: coeffs}
}

// NewNTTPoly wraps coeffs as a transform-domain polynomial.
// The slice is not copied.
func NewNTTPoly(coeffs []uint64) Poly {
	return Poly{dom: DomainNTT, coeffs: coeffs}
}

// Domain returns the representation tag.
func (p Poly) Domain() Domain { return p.dom }

// Len returns the number of coefficients.
func (p Poly) Len() int { return len(p.coeffs) }

// Coeffs exposes the backing slice. Callers that need an independent copy
// should use Clone.
func (p Poly) Coeffs() []uint64 { return p.coeffs }

// Clone returns a deep copy with the same domain tag.
func (p Poly) Clone() Poly {
	cp := make([]uint64, len(p.coeffs))
	copy(cp, p.coeffs)
	return Poly{dom: p.dom, coeffs: cp}
}

// Equal reports element-wise equality of two polynomials in the same domain.
func (p Poly) Equal(o Poly) bool {
	if p.dom != o.dom || len(p.coeffs) != len(o.coeffs) {
		return false
	}
	for i := range p.coeffs {
		if p.coeffs[i] != o.coeffs[i] {
			return false
		}
	}
	return true
}

// l2Norm returns the Euclidean norm of an integer vector.
func l2Norm(v []int64) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
