package keys

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dntl-dsa/measure"
	"dntl-dsa/sparse"
)

// Signature holds the signature bundle persisted to JSON.
type Signature struct {
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	Params    struct {
		N          int    `json:"N"`
		K          int    `json:"K"`
		Q          uint64 `json:"Q"`
		Convention string `json:"convention"`
	} `json:"params"`
	Message struct {
		Hex string `json:"hex"`
	} `json:"message"`
	Signature struct {
		U          string   `json:"u"`
		SigCoeffs  []uint64 `json:"sig_coeffs"`
		TrialsUsed int      `json:"trials_used"`
	} `json:"signature"`
}

// NewSignature creates a base signature bundle with timestamp.
func NewSignature() *Signature {
	s := &Signature{Version: "dntl-signature-v1"}
	s.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return s
}

// Save writes the signature bundle to Dir/signature.json.
func Save(sig *Signature) error {
	return writeJSON("signature.json", sig, "dntl/signature/json_file")
}

// Load reads the signature bundle from Dir/signature.json.
func Load() (*Signature, error) {
	data, err := os.ReadFile(filepath.Join(Dir, "signature.json"))
	if err != nil {
		return nil, err
	}
	var sig Signature
	if err := json.Unmarshal(data, &sig); err != nil {
		return nil, err
	}
	return &sig, nil
}

// SignatureWire produces the transmission form of a signature: the COO
// codec bytes of the folded vector followed by the raw u seed.
func SignatureWire(sigCoeffs []uint64, u []byte) ([]byte, error) {
	blob, err := PolyWire(sigCoeffs)
	if err != nil {
		return nil, err
	}
	return append(blob, u...), nil
}

// ParseSignatureWire splits a signature wire blob back into the folded
// vector and the u seed. dim is the polynomial dimension, seedSize the
// length of u.
func ParseSignatureWire(data []byte, dim, seedSize int) ([]uint64, []byte, error) {
	if len(data) < 2+seedSize {
		return nil, nil, fmt.Errorf("signature wire: %d bytes, want at least %d", len(data), 2+seedSize)
	}
	coeffs, err := ParsePolyWire(data[:len(data)-seedSize], dim)
	if err != nil {
		return nil, nil, err
	}
	u := make([]byte, seedSize)
	copy(u, data[len(data)-seedSize:])
	return coeffs, u, nil
}

// PolyWire encodes a polynomial of modulus-width coefficients with the
// 16-bit COO layout. Residues never exceed the modulus, so int16 values
// are wide enough.
func PolyWire(coeffs []uint64) ([]byte, error) {
	enc, err := sparse.NewEncoder(len(coeffs), 16)
	if err != nil {
		return nil, err
	}
	vec := make([]float64, len(coeffs))
	for i, c := range coeffs {
		vec[i] = float64(c)
	}
	blob, err := enc.EncodeCOO(vec)
	if err != nil {
		return nil, err
	}
	if measure.Enabled {
		measure.Global.Add("dntl/wire/poly", int64(len(blob)))
	}
	return blob, nil
}

// ParsePolyWire reverses PolyWire for a polynomial of the given dimension.
func ParsePolyWire(data []byte, dim int) ([]uint64, error) {
	enc, err := sparse.NewEncoder(dim, 16)
	if err != nil {
		return nil, err
	}
	vec, err := enc.DecodeCOO(data)
	if err != nil {
		return nil, err
	}
	coeffs := make([]uint64, dim)
	for i, v := range vec {
		coeffs[i] = uint64(int64(v))
	}
	return coeffs, nil
}

// WireSize returns the encoded COO size of a polynomial without building
// the blob: 2 header bytes plus 4 per non-zero entry.
func WireSize(coeffs []uint64) int {
	n := 0
	for _, c := range coeffs {
		if c != 0 {
			n++
		}
	}
	return 2 + 4*n
}
