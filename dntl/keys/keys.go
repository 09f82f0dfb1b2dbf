// Package keys persists DNTL-DSA key and signature bundles as JSON and
// provides the compact wire forms built on the sparse codec.
package keys

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"

	"dntl-dsa/measure"
)

// Dir is the directory bundles are persisted under.
var Dir = "dntl_keys"

// PublicKey represents a published DNTL key persisted to JSON.
type PublicKey struct {
	Version    string   `json:"version"`
	N          int      `json:"N"`
	K          int      `json:"K"`
	Q          uint64   `json:"Q"`
	Convention string   `json:"convention"`
	PKC        string   `json:"pk_c"`
	PKCoeffs   []uint64 `json:"pk_coeffs"`
}

// PrivateKey represents the retained secret vector persisted to JSON.
type PrivateKey struct {
	Version string  `json:"version"`
	N       int     `json:"N"`
	Q       uint64  `json:"Q"`
	Secret  []int64 `json:"secret_x"`
}

// SavePublic writes the public key to Dir/public.json.
func SavePublic(pk *PublicKey) error {
	return writeJSON("public.json", pk, "dntl/public_key/json_file")
}

// LoadPublic reads the public key from Dir/public.json.
func LoadPublic() (*PublicKey, error) {
	var pk PublicKey
	if err := readJSON("public.json", &pk); err != nil {
		return nil, err
	}
	return &pk, nil
}

// SavePrivate writes the secret key to Dir/private.json.
func SavePrivate(sk *PrivateKey) error {
	return writeJSON("private.json", sk, "dntl/private_key/json_file")
}

// LoadPrivate reads the secret key from Dir/private.json.
func LoadPrivate() (*PrivateKey, error) {
	var sk PrivateKey
	if err := readJSON("private.json", &sk); err != nil {
		return nil, err
	}
	return &sk, nil
}

func writeJSON(name string, v any, counter string) error {
	if v == nil {
		return nil
	}
	if err := os.MkdirAll(Dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if measure.Enabled {
		if info, err := os.Stat(path); err == nil {
			measure.Global.Add(counter, info.Size())
		}
	}
	return nil
}

func readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(Dir, name))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// DecodeSeed converts a base64 seed string to bytes.
func DecodeSeed(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// EncodeSeed returns the base64 representation of seed bytes.
func EncodeSeed(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
