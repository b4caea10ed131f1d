// Package sha256 fingerprints fetched tide payloads so notifications can be
// deduplicated downstream.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher implements sealevel.Hasher using SHA-256.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash hashes the input and returns a hex digest.
func (h *Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
