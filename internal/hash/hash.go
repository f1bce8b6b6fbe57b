// Package hash provides content hashing for backups and lock names.
//
// Backups carry a SHA-256 checksum of their entries so a damaged or edited
// backup is refused before it is written back to a store. Lock files are named
// by a hash of the namespace so any namespace maps to a safe file name.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher provides an abstraction for hashing operations.
type Hasher interface {
	// Sum returns the hex-encoded hash of data.
	Sum(data []byte) string
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// Sum returns the hex-encoded SHA-256 of data.
func (h *SHA256Hasher) Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FakeHasher implements Hasher with predetermined hashes for testing.
type FakeHasher struct {
	sums map[string]string
}

// NewFakeHasher creates a new FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{sums: make(map[string]string)}
}

// SetSum sets the hash returned for specific content.
func (h *FakeHasher) SetSum(data, sum string) {
	h.sums[data] = sum
}

// Sum returns the predetermined hash for data, or "fakehash".
func (h *FakeHasher) Sum(data []byte) string {
	if sum, ok := h.sums[string(data)]; ok {
		return sum
	}
	return "fakehash"
}
