// Package credential issues and verifies agent API keys.
//
// A key is an opaque bearer credential: a fixed textual prefix followed by
// 64 lowercase hex characters (32 random bytes). The raw key is returned
// exactly once at registration; only its SHA-256 hex digest is stored, so
// verification is format check, then hash, then lookup.
package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// Prefix identifies an agent API key on the wire.
const Prefix = "ethos_sk_"

// suffix is 32 random bytes hex-encoded.
const suffixLen = 64

// Generate produces a new API key with sufficient entropy to resist
// guessing. Panics only if the system entropy source is unavailable.
func Generate() string {
	buf := make([]byte, suffixLen/2)
	if _, err := rand.Read(buf); err != nil {
		panic("credential: entropy source unavailable: " + err.Error())
	}
	return Prefix + hex.EncodeToString(buf)
}

// IsWellFormed reports whether raw has the structural shape of an API key:
// the fixed prefix followed by exactly 64 lowercase hex characters.
// Malformed input is rejected before any hashing or lookup happens.
func IsWellFormed(raw string) bool {
	if len(raw) != len(Prefix)+suffixLen {
		return false
	}
	if raw[:len(Prefix)] != Prefix {
		return false
	}
	for _, c := range raw[len(Prefix):] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}

// Hash returns the SHA-256 hex digest of a raw key. This is the only form
// the ledger ever persists.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
