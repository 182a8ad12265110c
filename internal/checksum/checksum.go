// Package checksum computes content digests for optimistic concurrency
// and workspace reconciliation.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SumString returns the digest of a string without an extra copy at the
// call site.
func SumString(s string) string {
	return Sum([]byte(s))
}
