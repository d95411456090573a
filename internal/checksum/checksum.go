// Package checksum produces content digests used for optimistic
// concurrency: a client echoes the digest it last saw and a save is
// rejected when the note changed underneath it.
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

// Matches reports whether got is the digest of data. Empty got means
// the caller did not request a concurrency check.
func Matches(data []byte, got string) bool {
	if got == "" {
		return true
	}
	return Sum(data) == got
}
