package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken returns the hex-encoded SHA-256 digest of a token string. The
// digest is what gets persisted for refresh sessions and what keys the
// claims cache, so the raw token never has to be stored anywhere.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
