package ingest

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns the SHA-256 hex digest of the raw uploaded bytes.
// It is the sole deduplication key: identical bytes always map to the same
// document, regardless of filename.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
