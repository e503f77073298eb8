package trace

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeDigest returns the hex sha256 of an already canonical encoding.
// Empty input has no digest.
func ComputeDigest(canonicalEncoding []byte) string {
	if len(canonicalEncoding) == 0 {
		return ""
	}
	sum := sha256.Sum256(canonicalEncoding)
	return hex.EncodeToString(sum[:])
}
