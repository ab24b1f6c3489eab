package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// ContentKey builds the cache key for an AI classification request:
// SHA256 over the title and the already-truncated description, joined
// by a newline so ("ab","c") and ("a","bc") never collide.
func ContentKey(title, truncatedDescription string) string {
	return SHA256Hex(title + "\n" + truncatedDescription)
}
