package digest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
)

// Size is the length in bytes of a content digest.
const Size = sha256.Size

// Compute returns the SHA-256 digest of data. The digest is always taken
// over the uncompressed original bytes, never the compressed stream.
func Compute(data []byte) [Size]byte {
	return sha256.Sum256(data)
}

// Verify recomputes the digest of data and compares it against want.
// It returns false on any mismatch, including a want of the wrong length.
func Verify(data []byte, want []byte) bool {
	if len(want) != Size {
		return false
	}
	got := sha256.Sum256(data)
	return bytes.Equal(got[:], want)
}

// Hex returns the lowercase hex encoding of a digest.
func Hex(d [Size]byte) string {
	return hex.EncodeToString(d[:])
}
