// Package checksum computes stable content fingerprints for change
// detection. The same bytes produce the same fingerprint across
// restarts and platforms.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// readSize is the fixed read size, keeping memory bounded regardless
// of document size.
const readSize = 8 * 1024

// Reader computes the SHA-256 fingerprint of everything in r.
func Reader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, readSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File computes the SHA-256 fingerprint of the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Reader(f)
}
