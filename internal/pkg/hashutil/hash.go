// Package hashutil computes the integrity digests stored in the diploma
// ledger. The digest of a published document is recomputed by external
// verifiers and by the audit pass, so the algorithm and encoding are part of
// the verification contract: SHA-256, lowercase hex.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// chunkSize bounds memory use when hashing arbitrarily large documents.
const chunkSize = 1 << 20 // 1 MiB

// SHA256Hex streams r through SHA-256 in fixed-size chunks and returns the
// lowercase hex encoding of the digest.
func SHA256Hex(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("error hashing stream: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SHA256HexFile hashes the file at path.
func SHA256HexFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening file for hashing: %w", err)
	}
	defer f.Close()
	return SHA256Hex(f)
}
