// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package macho

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Fingerprint computes the hex-encoded SHA256 digest of the executable
// at path. Scan reports carry the digest so a verdict can be tied to
// the exact binary that was inspected, not just its path. The file is
// streamed through the hash in chunks to keep memory usage constant.
func Fingerprint(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for fingerprinting: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("fingerprinting %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
