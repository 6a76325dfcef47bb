// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package macho

import (
	"log/slog"
	"os"
)

// ScanFile reports whether the executable at path carries the
// __restrict marker, failing open: any I/O or format error is logged
// and reported as false. The engine must never let a scan failure
// block a spawn — the worst case of a false negative is a restricted
// binary that the loader then declines to inject, which is the same
// outcome as not running Splice at all.
func ScanFile(path string, logger *slog.Logger) bool {
	file, err := os.Open(path)
	if err != nil {
		logger.Warn("cannot open target for restriction scan", "path", path, "error", err)
		return false
	}
	defer file.Close()

	restricted, err := Restricted(file)
	if err != nil {
		logger.Warn("restriction scan failed, assuming unrestricted", "path", path, "error", err)
		return false
	}
	return restricted
}
