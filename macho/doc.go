// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

// Package macho detects the __restrict load-command marker in Mach-O
// executables.
//
// The kernel refuses to honor DYLD_INSERT_LIBRARIES for binaries that
// carry a __restrict section, so the spawn engine needs a cheap,
// fail-open answer to "does this target need the unrestrict helper"
// before the spawn happens. This package is deliberately not a Mach-O
// parser: it reads one header window, follows at most one fat-arch
// indirection, and searches the raw load-command bytes for the marker
// name. Over-reporting is acceptable (the helper run is wasted work);
// under-reporting is not, which is why the search is a raw substring
// match rather than a walk of section structures.
//
// [Restricted] is the pure form over an io.ReaderAt, returning an error
// for anything malformed. [ScanFile] wraps it with the fail-open policy
// the engine requires: any error is logged and reported as "not
// restricted", so a damaged binary still spawns.
package macho
