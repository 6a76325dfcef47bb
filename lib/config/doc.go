// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for Splice
// components.
//
// Splice is fully functional with zero configuration: [Default] returns
// the shipped constants (helper and library install paths, the
// intermediary launcher, the exclusion list, the trusted policy
// service). A file is only needed for test rigs and relocated
// installations, and is loaded from a single path specified by either
// the SPLICE_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks, no ~/.config
// discovery, and no automatic file search. This ensures deterministic,
// auditable configuration with no hidden overrides.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${SPLICE_ROOT}, and ${VAR:-default} patterns are expanded.
// No other environment variables override config values.
//
// This package depends on no other Splice packages.
package config
