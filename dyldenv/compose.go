// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package dyldenv

import (
	"slices"
	"strings"
)

// TrackedVariable is the environment variable the OS loader reads to
// preload shared libraries into a new process image.
const TrackedVariable = "DYLD_INSERT_LIBRARIES"

const trackedPrefix = TrackedVariable + "="

// Compose returns a new environment list derived from env: every
// occurrence of the tracked variable is removed, and at most one
// rebuilt entry is appended at the end. The rebuilt value starts from
// the FIRST tracked occurrence's value, drops any colon-delimited
// token equal to injectPath or one of ownLibraries, and appends
// injectPath unless safeMode is set or injectPath is empty. An empty
// rebuilt value produces no entry at all rather than an empty
// assignment.
//
// env is never mutated; the caller owns both input and output.
func Compose(env []string, injectPath string, safeMode bool, ownLibraries []string) []string {
	base := ""
	seen := false

	out := make([]string, 0, len(env)+1)
	for _, entry := range env {
		value, ok := strings.CutPrefix(entry, trackedPrefix)
		if !ok {
			out = append(out, entry)
			continue
		}
		if !seen {
			base = value
			seen = true
		}
	}

	var tokens []string
	for _, token := range strings.Split(base, ":") {
		if token == "" || token == injectPath || slices.Contains(ownLibraries, token) {
			continue
		}
		tokens = append(tokens, token)
	}
	if !safeMode && injectPath != "" {
		tokens = append(tokens, injectPath)
	}

	if len(tokens) > 0 {
		out = append(out, trackedPrefix+strings.Join(tokens, ":"))
	}
	return out
}

// Tracked reports whether entry is an assignment of the tracked
// variable, returning its value when it is.
func Tracked(entry string) (string, bool) {
	return strings.CutPrefix(entry, trackedPrefix)
}
