// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package dyldenv

import (
	"fmt"
	"strings"
)

// safeModeAliases are the variables a caller can set to opt one spawn
// out of injection, in recognition order. _MSSafeMode is the legacy
// third-party name; honoring it means a caller that already opted out
// of the older toolkit stays opted out here too.
var safeModeAliases = []string{"_MSSafeMode", "_SpliceSafeMode"}

// SafeModeEnableEntry is the environment entry the coordinator gives
// the unrestrict helper so the helper's own launch never re-enters
// injection.
const SafeModeEnableEntry = "_SpliceSafeMode=1"

// CutSafeMode reports whether entry assigns one of the safe-mode alias
// variables, returning the assigned value when it does.
func CutSafeMode(entry string) (string, bool) {
	for _, alias := range safeModeAliases {
		if value, ok := strings.CutPrefix(entry, alias+"="); ok {
			return value, true
		}
	}
	return "", false
}

// ParseSafeMode interprets a safe-mode alias value. "0" and "NO"
// disable, "1" and "YES" enable. Anything else is an error: the
// caller's intent cannot be read, and the engine responds by leaving
// the whole spawn untouched.
func ParseSafeMode(value string) (bool, error) {
	switch value {
	case "0", "NO":
		return false, nil
	case "1", "YES":
		return true, nil
	default:
		return false, fmt.Errorf("unrecognized safe-mode value %q", value)
	}
}
