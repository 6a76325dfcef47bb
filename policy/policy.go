// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// capturedArgs is the number of word-sized trailing arguments captured
// from the variadic entry point. No known check operation takes more.
const capturedArgs = 5

// opMachLookup is the policy operation whose name argument the
// override inspects.
const opMachLookup = "mach-lookup"

// allow is the entry point's "permitted" result.
const allow = 0

// CheckFunc is the saved original policy-check entry point, with the
// variadic tail already flattened to the five captured words.
type CheckFunc func(pid int, op string, typ int, args [capturedArgs]uintptr) int

// Override wraps a saved policy-check entry point, whitelisting
// lookups of one trusted service name.
type Override struct {
	original       CheckFunc
	trustedService string

	// readString turns a captured word into the NUL-terminated string
	// it points at. Replaceable for tests; the default dereferences.
	readString func(arg uintptr) string
}

// New builds an Override forwarding to original, allowing lookups of
// trustedService unconditionally.
func New(trustedService string, original CheckFunc) *Override {
	return &Override{
		original:       original,
		trustedService: trustedService,
		readString:     derefString,
	}
}

// Check is the replacement entry point. Up to five trailing words are
// captured regardless of the operation's true arity; extra arguments
// beyond five are dropped and missing ones forwarded as zero, which
// preserves the original's view for every known operation.
func (o *Override) Check(pid int, op string, typ int, args ...uintptr) int {
	var captured [capturedArgs]uintptr
	copy(captured[:], args)

	if op == opMachLookup && o.readString(captured[0]) == o.trustedService {
		return allow
	}
	return o.original(pid, op, typ, captured)
}

// derefString reads the NUL-terminated string at arg. A zero word
// reads as the empty string, which can never match a trusted name.
func derefString(arg uintptr) string {
	if arg == 0 {
		return ""
	}
	return unix.BytePtrToString((*byte)(unsafe.Pointer(arg)))
}
