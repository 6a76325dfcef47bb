// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

// Package dyldenv rewrites spawn environments around the one variable
// the OS loader reads to preload shared libraries,
// DYLD_INSERT_LIBRARIES.
//
// [Compose] is the single mutation the engine ever performs on an
// environment: collapse however many tracked entries the caller passed
// into at most one, strip the Splice libraries from the inherited
// value, and append the current injection candidate. The caller's
// slice is never touched; everything else in the list passes through
// byte for byte and in order.
//
// The package also owns the safe-mode vocabulary: the two alias
// variables a caller can set to opt a single spawn out of injection,
// and the parser for their values. An unrecognized value is an error
// rather than a default, because a caller whose intent cannot be read
// must get an untouched spawn.
package dyldenv
