// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

// Package unrestrict launches the external privileged helper that
// lifts the __restrict marker from an already-created, suspended
// process (or from the caller itself, ahead of a replace-in-place
// exec).
//
// The coordinator is fire-and-observe: a helper that cannot be
// started, or cannot be reaped, is logged and reported as a local
// boolean failure, never escalated into the spawn result. The helper's
// own launch goes through the saved original spawn entry point with an
// environment of exactly one variable — safe mode asserted — so the
// launch can never re-enter the injection engine.
package unrestrict
