// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

// Package policy overrides one mandatory-sandbox policy check: an
// inter-process lookup of the trusted Splice daemon name is always
// allowed, so sandboxed processes carrying the loader can reach the
// daemon without a profile change.
//
// The intercepted entry point is variadic with no way to learn its
// true arity, so [Override.Check] captures a fixed five machine words
// and forwards exactly those — a bounded, intent-preserving
// over-capture rather than true variadic forwarding. Every check that
// is not the whitelisted pair goes to the original with the same five
// captured values.
package policy
