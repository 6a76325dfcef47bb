// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Splice's standard CBOR encoding configuration.
//
// Two message surfaces use CBOR: the one-shot startup handoff
// notification the shim sends back to its loader, and the
// machine-readable report splice-scan emits under --cbor. Both sides of
// the handoff channel must agree on bytes, so the encoder uses Core
// Deterministic Encoding (RFC 8949 §4.2): sorted map keys, smallest
// integer encoding, no indefinite-length items. Same logical data
// always produces identical bytes.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (the handoff channel):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// Internal-only types carry `cbor` struct tags; types that also serve
// the CLI's plain output carry `json` tags, which fxamacker/cbor v2
// reads as a fallback. Never use both tags on the same field.
package codec
