// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

// Package handoff sends the one-shot startup completion notification.
//
// The loader that injects the shim into the supervisor may hand it
// notification channels; once interposition is installed the shim
// sends a single fixed completion message on the one channel it was
// given and never touches it again. Zero or multiple channels is a
// loader bug: it is logged and the notification skipped, because
// guessing which channel to answer would unblock the wrong waiter.
package handoff
