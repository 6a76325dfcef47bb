// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for the Splice
// command-line tools. It centralizes the raw stderr reporting that is
// legitimate before the structured logger exists.
package process
