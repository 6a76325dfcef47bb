// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

// Package spawn is the decision engine behind Splice's process-creation
// interception.
//
// An interposition layer (external to this module) redirects the two
// process-creation entry points — spawn by exact path and spawn with
// path search — into [Engine.HandleSpawn] and [Engine.HandleSpawnPath],
// after saving the real entry points into the write-once [Originals]
// registry via [Install]. For each call the engine decides whether the
// target should have the Splice loader spliced into its environment,
// whether the target's __restrict marker requires the external
// unrestrict helper, and then calls through to the saved original.
//
// The engine's one hard rule: no internal failure may ever block the
// underlying spawn. Every error path degrades to calling the original
// with the caller's own path, argv, file actions, attributes, and
// environment, untouched.
//
// [NewExecOriginals] provides a native implementation of the entry
// points built on os/exec, so the engine can also run standalone (the
// splice-spawn tool) and under test without an interposition layer.
package spawn
