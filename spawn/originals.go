// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package spawn

import (
	"errors"
	"sync"
)

// SpawnFunc is the signature of a saved process-creation entry point.
// envp follows the primitive's convention: nil inherits the calling
// process's environment. For a replace-in-place call a successful
// SpawnFunc does not return.
type SpawnFunc func(path string, fileActions *FileActions, attr AttributeBag, argv []string, envp []string) (pid int, err error)

// Originals is the table of saved entry points the engine calls
// through to. It is installed exactly once, before any intercepted
// call can arrive, and is read-only afterward.
type Originals struct {
	// Spawn is the spawn-by-exact-path entry point.
	Spawn SpawnFunc

	// SpawnPath is the spawn-with-path-search entry point.
	SpawnPath SpawnFunc
}

var registry struct {
	once      sync.Once
	installed bool
	table     Originals
}

// ErrAlreadyInstalled is returned by Install after the first
// successful call. The registry is write-once for the process
// lifetime.
var ErrAlreadyInstalled = errors.New("originals already installed")

// Install saves the original entry points. The interposition layer
// calls this once at load time, before handing any intercepted call to
// the engine; the table is immutable afterward.
func Install(table Originals) error {
	if table.Spawn == nil || table.SpawnPath == nil {
		return errors.New("both original entry points are required")
	}

	accepted := false
	registry.once.Do(func() {
		registry.table = table
		registry.installed = true
		accepted = true
	})
	if !accepted {
		return ErrAlreadyInstalled
	}
	return nil
}

// Installed returns the saved entry points, and whether Install has
// run.
func Installed() (Originals, bool) {
	return registry.table, registry.installed
}
