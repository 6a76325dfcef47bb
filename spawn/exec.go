// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package spawn

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
)

// NewExecOriginals returns a native implementation of the original
// entry points built on os/exec, for running the engine standalone
// (splice-spawn, tests) rather than interposed over a libc.
//
// Two documented approximations: file actions are ignored (nothing
// standalone supplies them), and a suspended start is approximated by
// stopping the child immediately after creation, which leaves a short
// window where the child runs.
func NewExecOriginals(logger *slog.Logger) Originals {
	return Originals{
		Spawn:     execSpawn(logger, false),
		SpawnPath: execSpawn(logger, true),
	}
}

func execSpawn(logger *slog.Logger, searchPath bool) SpawnFunc {
	return func(path string, fileActions *FileActions, attr AttributeBag, argv []string, envp []string) (int, error) {
		resolved := path
		if searchPath && !strings.Contains(path, "/") {
			found, err := exec.LookPath(path)
			if err != nil {
				return 0, fmt.Errorf("resolving %s: %w", path, err)
			}
			resolved = found
		}

		var flags Flags
		if attr != nil {
			read, err := attr.Flags()
			if err != nil {
				return 0, fmt.Errorf("reading spawn attributes: %w", err)
			}
			flags = read
		}

		args := argv
		if len(args) == 0 {
			args = []string{resolved}
		}

		if flags&FlagSetExec != 0 {
			env := envp
			if env == nil {
				env = os.Environ()
			}
			// Replaces the process image; only returns on failure.
			return 0, unix.Exec(resolved, args, env)
		}

		cmd := &exec.Cmd{
			Path:   resolved,
			Args:   args,
			Env:    envp, // nil inherits, same as the primitive
			Stdin:  os.Stdin,
			Stdout: os.Stdout,
			Stderr: os.Stderr,
		}
		if err := cmd.Start(); err != nil {
			return 0, fmt.Errorf("starting %s: %w", resolved, err)
		}
		pid := cmd.Process.Pid

		if flags&FlagStartSuspended != 0 {
			// Best effort: the child has already been scheduled once.
			if err := unix.Kill(pid, unix.SIGSTOP); err != nil {
				logger.Warn("cannot stop child for suspended start", "pid", pid, "error", err)
			}
		}

		// The caller reaps via wait, per the primitive's contract.
		cmd.Process.Release()
		return pid, nil
	}
}
