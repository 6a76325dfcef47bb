// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package unrestrict

import (
	"log/slog"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/splice-foundation/splice/dyldenv"
	"github.com/splice-foundation/splice/spawn"
)

// Coordinator launches and reaps the unrestrict helper.
type Coordinator struct {
	helperPath string
	spawn      spawn.SpawnFunc
	wait       func(pid int) (unix.WaitStatus, error)
	logger     *slog.Logger
}

// New builds a Coordinator. spawnFunc must be a saved original entry
// point, not an intercepted one: launching the helper through the
// engine would recurse.
func New(helperPath string, spawnFunc spawn.SpawnFunc, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		helperPath: helperPath,
		spawn:      spawnFunc,
		wait:       waitReap,
		logger:     logger,
	}
}

// Unrestrict runs the helper against pid. shouldResume asks the helper
// to resume the suspended target when it finishes; isExec marks a
// replace-in-place call, where pid is the caller itself and the
// reserved marker descriptor is already in place. Returns false only
// when the helper could not be started; a failed reap is logged and
// ignored.
func (c *Coordinator) Unrestrict(pid int, shouldResume, isExec bool) bool {
	argv := []string{
		c.helperPath,
		strconv.Itoa(pid),
		flagArg(shouldResume),
		flagArg(isExec),
	}
	env := []string{dyldenv.SafeModeEnableEntry}

	helperPID, err := c.spawn(c.helperPath, nil, nil, argv, env)
	if err != nil {
		c.logger.Error("couldn't start unrestrict helper",
			"helper", c.helperPath, "target_pid", pid, "error", err)
		return false
	}
	c.logger.Debug("unrestrict helper started",
		"helper_pid", helperPID, "target_pid", pid,
		"should_resume", shouldResume, "is_exec", isExec)

	// Reap the helper to avoid a zombie. Its exit status carries no
	// decision weight; only the wait itself can fail, and that is not
	// fatal either.
	status, err := c.wait(helperPID)
	if err != nil {
		c.logger.Warn("couldn't reap unrestrict helper",
			"helper_pid", helperPID, "error", err)
		return true
	}
	c.logger.Debug("unrestrict helper exited",
		"helper_pid", helperPID, "status", int(status))
	return true
}

func flagArg(value bool) string {
	if value {
		return "1"
	}
	return "0"
}

// waitReap blocks until pid exits. Unbounded: a hung helper blocks the
// intercepted caller indefinitely.
func waitReap(pid int) (unix.WaitStatus, error) {
	var status unix.WaitStatus
	_, err := unix.Wait4(pid, &status, 0, nil)
	return status, err
}
