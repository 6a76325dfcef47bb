// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package spawn

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// probeReadable is the default readability probe for the injection
// candidate.
func probeReadable(path string) error {
	if err := unix.Access(path, unix.R_OK); err != nil {
		return fmt.Errorf("access %s: %w", path, err)
	}
	return nil
}

// reserveMarkerFD duplicates stderr onto the reserved descriptor
// number and marks it close-on-exec. The unrestrict helper looks for
// this descriptor to recognize an in-flight replace-in-place spawn.
// Whatever the caller had on that descriptor is clobbered.
func reserveMarkerFD(fd int) error {
	if err := unix.Dup2(2, fd); err != nil {
		return fmt.Errorf("dup2 stderr onto %d: %w", fd, err)
	}
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFD, unix.FD_CLOEXEC); err != nil {
		return fmt.Errorf("marking fd %d close-on-exec: %w", fd, err)
	}
	return nil
}

// DetectSupervisor reports whether this process is the process
// supervisor, by the same test the interposition layer's loader uses:
// the executable image name contains "launchd".
func DetectSupervisor() bool {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	return strings.Contains(exe, "launchd")
}
