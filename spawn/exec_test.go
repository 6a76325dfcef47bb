// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package spawn

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func reap(t *testing.T, pid int) unix.WaitStatus {
	t.Helper()
	var status unix.WaitStatus
	if _, err := unix.Wait4(pid, &status, 0, nil); err != nil {
		t.Fatalf("wait4(%d): %v", pid, err)
	}
	return status
}

func TestExecOriginals_SpawnAndReap(t *testing.T) {
	originals := NewExecOriginals(testLogger())

	pid, err := originals.SpawnPath("true", nil, nil, []string{"true"}, nil)
	if err != nil {
		t.Fatalf("SpawnPath: %v", err)
	}

	status := reap(t, pid)
	if !status.Exited() || status.ExitStatus() != 0 {
		t.Errorf("status = %v, want clean exit", status)
	}
}

func TestExecOriginals_ExitStatusSurvives(t *testing.T) {
	originals := NewExecOriginals(testLogger())

	pid, err := originals.SpawnPath("sh", nil, nil, []string{"sh", "-c", "exit 3"}, nil)
	if err != nil {
		t.Fatalf("SpawnPath: %v", err)
	}

	status := reap(t, pid)
	if !status.Exited() || status.ExitStatus() != 3 {
		t.Errorf("status = %v, want exit 3", status)
	}
}

func TestExecOriginals_ExplicitEnvironment(t *testing.T) {
	originals := NewExecOriginals(testLogger())

	marker := filepath.Join(t.TempDir(), "env-out")
	script := "echo \"$SPLICE_EXEC_TEST\" > \"$OUT\""
	envp := []string{
		"SPLICE_EXEC_TEST=through",
		"OUT=" + marker,
		"PATH=" + os.Getenv("PATH"),
	}

	pid, err := originals.SpawnPath("sh", nil, nil, []string{"sh", "-c", script}, envp)
	if err != nil {
		t.Fatalf("SpawnPath: %v", err)
	}
	reap(t, pid)

	written, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("reading marker file: %v", err)
	}
	if string(written) != "through\n" {
		t.Errorf("child saw %q, want the explicit environment", written)
	}
}

func TestExecOriginals_SpawnRequiresExactPath(t *testing.T) {
	originals := NewExecOriginals(testLogger())

	// The by-path entry point performs no search.
	if _, err := originals.Spawn("definitely-not-on-disk", nil, nil, nil, nil); err == nil {
		t.Error("expected failure for a bare name without path search")
	}
}
