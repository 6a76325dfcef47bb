// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package dyldenv

import (
	"slices"
	"testing"
)

var ownLibraries = []string{
	"/Library/Splice/Helpers/loader.dylib",
	"/Library/Splice/Helpers/spawn-hook.dylib",
}

func trackedEntries(env []string) []string {
	var entries []string
	for _, entry := range env {
		if _, ok := Tracked(entry); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func TestCompose_AppendsCandidate(t *testing.T) {
	t.Parallel()

	env := []string{
		"DYLD_INSERT_LIBRARIES=/a:/b",
		"PATH=/x",
	}
	got := Compose(env, "/Library/Splice/Helpers/loader.dylib", false, ownLibraries)

	want := []string{
		"PATH=/x",
		"DYLD_INSERT_LIBRARIES=/a:/b:/Library/Splice/Helpers/loader.dylib",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Compose = %v, want %v", got, want)
	}

	// Input untouched.
	if env[0] != "DYLD_INSERT_LIBRARIES=/a:/b" || len(env) != 2 {
		t.Error("input environment was mutated")
	}
}

func TestCompose_SingleTrackedEntry(t *testing.T) {
	t.Parallel()

	// Duplicate tracked entries collapse to one; the first value wins
	// as the base.
	env := []string{
		"DYLD_INSERT_LIBRARIES=/first",
		"TERM=dumb",
		"DYLD_INSERT_LIBRARIES=/second",
		"DYLD_INSERT_LIBRARIES=/third",
	}
	got := Compose(env, "/inject.dylib", false, ownLibraries)

	tracked := trackedEntries(got)
	if len(tracked) != 1 {
		t.Fatalf("expected exactly one tracked entry, got %v", tracked)
	}
	if tracked[0] != "DYLD_INSERT_LIBRARIES=/first:/inject.dylib" {
		t.Errorf("tracked entry = %q, first occurrence should be the base", tracked[0])
	}
	if got[len(got)-1] != tracked[0] {
		t.Error("tracked entry must be appended at the end")
	}
}

func TestCompose_Idempotent(t *testing.T) {
	t.Parallel()

	env := []string{"DYLD_INSERT_LIBRARIES=/a:/b", "HOME=/root"}
	once := Compose(env, "/inject.dylib", false, ownLibraries)
	twice := Compose(once, "/inject.dylib", false, ownLibraries)

	if !slices.Equal(once, twice) {
		t.Errorf("not idempotent: once=%v twice=%v", once, twice)
	}
}

func TestCompose_StripsOwnLibraries(t *testing.T) {
	t.Parallel()

	env := []string{
		"DYLD_INSERT_LIBRARIES=/a:" + ownLibraries[0] + ":/b:" + ownLibraries[1],
	}
	got := Compose(env, ownLibraries[0], false, ownLibraries)

	want := []string{"DYLD_INSERT_LIBRARIES=/a:/b:" + ownLibraries[0]}
	if !slices.Equal(got, want) {
		t.Errorf("Compose = %v, want %v", got, want)
	}
}

func TestCompose_SafeModeRemovesWithoutAppending(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  []string
		want []string
	}{
		{
			name: "tracked entries removed",
			env:  []string{"DYLD_INSERT_LIBRARIES=" + ownLibraries[0], "PATH=/x"},
			want: []string{"PATH=/x"},
		},
		{
			name: "foreign libraries survive",
			env:  []string{"DYLD_INSERT_LIBRARIES=/theirs.dylib"},
			want: []string{"DYLD_INSERT_LIBRARIES=/theirs.dylib"},
		},
		{
			name: "empty list",
			env:  []string{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Compose(tt.env, "/inject.dylib", true, ownLibraries)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Compose = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompose_EmptyValueOmitted(t *testing.T) {
	t.Parallel()

	// When everything is stripped and nothing is appended, the
	// variable disappears entirely rather than appearing empty.
	env := []string{"DYLD_INSERT_LIBRARIES=" + ownLibraries[0]}
	got := Compose(env, "", false, ownLibraries)

	if len(got) != 0 {
		t.Errorf("expected empty environment, got %v", got)
	}
}

func TestCompose_NoInjectPath(t *testing.T) {
	t.Parallel()

	env := []string{"DYLD_INSERT_LIBRARIES=/keep.dylib", "USER=nobody"}
	got := Compose(env, "", false, ownLibraries)

	want := []string{"USER=nobody", "DYLD_INSERT_LIBRARIES=/keep.dylib"}
	if !slices.Equal(got, want) {
		t.Errorf("Compose = %v, want %v", got, want)
	}
}

func TestParseSafeMode(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"0", "NO"} {
		on, err := ParseSafeMode(value)
		if err != nil || on {
			t.Errorf("ParseSafeMode(%q) = (%v, %v), want (false, nil)", value, on, err)
		}
	}
	for _, value := range []string{"1", "YES"} {
		on, err := ParseSafeMode(value)
		if err != nil || !on {
			t.Errorf("ParseSafeMode(%q) = (%v, %v), want (true, nil)", value, on, err)
		}
	}
	for _, value := range []string{"", "yes", "true", "2", "maybe"} {
		if _, err := ParseSafeMode(value); err == nil {
			t.Errorf("ParseSafeMode(%q): expected error", value)
		}
	}
}

func TestCutSafeMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		entry     string
		wantValue string
		wantOK    bool
	}{
		{"_MSSafeMode=1", "1", true},
		{"_SpliceSafeMode=NO", "NO", true},
		{"_MSSafeMode=", "", true},
		{"_MSSafeModeX=1", "", false},
		{"PATH=/x", "", false},
	}

	for _, tt := range tests {
		value, ok := CutSafeMode(tt.entry)
		if value != tt.wantValue || ok != tt.wantOK {
			t.Errorf("CutSafeMode(%q) = (%q, %v), want (%q, %v)",
				tt.entry, value, ok, tt.wantValue, tt.wantOK)
		}
	}
}
