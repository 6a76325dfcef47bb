// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package spawn

import (
	"errors"
)

// Flags is the spawn-attribute flags word. The values are the Darwin
// bits; the engine reads and writes only these two and preserves the
// rest of the word.
type Flags uint16

const (
	// FlagSetExec marks a replace-in-place call: the "spawn" replaces
	// the calling process image and, on success, never returns.
	FlagSetExec Flags = 0x0040

	// FlagStartSuspended starts the child stopped. The engine forces
	// it on for restricted targets so the unrestrict helper can
	// operate before the target runs.
	FlagStartSuspended Flags = 0x0080
)

// Request is one intercepted process-creation call. All fields are
// caller-owned: the engine never mutates them and never substitutes
// Path or Argv.
type Request struct {
	// Path is the target executable.
	Path string

	// Argv is the argument vector, argv[0] included. May be empty;
	// an absent argv[0] is treated as the empty string, not a fault.
	Argv []string

	// Env is the NAME=VALUE environment list, order-preserving,
	// names may repeat. nil means "use the calling process's
	// environment", mirroring the underlying primitive.
	Env []string

	// FileActions is the caller's file-actions object, passed through
	// to the original entirely opaque.
	FileActions *FileActions

	// Attr is the caller's attribute bag, or nil. The engine only
	// ever mutates a clone of it.
	Attr AttributeBag
}

// FileActions is an opaque handle on the caller's file-actions object.
// The engine neither reads nor writes it.
type FileActions struct {
	// Raw is the caller's platform pointer, carried as a word.
	Raw uintptr
}

// AttributeBag is the engine's view of a spawn attribute bag. Reads
// and writes can fail (the underlying platform calls can), and Clone
// must copy the bag's true allocation, whatever its size, so that
// mutating the clone can never touch the caller's original.
type AttributeBag interface {
	Flags() (Flags, error)
	SetFlags(Flags) error
	Clone() (AttributeBag, error)
}

// Attributes is the standard AttributeBag: a flags word plus an opaque
// platform payload whose length is the bag's true allocation size.
type Attributes struct {
	flags   Flags
	payload []byte
}

// NewAttributes builds an attribute bag. payload is the opaque
// platform portion; the bag takes ownership of the slice.
func NewAttributes(flags Flags, payload []byte) *Attributes {
	return &Attributes{flags: flags, payload: payload}
}

var errNilAttributes = errors.New("nil attribute bag")

// Flags returns the flags word.
func (a *Attributes) Flags() (Flags, error) {
	if a == nil {
		return 0, errNilAttributes
	}
	return a.flags, nil
}

// SetFlags replaces the flags word.
func (a *Attributes) SetFlags(flags Flags) error {
	if a == nil {
		return errNilAttributes
	}
	a.flags = flags
	return nil
}

// Clone deep-copies the bag, payload included. The copy is sized by
// the payload's actual length, never a fixed size.
func (a *Attributes) Clone() (AttributeBag, error) {
	if a == nil {
		return nil, errNilAttributes
	}
	payload := make([]byte, len(a.payload))
	copy(payload, a.payload)
	return &Attributes{flags: a.flags, payload: payload}, nil
}

// Payload exposes the opaque platform portion, for the original entry
// points that need to hand it back to the platform.
func (a *Attributes) Payload() []byte {
	if a == nil {
		return nil
	}
	return a.payload
}
