// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package macho

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Recognized magics. The fat magic is stored in network byte order on
// disk; the Mach-O magics appear in host order, with the CIGAM forms
// marking a binary built for the other endianness.
const (
	fatMagic = 0xcafebabe

	magic32 = 0xfeedface
	magic64 = 0xfeedfacf
	cigam32 = 0xcefaedfe
	cigam64 = 0xcffaedfe
)

// headerWindow is the number of bytes read at each candidate header
// offset. Covers a fat header plus its first fat_arch's offset field,
// and a Mach header through sizeofcmds. Anything shorter than this is
// not a spawnable binary.
const headerWindow = 28

// Mach header sizes. The load-command region starts immediately after
// the header.
const (
	headerSize32 = 28
	headerSize64 = 32
)

// sizeofcmdsOffset is the byte offset of the sizeofcmds field within
// a Mach header, identical for the 32- and 64-bit layouts.
const sizeofcmdsOffset = 20

// maxLoadCommandBytes bounds the header-declared load-command region
// size. The declared value is attacker-influenced; real binaries stay
// well under a megabyte.
const maxLoadCommandBytes = 64 << 20

// marker is the section name whose presence anywhere in the
// load-command region marks the binary as restricted. The trailing NUL
// is part of the match; section name fields are NUL-padded.
var marker = []byte("__restrict\x00")

// Restricted reports whether the executable readable through r carries
// the __restrict marker. For fat (multi-architecture) containers only
// the first declared architecture is inspected; architectures are
// assumed to agree on restriction status. A container declaring zero
// architectures is not restricted.
//
// Every header-declared offset and size is validated before use, and a
// short read at any stage is an error. The caller decides what an
// error means; the spawn engine treats all of them as "not restricted".
func Restricted(r io.ReaderAt) (bool, error) {
	var window [headerWindow]byte
	if _, err := io.ReadFull(io.NewSectionReader(r, 0, headerWindow), window[:]); err != nil {
		return false, fmt.Errorf("reading header: %w", err)
	}

	var offset int64
	if binary.BigEndian.Uint32(window[0:4]) == fatMagic {
		narch := binary.BigEndian.Uint32(window[4:8])
		if narch == 0 {
			return false, nil
		}
		// fat_arch[0].offset: 8-byte fat header, then cputype and
		// cpusubtype precede the offset field.
		offset = int64(binary.BigEndian.Uint32(window[16:20]))
		if _, err := io.ReadFull(io.NewSectionReader(r, offset, headerWindow), window[:]); err != nil {
			return false, fmt.Errorf("reading header at fat offset %d: %w", offset, err)
		}
	}

	magic := binary.LittleEndian.Uint32(window[0:4])
	var swapped, is64 bool
	switch magic {
	case magic32:
	case magic64:
		is64 = true
	case cigam32:
		swapped = true
	case cigam64:
		swapped = true
		is64 = true
	default:
		return false, fmt.Errorf("unrecognized mach-o magic %#x", magic)
	}

	sizeofcmds := binary.LittleEndian.Uint32(window[sizeofcmdsOffset : sizeofcmdsOffset+4])
	if swapped {
		sizeofcmds = binary.BigEndian.Uint32(window[sizeofcmdsOffset : sizeofcmdsOffset+4])
	}
	if sizeofcmds > maxLoadCommandBytes {
		return false, fmt.Errorf("declared load-command size %d exceeds limit", sizeofcmds)
	}

	cmdsOffset := offset + headerSize32
	if is64 {
		cmdsOffset = offset + headerSize64
	}

	cmds := make([]byte, sizeofcmds)
	if _, err := io.ReadFull(io.NewSectionReader(r, cmdsOffset, int64(sizeofcmds)), cmds); err != nil {
		return false, fmt.Errorf("reading %d load-command bytes at %d: %w", sizeofcmds, cmdsOffset, err)
	}

	return bytes.Contains(cmds, marker), nil
}
