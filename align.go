// Copyright 2024 The liballoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package liballoc

import "unsafe"

// alignInfo is the width of the stash reserved immediately below every
// returned user pointer. Only the first byte of it is ever written (stash
// distances are bounded by alignment+alignInfo < 256 at any sane alignment),
// but the full width is carved out of the request up front so the stash
// never collides with a neighboring minor's header.
const alignInfo uintptr = 16

// alignUp advances payload past the stash region and rounds up to the next
// alignment boundary, recording the pad distance in the stash byte
// immediately below the returned pointer so unalign can recover payload
// later (spec.md §4.1, invariant 4).
func alignUp(payload, alignment uintptr) uintptr {
	if alignment <= 1 {
		return payload
	}

	p := payload + alignInfo
	diff := p & (alignment - 1)
	if diff != 0 {
		diff = alignment - diff
		p += diff
	}
	*(*byte)(unsafe.Pointer(p - alignInfo)) = byte(alignInfo + diff)
	return p
}

// unalign recovers the payload start from a user pointer by reading the
// stash byte beneath it. A stash value outside [alignInfo, alignInfo+
// alignment) means no alignment was applied to this pointer; it is returned
// unchanged.
func unalign(p, alignment uintptr) uintptr {
	if alignment <= 1 {
		return p
	}

	diff := uintptr(*(*byte)(unsafe.Pointer(p - alignInfo)))
	if diff >= alignInfo && diff < alignInfo+alignment {
		return p - diff
	}
	return p
}
