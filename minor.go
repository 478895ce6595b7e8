// Copyright 2024 The liballoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package liballoc

import "unsafe"

// minor is the header of one live allocation inside a major (spec.md "Minor
// block"). The payload immediately follows the header in memory; the
// minor-list of a major is kept in ascending address order.
type minor struct {
	prev, next *minor
	block      *major
	magic      uint32
	size       uintptr // reserved bytes, including alignment slack
	reqSize    uintptr // original caller-requested bytes
}

var minorHeaderSize = unsafe.Sizeof(minor{})

func minorAt(addr uintptr) *minor {
	return (*minor)(unsafe.Pointer(addr))
}

func addrOfMinor(m *minor) uintptr {
	return uintptr(unsafe.Pointer(m))
}

func (m *minor) payloadStart() uintptr {
	return addrOfMinor(m) + minorHeaderSize
}
