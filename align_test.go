// Copyright 2024 The liballoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package liballoc

import (
	"testing"
	"unsafe"
)

// TestAllocIsAligned is spec.md §8 invariant 1.
func TestAllocIsAligned(t *testing.T) {
	h := newTestHeap(t)

	for _, size := range []uintptr{1, 3, 15, 16, 17, 63, 100, 4096, 9000} {
		p := h.Alloc(size)
		if p == nil {
			t.Fatalf("alloc(%d) failed", size)
		}
		if uintptr(p)%DefaultAlignment != 0 {
			t.Fatalf("alloc(%d) = %p, not %d-byte aligned", size, p, DefaultAlignment)
		}
		h.Free(p)
	}
}

// TestAlignUnalignRoundTrip is spec.md §8 invariant 4: the stash byte
// always encodes a distance in [alignInfo, alignInfo+alignment).
func TestAlignUnalignRoundTrip(t *testing.T) {
	buf := make([]byte, 256)
	// Give ourselves room below every candidate payload start for the
	// stash write.
	base := uintptr(unsafe.Pointer(&buf[alignInfo]))

	for _, payload := range []uintptr{base, base + 1, base + 7, base + 15} {
		aligned := alignUp(payload, DefaultAlignment)
		if aligned%DefaultAlignment != 0 {
			t.Fatalf("alignUp(%d) = %d not aligned", payload, aligned)
		}
		if got := unalign(aligned, DefaultAlignment); got != payload {
			t.Fatalf("unalign(alignUp(%d)) = %d, want %d", payload, got, payload)
		}
	}
}
